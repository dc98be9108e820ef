// pkg/driver/session_test.go
package driver

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/handrail/internal/config"
)

func nopLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zap.NewNop()
}

func flagValues(t *testing.T, opts []chromedp.ExecAllocatorOption) map[string]any {
	t.Helper()
	// Options are opaque funcs; apply them to an allocator and read its
	// unexported initFlags map through reflection.
	a := new(chromedp.ExecAllocator)
	fv := reflect.ValueOf(a).Elem().FieldByName("initFlags")
	mv := reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
	mv.Set(reflect.MakeMap(fv.Type()))
	for _, opt := range opts {
		opt(a)
	}
	flags := make(map[string]any, mv.Len())
	for _, k := range mv.MapKeys() {
		flags[k.String()] = mv.MapIndex(k).Interface()
	}
	return flags
}

func TestBuildAllocatorOptions(t *testing.T) {
	cfg := config.BrowserConfig{
		Headless:        true,
		IgnoreTLSErrors: true,
		Args:            []string{"--window-size=1600,1200", "--incognito"},
	}

	flags := flagValues(t, buildAllocatorOptions(cfg))

	// The automation banner flag must be filtered out.
	_, present := flags["enable-automation"]
	assert.False(t, present)

	assert.Equal(t, true, flags["headless"])
	assert.Equal(t, true, flags["ignore-certificate-errors"])
	assert.Equal(t, "AutomationControlled", flags["disable-blink-features"])

	// Custom args survive in both forms.
	assert.Equal(t, "1600,1200", flags["window-size"])
	assert.Equal(t, true, flags["incognito"])
}

func TestBuildAllocatorOptionsHeadful(t *testing.T) {
	flags := flagValues(t, buildAllocatorOptions(config.BrowserConfig{Headless: false}))
	assert.Equal(t, false, flags["headless"])
	assert.Equal(t, false, flags["disable-gpu"])
}

func TestAttachRequiresDevToolsURL(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Browser.DevToolsURL = ""

	_, err := Attach(t.Context(), cfg, nopLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "devtools_url")
}

func TestBoxCenter(t *testing.T) {
	box := &dom.BoxModel{
		Content: []float64{10, 20, 110, 20, 110, 70, 10, 70},
		Width:   100,
		Height:  50,
	}
	x, y, ok := boxCenter(box)
	require.True(t, ok)
	assert.Equal(t, 60.0, x)
	assert.Equal(t, 45.0, y)

	_, _, ok = boxCenter(nil)
	assert.False(t, ok)

	_, _, ok = boxCenter(&dom.BoxModel{Content: []float64{1, 2}})
	assert.False(t, ok)
}
