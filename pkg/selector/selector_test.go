// pkg/selector/selector_test.go
package selector

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderComposition(t *testing.T) {
	sel := New("sap.m.Button").
		InView("shop.view.Checkout").
		WithProperty("text", "Order Now").
		WithProperty("enabled", true)

	assert.Equal(t, "sap.m.Button", sel.Element.Metadata)
	assert.Equal(t, "shop.view.Checkout", sel.Element.ViewName)
	assert.Equal(t, "Order Now", sel.Element.Properties["text"])
	assert.Equal(t, true, sel.Element.Properties["enabled"])
}

func TestWithPropertyDoesNotMutateReceiver(t *testing.T) {
	base := New("sap.m.Input").WithProperty("placeholder", "Name")
	derived := base.WithProperty("placeholder", "Street")

	assert.Equal(t, "Name", base.Element.Properties["placeholder"])
	assert.Equal(t, "Street", derived.Element.Properties["placeholder"])
}

func TestItemComposition(t *testing.T) {
	combo := New("sap.m.ComboBox").InView("shop.view.Checkout").WithID("*countrySelect")

	item := combo.Item("sap.ui.core.Item", Matcher{"text": "Germany"})

	want := Selector{
		Element: Descriptor{
			Metadata:   "sap.ui.core.Item",
			Properties: Matcher{"text": "Germany"},
		},
		Ancestor: &Descriptor{
			Metadata:   "sap.m.ComboBox",
			ViewName:   "shop.view.Checkout",
			ID:         "*countrySelect",
			Properties: nil,
		},
	}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Fatalf("item selector mismatch (-want +got):\n%s", diff)
	}
}

func TestAtIndexAndTimeout(t *testing.T) {
	base := New("sap.m.StandardListItem")
	sel := base.AtIndex(4).WithTimeout(9 * time.Second)

	assert.Equal(t, 4, sel.Index)
	assert.Equal(t, 9*time.Second, sel.Timeout)
	// Copy-on-write, like the other builders.
	assert.Zero(t, base.Index)
	assert.Zero(t, base.Timeout)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Selector{}.Validate())
	assert.NoError(t, New("sap.m.Button").Validate())
	assert.NoError(t, Selector{Element: Descriptor{ID: "*submit"}}.Validate())
	assert.Error(t, New("sap.m.Button").AtIndex(-1).Validate())
}

func TestEncodeShape(t *testing.T) {
	sel := New("sap.m.Button").WithProperty("text", "OK")
	raw, err := sel.Encode()
	require.NoError(t, err)

	assert.Contains(t, raw, `"elementProperties"`)
	assert.Contains(t, raw, `"metadata":"sap.m.Button"`)
	assert.Contains(t, raw, `"text":"OK"`)
	// Unset structural constraints stay off the wire.
	assert.NotContains(t, raw, "ancestorProperties")
	assert.NotContains(t, raw, "parentProperties")

	// Index and timeout are local knobs, never part of the payload.
	raw, err = sel.AtIndex(2).WithTimeout(9 * time.Second).Encode()
	require.NoError(t, err)
	assert.NotContains(t, raw, "Index")
	assert.NotContains(t, raw, "Timeout")
}

func TestSummary(t *testing.T) {
	sel := New("sap.m.Button").InView("shop.view.Checkout").WithProperty("text", "OK")
	sum := sel.Summary()
	assert.Contains(t, sum, "sap.m.Button")
	assert.Contains(t, sum, "shop.view.Checkout")

	item := sel.Item("sap.ui.core.Item", Matcher{"key": "DE"})
	assert.Contains(t, item.Summary(), "under sap.m.Button")

	assert.Contains(t, Selector{}.Summary(), "<any>")
}
