// pkg/interaction/fakes_test.go
package interaction

import (
	"context"
	"fmt"
	"time"

	"github.com/xkilldash9x/handrail/pkg/interfaces"
	"github.com/xkilldash9x/handrail/pkg/selector"
)

// call records one driver primitive invocation.
type call struct {
	name string
	args []any
}

// fakeDriver implements interfaces.Driver and records every primitive.
type fakeDriver struct {
	calls []call
	// failOn makes the named primitive fail.
	failOn map[string]error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{failOn: map[string]error{}}
}

func (d *fakeDriver) record(name string, args ...any) error {
	d.calls = append(d.calls, call{name: name, args: args})
	return d.failOn[name]
}

func (d *fakeDriver) names() []string {
	var names []string
	for _, c := range d.calls {
		names = append(names, c.name)
	}
	return names
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	return d.record("navigate", url)
}

func (d *fakeDriver) Click(ctx context.Context, query, button string, count int) error {
	return d.record("click", query, button, count)
}

func (d *fakeDriver) SetValue(ctx context.Context, query, value string) error {
	return d.record("setValue", query, value)
}

func (d *fakeDriver) ClearValue(ctx context.Context, query string) error {
	return d.record("clearValue", query)
}

func (d *fakeDriver) GetAttribute(ctx context.Context, query, name string) (string, bool, error) {
	err := d.record("getAttribute", query, name)
	return "attr-value", true, err
}

func (d *fakeDriver) ScrollIntoView(ctx context.Context, query, align string) error {
	return d.record("scrollIntoView", query, align)
}

func (d *fakeDriver) MoveTo(ctx context.Context, query string) error {
	return d.record("moveTo", query)
}

func (d *fakeDriver) SendKeys(ctx context.Context, keys string) error {
	return d.record("sendKeys", keys)
}

func (d *fakeDriver) DragAndDrop(ctx context.Context, sourceQuery, targetQuery string) error {
	return d.record("dragAndDrop", sourceQuery, targetQuery)
}

func (d *fakeDriver) Focus(ctx context.Context, query string) error {
	return d.record("focus", query)
}

func (d *fakeDriver) Evaluate(ctx context.Context, expr string, out any) error {
	return d.record("evaluate", expr)
}

func (d *fakeDriver) WaitUntil(ctx context.Context, timeout, interval time.Duration, pred func(ctx context.Context) error) error {
	// Deadline-free polling keeps the unit tests fast and deterministic:
	// the predicate gets a bounded number of turns instead of wall time.
	var lastErr error
	for attempt := 0; attempt < 50; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = pred(ctx); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("condition not met within %s: %w", timeout, lastErr)
}

// fakeResolver hands out a fixed handle, optionally failing a number of
// times first.
type fakeResolver struct {
	handle interfaces.Handle
	// failTimes fails the first N resolves, then succeeds.
	failTimes int
	// failAfter succeeds the first N resolves, then fails. Zero disables.
	failAfter int
	err         error
	resolves    int
	lastSel     selector.Selector
	lastIndex   int
	lastTimeout time.Duration
}

func (r *fakeResolver) Resolve(ctx context.Context, sel selector.Selector, index int, timeout time.Duration) (interfaces.Handle, error) {
	r.resolves++
	r.lastSel = sel
	r.lastIndex = index
	r.lastTimeout = timeout
	if r.err != nil {
		return interfaces.Handle{}, r.err
	}
	if r.resolves <= r.failTimes {
		return interfaces.Handle{}, fmt.Errorf("no matching control found")
	}
	if r.failAfter > 0 && r.resolves > r.failAfter {
		return interfaces.Handle{}, fmt.Errorf("no matching control found")
	}
	return r.handle, nil
}

// fakeInspector serves a scripted sequence of states and fixed properties.
type fakeInspector struct {
	// states are consumed one per State call; the last one repeats.
	states     []interfaces.ControlState
	stateCalls int
	properties map[string]any
	stateErr   error
}

func (i *fakeInspector) State(ctx context.Context, controlID string) (interfaces.ControlState, error) {
	if i.stateErr != nil {
		return interfaces.ControlState{}, i.stateErr
	}
	idx := i.stateCalls
	if idx >= len(i.states) {
		idx = len(i.states) - 1
	}
	i.stateCalls++
	if idx < 0 {
		return interfaces.ControlState{Displayed: true, Enabled: true}, nil
	}
	return i.states[idx], nil
}

func (i *fakeInspector) Property(ctx context.Context, controlID, name string) (any, error) {
	v, ok := i.properties[name]
	if !ok {
		return nil, fmt.Errorf("no property %q", name)
	}
	return v, nil
}

func (i *fakeInspector) Aggregation(ctx context.Context, controlID, name string) (interfaces.Aggregation, error) {
	return interfaces.Aggregation{}, nil
}

func (i *fakeInspector) Association(ctx context.Context, controlID, name string) ([]string, error) {
	return nil, nil
}

func (i *fakeInspector) PropertyBinding(ctx context.Context, controlID, name string) (interfaces.Binding, error) {
	return interfaces.Binding{}, nil
}

func (i *fakeInspector) BindingContextPath(ctx context.Context, controlID string) (string, error) {
	return "", nil
}
