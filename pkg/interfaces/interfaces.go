// This file isolates the contracts between the helper layers and their two
// external collaborators: the browser driver and the selector resolver.

package interfaces

import (
	"context"
	"fmt"
	"time"

	"github.com/xkilldash9x/handrail/pkg/selector"
)

// Handle is an opaque reference to one resolved, interactable control
// instance. Handles are acquired per call and never cached across calls.
type Handle struct {
	// ControlID is the framework id of the matched control.
	ControlID string
	// DOMID is the id of the control's rendered root DOM element.
	DOMID string
}

// Query returns a CSS query addressing the rendered root element. Attribute
// form is used because framework ids routinely contain characters that would
// need escaping in an id shorthand.
func (h Handle) Query() string {
	return fmt.Sprintf(`[id=%q]`, h.DOMID)
}

// Driver is the primitive surface of the browser session. All methods block
// until the browser round-trip completes or ctx is done.
type Driver interface {
	// Navigate loads a URL and waits for the page to be ready.
	Navigate(ctx context.Context, url string) error

	// Click dispatches count clicks with the given button ("left",
	// "right", "middle") at the center of the element matching query.
	Click(ctx context.Context, query, button string, count int) error

	// SetValue focuses the element matching query and types value into it.
	SetValue(ctx context.Context, query, value string) error

	// ClearValue empties the element matching query using select-all and
	// delete, so the page sees real input events.
	ClearValue(ctx context.Context, query string) error

	// GetAttribute returns the value of a DOM attribute and whether it is
	// present at all.
	GetAttribute(ctx context.Context, query, name string) (string, bool, error)

	// ScrollIntoView scrolls the element into the viewport. align is one
	// of "start", "center", "end", "nearest"; empty means "nearest".
	ScrollIntoView(ctx context.Context, query, align string) error

	// MoveTo moves the pointer onto the element's center, firing the
	// usual mouseover chain.
	MoveTo(ctx context.Context, query string) error

	// SendKeys dispatches raw key input to the currently focused element.
	SendKeys(ctx context.Context, keys string) error

	// DragAndDrop presses on the source element, moves the pointer to the
	// target element, and releases.
	DragAndDrop(ctx context.Context, sourceQuery, targetQuery string) error

	// Focus gives keyboard focus to the element matching query.
	Focus(ctx context.Context, query string) error

	// Evaluate runs a JavaScript expression in the page, awaiting any
	// returned promise, and unmarshals the result into out (out may be
	// nil when the result is irrelevant).
	Evaluate(ctx context.Context, expr string, out any) error

	// WaitUntil polls pred every interval until it succeeds or timeout
	// elapses. The returned error carries the last predicate failure.
	WaitUntil(ctx context.Context, timeout, interval time.Duration, pred func(ctx context.Context) error) error
}

// Resolver maps a declarative selector to a live handle. The matching itself
// happens inside the page; this layer treats it as an opaque service.
type Resolver interface {
	// Resolve returns the index-th control matching sel, waiting up to
	// timeout for it to appear.
	Resolve(ctx context.Context, sel selector.Selector, index int, timeout time.Duration) (Handle, error)
}

// ControlState is the interactability snapshot of a resolved control.
type ControlState struct {
	Displayed bool `json:"displayed"`
	Enabled   bool `json:"enabled"`
	Busy      bool `json:"busy"`
}

// Aggregation describes one named aggregation of a control.
type Aggregation struct {
	Name   string   `json:"name"`
	Length int      `json:"length"`
	IDs    []string `json:"ids"`
}

// Binding describes the model binding of a single control property.
type Binding struct {
	Model string   `json:"model"`
	Paths []string `json:"paths"`
}

// Inspector exposes the component-level introspection of a resolved control,
// keyed by the control id a Resolve returned.
type Inspector interface {
	State(ctx context.Context, controlID string) (ControlState, error)
	Property(ctx context.Context, controlID, name string) (any, error)
	Aggregation(ctx context.Context, controlID, name string) (Aggregation, error)
	Association(ctx context.Context, controlID, name string) ([]string, error)
	PropertyBinding(ctx context.Context, controlID, name string) (Binding, error)
	BindingContextPath(ctx context.Context, controlID string) (string, error)
}

// Executor runs caller-supplied client functions in the page against a
// resolved control.
type Executor interface {
	// Invoke evaluates fnSource, the body of a JavaScript function with
	// parameters (control, args), and returns its JSON-compatible result.
	Invoke(ctx context.Context, controlID, fnSource string, args ...any) (any, error)
}
