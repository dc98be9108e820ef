// pkg/driver/bridge/bridge.go

// Package bridge implements the selector-resolution side of the library: a
// small script is installed into the page, and every resolve or introspection
// call is forwarded to it. Matching controls against a selector is the
// responsibility of the page's own component runtime; this package only
// ships payloads across and interprets the verdicts.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/handrail/pkg/interfaces"
	"github.com/xkilldash9x/handrail/pkg/selector"
)

// ErrNotFound reports that no control matched the selector within the wait
// budget.
var ErrNotFound = errors.New("no matching control found")

// Evaluator is the slice of the driver surface the bridge needs.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, out any) error
	WaitUntil(ctx context.Context, timeout, interval time.Duration, pred func(ctx context.Context) error) error
}

// Bridge resolves selectors and inspects controls through the injected
// page-side script. It implements interfaces.Resolver and
// interfaces.Inspector.
type Bridge struct {
	driver Evaluator
	logger *zap.Logger
	poll   time.Duration
}

// New creates a Bridge on top of an existing driver session. poll is the
// cadence at which an unresolved selector is re-tried within its timeout.
func New(driver Evaluator, logger *zap.Logger, poll time.Duration) *Bridge {
	if poll <= 0 {
		poll = 400 * time.Millisecond
	}
	return &Bridge{
		driver: driver,
		logger: logger.Named("bridge"),
		poll:   poll,
	}
}

// verdict is the wire shape every page-side call answers with.
type verdict struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	ControlID string `json:"controlId,omitempty"`
	DOMID     string `json:"domId,omitempty"`
}

const (
	statusOK       = "ok"
	statusNotFound = "notFound"
)

// ensureInstalled injects the page-side script. The script guards itself, so
// repeat injection after a navigation is safe and cheap.
func (b *Bridge) ensureInstalled(ctx context.Context) error {
	if err := b.driver.Evaluate(ctx, inspectionScript(), nil); err != nil {
		return fmt.Errorf("install inspection script: %w", err)
	}
	return nil
}

// Resolve returns the index-th control matching sel, waiting up to timeout
// for it to appear. Handles are never cached; each call resolves afresh.
func (b *Bridge) Resolve(ctx context.Context, sel selector.Selector, index int, timeout time.Duration) (interfaces.Handle, error) {
	if err := sel.Validate(); err != nil {
		return interfaces.Handle{}, err
	}
	if index < 0 {
		return interfaces.Handle{}, fmt.Errorf("resolve %s: index must not be negative, got %d", sel.Summary(), index)
	}

	payload, err := sel.Encode()
	if err != nil {
		return interfaces.Handle{}, err
	}

	var handle interfaces.Handle
	err = b.driver.WaitUntil(ctx, timeout, b.poll, func(ctx context.Context) error {
		if err := b.ensureInstalled(ctx); err != nil {
			return err
		}

		var v verdict
		expr := fmt.Sprintf("window.__handrail.resolve(%s, %d)", payload, index)
		if err := b.driver.Evaluate(ctx, expr, &v); err != nil {
			return err
		}

		switch v.Status {
		case statusOK:
			handle = interfaces.Handle{ControlID: v.ControlID, DOMID: v.DOMID}
			return nil
		case statusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, v.Message)
		default:
			return fmt.Errorf("inspection script verdict %q: %s", v.Status, v.Message)
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return interfaces.Handle{}, ctx.Err()
		}
		b.logger.Debug("selector did not resolve",
			zap.String("selector", sel.Summary()),
			zap.Int("index", index),
			zap.Duration("timeout", timeout),
			zap.Error(err))
		return interfaces.Handle{}, fmt.Errorf("resolve %s[%d]: %w", sel.Summary(), index, err)
	}

	return handle, nil
}

// inspect forwards one introspection call for an already resolved control.
func (b *Bridge) inspect(ctx context.Context, controlID, kind, name string, out any) error {
	if err := b.ensureInstalled(ctx); err != nil {
		return err
	}

	var envelope struct {
		Status  string  `json:"status"`
		Message string  `json:"message,omitempty"`
		Value   jsonRaw `json:"value"`
	}
	expr := fmt.Sprintf("window.__handrail.inspect(%q, %q, %q)", controlID, kind, name)
	if err := b.driver.Evaluate(ctx, expr, &envelope); err != nil {
		return fmt.Errorf("inspect %s of control %q: %w", kind, controlID, err)
	}
	if envelope.Status != statusOK {
		if envelope.Status == statusNotFound {
			return fmt.Errorf("inspect %s of control %q: %w", kind, controlID, ErrNotFound)
		}
		return fmt.Errorf("inspect %s of control %q: %s", kind, controlID, envelope.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Value, out); err != nil {
		return fmt.Errorf("inspect %s of control %q: decode value: %w", kind, controlID, err)
	}
	return nil
}

// State returns the interactability snapshot of a control.
func (b *Bridge) State(ctx context.Context, controlID string) (interfaces.ControlState, error) {
	var st interfaces.ControlState
	if err := b.inspect(ctx, controlID, "state", "", &st); err != nil {
		return interfaces.ControlState{}, err
	}
	return st, nil
}

// Property returns a property value by name.
func (b *Bridge) Property(ctx context.Context, controlID, name string) (any, error) {
	var value any
	if err := b.inspect(ctx, controlID, "property", name, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// Aggregation returns the named aggregation's length and member ids.
func (b *Bridge) Aggregation(ctx context.Context, controlID, name string) (interfaces.Aggregation, error) {
	var agg interfaces.Aggregation
	if err := b.inspect(ctx, controlID, "aggregation", name, &agg); err != nil {
		return interfaces.Aggregation{}, err
	}
	return agg, nil
}

// Association returns the ids of the controls associated under name.
func (b *Bridge) Association(ctx context.Context, controlID, name string) ([]string, error) {
	var ids []string
	if err := b.inspect(ctx, controlID, "association", name, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// PropertyBinding returns the model binding behind a property.
func (b *Bridge) PropertyBinding(ctx context.Context, controlID, name string) (interfaces.Binding, error) {
	var binding interfaces.Binding
	if err := b.inspect(ctx, controlID, "binding", name, &binding); err != nil {
		return interfaces.Binding{}, err
	}
	return binding, nil
}

// Invoke evaluates fnSource, the body of a JavaScript function with
// parameters (control, args), against the resolved control and returns its
// JSON-compatible result.
func (b *Bridge) Invoke(ctx context.Context, controlID, fnSource string, args ...any) (any, error) {
	if err := b.ensureInstalled(ctx); err != nil {
		return nil, err
	}

	srcJSON, err := json.MarshalToString(fnSource)
	if err != nil {
		return nil, fmt.Errorf("invoke on control %q: encode script: %w", controlID, err)
	}
	argsJSON, err := json.MarshalToString(args)
	if err != nil {
		return nil, fmt.Errorf("invoke on control %q: encode args: %w", controlID, err)
	}

	var envelope struct {
		Status  string  `json:"status"`
		Message string  `json:"message,omitempty"`
		Value   jsonRaw `json:"value"`
	}
	expr := fmt.Sprintf("window.__handrail.invoke(%q, %s, %s)", controlID, srcJSON, argsJSON)
	if err := b.driver.Evaluate(ctx, expr, &envelope); err != nil {
		return nil, fmt.Errorf("invoke on control %q: %w", controlID, err)
	}
	switch envelope.Status {
	case statusOK:
	case statusNotFound:
		return nil, fmt.Errorf("invoke on control %q: %w", controlID, ErrNotFound)
	default:
		return nil, fmt.Errorf("invoke on control %q: %s", controlID, envelope.Message)
	}

	var value any
	if len(envelope.Value) > 0 {
		if err := json.Unmarshal(envelope.Value, &value); err != nil {
			return nil, fmt.Errorf("invoke on control %q: decode result: %w", controlID, err)
		}
	}
	return value, nil
}

// BindingContextPath returns the control's element binding context path.
func (b *Bridge) BindingContextPath(ctx context.Context, controlID string) (string, error) {
	var path string
	if err := b.inspect(ctx, controlID, "bindingContextPath", "", &path); err != nil {
		return "", err
	}
	return path, nil
}
