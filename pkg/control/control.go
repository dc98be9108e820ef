// pkg/control/control.go

// Package control exposes read access to the component side of a resolved
// element: framework properties, aggregations, associations, and bindings,
// plus DOM attributes of the rendered root element. Like the interaction
// helpers, every call resolves its selector afresh.
package control

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/handrail/internal/config"
	"github.com/xkilldash9x/handrail/pkg/interfaces"
	"github.com/xkilldash9x/handrail/pkg/selector"
)

// Control reads component metadata of controls described by selectors.
type Control struct {
	driver    interfaces.Driver
	resolver  interfaces.Resolver
	inspector interfaces.Inspector
	executor  interfaces.Executor
	cfg       config.InteractionConfig
	logger    *zap.Logger
}

// New wires a Control helper on top of a driver session and a resolver.
func New(driver interfaces.Driver, resolver interfaces.Resolver, inspector interfaces.Inspector, executor interfaces.Executor, cfg config.InteractionConfig, logger *zap.Logger) *Control {
	return &Control{
		driver:    driver,
		resolver:  resolver,
		inspector: inspector,
		executor:  executor,
		cfg:       cfg,
		logger:    logger.Named("control"),
	}
}

// Opts carries the per-call knobs. A zero field defers to the selector's
// own index or timeout, then to the configured default.
type Opts struct {
	Index   int
	Timeout time.Duration
}

func (c *Control) resolve(ctx context.Context, sel selector.Selector, o Opts) (interfaces.Handle, error) {
	timeout := c.cfg.DefaultTimeout
	if sel.Timeout > 0 {
		timeout = sel.Timeout
	}
	if o.Timeout > 0 {
		timeout = o.Timeout
	}
	index := sel.Index
	if o.Index != 0 {
		index = o.Index
	}
	h, err := c.resolver.Resolve(ctx, sel, index, timeout)
	if err != nil {
		c.logger.Error("resolve failed",
			zap.String("selector", sel.Summary()),
			zap.Error(err))
		return interfaces.Handle{}, err
	}
	return h, nil
}

// ID returns the framework id of the resolved control.
func (c *Control) ID(ctx context.Context, sel selector.Selector, opts ...Opts) (string, error) {
	h, err := c.resolve(ctx, sel, first(opts))
	if err != nil {
		return "", err
	}
	return h.ControlID, nil
}

// Property returns the named property's value.
func (c *Control) Property(ctx context.Context, sel selector.Selector, name string, opts ...Opts) (any, error) {
	h, err := c.resolve(ctx, sel, first(opts))
	if err != nil {
		return nil, err
	}
	value, err := c.inspector.Property(ctx, h.ControlID, name)
	if err != nil {
		return nil, fmt.Errorf("property %q of %s: %w", name, sel.Summary(), err)
	}
	return value, nil
}

// Aggregation returns the named aggregation's length and member ids.
func (c *Control) Aggregation(ctx context.Context, sel selector.Selector, name string, opts ...Opts) (interfaces.Aggregation, error) {
	h, err := c.resolve(ctx, sel, first(opts))
	if err != nil {
		return interfaces.Aggregation{}, err
	}
	agg, err := c.inspector.Aggregation(ctx, h.ControlID, name)
	if err != nil {
		return interfaces.Aggregation{}, fmt.Errorf("aggregation %q of %s: %w", name, sel.Summary(), err)
	}
	return agg, nil
}

// Association returns the ids of the controls associated under name.
func (c *Control) Association(ctx context.Context, sel selector.Selector, name string, opts ...Opts) ([]string, error) {
	h, err := c.resolve(ctx, sel, first(opts))
	if err != nil {
		return nil, err
	}
	ids, err := c.inspector.Association(ctx, h.ControlID, name)
	if err != nil {
		return nil, fmt.Errorf("association %q of %s: %w", name, sel.Summary(), err)
	}
	return ids, nil
}

// PropertyBinding returns the model binding behind the named property.
func (c *Control) PropertyBinding(ctx context.Context, sel selector.Selector, name string, opts ...Opts) (interfaces.Binding, error) {
	h, err := c.resolve(ctx, sel, first(opts))
	if err != nil {
		return interfaces.Binding{}, err
	}
	binding, err := c.inspector.PropertyBinding(ctx, h.ControlID, name)
	if err != nil {
		return interfaces.Binding{}, fmt.Errorf("binding of %q of %s: %w", name, sel.Summary(), err)
	}
	return binding, nil
}

// BindingPath returns just the model path(s) behind the named property.
func (c *Control) BindingPath(ctx context.Context, sel selector.Selector, name string, opts ...Opts) ([]string, error) {
	binding, err := c.PropertyBinding(ctx, sel, name, opts...)
	if err != nil {
		return nil, err
	}
	return binding.Paths, nil
}

// BindingContextPath returns the control's element binding context path.
func (c *Control) BindingContextPath(ctx context.Context, sel selector.Selector, opts ...Opts) (string, error) {
	h, err := c.resolve(ctx, sel, first(opts))
	if err != nil {
		return "", err
	}
	path, err := c.inspector.BindingContextPath(ctx, h.ControlID)
	if err != nil {
		return "", fmt.Errorf("binding context of %s: %w", sel.Summary(), err)
	}
	return path, nil
}

// Attribute returns a DOM attribute of the rendered root element, and
// whether the attribute is present.
func (c *Control) Attribute(ctx context.Context, sel selector.Selector, name string, opts ...Opts) (string, bool, error) {
	h, err := c.resolve(ctx, sel, first(opts))
	if err != nil {
		return "", false, err
	}
	value, ok, err := c.driver.GetAttribute(ctx, h.Query(), name)
	if err != nil {
		return "", false, fmt.Errorf("attribute %q of %s: %w", name, sel.Summary(), err)
	}
	return value, ok, nil
}

// Execute runs fnSource, the body of a JavaScript function with parameters
// (control, args), against the resolved control inside the page and returns
// its JSON-compatible result.
func (c *Control) Execute(ctx context.Context, sel selector.Selector, fnSource string, args ...any) (any, error) {
	h, err := c.resolve(ctx, sel, Opts{})
	if err != nil {
		return nil, err
	}
	result, err := c.executor.Invoke(ctx, h.ControlID, fnSource, args...)
	if err != nil {
		return nil, fmt.Errorf("execute on %s: %w", sel.Summary(), err)
	}
	return result, nil
}

func first(opts []Opts) Opts {
	if len(opts) == 0 {
		return Opts{}
	}
	return opts[0]
}
