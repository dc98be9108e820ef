// pkg/interaction/interaction.go

// Package interaction provides the high-level, declarative UI helpers: each
// operation resolves a selector, waits for the control to become
// interactable, performs exactly one driver primitive, and reports failures
// through the logger before returning them. The *AndRetry variants re-run
// the whole sequence under a fixed-delay policy.
package interaction

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/handrail/internal/config"
	"github.com/xkilldash9x/handrail/internal/retry"
	"github.com/xkilldash9x/handrail/pkg/interfaces"
	"github.com/xkilldash9x/handrail/pkg/selector"
)

// Errors a wait predicate reports while a control is not yet interactable.
var (
	errNotDisplayed = errors.New("control is not displayed")
	errDisabled     = errors.New("control is disabled")
	errBusy         = errors.New("control is busy")
)

// UserInteraction is the high-level helper surface for driving a component
// framework UI. All methods are safe to call sequentially against one
// browser session; none of them cache element handles across calls.
type UserInteraction struct {
	driver    interfaces.Driver
	resolver  interfaces.Resolver
	inspector interfaces.Inspector
	cfg       config.InteractionConfig
	logger    *zap.Logger
}

// New wires a UserInteraction on top of a driver session and a resolver.
func New(driver interfaces.Driver, resolver interfaces.Resolver, inspector interfaces.Inspector, cfg config.InteractionConfig, logger *zap.Logger) *UserInteraction {
	return &UserInteraction{
		driver:    driver,
		resolver:  resolver,
		inspector: inspector,
		cfg:       cfg,
		logger:    logger.Named("interaction"),
	}
}

// fail wraps, logs, and returns an operation failure. This is the single
// reporting point for the helper layer.
func (u *UserInteraction) fail(op string, sel selector.Selector, err error) error {
	wrapped := fmt.Errorf("%s %s: %w", op, sel.Summary(), err)
	u.logger.Error("interaction failed",
		zap.String("op", op),
		zap.String("selector", sel.Summary()),
		zap.Error(err))
	return wrapped
}

// failKeys is the selector-less sibling of fail, for key dispatch helpers
// that act on the focused element.
func (u *UserInteraction) failKeys(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	u.logger.Error("interaction failed",
		zap.String("op", op),
		zap.Error(err))
	return wrapped
}

// resolveInteractable resolves the selector and waits until the control is
// displayed, enabled, and not busy.
func (u *UserInteraction) resolveInteractable(ctx context.Context, sel selector.Selector, o opts) (interfaces.Handle, error) {
	h, err := u.resolver.Resolve(ctx, sel, o.index, o.timeout)
	if err != nil {
		return interfaces.Handle{}, err
	}

	err = u.driver.WaitUntil(ctx, o.timeout, u.cfg.PollInterval, func(ctx context.Context) error {
		st, err := u.inspector.State(ctx, h.ControlID)
		if err != nil {
			return err
		}
		switch {
		case !st.Displayed:
			return errNotDisplayed
		case !st.Enabled:
			return errDisabled
		case st.Busy:
			return errBusy
		}
		return nil
	})
	if err != nil {
		return interfaces.Handle{}, err
	}
	return h, nil
}

// resolveDisplayed resolves the selector and waits for visibility only;
// used by operations that must work on disabled controls too.
func (u *UserInteraction) resolveDisplayed(ctx context.Context, sel selector.Selector, o opts) (interfaces.Handle, error) {
	h, err := u.resolver.Resolve(ctx, sel, o.index, o.timeout)
	if err != nil {
		return interfaces.Handle{}, err
	}

	err = u.driver.WaitUntil(ctx, o.timeout, u.cfg.PollInterval, func(ctx context.Context) error {
		st, err := u.inspector.State(ctx, h.ControlID)
		if err != nil {
			return err
		}
		if !st.Displayed {
			return errNotDisplayed
		}
		return nil
	})
	if err != nil {
		return interfaces.Handle{}, err
	}
	return h, nil
}

// click is the shared implementation behind the three click flavors.
func (u *UserInteraction) click(ctx context.Context, op string, sel selector.Selector, button string, count int, options []Option) error {
	o := u.buildOpts(sel, options)
	h, err := u.resolveInteractable(ctx, sel, o)
	if err != nil {
		return u.fail(op, sel, err)
	}
	if err := u.driver.Click(ctx, h.Query(), button, count); err != nil {
		return u.fail(op, sel, err)
	}
	u.logger.Debug("performed", zap.String("op", op), zap.String("selector", sel.Summary()))
	return nil
}

// Click clicks the control described by the selector.
func (u *UserInteraction) Click(ctx context.Context, sel selector.Selector, options ...Option) error {
	return u.click(ctx, "click", sel, "left", 1, options)
}

// DoubleClick double-clicks the control described by the selector.
func (u *UserInteraction) DoubleClick(ctx context.Context, sel selector.Selector, options ...Option) error {
	return u.click(ctx, "double-click", sel, "left", 2, options)
}

// RightClick opens the context menu on the control described by the selector.
func (u *UserInteraction) RightClick(ctx context.Context, sel selector.Selector, options ...Option) error {
	return u.click(ctx, "right-click", sel, "right", 1, options)
}

// ClickAndRetry clicks, re-attempting the whole resolve-wait-click sequence
// under the retry policy.
func (u *UserInteraction) ClickAndRetry(ctx context.Context, sel selector.Selector, options ...Option) error {
	o := u.buildOpts(sel, options)
	return retry.Do(ctx, u.logger, u.retryPolicy(o), "click", func(ctx context.Context) error {
		return u.Click(ctx, sel, options...)
	})
}

// Fill types value into the control's inner input element. An empty value is
// rejected; use Clear to empty a field.
func (u *UserInteraction) Fill(ctx context.Context, sel selector.Selector, value string, options ...Option) error {
	if value == "" {
		return u.fail("fill", sel, errors.New("empty value; use Clear to empty a field"))
	}

	o := u.buildOpts(sel, options)
	h, err := u.resolveInteractable(ctx, sel, o)
	if err != nil {
		return u.fail("fill", sel, err)
	}
	if err := u.driver.SetValue(ctx, inputQuery(h), value); err != nil {
		return u.fail("fill", sel, err)
	}
	u.logger.Debug("performed", zap.String("op", "fill"), zap.String("selector", sel.Summary()))
	return nil
}

// FillAndRetry fills under the retry policy.
func (u *UserInteraction) FillAndRetry(ctx context.Context, sel selector.Selector, value string, options ...Option) error {
	o := u.buildOpts(sel, options)
	return retry.Do(ctx, u.logger, u.retryPolicy(o), "fill", func(ctx context.Context) error {
		return u.Fill(ctx, sel, value, options...)
	})
}

// Clear empties the control's inner input element.
func (u *UserInteraction) Clear(ctx context.Context, sel selector.Selector, options ...Option) error {
	o := u.buildOpts(sel, options)
	h, err := u.resolveInteractable(ctx, sel, o)
	if err != nil {
		return u.fail("clear", sel, err)
	}
	if err := u.driver.ClearValue(ctx, inputQuery(h)); err != nil {
		return u.fail("clear", sel, err)
	}
	return nil
}

// ClearAndRetry clears under the retry policy.
func (u *UserInteraction) ClearAndRetry(ctx context.Context, sel selector.Selector, options ...Option) error {
	o := u.buildOpts(sel, options)
	return retry.Do(ctx, u.logger, u.retryPolicy(o), "clear", func(ctx context.Context) error {
		return u.Clear(ctx, sel, options...)
	})
}

// ClearAndFill clears the field, then fills it with value, as one operation.
func (u *UserInteraction) ClearAndFill(ctx context.Context, sel selector.Selector, value string, options ...Option) error {
	if value == "" {
		return u.fail("clear-and-fill", sel, errors.New("empty value; use Clear to empty a field"))
	}
	if err := u.Clear(ctx, sel, options...); err != nil {
		return err
	}
	return u.Fill(ctx, sel, value, options...)
}

// ClearAndFillAndRetry runs ClearAndFill under the retry policy.
func (u *UserInteraction) ClearAndFillAndRetry(ctx context.Context, sel selector.Selector, value string, options ...Option) error {
	o := u.buildOpts(sel, options)
	return retry.Do(ctx, u.logger, u.retryPolicy(o), "clear-and-fill", func(ctx context.Context) error {
		return u.ClearAndFill(ctx, sel, value, options...)
	})
}

// Check sets a selectable control to selected. Clicking only happens when
// the control is not already selected.
func (u *UserInteraction) Check(ctx context.Context, sel selector.Selector, options ...Option) error {
	return u.setSelected(ctx, "check", sel, true, options)
}

// Uncheck sets a selectable control to unselected.
func (u *UserInteraction) Uncheck(ctx context.Context, sel selector.Selector, options ...Option) error {
	return u.setSelected(ctx, "uncheck", sel, false, options)
}

func (u *UserInteraction) setSelected(ctx context.Context, op string, sel selector.Selector, target bool, options []Option) error {
	o := u.buildOpts(sel, options)
	h, err := u.resolveInteractable(ctx, sel, o)
	if err != nil {
		return u.fail(op, sel, err)
	}

	current, err := u.inspector.Property(ctx, h.ControlID, "selected")
	if err != nil {
		return u.fail(op, sel, err)
	}
	selected, ok := current.(bool)
	if !ok {
		return u.fail(op, sel, fmt.Errorf("property %q is %T, not a boolean", "selected", current))
	}
	if selected == target {
		return nil
	}

	if err := u.driver.Click(ctx, h.Query(), "left", 1); err != nil {
		return u.fail(op, sel, err)
	}
	return nil
}

// Hover moves the pointer onto the control, firing its mouseover chain.
func (u *UserInteraction) Hover(ctx context.Context, sel selector.Selector, options ...Option) error {
	o := u.buildOpts(sel, options)
	h, err := u.resolveDisplayed(ctx, sel, o)
	if err != nil {
		return u.fail("hover", sel, err)
	}
	if err := u.driver.MoveTo(ctx, h.Query()); err != nil {
		return u.fail("hover", sel, err)
	}
	return nil
}

// ScrollTo scrolls the control into the viewport. Alignment defaults to
// "nearest"; see WithAlignment.
func (u *UserInteraction) ScrollTo(ctx context.Context, sel selector.Selector, options ...Option) error {
	o := u.buildOpts(sel, options)
	h, err := u.resolveDisplayed(ctx, sel, o)
	if err != nil {
		return u.fail("scroll-to", sel, err)
	}
	if err := u.driver.ScrollIntoView(ctx, h.Query(), o.align); err != nil {
		return u.fail("scroll-to", sel, err)
	}
	return nil
}

// DragAndDrop drags the source control onto the target control.
func (u *UserInteraction) DragAndDrop(ctx context.Context, source, target selector.Selector, options ...Option) error {
	o := u.buildOpts(source, options)
	src, err := u.resolveInteractable(ctx, source, o)
	if err != nil {
		return u.fail("drag-and-drop", source, err)
	}
	dst, err := u.resolveDisplayed(ctx, target, o)
	if err != nil {
		return u.fail("drag-and-drop", target, err)
	}
	if err := u.driver.DragAndDrop(ctx, src.Query(), dst.Query()); err != nil {
		return u.fail("drag-and-drop", source, err)
	}
	return nil
}

// WaitUntilDisplayed blocks until the control is rendered and visible.
func (u *UserInteraction) WaitUntilDisplayed(ctx context.Context, sel selector.Selector, options ...Option) error {
	o := u.buildOpts(sel, options)
	if _, err := u.resolveDisplayed(ctx, sel, o); err != nil {
		return u.fail("wait-until-displayed", sel, err)
	}
	return nil
}

// WaitUntilEnabled blocks until the control is visible, enabled, and idle.
func (u *UserInteraction) WaitUntilEnabled(ctx context.Context, sel selector.Selector, options ...Option) error {
	o := u.buildOpts(sel, options)
	if _, err := u.resolveInteractable(ctx, sel, o); err != nil {
		return u.fail("wait-until-enabled", sel, err)
	}
	return nil
}

// inputQuery addresses the editable element of a rendered control: either
// the root element itself when it is an input, or the first inner input or
// textarea.
func inputQuery(h interfaces.Handle) string {
	root := h.Query()
	return fmt.Sprintf("input%s, textarea%s, %s input, %s textarea", root, root, root, root)
}
