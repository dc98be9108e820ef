// pkg/interaction/keyboard.go
package interaction

import (
	"context"
	"errors"

	"github.com/chromedp/chromedp/kb"

	"github.com/xkilldash9x/handrail/pkg/selector"
)

// PressKey dispatches raw key input to the currently focused element. Use
// the kb package constants for control keys.
func (u *UserInteraction) PressKey(ctx context.Context, keys string) error {
	if keys == "" {
		return u.failKeys("press-key", errors.New("no keys given"))
	}
	if err := u.driver.SendKeys(ctx, keys); err != nil {
		return u.failKeys("press-key", err)
	}
	return nil
}

// PressEnter submits through the focused element. The Fill + PressEnter
// pair is the usual form-submit idiom.
func (u *UserInteraction) PressEnter(ctx context.Context) error {
	return u.PressKey(ctx, kb.Enter)
}

// PressTab moves focus to the next element in tab order.
func (u *UserInteraction) PressTab(ctx context.Context) error {
	return u.PressKey(ctx, kb.Tab)
}

// PressEscape dismisses popups and dialogs.
func (u *UserInteraction) PressEscape(ctx context.Context) error {
	return u.PressKey(ctx, kb.Escape)
}

// Focus resolves the control and gives it keyboard focus.
func (u *UserInteraction) Focus(ctx context.Context, sel selector.Selector, options ...Option) error {
	o := u.buildOpts(sel, options)
	h, err := u.resolveInteractable(ctx, sel, o)
	if err != nil {
		return u.fail("focus", sel, err)
	}
	if err := u.driver.Focus(ctx, h.Query()); err != nil {
		return u.fail("focus", sel, err)
	}
	return nil
}
