// pkg/interaction/dropdown.go
package interaction

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/handrail/internal/retry"
	"github.com/xkilldash9x/handrail/pkg/selector"
)

// SelectFromDropdown opens the dropdown described by sel and clicks the item
// whose display text equals value. The item selector is composed from the
// dropdown's own selector, so the click cannot land in another control's
// popup.
func (u *UserInteraction) SelectFromDropdown(ctx context.Context, sel selector.Selector, value string, options ...Option) error {
	o := u.buildOpts(sel, options)

	if err := u.Click(ctx, sel, options...); err != nil {
		return err
	}

	item := sel.Item(o.itemMetadata, selector.Matcher{"text": value})
	if err := u.Click(ctx, item, WithTimeout(o.timeout)); err != nil {
		return fmt.Errorf("select %q from dropdown: %w", value, err)
	}
	return nil
}

// SelectFromDropdownAndRetry runs SelectFromDropdown under the retry policy.
func (u *UserInteraction) SelectFromDropdownAndRetry(ctx context.Context, sel selector.Selector, value string, options ...Option) error {
	o := u.buildOpts(sel, options)
	return retry.Do(ctx, u.logger, u.retryPolicy(o), "select-from-dropdown", func(ctx context.Context) error {
		return u.SelectFromDropdown(ctx, sel, value, options...)
	})
}

// SelectMulti opens a multi-selection dropdown and clicks every given item,
// keeping the popup open between clicks, then closes it again.
func (u *UserInteraction) SelectMulti(ctx context.Context, sel selector.Selector, values []string, options ...Option) (err error) {
	if len(values) == 0 {
		return u.fail("select-multi", sel, fmt.Errorf("no values given"))
	}
	o := u.buildOpts(sel, options)

	if err := u.Click(ctx, sel, options...); err != nil {
		return err
	}
	// Once the popup is open it must close again even when an item click
	// fails, or it keeps covering the page for whatever runs next. The
	// item-click error stays the returned one.
	defer func() {
		if cerr := u.PressEscape(ctx); err == nil {
			err = cerr
		}
	}()

	for _, value := range values {
		item := sel.Item(o.itemMetadata, selector.Matcher{"title": value})
		if cerr := u.Click(ctx, item, WithTimeout(o.timeout)); cerr != nil {
			return fmt.Errorf("select %q from multi dropdown: %w", value, cerr)
		}
	}
	return nil
}
