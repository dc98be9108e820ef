// pkg/driver/actions.go
package driver

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
)

// Navigate loads a URL and waits for the page to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("navigate", zap.String("url", url))
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// Click dispatches count clicks with the given button at the center of the
// element matching query. The element is scrolled into view first.
func (s *Session) Click(ctx context.Context, query, button string, count int) error {
	if count < 1 {
		count = 1
	}
	if button == "" {
		button = "left"
	}

	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Tasks{
		chromedp.WaitVisible(query, chromedp.ByQuery),
		chromedp.ScrollIntoView(query, chromedp.ByQuery),
		chromedp.Nodes(query, &nodes, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if len(nodes) == 0 {
				return fmt.Errorf("query %q matched no nodes", query)
			}
			return chromedp.MouseClickNode(nodes[0],
				chromedp.Button(button),
				chromedp.ClickCount(count),
			).Do(ctx)
		}),
	})
	if err != nil {
		return fmt.Errorf("click (%s x%d) on %q: %w", button, count, query, err)
	}
	return nil
}

// SetValue focuses the element matching query and types value into it
// keystroke by keystroke, so the page sees real input events.
func (s *Session) SetValue(ctx context.Context, query, value string) error {
	err := s.run(ctx, chromedp.Tasks{
		chromedp.WaitVisible(query, chromedp.ByQuery),
		chromedp.Focus(query, chromedp.ByQuery),
		chromedp.SendKeys(query, value, chromedp.ByQuery),
	})
	if err != nil {
		return fmt.Errorf("set value on %q: %w", query, err)
	}
	return nil
}

// ClearValue empties the element matching query with select-all and delete.
func (s *Session) ClearValue(ctx context.Context, query string) error {
	err := s.run(ctx, chromedp.Tasks{
		chromedp.WaitVisible(query, chromedp.ByQuery),
		chromedp.Focus(query, chromedp.ByQuery),
		chromedp.KeyEvent("a", chromedp.KeyModifiers(input.ModifierCtrl)),
		chromedp.KeyEvent(kb.Delete),
	})
	if err != nil {
		return fmt.Errorf("clear value on %q: %w", query, err)
	}
	return nil
}

// GetAttribute returns the value of a DOM attribute and whether it exists.
func (s *Session) GetAttribute(ctx context.Context, query, name string) (string, bool, error) {
	var value string
	var ok bool
	err := s.run(ctx, chromedp.AttributeValue(query, name, &value, &ok, chromedp.ByQuery))
	if err != nil {
		return "", false, fmt.Errorf("get attribute %q of %q: %w", name, query, err)
	}
	return value, ok, nil
}

// ScrollIntoView scrolls the element into the viewport. A non-empty align
// ("start", "center", "end", "nearest") selects the block alignment.
func (s *Session) ScrollIntoView(ctx context.Context, query, align string) error {
	var action chromedp.Action
	switch align {
	case "", "nearest":
		action = chromedp.ScrollIntoView(query, chromedp.ByQuery)
	case "start", "center", "end":
		expr := fmt.Sprintf(
			`document.querySelector(%q).scrollIntoView({block: %q, inline: "nearest"})`,
			query, align)
		action = chromedp.Evaluate(expr, nil)
	default:
		return fmt.Errorf("scroll into view: unknown alignment %q", align)
	}

	err := s.run(ctx, chromedp.Tasks{
		chromedp.WaitReady(query, chromedp.ByQuery),
		action,
	})
	if err != nil {
		return fmt.Errorf("scroll %q into view: %w", query, err)
	}
	return nil
}

// MoveTo moves the pointer onto the element's center, producing the usual
// mouseover event chain.
func (s *Session) MoveTo(ctx context.Context, query string) error {
	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Tasks{
		chromedp.WaitVisible(query, chromedp.ByQuery),
		chromedp.ScrollIntoView(query, chromedp.ByQuery),
		chromedp.Nodes(query, &nodes, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if len(nodes) == 0 {
				return fmt.Errorf("query %q matched no nodes", query)
			}
			box, err := dom.GetBoxModel().WithNodeID(nodes[0].NodeID).Do(ctx)
			if err != nil {
				return fmt.Errorf("element geometry: %w", err)
			}
			x, y, ok := boxCenter(box)
			if !ok {
				return fmt.Errorf("element has no geometric representation")
			}
			return chromedp.MouseEvent(input.MouseMoved, x, y).Do(ctx)
		}),
	})
	if err != nil {
		return fmt.Errorf("move to %q: %w", query, err)
	}
	return nil
}

// SendKeys dispatches raw key input to the currently focused element. Use
// the kb package constants for control keys (kb.Enter, kb.Tab, ...).
func (s *Session) SendKeys(ctx context.Context, keys string) error {
	if err := s.run(ctx, chromedp.KeyEvent(keys)); err != nil {
		return fmt.Errorf("send keys: %w", err)
	}
	return nil
}

// Focus gives keyboard focus to the element matching query.
func (s *Session) Focus(ctx context.Context, query string) error {
	err := s.run(ctx, chromedp.Tasks{
		chromedp.WaitReady(query, chromedp.ByQuery),
		chromedp.Focus(query, chromedp.ByQuery),
	})
	if err != nil {
		return fmt.Errorf("focus %q: %w", query, err)
	}
	return nil
}

// Evaluate runs a JavaScript expression in the page, awaiting any returned
// promise, and unmarshals the result into out. out may be nil.
func (s *Session) Evaluate(ctx context.Context, expr string, out any) error {
	awaitPromise := func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}
	if err := s.run(ctx, chromedp.Evaluate(expr, out, awaitPromise)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}

// DragAndDrop presses the left button on the source element's center, moves
// the pointer to the target element's center in a few steps, and releases.
func (s *Session) DragAndDrop(ctx context.Context, sourceQuery, targetQuery string) error {
	center := func(ctx context.Context, query string) (float64, float64, error) {
		var nodes []*cdp.Node
		tasks := chromedp.Tasks{
			chromedp.WaitVisible(query, chromedp.ByQuery),
			chromedp.ScrollIntoView(query, chromedp.ByQuery),
			chromedp.Nodes(query, &nodes, chromedp.ByQuery),
		}
		if err := tasks.Do(ctx); err != nil {
			return 0, 0, err
		}
		if len(nodes) == 0 {
			return 0, 0, fmt.Errorf("query %q matched no nodes", query)
		}
		box, err := dom.GetBoxModel().WithNodeID(nodes[0].NodeID).Do(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("element geometry: %w", err)
		}
		x, y, ok := boxCenter(box)
		if !ok {
			return 0, 0, fmt.Errorf("element has no geometric representation")
		}
		return x, y, nil
	}

	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		sx, sy, err := center(ctx, sourceQuery)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		tx, ty, err := center(ctx, targetQuery)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}

		if err := chromedp.MouseEvent(input.MousePressed, sx, sy, chromedp.Button("left"), chromedp.ClickCount(1)).Do(ctx); err != nil {
			return fmt.Errorf("press: %w", err)
		}
		// Intermediate moves so drop targets receive dragover updates.
		const steps = 8
		for i := 1; i <= steps; i++ {
			f := float64(i) / steps
			x := sx + (tx-sx)*f
			y := sy + (ty-sy)*f
			if err := chromedp.MouseEvent(input.MouseMoved, x, y, chromedp.Button("left")).Do(ctx); err != nil {
				return fmt.Errorf("move: %w", err)
			}
		}
		if err := chromedp.MouseEvent(input.MouseReleased, tx, ty, chromedp.Button("left"), chromedp.ClickCount(1)).Do(ctx); err != nil {
			return fmt.Errorf("release: %w", err)
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("drag %q onto %q: %w", sourceQuery, targetQuery, err)
	}
	return nil
}

// boxCenter calculates the centroid of a DOM box model. Content is laid out
// as [x0, y0, x1, y1, x2, y2, x3, y3].
func boxCenter(box *dom.BoxModel) (x, y float64, ok bool) {
	if box == nil || len(box.Content) < 8 {
		return 0, 0, false
	}
	x = (box.Content[0] + box.Content[2] + box.Content[4] + box.Content[6]) / 4
	y = (box.Content[1] + box.Content[3] + box.Content[5] + box.Content[7]) / 4
	return x, y, true
}
