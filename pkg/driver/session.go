// pkg/driver/session.go
package driver

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/handrail/internal/config"
)

// Session owns a single browser tab context and exposes the primitive action
// surface the helper layers build on. All operations are sequential calls
// against this one tab; the session itself is not safe for concurrent use.
type Session struct {
	id     string
	logger *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	// limiter paces DevTools commands so a tight retry loop cannot flood
	// the websocket.
	limiter *rate.Limiter
}

// Launch starts a browser process and opens one tab. The returned session
// owns the process and terminates it on Close.
func Launch(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	opts := buildAllocatorOptions(cfg.Browser)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)

	s, err := newSession(allocCtx, allocCancel, cfg, logger)
	if err != nil {
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return s, nil
}

// Attach joins an already running browser via its DevTools websocket URL and
// opens a fresh tab in it. Close releases the tab but leaves the browser
// process alone.
func Attach(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	if cfg.Browser.DevToolsURL == "" {
		return nil, fmt.Errorf("attach requires browser.devtools_url to be set")
	}
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, cfg.Browser.DevToolsURL)

	s, err := newSession(allocCtx, allocCancel, cfg, logger)
	if err != nil {
		allocCancel()
		return nil, fmt.Errorf("failed to attach to browser at %s: %w", cfg.Browser.DevToolsURL, err)
	}
	return s, nil
}

func newSession(allocCtx context.Context, allocCancel context.CancelFunc, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Confirm the browser is alive before handing the session out.
	checkCtx, cancelCheck := context.WithTimeout(tabCtx, 30*time.Second)
	defer cancelCheck()
	if err := chromedp.Run(checkCtx, chromedp.Navigate("about:blank")); err != nil {
		tabCancel()
		return nil, fmt.Errorf("browser failed to start or respond: %w", err)
	}

	limit := rate.Inf
	if cps := cfg.Browser.CommandsPerSecond; cps > 0 {
		limit = rate.Limit(cps)
	}

	id := uuid.NewString()
	s := &Session{
		id:          id,
		logger:      logger.Named("driver").With(zap.String("session_id", id)),
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		limiter:     rate.NewLimiter(limit, 1),
	}
	s.logger.Info("browser session ready")
	return s, nil
}

// buildAllocatorOptions assembles the launch flags, filtering out the flag
// that advertises automation to the page.
func buildAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	// Options are opaque funcs and cannot be filtered by inspection; the
	// enable-automation default sits at index 22 of
	// chromedp.DefaultExecAllocatorOptions for the pinned chromedp version.
	const enableAutomationIdx = 22
	var opts []chromedp.ExecAllocatorOption
	for i, opt := range chromedp.DefaultExecAllocatorOptions[:] {
		if i == enableAutomationIdx {
			continue
		}
		opts = append(opts, opt)
	}

	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", cfg.IgnoreTLSErrors),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", cfg.Headless),
	)

	// Extra arguments from configuration, "--name=value" or "--name" form.
	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(name, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	// Flags required when running inside containers.
	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}

	return opts
}

// ID returns the unique identifier of this session.
func (s *Session) ID() string { return s.id }

// run executes chromedp actions against the tab, honoring both the command
// pacing limiter and the caller's context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	runCtx := s.tabCtx
	var cancel context.CancelFunc
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(runCtx, deadline)
	} else {
		runCtx, cancel = context.WithCancel(runCtx)
	}
	defer cancel()

	// Propagate cancellation of the caller's context into the tab context.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		// Surface the caller's cancellation rather than the derived one.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// Close tears down the tab and, when this session launched the browser, the
// browser process as well.
func (s *Session) Close(ctx context.Context) error {
	s.logger.Info("closing browser session")

	s.tabCancel()
	if s.allocCancel != nil {
		s.allocCancel()
		select {
		case <-s.allocCtx.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
