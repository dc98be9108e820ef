// -- cmd/inspect.go --
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/handrail/internal/observability"
	"github.com/xkilldash9x/handrail/pkg/driver"
	"github.com/xkilldash9x/handrail/pkg/driver/bridge"
	"github.com/xkilldash9x/handrail/pkg/selector"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// snapshot is one line of inspect output.
type snapshot struct {
	Selector           string `json:"selector"`
	ControlID          string `json:"controlId,omitempty"`
	DOMID              string `json:"domId,omitempty"`
	Displayed          bool   `json:"displayed"`
	Enabled            bool   `json:"enabled"`
	Busy               bool   `json:"busy"`
	BindingContextPath string `json:"bindingContextPath,omitempty"`
	Error              string `json:"error,omitempty"`
}

func newInspectCommand() *cobra.Command {
	var (
		pageURL  string
		headful  bool
		timeout  int
		parallel int
	)

	inspectCmd := &cobra.Command{
		Use:   "inspect [selector...]",
		Short: "Resolve selectors against a live page and print control snapshots.",
		Long: `Inspect opens (or attaches to) a browser, resolves each selector, and
prints a JSON snapshot of the matched control. A selector argument is
either inline JSON or @path/to/file.json holding the selector document.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selectors, err := parseSelectorArgs(args)
			if err != nil {
				return err
			}
			return runInspect(cmd.Context(), pageURL, headful, timeout, parallel, selectors)
		},
	}

	inspectCmd.Flags().StringVarP(&pageURL, "url", "u", "", "page to navigate to before resolving")
	inspectCmd.Flags().BoolVar(&headful, "headful", false, "run the browser with a visible window")
	inspectCmd.Flags().IntVarP(&timeout, "timeout", "t", 0, "per-selector resolve timeout in seconds (0 uses the configured default)")
	inspectCmd.Flags().IntVar(&parallel, "parallel", 4, "number of selectors resolved concurrently")
	return inspectCmd
}

func parseSelectorArgs(args []string) ([]selector.Selector, error) {
	selectors := make([]selector.Selector, 0, len(args))
	for _, arg := range args {
		raw := []byte(arg)
		if strings.HasPrefix(arg, "@") {
			data, err := os.ReadFile(arg[1:])
			if err != nil {
				return nil, fmt.Errorf("reading selector file: %w", err)
			}
			raw = data
		}

		var sel selector.Selector
		if err := json.Unmarshal(raw, &sel); err != nil {
			return nil, fmt.Errorf("parsing selector %q: %w", arg, err)
		}
		if err := sel.Validate(); err != nil {
			return nil, fmt.Errorf("selector %q: %w", arg, err)
		}
		selectors = append(selectors, sel)
	}
	return selectors, nil
}

func runInspect(ctx context.Context, pageURL string, headful bool, timeoutSecs, parallel int, selectors []selector.Selector) error {
	logger := observability.GetLogger()

	if headful {
		cfg.Browser.Headless = false
	}

	var (
		session *driver.Session
		err     error
	)
	if cfg.Browser.DevToolsURL != "" {
		session, err = driver.Attach(ctx, cfg, logger)
	} else {
		session, err = driver.Launch(ctx, cfg, logger)
	}
	if err != nil {
		return fmt.Errorf("starting browser session: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if cerr := session.Close(closeCtx); cerr != nil {
			logger.Warn("session close failed", zap.Error(cerr))
		}
	}()

	if pageURL != "" {
		if err := session.Navigate(ctx, pageURL); err != nil {
			return fmt.Errorf("navigating to %s: %w", pageURL, err)
		}
	}

	br := bridge.New(session, logger, cfg.Interaction.PollInterval)

	timeout := cfg.Interaction.DefaultTimeout
	if timeoutSecs > 0 {
		timeout = time.Duration(timeoutSecs) * time.Second
	}

	snapshots := make([]snapshot, len(selectors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, sel := range selectors {
		g.Go(func() error {
			snapshots[i] = inspectOne(gctx, br, sel, timeout)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, snap := range snapshots {
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
	}
	return nil
}

func inspectOne(ctx context.Context, br *bridge.Bridge, sel selector.Selector, timeout time.Duration) snapshot {
	snap := snapshot{Selector: sel.Summary()}

	h, err := br.Resolve(ctx, sel, 0, timeout)
	if err != nil {
		snap.Error = err.Error()
		return snap
	}
	snap.ControlID = h.ControlID
	snap.DOMID = h.DOMID

	if state, err := br.State(ctx, h.ControlID); err == nil {
		snap.Displayed = state.Displayed
		snap.Enabled = state.Enabled
		snap.Busy = state.Busy
	}
	if path, err := br.BindingContextPath(ctx, h.ControlID); err == nil {
		snap.BindingContextPath = path
	}
	return snap
}
