// pkg/interaction/options.go
package interaction

import (
	"time"

	"github.com/xkilldash9x/handrail/internal/retry"
	"github.com/xkilldash9x/handrail/pkg/selector"
)

// Default control types composed for popup item selection. Overridable per
// call with WithItemMetadata.
const (
	defaultItemMetadata = "sap.ui.core.Item"
)

// opts carries the per-call knobs of a helper invocation.
type opts struct {
	index        int
	timeout      time.Duration
	align        string
	itemMetadata string
	policy       *retry.Policy
}

// Option adjusts a single helper invocation.
type Option func(*opts)

// WithIndex picks the index-th match when a selector is ambiguous.
// The default is 0.
func WithIndex(index int) Option {
	return func(o *opts) { o.index = index }
}

// WithTimeout overrides the configured wait timeout for this call only.
func WithTimeout(timeout time.Duration) Option {
	return func(o *opts) { o.timeout = timeout }
}

// WithAlignment sets the scroll block alignment for ScrollTo
// ("start", "center", "end", "nearest").
func WithAlignment(align string) Option {
	return func(o *opts) { o.align = align }
}

// WithItemMetadata overrides the control type composed for dropdown and list
// item selection.
func WithItemMetadata(metadata string) Option {
	return func(o *opts) { o.itemMetadata = metadata }
}

// WithRetryPolicy overrides the configured retry policy for a *AndRetry
// helper.
func WithRetryPolicy(attempts int, interval time.Duration) Option {
	return func(o *opts) {
		o.policy = &retry.Policy{Attempts: attempts, Interval: interval}
	}
}

// buildOpts layers the per-call knobs: the selector's own index and timeout
// seed the defaults, explicit options win over both.
func (u *UserInteraction) buildOpts(sel selector.Selector, options []Option) opts {
	o := opts{
		index:        sel.Index,
		timeout:      u.cfg.DefaultTimeout,
		itemMetadata: defaultItemMetadata,
	}
	if sel.Timeout > 0 {
		o.timeout = sel.Timeout
	}
	for _, apply := range options {
		apply(&o)
	}
	if o.timeout <= 0 {
		o.timeout = u.cfg.DefaultTimeout
	}
	return o
}

func (u *UserInteraction) retryPolicy(o opts) retry.Policy {
	if o.policy != nil {
		return *o.policy
	}
	return retry.Policy{Attempts: u.cfg.RetryAttempts, Interval: u.cfg.RetryInterval}
}
