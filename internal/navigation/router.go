package navigation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Liutianci99/grad-pilipala/internal/platform/metrics"
	dErrors "github.com/Liutianci99/grad-pilipala/pkg/domain-errors"
)

const maxRedirects = 3

// Router drives navigations through the guard and keeps the resulting
// history. A blocked destination is never recorded.
type Router struct {
	table   *Table
	guard   *Guard
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	history []Location
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterMetrics counts guard redirects.
func WithRouterMetrics(m *metrics.Metrics) RouterOption {
	return func(r *Router) {
		r.metrics = m
	}
}

func NewRouter(table *Table, guard *Guard, logger *slog.Logger, opts ...RouterOption) *Router {
	r := &Router{table: table, guard: guard, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Push navigates to path. Guard redirects replace the attempted navigation;
// the location finally shown is returned. Navigating to the current path adds
// no history entry.
func (r *Router) Push(ctx context.Context, path string) (Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from := r.currentLocked()
	to := r.table.Resolve(path)
	for range maxRedirects + 1 {
		decision := r.guard.Check(ctx, to, from)
		if decision.Allow {
			r.commitLocked(to)
			return to, nil
		}
		target, ok := r.table.Lookup(decision.Redirect)
		if !ok {
			return from, dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("redirect target %q is not a named route", decision.Redirect))
		}
		r.logger.DebugContext(ctx, "navigation redirected",
			"from", to.Path,
			"to", target.Path,
		)
		r.metrics.IncrementGuardRedirect(decision.Redirect)
		to = target
	}
	return from, dErrors.New(dErrors.CodeInvariantViolation,
		fmt.Sprintf("navigation to %s exceeded %d redirects", path, maxRedirects))
}

// Current returns the location on top of the history, or the zero Location
// before the first navigation.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentLocked()
}

// History returns a copy of the recorded locations, oldest first.
func (r *Router) History() []Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Location, len(r.history))
	copy(out, r.history)
	return out
}

func (r *Router) currentLocked() Location {
	if len(r.history) == 0 {
		return Location{}
	}
	return r.history[len(r.history)-1]
}

func (r *Router) commitLocked(to Location) {
	if len(r.history) > 0 && r.currentLocked().Path == to.Path {
		return
	}
	r.history = append(r.history, to)
}
