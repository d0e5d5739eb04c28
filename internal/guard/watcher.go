package guard

import (
	"context"
	"sync"

	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/internal/observability"
	"github.com/upb/rental-portal/internal/shared"
	"go.uber.org/zap"
)

// Navigator performs client-side navigation to a redirect target.
type Navigator interface {
	GoTo(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

func (f NavigatorFunc) GoTo(ctx context.Context, target string) error {
	return f(ctx, target)
}

// Ticket is a decision stamped with the generation it was computed for.
type Ticket struct {
	Decision   RenderDecision
	generation uint64
}

// Watcher keeps the decision for one displayed view current. Every event
// that changes its inputs advances the generation; a Ticket from an older
// generation is never acted on.
type Watcher struct {
	mu sync.Mutex
	// navMu orders navigator calls without holding mu across them.
	navMu      sync.Mutex
	guard      *Guard
	navigator  Navigator
	metrics    *observability.Metrics
	logger     *zap.Logger
	session    auth.Session
	path       string
	required   auth.Role
	routed     bool
	generation uint64
	last       RenderDecision
}

// NewWatcher creates a watcher for a view owned by session.
func NewWatcher(g *Guard, navigator Navigator, session auth.Session, metrics *observability.Metrics, logger *zap.Logger) *Watcher {
	return &Watcher{
		guard:     g,
		navigator: navigator,
		metrics:   metrics,
		logger:    logger,
		session:   session.Normalize(),
	}
}

// Subject returns the identity the watcher's session belongs to.
func (w *Watcher) Subject() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Subject
}

// Session returns the session the watcher currently evaluates against.
func (w *Watcher) Session() auth.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// Decision returns the most recent decision.
func (w *Watcher) Decision() RenderDecision {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Prepare evaluates a navigation to path and returns a ticket for it. Any
// ticket issued earlier becomes stale.
func (w *Watcher) Prepare(ctx context.Context, path string, required auth.Role) Ticket {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.path = path
	w.required = required
	w.routed = true
	return w.evaluateLocked(ctx)
}

// Commit acts on a ticket: nothing for a render, GoTo for a redirect.
// A superseded ticket is discarded with shared.ErrStaleVerdict. The
// navigator is called without the watcher lock held.
func (w *Watcher) Commit(ctx context.Context, t Ticket) error {
	w.navMu.Lock()
	defer w.navMu.Unlock()

	w.mu.Lock()
	current := w.generation
	w.mu.Unlock()

	if t.generation != current {
		w.metrics.RecordStaleVerdict()
		w.logger.Debug("discarding stale verdict",
			zap.Uint64("ticket_generation", t.generation),
			zap.Uint64("current_generation", current),
		)
		return shared.ErrStaleVerdict
	}
	if t.Decision.Render {
		return nil
	}
	return w.navigator.GoTo(ctx, t.Decision.RedirectTarget)
}

// Navigate evaluates and commits a navigation in one step.
func (w *Watcher) Navigate(ctx context.Context, path string, required auth.Role) (RenderDecision, error) {
	t := w.Prepare(ctx, path, required)
	return t.Decision, w.Commit(ctx, t)
}

// UpdateSession replaces the session. The current view is re-evaluated only
// when authentication status or role changed.
func (w *Watcher) UpdateSession(ctx context.Context, session auth.Session) (RenderDecision, error) {
	session = session.Normalize()

	w.mu.Lock()
	changed := session.Authenticated != w.session.Authenticated || session.Role != w.session.Role
	w.session = session
	if !changed || !w.routed {
		d := w.last
		w.mu.Unlock()
		return d, nil
	}
	t := w.evaluateLocked(ctx)
	w.mu.Unlock()

	return t.Decision, w.Commit(ctx, t)
}

// Invalidate drops the session, e.g. after logout or expiry elsewhere, and
// re-evaluates the current view as anonymous.
func (w *Watcher) Invalidate(ctx context.Context, reason string) (RenderDecision, error) {
	w.logger.Info("session invalidated",
		zap.String("subject", w.Subject()),
		zap.String("reason", reason),
	)
	return w.UpdateSession(ctx, auth.Anonymous())
}

// MarkPending signals that the session is being resolved. Until a resolved
// session arrives through UpdateSession the view is treated as anonymous.
func (w *Watcher) MarkPending(ctx context.Context) (RenderDecision, error) {
	return w.UpdateSession(ctx, auth.Anonymous())
}

func (w *Watcher) evaluateLocked(ctx context.Context) Ticket {
	w.generation++
	w.last = w.guard.Evaluate(ctx, w.path, w.session, w.required)
	return Ticket{Decision: w.last, generation: w.generation}
}
