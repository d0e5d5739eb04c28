package guard

import (
	"context"
	"errors"
	"sync"

	"github.com/upb/rental-portal/internal/observability"
	"github.com/upb/rental-portal/internal/shared"
	"go.uber.org/zap"
)

// Registry tracks live watchers by subject so that session invalidations
// published elsewhere reach every open view of that user.
type Registry struct {
	mu       sync.RWMutex
	watchers map[string]map[*Watcher]struct{}
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewRegistry(metrics *observability.Metrics, logger *zap.Logger) *Registry {
	return &Registry{
		watchers: make(map[string]map[*Watcher]struct{}),
		metrics:  metrics,
		logger:   logger,
	}
}

// Register adds w under its current subject. Anonymous watchers have nothing
// to invalidate and are not tracked. The returned func removes the watcher.
func (r *Registry) Register(w *Watcher) func() {
	subject := w.Subject()
	if subject == "" {
		return func() {}
	}

	r.mu.Lock()
	set, ok := r.watchers[subject]
	if !ok {
		set = make(map[*Watcher]struct{})
		r.watchers[subject] = set
	}
	set[w] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.watchers[subject], w)
			if len(r.watchers[subject]) == 0 {
				delete(r.watchers, subject)
			}
		})
	}
}

// Invalidate re-evaluates every watcher of subject as anonymous and returns
// how many were notified.
func (r *Registry) Invalidate(ctx context.Context, subject, reason string) int {
	r.metrics.RecordInvalidation(reason)

	r.mu.RLock()
	targets := make([]*Watcher, 0, len(r.watchers[subject]))
	for w := range r.watchers[subject] {
		targets = append(targets, w)
	}
	r.mu.RUnlock()

	for _, w := range targets {
		if _, err := w.Invalidate(ctx, reason); err != nil && !errors.Is(err, shared.ErrStaleVerdict) {
			r.logger.Warn("failed to redirect invalidated view",
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}

	r.logger.Debug("processed session invalidation",
		zap.String("subject", subject),
		zap.String("reason", reason),
		zap.Int("watchers", len(targets)),
	)
	return len(targets)
}

// Len returns the number of tracked watchers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, set := range r.watchers {
		n += len(set)
	}
	return n
}
