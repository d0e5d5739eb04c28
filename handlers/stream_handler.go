package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/upb/rental-portal/app"
	"github.com/upb/rental-portal/internal/guard"
	"github.com/upb/rental-portal/internal/shared"
	"github.com/upb/rental-portal/internal/signals"
	"github.com/upb/rental-portal/middleware"
	"github.com/upb/rental-portal/utils"
	"go.uber.org/zap"
)

const (
	// streamKeepAlive is how often an idle stream sends a comment line
	streamKeepAlive = 25 * time.Second
	// streamWriteTimeout bounds a single event write to a slow client
	streamWriteTimeout = 10 * time.Second
	streamQueueSize    = 4
)

// RedirectEvent tells the client to navigate away from the current view
type RedirectEvent struct {
	Target string `json:"target"`
}

// redirectQueue implements guard.Navigator for a stream. GoTo never blocks:
// when the queue is full the oldest pending target is dropped, so the most
// recent redirect always reaches the client.
type redirectQueue chan string

func (q redirectQueue) GoTo(ctx context.Context, target string) error {
	for {
		select {
		case q <- target:
			return nil
		default:
		}
		select {
		case <-q:
		default:
		}
	}
}

// eventWriter frames Server-Sent Events. It is only used from the handler
// goroutine.
type eventWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func newEventWriter(w http.ResponseWriter) *eventWriter {
	return &eventWriter{w: w, rc: http.NewResponseController(w)}
}

func (e *eventWriter) write(frame string) error {
	err := e.rc.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	if _, err := io.WriteString(e.w, frame); err != nil {
		return err
	}
	return e.rc.Flush()
}

func (e *eventWriter) send(event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return e.write(fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload))
}

func (e *eventWriter) ping() error {
	return e.write(": ping\n\n")
}

// GuardStreamHandler handles GET /api/v1/guard/stream.
// A long-lived view subscribes here; it receives its initial decision and a
// redirect event whenever its session is invalidated elsewhere or expires.
func GuardStreamHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := deps.Logger.With(zap.String("request_id", middleware.GetRequestIDFromContext(ctx)))

		q, err := parseGuardQuery(r)
		if err != nil {
			writeValidationError(w, "Invalid guard query", err)
			return
		}

		if _, ok := w.(http.Flusher); !ok {
			_ = utils.WriteInternalServerError(w, "Streaming unsupported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		events := newEventWriter(w)
		redirects := make(redirectQueue, streamQueueSize)
		watcher := guard.NewWatcher(deps.Guard, redirects, middleware.GetSessionFromContext(ctx), deps.Metrics, logger)

		ticket := watcher.Prepare(ctx, q.Path, q.Role())
		if err := events.send("decision", newGuardResponse(ticket.Decision)); err != nil {
			logger.Debug("guard stream closed before first event", zap.Error(err))
			return
		}
		if err := watcher.Commit(ctx, ticket); err != nil && !errors.Is(err, shared.ErrStaleVerdict) {
			logger.Debug("failed to queue initial redirect", zap.Error(err))
			return
		}

		unregister := deps.Watchers.Register(watcher)
		defer unregister()

		if s := watcher.Session(); s.Authenticated && !s.ExpiresAt.IsZero() {
			expiry := time.AfterFunc(time.Until(s.ExpiresAt), func() {
				deps.Metrics.RecordInvalidation(signals.ReasonExpired)
				if _, err := watcher.Invalidate(ctx, signals.ReasonExpired); err != nil && !errors.Is(err, shared.ErrStaleVerdict) {
					logger.Debug("failed to queue expiry redirect", zap.Error(err))
				}
			})
			defer expiry.Stop()
		}

		ticker := time.NewTicker(streamKeepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case target := <-redirects:
				if err := events.send("redirect", RedirectEvent{Target: target}); err != nil {
					logger.Debug("guard stream write failed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if err := events.ping(); err != nil {
					return
				}
			}
		}
	}
}
