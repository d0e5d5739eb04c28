// Package guard enacts authorization verdicts at navigation time.
//
// Guard turns a verdict into a RenderDecision and owns the side effects the
// decision engine must not have: logging, metrics and access reports. Watcher
// keeps a displayed view's decision current as its path, required role or
// session change, and discards verdicts that a newer event superseded.
package guard

import (
	"context"

	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/internal/observability"
	"github.com/upb/rental-portal/internal/policy"
	"github.com/upb/rental-portal/internal/shared"
	"go.uber.org/zap"
)

// RenderDecision tells the rendering layer whether to mount the requested
// page or navigate away.
type RenderDecision struct {
	Render         bool
	RedirectTarget string
	Verdict        policy.Verdict
}

// AccessReport describes a denied navigation or a malformed session.
type AccessReport struct {
	RequestID    string
	Path         string
	Session      auth.Session
	RequiredRole auth.Role
	Verdict      policy.Verdict
	Target       string
}

// Reporter receives access reports. Reporting is best effort and must not
// block the navigation.
type Reporter interface {
	Report(ctx context.Context, report AccessReport)
}

// Guard is the integration point invoked on every route transition.
type Guard struct {
	engine   *policy.Engine
	reporter Reporter
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// New creates a Guard. reporter and metrics may be nil.
func New(engine *policy.Engine, reporter Reporter, metrics *observability.Metrics, logger *zap.Logger) *Guard {
	return &Guard{
		engine:   engine,
		reporter: reporter,
		metrics:  metrics,
		logger:   logger,
	}
}

// Evaluate decides whether session may render path. required is an optional
// per-page role (auth.RoleNone for none); when set, it must be satisfied in
// addition to the route table.
func (g *Guard) Evaluate(ctx context.Context, path string, session auth.Session, required auth.Role) RenderDecision {
	v := g.engine.Decide(path, session)
	v = g.engine.Require(v, path, session, required)

	d := RenderDecision{
		Render:  v.Allowed(),
		Verdict: v,
	}
	if !d.Render {
		d.RedirectTarget = g.engine.Target(v)
	}

	g.observe(ctx, path, session, required, d)
	return d
}

// Engine returns the decision engine backing the guard.
func (g *Guard) Engine() *policy.Engine {
	return g.engine
}

func (g *Guard) observe(ctx context.Context, path string, session auth.Session, required auth.Role, d RenderDecision) {
	v := d.Verdict
	requestID := shared.RequestID(ctx)
	g.metrics.RecordDecision(string(v.Kind), string(v.Reason), v.UnknownRoute)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", path),
		zap.Bool("authenticated", session.Authenticated),
		zap.String("role", session.Role.String()),
		zap.String("verdict", string(v.Kind)),
		zap.String("reason", string(v.Reason)),
		zap.Bool("unknown_route", v.UnknownRoute),
	}
	if required != auth.RoleNone {
		fields = append(fields, zap.String("required_role", string(required)))
	}

	switch {
	case d.Render:
		g.logger.Debug("navigation allowed", fields...)
		return
	case v.Reason == policy.ReasonMalformedSession:
		g.metrics.RecordMalformedSession()
		g.logger.Warn("malformed session, failing closed",
			append(fields, zap.String("subject", session.Subject), zap.String("redirect_target", d.RedirectTarget))...)
	default:
		g.logger.Info("navigation redirected",
			append(fields, zap.String("redirect_target", d.RedirectTarget), zap.Error(v.Err()))...)
	}

	if g.reporter != nil {
		g.reporter.Report(ctx, AccessReport{
			RequestID:    requestID,
			Path:         path,
			Session:      session,
			RequiredRole: required,
			Verdict:      v,
			Target:       d.RedirectTarget,
		})
	}
}
