package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects authorization metrics. A nil *Metrics records nothing.
type Metrics struct {
	Decisions         *prometheus.CounterVec
	MalformedSessions prometheus.Counter
	StaleVerdicts     prometheus.Counter
	Invalidations     *prometheus.CounterVec
	AuditDropped      prometheus.Counter
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_guard_decisions_total",
				Help: "Navigation guard decisions by verdict and reason",
			},
			[]string{"verdict", "reason", "unknown_route"},
		),
		MalformedSessions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_guard_malformed_sessions_total",
				Help: "Authenticated sessions without a recognized role",
			},
		),
		StaleVerdicts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_guard_stale_verdicts_total",
				Help: "Verdicts discarded because a newer navigation superseded them",
			},
		),
		Invalidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_session_invalidations_total",
				Help: "Session invalidation signals received",
			},
			[]string{"reason"},
		),
		AuditDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_access_audit_dropped_total",
				Help: "Access audit events dropped because the buffer was full",
			},
		),
	}
}

// RecordDecision counts one guard decision.
func (m *Metrics) RecordDecision(verdict, reason string, unknownRoute bool) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(verdict, reason, strconv.FormatBool(unknownRoute)).Inc()
}

// RecordMalformedSession counts one malformed session.
func (m *Metrics) RecordMalformedSession() {
	if m == nil {
		return
	}
	m.MalformedSessions.Inc()
}

// RecordStaleVerdict counts one discarded verdict.
func (m *Metrics) RecordStaleVerdict() {
	if m == nil {
		return
	}
	m.StaleVerdicts.Inc()
}

// RecordInvalidation counts one invalidation signal.
func (m *Metrics) RecordInvalidation(reason string) {
	if m == nil {
		return
	}
	m.Invalidations.WithLabelValues(reason).Inc()
}

// RecordAuditDropped counts one dropped audit event.
func (m *Metrics) RecordAuditDropped() {
	if m == nil {
		return
	}
	m.AuditDropped.Inc()
}
