// Package observability provides structured logging and metrics for the
// portal gateway.
//
// This package implements:
//   - zap logger construction (JSON in production, console in development)
//   - Prometheus collectors for authorization verdicts, malformed sessions,
//     stale verdicts and session invalidation signals
package observability
