// Package policy decides whether a session may render a portal route.
//
// This package implements:
//   - The Route Policy Table (exact, longest-prefix and wildcard matching with
//     a fail-safe default for unknown routes)
//   - Login and dashboard destinations used to compute redirect targets
//   - The Access Decision Engine, a pure function of (path, session)
//   - Loading and validating policy files (YAML)
//
// Nothing in this package performs I/O after construction; the engine can be
// shared freely between goroutines.
package policy
