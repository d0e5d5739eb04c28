// Package auth provides the session primitives the portal's route
// authorization is built on.
//
// This package implements:
//   - The closed role set (tenant, landlord, admin) and the admin override
//   - The Session value read once per authorization decision
//   - The Session Inspector, the single boundary that reads externally owned
//     session state and never fails
//
// Authentication itself (credential checks, token issuance, refresh) lives
// outside this package; readers only translate an already-issued token.
package auth
