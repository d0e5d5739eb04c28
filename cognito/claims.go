package cognito

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/rental-portal/internal/auth"
)

// ErrMissingClaim is returned when a required claim is missing
var ErrMissingClaim = errors.New("missing required claim")

// parseClaims converts Claims to ParsedClaims with proper type conversions
func parseClaims(claims *Claims) (*ParsedClaims, error) {
	if claims.Sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	sub, err := uuid.Parse(claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sub UUID: %v", ErrInvalidToken, err)
	}

	parsed := &ParsedClaims{
		Sub:  sub,
		Role: claims.Role,
	}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Time
	}

	return parsed, nil
}

// Session converts validated claims into the session the guard decides on.
// The role claim is not rejected here: an unrecognized or missing role yields
// an authenticated session whose role the guard treats as malformed.
func (p *ParsedClaims) Session() auth.Session {
	role, ok := auth.ParseRole(p.Role)
	if !ok {
		role = auth.Role(p.Role)
	}
	s := auth.NewSession(p.Sub.String(), role)
	s.ExpiresAt = p.ExpiresAt
	return s
}
