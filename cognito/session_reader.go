package cognito

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/internal/shared"
)

// TokenValidator validates a raw token and returns its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*ParsedClaims, error)
}

// SessionReader adapts a TokenValidator to auth.SessionReader.
type SessionReader struct {
	validator TokenValidator
}

func NewSessionReader(validator TokenValidator) *SessionReader {
	return &SessionReader{validator: validator}
}

// ReadSession validates token and returns its session. While the signing
// keys cannot be fetched the session is reported as pending.
func (r *SessionReader) ReadSession(ctx context.Context, token string) (auth.Session, error) {
	claims, err := r.validator.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrJWKSFetchFailed) {
			return auth.Anonymous(), fmt.Errorf("%w: %v", shared.ErrSessionPending, err)
		}
		return auth.Anonymous(), err
	}
	return claims.Session(), nil
}
