package auth

import (
	"context"
	"errors"

	"github.com/upb/rental-portal/internal/shared"
	"go.uber.org/zap"
)

// SessionReader reads externally owned session state for a presented token.
// Implementations return shared.ErrSessionPending while the session is still
// resolving.
type SessionReader interface {
	ReadSession(ctx context.Context, token string) (Session, error)
}

// Inspector is the only place the authorization core reads session state.
type Inspector struct {
	reader SessionReader
	logger *zap.Logger
}

// NewInspector creates an Inspector over reader. A nil reader treats every
// caller as anonymous.
func NewInspector(reader SessionReader, logger *zap.Logger) *Inspector {
	return &Inspector{
		reader: reader,
		logger: logger,
	}
}

// CurrentSession returns the session for token. It never fails: a missing
// token, an invalid or expired token, and a session that is still resolving all
// yield the anonymous session.
func (i *Inspector) CurrentSession(ctx context.Context, token string) Session {
	if token == "" || i.reader == nil {
		return Anonymous()
	}

	session, err := i.reader.ReadSession(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrSessionPending) {
			i.logger.Debug("session still resolving, treating as anonymous")
		} else {
			i.logger.Debug("session read failed, treating as anonymous", zap.Error(err))
		}
		return Anonymous()
	}

	return session.Normalize()
}
