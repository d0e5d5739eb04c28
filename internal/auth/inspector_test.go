package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/upb/rental-portal/internal/shared"
	"go.uber.org/zap"
)

type MockSessionReader struct {
	mock.Mock
}

func (m *MockSessionReader) ReadSession(ctx context.Context, token string) (Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(Session), args.Error(1)
}

func TestInspectorCurrentSession(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("empty token is anonymous without reading", func(t *testing.T) {
		reader := new(MockSessionReader)
		inspector := NewInspector(reader, logger)

		assert.Equal(t, Anonymous(), inspector.CurrentSession(ctx, ""))
		reader.AssertNotCalled(t, "ReadSession")
	})

	t.Run("nil reader is anonymous", func(t *testing.T) {
		inspector := NewInspector(nil, logger)
		assert.Equal(t, Anonymous(), inspector.CurrentSession(ctx, "token"))
	})

	t.Run("valid token returns the session", func(t *testing.T) {
		reader := new(MockSessionReader)
		reader.On("ReadSession", mock.Anything, "good").Return(NewSession("u-1", RoleLandlord), nil)
		inspector := NewInspector(reader, logger)

		s := inspector.CurrentSession(ctx, "good")
		assert.True(t, s.Authenticated)
		assert.Equal(t, RoleLandlord, s.Role)
		reader.AssertExpectations(t)
	})

	t.Run("reader error is anonymous", func(t *testing.T) {
		reader := new(MockSessionReader)
		reader.On("ReadSession", mock.Anything, "bad").Return(Session{}, errors.New("token expired"))
		inspector := NewInspector(reader, logger)

		assert.Equal(t, Anonymous(), inspector.CurrentSession(ctx, "bad"))
	})

	t.Run("pending session falls back to anonymous", func(t *testing.T) {
		reader := new(MockSessionReader)
		reader.On("ReadSession", mock.Anything, "slow").Return(NewSession("u-1", RoleAdmin), shared.ErrSessionPending)
		inspector := NewInspector(reader, logger)

		assert.Equal(t, Anonymous(), inspector.CurrentSession(ctx, "slow"))
	})

	t.Run("result is normalized", func(t *testing.T) {
		reader := new(MockSessionReader)
		reader.On("ReadSession", mock.Anything, "odd").Return(Session{Role: RoleAdmin, Subject: "u-9"}, nil)
		inspector := NewInspector(reader, logger)

		assert.Equal(t, Anonymous(), inspector.CurrentSession(ctx, "odd"))
	})
}
