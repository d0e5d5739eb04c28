package signals

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, subject, reason string) int {
	return m.Called(ctx, subject, reason).Int(0)
}

type fakePublisher struct {
	channel string
	message interface{}
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.message = message
	return redis.NewIntResult(2, f.err)
}

func TestSubscriberHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("applies a valid invalidation", func(t *testing.T) {
		target := new(MockInvalidator)
		target.On("Invalidate", ctx, "user-1", "logout").Return(2).Once()
		s := NewSubscriber(nil, "", target, zap.NewNop())

		s.handle(ctx, `{"subject":"user-1","reason":"logout"}`)

		target.AssertExpectations(t)
		assert.Equal(t, DefaultChannel, s.channel)
	})

	t.Run("missing reason is applied as other", func(t *testing.T) {
		target := new(MockInvalidator)
		target.On("Invalidate", ctx, "user-1", ReasonOther).Return(0).Once()

		NewSubscriber(nil, "", target, zap.NewNop()).handle(ctx, `{"subject":"user-1"}`)

		target.AssertExpectations(t)
	})

	t.Run("arbitrary reasons are clamped", func(t *testing.T) {
		target := new(MockInvalidator)
		target.On("Invalidate", ctx, "user-1", ReasonExpired).Return(1).Once()
		target.On("Invalidate", ctx, "user-1", ReasonOther).Return(1).Twice()
		s := NewSubscriber(nil, "", target, zap.NewNop())

		s.handle(ctx, `{"subject":"user-1","reason":" Expired "}`)
		s.handle(ctx, `{"subject":"user-1","reason":"password-reset-8f1c2e"}`)
		s.handle(ctx, `{"subject":"user-1","reason":"x"}`)

		target.AssertExpectations(t)
	})

	t.Run("malformed payloads are dropped", func(t *testing.T) {
		target := new(MockInvalidator)
		s := NewSubscriber(nil, "", target, zap.NewNop())

		s.handle(ctx, `not json`)
		s.handle(ctx, `{"reason":"logout"}`)

		target.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNormalizeReason(t *testing.T) {
	tests := map[string]string{
		"logout":       ReasonLogout,
		"LOGOUT":       ReasonLogout,
		"expired":      ReasonExpired,
		"":             ReasonOther,
		"admin-revoke": ReasonOther,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeReason(in), in)
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("encodes the invalidation", func(t *testing.T) {
		pub := &fakePublisher{}
		n, err := Publish(ctx, pub, DefaultChannel, Invalidation{Subject: "user-1", Reason: "expired"})

		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, DefaultChannel, pub.channel)

		var got Invalidation
		require.NoError(t, json.Unmarshal(pub.message.([]byte), &got))
		assert.Equal(t, Invalidation{Subject: "user-1", Reason: "expired"}, got)
	})

	t.Run("subject is required", func(t *testing.T) {
		_, err := Publish(ctx, &fakePublisher{}, DefaultChannel, Invalidation{Subject: " "})
		assert.Error(t, err)
	})

	t.Run("redis errors are wrapped", func(t *testing.T) {
		_, err := Publish(ctx, &fakePublisher{err: errors.New("down")}, DefaultChannel, Invalidation{Subject: "u"})
		assert.ErrorContains(t, err, "failed to publish invalidation")
	})
}
