package guard

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/internal/observability"
	"go.uber.org/zap"
)

func TestRegistryInvalidate(t *testing.T) {
	ctx := context.Background()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	registry := NewRegistry(metrics, zap.NewNop())

	navA := new(MockNavigator)
	navA.On("GoTo", mock.Anything, "/login").Return(nil).Once()
	navB := new(MockNavigator)
	navB.On("GoTo", mock.Anything, "/login").Return(nil).Once()
	navOther := new(MockNavigator)

	a := newTestWatcher(t, navA, auth.NewSession("l-1", auth.RoleLandlord), metrics)
	b := newTestWatcher(t, navB, auth.NewSession("l-1", auth.RoleLandlord), metrics)
	other := newTestWatcher(t, navOther, auth.NewSession("l-2", auth.RoleLandlord), metrics)
	for _, w := range []*Watcher{a, b, other} {
		_, err := w.Navigate(ctx, "/profile", auth.RoleNone)
		require.NoError(t, err)
		registry.Register(w)
	}
	require.Equal(t, 3, registry.Len())

	n := registry.Invalidate(ctx, "l-1", "logout")

	assert.Equal(t, 2, n)
	assert.False(t, a.Decision().Render)
	assert.False(t, b.Decision().Render)
	assert.True(t, other.Decision().Render)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Invalidations.WithLabelValues("logout")))
	navA.AssertExpectations(t)
	navB.AssertExpectations(t)
	navOther.AssertNotCalled(t, "GoTo", mock.Anything, mock.Anything)
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry(nil, zap.NewNop())

	t.Run("anonymous watchers are not tracked", func(t *testing.T) {
		w := newTestWatcher(t, new(MockNavigator), auth.Anonymous(), nil)
		registry.Register(w)
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("unregister removes the watcher once", func(t *testing.T) {
		w := newTestWatcher(t, new(MockNavigator), auth.NewSession("t-1", auth.RoleTenant), nil)
		unregister := registry.Register(w)
		require.Equal(t, 1, registry.Len())

		unregister()
		unregister()

		assert.Equal(t, 0, registry.Len())
		assert.Equal(t, 0, registry.Invalidate(context.Background(), "t-1", "expired"))
	})
}
