package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/rental-portal/config"
)

func TestInitLogger(t *testing.T) {
	t.Run("default json logger", func(t *testing.T) {
		logger, err := initLogger(config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"})
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()
	})

	t.Run("development text logger", func(t *testing.T) {
		logger, err := initLogger(config.ObservabilityConfig{LogLevel: "debug", LogFormat: "text"})
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()
	})

	t.Run("invalid log level", func(t *testing.T) {
		logger, err := initLogger(config.ObservabilityConfig{LogLevel: "invalid", LogFormat: "json"})
		assert.Error(t, err)
		assert.Nil(t, logger)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("defaults when not set", func(t *testing.T) {
		logger, err := initLogger(config.ObservabilityConfig{})
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()
	})
}

func TestNewServer(t *testing.T) {
	cfg := config.ServerConfig{
		Host:        "127.0.0.1",
		Port:        0,
		ReadTimeout: 5 * time.Second,
	}

	blocked := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
		close(blocked)
	})

	srv := newServer(cfg, handler)
	assert.Equal(t, "127.0.0.1:0", srv.Addr)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() { _ = srv.Shutdown(ctx) }()

	select {
	case <-blocked:
	case <-time.After(2 * time.Second):
		t.Fatal("long-lived request was not cancelled on shutdown")
	}
}
