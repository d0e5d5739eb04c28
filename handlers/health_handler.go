package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/upb/rental-portal/repositories/postgres"
	"github.com/upb/rental-portal/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]string      `json:"checks,omitempty"`
	Stats     map[string]interface{} `json:"stats,omitempty"`
}

// RedisPinger is the part of the Redis client the readiness check needs
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db     *postgres.DB
	redis  RedisPinger
	stats  map[string]func() interface{}
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. db and redis may be nil when
// the gateway runs without them.
func NewHealthHandler(db *postgres.DB, redis RedisPinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redis,
		stats:  make(map[string]func() interface{}),
		logger: logger,
	}
}

// WithStats adds a component's runtime statistics to the readiness report
func (h *HealthHandler) WithStats(name string, stats func() interface{}) *HealthHandler {
	h.stats[name] = stats
	return h
}

// HandleHealth handles GET /healthz
// Basic health check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /readyz
// Readiness check - validates that all configured dependencies are available
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	record := func(name string, configured bool, check func(context.Context) error) {
		if !configured {
			checks[name] = "not_configured"
			return
		}
		if err := check(ctx); err != nil {
			h.logger.Warn(name+" health check failed", zap.Error(err))
			checks[name] = "unhealthy"
			allHealthy = false
			return
		}
		checks[name] = "healthy"
	}

	record("database", h.db != nil, func(ctx context.Context) error {
		return h.db.HealthCheck(ctx)
	})
	record("redis", h.redis != nil, func(ctx context.Context) error {
		return h.redis.Ping(ctx).Err()
	})

	// Determine overall status
	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	if len(h.stats) > 0 {
		response.Stats = make(map[string]interface{}, len(h.stats))
		for name, stats := range h.stats {
			response.Stats[name] = stats()
		}
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
