package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/upb/rental-portal/cognito"
	"github.com/upb/rental-portal/config"
	"github.com/upb/rental-portal/internal/auth"
	"github.com/upb/rental-portal/internal/guard"
	"github.com/upb/rental-portal/internal/observability"
	"github.com/upb/rental-portal/internal/policy"
	"github.com/upb/rental-portal/internal/signals"
	"github.com/upb/rental-portal/middleware"
	"github.com/upb/rental-portal/repositories"
	"github.com/upb/rental-portal/repositories/postgres"
	"github.com/upb/rental-portal/services/audit"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	DB     *postgres.DB  // nil when no database is configured
	Redis  *redis.Client // nil when no Redis URL is configured

	// Observability
	MetricsRegistry *prometheus.Registry
	Metrics         *observability.Metrics

	// Authorization
	Validator *cognito.CognitoValidator // nil when Cognito is not configured
	Engine    *policy.Engine
	Inspector *auth.Inspector
	Guard     *guard.Guard
	Watchers  *guard.Registry

	// Access audit (nil without a database)
	AccessEvents repositories.AccessEventRepository
	Audit        *audit.AccessAuditService

	// Middleware
	SessionMiddleware *middleware.SessionMiddleware
	GuardMiddleware   *middleware.GuardMiddleware

	subscriber *signals.Subscriber
	cancel     context.CancelFunc
	done       chan struct{}
	closeOnce  sync.Once
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics()

	if err := deps.initPolicy(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize route policy: %w", err)
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initAuth(cfg)
	deps.initGuard()

	if err := deps.initRedis(ctx, cfg); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// NewTestDependencies wires the authorization stack around engine without
// any infrastructure: no database, no Redis, no Cognito.
func NewTestDependencies(cfg *config.Config, engine *policy.Engine, reader auth.SessionReader, logger *zap.Logger) *Dependencies {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		Engine: engine,
	}
	deps.initMetrics()
	deps.Inspector = auth.NewInspector(reader, logger)
	deps.SessionMiddleware = middleware.NewSessionMiddleware(deps.Inspector, logger)
	deps.initGuard()
	return deps
}

func (d *Dependencies) initMetrics() {
	d.MetricsRegistry = prometheus.NewRegistry()
	d.MetricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = observability.NewMetrics(d.MetricsRegistry)
}

// initPolicy loads the route policy file, falling back to the built-in portal policy
func (d *Dependencies) initPolicy(cfg *config.Config) error {
	fileCfg := policy.DefaultConfig()
	source := "built-in"
	if cfg.Policy.File != "" {
		loaded, err := policy.LoadFile(cfg.Policy.File)
		if err != nil {
			return err
		}
		fileCfg = loaded
		source = cfg.Policy.File
	}

	engine, err := fileCfg.Build()
	if err != nil {
		return err
	}
	d.Engine = engine

	d.Logger.Info("route policy loaded",
		zap.String("source", source),
		zap.Int("routes", len(engine.Table().Entries())))
	return nil
}

// initDatabase connects the access audit store when a database is configured
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if cfg.Database == nil {
		d.Logger.Warn("no database configured, access audit disabled")
		return nil
	}

	db, err := postgres.NewDB(*cfg.Database, d.Logger)
	if err != nil {
		return err
	}
	if err := db.InitSchema(ctx); err != nil {
		_ = db.Close()
		return err
	}

	d.DB = db
	d.AccessEvents = postgres.NewAccessEventRepository(db, d.Logger)
	d.Audit = audit.NewAccessAuditService(d.AccessEvents, d.Metrics, d.Logger, audit.Config{
		BufferSize:  cfg.Audit.BufferSize,
		WorkerCount: cfg.Audit.WorkerCount,
	})
	if err := d.Audit.Start(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to start access audit: %w", err)
	}
	return nil
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	var reader auth.SessionReader
	if cfg.Cognito.Enabled() {
		d.Validator = cognito.NewCognitoValidator(cognito.Config{
			Region:      cfg.Cognito.Region,
			UserPoolID:  cfg.Cognito.UserPoolID,
			ClientID:    cfg.Cognito.ClientID,
			JWKSURL:     cfg.Cognito.JWKSURL,
			CacheTTL:    cfg.Cognito.CacheTTL,
			HTTPTimeout: 10 * time.Second,
		})
		reader = cognito.NewSessionReader(d.Validator)
		d.Logger.Info("cognito session reader initialized",
			zap.String("region", cfg.Cognito.Region),
			zap.String("user_pool_id", cfg.Cognito.UserPoolID))
	} else {
		d.Logger.Warn("cognito not configured, every visitor is anonymous")
	}

	d.Inspector = auth.NewInspector(reader, d.Logger)
	d.SessionMiddleware = middleware.NewSessionMiddleware(d.Inspector, d.Logger)
}

func (d *Dependencies) initGuard() {
	var reporter guard.Reporter
	if d.Audit != nil {
		reporter = d.Audit
	}
	d.Guard = guard.New(d.Engine, reporter, d.Metrics, d.Logger)
	d.Watchers = guard.NewRegistry(d.Metrics, d.Logger)
	d.GuardMiddleware = middleware.NewGuardMiddleware(d.Guard)
}

// initRedis connects the invalidation channel when a Redis URL is configured
func (d *Dependencies) initRedis(ctx context.Context, cfg *config.Config) error {
	if cfg.Redis.URL == "" {
		d.Logger.Warn("no redis configured, session invalidations stay local")
		return nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	d.Redis = client
	d.subscriber = signals.NewSubscriber(client, cfg.Redis.Channel, d.Watchers, d.Logger)
	d.Logger.Info("redis connection established", zap.String("channel", cfg.Redis.Channel))
	return nil
}

// Start runs background workers until Close is called.
func (d *Dependencies) Start(ctx context.Context) {
	if d.subscriber == nil {
		return
	}

	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		if err := d.subscriber.Run(ctx); err != nil {
			d.Logger.Error("invalidation subscriber stopped", zap.Error(err))
		}
	}()
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error

	d.closeOnce.Do(func() {
		d.Logger.Info("shutting down dependencies")

		if d.cancel != nil {
			d.cancel()
			select {
			case <-d.done:
			case <-ctx.Done():
			}
		}

		if d.Redis != nil {
			if err := d.Redis.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
			}
		}

		if d.Audit != nil {
			timeout := 5 * time.Second
			if deadline, ok := ctx.Deadline(); ok {
				timeout = time.Until(deadline)
			}
			if err := d.Audit.Stop(timeout); err != nil && !errors.Is(err, audit.ErrNotStarted) {
				errs = append(errs, fmt.Errorf("failed to stop access audit: %w", err))
			}
		}

		if d.DB != nil {
			if err := d.DB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close database: %w", err))
			}
		}

		_ = d.Logger.Sync()
	})

	return errors.Join(errs...)
}
