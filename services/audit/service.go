package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/upb/rental-portal/internal/guard"
	"github.com/upb/rental-portal/internal/observability"
	"github.com/upb/rental-portal/models"
	"github.com/upb/rental-portal/repositories"
	"github.com/upb/rental-portal/utils"
	"go.uber.org/zap"
)

var (
	// ErrNotStarted is returned when events are logged before Start or after Stop
	ErrNotStarted = errors.New("audit service not started")

	// ErrBufferFull is returned when the event buffer cannot accept more events
	ErrBufferFull = errors.New("audit event buffer full")
)

// AccessAuditService persists access events asynchronously. It implements
// guard.Reporter so denials never wait on the database.
type AccessAuditService struct {
	repo        repositories.AccessEventRepository
	metrics     *observability.Metrics
	logger      *zap.Logger
	eventChan   chan *models.AccessEvent
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	mu          sync.RWMutex
	started     bool
}

// Config holds configuration for the AccessAuditService
type Config struct {
	BufferSize  int // Size of the event buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		WorkerCount: 2,
	}
}

// NewAccessAuditService creates a new AccessAuditService instance
func NewAccessAuditService(repo repositories.AccessEventRepository, metrics *observability.Metrics, logger *zap.Logger, config Config) *AccessAuditService {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}

	return &AccessAuditService{
		repo:        repo,
		metrics:     metrics,
		logger:      logger,
		eventChan:   make(chan *models.AccessEvent, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Start starts the background workers
func (s *AccessAuditService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started access audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop stops accepting events and waits for pending ones to be written
func (s *AccessAuditService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.started = false
	pending := len(s.eventChan)
	close(s.eventChan)
	s.mu.Unlock()

	s.logger.Info("stopping access audit service", zap.Int("pending_events", pending))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("access audit service stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// LogEvent queues an event without blocking
func (s *AccessAuditService) LogEvent(event *models.AccessEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}

	select {
	case s.eventChan <- event:
		return nil
	default:
		s.metrics.RecordAuditDropped()
		s.logger.Warn("audit event channel full, dropping event",
			zap.String("path", event.Path),
			zap.String("reason", event.Reason))
		return ErrBufferFull
	}
}

// Report converts a guard report into an access event and queues it
func (s *AccessAuditService) Report(ctx context.Context, report guard.AccessReport) {
	event := models.NewAccessEvent(report.Path, string(report.Verdict.Kind), string(report.Verdict.Reason)).
		WithSession(report.Session.Subject, string(report.Session.Role), report.Session.Authenticated).
		WithRequest(report.RequestID, string(report.RequiredRole)).
		WithRedirect(report.Target, report.Verdict.UnknownRoute)

	if err := s.LogEvent(event); err != nil && !errors.Is(err, ErrBufferFull) {
		s.logger.Debug("access event not recorded", zap.Error(err))
	}
}

// ListRecent returns recent access events matching filter
func (s *AccessAuditService) ListRecent(ctx context.Context, filter models.AccessEventFilter) ([]*models.AccessEvent, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}
	return s.repo.ListRecent(ctx, filter)
}

func (s *AccessAuditService) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for event := range s.eventChan {
		if err := s.processEvent(event); err != nil {
			s.logger.Error("failed to process access event",
				zap.Int("worker_id", id),
				zap.String("path", event.Path),
				zap.Error(err))
		}
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

func (s *AccessAuditService) processEvent(event *models.AccessEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.repo.Insert(ctx, event)
}

// GetStats returns statistics about the audit service
func (s *AccessAuditService) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		BufferSize:    s.bufferSize,
		PendingEvents: len(s.eventChan),
		WorkerCount:   s.workerCount,
		Started:       s.started,
	}
}

// Stats represents audit service statistics
type Stats struct {
	BufferSize    int  `json:"buffer_size"`
	PendingEvents int  `json:"pending_events"`
	WorkerCount   int  `json:"worker_count"`
	Started       bool `json:"started"`
}
