// Package signals carries session invalidations between portal instances
// over Redis Pub/Sub.
package signals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Pub/Sub channel invalidations are published on.
const DefaultChannel = "portal:session:invalidated"

// Invalidation reasons. Anything else a publisher sends is applied as
// ReasonOther.
const (
	ReasonLogout  = "logout"
	ReasonExpired = "expired"
	ReasonOther   = "other"
)

// NormalizeReason maps a published reason onto the known set.
func NormalizeReason(reason string) string {
	switch r := strings.ToLower(strings.TrimSpace(reason)); r {
	case ReasonLogout, ReasonExpired:
		return r
	}
	return ReasonOther
}

// Invalidation announces that a subject's session ended (logout, expiry).
type Invalidation struct {
	Subject string `json:"subject"`
	Reason  string `json:"reason"`
}

// Invalidator applies an invalidation locally.
type Invalidator interface {
	Invalidate(ctx context.Context, subject, reason string) int
}

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publish announces inv on channel and returns the number of receivers.
func Publish(ctx context.Context, client publisher, channel string, inv Invalidation) (int64, error) {
	if strings.TrimSpace(inv.Subject) == "" {
		return 0, errors.New("invalidation subject is required")
	}
	payload, err := json.Marshal(inv)
	if err != nil {
		return 0, fmt.Errorf("failed to encode invalidation: %w", err)
	}
	n, err := client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return n, nil
}

// Subscriber feeds invalidations from Redis into an Invalidator.
type Subscriber struct {
	client  *redis.Client
	channel string
	target  Invalidator
	logger  *zap.Logger
}

func NewSubscriber(client *redis.Client, channel string, target Invalidator, logger *zap.Logger) *Subscriber {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Subscriber{
		client:  client,
		channel: channel,
		target:  target,
		logger:  logger,
	}
}

// Run subscribes and applies invalidations until ctx is cancelled.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}
	s.logger.Info("listening for session invalidations", zap.String("channel", s.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.handle(ctx, msg.Payload)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, payload string) {
	var inv Invalidation
	if err := json.Unmarshal([]byte(payload), &inv); err != nil {
		s.logger.Warn("dropping malformed invalidation", zap.Error(err))
		return
	}
	if inv.Subject == "" {
		s.logger.Warn("dropping invalidation without subject")
		return
	}
	reason := NormalizeReason(inv.Reason)
	if reason == ReasonOther && inv.Reason != "" {
		s.logger.Debug("unrecognized invalidation reason", zap.String("reason", inv.Reason))
	}

	n := s.target.Invalidate(ctx, inv.Subject, reason)
	s.logger.Debug("applied session invalidation",
		zap.String("subject", inv.Subject),
		zap.String("reason", reason),
		zap.Int("views", n))
}
