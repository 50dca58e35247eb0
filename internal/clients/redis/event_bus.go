package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/studydrops/backend/internal/logger"
)

// DomainEvent is published after a core operation commits. Consumers
// (gamification, notifications) subscribe independently; their failures never
// roll back the core operation.
type DomainEvent struct {
	Name       string         `json:"name"`
	UserID     string         `json:"user_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

const (
	EventCardReviewed    = "srs.card_reviewed"
	EventTrailGenerated  = "trail.generated"
	EventAnswerProcessed = "exam.answer_processed"
)

type EventBus interface {
	Publish(ctx context.Context, evt DomainEvent) error
	Close() error
}

type eventBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewEventBus connects to REDIS_ADDR and publishes on REDIS_EVENT_CHANNEL
// (default "studydrops.events").
func NewEventBus(log *logger.Logger) (EventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_EVENT_CHANNEL"))
	if ch == "" {
		ch = "studydrops.events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &eventBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *eventBus) Publish(ctx context.Context, evt DomainEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("event bus not initialized")
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *eventBus) Close() error {
	return b.rdb.Close()
}

// noopEventBus drops events when no Redis is configured.
type noopEventBus struct{}

func NewNoopEventBus() EventBus { return noopEventBus{} }

func (noopEventBus) Publish(context.Context, DomainEvent) error { return nil }
func (noopEventBus) Close() error                               { return nil }
