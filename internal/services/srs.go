package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/studydrops/backend/internal/clients/redis"
	"github.com/studydrops/backend/internal/config"
	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/repos"
	"github.com/studydrops/backend/internal/types"
)

// SrsQueueItem is one due card plus enough context to render it.
type SrsQueueItem struct {
	Card     *types.SrsCard `json:"card"`
	DropID   uuid.UUID      `json:"drop_id"`
	Overdue  bool           `json:"overdue"`
	DueToday bool           `json:"due_today"`
}

type SrsQueue struct {
	Mode  types.SrsQueueMode `json:"mode"`
	Items []SrsQueueItem     `json:"items"`
}

type SrsSummary struct {
	TodayCount      int     `json:"today_count"`
	OverdueCount    int     `json:"overdue_count"`
	UpcomingCount   int     `json:"upcoming_count"`
	Retention7Days  float64 `json:"retention_7_days"`
	Reviews7Days    int64   `json:"reviews_7_days"`
	GeneratedAtUnix int64   `json:"generated_at_unix"`
}

type ReviewOutcome struct {
	Card     *types.SrsCard `json:"card"`
	Previous struct {
		IntervalDays int     `json:"interval_days"`
		EaseFactor   float64 `json:"ease_factor"`
		Repetition   int     `json:"repetition"`
	} `json:"previous"`
}

type SrsService interface {
	SubmitReview(ctx context.Context, userID, cardID uuid.UUID, grade int) (*ReviewOutcome, error)
	RegisterErrorReview(ctx context.Context, userID uuid.UUID, contentType types.SrsContentType, contentID, dropID uuid.UUID) (*ReviewOutcome, error)
	Queue(ctx context.Context, userID uuid.UUID, mode types.SrsQueueMode) (*SrsQueue, error)
	Summary(ctx context.Context, userID uuid.UUID) (*SrsSummary, error)
	UpdateSettings(ctx context.Context, settings *types.SrsUserSettings) error
	UpdateInterval(ctx context.Context, userID uuid.UUID, subtopic string, intervalMult, easeMult float64) (*types.SrsUserInterval, error)
	ListIntervals(ctx context.Context, userID uuid.UUID) ([]*types.SrsUserInterval, error)
}

type srsService struct {
	log       *logger.Logger
	db        *gorm.DB
	cfg       config.SrsConfig
	cards     repos.SrsCardRepo
	reviews   repos.SrsReviewRepo
	settings  repos.SrsSettingsRepo
	intervals repos.SrsIntervalRepo
	drops     repos.DropRepo
	cache     redisclient.Cache
	events    redisclient.EventBus
	cardLocks *keyedMutex
}

func NewSrsService(
	log *logger.Logger,
	db *gorm.DB,
	cfg config.SrsConfig,
	cards repos.SrsCardRepo,
	reviews repos.SrsReviewRepo,
	settings repos.SrsSettingsRepo,
	intervals repos.SrsIntervalRepo,
	drops repos.DropRepo,
	cache redisclient.Cache,
	events redisclient.EventBus,
) SrsService {
	return &srsService{
		log:       log.With("service", "SrsService"),
		db:        db,
		cfg:       cfg,
		cards:     cards,
		reviews:   reviews,
		settings:  settings,
		intervals: intervals,
		drops:     drops,
		cache:     cache,
		events:    events,
		cardLocks: newKeyedMutex(128),
	}
}

func queueCacheKey(userID uuid.UUID, mode types.SrsQueueMode) string {
	return fmt.Sprintf("srs:queue:%s:%s", userID, mode)
}

func summaryCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("srs:summary:%s", userID)
}

func (s *srsService) SubmitReview(ctx context.Context, userID, cardID uuid.UUID, grade int) (*ReviewOutcome, error) {
	if userID == uuid.Nil || cardID == uuid.Nil {
		return nil, fmt.Errorf("user and card ids are required")
	}
	if grade < 0 || grade > 5 {
		return nil, fmt.Errorf("grade %d outside 0..5", grade)
	}

	unlock := s.cardLocks.lock(cardID.String())
	defer unlock()

	var outcome *ReviewOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := s.cards.GetForUpdate(ctx, tx, cardID)
		if err != nil {
			return err
		}
		if card == nil {
			return fmt.Errorf("card %s not found", cardID)
		}
		if card.UserID != userID {
			return fmt.Errorf("card %s does not belong to user", cardID)
		}
		if card.Status == types.SrsStatusSuspended {
			return fmt.Errorf("card %s is suspended", cardID)
		}

		outcome, err = s.reviewLocked(ctx, tx, card, grade)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	s.emitReviewed(ctx, userID, outcome.Card, grade)
	return outcome, nil
}

// RegisterErrorReview is the bridge from a wrong exam answer into the review
// loop: the linked card gets an immediate grade-1 review, creating the card
// first when the content was never scheduled.
func (s *srsService) RegisterErrorReview(ctx context.Context, userID uuid.UUID, contentType types.SrsContentType, contentID, dropID uuid.UUID) (*ReviewOutcome, error) {
	if userID == uuid.Nil || contentID == uuid.Nil {
		return nil, fmt.Errorf("user and content ids are required")
	}

	// Lock on content identity so two concurrent errors on the same content
	// cannot both create a card.
	unlock := s.cardLocks.lock(userID.String() + ":" + contentID.String())
	defer unlock()

	var outcome *ReviewOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := s.cards.FindByContent(ctx, tx, userID, contentType, contentID)
		if err != nil {
			return err
		}
		if card == nil {
			anchor := dropID
			if anchor == uuid.Nil {
				anchor = contentID
			}
			card, err = s.cards.FindByUserAndDrop(ctx, tx, userID, anchor)
			if err != nil {
				return err
			}
			if card == nil {
				card, err = s.cards.Create(ctx, tx, userID, anchor)
				if err != nil {
					return err
				}
			}
			if err := s.cards.LinkContent(ctx, tx, card.ID, contentType, contentID); err != nil {
				return err
			}
		}

		outcome, err = s.reviewLocked(ctx, tx, card, 1)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	s.emitReviewed(ctx, userID, outcome.Card, 1)
	return outcome, nil
}

func (s *srsService) reviewLocked(ctx context.Context, tx *gorm.DB, card *types.SrsCard, grade int) (*ReviewOutcome, error) {
	settings, err := s.settings.Get(ctx, tx, card.UserID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = types.DefaultSrsSettings(card.UserID)
	}

	intervalMult, easeMult := 1.0, 1.0
	drop, err := s.drops.Get(ctx, tx, card.DropID)
	if err != nil {
		return nil, err
	}
	if drop != nil {
		override, err := s.intervals.Get(ctx, tx, card.UserID, drop.TopicCode)
		if err != nil {
			return nil, err
		}
		if override != nil {
			intervalMult = override.IntervalMultiplier
			easeMult = override.EaseMultiplier
		}
	}

	now := time.Now().UTC()
	result := Schedule(ScheduleInput{
		IntervalDays:       card.IntervalDays,
		EaseFactor:         card.EaseFactor,
		Repetition:         card.Repetition,
		Grade:              grade,
		MemoryStrength:     settings.MemoryStrength,
		LearningStyle:      settings.LearningStyle,
		BaseIntervalDays:   settings.BaseIntervalDays,
		IntervalMultiplier: intervalMult,
		EaseMultiplier:     easeMult,
		Now:                now,
	})

	outcome := &ReviewOutcome{}
	outcome.Previous.IntervalDays = card.IntervalDays
	outcome.Previous.EaseFactor = card.EaseFactor
	outcome.Previous.Repetition = card.Repetition

	updated, err := s.cards.UpdateScheduling(ctx, tx, card.ID, result.IntervalDays, result.EaseFactor, result.Repetition, result.NextReviewAt)
	if err != nil {
		return nil, err
	}
	outcome.Card = updated

	review := &types.SrsReview{
		CardID:     card.ID,
		UserID:     card.UserID,
		Grade:      grade,
		ReviewedAt: now,
	}
	if err := s.reviews.Append(ctx, tx, review); err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *srsService) Queue(ctx context.Context, userID uuid.UUID, mode types.SrsQueueMode) (*SrsQueue, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	switch mode {
	case types.SrsQueueToday, types.SrsQueueOverdue, types.SrsQueueUpcoming, types.SrsQueueAll:
	case "":
		mode = types.SrsQueueToday
	default:
		return nil, fmt.Errorf("unknown queue mode %q", mode)
	}

	key := queueCacheKey(userID, mode)
	var cached SrsQueue
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	now := time.Now().UTC()
	cards, err := s.cards.ListByMode(ctx, nil, userID, mode, now, s.cfg.QueueLimit)
	if err != nil {
		return nil, err
	}

	startOfToday := now.Truncate(24 * time.Hour)
	startOfTomorrow := startOfToday.Add(24 * time.Hour)
	queue := &SrsQueue{Mode: mode, Items: make([]SrsQueueItem, 0, len(cards))}
	for _, card := range cards {
		queue.Items = append(queue.Items, SrsQueueItem{
			Card:     card,
			DropID:   card.DropID,
			Overdue:  card.NextReviewAt.Before(startOfToday),
			DueToday: card.NextReviewAt.Before(startOfTomorrow),
		})
	}

	ttl := time.Duration(s.cfg.QueueCacheTTLSeconds) * time.Second
	if ttl > 0 {
		if err := s.cache.Set(ctx, key, queue, ttl); err != nil {
			s.log.Warn("Queue cache write failed", "error", err)
		}
	}
	return queue, nil
}

func (s *srsService) Summary(ctx context.Context, userID uuid.UUID) (*SrsSummary, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}

	key := summaryCacheKey(userID)
	var cached SrsSummary
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	now := time.Now().UTC()
	today, err := s.cards.ListByMode(ctx, nil, userID, types.SrsQueueToday, now, s.cfg.QueueLimit)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.cards.ListByMode(ctx, nil, userID, types.SrsQueueUpcoming, now, s.cfg.QueueLimit)
	if err != nil {
		return nil, err
	}
	overdue, err := s.cards.CountOverdue(ctx, nil, userID, now.Truncate(24*time.Hour))
	if err != nil {
		return nil, err
	}
	retention, reviewCount, err := s.reviews.RetentionSince(ctx, nil, userID, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}

	summary := &SrsSummary{
		TodayCount:      len(today),
		OverdueCount:    int(overdue),
		UpcomingCount:   len(upcoming),
		Retention7Days:  retention,
		Reviews7Days:    reviewCount,
		GeneratedAtUnix: now.Unix(),
	}

	ttl := time.Duration(s.cfg.QueueCacheTTLSeconds) * time.Second
	if ttl > 0 {
		if err := s.cache.Set(ctx, key, summary, ttl); err != nil {
			s.log.Warn("Summary cache write failed", "error", err)
		}
	}
	return summary, nil
}

func (s *srsService) UpdateSettings(ctx context.Context, settings *types.SrsUserSettings) error {
	if settings == nil || settings.UserID == uuid.Nil {
		return fmt.Errorf("settings with user id are required")
	}
	if err := s.settings.Upsert(ctx, nil, settings); err != nil {
		return err
	}
	s.invalidate(ctx, settings.UserID)
	return nil
}

// UpdateInterval upserts the per-subtopic scheduler multipliers. The cached
// queue and summary views are invalidated so the bias is visible right away.
func (s *srsService) UpdateInterval(ctx context.Context, userID uuid.UUID, subtopic string, intervalMult, easeMult float64) (*types.SrsUserInterval, error) {
	if userID == uuid.Nil || subtopic == "" {
		return nil, fmt.Errorf("user id and subtopic are required")
	}
	if intervalMult <= 0 || easeMult <= 0 {
		return nil, fmt.Errorf("multipliers must be > 0")
	}

	row, err := s.intervals.Get(ctx, nil, userID, subtopic)
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = &types.SrsUserInterval{
			UserID:   userID,
			Subtopic: subtopic,
		}
	}
	row.IntervalMultiplier = intervalMult
	row.EaseMultiplier = easeMult

	if err := s.intervals.Upsert(ctx, nil, row); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return row, nil
}

func (s *srsService) ListIntervals(ctx context.Context, userID uuid.UUID) ([]*types.SrsUserInterval, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	return s.intervals.List(ctx, nil, userID)
}

func (s *srsService) invalidate(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.DelPattern(ctx, fmt.Sprintf("srs:queue:%s:*", userID)); err != nil {
		s.log.Warn("Queue cache invalidation failed", "error", err)
	}
	if err := s.cache.DelPattern(ctx, summaryCacheKey(userID)); err != nil {
		s.log.Warn("Summary cache invalidation failed", "error", err)
	}
}

func (s *srsService) emitReviewed(ctx context.Context, userID uuid.UUID, card *types.SrsCard, grade int) {
	evt := redisclient.DomainEvent{
		Name:       redisclient.EventCardReviewed,
		UserID:     userID.String(),
		OccurredAt: time.Now().UTC(),
		Payload: map[string]any{
			"card_id":        card.ID.String(),
			"grade":          grade,
			"interval_days":  card.IntervalDays,
			"next_review_at": card.NextReviewAt,
		},
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("Event publish failed", "event", evt.Name, "error", err)
	}
}
