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

type GenerateTrailInput struct {
	UserID        uuid.UUID
	BudgetMinutes int
	ExamDate      *time.Time
	Date          time.Time
}

type GeneratedTrail struct {
	Trail    *types.TrailOfDay    `json:"trail"`
	Snapshot *types.StateSnapshot `json:"snapshot"`
	Criteria CriteriaScores       `json:"criteria"`
}

type TrailItemUpdate struct {
	ItemID          uuid.UUID
	Status          types.TrailItemStatus
	DurationMinutes *int
}

type TrailService interface {
	GenerateTrail(ctx context.Context, in GenerateTrailInput) (*GeneratedTrail, error)
	GetTrail(ctx context.Context, userID uuid.UUID, date time.Time) (*types.TrailOfDay, error)
	UpdateTrailItem(ctx context.Context, userID uuid.UUID, update TrailItemUpdate) (*types.TrailItem, error)
}

type trailService struct {
	log        *logger.Logger
	db         *gorm.DB
	cfg        config.SequencingConfig
	inference  InferenceService
	priorities PrioritizationService
	trails     repos.TrailRepo
	events     redisclient.EventBus
}

func NewTrailService(
	log *logger.Logger,
	db *gorm.DB,
	cfg config.SequencingConfig,
	inference InferenceService,
	priorities PrioritizationService,
	trails repos.TrailRepo,
	events redisclient.EventBus,
) TrailService {
	return &trailService{
		log:        log.With("service", "TrailService"),
		db:         db,
		cfg:        cfg,
		inference:  inference,
		priorities: priorities,
		trails:     trails,
		events:     events,
	}
}

// GenerateTrail runs the full pipeline: infer state, rank priorities, build
// the trail, persist it superseding any earlier trail for the same day.
func (s *trailService) GenerateTrail(ctx context.Context, in GenerateTrailInput) (*GeneratedTrail, error) {
	if in.UserID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	snapshot, err := s.inference.InferState(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	ranked, err := s.priorities.ComputePriorities(ctx, PrioritizationInput{
		UserID:   in.UserID,
		Snapshot: snapshot,
		ExamDate: in.ExamDate,
		Now:      date,
	})
	if err != nil {
		return nil, err
	}

	trail := BuildTrail(s.cfg, SequenceInput{
		Priorities:    ranked.Priorities,
		Snapshot:      snapshot,
		BudgetMinutes: in.BudgetMinutes,
		Date:          date,
	})
	trail.UserID = in.UserID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.trails.SupersedeForDate(ctx, tx, in.UserID, date); err != nil {
			return err
		}
		return s.trails.Create(ctx, tx, trail)
	})
	if err != nil {
		return nil, err
	}

	s.emitGenerated(ctx, trail)
	return &GeneratedTrail{Trail: trail, Snapshot: snapshot, Criteria: ranked.Criteria}, nil
}

func (s *trailService) GetTrail(ctx context.Context, userID uuid.UUID, date time.Time) (*types.TrailOfDay, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return s.trails.GetForDate(ctx, nil, userID, date)
}

// UpdateTrailItem applies a partial update: skip, complete, or adjust the
// duration. Completed items are immutable.
func (s *trailService) UpdateTrailItem(ctx context.Context, userID uuid.UUID, update TrailItemUpdate) (*types.TrailItem, error) {
	item, err := s.trails.GetItem(ctx, nil, update.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("trail item %s not found", update.ItemID)
	}

	trail, err := s.trails.Get(ctx, nil, item.TrailID)
	if err != nil {
		return nil, err
	}
	if trail == nil || trail.UserID != userID {
		return nil, fmt.Errorf("trail item %s does not belong to user", update.ItemID)
	}
	if item.Status == types.TrailItemCompleted {
		return nil, fmt.Errorf("trail item %s already completed", update.ItemID)
	}

	updates := map[string]any{}
	switch update.Status {
	case types.TrailItemCompleted:
		updates["status"] = types.TrailItemCompleted
		updates["completed_at"] = time.Now().UTC()
	case types.TrailItemSkipped:
		updates["status"] = types.TrailItemSkipped
	case "", types.TrailItemPending:
		// duration-only adjustment
	default:
		return nil, fmt.Errorf("unknown trail item status %q", update.Status)
	}
	if update.DurationMinutes != nil {
		if *update.DurationMinutes <= 0 {
			return nil, fmt.Errorf("duration must be > 0")
		}
		updates["duration_minutes"] = *update.DurationMinutes
	}
	if len(updates) == 0 {
		return item, nil
	}

	return s.trails.UpdateItem(ctx, nil, update.ItemID, updates)
}

func (s *trailService) emitGenerated(ctx context.Context, trail *types.TrailOfDay) {
	evt := redisclient.DomainEvent{
		Name:       redisclient.EventTrailGenerated,
		UserID:     trail.UserID.String(),
		OccurredAt: time.Now().UTC(),
		Payload: map[string]any{
			"trail_id":         trail.ID.String(),
			"item_count":       len(trail.Items),
			"total_minutes":    trail.TotalDurationMinutes,
			"difficulty_curve": trail.DifficultyCurve,
		},
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("Event publish failed", "event", evt.Name, "error", err)
	}
}
