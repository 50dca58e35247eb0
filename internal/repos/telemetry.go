package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/types"
)

type TelemetryRepo interface {
	ListRecentCognitive(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.CognitiveSample, error)
	ListRecentEmotional(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.EmotionalSample, error)
	CreateCognitive(ctx context.Context, tx *gorm.DB, sample *types.CognitiveSample) error
	CreateEmotional(ctx context.Context, tx *gorm.DB, sample *types.EmotionalSample) error
}

type telemetryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTelemetryRepo(db *gorm.DB, baseLog *logger.Logger) TelemetryRepo {
	return &telemetryRepo{
		db:  db,
		log: baseLog.With("repo", "TelemetryRepo"),
	}
}

func (r *telemetryRepo) ListRecentCognitive(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.CognitiveSample, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.CognitiveSample
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *telemetryRepo) ListRecentEmotional(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.EmotionalSample, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.EmotionalSample
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *telemetryRepo) CreateCognitive(ctx context.Context, tx *gorm.DB, sample *types.CognitiveSample) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if sample.ID == uuid.Nil {
		sample.ID = uuid.New()
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now().UTC()
	}
	return transaction.WithContext(ctx).Create(sample).Error
}

func (r *telemetryRepo) CreateEmotional(ctx context.Context, tx *gorm.DB, sample *types.EmotionalSample) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if sample.ID == uuid.Nil {
		sample.ID = uuid.New()
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now().UTC()
	}
	return transaction.WithContext(ctx).Create(sample).Error
}
