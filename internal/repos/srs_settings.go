package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/types"
)

type SrsSettingsRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.SrsUserSettings, error)
	Upsert(ctx context.Context, tx *gorm.DB, settings *types.SrsUserSettings) error
}

type srsSettingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSrsSettingsRepo(db *gorm.DB, baseLog *logger.Logger) SrsSettingsRepo {
	return &srsSettingsRepo{
		db:  db,
		log: baseLog.With("repo", "SrsSettingsRepo"),
	}
}

func (r *srsSettingsRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.SrsUserSettings, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.SrsUserSettings
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.UserID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *srsSettingsRepo) Upsert(ctx context.Context, tx *gorm.DB, settings *types.SrsUserSettings) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	settings.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"memory_strength", "learning_style", "max_new_cards_per_day", "base_interval_days", "updated_at"}),
		}).
		Create(settings).Error
}

type SrsIntervalRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subtopic string) (*types.SrsUserInterval, error)
	List(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SrsUserInterval, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.SrsUserInterval) error
}

type srsIntervalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSrsIntervalRepo(db *gorm.DB, baseLog *logger.Logger) SrsIntervalRepo {
	return &srsIntervalRepo{
		db:  db,
		log: baseLog.With("repo", "SrsIntervalRepo"),
	}
}

func (r *srsIntervalRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subtopic string) (*types.SrsUserInterval, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || subtopic == "" {
		return nil, nil
	}
	var row types.SrsUserInterval
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND subtopic = ?", userID, subtopic).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *srsIntervalRepo) List(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SrsUserInterval, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.SrsUserInterval
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("subtopic ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *srsIntervalRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.SrsUserInterval) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "subtopic"}},
			DoUpdates: clause.AssignmentColumns([]string{"interval_multiplier", "ease_multiplier", "avg_retention", "avg_time_per_review", "updated_at"}),
		}).
		Create(row).Error
}
