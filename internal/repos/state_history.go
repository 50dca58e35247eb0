package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/types"
)

// StateHistoryRepo is append-only: rows are never updated or deleted.
type StateHistoryRepo interface {
	Append(ctx context.Context, tx *gorm.DB, row *types.StateHistory) error
	ListRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.StateHistory, error)
}

type stateHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStateHistoryRepo(db *gorm.DB, baseLog *logger.Logger) StateHistoryRepo {
	return &stateHistoryRepo{
		db:  db,
		log: baseLog.With("repo", "StateHistoryRepo"),
	}
}

func (r *stateHistoryRepo) Append(ctx context.Context, tx *gorm.DB, row *types.StateHistory) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *stateHistoryRepo) ListRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.StateHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.StateHistory
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
