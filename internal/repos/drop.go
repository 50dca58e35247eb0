package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/types"
)

type DropRepo interface {
	Get(ctx context.Context, tx *gorm.DB, dropID uuid.UUID) (*types.Drop, error)
	ListByTopics(ctx context.Context, tx *gorm.DB, topicCodes []string, limit int) ([]*types.Drop, error)
}

type dropRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDropRepo(db *gorm.DB, baseLog *logger.Logger) DropRepo {
	return &dropRepo{
		db:  db,
		log: baseLog.With("repo", "DropRepo"),
	}
}

func (r *dropRepo) Get(ctx context.Context, tx *gorm.DB, dropID uuid.UUID) (*types.Drop, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if dropID == uuid.Nil {
		return nil, nil
	}
	var row types.Drop
	err := transaction.WithContext(ctx).
		Where("id = ?", dropID).
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

func (r *dropRepo) ListByTopics(ctx context.Context, tx *gorm.DB, topicCodes []string, limit int) ([]*types.Drop, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(topicCodes) == 0 {
		return nil, nil
	}
	var rows []*types.Drop
	err := transaction.WithContext(ctx).
		Where("topic_code IN ? AND status = ?", topicCodes, types.ContentStatusActive).
		Order("topic_code ASC, difficulty ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
