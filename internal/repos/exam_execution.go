package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/types"
)

type ExamExecutionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, execution *types.ExamExecution) error
	Get(ctx context.Context, tx *gorm.DB, executionID uuid.UUID) (*types.ExamExecution, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, executionID uuid.UUID) (*types.ExamExecution, error)
	UpdateAdaptive(ctx context.Context, tx *gorm.DB, executionID uuid.UUID, state types.AdaptiveState, answeredCount int) error
	SetStatus(ctx context.Context, tx *gorm.DB, executionID uuid.UUID, status types.ExamStatus) error
}

type examExecutionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExamExecutionRepo(db *gorm.DB, baseLog *logger.Logger) ExamExecutionRepo {
	return &examExecutionRepo{
		db:  db,
		log: baseLog.With("repo", "ExamExecutionRepo"),
	}
}

func (r *examExecutionRepo) Create(ctx context.Context, tx *gorm.DB, execution *types.ExamExecution) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	if execution.ID == uuid.Nil {
		execution.ID = uuid.New()
	}
	if execution.Status == "" {
		execution.Status = types.ExamRunning
	}
	execution.CreatedAt = now
	execution.UpdatedAt = now
	return transaction.WithContext(ctx).Create(execution).Error
}

func (r *examExecutionRepo) Get(ctx context.Context, tx *gorm.DB, executionID uuid.UUID) (*types.ExamExecution, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if executionID == uuid.Nil {
		return nil, nil
	}
	var row types.ExamExecution
	err := transaction.WithContext(ctx).
		Where("id = ?", executionID).
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

func (r *examExecutionRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, executionID uuid.UUID) (*types.ExamExecution, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if executionID == uuid.Nil {
		return nil, nil
	}
	var row types.ExamExecution
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", executionID).
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

func (r *examExecutionRepo) UpdateAdaptive(ctx context.Context, tx *gorm.DB, executionID uuid.UUID, state types.AdaptiveState, answeredCount int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal adaptive state: %w", err)
	}
	return transaction.WithContext(ctx).
		Model(&types.ExamExecution{}).
		Where("id = ?", executionID).
		Updates(map[string]any{
			"adaptive":       datatypes.JSON(raw),
			"answered_count": answeredCount,
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *examExecutionRepo) SetStatus(ctx context.Context, tx *gorm.DB, executionID uuid.UUID, status types.ExamStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ExamExecution{}).
		Where("id = ?", executionID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}
