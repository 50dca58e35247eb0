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

type TopicStatRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, topicCode string) (*types.TopicStat, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.TopicStat, error)
	RecordAnswer(ctx context.Context, tx *gorm.DB, userID uuid.UUID, topicCode string, correct bool) error
}

type topicStatRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicStatRepo(db *gorm.DB, baseLog *logger.Logger) TopicStatRepo {
	return &topicStatRepo{
		db:  db,
		log: baseLog.With("repo", "TopicStatRepo"),
	}
}

func (r *topicStatRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, topicCode string) (*types.TopicStat, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || topicCode == "" {
		return nil, nil
	}
	var row types.TopicStat
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND topic_code = ?", userID, topicCode).
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

func (r *topicStatRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.TopicStat, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.TopicStat
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("topic_code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RecordAnswer upserts the per-topic counters. Streak grows on a correct
// answer and resets on a wrong one.
func (r *topicStatRepo) RecordAnswer(ctx context.Context, tx *gorm.DB, userID uuid.UUID, topicCode string, correct bool) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || topicCode == "" {
		return nil
	}

	now := time.Now().UTC()
	row := &types.TopicStat{
		ID:         uuid.New(),
		UserID:     userID,
		TopicCode:  topicCode,
		LastSeenAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	assignments := map[string]any{
		"last_seen_at": now,
		"updated_at":   now,
	}
	if correct {
		row.CorrectCount = 1
		row.Streak = 1
		assignments["correct_count"] = gorm.Expr("topic_stat.correct_count + 1")
		assignments["streak"] = gorm.Expr("topic_stat.streak + 1")
	} else {
		row.WrongCount = 1
		assignments["wrong_count"] = gorm.Expr("topic_stat.wrong_count + 1")
		assignments["streak"] = 0
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "topic_code"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(row).Error
}

type TopicRepo interface {
	Get(ctx context.Context, tx *gorm.DB, code string) (*types.Topic, error)
	List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Topic, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{
		db:  db,
		log: baseLog.With("repo", "TopicRepo"),
	}
}

func (r *topicRepo) Get(ctx context.Context, tx *gorm.DB, code string) (*types.Topic, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if code == "" {
		return nil, nil
	}
	var row types.Topic
	err := transaction.WithContext(ctx).
		Where("code = ?", code).
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

func (r *topicRepo) List(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Topic, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.Topic
	err := transaction.WithContext(ctx).
		Order("code ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
