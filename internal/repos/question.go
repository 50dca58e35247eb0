package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/types"
)

// QuestionFilter narrows the candidate pool for adaptive selection. Zero
// values mean "no constraint" except Difficulty, which is required.
type QuestionFilter struct {
	Discipline string
	TopicCode  string
	ExamBoard  string
	Difficulty int
	ExcludeIDs []uuid.UUID
}

type QuestionRepo interface {
	Get(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error)
	SelectCandidate(ctx context.Context, tx *gorm.DB, filter QuestionFilter) (*types.Question, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{
		db:  db,
		log: baseLog.With("repo", "QuestionRepo"),
	}
}

func (r *questionRepo) Get(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if questionID == uuid.Nil {
		return nil, nil
	}
	var row types.Question
	err := transaction.WithContext(ctx).
		Where("id = ?", questionID).
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

const (
	minQuestionDifficulty = 1
	maxQuestionDifficulty = 5
)

// SelectCandidate picks an active question at the requested difficulty. When
// none exists it widens the window one level at a time until the whole 1..5
// range is covered, preferring the candidate closest to the requested
// difficulty. Only a fully empty pool yields no candidate.
func (r *questionRepo) SelectCandidate(ctx context.Context, tx *gorm.DB, filter QuestionFilter) (*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	for window := 0; ; window++ {
		lo := filter.Difficulty - window
		hi := filter.Difficulty + window
		q := transaction.WithContext(ctx).
			Where("status = ?", types.ContentStatusActive).
			Where("difficulty BETWEEN ? AND ?", lo, hi)
		if filter.Discipline != "" {
			q = q.Where("discipline = ?", filter.Discipline)
		}
		if filter.TopicCode != "" {
			q = q.Where("topic_code = ?", filter.TopicCode)
		}
		if filter.ExamBoard != "" {
			q = q.Where("exam_board = ?", filter.ExamBoard)
		}
		if len(filter.ExcludeIDs) > 0 {
			q = q.Where("id NOT IN ?", filter.ExcludeIDs)
		}
		var row types.Question
		err := q.
			Clauses(clause.OrderBy{Expression: clause.Expr{
				SQL:  "ABS(difficulty - ?), created_at",
				Vars: []interface{}{filter.Difficulty},
			}}).
			Limit(1).
			Find(&row).Error
		if err != nil {
			return nil, err
		}
		if row.ID != uuid.Nil {
			return &row, nil
		}
		if lo <= minQuestionDifficulty && hi >= maxQuestionDifficulty {
			return nil, nil
		}
	}
}
