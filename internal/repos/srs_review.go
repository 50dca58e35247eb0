package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/types"
)

type SrsReviewRepo interface {
	Append(ctx context.Context, tx *gorm.DB, review *types.SrsReview) error
	ListRecent(ctx context.Context, tx *gorm.DB, cardID uuid.UUID, limit int) ([]*types.SrsReview, error)
	RetentionSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (float64, int64, error)
}

type srsReviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSrsReviewRepo(db *gorm.DB, baseLog *logger.Logger) SrsReviewRepo {
	return &srsReviewRepo{
		db:  db,
		log: baseLog.With("repo", "SrsReviewRepo"),
	}
}

func (r *srsReviewRepo) Append(ctx context.Context, tx *gorm.DB, review *types.SrsReview) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.ReviewedAt.IsZero() {
		review.ReviewedAt = time.Now().UTC()
	}
	return transaction.WithContext(ctx).Create(review).Error
}

func (r *srsReviewRepo) ListRecent(ctx context.Context, tx *gorm.DB, cardID uuid.UUID, limit int) ([]*types.SrsReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.SrsReview
	err := transaction.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("reviewed_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RetentionSince reports the share of reviews with grade >= 3 in the window,
// along with how many reviews the window holds.
func (r *srsReviewRepo) RetentionSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (float64, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var total, passed int64
	err := transaction.WithContext(ctx).
		Model(&types.SrsReview{}).
		Where("user_id = ? AND reviewed_at >= ?", userID, since).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	if total == 0 {
		return 0, 0, nil
	}
	err = transaction.WithContext(ctx).
		Model(&types.SrsReview{}).
		Where("user_id = ? AND reviewed_at >= ? AND grade >= ?", userID, since, 3).
		Count(&passed).Error
	if err != nil {
		return 0, 0, err
	}
	return float64(passed) / float64(total), total, nil
}
