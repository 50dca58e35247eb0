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

type SrsCardRepo interface {
	Get(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) (*types.SrsCard, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) (*types.SrsCard, error)
	FindByUserAndDrop(ctx context.Context, tx *gorm.DB, userID, dropID uuid.UUID) (*types.SrsCard, error)
	FindByContent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.SrsContentType, contentID uuid.UUID) (*types.SrsCard, error)
	Create(ctx context.Context, tx *gorm.DB, userID, dropID uuid.UUID) (*types.SrsCard, error)
	LinkContent(ctx context.Context, tx *gorm.DB, cardID uuid.UUID, contentType types.SrsContentType, contentID uuid.UUID) error
	FirstContentLink(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) (*types.SrsCardContentLink, error)
	ListByMode(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mode types.SrsQueueMode, now time.Time, limit int) ([]*types.SrsCard, error)
	ListDue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, limit int) ([]*types.SrsCard, error)
	CountOverdue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (int64, error)
	UpdateScheduling(ctx context.Context, tx *gorm.DB, cardID uuid.UUID, intervalDays int, ease float64, repetition int, nextReviewAt time.Time) (*types.SrsCard, error)
}

type srsCardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSrsCardRepo(db *gorm.DB, baseLog *logger.Logger) SrsCardRepo {
	return &srsCardRepo{
		db:  db,
		log: baseLog.With("repo", "SrsCardRepo"),
	}
}

func (r *srsCardRepo) Get(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) (*types.SrsCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if cardID == uuid.Nil {
		return nil, nil
	}
	var row types.SrsCard
	err := transaction.WithContext(ctx).
		Where("id = ?", cardID).
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

// GetForUpdate takes a row lock so concurrent reviews of the same card are
// serialized at the store as well as in process.
func (r *srsCardRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) (*types.SrsCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if cardID == uuid.Nil {
		return nil, nil
	}
	var row types.SrsCard
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", cardID).
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

func (r *srsCardRepo) FindByUserAndDrop(ctx context.Context, tx *gorm.DB, userID, dropID uuid.UUID) (*types.SrsCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || dropID == uuid.Nil {
		return nil, nil
	}
	var row types.SrsCard
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND drop_id = ?", userID, dropID).
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

func (r *srsCardRepo) FindByContent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.SrsContentType, contentID uuid.UUID) (*types.SrsCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || contentID == uuid.Nil {
		return nil, nil
	}
	var row types.SrsCard
	err := transaction.WithContext(ctx).
		Joins("JOIN srs_card_content_map ON srs_card_content_map.card_id = srs_card.id").
		Where("srs_card.user_id = ? AND srs_card_content_map.content_type = ? AND srs_card_content_map.content_id = ?",
			userID, contentType, contentID).
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

func (r *srsCardRepo) Create(ctx context.Context, tx *gorm.DB, userID, dropID uuid.UUID) (*types.SrsCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row := &types.SrsCard{
		ID:           uuid.New(),
		UserID:       userID,
		DropID:       dropID,
		Status:       types.SrsStatusLearning,
		IntervalDays: 1,
		EaseFactor:   2.5,
		Repetition:   0,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *srsCardRepo) LinkContent(ctx context.Context, tx *gorm.DB, cardID uuid.UUID, contentType types.SrsContentType, contentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	link := &types.SrsCardContentLink{
		ID:          uuid.New(),
		CardID:      cardID,
		ContentType: contentType,
		ContentID:   contentID,
		CreatedAt:   time.Now().UTC(),
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "card_id"}, {Name: "content_type"}, {Name: "content_id"}},
			DoNothing: true,
		}).
		Create(link).Error
}

func (r *srsCardRepo) FirstContentLink(ctx context.Context, tx *gorm.DB, cardID uuid.UUID) (*types.SrsCardContentLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.SrsCardContentLink
	err := transaction.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("created_at ASC").
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

// ListByMode filters by date windows against next_review_at. Window edges are
// computed in Go so the predicate is identical on every backend.
func (r *srsCardRepo) ListByMode(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mode types.SrsQueueMode, now time.Time, limit int) ([]*types.SrsCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	startOfToday := now.UTC().Truncate(24 * time.Hour)
	startOfTomorrow := startOfToday.Add(24 * time.Hour)
	horizon := startOfTomorrow.Add(7 * 24 * time.Hour)

	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	switch mode {
	case types.SrsQueueToday:
		q = q.Where("next_review_at < ?", startOfTomorrow)
	case types.SrsQueueOverdue:
		q = q.Where("next_review_at < ?", startOfToday)
	case types.SrsQueueUpcoming:
		q = q.Where("next_review_at >= ? AND next_review_at < ?", startOfTomorrow, horizon)
	case types.SrsQueueAll:
		// no window
	}

	var rows []*types.SrsCard
	err := q.Order("next_review_at ASC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *srsCardRepo) ListDue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, limit int) ([]*types.SrsCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.SrsCard
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND next_review_at <= ?", userID, now).
		Order("next_review_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *srsCardRepo) CountOverdue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.SrsCard{}).
		Where("user_id = ? AND next_review_at < ?", userID, now).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateScheduling applies the scheduler output. The card moves to review
// status on its first successful scheduling and stays there.
func (r *srsCardRepo) UpdateScheduling(ctx context.Context, tx *gorm.DB, cardID uuid.UUID, intervalDays int, ease float64, repetition int, nextReviewAt time.Time) (*types.SrsCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	err := transaction.WithContext(ctx).
		Model(&types.SrsCard{}).
		Where("id = ?", cardID).
		Updates(map[string]any{
			"interval_days":  intervalDays,
			"ease_factor":    ease,
			"repetition":     repetition,
			"next_review_at": nextReviewAt,
			"status":         types.SrsStatusReview,
			"updated_at":     now,
		}).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, transaction, cardID)
}
