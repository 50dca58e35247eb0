package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studydrops/backend/internal/logger"
	"github.com/studydrops/backend/internal/types"
)

type TrailRepo interface {
	Create(ctx context.Context, tx *gorm.DB, trail *types.TrailOfDay) error
	GetForDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (*types.TrailOfDay, error)
	Get(ctx context.Context, tx *gorm.DB, trailID uuid.UUID) (*types.TrailOfDay, error)
	SupersedeForDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) error
	GetItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*types.TrailItem, error)
	UpdateItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, updates map[string]any) (*types.TrailItem, error)
	CompletedContentIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) ([]string, error)
}

type trailRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrailRepo(db *gorm.DB, baseLog *logger.Logger) TrailRepo {
	return &trailRepo{
		db:  db,
		log: baseLog.With("repo", "TrailRepo"),
	}
}

func dayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func (r *trailRepo) Create(ctx context.Context, tx *gorm.DB, trail *types.TrailOfDay) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	if trail.ID == uuid.Nil {
		trail.ID = uuid.New()
	}
	trail.Date = dayOf(trail.Date)
	if trail.GeneratedAt.IsZero() {
		trail.GeneratedAt = now
	}
	trail.CreatedAt = now
	for i := range trail.Items {
		if trail.Items[i].ID == uuid.Nil {
			trail.Items[i].ID = uuid.New()
		}
		trail.Items[i].TrailID = trail.ID
		if trail.Items[i].Status == "" {
			trail.Items[i].Status = types.TrailItemPending
		}
		trail.Items[i].CreatedAt = now
		trail.Items[i].UpdatedAt = now
	}
	return transaction.WithContext(ctx).Create(trail).Error
}

func (r *trailRepo) GetForDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (*types.TrailOfDay, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.TrailOfDay
	err := transaction.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_order ASC")
		}).
		Where("user_id = ? AND trail_date = ?", userID, dayOf(date)).
		Order("generated_at DESC").
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

func (r *trailRepo) Get(ctx context.Context, tx *gorm.DB, trailID uuid.UUID) (*types.TrailOfDay, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if trailID == uuid.Nil {
		return nil, nil
	}
	var row types.TrailOfDay
	err := transaction.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_order ASC")
		}).
		Where("id = ?", trailID).
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

// SupersedeForDate soft-deletes every live trail the user has for the day.
// Regeneration calls this right before inserting the replacement.
func (r *trailRepo) SupersedeForDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ? AND trail_date = ?", userID, dayOf(date)).
		Delete(&types.TrailOfDay{}).Error
}

func (r *trailRepo) GetItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*types.TrailItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if itemID == uuid.Nil {
		return nil, nil
	}
	var row types.TrailItem
	err := transaction.WithContext(ctx).
		Where("id = ?", itemID).
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

func (r *trailRepo) UpdateItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, updates map[string]any) (*types.TrailItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates["updated_at"] = time.Now().UTC()
	err := transaction.WithContext(ctx).
		Model(&types.TrailItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return r.GetItem(ctx, transaction, itemID)
}

// CompletedContentIDs lists content already completed in any of the user's
// trails for the day, including superseded ones, so regeneration does not
// schedule the same content twice.
func (r *trailRepo) CompletedContentIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []string
	err := transaction.WithContext(ctx).
		Model(&types.TrailItem{}).
		Joins("JOIN trail_of_day ON trail_of_day.id = trail_item.trail_id").
		Where("trail_of_day.user_id = ? AND trail_of_day.trail_date = ? AND trail_item.status = ? AND trail_item.content_id <> ''",
			userID, dayOf(date), types.TrailItemCompleted).
		Pluck("trail_item.content_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
