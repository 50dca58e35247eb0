package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DifficultyCurve string

const (
	CurveProgressive DifficultyCurve = "progressive"
	CurveInverse     DifficultyCurve = "inverse"
	CurveFlat        DifficultyCurve = "flat"
)

type TrailItemType string

const (
	TrailItemDrop      TrailItemType = "drop"
	TrailItemQuestion  TrailItemType = "question"
	TrailItemSrsReview TrailItemType = "srsReview"
	TrailItemBlock     TrailItemType = "block"
	TrailItemExam      TrailItemType = "exam"
)

type TrailItemStatus string

const (
	TrailItemPending   TrailItemStatus = "pending"
	TrailItemCompleted TrailItemStatus = "completed"
	TrailItemSkipped   TrailItemStatus = "skipped"
)

// TrailOfDay is the generated study plan for one user and one day.
// Regeneration soft-deletes the previous trail for the same day instead of
// mutating it.
type TrailOfDay struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID       `gorm:"type:uuid;not null;index:idx_user_trail_date,priority:1" json:"user_id"`
	Date                 time.Time       `gorm:"column:trail_date;not null;index:idx_user_trail_date,priority:2" json:"date"`
	Items                []TrailItem     `gorm:"foreignKey:TrailID;references:ID" json:"items"`
	TotalDurationMinutes int             `gorm:"column:total_duration_minutes;not null" json:"total_duration_minutes"`
	DifficultyCurve      DifficultyCurve `gorm:"column:difficulty_curve;not null" json:"difficulty_curve"`
	GeneratedAt          time.Time       `gorm:"column:generated_at;not null" json:"generated_at"`
	CreatedAt            time.Time       `gorm:"not null;default:now()" json:"created_at"`
	DeletedAt            gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (TrailOfDay) TableName() string { return "trail_of_day" }

// TrailItem is one scheduled unit inside a trail. Order is 0-based and unique
// within the trail.
type TrailItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TrailID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"trail_id"`
	Type            TrailItemType   `gorm:"column:item_type;not null" json:"type"`
	ContentID       string          `gorm:"column:content_id" json:"content_id"`
	Order           int             `gorm:"column:item_order;not null" json:"order"`
	DurationMinutes int             `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	Difficulty      int             `gorm:"column:difficulty;not null;default:3" json:"difficulty"` // 1..5
	Reason          string          `gorm:"column:reason" json:"reason"`
	Status          TrailItemStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	CompletedAt     *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (TrailItem) TableName() string { return "trail_item" }
