package types

import (
	"time"

	"github.com/google/uuid"
)

type SrsStatus string

const (
	SrsStatusLearning  SrsStatus = "learning"
	SrsStatusReview    SrsStatus = "review"
	SrsStatusSuspended SrsStatus = "suspended"
)

type SrsContentType string

const (
	SrsContentDrop     SrsContentType = "drop"
	SrsContentQuestion SrsContentType = "question"
	SrsContentMnemonic SrsContentType = "mnemonic"
)

type SrsQueueMode string

const (
	SrsQueueToday    SrsQueueMode = "today"
	SrsQueueOverdue  SrsQueueMode = "overdue"
	SrsQueueUpcoming SrsQueueMode = "upcoming"
	SrsQueueAll      SrsQueueMode = "all"
)

type MemoryStrength string

const (
	MemoryWeak   MemoryStrength = "weak"
	MemoryNormal MemoryStrength = "normal"
	MemoryStrong MemoryStrength = "strong"
)

type LearningStyle string

const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleKinesthetic LearningStyle = "kinesthetic"
	StyleMixed       LearningStyle = "mixed"
)

// SrsCard is the scheduling state for one (user, content) pair. Cards are
// never deleted; the review history lives in SrsReview.
type SrsCard struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_user_drop_card,unique,priority:1" json:"user_id"`
	DropID       uuid.UUID `gorm:"type:uuid;not null;index:idx_user_drop_card,unique,priority:2" json:"drop_id"`
	Status       SrsStatus `gorm:"column:status;not null;default:'learning'" json:"status"`
	IntervalDays int       `gorm:"column:interval_days;not null;default:1" json:"interval_days"`
	EaseFactor   float64   `gorm:"column:ease_factor;not null;default:2.5" json:"ease_factor"`
	Repetition   int       `gorm:"column:repetition;not null;default:0" json:"repetition"`
	NextReviewAt time.Time `gorm:"column:next_review_at;not null;index" json:"next_review_at"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SrsCard) TableName() string { return "srs_card" }

// SrsCardContentLink maps a card to the content it reviews, so questions and
// mnemonics can share the SRS machinery with drops.
type SrsCardContentLink struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CardID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_card_content,unique,priority:1" json:"card_id"`
	ContentType SrsContentType `gorm:"column:content_type;not null;index:idx_card_content,unique,priority:2" json:"content_type"`
	ContentID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_card_content,unique,priority:3" json:"content_id"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (SrsCardContentLink) TableName() string { return "srs_card_content_map" }

// SrsReview is an immutable grade log entry. Append-only.
type SrsReview struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CardID     uuid.UUID `gorm:"type:uuid;not null;index" json:"card_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Grade      int       `gorm:"column:grade;not null" json:"grade"` // 0..5
	ReviewedAt time.Time `gorm:"column:reviewed_at;not null;index" json:"reviewed_at"`
}

func (SrsReview) TableName() string { return "srs_review" }

// SrsUserSettings is per-user scheduler personalization. Defaults apply when
// no row exists.
type SrsUserSettings struct {
	UserID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	MemoryStrength    MemoryStrength `gorm:"column:memory_strength;not null;default:'normal'" json:"memory_strength"`
	LearningStyle     LearningStyle  `gorm:"column:learning_style;not null;default:'mixed'" json:"learning_style"`
	MaxNewCardsPerDay int            `gorm:"column:max_new_cards_per_day;not null;default:20" json:"max_new_cards_per_day"`
	BaseIntervalDays  int            `gorm:"column:base_interval_days;not null;default:1" json:"base_interval_days"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (SrsUserSettings) TableName() string { return "srs_user_settings" }

// DefaultSrsSettings are applied when the user never configured the scheduler.
func DefaultSrsSettings(userID uuid.UUID) *SrsUserSettings {
	now := time.Now().UTC()
	return &SrsUserSettings{
		UserID:            userID,
		MemoryStrength:    MemoryNormal,
		LearningStyle:     StyleMixed,
		MaxNewCardsPerDay: 20,
		BaseIntervalDays:  1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// SrsUserInterval biases the scheduler per (user, subtopic). Multipliers stay
// neutral (1.0) until explicitly updated.
type SrsUserInterval struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index:idx_user_subtopic,unique,priority:1" json:"user_id"`
	Subtopic           string    `gorm:"column:subtopic;not null;index:idx_user_subtopic,unique,priority:2" json:"subtopic"`
	IntervalMultiplier float64   `gorm:"column:interval_multiplier;not null;default:1" json:"interval_multiplier"`
	EaseMultiplier     float64   `gorm:"column:ease_multiplier;not null;default:1" json:"ease_multiplier"`
	AvgRetention       *float64  `gorm:"column:avg_retention" json:"avg_retention,omitempty"`
	AvgTimePerReview   *float64  `gorm:"column:avg_time_per_review" json:"avg_time_per_review,omitempty"`
	UpdatedAt          time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SrsUserInterval) TableName() string { return "srs_user_interval" }
