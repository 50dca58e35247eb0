package types

import (
	"time"

	"github.com/google/uuid"
)

// CognitiveSample is one row of cognitive telemetry pushed by the client
// (focus/energy estimates, reading speed). Append-only.
type CognitiveSample struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Focus         int       `gorm:"column:focus;not null;default:50" json:"focus"`                   // 0..100
	Energy        int       `gorm:"column:energy;not null;default:50" json:"energy"`                 // 0..100
	EnergyLevel   int       `gorm:"column:energy_level;not null;default:50" json:"energy_level"`     // 0..100
	AttentionLoad int       `gorm:"column:attention_load;not null;default:50" json:"attention_load"` // 0..100
	ReadingSpeed  int       `gorm:"column:reading_speed;not null;default:200" json:"reading_speed"`  // wpm
	RecordedAt    time.Time `gorm:"column:recorded_at;not null;index" json:"recorded_at"`
	CreatedAt     time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (CognitiveSample) TableName() string { return "tracking_cognitive" }

// EmotionalSample is one row of emotional telemetry (self-reported mood plus
// inferred flags). Append-only.
type EmotionalSample struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Mood       int       `gorm:"column:mood;not null;default:3" json:"mood"` // 1..5
	Anxious    bool      `gorm:"column:anxious;not null;default:false" json:"anxious"`
	Frustrated bool      `gorm:"column:frustrated;not null;default:false" json:"frustrated"`
	Motivated  bool      `gorm:"column:motivated;not null;default:false" json:"motivated"`
	RecordedAt time.Time `gorm:"column:recorded_at;not null;index" json:"recorded_at"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (EmotionalSample) TableName() string { return "tracking_emotional" }
