package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Classification labels persisted with each snapshot. Downstream trend
// reports key on these.
const (
	CognitiveHigh      = "high"
	CognitiveMedium    = "medium"
	CognitiveLow       = "low"
	CognitiveSaturated = "saturated"

	EmotionalMotivated  = "motivated"
	EmotionalAnxious    = "anxious"
	EmotionalFrustrated = "frustrated"
	EmotionalNeutral    = "neutral"

	PedagogicalAdvanced     = "advanced"
	PedagogicalIntermediate = "intermediate"
	PedagogicalBeginner     = "beginner"
	PedagogicalStuck        = "stuck"
)

// StateHistory is the append-only audit row written every time the inference
// engine computes a snapshot. Never mutated after insert.
type StateHistory struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	CognitiveLabel      string         `gorm:"column:cognitive_label;not null" json:"cognitive_label"`
	EmotionalLabel      string         `gorm:"column:emotional_label;not null" json:"emotional_label"`
	PedagogicalLabel    string         `gorm:"column:pedagogical_label;not null" json:"pedagogical_label"`
	ProbCorrect         float64        `gorm:"column:prob_correct;not null" json:"prob_correct"`
	ProbRetention       float64        `gorm:"column:prob_retention;not null" json:"prob_retention"`
	ProbSaturation      float64        `gorm:"column:prob_saturation;not null" json:"prob_saturation"`
	OptimalStudyMinutes int            `gorm:"column:optimal_study_minutes;not null" json:"optimal_study_minutes"`
	Recommendation      string         `gorm:"column:recommendation" json:"recommendation"`
	Snapshot            datatypes.JSON `gorm:"column:snapshot;type:jsonb" json:"snapshot,omitempty"`
	CreatedAt           time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (StateHistory) TableName() string { return "state_history" }
