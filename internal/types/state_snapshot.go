package types

import "time"

// Value objects produced by the inference engine. Ephemeral: recomputed per
// request and threaded explicitly into prioritization and sequencing; only
// StateHistory is persisted.

type CognitiveState struct {
	Focus         int  `json:"focus"`          // 0..100
	Energy        int  `json:"energy"`         // 0..100
	EnergyLevel   int  `json:"energy_level"`   // 0..100
	AttentionLoad int  `json:"attention_load"` // 0..100
	ReadingSpeed  int  `json:"reading_speed"`  // wpm
	Saturated     bool `json:"saturated"`
}

type EmotionalState struct {
	Mood       float64 `json:"mood"` // 1..5
	Anxious    bool    `json:"anxious"`
	Frustrated bool    `json:"frustrated"`
	Motivated  bool    `json:"motivated"`
	Confidence int     `json:"confidence"` // 0..100
}

type PedagogicalState struct {
	MasteredTopics  int     `json:"mastered_topics"`
	FragileTopics   int     `json:"fragile_topics"`
	IgnoredTopics   int     `json:"ignored_topics"`
	OverallAccuracy float64 `json:"overall_accuracy"` // 0..1
	AverageLevel    float64 `json:"average_level"`    // 1..5
	OverallProgress float64 `json:"overall_progress"` // 0..100
}

type StateSnapshot struct {
	Cognitive           CognitiveState   `json:"cognitive"`
	Emotional           EmotionalState   `json:"emotional"`
	Pedagogical         PedagogicalState `json:"pedagogical"`
	CognitiveLabel      string           `json:"cognitive_label"`
	EmotionalLabel      string           `json:"emotional_label"`
	PedagogicalLabel    string           `json:"pedagogical_label"`
	ProbCorrect         float64          `json:"prob_correct"`
	ProbRetention       float64          `json:"prob_retention"`
	ProbSaturation      float64          `json:"prob_saturation"`
	OptimalStudyMinutes int              `json:"optimal_study_minutes"`
	Recommendation      string           `json:"recommendation"`
	Timestamp           time.Time        `json:"timestamp"`
}

type PriorityType string

const (
	PriorityDrop     PriorityType = "drop"
	PriorityQuestion PriorityType = "question"
	PriorityReview   PriorityType = "review"
	PriorityExam     PriorityType = "exam"
)

// Priority is one ranked study action. Transient, produced per run.
type Priority struct {
	Action     string       `json:"action"`
	Type       PriorityType `json:"type"`
	Score      float64      `json:"score"`
	Urgency    int          `json:"urgency"` // 1..10
	Reason     string       `json:"reason"`
	ContentID  string       `json:"content_id,omitempty"`
	TopicCode  string       `json:"topic_code,omitempty"`
	Difficulty int          `json:"difficulty"` // 1..5
}
