package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ExamStatus string

const (
	ExamRunning  ExamStatus = "running"
	ExamFinished ExamStatus = "finished"
	ExamAborted  ExamStatus = "aborted"
)

// ExamExecution is one timed assessment run. The adaptive accumulator is
// embedded as JSONB and updated exactly once per answered question.
type ExamExecution struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Status        ExamStatus     `gorm:"column:status;not null;default:'running'" json:"status"`
	Discipline    string         `gorm:"column:discipline" json:"discipline"`
	ExamBoard     string         `gorm:"column:exam_board" json:"exam_board"`
	QuestionCount int            `gorm:"column:question_count;not null" json:"question_count"`
	AnsweredCount int            `gorm:"column:answered_count;not null;default:0" json:"answered_count"`
	Adaptive      datatypes.JSON `gorm:"column:adaptive;type:jsonb" json:"adaptive"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ExamExecution) TableName() string { return "exam_execution" }

// DifficultyBucket tracks correct/total per difficulty level.
type DifficultyBucket struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// AnswerSample is one entry of the rolling answer window used by the
// fine-tuning rule.
type AnswerSample struct {
	QuestionID uuid.UUID `json:"question_id"`
	Correct    bool      `json:"correct"`
	Difficulty int       `json:"difficulty"`
	TimeSpent  float64   `json:"time_spent"`
}

// AdaptiveState is the running accumulator for an adaptive exam. It is a
// value object: UpdateState returns a new copy, callers persist.
// LastAnswers is a bounded window feeding the fine-tuning rule;
// AnsweredQuestionIDs grows for the whole run so no question repeats.
type AdaptiveState struct {
	CurrentDifficulty       int                      `json:"current_difficulty"`
	ConsecutiveCorrect      int                      `json:"consecutive_correct"`
	ConsecutiveWrong        int                      `json:"consecutive_wrong"`
	TotalCorrect            int                      `json:"total_correct"`
	TotalWrong              int                      `json:"total_wrong"`
	AverageTime             float64                  `json:"average_time"`
	PerformanceByDifficulty map[int]DifficultyBucket `json:"performance_by_difficulty"`
	LastAnswers             []AnswerSample           `json:"last_answers,omitempty"`
	AnsweredQuestionIDs     []uuid.UUID              `json:"answered_question_ids,omitempty"`
}

// TotalAnswered is the number of questions processed so far.
func (s AdaptiveState) TotalAnswered() int { return s.TotalCorrect + s.TotalWrong }

// Accuracy over all answered questions; 0 when nothing was answered.
func (s AdaptiveState) Accuracy() float64 {
	total := s.TotalAnswered()
	if total == 0 {
		return 0
	}
	return float64(s.TotalCorrect) / float64(total)
}
