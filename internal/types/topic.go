package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Topic is a syllabus entry in the content catalog. The gold-rule criteria
// (exam frequency, syllabus weight, board trend) live here because they are
// properties of the topic, not of any single learner.
type Topic struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code           string         `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name           string         `gorm:"column:name;not null" json:"name"`
	Discipline     string         `gorm:"column:discipline;not null;index" json:"discipline"`
	ExamBoard      string         `gorm:"column:exam_board;index" json:"exam_board"`
	SyllabusWeight float64        `gorm:"column:syllabus_weight;not null;default:5" json:"syllabus_weight"` // 0..10
	ExamFrequency  float64        `gorm:"column:exam_frequency;not null;default:0" json:"exam_frequency"`   // 0..100
	BoardTrend     float64        `gorm:"column:board_trend;not null;default:5" json:"board_trend"`         // 0..10
	LastAskedAt    *time.Time     `gorm:"column:last_asked_at" json:"last_asked_at,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Topic) TableName() string { return "topic" }

// TopicStat tracks one learner's running performance on one topic.
type TopicStat struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_topic_stat,unique,priority:1" json:"user_id"`
	TopicCode    string     `gorm:"column:topic_code;not null;index:idx_user_topic_stat,unique,priority:2" json:"topic_code"`
	CorrectCount int        `gorm:"column:correct_count;not null;default:0" json:"correct_count"`
	WrongCount   int        `gorm:"column:wrong_count;not null;default:0" json:"wrong_count"`
	Streak       int        `gorm:"column:streak;not null;default:0" json:"streak"`
	Mastery      float64    `gorm:"column:mastery;not null;default:0" json:"mastery"` // 0..100
	LastSeenAt   *time.Time `gorm:"column:last_seen_at;index" json:"last_seen_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (TopicStat) TableName() string { return "topic_stat" }

// Attempts is total answered count for this stat row.
func (s *TopicStat) Attempts() int { return s.CorrectCount + s.WrongCount }

// ErrorRate is wrong/total in 0..1; 0 when the topic was never attempted.
func (s *TopicStat) ErrorRate() float64 {
	total := s.Attempts()
	if total == 0 {
		return 0
	}
	return float64(s.WrongCount) / float64(total)
}
