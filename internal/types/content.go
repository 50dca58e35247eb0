package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Drop is a single atomic study unit (a short lesson).
type Drop struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TopicCode  string         `gorm:"column:topic_code;not null;index" json:"topic_code"`
	Title      string         `gorm:"column:title;not null" json:"title"`
	Difficulty int            `gorm:"column:difficulty;not null;default:3" json:"difficulty"` // 1..5
	ExamBoard  string         `gorm:"column:exam_board;index" json:"exam_board"`
	Status     string         `gorm:"column:status;not null;default:'active';index" json:"status"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Drop) TableName() string { return "drop" }

// Question is a practice question in the catalog, filterable by discipline,
// topic, exam board and difficulty.
type Question struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Discipline string         `gorm:"column:discipline;not null;index" json:"discipline"`
	TopicCode  string         `gorm:"column:topic_code;not null;index" json:"topic_code"`
	ExamBoard  string         `gorm:"column:exam_board;index" json:"exam_board"`
	Difficulty int            `gorm:"column:difficulty;not null;default:3;index" json:"difficulty"` // 1..5
	Status     string         `gorm:"column:status;not null;default:'active';index" json:"status"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }

const (
	ContentStatusActive   = "active"
	ContentStatusArchived = "archived"
)
