package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	ShortAnswer  QuestionType = "short_answer"
	LongAnswer   QuestionType = "long_answer"
	Matching     QuestionType = "matching"
)

type Exam struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string         `json:"title" gorm:"size:100;not null"`
	Instructions    string         `json:"instructions,omitempty" gorm:"size:2000"`
	StartAt         time.Time      `json:"start_at" gorm:"not null"`
	EndAt           time.Time      `json:"end_at" gorm:"not null"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null;default:60"`
	MaxAttempts     int            `json:"max_attempts" gorm:"default:1"`
	PassThreshold   int            `json:"pass_threshold" gorm:"default:60"`
	OwnerID         uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

type Question struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ExamID        uuid.UUID      `json:"exam_id" gorm:"type:uuid;not null;index"`
	QuestionType  QuestionType   `json:"question_type" gorm:"not null"`
	Title         string         `json:"title" gorm:"not null"`
	Points        *int           `json:"points,omitempty"`
	Position      int            `json:"position" gorm:"default:0"`
	Options       []Option       `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	MatchingPairs []MatchingPair `json:"matching_pairs,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

type Option struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;not null;index"`
	Text       string    `json:"text" gorm:"not null"`
	IsCorrect  bool      `json:"is_correct" gorm:"default:false"`
}

// MatchingPair holds one canonical prompt→match pair for a matching question.
type MatchingPair struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;not null;index"`
	Prompt     string    `json:"prompt" gorm:"not null"`
	Match      string    `json:"match" gorm:"not null"`
}

// QuestionTypeWeight is the per-type default weight applied to questions
// whose points were never configured.
type QuestionTypeWeight struct {
	QuestionType QuestionType `gorm:"primaryKey" json:"question_type"`
	Weight       int          `json:"weight" gorm:"not null;default:1"`
}
