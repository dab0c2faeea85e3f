package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptExpired    AttemptStatus = "expired"
)

// Attempt is one student's run of an exam. Status moves one way:
// in_progress -> submitted -> completed (or expired via the timeout path).
type Attempt struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ExamID           uuid.UUID        `json:"exam_id" gorm:"type:uuid;not null;index"`
	UserID           uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Status           AttemptStatus    `json:"status" gorm:"default:'in_progress'"`
	StartedAt        time.Time        `json:"started_at" gorm:"not null"`
	DueAt            time.Time        `json:"due_at" gorm:"not null"`
	SubmittedAt      *time.Time       `json:"submitted_at,omitempty"`
	TimeSpentSeconds *int             `json:"time_spent_seconds,omitempty"`
	EarnedPoints     *float64         `json:"earned_points,omitempty"`
	CorrectAnswers   *int             `json:"correct_answers,omitempty"`
	IncorrectAnswers *int             `json:"incorrect_answers,omitempty"`
	PendingCount     *int             `json:"pending_count,omitempty"`
	Answers          []Answer         `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	PlagiarismCheck  *PlagiarismCheck `json:"plagiarism_check,omitempty" gorm:"foreignKey:AttemptID"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}

// Answer holds one answer per question per attempt. Exactly one of
// AnswerText, AnswerJSON or SelectedOptions applies, depending on the
// question's type. Upserted while the attempt is in progress, immutable
// after submission.
type Answer struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AttemptID       uuid.UUID      `json:"attempt_id" gorm:"type:uuid;not null;uniqueIndex:idx_answers_attempt_question"`
	QuestionID      uuid.UUID      `json:"question_id" gorm:"type:uuid;not null;uniqueIndex:idx_answers_attempt_question"`
	Question        Question       `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	AnswerText      *string        `json:"answer_text,omitempty" gorm:"type:text"`
	AnswerJSON      datatypes.JSON `json:"answer_json,omitempty"`
	SavedAt         time.Time      `json:"saved_at" gorm:"not null"`
	SelectedOptions []AnswerOption `json:"selected_options,omitempty" gorm:"foreignKey:AnswerID;constraint:OnDelete:CASCADE"`
}

// AnswerOption is one selected option of a choice answer.
type AnswerOption struct {
	AnswerID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"answer_id"`
	SelectedOptionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"selected_option_id"`
}
