package dto

import (
	"time"

	"github.com/google/uuid"
)

// StartAttemptRequest opens a new attempt on an exam for a user.
type StartAttemptRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// AnswerUpsertRequest saves or replaces one answer while the attempt is
// in progress. Exactly one of Text, SelectedOptionIDs or MatchingPairs
// should be set, matching the question's type.
type AnswerUpsertRequest struct {
	QuestionID        uuid.UUID         `json:"question_id" binding:"required"`
	Text              *string           `json:"text,omitempty"`
	SelectedOptionIDs []uuid.UUID       `json:"selected_option_ids,omitempty"`
	MatchingPairs     map[string]string `json:"matching_pairs,omitempty"`
}

// AttemptResponse is the attempt state returned by start/submit.
type AttemptResponse struct {
	ID               uuid.UUID  `json:"id"`
	ExamID           uuid.UUID  `json:"exam_id"`
	UserID           uuid.UUID  `json:"user_id"`
	Status           string     `json:"status"`
	StartedAt        time.Time  `json:"started_at"`
	DueAt            time.Time  `json:"due_at"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	TimeSpentSeconds *int       `json:"time_spent_seconds,omitempty"`
	EarnedPoints     *float64   `json:"earned_points,omitempty"`
	CorrectAnswers   *int       `json:"correct_answers,omitempty"`
	IncorrectAnswers *int       `json:"incorrect_answers,omitempty"`
	PendingCount     *int       `json:"pending_count,omitempty"`
}

// AttemptResultResponse is the per-attempt result view. PlagiarismReport
// is populated only when the requesting user holds the teacher role.
type AttemptResultResponse struct {
	ExamTitle        string            `json:"exam_title"`
	Status           string            `json:"status"`
	ScorePercent     float64           `json:"score_percent"`
	TimeSpentSeconds int               `json:"time_spent_seconds"`
	TotalQuestions   int               `json:"total_questions"`
	AnswersGiven     int               `json:"answers_given"`
	CorrectAnswers   int               `json:"correct_answers"`
	IncorrectAnswers int               `json:"incorrect_answers"`
	PendingCount     int               `json:"pending_count"`
	PlagiarismReport *PlagiarismReport `json:"plagiarism_report,omitempty"`
}
