package repository

import (
	"context"
	"errors"
	"time"

	"github.com/examly/backend/internal/apperr"
	"github.com/examly/backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository interface {
	Create(ctx context.Context, attempt *model.Attempt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	// FindByIDWithAnswers loads the attempt aggregate: answers with their
	// selected options, fully materialized before any grading runs.
	FindByIDWithAnswers(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	CountByExamAndUser(ctx context.Context, examID, userID uuid.UUID) (int64, error)
	// UpsertAnswer stores one answer per (attempt, question), replacing
	// any previous answer and its selected options.
	UpsertAnswer(ctx context.Context, answer *model.Answer) error
	// MarkSubmitted atomically flips an in-progress attempt to submitted.
	// The status guard and the transition happen in a single UPDATE so
	// concurrent submits of the same attempt cannot both pass; the loser
	// gets apperr.ErrConflict.
	MarkSubmitted(ctx context.Context, id uuid.UUID, submittedAt time.Time, timeSpentSeconds int) error
	// ReopenSubmitted reverses MarkSubmitted for an attempt whose grading
	// could not complete, putting it back in progress so a retried submit
	// can take the guard again.
	ReopenSubmitted(ctx context.Context, id uuid.UUID) error
	// FinalizeGrading writes the grading outcome onto the attempt row.
	FinalizeGrading(ctx context.Context, id uuid.UUID, status model.AttemptStatus, earnedPoints float64, correct, incorrect, pending int) error
	// LongAnswerTexts returns the attempt's long-answer texts in question
	// position order.
	LongAnswerTexts(ctx context.Context, attemptID uuid.UUID) ([]string, error)
	// AttemptIDsWithLongAnswers lists other attempts on the same exam that
	// have at least one long-answer text, i.e. the plagiarism candidates.
	AttemptIDsWithLongAnswers(ctx context.Context, examID, excludeAttemptID uuid.UUID) ([]uuid.UUID, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithAnswers(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Preload("Answers.SelectedOptions").
		First(&attempt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) CountByExamAndUser(ctx context.Context, examID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Attempt{}).
		Where("exam_id = ? AND user_id = ?", examID, userID).
		Count(&count).Error
	return count, err
}

func (r *attemptRepository) UpsertAnswer(ctx context.Context, answer *model.Answer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"answer_text", "answer_json", "saved_at",
			}),
		}).Omit("SelectedOptions").Create(answer).Error
		if err != nil {
			return err
		}

		// The upsert may have kept the pre-existing answer id; resolve it
		// so selected options attach to the right row.
		var stored model.Answer
		err = tx.Select("id").
			Where("attempt_id = ? AND question_id = ?", answer.AttemptID, answer.QuestionID).
			First(&stored).Error
		if err != nil {
			return err
		}
		answer.ID = stored.ID

		if err := tx.Where("answer_id = ?", answer.ID).Delete(&model.AnswerOption{}).Error; err != nil {
			return err
		}
		for i := range answer.SelectedOptions {
			answer.SelectedOptions[i].AnswerID = answer.ID
		}
		if len(answer.SelectedOptions) > 0 {
			if err := tx.Create(&answer.SelectedOptions).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *attemptRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, submittedAt time.Time, timeSpentSeconds int) error {
	res := r.db.WithContext(ctx).Model(&model.Attempt{}).
		Where("id = ? AND status = ?", id, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":             model.AttemptSubmitted,
			"submitted_at":       submittedAt,
			"time_spent_seconds": timeSpentSeconds,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the attempt is gone or it already left in_progress.
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Attempt{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.ErrNotFound
		}
		return apperr.ErrConflict
	}
	return nil
}

func (r *attemptRepository) ReopenSubmitted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Attempt{}).
		Where("id = ? AND status = ?", id, model.AttemptSubmitted).
		Updates(map[string]interface{}{
			"status":             model.AttemptInProgress,
			"submitted_at":       nil,
			"time_spent_seconds": nil,
		}).Error
}

func (r *attemptRepository) FinalizeGrading(ctx context.Context, id uuid.UUID, status model.AttemptStatus, earnedPoints float64, correct, incorrect, pending int) error {
	return r.db.WithContext(ctx).Model(&model.Attempt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            status,
			"earned_points":     earnedPoints,
			"correct_answers":   correct,
			"incorrect_answers": incorrect,
			"pending_count":     pending,
		}).Error
}

func (r *attemptRepository) LongAnswerTexts(ctx context.Context, attemptID uuid.UUID) ([]string, error) {
	var texts []string
	err := r.db.WithContext(ctx).Model(&model.Answer{}).
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("answers.attempt_id = ? AND questions.question_type = ? AND answers.answer_text IS NOT NULL",
			attemptID, model.LongAnswer).
		Order("questions.position ASC").
		Pluck("answers.answer_text", &texts).Error
	return texts, err
}

func (r *attemptRepository) AttemptIDsWithLongAnswers(ctx context.Context, examID, excludeAttemptID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Attempt{}).
		Distinct("attempts.id").
		Joins("JOIN answers ON answers.attempt_id = attempts.id").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("attempts.exam_id = ? AND attempts.id <> ? AND questions.question_type = ? AND answers.answer_text IS NOT NULL",
			examID, excludeAttemptID, model.LongAnswer).
		Pluck("attempts.id", &ids).Error
	return ids, err
}
