package repository

import (
	"context"
	"errors"

	"github.com/examly/backend/internal/apperr"
	"github.com/examly/backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExamRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	// FindByIDWithQuestions loads the full exam aggregate: questions in
	// position order with their options and matching pairs. Scoring logic
	// only ever sees this fully materialized structure.
	FindByIDWithQuestions(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	// BackfillQuestionPoints persists resolved default weights for
	// questions whose points were never configured.
	BackfillQuestionPoints(ctx context.Context, points map[uuid.UUID]int) error
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.WithContext(ctx).First(&exam, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindByIDWithQuestions(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Preload("Questions.Options").
		Preload("Questions.MatchingPairs").
		First(&exam, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) BackfillQuestionPoints(ctx context.Context, points map[uuid.UUID]int) error {
	if len(points) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for questionID, pts := range points {
			err := tx.Model(&model.Question{}).
				Where("id = ? AND points IS NULL", questionID).
				Update("points", pts).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
