package repository

import (
	"context"
	"errors"

	"github.com/examly/backend/internal/apperr"
	"github.com/examly/backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlagiarismRepository interface {
	// CreateOrUpdate upserts the single check row per attempt. The insert
	// and the conflict resolution happen in one statement, so concurrent
	// re-checks of the same attempt cannot lose updates or duplicate rows.
	CreateOrUpdate(ctx context.Context, check *model.PlagiarismCheck) (*model.PlagiarismCheck, error)
	GetByAttemptID(ctx context.Context, attemptID uuid.UUID) (*model.PlagiarismCheck, error)
	// ListByExamWithFilter returns all checks for an exam, optionally
	// keeping only rows with uniqueness_percent <= maxUniqueness.
	ListByExamWithFilter(ctx context.Context, examID uuid.UUID, maxUniqueness *float64) ([]model.PlagiarismCheck, error)
}

type plagiarismRepository struct {
	db *gorm.DB
}

func NewPlagiarismRepository(db *gorm.DB) PlagiarismRepository {
	return &plagiarismRepository{db: db}
}

func (r *plagiarismRepository) CreateOrUpdate(ctx context.Context, check *model.PlagiarismCheck) (*model.PlagiarismCheck, error) {
	if check.ID == uuid.Nil {
		check.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"uniqueness_percent", "max_similarity", "status", "details", "updated_at",
		}),
	}).Omit("Attempt").Create(check).Error
	if err != nil {
		return nil, err
	}
	return r.GetByAttemptID(ctx, check.AttemptID)
}

func (r *plagiarismRepository) GetByAttemptID(ctx context.Context, attemptID uuid.UUID) (*model.PlagiarismCheck, error) {
	var check model.PlagiarismCheck
	err := r.db.WithContext(ctx).First(&check, "attempt_id = ?", attemptID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &check, nil
}

func (r *plagiarismRepository) ListByExamWithFilter(ctx context.Context, examID uuid.UUID, maxUniqueness *float64) ([]model.PlagiarismCheck, error) {
	query := r.db.WithContext(ctx).Model(&model.PlagiarismCheck{}).
		Joins("JOIN attempts ON attempts.id = plagiarism_checks.attempt_id").
		Where("attempts.exam_id = ?", examID).
		Preload("Attempt")
	if maxUniqueness != nil {
		query = query.Where("plagiarism_checks.uniqueness_percent <= ?", *maxUniqueness)
	}

	var checks []model.PlagiarismCheck
	err := query.Order("plagiarism_checks.uniqueness_percent ASC").Find(&checks).Error
	return checks, err
}
