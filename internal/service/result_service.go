package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/examly/backend/internal/apperr"
	"github.com/examly/backend/internal/dto"
	"github.com/examly/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ResultService assembles the per-attempt result view. The plagiarism
// report is attached only for teacher requesters; students never see
// similarity data.
type ResultService interface {
	GetAttemptResult(ctx context.Context, attemptID, requestingUserID uuid.UUID) (*dto.AttemptResultResponse, error)
}

type resultService struct {
	attemptRepo repository.AttemptRepository
	examRepo    repository.ExamRepository
	userRepo    repository.UserRepository
	plagiarism  PlagiarismService
}

func NewResultService(
	attemptRepo repository.AttemptRepository,
	examRepo repository.ExamRepository,
	userRepo repository.UserRepository,
	plagiarism PlagiarismService,
) ResultService {
	return &resultService{
		attemptRepo: attemptRepo,
		examRepo:    examRepo,
		userRepo:    userRepo,
		plagiarism:  plagiarism,
	}
}

func (s *resultService) GetAttemptResult(ctx context.Context, attemptID, requestingUserID uuid.UUID) (*dto.AttemptResultResponse, error) {
	attempt, err := s.attemptRepo.FindByIDWithAnswers(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, err)
	}
	exam, err := s.examRepo.FindByIDWithQuestions(ctx, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("exam %s: %w", attempt.ExamID, err)
	}

	resp := &dto.AttemptResultResponse{
		ExamTitle:      exam.Title,
		Status:         string(attempt.Status),
		TotalQuestions: len(exam.Questions),
		AnswersGiven:   len(attempt.Answers),
	}
	if attempt.EarnedPoints != nil {
		resp.ScorePercent = *attempt.EarnedPoints
	}
	if attempt.TimeSpentSeconds != nil {
		resp.TimeSpentSeconds = *attempt.TimeSpentSeconds
	}
	if attempt.CorrectAnswers != nil {
		resp.CorrectAnswers = *attempt.CorrectAnswers
	}
	if attempt.IncorrectAnswers != nil {
		resp.IncorrectAnswers = *attempt.IncorrectAnswers
	}
	if attempt.PendingCount != nil {
		resp.PendingCount = *attempt.PendingCount
	}

	user, err := s.userRepo.FindByID(ctx, requestingUserID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", requestingUserID, err)
	}
	if user.IsTeacher() {
		report, err := s.plagiarism.GetReport(ctx, attemptID)
		switch {
		case err == nil:
			resp.PlagiarismReport = report
		case errors.Is(err, apperr.ErrNotFound):
			// no check ran for this attempt, the report stays absent
		default:
			log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("Failed to load plagiarism report")
		}
	}

	return resp, nil
}
