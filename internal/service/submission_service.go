package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/examly/backend/internal/apperr"
	"github.com/examly/backend/internal/dto"
	"github.com/examly/backend/internal/model"
	"github.com/examly/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// lateGrace is added on top of the exam duration when computing an
// attempt's due time, absorbing clock skew and last-second saves.
const lateGrace = 5 * time.Minute

// SubmissionService drives the attempt lifecycle: start, answer upserts
// while in progress, and the submit transition that grades the attempt
// and kicks off the plagiarism check.
type SubmissionService interface {
	StartAttempt(ctx context.Context, examID, userID uuid.UUID) (*model.Attempt, error)
	SaveAnswer(ctx context.Context, attemptID uuid.UUID, req dto.AnswerUpsertRequest) (*model.Answer, error)
	SubmitAttempt(ctx context.Context, attemptID uuid.UUID) (*model.Attempt, error)
}

type submissionService struct {
	examRepo    repository.ExamRepository
	attemptRepo repository.AttemptRepository
	weightsRepo repository.WeightsRepository
	grading     GradingService
	plagiarism  PlagiarismService
}

func NewSubmissionService(
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
	weightsRepo repository.WeightsRepository,
	grading GradingService,
	plagiarism PlagiarismService,
) SubmissionService {
	return &submissionService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		weightsRepo: weightsRepo,
		grading:     grading,
		plagiarism:  plagiarism,
	}
}

func (s *submissionService) StartAttempt(ctx context.Context, examID, userID uuid.UUID) (*model.Attempt, error) {
	exam, err := s.examRepo.FindByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("exam %s: %w", examID, err)
	}

	if exam.MaxAttempts > 0 {
		count, err := s.attemptRepo.CountByExamAndUser(ctx, examID, userID)
		if err != nil {
			return nil, fmt.Errorf("count attempts for exam %s: %w", examID, err)
		}
		if count >= int64(exam.MaxAttempts) {
			return nil, fmt.Errorf("attempt limit %d reached for exam %s: %w", exam.MaxAttempts, examID, apperr.ErrConflict)
		}
	}

	now := time.Now().UTC()
	attempt := &model.Attempt{
		ID:        uuid.New(),
		ExamID:    examID,
		UserID:    userID,
		Status:    model.AttemptInProgress,
		StartedAt: now,
		DueAt:     now.Add(time.Duration(exam.DurationMinutes)*time.Minute + lateGrace),
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	log.Info().Str("attempt_id", attempt.ID.String()).Str("exam_id", examID.String()).
		Str("user_id", userID.String()).Msg("Attempt started")
	return attempt, nil
}

func (s *submissionService) SaveAnswer(ctx context.Context, attemptID uuid.UUID, req dto.AnswerUpsertRequest) (*model.Answer, error) {
	attempt, err := s.attemptRepo.FindByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, err)
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, fmt.Errorf("attempt %s is %s: %w", attemptID, attempt.Status, apperr.ErrConflict)
	}

	exam, err := s.examRepo.FindByIDWithQuestions(ctx, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("exam %s: %w", attempt.ExamID, err)
	}
	var question *model.Question
	for i := range exam.Questions {
		if exam.Questions[i].ID == req.QuestionID {
			question = &exam.Questions[i]
			break
		}
	}
	if question == nil {
		return nil, fmt.Errorf("question %s does not belong to exam %s: %w", req.QuestionID, exam.ID, apperr.ErrNotFound)
	}

	answer := &model.Answer{
		ID:         uuid.New(),
		AttemptID:  attemptID,
		QuestionID: req.QuestionID,
		AnswerText: req.Text,
		SavedAt:    time.Now().UTC(),
	}
	if len(req.MatchingPairs) > 0 {
		payload, err := json.Marshal(req.MatchingPairs)
		if err != nil {
			return nil, fmt.Errorf("marshal matching pairs: %w", err)
		}
		answer.AnswerJSON = datatypes.JSON(payload)
	}
	for _, optID := range req.SelectedOptionIDs {
		answer.SelectedOptions = append(answer.SelectedOptions, model.AnswerOption{
			AnswerID:         answer.ID,
			SelectedOptionID: optID,
		})
	}

	if err := s.attemptRepo.UpsertAnswer(ctx, answer); err != nil {
		return nil, fmt.Errorf("upsert answer: %w", err)
	}
	return answer, nil
}

// SubmitAttempt moves the attempt out of in_progress, grades it, then
// runs the plagiarism check. A plagiarism failure never rolls back the
// grading outcome; the attempt simply ends up without a report.
func (s *submissionService) SubmitAttempt(ctx context.Context, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.FindByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, err)
	}

	now := time.Now().UTC()
	timeSpent := int(now.Sub(attempt.StartedAt).Seconds())
	if timeSpent < 0 {
		timeSpent = 0
	}

	// The status guard and the transition are one atomic update; a
	// concurrent submit of the same attempt loses with ErrConflict and
	// grading runs at most once.
	if err := s.attemptRepo.MarkSubmitted(ctx, attemptID, now, timeSpent); err != nil {
		return nil, fmt.Errorf("submit attempt %s: %w", attemptID, err)
	}

	exam, err := s.examRepo.FindByIDWithQuestions(ctx, attempt.ExamID)
	if err != nil {
		s.reopen(ctx, attemptID)
		return nil, fmt.Errorf("exam %s: %w", attempt.ExamID, err)
	}

	typeWeights, err := s.weightsRepo.TypeWeights(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load question type weights, using defaults")
		typeWeights = map[model.QuestionType]int{}
	}
	if missing := MissingPoints(exam.Questions, typeWeights); len(missing) > 0 {
		if err := s.examRepo.BackfillQuestionPoints(ctx, missing); err != nil {
			log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("Failed to backfill question points")
		}
	}

	graded, err := s.attemptRepo.FindByIDWithAnswers(ctx, attemptID)
	if err != nil {
		s.reopen(ctx, attemptID)
		return nil, fmt.Errorf("load attempt answers: %w", err)
	}

	weights := ResolveQuestionWeights(exam.Questions, typeWeights)
	result := s.grading.CalculateScore(exam, graded, weights)
	finalScore := FinalScore(result.EarnedWeight, weights.TotalWeight())

	status := model.AttemptCompleted
	if result.PendingCount > 0 {
		status = model.AttemptSubmitted
	}
	err = s.attemptRepo.FinalizeGrading(ctx, attemptID, status, finalScore,
		result.CorrectCount, result.IncorrectCount, result.PendingCount)
	if err != nil {
		s.reopen(ctx, attemptID)
		return nil, fmt.Errorf("finalize grading: %w", err)
	}

	log.Info().Str("attempt_id", attemptID.String()).Str("status", string(status)).
		Float64("score", finalScore).Int("correct", result.CorrectCount).
		Int("incorrect", result.IncorrectCount).Int("pending", result.PendingCount).
		Msg("Attempt graded")

	if _, err := s.plagiarism.CheckAttempt(ctx, graded); err != nil {
		log.Error().Err(err).Str("attempt_id", attemptID.String()).
			Msg("Plagiarism check failed, submission stands without a report")
	}

	return s.attemptRepo.FindByID(ctx, attemptID)
}

// reopen compensates a submit whose grading path failed after the status
// transition: the attempt goes back to in_progress so a retry can take
// the guard again, instead of wedging as submitted-but-ungraded.
func (s *submissionService) reopen(ctx context.Context, attemptID uuid.UUID) {
	if err := s.attemptRepo.ReopenSubmitted(ctx, attemptID); err != nil {
		log.Error().Err(err).Str("attempt_id", attemptID.String()).
			Msg("Failed to reopen attempt after grading failure")
	}
}
