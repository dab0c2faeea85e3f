package service

import (
	"context"
	"strings"

	"github.com/examly/backend/internal/repository"
	"github.com/google/uuid"
)

// AttemptTextSource builds the canonical free-response text of attempts
// for the plagiarism pipeline.
type AttemptTextSource interface {
	// BuildAttemptText joins the attempt's long-answer texts, in question
	// position order, with blank lines. An empty result is meaningful: it
	// says there is nothing to compare.
	BuildAttemptText(ctx context.Context, attemptID uuid.UUID) (string, error)
	// CandidateTexts returns the other attempts on the exam that have
	// long-answer content, paired with their extracted texts.
	CandidateTexts(ctx context.Context, examID, excludeAttemptID uuid.UUID) ([]uuid.UUID, []string, error)
}

type attemptTextSource struct {
	attemptRepo repository.AttemptRepository
}

func NewAttemptTextSource(attemptRepo repository.AttemptRepository) AttemptTextSource {
	return &attemptTextSource{attemptRepo: attemptRepo}
}

func (s *attemptTextSource) BuildAttemptText(ctx context.Context, attemptID uuid.UUID) (string, error) {
	texts, err := s.attemptRepo.LongAnswerTexts(ctx, attemptID)
	if err != nil {
		return "", err
	}
	nonEmpty := make([]string, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.Join(nonEmpty, "\n\n"), nil
}

func (s *attemptTextSource) CandidateTexts(ctx context.Context, examID, excludeAttemptID uuid.UUID) ([]uuid.UUID, []string, error) {
	ids, err := s.attemptRepo.AttemptIDsWithLongAnswers(ctx, examID, excludeAttemptID)
	if err != nil {
		return nil, nil, err
	}
	texts := make([]string, 0, len(ids))
	for _, id := range ids {
		text, err := s.BuildAttemptText(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		texts = append(texts, text)
	}
	return ids, texts, nil
}
