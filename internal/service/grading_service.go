package service

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/examly/backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GradingResult is the transient accumulator produced by one grading run.
// It is never stored; the orchestrator folds its fields into the attempt.
type GradingResult struct {
	EarnedWeight      float64
	CorrectCount      int
	IncorrectCount    int
	PendingCount      int
	TotalAnswersGiven int
}

// GradingService deterministically scores a submitted attempt against its
// exam's questions. Long-answer questions are never auto-graded; they land
// in PendingCount and await manual review.
type GradingService interface {
	CalculateScore(exam *model.Exam, attempt *model.Attempt, weights WeightMap) GradingResult
}

type gradingService struct{}

func NewGradingService() GradingService {
	return &gradingService{}
}

// correctData is the pre-extracted answer key for one question.
type correctData struct {
	optionIDs map[uuid.UUID]struct{}
	texts     map[string]struct{}
	isNumeric bool
	pairs     map[string]string
}

func (s *gradingService) CalculateScore(exam *model.Exam, attempt *model.Attempt, weights WeightMap) GradingResult {
	result := GradingResult{TotalAnswersGiven: len(attempt.Answers)}

	answersByQuestion := make(map[uuid.UUID]*model.Answer, len(attempt.Answers))
	for i := range attempt.Answers {
		answersByQuestion[attempt.Answers[i].QuestionID] = &attempt.Answers[i]
	}

	// Every exam question is graded, answered or not: a missing answer is
	// a wrong answer, except long-answer which is always pending.
	for i := range exam.Questions {
		q := &exam.Questions[i]
		if q.QuestionType == model.LongAnswer {
			result.PendingCount++
			continue
		}

		answer := answersByQuestion[q.ID]
		if answer == nil {
			result.IncorrectCount++
			continue
		}

		if s.isCorrect(q, answer) {
			result.CorrectCount++
			result.EarnedWeight += weights[q.ID]
		} else {
			result.IncorrectCount++
		}
	}

	return result
}

func (s *gradingService) isCorrect(q *model.Question, a *model.Answer) bool {
	key := buildCorrectData(q)

	switch q.QuestionType {
	case model.SingleChoice, model.MultiChoice:
		return gradeChoice(a, key)
	case model.ShortAnswer:
		return gradeShortAnswer(a, key)
	case model.Matching:
		return gradeMatching(a, key)
	default:
		log.Warn().Str("question_type", string(q.QuestionType)).Str("question_id", q.ID.String()).
			Msg("Unknown question type, treating answer as incorrect")
		return false
	}
}

func buildCorrectData(q *model.Question) correctData {
	key := correctData{}
	switch q.QuestionType {
	case model.SingleChoice, model.MultiChoice:
		key.optionIDs = make(map[uuid.UUID]struct{})
		for _, opt := range q.Options {
			if opt.IsCorrect {
				key.optionIDs[opt.ID] = struct{}{}
			}
		}
	case model.ShortAnswer:
		var accepted []string
		for _, opt := range q.Options {
			if opt.IsCorrect {
				accepted = append(accepted, opt.Text)
			}
		}
		key.isNumeric = isNumericAnswerSet(accepted)
		key.texts = make(map[string]struct{}, len(accepted))
		for _, text := range accepted {
			key.texts[normalizeShortAnswer(text, key.isNumeric)] = struct{}{}
		}
	case model.Matching:
		key.pairs = make(map[string]string, len(q.MatchingPairs))
		for _, pair := range q.MatchingPairs {
			key.pairs[pair.Prompt] = pair.Match
		}
	}
	return key
}

// gradeChoice applies set equality over selected vs correct option ids.
// No partial credit: a subset or superset of the correct set is wrong,
// and a question with no correct option can never be answered correctly.
// Selections are deduplicated first so repeating a correct option cannot
// pad the cardinality check.
func gradeChoice(a *model.Answer, key correctData) bool {
	if len(key.optionIDs) == 0 {
		return false
	}
	selected := make(map[uuid.UUID]struct{}, len(a.SelectedOptions))
	for _, sel := range a.SelectedOptions {
		if _, ok := key.optionIDs[sel.SelectedOptionID]; !ok {
			return false
		}
		selected[sel.SelectedOptionID] = struct{}{}
	}
	return len(selected) == len(key.optionIDs)
}

func gradeShortAnswer(a *model.Answer, key correctData) bool {
	if len(key.texts) == 0 || a.AnswerText == nil {
		return false
	}
	_, ok := key.texts[normalizeShortAnswer(*a.AnswerText, key.isNumeric)]
	return ok
}

// gradeMatching requires the submitted prompt→match mapping to equal the
// canonical one pair for pair. A partial match earns nothing.
func gradeMatching(a *model.Answer, key correctData) bool {
	if len(key.pairs) == 0 || len(a.AnswerJSON) == 0 {
		return false
	}
	var submitted map[string]string
	if err := json.Unmarshal(a.AnswerJSON, &submitted); err != nil {
		log.Warn().Err(err).Str("answer_id", a.ID.String()).Msg("Malformed matching answer payload")
		return false
	}
	if len(submitted) != len(key.pairs) {
		return false
	}
	for prompt, match := range key.pairs {
		if submitted[prompt] != match {
			return false
		}
	}
	return true
}

// normalizeShortAnswer lowercases and trims the text; numeric questions
// additionally normalize a decimal comma to a dot.
func normalizeShortAnswer(text string, isNumeric bool) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if isNumeric {
		normalized = strings.ReplaceAll(normalized, ",", ".")
	}
	return normalized
}

// isNumericAnswerSet reports whether every accepted answer parses as a
// number once normalized.
func isNumericAnswerSet(accepted []string) bool {
	if len(accepted) == 0 {
		return false
	}
	for _, text := range accepted {
		normalized := normalizeShortAnswer(text, true)
		if _, err := strconv.ParseFloat(normalized, 64); err != nil {
			return false
		}
	}
	return true
}
