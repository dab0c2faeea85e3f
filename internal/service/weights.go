package service

import (
	"github.com/examly/backend/internal/model"
	"github.com/google/uuid"
)

// fallbackWeight applies when a question has no configured points and its
// type has no row in the default-weight table.
const fallbackWeight = 1

// WeightMap is the immutable per-question weight view the grading engine
// scores against. It is resolved once, up front, so scoring never mutates
// question rows as a side effect of reading them.
type WeightMap map[uuid.UUID]float64

// ResolveQuestionWeights builds the weight map for an exam's questions:
// configured points win, otherwise the type default, otherwise 1.
func ResolveQuestionWeights(questions []model.Question, typeDefaults map[model.QuestionType]int) WeightMap {
	weights := make(WeightMap, len(questions))
	for _, q := range questions {
		if q.Points != nil {
			weights[q.ID] = float64(*q.Points)
			continue
		}
		if w, ok := typeDefaults[q.QuestionType]; ok {
			weights[q.ID] = float64(w)
			continue
		}
		weights[q.ID] = fallbackWeight
	}
	return weights
}

// MissingPoints returns the resolved weights for questions whose points
// are unset, keyed by question id. The orchestrator persists these as an
// explicit pre-grading step.
func MissingPoints(questions []model.Question, typeDefaults map[model.QuestionType]int) map[uuid.UUID]int {
	missing := make(map[uuid.UUID]int)
	for _, q := range questions {
		if q.Points != nil {
			continue
		}
		if w, ok := typeDefaults[q.QuestionType]; ok {
			missing[q.ID] = w
		} else {
			missing[q.ID] = fallbackWeight
		}
	}
	return missing
}

// TotalWeight sums the weights of every question on the exam, answered
// or not. Unanswered questions count against the score's denominator.
func (w WeightMap) TotalWeight() float64 {
	total := 0.0
	for _, weight := range w {
		total += weight
	}
	return total
}

// FinalScore normalizes earned weight to a 0-100 score. A zero-weight
// exam scores 0 rather than dividing by zero.
func FinalScore(earnedWeight, totalWeight float64) float64 {
	if totalWeight <= 0 {
		return 0
	}
	score := 100 * earnedWeight / totalWeight
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
