package dto

import (
	"github.com/examly/backend/internal/service/similarity"
	"github.com/google/uuid"
)

// PlagiarismMatch is one similarity hit against another attempt.
// MatchType records which tier and threshold flagged it: "exact" and
// "candidate" come from the lexical tier, "paraphrase" from the deep one.
type PlagiarismMatch struct {
	OtherAttemptID  uuid.UUID `json:"other_attempt_id"`
	SimilarityScore float64   `json:"similarity_score"`
	MatchType       string    `json:"match_type"`
}

// PlagiarismReport is the teacher-facing verdict for one attempt.
type PlagiarismReport struct {
	UniquenessPercent float64           `json:"uniqueness_percent"`
	MaxSimilarity     float64           `json:"max_similarity"`
	Status            string            `json:"status"`
	Matches           []PlagiarismMatch `json:"matches"`
}

// PlagiarismCheckSummary is one row of the exam-wide review listing.
type PlagiarismCheckSummary struct {
	AttemptID         uuid.UUID `json:"attempt_id"`
	StudentID         uuid.UUID `json:"student_id"`
	UniquenessPercent float64   `json:"uniqueness_percent"`
	MaxSimilarity     float64   `json:"max_similarity"`
	Status            string    `json:"status"`
}

// PlagiarismComparisonResponse is the side-by-side view of two attempts'
// extracted texts, with a freshly computed similarity and the shared
// fragments to highlight.
type PlagiarismComparisonResponse struct {
	BaseAttemptID       uuid.UUID         `json:"base_attempt_id"`
	OtherAttemptID      uuid.UUID         `json:"other_attempt_id"`
	BaseText            string            `json:"base_text"`
	OtherText           string            `json:"other_text"`
	SimilarityScore     float64           `json:"similarity_score"`
	BaseHighlightSpans  []similarity.Span `json:"base_highlight_spans"`
	OtherHighlightSpans []similarity.Span `json:"other_highlight_spans"`
}
