package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/examly/backend/internal/dto"
	"github.com/examly/backend/internal/model"
	"github.com/examly/backend/internal/repository"
	"github.com/examly/backend/internal/service/similarity"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	// Lexical similarity at or above this is a near-verbatim copy; it
	// settles the verdict without the deep tier.
	exactMatchThreshold = 0.98
	// Fast-tier candidates below this are presumed unrelated and never
	// reach the deep tier.
	deepCandidateFloor = 0.2
	// At most this many candidates go through the expensive model call.
	maxDeepCandidates = 5
	// Deep-tier similarity at or above this marks a paraphrase.
	paraphraseThreshold = 0.7

	suspiciousThreshold = 0.7
	highRiskThreshold   = 0.9

	MatchExact      = "exact"
	MatchParaphrase = "paraphrase"
	MatchCandidate  = "candidate"

	tierFast = "fast"
	tierDeep = "deep"

	// Shared fragments shorter than this are not worth highlighting.
	minHighlightLen = 20
)

// checkDetails is the JSON shape persisted in plagiarism_checks.details.
type checkDetails struct {
	Matches []dto.PlagiarismMatch `json:"matches"`
	Level   string                `json:"level,omitempty"`
}

// PlagiarismService runs the two-tier similarity pipeline and owns the
// teacher-facing report queries. CheckAttempt is best-effort by contract:
// tier failures degrade to a safe "nothing found" verdict and only a
// storage failure surfaces as an error.
type PlagiarismService interface {
	CheckAttempt(ctx context.Context, attempt *model.Attempt) (*dto.PlagiarismReport, error)
	GetReport(ctx context.Context, attemptID uuid.UUID) (*dto.PlagiarismReport, error)
	ListExamChecks(ctx context.Context, examID uuid.UUID, maxUniqueness *float64) ([]dto.PlagiarismCheckSummary, error)
	GetComparison(ctx context.Context, baseAttemptID, otherAttemptID uuid.UUID) (*dto.PlagiarismComparisonResponse, error)
}

type plagiarismService struct {
	textSource AttemptTextSource
	lexical    similarity.LexicalSimilarity
	semantic   similarity.SemanticSimilarity
	repo       repository.PlagiarismRepository
}

func NewPlagiarismService(
	textSource AttemptTextSource,
	lexical similarity.LexicalSimilarity,
	semantic similarity.SemanticSimilarity,
	repo repository.PlagiarismRepository,
) PlagiarismService {
	return &plagiarismService{
		textSource: textSource,
		lexical:    lexical,
		semantic:   semantic,
		repo:       repo,
	}
}

func (s *plagiarismService) CheckAttempt(ctx context.Context, attempt *model.Attempt) (*dto.PlagiarismReport, error) {
	baseText, err := s.textSource.BuildAttemptText(ctx, attempt.ID)
	if err != nil {
		log.Error().Err(err).Str("attempt_id", attempt.ID.String()).Msg("Failed to build attempt text, storing clean verdict")
		return s.storeVerdict(ctx, attempt.ID, nil, tierFast)
	}
	if baseText == "" {
		log.Info().Str("attempt_id", attempt.ID.String()).Msg("Attempt has no long-answer text, skipping plagiarism check")
		return s.storeVerdict(ctx, attempt.ID, nil, tierFast)
	}

	candidateIDs, candidateTexts, err := s.textSource.CandidateTexts(ctx, attempt.ExamID, attempt.ID)
	if err != nil {
		log.Error().Err(err).Str("attempt_id", attempt.ID.String()).Msg("Failed to load candidate texts, storing clean verdict")
		return s.storeVerdict(ctx, attempt.ID, nil, tierFast)
	}
	if len(candidateIDs) == 0 {
		log.Info().Str("attempt_id", attempt.ID.String()).Msg("No candidate attempts to compare against")
		return s.storeVerdict(ctx, attempt.ID, nil, tierFast)
	}

	fastMatches := s.runFastTier(baseText, candidateTexts, candidateIDs)

	if hasExactMatch(fastMatches) {
		// A verbatim copy needs no semantic confirmation; skip the
		// expensive tier and finalize on lexical evidence alone.
		return s.storeVerdict(ctx, attempt.ID, fastMatches, tierFast)
	}

	deepMatches := s.runDeepTier(ctx, baseText, fastMatches, candidateIDs, candidateTexts)

	finalMatches := fastMatches
	level := tierFast
	if len(deepMatches) > 0 {
		finalMatches = deepMatches
		level = tierDeep
	}
	return s.storeVerdict(ctx, attempt.ID, finalMatches, level)
}

// runFastTier scores every candidate with the lexical model and sorts
// matches by descending similarity. A vectorization failure yields no
// matches; the caller's verdict then reads as fully unique.
func (s *plagiarismService) runFastTier(baseText string, candidateTexts []string, candidateIDs []uuid.UUID) []dto.PlagiarismMatch {
	scores, err := s.lexical.Scores(baseText, candidateTexts)
	if err != nil {
		log.Warn().Err(err).Msg("Lexical vectorization failed, degrading to empty match set")
		return nil
	}

	matches := make([]dto.PlagiarismMatch, 0, len(scores))
	for i, score := range scores {
		matchType := MatchCandidate
		if score >= exactMatchThreshold {
			matchType = MatchExact
		}
		matches = append(matches, dto.PlagiarismMatch{
			OtherAttemptID:  candidateIDs[i],
			SimilarityScore: score,
			MatchType:       matchType,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})
	return matches
}

// runDeepTier re-scores the shortlisted fast-tier candidates with the
// semantic model. Per-candidate model failures are skipped; an empty
// result tells the caller to fall back to the fast tier.
func (s *plagiarismService) runDeepTier(ctx context.Context, baseText string, fastMatches []dto.PlagiarismMatch, candidateIDs []uuid.UUID, candidateTexts []string) []dto.PlagiarismMatch {
	textsByID := make(map[uuid.UUID]string, len(candidateIDs))
	for i, id := range candidateIDs {
		textsByID[id] = candidateTexts[i]
	}

	var shortlist []dto.PlagiarismMatch
	for _, m := range fastMatches {
		if m.SimilarityScore < deepCandidateFloor {
			break // sorted descending, nothing below the floor qualifies
		}
		shortlist = append(shortlist, m)
		if len(shortlist) == maxDeepCandidates {
			break
		}
	}

	var deepMatches []dto.PlagiarismMatch
	for _, m := range shortlist {
		otherText := textsByID[m.OtherAttemptID]
		if otherText == "" {
			continue
		}
		semanticSim, err := s.semantic.Similarity(ctx, baseText, otherText)
		if err != nil {
			log.Warn().Err(err).Str("other_attempt_id", m.OtherAttemptID.String()).
				Msg("Semantic similarity failed for candidate, skipping")
			continue
		}
		matchType := MatchCandidate
		if semanticSim >= paraphraseThreshold {
			matchType = MatchParaphrase
		}
		deepMatches = append(deepMatches, dto.PlagiarismMatch{
			OtherAttemptID:  m.OtherAttemptID,
			SimilarityScore: semanticSim,
			MatchType:       matchType,
		})
	}
	sort.SliceStable(deepMatches, func(i, j int) bool {
		return deepMatches[i].SimilarityScore > deepMatches[j].SimilarityScore
	})
	return deepMatches
}

// storeVerdict derives the final numbers from the match set and upserts
// the attempt's check row.
func (s *plagiarismService) storeVerdict(ctx context.Context, attemptID uuid.UUID, matches []dto.PlagiarismMatch, level string) (*dto.PlagiarismReport, error) {
	if matches == nil {
		matches = []dto.PlagiarismMatch{}
	}
	maxSimilarity := 0.0
	for _, m := range matches {
		if m.SimilarityScore > maxSimilarity {
			maxSimilarity = m.SimilarityScore
		}
	}
	uniqueness := 100 - maxSimilarity*100
	if uniqueness < 0 {
		uniqueness = 0
	}

	details, err := json.Marshal(checkDetails{Matches: matches, Level: level})
	if err != nil {
		return nil, fmt.Errorf("marshal plagiarism details: %w", err)
	}

	check, err := s.repo.CreateOrUpdate(ctx, &model.PlagiarismCheck{
		AttemptID:         attemptID,
		UniquenessPercent: uniqueness,
		MaxSimilarity:     maxSimilarity,
		Status:            statusFromSimilarity(maxSimilarity),
		Details:           datatypes.JSON(details),
	})
	if err != nil {
		return nil, fmt.Errorf("persist plagiarism check: %w", err)
	}
	return toReport(check), nil
}

func statusFromSimilarity(maxSimilarity float64) model.PlagiarismStatus {
	switch {
	case maxSimilarity >= highRiskThreshold:
		return model.PlagiarismHighRisk
	case maxSimilarity >= suspiciousThreshold:
		return model.PlagiarismSuspicious
	default:
		return model.PlagiarismOK
	}
}

func hasExactMatch(matches []dto.PlagiarismMatch) bool {
	for _, m := range matches {
		if m.SimilarityScore >= exactMatchThreshold {
			return true
		}
	}
	return false
}

func toReport(check *model.PlagiarismCheck) *dto.PlagiarismReport {
	report := &dto.PlagiarismReport{
		UniquenessPercent: check.UniquenessPercent,
		MaxSimilarity:     check.MaxSimilarity,
		Status:            string(check.Status),
		Matches:           []dto.PlagiarismMatch{},
	}
	if len(check.Details) > 0 {
		var details checkDetails
		if err := json.Unmarshal(check.Details, &details); err == nil && details.Matches != nil {
			report.Matches = details.Matches
		}
	}
	return report
}

func (s *plagiarismService) GetReport(ctx context.Context, attemptID uuid.UUID) (*dto.PlagiarismReport, error) {
	check, err := s.repo.GetByAttemptID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return toReport(check), nil
}

func (s *plagiarismService) ListExamChecks(ctx context.Context, examID uuid.UUID, maxUniqueness *float64) ([]dto.PlagiarismCheckSummary, error) {
	checks, err := s.repo.ListByExamWithFilter(ctx, examID, maxUniqueness)
	if err != nil {
		return nil, fmt.Errorf("list plagiarism checks for exam %s: %w", examID, err)
	}

	summaries := make([]dto.PlagiarismCheckSummary, 0, len(checks))
	for _, check := range checks {
		summary := dto.PlagiarismCheckSummary{
			AttemptID:         check.AttemptID,
			UniquenessPercent: check.UniquenessPercent,
			MaxSimilarity:     check.MaxSimilarity,
			Status:            string(check.Status),
		}
		if check.Attempt != nil {
			summary.StudentID = check.Attempt.UserID
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetComparison recomputes a direct similarity between two attempts'
// texts for the teacher's side-by-side view. The semantic model is
// preferred; when it is unavailable the lexical score stands in.
func (s *plagiarismService) GetComparison(ctx context.Context, baseAttemptID, otherAttemptID uuid.UUID) (*dto.PlagiarismComparisonResponse, error) {
	baseText, err := s.textSource.BuildAttemptText(ctx, baseAttemptID)
	if err != nil {
		return nil, fmt.Errorf("build base attempt text: %w", err)
	}
	otherText, err := s.textSource.BuildAttemptText(ctx, otherAttemptID)
	if err != nil {
		return nil, fmt.Errorf("build other attempt text: %w", err)
	}

	resp := &dto.PlagiarismComparisonResponse{
		BaseAttemptID:       baseAttemptID,
		OtherAttemptID:      otherAttemptID,
		BaseText:            baseText,
		OtherText:           otherText,
		BaseHighlightSpans:  []similarity.Span{},
		OtherHighlightSpans: []similarity.Span{},
	}
	if baseText == "" || otherText == "" {
		return resp, nil
	}

	score, err := s.semantic.Similarity(ctx, baseText, otherText)
	if err != nil {
		log.Warn().Err(err).Msg("Semantic comparison failed, falling back to lexical score")
		if lexScores, lexErr := s.lexical.Scores(baseText, []string{otherText}); lexErr == nil && len(lexScores) == 1 {
			score = lexScores[0]
		}
	}
	resp.SimilarityScore = score
	resp.BaseHighlightSpans, resp.OtherHighlightSpans = similarity.HighlightSpans(baseText, otherText, minHighlightLen)
	return resp, nil
}
