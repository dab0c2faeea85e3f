package similarity

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/examly/backend/config"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// SemanticSimilarity is the expensive deep tier: model-based similarity
// of two texts, normalized to [0,1].
type SemanticSimilarity interface {
	Similarity(ctx context.Context, textA, textB string) (float64, error)
}

type embeddingSimilarity struct {
	api     *openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
}

// NewEmbeddingSimilarity builds the embedding-backed deep tier. With no
// API key configured it returns a non-functional instance whose calls
// fail; the pipeline treats that like any other degraded tier.
func NewEmbeddingSimilarity(cfg *config.Config) SemanticSimilarity {
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set. Semantic similarity tier will be non-functional.")
		return &embeddingSimilarity{timeout: cfg.Plagiarism.SemanticTimeout}
	}
	clientCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	return &embeddingSimilarity{
		api:     openai.NewClientWithConfig(clientCfg),
		model:   openai.EmbeddingModel(cfg.OpenAI.EmbeddingModel),
		timeout: cfg.Plagiarism.SemanticTimeout,
	}
}

func (s *embeddingSimilarity) Similarity(ctx context.Context, textA, textB string) (float64, error) {
	if s.api == nil {
		return 0, fmt.Errorf("embedding client not initialized")
	}
	if textA == "" || textB == "" {
		return 0, nil
	}

	// The model call is the only unbounded operation in the pipeline;
	// cap it so a slow backend cannot hang a submission.
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: s.model,
		Input: []string{textA, textB},
	})
	if err != nil {
		return 0, fmt.Errorf("embedding API call: %w", err)
	}
	if len(resp.Data) != 2 {
		return 0, fmt.Errorf("embedding API returned %d vectors, want 2", len(resp.Data))
	}

	return cosine(resp.Data[0].Embedding, resp.Data[1].Embedding), nil
}

// cosine returns the cosine similarity of two embedding vectors clamped
// to [0,1]; anti-correlated texts count as fully dissimilar.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
