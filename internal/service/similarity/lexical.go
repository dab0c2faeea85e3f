// Package similarity holds the two tiers of the plagiarism pipeline
// behind narrow interfaces, so either backend can be swapped without
// touching the decision policy.
package similarity

import (
	"errors"
	"math"
	"strings"
	"unicode"
)

// ErrDegenerateCorpus is returned when vectorization has no signal to
// work with (empty texts, empty vocabulary). Callers degrade to a safe
// default rather than failing the submission.
var ErrDegenerateCorpus = errors.New("degenerate corpus")

// LexicalSimilarity is the cheap first-pass filter: token-frequency
// similarity of a base text against each candidate, all scores in [0,1].
type LexicalSimilarity interface {
	Scores(baseText string, candidateTexts []string) ([]float64, error)
}

// tfidfSimilarity builds a TF-IDF vector-space model over the corpus
// {base} ∪ {candidates} and scores each candidate by cosine similarity
// against the base vector.
type tfidfSimilarity struct{}

func NewTFIDF() LexicalSimilarity {
	return &tfidfSimilarity{}
}

func (s *tfidfSimilarity) Scores(baseText string, candidateTexts []string) ([]float64, error) {
	if strings.TrimSpace(baseText) == "" {
		return nil, ErrDegenerateCorpus
	}
	if len(candidateTexts) == 0 {
		return []float64{}, nil
	}

	corpus := make([][]string, 0, len(candidateTexts)+1)
	corpus = append(corpus, tokenize(baseText))
	for _, text := range candidateTexts {
		corpus = append(corpus, tokenize(text))
	}

	vocab := make(map[string]int)
	for _, doc := range corpus {
		for _, token := range doc {
			if _, ok := vocab[token]; !ok {
				vocab[token] = len(vocab)
			}
		}
	}
	if len(vocab) == 0 {
		return nil, ErrDegenerateCorpus
	}

	// Smoothed idf: ln((1+n)/(1+df)) + 1, so a term present in every
	// document still carries some weight.
	docFreq := make([]int, len(vocab))
	for _, doc := range corpus {
		seen := make(map[int]struct{}, len(doc))
		for _, token := range doc {
			seen[vocab[token]] = struct{}{}
		}
		for idx := range seen {
			docFreq[idx]++
		}
	}
	n := float64(len(corpus))
	idf := make([]float64, len(vocab))
	for idx, df := range docFreq {
		idf[idx] = math.Log((1+n)/(1+float64(df))) + 1
	}

	vectors := make([][]float64, len(corpus))
	for i, doc := range corpus {
		vec := make([]float64, len(vocab))
		for _, token := range doc {
			vec[vocab[token]]++
		}
		for idx := range vec {
			vec[idx] *= idf[idx]
		}
		normalize(vec)
		vectors[i] = vec
	}

	scores := make([]float64, len(candidateTexts))
	for i := 1; i < len(vectors); i++ {
		scores[i-1] = dot(vectors[0], vectors[i])
	}
	return scores, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float64) {
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
