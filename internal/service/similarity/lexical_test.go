package similarity

import (
	"errors"
	"math"
	"testing"
)

func TestScoresIdenticalTexts(t *testing.T) {
	tfidf := NewTFIDF()
	text := "The quick brown fox jumps over the lazy dog."

	scores, err := tfidf.Scores(text, []string{text})
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("got %d scores, want 1", len(scores))
	}
	if math.Abs(scores[0]-1) > 1e-9 {
		t.Errorf("identical texts: got %v, want 1", scores[0])
	}
}

func TestScoresDisjointVocabularies(t *testing.T) {
	tfidf := NewTFIDF()

	scores, err := tfidf.Scores("alpha beta gamma", []string{"delta epsilon zeta"})
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if scores[0] != 0 {
		t.Errorf("disjoint texts: got %v, want 0", scores[0])
	}
}

func TestScoresRanksOverlapHigher(t *testing.T) {
	tfidf := NewTFIDF()
	base := "students must submit the essay before the deadline"

	scores, err := tfidf.Scores(base, []string{
		"students must submit the essay before friday",
		"the weather is lovely today",
	})
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if scores[0] <= scores[1] {
		t.Errorf("overlapping text scored %v, unrelated scored %v; want the former higher", scores[0], scores[1])
	}
}

func TestScoresCaseAndPunctuationInsensitive(t *testing.T) {
	tfidf := NewTFIDF()

	scores, err := tfidf.Scores("Hello, World!", []string{"hello world"})
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if math.Abs(scores[0]-1) > 1e-9 {
		t.Errorf("got %v, want 1 after normalization", scores[0])
	}
}

func TestScoresDegenerateInputs(t *testing.T) {
	tfidf := NewTFIDF()

	if _, err := tfidf.Scores("   ", []string{"some text"}); !errors.Is(err, ErrDegenerateCorpus) {
		t.Errorf("blank base: got %v, want ErrDegenerateCorpus", err)
	}
	if _, err := tfidf.Scores("...", []string{"!!!"}); !errors.Is(err, ErrDegenerateCorpus) {
		t.Errorf("punctuation-only corpus: got %v, want ErrDegenerateCorpus", err)
	}

	scores, err := tfidf.Scores("some text", nil)
	if err != nil {
		t.Fatalf("no candidates: %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("got %d scores for no candidates, want 0", len(scores))
	}
}

func TestScoresStayWithinUnitRange(t *testing.T) {
	tfidf := NewTFIDF()
	base := "one two three four five"

	scores, err := tfidf.Scores(base, []string{"one two", "three four five six", base, ""})
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	for i, s := range scores {
		if s < 0 || s > 1+1e-9 {
			t.Errorf("score %d out of range: %v", i, s)
		}
	}
}
