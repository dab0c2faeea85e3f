package service

import (
	"math/rand"
	"testing"

	"github.com/examly/backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func choiceQuestion(t *testing.T, qType model.QuestionType, correct, incorrect int) model.Question {
	t.Helper()
	q := model.Question{ID: uuid.New(), QuestionType: qType, Points: intPtr(1)}
	for i := 0; i < correct; i++ {
		q.Options = append(q.Options, model.Option{ID: uuid.New(), IsCorrect: true})
	}
	for i := 0; i < incorrect; i++ {
		q.Options = append(q.Options, model.Option{ID: uuid.New(), IsCorrect: false})
	}
	return q
}

func selectedAnswer(q model.Question, optionIDs ...uuid.UUID) model.Answer {
	a := model.Answer{ID: uuid.New(), QuestionID: q.ID}
	for _, id := range optionIDs {
		a.SelectedOptions = append(a.SelectedOptions, model.AnswerOption{AnswerID: a.ID, SelectedOptionID: id})
	}
	return a
}

func correctOptionIDs(q model.Question) []uuid.UUID {
	var ids []uuid.UUID
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

func incorrectOptionIDs(q model.Question) []uuid.UUID {
	var ids []uuid.UUID
	for _, opt := range q.Options {
		if !opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

func gradeOne(t *testing.T, q model.Question, a model.Answer) GradingResult {
	t.Helper()
	exam := &model.Exam{ID: uuid.New(), Questions: []model.Question{q}}
	attempt := &model.Attempt{ID: uuid.New(), Answers: []model.Answer{a}}
	weights := ResolveQuestionWeights(exam.Questions, nil)
	return NewGradingService().CalculateScore(exam, attempt, weights)
}

func TestSingleChoiceGrading(t *testing.T) {
	q := choiceQuestion(t, model.SingleChoice, 1, 3)
	correctID := correctOptionIDs(q)[0]
	wrongID := incorrectOptionIDs(q)[0]

	res := gradeOne(t, q, selectedAnswer(q, correctID))
	if res.CorrectCount != 1 || res.EarnedWeight != 1 {
		t.Errorf("correct selection: got correct=%d earned=%v, want 1 and 1", res.CorrectCount, res.EarnedWeight)
	}

	res = gradeOne(t, q, selectedAnswer(q, wrongID))
	if res.IncorrectCount != 1 || res.EarnedWeight != 0 {
		t.Errorf("wrong selection: got incorrect=%d earned=%v, want 1 and 0", res.IncorrectCount, res.EarnedWeight)
	}
}

func TestMultiChoiceSetEquality(t *testing.T) {
	q := choiceQuestion(t, model.MultiChoice, 2, 2)
	correct := correctOptionIDs(q)
	wrong := incorrectOptionIDs(q)

	tests := []struct {
		name     string
		selected []uuid.UUID
		want     bool
	}{
		{"exact set", correct, true},
		{"exact set reordered", []uuid.UUID{correct[1], correct[0]}, true},
		{"proper subset", correct[:1], false},
		{"superset", append(append([]uuid.UUID{}, correct...), wrong[0]), false},
		{"duplicated correct option", []uuid.UUID{correct[0], correct[0]}, false},
		{"duplicates alongside full set", []uuid.UUID{correct[0], correct[0], correct[1]}, true},
		{"disjoint", wrong, false},
		{"empty selection", nil, false},
	}
	for _, tt := range tests {
		res := gradeOne(t, q, selectedAnswer(q, tt.selected...))
		got := res.CorrectCount == 1
		if got != tt.want {
			t.Errorf("%s: got correct=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMultiChoiceRandomSelectionsScoreOnlySetEquality(t *testing.T) {
	q := choiceQuestion(t, model.MultiChoice, 3, 3)
	correct := correctOptionIDs(q)
	all := append(append([]uuid.UUID{}, correct...), incorrectOptionIDs(q)...)
	correctSet := make(map[uuid.UUID]struct{}, len(correct))
	for _, id := range correct {
		correctSet[id] = struct{}{}
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		var selection []uuid.UUID
		for _, id := range all {
			if rng.Intn(2) == 0 {
				selection = append(selection, id)
			}
		}
		if len(selection) > 0 && rng.Intn(4) == 0 {
			selection = append(selection, selection[rng.Intn(len(selection))])
		}

		selectedSet := make(map[uuid.UUID]struct{}, len(selection))
		for _, id := range selection {
			selectedSet[id] = struct{}{}
		}
		want := len(selectedSet) == len(correctSet)
		if want {
			for id := range selectedSet {
				if _, ok := correctSet[id]; !ok {
					want = false
					break
				}
			}
		}

		res := gradeOne(t, q, selectedAnswer(q, selection...))
		if got := res.CorrectCount == 1; got != want {
			t.Fatalf("selection %v: got correct=%v, want %v", selection, got, want)
		}
	}
}

func TestChoiceWithoutCorrectOptionsNeverCorrect(t *testing.T) {
	q := choiceQuestion(t, model.MultiChoice, 0, 3)

	res := gradeOne(t, q, selectedAnswer(q))
	if res.CorrectCount != 0 {
		t.Errorf("empty selection against empty key counted as correct")
	}
	res = gradeOne(t, q, selectedAnswer(q, q.Options[0].ID))
	if res.CorrectCount != 0 {
		t.Errorf("selection against empty key counted as correct")
	}
}

func TestShortAnswerNormalization(t *testing.T) {
	q := model.Question{ID: uuid.New(), QuestionType: model.ShortAnswer, Points: intPtr(1)}
	q.Options = []model.Option{
		{ID: uuid.New(), Text: "Paris", IsCorrect: true},
		{ID: uuid.New(), Text: "paris, france", IsCorrect: true},
		{ID: uuid.New(), Text: "London", IsCorrect: false},
	}

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact", "Paris", true},
		{"case insensitive", "PARIS", true},
		{"surrounding whitespace", "  paris \n", true},
		{"second accepted variant", "Paris, France", true},
		{"distractor text", "London", false},
		{"no match", "Berlin", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		answer := model.Answer{ID: uuid.New(), QuestionID: q.ID, AnswerText: strPtr(tt.text)}
		res := gradeOne(t, q, answer)
		if got := res.CorrectCount == 1; got != tt.want {
			t.Errorf("%s: got correct=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestShortAnswerNumericCommaNormalization(t *testing.T) {
	q := model.Question{ID: uuid.New(), QuestionType: model.ShortAnswer, Points: intPtr(1)}
	q.Options = []model.Option{{ID: uuid.New(), Text: "3.14", IsCorrect: true}}

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"dot decimal", "3.14", true},
		{"comma decimal", "3,14", true},
		{"padded comma decimal", " 3,14 ", true},
		{"different value", "3.15", false},
	}
	for _, tt := range tests {
		answer := model.Answer{ID: uuid.New(), QuestionID: q.ID, AnswerText: strPtr(tt.text)}
		res := gradeOne(t, q, answer)
		if got := res.CorrectCount == 1; got != tt.want {
			t.Errorf("%s: got correct=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMatchingRequiresFullMapEquality(t *testing.T) {
	q := model.Question{ID: uuid.New(), QuestionType: model.Matching, Points: intPtr(1)}
	q.MatchingPairs = []model.MatchingPair{
		{ID: uuid.New(), Prompt: "H2O", Match: "water"},
		{ID: uuid.New(), Prompt: "NaCl", Match: "salt"},
	}

	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{"all pairs correct", `{"H2O":"water","NaCl":"salt"}`, true},
		{"one pair wrong", `{"H2O":"water","NaCl":"sugar"}`, false},
		{"missing pair", `{"H2O":"water"}`, false},
		{"extra pair", `{"H2O":"water","NaCl":"salt","CO2":"gas"}`, false},
		{"malformed payload", `not json`, false},
		{"empty payload", ``, false},
	}
	for _, tt := range tests {
		answer := model.Answer{ID: uuid.New(), QuestionID: q.ID, AnswerJSON: datatypes.JSON(tt.payload)}
		res := gradeOne(t, q, answer)
		if got := res.CorrectCount == 1; got != tt.want {
			t.Errorf("%s: got correct=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLongAnswerAlwaysPending(t *testing.T) {
	q := model.Question{ID: uuid.New(), QuestionType: model.LongAnswer, Points: intPtr(10)}
	answer := model.Answer{ID: uuid.New(), QuestionID: q.ID, AnswerText: strPtr("a lengthy essay")}

	res := gradeOne(t, q, answer)
	if res.PendingCount != 1 {
		t.Errorf("got pending=%d, want 1", res.PendingCount)
	}
	if res.CorrectCount != 0 || res.IncorrectCount != 0 || res.EarnedWeight != 0 {
		t.Errorf("long answer leaked into auto-graded counters: %+v", res)
	}
}

func TestUnansweredQuestionCountsIncorrect(t *testing.T) {
	q := choiceQuestion(t, model.SingleChoice, 1, 2)
	exam := &model.Exam{ID: uuid.New(), Questions: []model.Question{q}}
	attempt := &model.Attempt{ID: uuid.New()}
	weights := ResolveQuestionWeights(exam.Questions, nil)

	res := NewGradingService().CalculateScore(exam, attempt, weights)
	if res.IncorrectCount != 1 {
		t.Errorf("got incorrect=%d, want 1", res.IncorrectCount)
	}
	if res.TotalAnswersGiven != 0 {
		t.Errorf("got answers given=%d, want 0", res.TotalAnswersGiven)
	}
}

func TestHalfCorrectExamScoresFifty(t *testing.T) {
	q1 := choiceQuestion(t, model.SingleChoice, 1, 1)
	q2 := choiceQuestion(t, model.SingleChoice, 1, 1)
	exam := &model.Exam{ID: uuid.New(), Questions: []model.Question{q1, q2}}
	attempt := &model.Attempt{ID: uuid.New(), Answers: []model.Answer{
		selectedAnswer(q1, correctOptionIDs(q1)[0]),
		selectedAnswer(q2, incorrectOptionIDs(q2)[0]),
	}}

	weights := ResolveQuestionWeights(exam.Questions, nil)
	res := NewGradingService().CalculateScore(exam, attempt, weights)
	score := FinalScore(res.EarnedWeight, weights.TotalWeight())
	if score != 50 {
		t.Errorf("got score=%v, want 50", score)
	}
}
