package service

import (
	"context"
	"testing"

	"github.com/examly/backend/internal/apperr"
	"github.com/examly/backend/internal/dto"
	"github.com/examly/backend/internal/model"
	"github.com/google/uuid"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return user, nil
}

type reportingPlagiarismService struct {
	fakePlagiarismService
	report *dto.PlagiarismReport
}

func (f *reportingPlagiarismService) GetReport(_ context.Context, _ uuid.UUID) (*dto.PlagiarismReport, error) {
	if f.report == nil {
		return nil, apperr.ErrNotFound
	}
	return f.report, nil
}

func resultFixture(t *testing.T) (*fakeAttemptRepo, *fakeExamRepo, *fakeUserRepo, *reportingPlagiarismService, *model.Attempt) {
	t.Helper()
	exam := &model.Exam{
		ID:    uuid.New(),
		Title: "Final",
		Questions: []model.Question{
			{ID: uuid.New(), QuestionType: model.SingleChoice},
			{ID: uuid.New(), QuestionType: model.LongAnswer},
		},
	}
	score := 75.0
	correct, incorrect, pending, spent := 1, 0, 1, 900
	attempt := &model.Attempt{
		ID:               uuid.New(),
		ExamID:           exam.ID,
		UserID:           uuid.New(),
		Status:           model.AttemptSubmitted,
		EarnedPoints:     &score,
		CorrectAnswers:   &correct,
		IncorrectAnswers: &incorrect,
		PendingCount:     &pending,
		TimeSpentSeconds: &spent,
		Answers:          []model.Answer{{ID: uuid.New()}},
	}
	attempts := newFakeAttemptRepo()
	attempts.attempts[attempt.ID] = attempt
	exams := &fakeExamRepo{exams: map[uuid.UUID]*model.Exam{exam.ID: exam}}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
	plagiarism := &reportingPlagiarismService{}
	return attempts, exams, users, plagiarism, attempt
}

func TestGetAttemptResultForStudent(t *testing.T) {
	attempts, exams, users, plagiarism, attempt := resultFixture(t)
	plagiarism.report = &dto.PlagiarismReport{Status: string(model.PlagiarismSuspicious)}
	student := &model.User{ID: uuid.New(), Role: model.RoleStudent}
	users.users[student.ID] = student
	svc := NewResultService(attempts, exams, users, plagiarism)

	result, err := svc.GetAttemptResult(context.Background(), attempt.ID, student.ID)
	if err != nil {
		t.Fatalf("GetAttemptResult: %v", err)
	}
	if result.PlagiarismReport != nil {
		t.Errorf("student received a plagiarism report")
	}
	if result.ExamTitle != "Final" || result.ScorePercent != 75 {
		t.Errorf("got title=%q score=%v, want Final and 75", result.ExamTitle, result.ScorePercent)
	}
	if result.TotalQuestions != 2 || result.AnswersGiven != 1 {
		t.Errorf("got totals %d/%d, want 2/1", result.TotalQuestions, result.AnswersGiven)
	}
	if result.Status != string(model.AttemptSubmitted) {
		t.Errorf("got status=%s, want submitted while review is pending", result.Status)
	}
}

func TestGetAttemptResultAttachesReportForTeacher(t *testing.T) {
	attempts, exams, users, plagiarism, attempt := resultFixture(t)
	plagiarism.report = &dto.PlagiarismReport{Status: string(model.PlagiarismHighRisk), UniquenessPercent: 5}
	teacher := &model.User{ID: uuid.New(), Role: model.RoleTeacher}
	users.users[teacher.ID] = teacher
	svc := NewResultService(attempts, exams, users, plagiarism)

	result, err := svc.GetAttemptResult(context.Background(), attempt.ID, teacher.ID)
	if err != nil {
		t.Fatalf("GetAttemptResult: %v", err)
	}
	if result.PlagiarismReport == nil {
		t.Fatal("teacher did not receive the plagiarism report")
	}
	if result.PlagiarismReport.Status != string(model.PlagiarismHighRisk) {
		t.Errorf("got report status=%s, want high_risk", result.PlagiarismReport.Status)
	}
}

func TestGetAttemptResultWithoutStoredReport(t *testing.T) {
	attempts, exams, users, plagiarism, attempt := resultFixture(t)
	teacher := &model.User{ID: uuid.New(), Role: model.RoleTeacher}
	users.users[teacher.ID] = teacher
	svc := NewResultService(attempts, exams, users, plagiarism)

	result, err := svc.GetAttemptResult(context.Background(), attempt.ID, teacher.ID)
	if err != nil {
		t.Fatalf("GetAttemptResult: %v", err)
	}
	if result.PlagiarismReport != nil {
		t.Errorf("got a report that was never stored: %+v", result.PlagiarismReport)
	}
}

func TestGetAttemptResultReportsStoredStatus(t *testing.T) {
	attempts, exams, users, plagiarism, attempt := resultFixture(t)
	none := 0
	attempt.PendingCount = &none
	attempt.Status = model.AttemptCompleted
	svc := NewResultService(attempts, exams, users, plagiarism)

	result, err := svc.GetAttemptResult(context.Background(), attempt.ID, uuid.New())
	if err != nil {
		t.Fatalf("GetAttemptResult: %v", err)
	}
	if result.Status != string(model.AttemptCompleted) {
		t.Errorf("got status=%s, want the stored completed status", result.Status)
	}
}

func TestGetAttemptResultUnknownAttempt(t *testing.T) {
	attempts, exams, users, plagiarism, _ := resultFixture(t)
	svc := NewResultService(attempts, exams, users, plagiarism)

	_, err := svc.GetAttemptResult(context.Background(), uuid.New(), uuid.New())
	if err == nil {
		t.Fatal("expected an error for an unknown attempt")
	}
}
