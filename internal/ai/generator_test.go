package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/store"
)

// scriptedCompleter returns the scripted responses in order, one per call.
type scriptedCompleter struct {
	responses []string
	errs      []error
	calls     int
}

func (c *scriptedCompleter) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	i := c.calls
	c.calls++
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	var resp string
	if i < len(c.responses) {
		resp = c.responses[i]
	}
	return resp, err
}

func newGeneratorTest(t *testing.T) (*store.Store, int64) {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	id, err := s.CreateStudent(model.Student{
		MatricNo: "CSC/2022/001", Name: "Ada", Email: "ada@example.com",
		PasswordHash: "x", Role: model.RoleStudent, Active: true,
	})
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	return s, id
}

func insertCompletedMaterial(t *testing.T, s *store.Store, studentID int64, id, subject, text string) {
	t.Helper()
	err := s.InsertMaterial(model.StudyMaterial{
		ID:               id,
		StudentID:        studentID,
		Title:            "Lecture notes",
		Subject:          subject,
		ExtractedText:    text,
		ProcessingStatus: model.ProcessingCompleted,
	})
	if err != nil {
		t.Fatalf("InsertMaterial: %v", err)
	}
}

func TestFromMaterialsRetriesThenPersists(t *testing.T) {
	s, studentID := newGeneratorTest(t)
	insertCompletedMaterial(t, s, studentID, "mat-1", "Algorithms", "Big-O notation describes growth rates.")

	llm := &scriptedCompleter{
		responses: []string{"", "", validQuestionsJSON},
		errs:      []error{errors.New("timeout"), errors.New("timeout"), nil},
	}
	g := NewGeneratorWithRetry(s, llm, noBackoff())

	exam, err := g.FromMaterials(context.Background(), studentID, []string{"mat-1"})
	if err != nil {
		t.Fatalf("FromMaterials: %v", err)
	}
	if llm.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", llm.calls)
	}
	if exam.Status != model.ExamActive {
		t.Errorf("expected active exam, got %q", exam.Status)
	}
	if exam.Title != "Practice Exam: Algorithms" {
		t.Errorf("unexpected title %q", exam.Title)
	}
	if len(exam.Questions) != 3 {
		t.Errorf("expected 3 questions, got %d", len(exam.Questions))
	}
	if exam.Duration != 30 {
		t.Errorf("expected minimum duration 30, got %d", exam.Duration)
	}

	stored, err := s.GetExam(exam.ID, studentID)
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if stored == nil {
		t.Fatal("exam not persisted")
	}
	if stored.Subject != "Algorithms" {
		t.Errorf("unexpected subject %q", stored.Subject)
	}
}

func TestFromMaterialsUpdatesAnalytics(t *testing.T) {
	s, studentID := newGeneratorTest(t)
	insertCompletedMaterial(t, s, studentID, "mat-1", "Calculus", "Derivatives measure change.")

	llm := &scriptedCompleter{responses: []string{validQuestionsJSON}}
	g := NewGeneratorWithRetry(s, llm, noBackoff())

	if _, err := g.FromMaterials(context.Background(), studentID, []string{"mat-1"}); err != nil {
		t.Fatalf("FromMaterials: %v", err)
	}

	a, err := s.GetAnalytics(studentID)
	if err != nil {
		t.Fatalf("GetAnalytics: %v", err)
	}
	if a == nil || a.QuestionsGenerated != 3 {
		t.Errorf("analytics not recorded: %+v", a)
	}
	if len(a.Topics) != 1 || a.Topics[0] != "Calculus" {
		t.Errorf("unexpected topics %v", a.Topics)
	}
}

func TestFromMaterialsInputErrors(t *testing.T) {
	s, studentID := newGeneratorTest(t)
	insertCompletedMaterial(t, s, studentID, "mat-empty", "Physics", "   ")
	g := NewGeneratorWithRetry(s, &scriptedCompleter{}, noBackoff())

	tests := []struct {
		name string
		ids  []string
		want error
	}{
		{"no ids", nil, ErrNoMaterialIDs},
		{"unknown ids", []string{"nope"}, ErrNoMaterials},
		{"blank text", []string{"mat-empty"}, ErrEmptyText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.FromMaterials(context.Background(), studentID, tt.ids)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFromMaterialsIgnoresOtherStudentsMaterials(t *testing.T) {
	s, studentID := newGeneratorTest(t)
	otherID, err := s.CreateStudent(model.Student{
		MatricNo: "CSC/2022/002", Name: "Ben", Email: "ben@example.com",
		PasswordHash: "x", Role: model.RoleStudent, Active: true,
	})
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	insertCompletedMaterial(t, s, otherID, "mat-other", "Chemistry", "Atoms bond.")

	g := NewGeneratorWithRetry(s, &scriptedCompleter{}, noBackoff())
	_, err = g.FromMaterials(context.Background(), studentID, []string{"mat-other"})
	if !errors.Is(err, ErrNoMaterials) {
		t.Errorf("expected ErrNoMaterials for foreign material, got %v", err)
	}
}

func TestFromMaterialsClassifiesQuotaErrors(t *testing.T) {
	s, studentID := newGeneratorTest(t)
	insertCompletedMaterial(t, s, studentID, "mat-1", "Biology", "Cells divide.")

	upstream := errors.New("429: insufficient quota for this month")
	llm := &scriptedCompleter{errs: []error{upstream, upstream, upstream}}
	g := NewGeneratorWithRetry(s, llm, noBackoff())

	_, err := g.FromMaterials(context.Background(), studentID, []string{"mat-1"})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestFromMaterialsGenerationFailure(t *testing.T) {
	s, studentID := newGeneratorTest(t)
	insertCompletedMaterial(t, s, studentID, "mat-1", "Biology", "Cells divide.")

	upstream := errors.New("connection refused")
	llm := &scriptedCompleter{errs: []error{upstream, upstream, upstream}}
	g := NewGeneratorWithRetry(s, llm, noBackoff())

	_, err := g.FromMaterials(context.Background(), studentID, []string{"mat-1"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestFromMaterialsInvalidGenerationPersistsNothing(t *testing.T) {
	s, studentID := newGeneratorTest(t)
	insertCompletedMaterial(t, s, studentID, "mat-1", "History", "Rome fell in 476.")

	llm := &scriptedCompleter{responses: []string{`[{"type": "short-answer", "correctAnswer": "x"}]`}}
	g := NewGeneratorWithRetry(s, llm, noBackoff())

	_, err := g.FromMaterials(context.Background(), studentID, []string{"mat-1"})
	if !errors.Is(err, ErrInvalidGeneration) {
		t.Fatalf("expected ErrInvalidGeneration, got %v", err)
	}

	exams, err := s.ListExams(studentID, 10, 0)
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(exams) != 0 {
		t.Errorf("rejected generation must not persist an exam, found %d", len(exams))
	}
}

func TestFromMaterialsCombinesMaterials(t *testing.T) {
	s, studentID := newGeneratorTest(t)
	insertCompletedMaterial(t, s, studentID, "mat-1", "Networks", "TCP is connection oriented.")
	// Give the second row a later created_at so ordering is deterministic.
	time.Sleep(5 * time.Millisecond)
	insertCompletedMaterial(t, s, studentID, "mat-2", "Networks", "UDP is connectionless.")

	var gotUser string
	llm := &capturingCompleter{response: validQuestionsJSON, user: &gotUser}
	g := NewGeneratorWithRetry(s, llm, noBackoff())

	if _, err := g.FromMaterials(context.Background(), studentID, []string{"mat-1", "mat-2"}); err != nil {
		t.Fatalf("FromMaterials: %v", err)
	}
	for _, fragment := range []string{"TCP is connection oriented.", "UDP is connectionless.", materialSeparator} {
		if !strings.Contains(gotUser, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
}

type capturingCompleter struct {
	response string
	user     *string
}

func (c *capturingCompleter) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	*c.user = user
	return c.response, nil
}
