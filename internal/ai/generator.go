package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/store"
)

// Error values the HTTP layer translates to statuses. The quota and
// generation messages are shown to students verbatim.
var (
	ErrNoMaterialIDs     = errors.New("materialIds is required")
	ErrNoMaterials       = errors.New("no completed study materials found")
	ErrEmptyText         = errors.New("study materials contain no extracted text")
	ErrQuotaExceeded     = errors.New("AI service quota exceeded. Please try again later.")
	ErrGenerationFailed  = errors.New("AI failed to generate questions. Please try again.")
	ErrInvalidGeneration = errors.New("AI failed to generate valid questions. Please try again.")
)

const (
	materialSeparator = "\n\n---\n\n"
	maxExamQuestions  = 10
	minExamDuration   = 30 // minutes
)

// Completer is the slice of Client the generator needs; tests substitute a
// scripted implementation.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float32) (string, error)
}

// Generator builds practice exams from a student's study materials.
type Generator struct {
	store *store.Store
	llm   Completer
	retry RetryPolicy
}

// NewGenerator creates a Generator with the default retry policy.
func NewGenerator(s *store.Store, llm Completer) *Generator {
	return &Generator{store: s, llm: llm, retry: DefaultRetryPolicy()}
}

// NewGeneratorWithRetry creates a Generator with a custom retry policy.
func NewGeneratorWithRetry(s *store.Store, llm Completer, retry RetryPolicy) *Generator {
	return &Generator{store: s, llm: llm, retry: retry}
}

// FromMaterials generates a practice exam from the given study materials and
// persists it in active status. Analytics updates are best-effort and never
// fail the call.
func (g *Generator) FromMaterials(ctx context.Context, studentID int64, materialIDs []string) (*model.ExamInstance, error) {
	if len(materialIDs) == 0 {
		return nil, ErrNoMaterialIDs
	}

	materials, err := g.store.ListCompletedMaterials(studentID, materialIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch materials: %w", err)
	}
	if len(materials) == 0 {
		return nil, ErrNoMaterials
	}

	var texts []string
	for _, m := range materials {
		texts = append(texts, m.ExtractedText)
	}
	combined := strings.Join(texts, materialSeparator)
	if strings.TrimSpace(combined) == "" {
		return nil, ErrEmptyText
	}

	raw, err := g.retry.Do(ctx, func() (string, error) {
		return g.llm.Complete(ctx, examSystemPrompt(), examUserPrompt(combined), 0.3)
	})
	if err != nil {
		return nil, classifyGenerationError(err)
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		slog.Error("generated questions failed validation", "student_id", studentID, "error", err)
		return nil, ErrInvalidGeneration
	}

	duration := 2 * len(questions)
	if duration < minExamDuration {
		duration = minExamDuration
	}

	exam := model.ExamInstance{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Title:     examTitle(materials),
		Subject:   materials[0].Subject,
		Questions: questions,
		Duration:  duration,
		Status:    model.ExamActive,
	}
	if err := g.store.InsertExam(exam); err != nil {
		return nil, fmt.Errorf("persist exam: %w", err)
	}

	if err := g.store.RecordGeneration(studentID, len(questions), exam.Subject); err != nil {
		slog.Warn("analytics update failed", "student_id", studentID, "error", err)
	}

	return &exam, nil
}

// classifyGenerationError maps an exhausted retry loop to the user-facing
// taxonomy: upstream quota/limit signals become ErrQuotaExceeded, everything
// else ErrGenerationFailed.
func classifyGenerationError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") || strings.Contains(msg, "limit") {
		return ErrQuotaExceeded
	}
	return ErrGenerationFailed
}

func examTitle(materials []model.StudyMaterial) string {
	if materials[0].Subject != "" {
		return "Practice Exam: " + materials[0].Subject
	}
	return "Practice Exam: " + materials[0].Title
}

func examSystemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You are an exam generator for university students. ")
	sb.WriteString("You produce practice-exam questions strictly from the study material you are given.\n\n")
	sb.WriteString("Respond ONLY with a JSON array of at most ")
	sb.WriteString(fmt.Sprintf("%d", maxExamQuestions))
	sb.WriteString(" question objects, no prose, each shaped like:\n")
	sb.WriteString(`{"question": "<text>", "type": "multiple-choice" | "true-false" | "short-answer", `)
	sb.WriteString(`"options": ["<only for multiple-choice>"], "correctAnswer": <option index, boolean, or string>, `)
	sb.WriteString(`"explanation": "<brief explanation>", "points": 1}`)
	sb.WriteString("\n\nFor multiple-choice, correctAnswer is the zero-based index into options. ")
	sb.WriteString("Mix the three question types. Every question must be answerable from the material alone.\n")
	return sb.String()
}

func examUserPrompt(text string) string {
	return "STUDY MATERIAL:\n\n" + text
}
