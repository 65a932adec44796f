// Package grader scores submitted practice-exam answers against the stored
// correct answers.
package grader

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

// Report summarizes one graded submission.
type Report struct {
	Score          int `json:"score"`
	TotalPoints    int `json:"totalPoints"`
	Percentage     int `json:"percentage"`
	CorrectAnswers int `json:"correctAnswers"`
	TotalQuestions int `json:"totalQuestions"`
}

// Grade evaluates the answers map (question ID to raw answer string) against
// the questions in stored order. Unanswered questions and unknown question
// types count as incorrect; no error is raised for either.
func Grade(questions []model.Question, answers map[string]string) Report {
	report := Report{TotalQuestions: len(questions)}

	for _, q := range questions {
		points := q.Points
		if points <= 0 {
			points = 1
		}
		report.TotalPoints += points

		answer, ok := answers[q.ID]
		if !ok {
			continue
		}
		if isCorrect(q, answer) {
			report.Score += points
			report.CorrectAnswers++
		}
	}

	if report.TotalPoints > 0 {
		report.Percentage = int(math.Round(float64(report.Score) / float64(report.TotalPoints) * 100))
	}
	return report
}

func isCorrect(q model.Question, answer string) bool {
	switch q.Type {
	case model.TypeMultipleChoice:
		want, ok := correctIndex(q.CorrectAnswer)
		if !ok {
			return false
		}
		got, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil {
			return false
		}
		return got == want
	case model.TypeTrueFalse:
		want, ok := correctBool(q.CorrectAnswer)
		if !ok {
			return false
		}
		got, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(answer)))
		if err != nil {
			return false
		}
		return got == want
	case model.TypeShortAnswer:
		want, ok := correctString(q.CorrectAnswer)
		if !ok {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(want))
	default:
		// Unknown question type: treated as incorrect.
		return false
	}
}

// correctIndex reads a multiple-choice answer index, accepting either a JSON
// number or a numeric string (generated content is not always consistent).
func correctIndex(raw json.RawMessage) (int, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err == nil {
			return i, true
		}
	}
	return 0, false
}

func correctBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
		if err == nil {
			return b, true
		}
	}
	return false, false
}

func correctString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return "", false
}
