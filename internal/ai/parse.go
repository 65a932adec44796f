package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

type rawQuestion struct {
	Question      string          `json:"question"`
	Type          string          `json:"type"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Points        int             `json:"points"`
}

// parseQuestions turns the raw completion text into validated questions.
// The model sometimes wraps its JSON in a Markdown code fence, so that is
// stripped first.
func parseQuestions(raw string) ([]model.Question, error) {
	cleaned := stripCodeFence(raw)

	var rawQs []rawQuestion
	if err := json.Unmarshal([]byte(cleaned), &rawQs); err != nil {
		return nil, fmt.Errorf("parse questions JSON: %w", err)
	}
	if len(rawQs) == 0 {
		return nil, fmt.Errorf("no questions in response")
	}

	questions := make([]model.Question, 0, len(rawQs))
	for i, rq := range rawQs {
		q := model.Question{
			ID:            fmt.Sprintf("q-%d", i+1),
			Question:      strings.TrimSpace(rq.Question),
			Type:          model.QuestionType(rq.Type),
			Options:       rq.Options,
			CorrectAnswer: rq.CorrectAnswer,
			Explanation:   rq.Explanation,
			Points:        rq.Points,
		}
		if q.Points <= 0 {
			q.Points = 1
		}
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func validateQuestion(q model.Question) error {
	if q.Question == "" {
		return fmt.Errorf("missing question text")
	}
	if q.Type == "" {
		return fmt.Errorf("missing type")
	}
	if len(q.CorrectAnswer) == 0 || string(q.CorrectAnswer) == "null" {
		return fmt.Errorf("missing correctAnswer")
	}
	return nil
}

// stripCodeFence removes an optional ```json ... ``` wrapper around the text.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
