package ai

import (
	"context"
	"strings"
)

// StudyChat answers a free-form study question, optionally grounded in the
// extracted text of one of the student's materials.
func StudyChat(ctx context.Context, llm Completer, message, materialText string) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are a friendly study assistant helping a university student improve their grades. ")
	sb.WriteString("Answer concisely and, when the student seems stuck, suggest what to revise next.\n")
	if strings.TrimSpace(materialText) != "" {
		sb.WriteString("\nBase your answer on this study material where relevant:\n\n")
		sb.WriteString(materialText)
		sb.WriteString("\n")
	}
	reply, err := llm.Complete(ctx, sb.String(), message, 0.7)
	if err != nil {
		return "", classifyGenerationError(err)
	}
	return reply, nil
}
