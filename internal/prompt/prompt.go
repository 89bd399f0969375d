// Package prompt renders the grounded model input for a chat request.
package prompt

import (
	"strings"

	"github.com/tuitshoxrux/copilot/models"
)

// template instructs the model to answer strictly from the provided context.
// The wording is part of the system contract: answers must not go beyond the
// retrieved passages, must match the question's language, and must say so
// when the context does not contain the answer.
const template = `You are a helpful AI assistant. Answer the user's question based *only* on the provided context.
Respond in the same language as the user's question.
If the context does not contain the answer, state that you cannot find the answer in the provided documents.

Context:
%context%

Current conversation:
%chat_history%

User: %question%
Answer:`

// Render builds the model input from the pending question, the prior
// conversation turns and the retrieved matches, in ranked order. It is pure
// and total: identical inputs always produce identical output.
func Render(question string, history []models.ConversationTurn, matches []models.Match) string {
	contents := make([]string, len(matches))
	for i, m := range matches {
		contents[i] = m.Content
	}

	lines := make([]string, len(history))
	for i, turn := range history {
		lines[i] = turn.Role + ": " + turn.Content
	}

	// Single-pass replacement so placeholder-looking text inside the
	// inserted values is never re-expanded.
	return strings.NewReplacer(
		"%context%", strings.Join(contents, "\n\n"),
		"%chat_history%", strings.Join(lines, "\n"),
		"%question%", question,
	).Replace(template)
}
