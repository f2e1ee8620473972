package chat

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

const noContent = "No relevant content found."

// notFoundPhrasings are rewritten to the sentinel in answers, in this order.
var notFoundPhrasings = []string{
	"Answer is not available in the context.",
	"answer is not available in the context",
	"This information is not available in the most relevant part of the case documents",
}

func answerMessages(question string, hits []domain.Hit, rec *metadata.Record) []domain.Message {
	var b strings.Builder
	b.WriteString("You are Lexiscope, a legal AI assistant specializing in Indian law cases.\n\n")

	if rec != nil {
		fmt.Fprintf(&b, "CASE INFORMATION:\n- Case Title: %s\n- Judges: %s\n- Date: %s\n- Summary: %s\n\n",
			rec.Title(), rec.Judges(), rec.DecisionDate(), rec.Summary())
	}

	b.WriteString("MOST RELEVANT CASE CONTENT (found by semantic search):\n")
	if len(hits) == 0 {
		b.WriteString(noContent)
	}
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		b.WriteString(h.Content)
	}

	fmt.Fprintf(&b, "\n\nUSER QUESTION: %s\n\n", question)
	b.WriteString(`INSTRUCTIONS:
- Answer the question based on the most relevant case content above
- Be specific and cite relevant details from the case content
- If the answer is not in this specific content, state "This information is not available in the most relevant part of the case documents"
- Use clear, professional legal language
- Provide a direct, focused answer

RESPONSE:`)

	return []domain.Message{{Role: domain.RoleUser, Content: b.String()}}
}

// normalizeAnswer trims the answer and collapses not-found phrasings to the sentinel.
func normalizeAnswer(answer string) string {
	answer = strings.TrimSpace(answer)
	for _, p := range notFoundPhrasings {
		answer = strings.ReplaceAll(answer, p, metadata.NotAvailable)
	}
	return answer
}
