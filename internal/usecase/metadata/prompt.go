package metadata

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/lexiscope/internal/domain"
)

const (
	headLines    = 100
	tailLines    = 100
	sampleRunes  = 4000
	systemPrompt = `You are a legal metadata extractor for Supreme Court of India judgments. Extract information and return ONLY valid JSON.

Extract and return EXACTLY this JSON format with no additional text:
{
    "title": "exact case name with vs/v.",
    "judges": "judge names separated by commas, no titles",
    "date": "judgment date in DD-MM-YYYY format",
    "summary": "concise 100-word summary of main legal issue and outcome"
}

Rules:
- For title: Look for "PETITIONER vs RESPONDENT" or "Appellant vs Respondent" pattern
- For judges: Extract names from end signature lines like "....J. (Judge Name)"
- For date: Look for date at end after "New Delhi;" or similar
- For summary: Focus on key legal principles, main issue, and court's decision
- Use "Not available" if information cannot be found
- Return only the JSON, no other text`
)

// extractionMessages builds the request: the opening lines carry the title,
// the closing lines carry the bench and date, the sample feeds the summary.
func extractionMessages(fullText string) []domain.Message {
	lines := strings.Split(strings.TrimSpace(fullText), "\n")
	head := strings.Join(lines[:min(headLines, len(lines))], "\n")
	tail := strings.Join(lines[max(0, len(lines)-tailLines):], "\n")

	user := fmt.Sprintf("FIRST PAGE (for case title):\n%s\n\nLAST PAGE (for judges and date):\n%s\n\nDOCUMENT SAMPLE (for summary):\n%s",
		head, tail, sample(fullText, sampleRunes))

	return []domain.Message{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: user},
	}
}

// sample returns the first n runes of text, marking truncation with "...".
func sample(text string, n int) string {
	count := 0
	for i := range text {
		if count == n {
			return text[:i] + "..."
		}
		count++
	}
	return text
}
