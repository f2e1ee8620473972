// Package legaltext cleans and splits judgment texts before indexing.
package legaltext

import (
	"regexp"
	"strings"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// Applied in order. Each rule is a plain RE2 substitution.
var rules = []rule{
	{regexp.MustCompile(`\d{4} INSC \d+`), ""},
	{regexp.MustCompile(`(?i)NON[\s-]?REPORTABLE|REPORTABLE`), ""},
	{regexp.MustCompile(`Page \d+ of \d+`), ""},

	// digital signature blocks
	{regexp.MustCompile(`(?s)Digitally signed by.*?Signature Not Verified`), ""},
	{regexp.MustCompile(`(?:Date:\s*)?\d{4}\.\d{2}\.\d{2}\s*\d{2}:\d{2}:\d{2}\s*IST\s*Reason:`), ""},
	{regexp.MustCompile(`Signature Not Verified.*`), ""},

	// citations
	{regexp.MustCompile(`\d{4}\s+SCC OnLine\s+[A-Z]+\s+\d+`), ""},
	{regexp.MustCompile(`\(\d{4}\)\s+\d+\s+SCC\s+\d+`), ""},

	// isolated footnote numbers and OCR leftovers
	{regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*\(\w+\)[ \t]*$`), ""},
	{regexp.MustCompile(`\(\s*\)`), ""},
	{regexp.MustCompile(`\[\s*\]`), ""},

	// spaced out headers
	{regexp.MustCompile(`J\s+U\s+D\s+G\s+M\s+E\s+N\s+T`), "JUDGMENT"},
	{regexp.MustCompile(`O\s+R\s+D\s+E\s+R`), "ORDER"},

	{regexp.MustCompile(`\.{3,}`), "..."},
	{regexp.MustCompile(`[-_]{3,}`), ""},
	{regexp.MustCompile(`(?i)\(D\)\s*TH\.\s*LRS\.?`), ""},
	{regexp.MustCompile(`(?i)PRESENT:\s*\n+`), "JUDGES:\n"},
	{regexp.MustCompile(`(?i)HON['"]BLE\s+MR?S?\.?\s+JUSTICE`), "Justice"},
	{regexp.MustCompile(`(?i)\n+[ \t]*VERSUS[ \t]*\n+`), "\n\nVERSUS\n\n"},

	// whitespace
	{regexp.MustCompile(`[ \t]+`), " "},
	{regexp.MustCompile(`\n[ \t]*\n[\s]*\n+`), "\n\n"},
	{regexp.MustCompile(` +([,.!?;:])`), "$1"},
	{regexp.MustCompile(`([.!?]) ?\n ?([a-z])`), "$1 $2"},
}

// Normalize strips page furniture, signature blocks and citation noise from a
// judgment and collapses whitespace. The output is deterministic and
// Normalize(Normalize(s)) == Normalize(s) for typical inputs.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, r := range rules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return strings.TrimSpace(text)
}
