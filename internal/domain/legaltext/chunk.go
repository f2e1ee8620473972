package legaltext

import (
	"strings"
	"unicode/utf8"
)

// Chunk is a contiguous slice of a document.
type Chunk struct {
	Index int
	Text  string
}

// separators are tried in order when looking for a natural break.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split cuts text into chunks of at most size bytes where consecutive chunks
// share about overlap bytes. Breaks prefer paragraph, line, sentence and word
// boundaries found in the second half of the window. Empty chunks are dropped
// and Index numbers the surviving chunks from zero.
func Split(text string, size, overlap int) []Chunk {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []Chunk
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			end = breakPoint(text, start, end)
		}
		if end <= start {
			// Window narrower than the rune at start.
			_, n := utf8.DecodeRuneInString(text[start:])
			end = start + n
		}

		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			chunks = append(chunks, Chunk{Index: len(chunks), Text: piece})
		}
		if end == len(text) {
			break
		}

		// Align before the progress check: aligning can move next back onto start.
		next := alignRune(text, end-overlap)
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func breakPoint(text string, start, end int) int {
	window := text[start:end]
	half := len(window) / 2
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i >= half {
			return start + i + len(sep)
		}
	}
	return alignRune(text, end)
}

// alignRune moves i back to the start of a UTF-8 sequence.
func alignRune(text string, i int) int {
	for i > 0 && i < len(text) && text[i]&0xC0 == 0x80 {
		i--
	}
	return i
}
