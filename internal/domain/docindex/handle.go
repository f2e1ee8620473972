// Package docindex models a per-document retrieval index.
package docindex

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/kailas-cloud/lexiscope/internal/domain"
)

// Handle is a built, immutable per-document index. Rebuilding replaces it.
type Handle struct {
	identity string
	model    string
	chunks   []string
	vectors  [][]float32
	builtAt  int64
}

// New validates chunk and vector shapes.
func New(identity, model string, chunks []string, vectors [][]float32, builtAt int64) (*Handle, error) {
	if err := ValidateIdentity(identity); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("index for %s has no chunks: %w", identity, domain.ErrInvalidInput)
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("index for %s: %d chunks but %d vectors: %w",
			identity, len(chunks), len(vectors), domain.ErrInvalidInput)
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("index for %s: vector %d has %d dimensions, want %d: %w",
				identity, i, len(v), dim, domain.ErrInvalidInput)
		}
	}
	return &Handle{identity: identity, model: model, chunks: chunks, vectors: vectors, builtAt: builtAt}, nil
}

// ValidateIdentity rejects identities that cannot name an artifact file.
func ValidateIdentity(identity string) error {
	if identity == "" || identity == "." || identity == ".." || strings.ContainsAny(identity, `/\`+"\x00") {
		return fmt.Errorf("bad document identity %q: %w", identity, domain.ErrInvalidInput)
	}
	return nil
}

func (h *Handle) Identity() string { return h.identity }

func (h *Handle) Model() string { return h.model }

func (h *Handle) Chunks() []string { return h.chunks }

func (h *Handle) Vectors() [][]float32 { return h.vectors }

func (h *Handle) BuiltAt() int64 { return h.builtAt }

func (h *Handle) Dimensions() int { return len(h.vectors[0]) }

// Search returns at most k chunks by descending cosine similarity.
// Equal scores keep chunk order.
func (h *Handle) Search(query []float32, k int) []domain.Hit {
	if k <= 0 || len(query) != h.Dimensions() {
		return nil
	}

	hits := make([]domain.Hit, len(h.chunks))
	for i, chunk := range h.chunks {
		hits[i] = domain.Hit{
			Identity: h.identity,
			Index:    i,
			Content:  chunk,
			Score:    cosine(query, h.vectors[i]),
		}
	}
	slices.SortStableFunc(hits, func(a, b domain.Hit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
