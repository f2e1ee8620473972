package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects query embedding tokens for one request. The
// handler installs it, use cases add to it, and the handler reports the total
// in the X-Embedding-Tokens header. A nil collector ignores writes.
type EmbeddingUsage struct {
	TotalTokens int
	Used        bool // set even when a cache hit reports 0 tokens
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records consumed tokens.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}
