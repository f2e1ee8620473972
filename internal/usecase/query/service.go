// Package query turns a search request into ranked cases with metadata.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/analytics"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
	"github.com/kailas-cloud/lexiscope/internal/logger"
	metadatauc "github.com/kailas-cloud/lexiscope/internal/usecase/metadata"
)

const (
	// DefaultTopK is used when the request leaves topK unset.
	DefaultTopK = 5
	// MaxTopK bounds the number of raw passage hits per search.
	MaxTopK = 50
)

// Result is one case in a search response.
type Result struct {
	Metadata metadata.Record
	Score    float64
	Snippet  string
}

// Response is the outcome of Search. Total counts distinct cases.
type Response struct {
	Query   string
	Results []Result
	Total   int
}

// Orchestrator runs the search flow.
type Orchestrator struct {
	embedder domain.Embedder
	index    passageIndex
	resolver metadataResolver
	texts    metadatauc.TextSource
	log      searchLogger
	logger   *zap.Logger
}

// New creates an Orchestrator. searchLog may be nil.
func New(
	embedder domain.Embedder,
	index passageIndex,
	resolver metadataResolver,
	texts metadatauc.TextSource,
	searchLog searchLogger,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		embedder: embedder,
		index:    index,
		resolver: resolver,
		texts:    texts,
		log:      searchLog,
		logger:   logger,
	}
}

// Search retrieves the topK nearest passages, keeps the best passage per
// case and resolves case metadata in rank order. Cases whose metadata cannot
// be resolved are skipped.
func (o *Orchestrator) Search(ctx context.Context, query string, topK int) (Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Response{}, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	switch {
	case topK <= 0:
		topK = DefaultTopK
	case topK > MaxTopK:
		topK = MaxTopK
	}
	start := time.Now()
	log := logger.FromContextOr(ctx, o.logger)

	emb, err := o.embedder.Embed(ctx, query)
	if err != nil {
		log.Error("Query embedding failed", zap.String("op", "embed"), zap.Error(err))
		return Response{}, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)
	hits, err := o.index.Search(ctx, emb.Embedding, topK)
	if err != nil {
		log.Error("Corpus search failed", zap.String("op", "search"), zap.Error(err))
		return Response{}, fmt.Errorf("search corpus: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range Dedup(hits) {
		rec, err := o.resolver.Resolve(ctx, h.Identity, hitSource{texts: o.texts, hit: h})
		if err != nil {
			if ctx.Err() != nil {
				return Response{}, fmt.Errorf("resolve %s: %w", h.Identity, ctx.Err())
			}
			log.Warn("Skipping case without metadata",
				zap.String("identity", h.Identity), zap.String("op", "resolve"), zap.Error(err))
			continue
		}
		results = append(results, Result{Metadata: rec, Score: h.Score, Snippet: h.Content})
	}

	resp := Response{Query: query, Results: results, Total: len(results)}
	o.record(ctx, query, len(results), time.Since(start))
	return resp, nil
}

// Dedup keeps the first hit of every identity and drops hits without one.
// Input order is preserved.
func Dedup(hits []domain.Hit) []domain.Hit {
	seen := make(map[string]struct{}, len(hits))
	out := make([]domain.Hit, 0, len(hits))
	for _, h := range hits {
		if h.Identity == "" {
			continue
		}
		if _, ok := seen[h.Identity]; ok {
			continue
		}
		seen[h.Identity] = struct{}{}
		out = append(out, h)
	}
	return out
}

func (o *Orchestrator) record(ctx context.Context, query string, n int, elapsed time.Duration) {
	if o.log == nil {
		return
	}
	err := o.log.LogSearch(context.WithoutCancel(ctx), analytics.SearchLog{
		Query:     query,
		Kind:      analytics.KindSemantic,
		Results:   n,
		LatencyMS: elapsed.Milliseconds(),
	})
	if err != nil {
		o.logger.Warn("Failed to log search", zap.String("op", "log_search"), zap.Error(err))
	}
}
