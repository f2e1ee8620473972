// Package embedding decorates embedders with budget enforcement and logging.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/metrics"
)

// MaxAPIBatchSize caps the number of texts sent in one provider call.
const MaxAPIBatchSize = 256

// BudgetChecker is the slice of budget.Tracker this package needs.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Instrumented wraps an embedder. Transport metrics live in transport/openai;
// this layer owns the budget and its gauges.
type Instrumented struct {
	inner    domain.Embedder
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumented wraps inner. budget may be nil.
func NewInstrumented(
	inner domain.Embedder, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *Instrumented {
	return &Instrumented{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Embed checks the budget, delegates, and records usage.
func (p *Instrumented) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := p.checkBudget(ctx, 1); err != nil {
		return domain.EmbeddingResult{}, err
	}

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	p.record(result.TotalTokens)
	p.logger.Debug("Embedding request completed",
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed splits texts into provider-sized calls, re-checking the budget between them.
func (p *Instrumented) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	var out domain.BatchEmbeddingResult
	for offset := 0; offset < len(texts); offset += MaxAPIBatchSize {
		if err := p.checkBudget(ctx, len(texts)); err != nil {
			return domain.BatchEmbeddingResult{}, err
		}

		end := min(offset+MaxAPIBatchSize, len(texts))
		part, err := domain.EmbedAll(ctx, p.inner, texts[offset:end])
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("offset", offset),
				zap.Int("size", end-offset),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed at %d: %w", offset, err)
		}
		out.Embeddings = append(out.Embeddings, part.Embeddings...)
		out.PromptTokens += part.PromptTokens
		out.TotalTokens += part.TotalTokens
		p.record(part.TotalTokens)
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

// HealthCheck delegates when the inner embedder supports it.
func (p *Instrumented) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health: %w", err)
		}
	}
	return nil
}

func (p *Instrumented) checkBudget(ctx context.Context, size int) error {
	if p.budget == nil {
		return nil
	}
	if err := p.budget.Check(ctx); err != nil {
		p.logger.Error("Embedding budget exceeded",
			zap.String("provider", p.provider),
			zap.Int("batch_size", size),
			zap.Error(err),
		)
		return fmt.Errorf("budget check: %w", err)
	}
	return nil
}

func (p *Instrumented) record(tokens int) {
	if p.budget == nil || tokens <= 0 {
		return
	}
	p.budget.Record(int64(tokens))
	metrics.SetBudgetRemaining(metrics.RoleEmbedding, p.provider, p.budget.RemainingDaily(), p.budget.RemainingMonthly())
}
