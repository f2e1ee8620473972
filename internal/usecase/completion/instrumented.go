// Package completion decorates the completion client with budget tracking and logging.
package completion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/metrics"
)

// BudgetChecker is the slice of budget.Tracker this package needs.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Instrumented wraps a domain.Completer.
type Instrumented struct {
	inner    domain.Completer
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumented wraps inner. budget may be nil.
func NewInstrumented(
	inner domain.Completer, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *Instrumented {
	return &Instrumented{inner: inner, provider: provider, model: model, budget: budget, logger: logger}
}

// Generate enforces the budget and records consumed tokens.
// A rejected budget surfaces as ErrCompletionService so callers degrade the same way.
func (c *Instrumented) Generate(
	ctx context.Context, messages []domain.Message, params domain.CompletionParams,
) (domain.CompletionResult, error) {
	if c.budget != nil {
		if err := c.budget.Check(ctx); err != nil {
			c.logger.Error("Completion budget exceeded", zap.String("provider", c.provider), zap.Error(err))
			return domain.CompletionResult{}, fmt.Errorf("%w: %w", domain.ErrCompletionService, err)
		}
	}

	start := time.Now()
	res, err := c.inner.Generate(ctx, messages, params)
	if err != nil {
		c.logger.Error("Completion request failed",
			zap.String("provider", c.provider),
			zap.String("model", c.model),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return domain.CompletionResult{}, fmt.Errorf("generate: %w", err)
	}

	if c.budget != nil && res.TotalTokens > 0 {
		c.budget.Record(int64(res.TotalTokens))
		metrics.SetBudgetRemaining(metrics.RoleCompletion, c.provider, c.budget.RemainingDaily(), c.budget.RemainingMonthly())
	}

	c.logger.Debug("Completion request completed",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("prompt_tokens", res.PromptTokens),
		zap.Int("completion_tokens", res.CompletionTokens),
	)
	return res, nil
}
