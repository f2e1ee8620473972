// Package metadata resolves case metadata from the store, extracting it
// through the completion service at most once per identity.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
	"github.com/kailas-cloud/lexiscope/internal/logger"
	"github.com/kailas-cloud/lexiscope/internal/metrics"
)

// DefaultParams match the extraction request tuning.
var DefaultParams = domain.CompletionParams{
	Temperature: 0.21,
	MaxTokens:   600,
	Timeout:     30 * time.Second,
}

// Pipeline is the sole writer of metadata records.
type Pipeline struct {
	store     recordStore
	gate      admitter
	completer domain.Completer
	params    domain.CompletionParams
	flights   *inFlight
	logger    *zap.Logger
}

// New creates a Pipeline. Zero params fields take DefaultParams values.
func New(
	store recordStore, gate admitter, completer domain.Completer,
	params domain.CompletionParams, logger *zap.Logger,
) *Pipeline {
	if params.Temperature == 0 {
		params.Temperature = DefaultParams.Temperature
	}
	if params.MaxTokens == 0 {
		params.MaxTokens = DefaultParams.MaxTokens
	}
	if params.Timeout == 0 {
		params.Timeout = DefaultParams.Timeout
	}
	return &Pipeline{
		store:     store,
		gate:      gate,
		completer: completer,
		params:    params,
		flights:   newInFlight(),
		logger:    logger,
	}
}

// Cached returns the stored record when extraction already finished.
// ok is false when the record is absent or not yet terminal.
func (p *Pipeline) Cached(ctx context.Context, identity string) (metadata.Record, bool, error) {
	rec, err := p.store.Get(ctx, identity)
	if errors.Is(err, domain.ErrNotFound) {
		return metadata.Record{}, false, nil
	}
	if err != nil {
		return metadata.Record{}, false, fmt.Errorf("get metadata %s: %w", identity, err)
	}
	return rec, rec.Status().IsTerminal(), nil
}

// Resolve returns the metadata of identity, extracting it when needed.
// Concurrent callers for one identity share a single extraction. Completion
// and parse failures degrade to a sentinel record and are not returned.
func (p *Pipeline) Resolve(ctx context.Context, identity string, src TextSource) (metadata.Record, error) {
	if identity == "" {
		return metadata.Record{}, fmt.Errorf("empty identity: %w", domain.ErrInvalidInput)
	}

	rec, ok, err := p.Cached(ctx, identity)
	if err != nil {
		p.log(ctx).Error("Metadata lookup failed",
			zap.String("identity", identity), zap.String("op", "get"), zap.Error(err))
		return metadata.Record{}, err
	}
	if ok {
		metrics.MetadataOutcomesTotal.WithLabelValues("cache_hit").Inc()
		return rec, nil
	}

	f, owner := p.flights.acquire(identity)
	if owner {
		// Another flight may have finished between the lookup and acquire.
		rec, ok, err := p.Cached(ctx, identity)
		if err != nil || ok {
			p.flights.release(identity, f, rec, err)
			if err != nil {
				return metadata.Record{}, err
			}
			metrics.MetadataOutcomesTotal.WithLabelValues("cache_hit").Inc()
			return rec, nil
		}
		// Extraction outlives the caller so that waiters are always released.
		go p.extract(context.WithoutCancel(ctx), identity, src, f)
	} else {
		metrics.MetadataOutcomesTotal.WithLabelValues("deduplicated").Inc()
	}

	select {
	case <-ctx.Done():
		return metadata.Record{}, fmt.Errorf("resolve %s: %w", identity, ctx.Err())
	case <-f.done:
	}

	if rec, ok, err := p.Cached(ctx, identity); err == nil && ok {
		return rec, nil
	}
	if f.err != nil {
		return metadata.Record{}, fmt.Errorf("%w: %w", domain.ErrStore, f.err)
	}
	return f.rec, nil
}

// extract runs one extraction and always releases f.
func (p *Pipeline) extract(ctx context.Context, identity string, src TextSource, f *flight) {
	var (
		rec metadata.Record
		err error
	)
	defer func() { p.flights.release(identity, f, rec, err) }()

	start := time.Now()
	path := src.Path(identity)
	if computing, cerr := metadata.New(identity, path, metadata.SentinelFields(), metadata.StatusComputing); cerr == nil {
		if uerr := p.store.Upsert(ctx, computing); uerr != nil {
			p.logger.Warn("Failed to mark extraction in progress",
				zap.String("identity", identity), zap.String("op", "upsert"), zap.Error(uerr))
		}
	}

	fields, status, outcome := p.compute(ctx, identity, src)
	rec, err = metadata.New(identity, path, fields, status)
	if err != nil {
		return
	}
	if err = p.store.Upsert(ctx, rec); err != nil {
		p.logger.Error("Failed to store metadata",
			zap.String("identity", identity), zap.String("op", "upsert"), zap.Error(err))
		err = fmt.Errorf("store metadata %s: %w", identity, err)
		return
	}

	metrics.MetadataOutcomesTotal.WithLabelValues(outcome).Inc()
	p.logger.Info("Metadata extracted",
		zap.String("identity", identity),
		zap.String("status", string(status)),
		zap.String("outcome", outcome),
		zap.Strings("missing", fields.Missing()),
		zap.Duration("duration", time.Since(start)),
	)
}

// compute fetches the text, asks the completion service and parses the answer.
func (p *Pipeline) compute(ctx context.Context, identity string, src TextSource) (metadata.Fields, metadata.Status, string) {
	text, err := src.FullText(ctx, identity)
	if err != nil {
		p.logger.Error("Full text unavailable",
			zap.String("identity", identity), zap.String("op", "full_text"), zap.Error(err))
		return metadata.SentinelFields(), metadata.StatusFailed, "fallback"
	}

	if err := p.gate.Admit(ctx); err != nil {
		p.logger.Error("Rate gateway refused extraction",
			zap.String("identity", identity), zap.String("op", "admit"), zap.Error(err))
		return metadata.SentinelFields(), metadata.StatusFailed, "fallback"
	}

	res, err := p.completer.Generate(ctx, extractionMessages(text), p.params)
	if err != nil {
		p.logger.Error("Metadata completion failed",
			zap.String("identity", identity), zap.String("op", "generate"), zap.Error(err))
		return metadata.SentinelFields(), metadata.StatusFailed, "fallback"
	}

	fields, tier := parseExtraction(res.Text)
	if tier == tierFallback {
		p.logger.Warn("Metadata response unparseable",
			zap.String("identity", identity), zap.String("op", "parse"), zap.Int("response_len", len(res.Text)))
		return fields, metadata.StatusFailed, tier.outcome()
	}
	return fields, metadata.StatusReady, tier.outcome()
}

// InFlight reports how many extractions are running.
func (p *Pipeline) InFlight() int { return p.flights.size() }

func (p *Pipeline) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, p.logger)
}
