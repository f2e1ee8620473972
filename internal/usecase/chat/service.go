// Package chat answers questions about a single judgment from its own index.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
	"github.com/kailas-cloud/lexiscope/internal/logger"
)

// ErrorAnswer replaces the answer when the completion service fails.
const ErrorAnswer = "Error processing query"

// DefaultTopN is the number of chunks placed in the prompt.
const DefaultTopN = 1

// DefaultParams tune the answer request.
var DefaultParams = domain.CompletionParams{
	Temperature: 0.2,
	Timeout:     30 * time.Second,
}

// StatusReady is reported once a case can be chatted with.
const StatusReady = "ready"

// Readiness is the outcome of EnsureReady.
type Readiness struct {
	Identity string
	Status   string
	Built    bool
}

// Config tunes retrieval and the answer request.
type Config struct {
	TopN   int
	Params domain.CompletionParams
}

// Resolver answers questions about one case.
type Resolver struct {
	indexes   indexManager
	meta      metadataReader
	gate      admitter
	completer domain.Completer
	texts     TextSource
	cfg       Config
	logger    *zap.Logger
}

// New creates a Resolver. Zero config values take defaults.
func New(
	indexes indexManager,
	meta metadataReader,
	gate admitter,
	completer domain.Completer,
	texts TextSource,
	cfg Config,
	logger *zap.Logger,
) *Resolver {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.Params.Temperature == 0 {
		cfg.Params.Temperature = DefaultParams.Temperature
	}
	if cfg.Params.Timeout == 0 {
		cfg.Params.Timeout = DefaultParams.Timeout
	}
	return &Resolver{
		indexes:   indexes,
		meta:      meta,
		gate:      gate,
		completer: completer,
		texts:     texts,
		cfg:       cfg,
		logger:    logger,
	}
}

// EnsureReady reports whether identity has a built index. With build set a
// missing index is built from the corpus text first; otherwise a missing
// index yields domain.ErrNotFound.
func (r *Resolver) EnsureReady(ctx context.Context, identity string, build bool) (Readiness, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return Readiness{}, fmt.Errorf("empty case id: %w", domain.ErrInvalidInput)
	}

	ok, err := r.indexes.Exists(ctx, identity)
	if err != nil {
		return Readiness{}, err //nolint:wrapcheck // already wrapped by the index manager
	}
	if ok {
		return Readiness{Identity: identity, Status: StatusReady}, nil
	}
	if !build {
		return Readiness{}, fmt.Errorf("index for case %s: %w", identity, domain.ErrNotFound)
	}

	text, err := r.texts.FullText(ctx, identity)
	if err != nil {
		return Readiness{}, fmt.Errorf("case %s: %w", identity, err)
	}
	if _, err := r.indexes.EnsureBuilt(ctx, identity, text); err != nil {
		return Readiness{}, err //nolint:wrapcheck // build errors carry domain.ErrBuild
	}
	return Readiness{Identity: identity, Status: StatusReady, Built: true}, nil
}

// Answer responds to question from the most relevant chunks of identity.
// Completion failures yield ErrorAnswer rather than an error.
func (r *Resolver) Answer(ctx context.Context, identity, question string) (string, error) {
	identity = strings.TrimSpace(identity)
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}
	log := logger.FromContextOr(ctx, r.logger).With(zap.String("identity", identity))

	h, err := r.indexes.Load(ctx, identity)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error("Index load failed", zap.String("op", "load"), zap.Error(err))
		}
		return "", err //nolint:wrapcheck // already wrapped by the index manager
	}

	hits, err := r.indexes.Search(ctx, h, question, r.cfg.TopN)
	if err != nil {
		log.Error("Chunk retrieval failed", zap.String("op", "search"), zap.Error(err))
		return "", err //nolint:wrapcheck // already wrapped by the index manager
	}

	var rec *metadata.Record
	if cached, ok, err := r.meta.Cached(ctx, identity); err != nil {
		log.Warn("Case metadata unavailable", zap.String("op", "metadata"), zap.Error(err))
	} else if ok {
		rec = &cached
	}

	if err := r.gate.Admit(ctx); err != nil {
		return "", fmt.Errorf("admit answer for %s: %w", identity, err)
	}

	res, err := r.completer.Generate(ctx, answerMessages(question, hits, rec), r.cfg.Params)
	if err != nil {
		log.Error("Answer completion failed", zap.String("op", "generate"), zap.Error(err))
		return ErrorAnswer, nil
	}
	return normalizeAnswer(res.Text), nil
}
