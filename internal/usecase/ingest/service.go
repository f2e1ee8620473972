// Package ingest loads the judgment corpus into the corpus-wide vector index.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/legaltext"
)

// Corpus chunking defaults.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Config tunes chunking and parallelism.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Concurrency  int
	// Reset drops the existing index before ingesting.
	Reset bool
}

// Report counts ingest outcomes.
type Report struct {
	Documents int
	Passages  int
	Failed    map[string]error
}

// Service ingests corpus texts.
type Service struct {
	index    passageWriter
	embedder domain.Embedder
	corpus   corpus
	cfg      Config
	logger   *zap.Logger
}

// New creates a Service. Zero config values take defaults.
func New(index passageWriter, embedder domain.Embedder, c corpus, cfg Config, logger *zap.Logger) *Service {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Service{index: index, embedder: embedder, corpus: c, cfg: cfg, logger: logger}
}

// Run ingests ids, or the whole corpus when ids is empty. Per-document
// failures are reported, not returned.
func (s *Service) Run(ctx context.Context, ids []string) (Report, error) {
	if len(ids) == 0 {
		all, err := s.corpus.List()
		if err != nil {
			return Report{}, fmt.Errorf("list corpus: %w", err)
		}
		ids = all
	}
	if s.cfg.Reset {
		if err := s.index.Reset(ctx); err != nil {
			return Report{}, err //nolint:wrapcheck // already wrapped by the repository
		}
	}
	if err := s.index.EnsureIndex(ctx); err != nil {
		return Report{}, err //nolint:wrapcheck // already wrapped by the repository
	}

	report := Report{Failed: make(map[string]error)}
	var mu sync.Mutex
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // cancellation
			}
			n, err := s.ingestOne(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("Ingest failed", zap.String("identity", id), zap.String("op", "ingest"), zap.Error(err))
				report.Failed[id] = err
				return nil
			}
			report.Documents++
			report.Passages += n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("ingest: %w", err)
	}

	s.logger.Info("Corpus ingested",
		zap.Int("documents", report.Documents),
		zap.Int("passages", report.Passages),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// Passages normalizes and chunks one document.
func (s *Service) Passages(identity, source, text string) []domain.Passage {
	chunks := legaltext.Split(legaltext.Normalize(text), s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	out := make([]domain.Passage, len(chunks))
	for i, c := range chunks {
		out[i] = domain.Passage{Identity: identity, Source: source, Index: c.Index, Content: c.Text}
	}
	return out
}

func (s *Service) ingestOne(ctx context.Context, id string) (int, error) {
	text, err := s.corpus.FullText(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", id, err)
	}
	passages := s.Passages(id, s.corpus.Path(id), text)
	if len(passages) == 0 {
		return 0, fmt.Errorf("%s has no text: %w", id, domain.ErrInvalidInput)
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}
	emb, err := domain.EmbedAll(ctx, s.embedder, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", id, err)
	}
	for i := range passages {
		passages[i].Vector = emb.Embeddings[i]
	}

	if err := s.index.Put(ctx, passages); err != nil {
		return 0, fmt.Errorf("write %s: %w", id, err)
	}
	return len(passages), nil
}
