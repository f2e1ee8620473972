// Package docindex manages the lifecycle of per-document retrieval indexes.
package docindex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/docindex"
	"github.com/kailas-cloud/lexiscope/internal/domain/legaltext"
	docindexrepo "github.com/kailas-cloud/lexiscope/internal/repository/docindex"
)

// Chat defaults for chunking full judgments.
const (
	DefaultChunkSize    = 10000
	DefaultChunkOverlap = 1000
	defaultCacheSize    = 64
)

// Config tunes chunking and the loaded-handle cache.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	CacheSize    int
}

// Service builds, loads and searches per-document indexes.
type Service struct {
	store    artifactStore
	embedder domain.Embedder
	model    string
	cfg      Config
	builds   singleflight.Group
	logger   *zap.Logger

	mu     sync.Mutex
	loaded map[string]*docindex.Handle
}

// New creates a Service. model is recorded in every artifact.
func New(store artifactStore, embedder domain.Embedder, model string, cfg Config, logger *zap.Logger) *Service {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	return &Service{
		store:    store,
		embedder: embedder,
		model:    model,
		cfg:      cfg,
		logger:   logger,
		loaded:   make(map[string]*docindex.Handle),
	}
}

// Exists checks persisted artifacts only.
func (s *Service) Exists(_ context.Context, identity string) (bool, error) {
	ok, err := s.store.Exists(identity)
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", identity, err)
	}
	return ok, nil
}

// EnsureBuilt returns the existing handle or builds one from fullText.
// Concurrent calls for one identity share a single build.
func (s *Service) EnsureBuilt(ctx context.Context, identity, fullText string) (*docindex.Handle, error) {
	ok, err := s.Exists(ctx, identity)
	if err != nil {
		return nil, err
	}
	if ok {
		return s.Load(ctx, identity)
	}

	// The build is shared, so one caller leaving must not fail the others.
	buildCtx := context.WithoutCancel(ctx)
	v, err, shared := s.builds.Do(identity, func() (any, error) {
		if ok, err := s.store.Exists(identity); err == nil && ok {
			return s.Load(buildCtx, identity)
		}
		return s.build(buildCtx, identity, fullText)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // build errors are already wrapped
	}
	if shared {
		s.logger.Debug("Index build shared", zap.String("identity", identity))
	}
	return v.(*docindex.Handle), nil
}

func (s *Service) build(ctx context.Context, identity, fullText string) (*docindex.Handle, error) {
	if err := docindex.ValidateIdentity(identity); err != nil {
		return nil, err
	}
	start := time.Now()

	chunks := legaltext.Split(fullText, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s has no text", domain.ErrBuild, identity)
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	emb, err := domain.EmbedAll(ctx, s.embedder, texts)
	if err != nil {
		s.logger.Error("Index build failed",
			zap.String("identity", identity), zap.String("op", "embed"), zap.Error(err))
		return nil, fmt.Errorf("%w: embed %s: %w", domain.ErrBuild, identity, err)
	}

	h, err := docindex.New(identity, s.model, texts, emb.Embeddings, time.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBuild, err)
	}
	if err := s.store.Save(h); err != nil {
		s.logger.Error("Index build failed",
			zap.String("identity", identity), zap.String("op", "save"), zap.Error(err))
		return nil, fmt.Errorf("%w: save %s: %w", domain.ErrBuild, identity, err)
	}

	s.remember(h)
	s.logger.Info("Index built",
		zap.String("identity", identity),
		zap.Int("chunks", len(texts)),
		zap.Int("tokens", emb.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return h, nil
}

// Load returns a built handle and never builds. Absent indexes yield domain.ErrNotFound.
func (s *Service) Load(_ context.Context, identity string) (*docindex.Handle, error) {
	s.mu.Lock()
	h, ok := s.loaded[identity]
	s.mu.Unlock()
	if ok {
		return h, nil
	}

	h, err := s.store.Load(identity)
	if errors.Is(err, domain.ErrIndexNotFound) {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load index %s: %w", identity, err)
	}
	s.remember(h)
	return h, nil
}

// remember caches a loaded handle, evicting an arbitrary entry when full.
func (s *Service) remember(h *docindex.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loaded[h.Identity()]; !ok && len(s.loaded) >= s.cfg.CacheSize {
		for k := range s.loaded {
			delete(s.loaded, k)
			break
		}
	}
	s.loaded[h.Identity()] = h
}

// Search embeds query and returns at most k chunks of h, best first.
func (s *Service) Search(ctx context.Context, h *docindex.Handle, query string, k int) ([]domain.Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	res, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return h.Search(res.Embedding, k), nil
}

// Stats summarizes persisted indexes.
func (s *Service) Stats(maxSamples int) (docindexrepo.Stats, error) {
	st, err := s.store.Stats(maxSamples)
	if err != nil {
		return docindexrepo.Stats{}, fmt.Errorf("index stats: %w", err)
	}
	return st, nil
}

// BuildReport counts bulk build outcomes.
type BuildReport struct {
	Built   int
	Skipped int
	Failed  map[string]error
}

// BuildAll builds missing indexes for ids with at most concurrency builds in flight.
// Individual failures are collected, not returned.
func (s *Service) BuildAll(
	ctx context.Context, ids []string, texts TextSource, concurrency int,
) (BuildReport, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	report := BuildReport{Failed: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // cancellation
			}
			outcome, err := s.buildOne(gctx, id, texts)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed[id] = err
			case outcome:
				report.Built++
			default:
				report.Skipped++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("bulk build: %w", err)
	}
	return report, nil
}

// buildOne reports true when it built a new index.
func (s *Service) buildOne(ctx context.Context, id string, texts TextSource) (bool, error) {
	ok, err := s.Exists(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	text, err := texts.FullText(ctx, id)
	if err != nil {
		return false, fmt.Errorf("text for %s: %w", id, err)
	}
	if _, err := s.EnsureBuilt(ctx, id, text); err != nil {
		return false, err
	}
	return true, nil
}
