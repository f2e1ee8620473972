package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/config"
	dbRedis "github.com/kailas-cloud/lexiscope/internal/db/redis"
	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/metrics"
	"github.com/kailas-cloud/lexiscope/internal/repository/corpus"
	docindexrepo "github.com/kailas-cloud/lexiscope/internal/repository/docindex"
	"github.com/kailas-cloud/lexiscope/internal/repository/embcache"
	metadatarepo "github.com/kailas-cloud/lexiscope/internal/repository/metadata"
	"github.com/kailas-cloud/lexiscope/internal/repository/sqlstore"
	"github.com/kailas-cloud/lexiscope/internal/repository/texts"
	usagerepo "github.com/kailas-cloud/lexiscope/internal/repository/usage"
	openaiTransport "github.com/kailas-cloud/lexiscope/internal/transport/openai"
	"github.com/kailas-cloud/lexiscope/internal/usecase/budget"
	"github.com/kailas-cloud/lexiscope/internal/usecase/catalog"
	"github.com/kailas-cloud/lexiscope/internal/usecase/chat"
	completionuc "github.com/kailas-cloud/lexiscope/internal/usecase/completion"
	docindexuc "github.com/kailas-cloud/lexiscope/internal/usecase/docindex"
	embeddinguc "github.com/kailas-cloud/lexiscope/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/lexiscope/internal/usecase/health"
	"github.com/kailas-cloud/lexiscope/internal/usecase/ingest"
	metadatauc "github.com/kailas-cloud/lexiscope/internal/usecase/metadata"
	"github.com/kailas-cloud/lexiscope/internal/usecase/query"
	"github.com/kailas-cloud/lexiscope/internal/usecase/ratelimit"
	usageuc "github.com/kailas-cloud/lexiscope/internal/usecase/usage"
)

const (
	usageDailyTTL   = 48 * time.Hour
	usageMonthlyTTL = 62 * 24 * time.Hour
)

// app is the composition root shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	redis *dbRedis.Store
	sql   *sqlstore.Store

	texts    *texts.Provider
	indexes  *docindexuc.Service
	gate     *ratelimit.Gateway
	pipeline *metadatauc.Pipeline
	query    *query.Orchestrator
	chat     *chat.Resolver
	catalog  *catalog.Service
	health   *healthuc.Service
	usage    *usageuc.Service

	embedder domain.Embedder
	passages *corpus.Repo
	budgets  map[string]usageuc.BudgetReader
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, budgets: map[string]usageuc.BudgetReader{}}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis store: %w", err)
	}
	a.redis = store
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		a.Close()
		return nil, fmt.Errorf("redis not ready: %w", err)
	}
	logger.Info("Connected to redis", zap.Strings("addrs", cfg.Database.Addrs))

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterCompletionMetrics()

	embedder, embedHealth := a.buildEmbedder(ctx)
	a.embedder = embedder
	completer, completeHealth := a.buildCompleter(ctx)

	a.texts = texts.New(cfg.Corpus.TextDir)

	artifacts, err := docindexrepo.New(cfg.Index.Dir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open index dir: %w", err)
	}
	a.indexes = docindexuc.New(artifacts, embedder, cfg.Embedding.Model, docindexuc.Config{
		ChunkSize:    cfg.Index.ChatChunkSize,
		ChunkOverlap: cfg.Index.ChatChunkOverlap,
		CacheSize:    cfg.Index.CacheSize,
	}, logger)

	a.gate = ratelimit.New(ratelimit.Config{
		Capacity: cfg.Rate.Capacity,
		Window:   cfg.Rate.Window(),
		Spacing:  cfg.Rate.Spacing(),
	}, logger)

	switch cfg.Metadata.Driver {
	case config.DriverRedis:
		a.pipeline = metadatauc.New(metadatarepo.New(store), a.gate, completer, a.extractParams(), logger)
	default:
		sqlStore, err := sqlstore.Open(ctx, sqlstore.Config{
			Driver:       cfg.Metadata.Driver,
			DSN:          cfg.Metadata.DSN,
			MaxOpenConns: cfg.Metadata.MaxOpenConns,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open metadata store: %w", err)
		}
		a.sql = sqlStore
		a.pipeline = metadatauc.New(sqlStore, a.gate, completer, a.extractParams(), logger)
	}
	logger.Info("Metadata store ready", zap.String("driver", cfg.Metadata.Driver))

	a.passages = corpus.New(store, corpus.Config{
		Dimensions:     cfg.Embedding.Dimensions,
		M:              cfg.Index.HNSWM,
		EFConstruction: cfg.Index.HNSWEFConstruct,
	})

	// The SQL store also serves browsing and search analytics. Pass nil
	// interfaces, not typed nil pointers.
	var browser catalog.Browser
	if a.sql != nil {
		browser = a.sql
		a.query = query.New(embedder, a.passages, a.pipeline, a.texts, a.sql, logger)
	} else {
		a.query = query.New(embedder, a.passages, a.pipeline, a.texts, nil, logger)
	}
	a.chat = chat.New(a.indexes, a.pipeline, a.gate, completer, a.texts, chat.Config{
		TopN: cfg.Index.ChatTopN,
		Params: domain.CompletionParams{
			Temperature: cfg.Completion.ChatTemperature,
			Timeout:     cfg.Completion.Timeout(),
		},
	}, logger)
	a.catalog = catalog.New(a.pipeline, a.texts, browser, logger)

	components := healthuc.Components{
		Store:      store,
		Embedding:  embedHealth,
		Completion: completeHealth,
		Dirs: map[string]healthuc.DirChecker{
			"corpus":  a.texts,
			"indexes": artifacts,
		},
	}
	a.health = healthuc.New(components)
	a.usage = usageuc.New(a.budgets)
	return a, nil
}

// ingester writes the corpus passage index; reset drops it first.
func (a *app) ingester(reset bool) *ingest.Service {
	return ingest.New(a.passages, a.embedder, a.texts, ingest.Config{
		ChunkSize:    a.cfg.Index.CorpusChunkSize,
		ChunkOverlap: a.cfg.Index.CorpusChunkOverlap,
		Concurrency:  a.cfg.Index.BuildConcurrency,
		Reset:        reset,
	}, a.logger)
}

// buildEmbedder assembles OpenAI -> Cached -> Instrumented and returns the
// raw client for health checks.
func (a *app) buildEmbedder(ctx context.Context) (domain.Embedder, healthuc.ProviderChecker) {
	cfg := a.cfg.Embedding
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     a.logger,
	})

	var embedder domain.Embedder = base
	if cfg.CacheTTLHours > 0 {
		ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
		embedder = embcache.New(base, a.redis, cfg.Model, ttl, metrics.EmbeddingCacheTotal, a.logger)
	}

	var checker embeddinguc.BudgetChecker
	if t := a.tracker(ctx, metrics.RoleEmbedding, cfg.Provider, cfg.Budget); t != nil {
		checker = t
	}
	embedder = embeddinguc.NewInstrumented(embedder, cfg.Provider, cfg.Model, checker, a.logger)
	a.logger.Info("Embedder created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("dimensions", cfg.Dimensions),
	)
	return embedder, base
}

func (a *app) buildCompleter(ctx context.Context) (domain.Completer, healthuc.ProviderChecker) {
	cfg := a.cfg.Completion
	base := openaiTransport.NewCompleter(&openaiTransport.Config{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		Provider: cfg.Provider,
		Logger:   a.logger,
	})

	var checker completionuc.BudgetChecker
	if t := a.tracker(ctx, metrics.RoleCompletion, cfg.Provider, cfg.Budget); t != nil {
		checker = t
	}
	a.logger.Info("Completer created", zap.String("provider", cfg.Provider), zap.String("model", cfg.Model))
	return completionuc.NewInstrumented(base, cfg.Provider, cfg.Model, checker, a.logger), base
}

// tracker registers the role for usage reports and returns nil when no
// limit is configured.
func (a *app) tracker(ctx context.Context, role, provider string, b config.BudgetConfig) *budget.Tracker {
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		a.budgets[role] = nil
		return nil
	}
	// Counter keys embed the name, so roles on the same provider stay apart.
	t := budget.NewTracker(provider+":"+role, b.DailyTokenLimit, b.MonthlyTokenLimit, budget.ParseAction(b.Action), a.logger)
	t = t.WithStore(ctx, usagerepo.New(a.redis, usageDailyTTL, usageMonthlyTTL))
	a.budgets[role] = t
	return t
}

func (a *app) extractParams() domain.CompletionParams {
	return domain.CompletionParams{
		Temperature: a.cfg.Completion.ExtractTemperature,
		MaxTokens:   a.cfg.Completion.ExtractMaxTokens,
		Timeout:     a.cfg.Completion.Timeout(),
	}
}

// Close releases store connections.
func (a *app) Close() {
	if a.sql != nil {
		if err := a.sql.Close(); err != nil {
			a.logger.Warn("Closing metadata store", zap.Error(err))
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
