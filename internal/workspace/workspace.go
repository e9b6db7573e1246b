// Package workspace wires the service graph for one manuscript
// workspace. Services are explicitly constructed and injected here; their
// lifecycle is tied to the workspace, not to package initialization.
package workspace

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/cache"
	"github.com/avetisyan-lab/citewell/internal/embedding"
	"github.com/avetisyan-lab/citewell/internal/literature"
	"github.com/avetisyan-lab/citewell/internal/mapper"
	"github.com/avetisyan-lab/citewell/internal/matching"
	"github.com/avetisyan-lab/citewell/internal/model"
	"github.com/avetisyan-lab/citewell/internal/orphan"
	"github.com/avetisyan-lab/citewell/internal/session"
	"github.com/avetisyan-lab/citewell/internal/store"
	"github.com/avetisyan-lab/citewell/internal/verify"
	"github.com/avetisyan-lab/citewell/internal/worker"
)

// Workspace owns every service of one open manuscript workspace.
type Workspace struct {
	Config   *model.Config
	Logger   *zap.Logger
	Claims   *store.ClaimStore
	Mapper   *mapper.Mapper
	Matching *matching.Service
	Index    *literature.Index
	Sources  *literature.SourceMapper
	Loop     *verify.Loop
	Sessions *session.Manager
	Orphans  *orphan.Validator
	Embedder embedding.Embedder
	Judge    verify.Judge
	Limiter  *worker.Limiter
}

// Open builds the workspace service graph. With offline set, the
// deterministic mock embedder and judge replace the OpenAI-backed ones.
func Open(cfg *model.Config, offline bool, logger *zap.Logger) (*Workspace, error) {
	limiter := worker.NewLimiter(2, 4)
	limiter.SetRate(worker.CapabilityEmbedding, cfg.Embedding.RatePerSec, cfg.Embedding.Burst)
	limiter.SetRate(worker.CapabilityJudge, cfg.Judge.RatePerSec, cfg.Judge.Burst)

	embedder, err := buildEmbedder(cfg, offline, limiter, logger)
	if err != nil {
		return nil, err
	}
	judge, err := buildJudge(cfg, offline, limiter, logger)
	if err != nil {
		return nil, err
	}

	claims, err := store.NewClaimStore(cfg.ClaimsPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("open claim store: %w", err)
	}

	kv := store.NewKV(cfg.MappingsPath())
	sentenceMapper, err := mapper.New(kv, logger)
	if err != nil {
		return nil, fmt.Errorf("open mapping store: %w", err)
	}

	index, err := literature.OpenIndex(cfg.IndexPath())
	if err != nil {
		return nil, err
	}

	sources := literature.NewSourceMapper(cfg.SourceMapPath())
	if err := sources.LoadSourceMappings(); err != nil {
		return nil, err
	}

	var valCache cache.Cache
	if cfg.Cache.Enabled {
		valCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.CacheDir(), cfg.Cache.DiskTTL)
	}

	loop := verify.NewLoop(index, judge, claims, embedder, valCache,
		cfg.Loop, cfg.Search, cfg.Concurrency.VerifyWorkers, logger)

	ws := &Workspace{
		Config:   cfg,
		Logger:   logger,
		Claims:   claims,
		Mapper:   sentenceMapper,
		Matching: matching.NewService(claims, embedder, cfg.Concurrency.BatchWorkers, logger),
		Index:    index,
		Sources:  sources,
		Loop:     loop,
		Sessions: session.NewManager(loop, logger),
		Orphans:  orphan.NewValidator(claims, sources, index, embedder, logger),
		Embedder: embedder,
		Judge:    judge,
		Limiter:  limiter,
	}
	return ws, nil
}

// Ingestor returns a corpus ingestor writing into this workspace.
func (w *Workspace) Ingestor() *literature.Ingestor {
	return literature.NewIngestor(w.Index, w.Sources, w.Config.ExtractedDir(),
		w.Config.Search, w.Config.Concurrency.BatchWorkers, w.Logger)
}

// DeleteClaim removes a claim and cascades into mapper cleanup.
func (w *Workspace) DeleteClaim(claimID string) error {
	if err := w.Claims.DeleteClaim(claimID); err != nil {
		return err
	}
	w.Mapper.DeleteClaim(claimID)
	return nil
}

// Close releases workspace resources.
func (w *Workspace) Close() error {
	w.Sessions.CancelActive()
	return w.Index.Close()
}

func buildEmbedder(cfg *model.Config, offline bool, limiter *worker.Limiter, logger *zap.Logger) (embedding.Embedder, error) {
	if offline || cfg.Embedding.Provider == "mock" {
		return embedding.NewCachedEmbedder(embedding.NewMockEmbedder(256), cfg.Embedding.CacheSize), nil
	}

	inner, err := embedding.NewOpenAIEmbedder(cfg.Embedding, limiter, logger)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	return embedding.NewCachedEmbedder(inner, cfg.Embedding.CacheSize), nil
}

func buildJudge(cfg *model.Config, offline bool, limiter *worker.Limiter, logger *zap.Logger) (verify.Judge, error) {
	if offline || cfg.Judge.Provider == "mock" {
		return verify.NewMockJudge(), nil
	}

	judge, err := verify.NewOpenAIJudge(cfg.Judge, limiter, logger)
	if err != nil {
		return nil, fmt.Errorf("evidence judge: %w", err)
	}
	return judge, nil
}
