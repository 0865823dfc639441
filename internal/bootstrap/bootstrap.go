// Package bootstrap assembles the application dependencies from config:
// engine worker, move cache, archive repository, and the session manager.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aryanrajsinha8010/chesslearning/internal/archive"
	"github.com/aryanrajsinha8010/chesslearning/internal/config"
	"github.com/aryanrajsinha8010/chesslearning/internal/engine"
	"github.com/aryanrajsinha8010/chesslearning/internal/movecache"
	"github.com/aryanrajsinha8010/chesslearning/internal/rules"
	"github.com/aryanrajsinha8010/chesslearning/internal/session"
)

type Deps struct {
	Manager *session.Manager
	Worker  *engine.Worker
	Cache   movecache.Store
	Archive archive.Repository

	redisClient *redis.Client
}

// New builds the dependency graph. An engine that fails to start does not
// fail the process: the manager runs without it and every game falls back
// to random moves, which keeps the API usable on hosts without an engine
// binary.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.StrengthConfigPath != "" {
		if err := engine.LoadStrengthOverrides(cfg.StrengthConfigPath); err != nil {
			return nil, fmt.Errorf("strength overrides: %w", err)
		}
		logger.Info("strength overrides loaded", zap.String("path", cfg.StrengthConfigPath))
	}

	deps := &Deps{}

	worker, err := engine.NewWorker(engine.WorkerConfig{
		BinaryPath: cfg.StockfishPath,
		Threads:    cfg.EngineThreads,
		HashMB:     cfg.EngineHashMB,
		SkillLevel: engine.StrengthFor(cfg.DefaultDifficulty).SkillLevel,
	}, rules.Verifier{}, logger)
	if err != nil {
		logger.Warn("engine unavailable, running with random fallback", zap.Error(err))
	} else if err := worker.Start(ctx); err != nil {
		logger.Warn("engine start failed, running with random fallback", zap.Error(err))
	} else {
		deps.Worker = worker
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		opts, err := movecache.ParseRedisURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		deps.redisClient = redis.NewClient(opts)
		ttl := time.Duration(cfg.MoveCacheTTLSec) * time.Second
		deps.Cache = movecache.NewRedisStore(deps.redisClient, ttl, logger)
		logger.Info("move cache backed by redis", zap.String("addr", opts.Addr))
	} else {
		deps.Cache = movecache.NewMemoryStore(cfg.MoveCacheSize)
	}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		repo, err := archive.NewPostgresRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init archive: %w", err)
		}
		deps.Archive = repo
	} else {
		deps.Archive = archive.NewMemoryRepository()
	}

	mgrCfg := session.Config{
		SessionTTL:        time.Duration(cfg.SessionTTLSec) * time.Second,
		DefaultDifficulty: cfg.DefaultDifficulty,
	}
	var client session.EngineClient
	if deps.Worker != nil {
		client = deps.Worker
	}
	deps.Manager = session.NewManager(client, deps.Cache, deps.Archive, mgrCfg, logger)
	return deps, nil
}

// Close shuts down everything New started, in reverse order.
func (d *Deps) Close() {
	if d == nil {
		return
	}
	if d.Worker != nil {
		d.Worker.Shutdown()
	}
	if d.Archive != nil {
		_ = d.Archive.Close()
	}
	if d.redisClient != nil {
		_ = d.redisClient.Close()
	}
}
