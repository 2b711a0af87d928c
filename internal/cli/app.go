package cli

import (
	"context"
	"errors"
	"fmt"

	"customer_insight_chatbot/internal/config"
	"customer_insight_chatbot/internal/core"
	"customer_insight_chatbot/internal/dataset"
	"customer_insight_chatbot/internal/logger"
	"customer_insight_chatbot/internal/nodes"
	"customer_insight_chatbot/internal/storage"
)

// app is everything a command needs to answer questions
type app struct {
	cfg       *config.Config
	table     *dataset.Table
	sessions  storage.SessionManager
	processor *core.ChainProcessor
}

// newApp loads config, initializes logging, loads the table and compiles
// the turn chain. quietLogs lowers the default level for interactive use.
func newApp(ctx context.Context, opts *options, quietLogs bool) (*app, error) {
	cfg, err := config.LoadConfig(opts.resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.dataPath != "" {
		cfg.Data.Path = opts.dataPath
	}
	if opts.syntheticFallback {
		cfg.Data.FallbackSynthetic = true
	}
	switch {
	case opts.logLevel != "":
		cfg.Log.Level = opts.logLevel
	case quietLogs:
		cfg.Log.Level = "warn"
	}

	if err := logger.InitLogger(cfg.Log); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	table, err := loadTable(cfg.Data)
	if err != nil {
		return nil, err
	}

	sessions, err := newSessionManager(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}

	responder := nodes.NewResponder(nodes.Config{
		TopCategories: cfg.Responder.TopCategories,
		FemaleValues:  cfg.Responder.FemaleValues,
		MaleValues:    cfg.Responder.MaleValues,
	})
	processor, err := core.NewProcessor(ctx, core.Config{MaxHistory: cfg.Session.MaxHistory},
		sessions, nodes.NewResponseNode(responder, table))
	if err != nil {
		_ = sessions.Close()
		return nil, fmt.Errorf("create processor: %w", err)
	}

	return &app{cfg: cfg, table: table, sessions: sessions, processor: processor}, nil
}

func loadTable(cfg config.DataConfig) (*dataset.Table, error) {
	table, err := dataset.Load(cfg.Path)
	if err == nil {
		logger.Info().
			Str("path", cfg.Path).
			Int("rows", table.Len()).
			Ints("clusters", table.Clusters()).
			Msg("Customer table loaded")
		return table, nil
	}
	if !cfg.FallbackSynthetic || !errors.Is(err, dataset.ErrDataLoad) {
		return nil, err
	}

	logger.Warn().Err(err).Msg("Customer table unavailable, using synthetic demo data")
	return SyntheticTable(), nil
}

func newSessionManager(ctx context.Context, cfg config.SessionConfig) (storage.SessionManager, error) {
	switch cfg.Backend {
	case "redis":
		sessions, err := storage.NewRedisSessionManager(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("connect session store: %w", err)
		}
		logger.Info().Str("backend", "redis").Dur("ttl", cfg.TTL).Msg("Session store ready")
		return sessions, nil
	default:
		logger.Debug().Str("backend", "memory").Dur("ttl", cfg.TTL).Msg("Session store ready")
		return storage.NewMemorySessionManager(cfg.TTL), nil
	}
}

func (a *app) Close() error {
	return a.sessions.Close()
}
