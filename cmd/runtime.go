package cmd

import (
	"fmt"

	"invest-tracker/core/config"
	"invest-tracker/core/database"
	"invest-tracker/core/logger"
	"invest-tracker/core/storage"
	"invest-tracker/feature/exchange"
	"invest-tracker/feature/ledger"
	"invest-tracker/feature/tracker"

	"go.uber.org/zap"
)

// runtime bundles the wired collaborators every command needs.
type runtime struct {
	cfg      *config.Config
	log      *zap.Logger
	store    ledger.Store
	api      exchange.API
	engine   *tracker.Engine
	archiver *tracker.Archiver // nil when archiving is disabled
}

// rebuildEngine recreates the engine after flag overrides changed the
// tracker configuration.
func (r *runtime) rebuildEngine() {
	r.engine = tracker.NewEngine(r.cfg.Tracker, r.store, r.api, r.log)
}

// buildRuntime loads configuration and wires logger, database, store,
// exchange client, engine and the optional report archiver.
func buildRuntime() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := ledger.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger table: %w", err)
	}

	store := ledger.NewStore(db)
	client := exchange.NewClient(cfg.Exchange)
	engine := tracker.NewEngine(cfg.Tracker, store, client, l)

	var archiver *tracker.Archiver
	if cfg.Storage.Enabled {
		storageClient, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		archiver = tracker.NewArchiver(storageClient, cfg.Storage.Bucket, l)
	}

	return &runtime{
		cfg:      cfg,
		log:      l,
		store:    store,
		api:      client,
		engine:   engine,
		archiver: archiver,
	}, nil
}
