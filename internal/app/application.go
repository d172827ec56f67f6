package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raysh454/georisk/internal/logging"
	"github.com/raysh454/georisk/internal/registry"

	_ "modernc.org/sqlite"
)

// Application is the runtime state container: config, logger, the SQLite
// registry and the orchestrator built on top of it.
type Application struct {
	Config *Config
	Logger logging.Logger
	Orch   *Orchestrator

	registry *registry.Registry
}

// OpenApplication opens (creating if needed) the database under
// cfg.StorageRoot and wires the orchestrator to it.
func OpenApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	path, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure storage root: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		logger.Warn("sqlite pragmas failed", logging.Field{Key: "error", Value: err.Error()})
	}

	reg, err := registry.NewRegistry(db, logger.With(logging.Field{Key: "component", Value: "registry"}))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	orch, err := NewOrchestrator(cfg, reg, logger.With(logging.Field{Key: "component", Value: "orchestrator"}))
	if err != nil {
		_ = reg.Close()
		return nil, err
	}

	logger.Info("application opened", logging.Field{Key: "db", Value: path})
	return &Application{Config: cfg, Logger: logger, Orch: orch, registry: reg}, nil
}

// Shutdown cancels running jobs and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	a.Orch.Shutdown(ctx)
	return a.registry.Close()
}
