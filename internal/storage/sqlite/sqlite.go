// Package sqlitestorage implements the storage.Backend interface on SQLite.
// It wraps the GORM backend. In memory mode the database is dumped to Path
// via VACUUM INTO at the end of each batch and on Close.
package sqlitestorage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/config"
	"github.com/soa-sim/mctrial/internal/database"
	gormstorage "github.com/soa-sim/mctrial/internal/storage/gorm"

	"gorm.io/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db  *gorm.DB
	cfg config.SQLiteConfig
	log zerolog.Logger
}

// New opens the SQLite database described by cfg.
func New(cfg config.SQLiteConfig, logger zerolog.Logger) (*Backend, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path not set")
	}

	dsn := cfg.Path
	if cfg.InMemory {
		dsn = ""
	} else if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := database.OpenSqlite(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
	}

	log := logger.With().Str("backend", "sqlite").Logger()
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db, Logger: log}),
		db:      db,
		cfg:     cfg,
		log:     log,
	}, nil
}

// EndBatch records the run and dumps an in-memory database to disk.
func (b *Backend) EndBatch(runID string, written int) error {
	if err := b.Backend.EndBatch(runID, written); err != nil {
		return err
	}
	return b.dump()
}

// Close dumps an in-memory database and closes the connection.
func (b *Backend) Close() error {
	err := b.dump()
	if cerr := b.Backend.Close(); err == nil {
		err = cerr
	}
	return err
}

// GetExportedFilePath returns the database file on disk.
func (b *Backend) GetExportedFilePath() string {
	return b.cfg.Path
}

func (b *Backend) dump() error {
	if !b.cfg.InMemory {
		return nil
	}
	if dir := filepath.Dir(b.cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.Path); err != nil {
		b.log.Error().Err(err).Msg("Error dumping to disk")
		return err
	}
	b.log.Debug().Dur("took", time.Since(start)).Str("path", b.cfg.Path).Msg("Dumped to disk")
	return nil
}
