// Package postgres implements the storage.Backend interface on PostgreSQL.
// The connection is opened lazily in Init.
package postgres

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/config"
	"github.com/soa-sim/mctrial/internal/database"
	gormstorage "github.com/soa-sim/mctrial/internal/storage/gorm"
	"github.com/soa-sim/mctrial/pkg/core"
)

// Backend implements storage.Backend using GORM/PostgreSQL.
type Backend struct {
	cfg  config.PostgresConfig
	log  zerolog.Logger
	gorm *gormstorage.Backend
}

// New creates a new PostgreSQL backend. No connection is made until Init.
func New(cfg config.PostgresConfig, logger zerolog.Logger) *Backend {
	return &Backend{
		cfg: cfg,
		log: logger.With().Str("backend", "postgres").Logger(),
	}
}

// Init connects, verifies the connection and migrates the schema.
func (b *Backend) Init() error {
	db, err := database.OpenPostgres(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	b.log.Info().
		Str("host", b.cfg.Host).
		Str("port", b.cfg.Port).
		Str("database", b.cfg.Database).
		Msg("Connected to postgres")

	b.gorm = gormstorage.New(gormstorage.Dependencies{DB: db, Logger: b.log})
	if err := b.gorm.Init(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	return nil
}

// Close releases the connection.
func (b *Backend) Close() error {
	if b.gorm == nil {
		return nil
	}
	return b.gorm.Close()
}

// BeginBatch records a new run.
func (b *Backend) BeginBatch(runID string, numTrials int) error {
	if b.gorm == nil {
		return gormstorage.ErrNoDB
	}
	return b.gorm.BeginBatch(runID, numTrials)
}

// EndBatch finishes the run record.
func (b *Backend) EndBatch(runID string, written int) error {
	if b.gorm == nil {
		return gormstorage.ErrNoDB
	}
	return b.gorm.EndBatch(runID, written)
}

// WriteTrial inserts the trial and its entities.
func (b *Backend) WriteTrial(t *core.Trial) error {
	if b.gorm == nil {
		return gormstorage.ErrNoDB
	}
	return b.gorm.WriteTrial(t)
}
