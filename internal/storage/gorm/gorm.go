// Package gormstorage implements the storage.Backend interface on any GORM dialect.
// Each trial and its entities are written in one transaction.
package gormstorage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/database"
	"github.com/soa-sim/mctrial/internal/model"
	"github.com/soa-sim/mctrial/internal/model/convert"
	"github.com/soa-sim/mctrial/pkg/core"

	"gorm.io/gorm"
)

// ErrNoDB is returned when the backend is used without a connection.
var ErrNoDB = errors.New("gorm backend has no database connection")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps    Dependencies
	written int
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDB
	}
	b.deps.Logger.Info().Str("dialect", b.deps.DB.Name()).Msg("Migrating schema")
	if err := database.Migrate(b.deps.DB); err != nil {
		return err
	}
	b.deps.Logger.Info().Msg("Database setup complete")
	return nil
}

// Close releases the connection pool.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	return database.Close(b.deps.DB)
}

// BeginBatch records a new run.
func (b *Backend) BeginBatch(runID string, numTrials int) error {
	if b.deps.DB == nil {
		return ErrNoDB
	}
	run := model.Run{
		RunID:     runID,
		NumTrials: numTrials,
		StartedAt: time.Now().UTC(),
	}
	if err := b.deps.DB.Create(&run).Error; err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}
	b.written = 0
	return nil
}

// EndBatch stores the number of trials written and the finish time.
func (b *Backend) EndBatch(runID string, written int) error {
	if b.deps.DB == nil {
		return ErrNoDB
	}
	err := b.deps.DB.Model(&model.Run{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"written":     written,
			"finished_at": sql.NullTime{Time: time.Now().UTC(), Valid: true},
		}).Error
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	b.deps.Logger.Info().Str("runId", runID).Int("written", written).Msg("Run recorded")
	return nil
}

// WriteTrial inserts the trial row and its entities.
func (b *Backend) WriteTrial(t *core.Trial) error {
	if b.deps.DB == nil {
		return ErrNoDB
	}
	mt, err := convert.TrialToModel(t)
	if err != nil {
		return err
	}
	entities := mt.Entities
	mt.Entities = nil

	err = b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&mt).Error; err != nil {
			return fmt.Errorf("failed to insert trial %s: %w", t.Name, err)
		}
		if len(entities) == 0 {
			return nil
		}
		for i := range entities {
			entities[i].TrialID = mt.ID
		}
		if err := tx.CreateInBatches(&entities, 500).Error; err != nil {
			return fmt.Errorf("failed to insert entities for %s: %w", t.Name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.written++
	b.deps.Logger.Debug().
		Str("trial", t.Name).
		Uint("id", mt.ID).
		Int("entities", len(entities)).
		Msg("Trial inserted")
	return nil
}

// Written returns how many trials were inserted since the last BeginBatch.
func (b *Backend) Written() int {
	return b.written
}
