// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/soa-sim/mctrial/pkg/core"
)

// Backend is the interface all trial writers must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// WriteTrial persists one trial. It blocks until the trial is durable
	// (written, committed or acknowledged).
	WriteTrial(t *core.Trial) error
}

// BatchAware is an optional interface for backends that track run boundaries.
type BatchAware interface {
	BeginBatch(runID string, numTrials int) error
	EndBatch(runID string, written int) error
}

// Exportable is an optional interface for backends that produce files.
type Exportable interface {
	GetExportedFilePath() string
}

// Multi fans every call out to its members in order. WriteTrial stops at the
// first failing member; Close and EndBatch visit all members.
type Multi []Backend

// Init initializes each member.
func (m Multi) Init() error {
	for _, b := range m {
		if err := b.Init(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every member and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, b := range m {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteTrial writes t to each member.
func (m Multi) WriteTrial(t *core.Trial) error {
	for _, b := range m {
		if err := b.WriteTrial(t); err != nil {
			return err
		}
	}
	return nil
}

// BeginBatch notifies every batch-aware member.
func (m Multi) BeginBatch(runID string, numTrials int) error {
	for _, b := range m {
		if ba, ok := b.(BatchAware); ok {
			if err := ba.BeginBatch(runID, numTrials); err != nil {
				return err
			}
		}
	}
	return nil
}

// EndBatch notifies every batch-aware member and joins their errors.
func (m Multi) EndBatch(runID string, written int) error {
	var errs []error
	for _, b := range m {
		if ba, ok := b.(BatchAware); ok {
			if err := ba.EndBatch(runID, written); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
