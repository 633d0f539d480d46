// Package file implements the storage.Backend interface by writing one JSON
// document per trial to a directory.
package file

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/config"
	v1 "github.com/soa-sim/mctrial/internal/export/v1"
	"github.com/soa-sim/mctrial/pkg/core"
)

// Backend writes trials as JSON files.
type Backend struct {
	cfg config.FileConfig
	log zerolog.Logger

	mu             sync.Mutex
	lastExportPath string
	bytesWritten   uint64
}

// New creates a new file backend.
func New(cfg config.FileConfig, logger zerolog.Logger) *Backend {
	return &Backend{
		cfg: cfg,
		log: logger.With().Str("backend", "file").Logger(),
	}
}

// Init creates the output directory.
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return fmt.Errorf("output directory not set")
	}
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Close logs the total bytes written.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Info().
		Str("dir", b.cfg.OutputDir).
		Str("size", humanize.Bytes(b.bytesWritten)).
		Msg("Trial files closed")
	return nil
}

// WriteTrial exports t to <outputDir>/<name>.json, or .json.gz when compressed.
func (b *Backend) WriteTrial(t *core.Trial) error {
	doc, err := v1.Build(t)
	if err != nil {
		return fmt.Errorf("failed to build trial document: %w", err)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, fileName(t.Name, b.cfg.CompressOutput))
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, doc)
	} else {
		err = writeJSON(outputPath, doc)
	}
	if err != nil {
		return err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", outputPath, err)
	}

	b.mu.Lock()
	b.lastExportPath = outputPath
	b.bytesWritten += uint64(info.Size())
	b.mu.Unlock()

	b.log.Debug().
		Str("path", outputPath).
		Str("size", humanize.Bytes(uint64(info.Size()))).
		Msg("Trial written")
	return nil
}

// GetExportedFilePath returns the path of the last trial written.
func (b *Backend) GetExportedFilePath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastExportPath
}

func fileName(name string, compress bool) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	if compress {
		return name + ".json.gz"
	}
	return name + ".json"
}

func writeJSON(path string, data v1.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data v1.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		_ = gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}
