// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/config"
	"github.com/soa-sim/mctrial/internal/influx"
	"github.com/soa-sim/mctrial/internal/storage/file"
	"github.com/soa-sim/mctrial/internal/storage/postgres"
	sqlitestorage "github.com/soa-sim/mctrial/internal/storage/sqlite"
	"github.com/soa-sim/mctrial/internal/storage/websocket"
)

// NewBackend creates a storage backend based on configuration. When influx is
// enabled the metrics sink is composed after the primary backend.
func NewBackend(cfg config.StorageConfig, logger zerolog.Logger) (Backend, error) {
	var primary Backend
	switch cfg.Type {
	case "file":
		primary = file.New(cfg.File, logger)
	case "sqlite":
		b, err := sqlitestorage.New(cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		primary = b
	case "postgres":
		primary = postgres.New(cfg.Postgres, logger)
	case "websocket":
		primary = websocket.New(cfg.WebSocket, logger)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}

	if !cfg.Influx.Enabled {
		return primary, nil
	}
	return Multi{primary, influx.NewManager(cfg.Influx, logger)}, nil
}
