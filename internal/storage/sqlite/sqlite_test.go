package sqlitestorage

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/config"
	"github.com/soa-sim/mctrial/internal/database"
	"github.com/soa-sim/mctrial/internal/model"
	"github.com/soa-sim/mctrial/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(config.SQLiteConfig{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trials.db")

	b, err := New(config.SQLiteConfig{Path: path}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Init())

	require.NoError(t, b.BeginBatch("run-a", 1))
	require.NoError(t, b.WriteTrial(&core.Trial{
		RunID: "run-a",
		Index: 1,
		Name:  "cfg_1",
		Local: []core.Entity{core.NeutralTruck{Position: core.Position3D{X: 1, Y: 0.6, Z: 1}}},
	}))
	require.NoError(t, b.EndBatch("run-a", 1))
	assert.Equal(t, path, b.GetExportedFilePath())
	require.NoError(t, b.Close())
	assert.FileExists(t, path)

	db, err := database.OpenSqlite(path)
	require.NoError(t, err)
	defer database.Close(db)

	var count int64
	require.NoError(t, db.Model(&model.Entity{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
