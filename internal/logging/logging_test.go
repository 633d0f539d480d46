package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		appName string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "mctriallogs",
			appName: "mctrialgen",
			want:    filepath.Join("mctriallogs", "mctrialgen.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./mctriallogs",
			appName: "mctrialgen",
			want:    filepath.Join(".", "mctriallogs", "mctrialgen.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "mctrial"),
			appName: "mctrialgen",
			want:    filepath.Join("/var", "log", "mctrial", "mctrialgen.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.appName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"Warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"verbose": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSetup_WritesConsoleAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var console bytes.Buffer

	logger, closer, err := Setup(Options{
		Level:        "debug",
		LogsDir:      dir,
		Name:         "mctrialgen",
		SessionStart: start,
		Console:      &console,
	})
	require.NoError(t, err)

	logger.Debug().Str("trial", "MCConfig_01").Msg("hello")
	logger.Trace().Msg("filtered")
	require.NoError(t, closer.Close())

	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	assert.Contains(t, console.String(), "hello")

	b, err := os.ReadFile(LogFilePath(dir, "mctrialgen", start))
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello")
	assert.Contains(t, string(b), "trial=MCConfig_01")
	assert.NotContains(t, string(b), "filtered")
	assert.NotContains(t, string(b), "\x1b[", "file output has no colour codes")
}

func TestSetup_BadLogsDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, _, err := Setup(Options{LogsDir: filepath.Join(blocker, "logs"), Name: "x"})
	assert.Error(t, err)
}

func TestTraceSampled(t *testing.T) {
	var buf bytes.Buffer
	l := TraceSampled(zerolog.New(&buf))

	for i := 0; i < 50; i++ {
		l.Info().Int("i", i).Msg("candidate rejected")
	}
	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.GreaterOrEqual(t, lines, 5)
	assert.Less(t, lines, 50)
	assert.Contains(t, buf.String(), `"sampled":true`)
}
