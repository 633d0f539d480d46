package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, name string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", name, sessionStart.Format("20060102_150405")),
	)
}

// ParseLevel converts a config log level to a zerolog level. Unknown values map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Options configures Setup.
type Options struct {
	Level        string
	LogsDir      string
	Name         string
	SessionStart time.Time

	// Console receives coloured output. Nil means os.Stdout.
	Console io.Writer

	GraylogEnabled bool
	GraylogAddress string
}

// closers closes every sink, returning the first error.
type closers []io.Closer

func (c closers) Close() error {
	var errs []error
	for _, cl := range c {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Setup builds the process logger: console, session log file and optionally Graylog.
// The returned closer releases the file and the GELF connection.
func Setup(opts Options) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(opts.LogsDir, 0755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	path := LogFilePath(opts.LogsDir, opts.Name, opts.SessionStart)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}
	sinks := closers{file}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	lvl := ParseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	writers := []io.Writer{
		// console format with colors
		zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
		},
		// console format without colors to file
		zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		},
	}

	if opts.GraylogEnabled {
		gw, err := gelf.NewWriter(opts.GraylogAddress)
		if err != nil {
			sinks.Close()
			return zerolog.Nop(), nil, fmt.Errorf("failed to connect to graylog: %w", err)
		}
		writers = append(writers, gw)
		sinks = append(sinks, gw)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().Timestamp().Logger()

	logger.Info().
		Str("loglevel", logger.GetLevel().String()).
		Str("file", path).
		Bool("graylog", opts.GraylogEnabled).
		Msg("Logging set up")

	return logger, sinks, nil
}

// TraceSampled returns a child logger for hot loops: at most 5 entries per
// 10 seconds, then 1 in 100.
func TraceSampled(l zerolog.Logger) zerolog.Logger {
	return l.With().Bool("sampled", true).Logger().Sample(&zerolog.BurstSampler{
		Burst:       5,
		Period:      10 * time.Second,
		NextSampler: &zerolog.BasicSampler{N: 100},
	})
}
