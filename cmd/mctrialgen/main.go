package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/config"
	"github.com/soa-sim/mctrial/internal/environment"
	"github.com/soa-sim/mctrial/internal/geo"
	"github.com/soa-sim/mctrial/internal/laydown"
	"github.com/soa-sim/mctrial/internal/logging"
	"github.com/soa-sim/mctrial/internal/placement"
	"github.com/soa-sim/mctrial/internal/remoteid"
	"github.com/soa-sim/mctrial/internal/sampling"
	"github.com/soa-sim/mctrial/internal/storage"
	"github.com/soa-sim/mctrial/internal/trial"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	AppName string = "mctrialgen"
)

var (
	configDir string

	// configErr holds the config load failure until the logger exists
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   AppName,
	Short: "Generate a batch of Monte Carlo trial configurations",
	Long: `mctrialgen samples unit laydowns around the configured anchor cells,
assigns remote IDs and weapon flags, and writes one configuration per trial
to the configured storage backend.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing "+config.FileName)
	rootCmd.Flags().Int("trials", 0, "Number of trials to generate (overrides batch.numTrials)")
	rootCmd.Flags().Int64("seed", 0, "Random seed, 0 for time-based (overrides batch.seed)")
	rootCmd.Flags().String("storage", "", "Storage backend: file, sqlite, postgres or websocket (overrides storage.type)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults, and binds flags over it.
func loadConfig(cmd *cobra.Command, args []string) error {
	configErr = config.Load(configDir)
	if configErr != nil {
		config.SetDefaults()
	}

	bindings := map[string]string{
		"batch.numTrials": "trials",
		"batch.seed":      "seed",
		"storage.type":    "storage",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

func run(ctx context.Context) (err error) {
	sessionStart := time.Now()

	lc := config.GetLoggingConfig()
	logger, logCloser, err := logging.Setup(logging.Options{
		Level:          lc.Level,
		LogsDir:        lc.LogsDir,
		Name:           AppName,
		SessionStart:   sessionStart,
		GraylogEnabled: lc.GraylogEnabled,
		GraylogAddress: lc.GraylogAddress,
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	logger.Info().
		Str("version", CurrentVersion).
		Str("buildDate", BuildDate).
		Str("configDir", configDir).
		Msg("Starting up")
	if configErr != nil {
		logger.Warn().Err(configErr).Msg("Config file not loaded, using defaults")
	}

	defer func() {
		if err != nil {
			logger.Error().Err(err).Msg("Run failed")
		}
	}()

	envPath := environmentPath(config.GetString("environmentFile"))
	env, err := environment.Load(envPath)
	if err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}
	logger.Info().
		Str("path", envPath).
		Int("land", len(env.LandCells)).
		Int("water", len(env.WaterCells)).
		Int("mountain", len(env.MountainCells)).
		Bool("georeferenced", env.GeoOrigin != nil).
		Msg("Environment loaded")

	laydowns, err := laydown.Build(env, config.GetLaydownConfigs())
	if err != nil {
		return err
	}

	batch := config.GetBatchConfig()
	src, seed := sampling.NewSource(batch.Seed)
	logger.Info().Int64("seed", seed).Msg("Random source seeded")
	sampler := sampling.New(src)

	engine, err := placement.New(sampler, geo.NewGridMath(env), config.GetPlacementConfig().MaxAttempts, logger)
	if err != nil {
		return err
	}

	backend, err := openStorage(config.GetStorageConfig(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("Failed to close storage backend")
			if err == nil {
				err = cerr
			}
		}
	}()

	network := config.GetNetworkConfig()
	orch, err := trial.New(trial.Config{
		ConfigFileHeader: batch.ConfigFileHeader,
		LoggerFileHeader: batch.LoggerFileHeader,
		RedRoomHeader:    network.RedRoomHeader,
		BlueRoomHeader:   network.BlueRoomHeader,
		LogEvents:        batch.LogEvents,
		LogToConsole:     batch.LogToConsole,
		GeoOrigin:        env.GeoOrigin,
	}, trial.Deps{
		Laydowns: laydowns,
		Placer:   engine,
		Sampler:  sampler,
		IDs:      remoteid.New(batch.RemoteStartID),
		Writer:   backend,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	trials, err := orch.RunBatch(ctx, batch.NumTrials)
	if exp, ok := backend.(storage.Exportable); ok && len(trials) > 0 {
		logger.Info().Str("path", exp.GetExportedFilePath()).Msg("Output written")
	}
	if err != nil {
		var unsat *placement.UnsatisfiableError
		if errors.As(err, &unsat) {
			logger.Error().
				Str("category", unsat.Category.String()).
				Int("unit", unsat.Unit).
				Int("attempts", unsat.Attempts).
				Msg("Laydown could not be placed; widen the allowed cells or offsets")
		}
		return err
	}
	return nil
}

// openStorage creates and initializes the configured backend.
func openStorage(cfg config.StorageConfig, logger zerolog.Logger) (storage.Backend, error) {
	backend, err := storage.NewBackend(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	logger.Info().Str("type", cfg.Type).Bool("influx", cfg.Influx.Enabled).Msg("Storage backend initialized")
	return backend, nil
}

// environmentPath resolves a relative environment file against the config directory.
func environmentPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(configDir, p)
}
