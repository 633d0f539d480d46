// Package trial assembles complete trial rosters and hands them to a writer.
package trial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/laydown"
	"github.com/soa-sim/mctrial/internal/remoteid"
	"github.com/soa-sim/mctrial/internal/sampling"
	"github.com/soa-sim/mctrial/pkg/core"
	"go.opentelemetry.io/otel/metric"
)

// Placer generates the positions for one laydown. *placement.Engine implements it.
type Placer interface {
	Generate(spec laydown.Spec) ([]core.Position3D, error)
}

// Writer persists a finished trial. Every storage backend implements it.
type Writer interface {
	WriteTrial(t *core.Trial) error
}

// BatchWriter is implemented by writers that bracket a run.
type BatchWriter interface {
	Writer
	BeginBatch(runID string, numTrials int) error
	EndBatch(runID string, written int) error
}

// Config holds the naming and logger settings stamped on every trial.
type Config struct {
	RunID string // generated when empty

	ConfigFileHeader string
	LoggerFileHeader string
	RedRoomHeader    string
	BlueRoomHeader   string

	LogEvents    bool
	LogToConsole bool

	GeoOrigin *core.GeoOrigin
}

// Deps are the collaborators an Orchestrator drives.
type Deps struct {
	Laydowns laydown.Set
	Placer   Placer
	Sampler  *sampling.Sampler
	IDs      *remoteid.Allocator
	Writer   Writer
	Logger   zerolog.Logger
}

// Orchestrator runs a batch of trials. It owns the remote ID allocator for the run.
type Orchestrator struct {
	cfg  Config
	deps Deps

	// OTEL metrics
	generated metric.Int64Counter
}

// New validates deps and creates an Orchestrator.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Placer == nil:
		return nil, errors.New("placer is required")
	case deps.Sampler == nil:
		return nil, errors.New("sampler is required")
	case deps.IDs == nil:
		return nil, errors.New("remote id allocator is required")
	case deps.Writer == nil:
		return nil, errors.New("writer is required")
	}
	for _, c := range categories() {
		if _, ok := deps.Laydowns[c]; !ok {
			return nil, fmt.Errorf("missing laydown for %s", c)
		}
	}

	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	deps.Logger = deps.Logger.With().Str("run", cfg.RunID).Logger()

	o := &Orchestrator{cfg: cfg, deps: deps}

	var err error
	o.generated, err = meter().Int64Counter(
		"trial.generated",
		metric.WithDescription("Trials generated and written"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating generated counter: %w", err)
	}

	return o, nil
}

// RunID returns the identifier stamped on every trial of this orchestrator.
func (o *Orchestrator) RunID() string {
	return o.cfg.RunID
}

// RunBatch generates and writes trials 1..numTrials in order. It stops at the first
// placement, writer or context error; trials written before that stay written and
// are returned alongside the error.
func (o *Orchestrator) RunBatch(ctx context.Context, numTrials int) ([]*core.Trial, error) {
	log := o.deps.Logger
	if numTrials <= 0 {
		log.Warn().Int("numTrials", numTrials).Msg("nothing to generate")
		return nil, nil
	}

	bw, bracketed := o.deps.Writer.(BatchWriter)
	if bracketed {
		if err := bw.BeginBatch(o.cfg.RunID, numTrials); err != nil {
			return nil, fmt.Errorf("begin batch: %w", err)
		}
	}

	start := time.Now()
	trials := make([]*core.Trial, 0, numTrials)
	runErr := func() error {
		for i := 1; i <= numTrials; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			t, err := o.Generate(i, numTrials)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			if err := o.deps.Writer.WriteTrial(t); err != nil {
				return fmt.Errorf("writing trial %s: %w", t.Name, err)
			}
			trials = append(trials, t)
			o.generated.Add(ctx, 1)

			log.Info().
				Str("trial", t.Name).
				Int("local", len(t.Local)).
				Int("remote", len(t.Remote)).
				Msg("trial written")
		}
		return nil
	}()

	if bracketed {
		if err := bw.EndBatch(o.cfg.RunID, len(trials)); err != nil && runErr == nil {
			runErr = fmt.Errorf("end batch: %w", err)
		}
	}

	if runErr != nil {
		log.Error().Err(runErr).Int("written", len(trials)).Msg("batch aborted")
		return trials, runErr
	}

	log.Info().
		Int("trials", len(trials)).
		Int("nextRemoteId", o.deps.IDs.Peek()).
		Dur("elapsed", time.Since(start)).
		Msg("batch complete")
	return trials, nil
}

// Generate builds trial index of numTrials without writing it. Randomness and remote
// IDs are consumed, so calls must be made in index order for reproducible runs.
func (o *Orchestrator) Generate(index, numTrials int) (*core.Trial, error) {
	suffix := Suffix(index, numTrials)
	ls := o.deps.Laydowns

	t := &core.Trial{
		RunID: o.cfg.RunID,
		Index: index,
		Name:  o.cfg.ConfigFileHeader + suffix,
		Network: core.NetworkConfig{
			RedRoom:  o.cfg.RedRoomHeader + suffix,
			BlueRoom: o.cfg.BlueRoomHeader + suffix,
		},
		Simulation: core.SimulationParams{
			ProbRedDismountWeaponized: ls[core.CategoryRedDismount].ProbWeaponized,
			ProbRedTruckWeaponized:    ls[core.CategoryRedTruck].ProbWeaponized,
		},
		Logger: core.LoggerConfig{
			OutputFile:            o.cfg.LoggerFileHeader + suffix,
			EnableLogToFile:       true,
			EnableLogEventsToFile: o.cfg.LogEvents,
			EnableLogToConsole:    o.cfg.LogToConsole,
		},
		GeoOrigin: o.cfg.GeoOrigin,
	}

	for _, c := range core.LocalCategories {
		spec := ls[c]
		positions, err := o.deps.Placer.Generate(spec)
		if err != nil {
			return nil, err
		}
		for _, p := range positions {
			armed := false
			if c.Weaponizable() {
				armed = o.deps.Sampler.Bernoulli(spec.ProbWeaponized)
			}
			e, err := core.NewLocal(c, p, armed)
			if err != nil {
				return nil, err
			}
			t.Local = append(t.Local, e)
		}
	}

	for _, c := range core.RemoteCategories {
		positions, err := o.deps.Placer.Generate(ls[c])
		if err != nil {
			return nil, err
		}
		for _, p := range positions {
			e, err := core.NewRemote(c, p, o.deps.IDs.Next())
			if err != nil {
				return nil, err
			}
			t.Remote = append(t.Remote, e)
		}
	}

	return t, nil
}

func categories() []core.Category {
	return append(append([]core.Category{}, core.LocalCategories...), core.RemoteCategories...)
}
