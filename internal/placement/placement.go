// Package placement generates geographically valid positions for a laydown by
// anchor-relative rejection sampling.
package placement

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/soa-sim/mctrial/internal/geo"
	"github.com/soa-sim/mctrial/internal/laydown"
	"github.com/soa-sim/mctrial/internal/logging"
	"github.com/soa-sim/mctrial/internal/sampling"
	"github.com/soa-sim/mctrial/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultMaxAttempts bounds the candidates drawn per unit when none is configured.
const DefaultMaxAttempts = 100000

// ErrUnsatisfiable is matched by every *UnsatisfiableError.
var ErrUnsatisfiable = errors.New("placement unsatisfiable")

// UnsatisfiableError reports a unit for which no valid candidate was found.
type UnsatisfiableError struct {
	Category core.Category
	Unit     int // 0-based index within the category
	Attempts int
}

func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("no valid position for %s unit %d after %d attempts", e.Category, e.Unit, e.Attempts)
}

func (e *UnsatisfiableError) Unwrap() error {
	return ErrUnsatisfiable
}

// IsValid reports whether world point (x, z) lies in a cell of allowed.
func IsValid(t geo.Transform, x, z float64, allowed core.CellSet) bool {
	return allowed.Contains(t.WorldToGrid(x, z))
}

// Engine draws positions for laydown specs. It is not safe for concurrent use;
// the sampler is consumed in a fixed order so runs are reproducible.
type Engine struct {
	sampler     *sampling.Sampler
	transform   geo.Transform
	maxAttempts int
	logger      zerolog.Logger
	trace       zerolog.Logger

	// OTEL metrics
	rejected metric.Int64Counter
	placed   metric.Int64Counter
}

// New creates an Engine. maxAttempts <= 0 selects DefaultMaxAttempts.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(sampler *sampling.Sampler, transform geo.Transform, maxAttempts int, logger zerolog.Logger) (*Engine, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	e := &Engine{
		sampler:     sampler,
		transform:   transform,
		maxAttempts: maxAttempts,
		logger:      logger.With().Str("component", "placement").Logger(),
	}
	e.trace = logging.TraceSampled(e.logger)

	m := meter()

	var err error
	e.rejected, err = m.Int64Counter(
		"placement.candidates.rejected",
		metric.WithDescription("Candidate positions outside the allowed cells"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}

	e.placed, err = m.Int64Counter(
		"placement.units.placed",
		metric.WithDescription("Units assigned a valid position"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating placed counter: %w", err)
	}

	return e, nil
}

// Count draws the number of units for spec, rounding half to even.
func (e *Engine) Count(spec laydown.Spec) int {
	v := e.sampler.TruncatedNormal(spec.CountMean, spec.CountStdDev, spec.CountMin, spec.CountMax)
	return int(math.RoundToEven(v))
}

// Generate draws a count for spec and then one valid position per unit.
// Y of each position is the sampled altitude.
func (e *Engine) Generate(spec laydown.Spec) ([]core.Position3D, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	n := e.Count(spec)
	out := make([]core.Position3D, 0, n)
	catAttr := metric.WithAttributes(attribute.String("category", spec.Category.Key()))

	var rejected int
	for unit := 0; unit < n; unit++ {
		x, z, attempts, ok := e.place(spec)
		rejected += attempts - 1
		if !ok {
			e.rejected.Add(context.Background(), int64(rejected+1), catAttr)
			e.logger.Error().
				Str("category", spec.Category.String()).
				Int("unit", unit).
				Int("attempts", attempts).
				Msg("placement exhausted")
			return nil, &UnsatisfiableError{Category: spec.Category, Unit: unit, Attempts: attempts}
		}

		alt := e.sampler.TruncatedNormal(spec.AltitudeMeanKm, spec.AltitudeStdDevKm, spec.AltitudeMinKm, spec.AltitudeMaxKm)
		out = append(out, core.Position3D{X: x, Y: alt, Z: z})
	}

	if rejected > 0 {
		e.rejected.Add(context.Background(), int64(rejected), catAttr)
	}
	e.placed.Add(context.Background(), int64(len(out)), catAttr)

	e.logger.Debug().
		Str("category", spec.Category.String()).
		Int("count", n).
		Int("rejected", rejected).
		Msg("laydown generated")

	return out, nil
}

// place runs the rejection loop for a single unit. attempts counts every candidate drawn.
func (e *Engine) place(spec laydown.Spec) (x, z float64, attempts int, ok bool) {
	for attempts < e.maxAttempts {
		attempts++
		ax, az := e.transform.GridToWorld(spec.Anchors[e.sampler.Intn(len(spec.Anchors))])
		// offsets are non-negative, so candidates fall in the +X/+Z quadrant of the anchor
		x = ax + e.sampler.TruncatedNormal(0, spec.OffsetStdDevKm, 0, spec.OffsetMaxKm)
		z = az + e.sampler.TruncatedNormal(0, spec.OffsetStdDevKm, 0, spec.OffsetMaxKm)
		if IsValid(e.transform, x, z, spec.Allowed) {
			return x, z, attempts, true
		}
		e.trace.Trace().
			Str("category", spec.Category.String()).
			Float64("x", x).
			Float64("z", z).
			Msg("candidate rejected")
	}
	return 0, 0, attempts, false
}
