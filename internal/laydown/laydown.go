// Package laydown turns configured placement statistics into resolved per-category
// specifications against a loaded environment.
package laydown

import (
	"errors"
	"fmt"
	"math"

	"github.com/soa-sim/mctrial/internal/config"
	"github.com/soa-sim/mctrial/pkg/core"
)

var (
	// ErrInvalidSpec is wrapped by every validation failure.
	ErrInvalidSpec = errors.New("invalid laydown")
	// ErrUnknownCellSet is returned for an anchor or allowed name the environment does not define.
	ErrUnknownCellSet = errors.New("unknown cell set")
)

// MaxCount caps the number of units a single category may place in one trial.
const MaxCount = 100000

// Spec is the resolved placement statistics for one category.
type Spec struct {
	Category core.Category

	CountMean   float64
	CountStdDev float64
	CountMin    float64
	CountMax    float64

	OffsetStdDevKm float64
	OffsetMaxKm    float64

	AltitudeMeanKm   float64
	AltitudeStdDevKm float64
	AltitudeMinKm    float64
	AltitudeMaxKm    float64

	// Anchors are candidate origin cells, picked uniformly. Order matters for reproducibility.
	Anchors []core.Cell
	// Allowed is the set every accepted position must fall in.
	Allowed core.CellSet

	// ProbWeaponized is only consulted for weaponizable categories.
	ProbWeaponized float64
}

// Validate checks numeric ranges and that anchors exist.
func (s Spec) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w %s: %s", ErrInvalidSpec, s.Category, fmt.Sprintf(format, args...))
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"countMean", s.CountMean}, {"countStdDev", s.CountStdDev},
		{"countMin", s.CountMin}, {"countMax", s.CountMax},
		{"offsetStdDevKm", s.OffsetStdDevKm}, {"offsetMaxKm", s.OffsetMaxKm},
		{"altitudeMeanKm", s.AltitudeMeanKm}, {"altitudeStdDevKm", s.AltitudeStdDevKm},
		{"altitudeMinKm", s.AltitudeMinKm}, {"altitudeMaxKm", s.AltitudeMaxKm},
		{"probWeaponized", s.ProbWeaponized},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fail("%s is not finite", f.name)
		}
	}
	switch {
	case s.CountMin < 0:
		return fail("countMin %v is negative", s.CountMin)
	case s.CountMin != math.Trunc(s.CountMin) || s.CountMax != math.Trunc(s.CountMax):
		return fail("count bounds [%v, %v] must be whole numbers", s.CountMin, s.CountMax)
	case s.CountMax > MaxCount:
		return fail("countMax %v exceeds %d", s.CountMax, MaxCount)
	case s.CountMin > s.CountMax:
		return fail("countMin %v exceeds countMax %v", s.CountMin, s.CountMax)
	case s.AltitudeMinKm > s.AltitudeMaxKm:
		return fail("altitudeMinKm %v exceeds altitudeMaxKm %v", s.AltitudeMinKm, s.AltitudeMaxKm)
	case s.CountStdDev < 0 || s.OffsetStdDevKm < 0 || s.AltitudeStdDevKm < 0:
		return fail("standard deviations must be non-negative")
	case s.OffsetMaxKm < 0:
		return fail("offsetMaxKm %v is negative", s.OffsetMaxKm)
	case s.ProbWeaponized < 0 || s.ProbWeaponized > 1:
		return fail("probWeaponized %v outside [0, 1]", s.ProbWeaponized)
	case len(s.Anchors) == 0:
		return fail("no anchor cells")
	}
	return nil
}

// Set holds one resolved spec per category.
type Set map[core.Category]Spec

// Build resolves every category in cfgs against env and validates the result.
// All eight categories must be present.
func Build(env *core.Environment, cfgs map[core.Category]config.LaydownConfig) (Set, error) {
	set := make(Set, len(cfgs))
	for _, c := range allCategories() {
		cfg, ok := cfgs[c]
		if !ok {
			return nil, fmt.Errorf("%w %s: missing configuration", ErrInvalidSpec, c)
		}
		spec, err := FromConfig(env, c, cfg)
		if err != nil {
			return nil, err
		}
		set[c] = spec
	}
	return set, nil
}

// FromConfig resolves one category's configuration.
func FromConfig(env *core.Environment, c core.Category, cfg config.LaydownConfig) (Spec, error) {
	anchors, err := AnchorCells(env, cfg.Anchors)
	if err != nil {
		return Spec{}, fmt.Errorf("%s anchors: %w", c, err)
	}
	allowed, err := AllowedCells(env, cfg.Allowed)
	if err != nil {
		return Spec{}, fmt.Errorf("%s allowed: %w", c, err)
	}
	spec := Spec{
		Category:         c,
		CountMean:        cfg.CountMean,
		CountStdDev:      cfg.CountStdDev,
		CountMin:         cfg.CountMin,
		CountMax:         cfg.CountMax,
		OffsetStdDevKm:   cfg.OffsetStdDevKm,
		OffsetMaxKm:      cfg.OffsetMaxKm,
		AltitudeMeanKm:   cfg.AltitudeMeanKm,
		AltitudeStdDevKm: cfg.AltitudeStdDevKm,
		AltitudeMinKm:    cfg.AltitudeMinKm,
		AltitudeMaxKm:    cfg.AltitudeMaxKm,
		Anchors:          anchors,
		Allowed:          allowed,
		ProbWeaponized:   cfg.ProbWeaponized,
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// AnchorCells concatenates the named anchor lists in order.
// Valid names: redBase, blueBase, ngo, village, neutral (ngo then village).
func AnchorCells(env *core.Environment, names []string) ([]core.Cell, error) {
	var out []core.Cell
	for _, n := range names {
		switch n {
		case "redBase":
			out = append(out, env.RedBaseCells...)
		case "blueBase":
			out = append(out, env.BlueBaseCells...)
		case "ngo":
			out = append(out, env.NGOSiteCells...)
		case "village":
			out = append(out, env.VillageCells...)
		case "neutral":
			out = append(out, env.NeutralSiteCells()...)
		default:
			return nil, fmt.Errorf("%w %q", ErrUnknownCellSet, n)
		}
	}
	return out, nil
}

// AllowedCells unions the named terrain sets.
// Valid names: land, water, mountain, all.
func AllowedCells(env *core.Environment, names []string) (core.CellSet, error) {
	var lists [][]core.Cell
	for _, n := range names {
		switch n {
		case "land":
			lists = append(lists, env.LandCells)
		case "water":
			lists = append(lists, env.WaterCells)
		case "mountain":
			lists = append(lists, env.MountainCells)
		case "all":
			lists = append(lists, env.LandCells, env.WaterCells, env.MountainCells)
		default:
			return nil, fmt.Errorf("%w %q", ErrUnknownCellSet, n)
		}
	}
	return core.NewCellSet(lists...), nil
}

func allCategories() []core.Category {
	return append(append([]core.Category{}, core.LocalCategories...), core.RemoteCategories...)
}
