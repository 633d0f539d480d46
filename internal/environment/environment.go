// Package environment loads the terrain description trials are generated on.
package environment

import (
	"errors"
	"fmt"
	"os"

	"github.com/soa-sim/mctrial/pkg/core"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidScale is returned when the grid-to-world scale is not positive.
	ErrInvalidScale = errors.New("gridToWorldScale must be positive")
	// ErrInvalidCell is returned when a cell entry is not an [x, z] pair.
	ErrInvalidCell = errors.New("cell must be an [x, z] pair")
	// ErrOverlappingTerrain is returned when a cell is listed under more than one terrain type.
	ErrOverlappingTerrain = errors.New("cell listed under more than one terrain type")
)

type point2 struct {
	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`
}

type geoOrigin struct {
	Longitude float64 `yaml:"longitude"`
	Latitude  float64 `yaml:"latitude"`
}

// file mirrors the on-disk document. JSON is valid YAML so both are accepted.
type file struct {
	GridOrigin       point2     `yaml:"gridOrigin"`
	GridToWorldScale float64    `yaml:"gridToWorldScale"`
	LandCells        [][]int    `yaml:"landCells"`
	WaterCells       [][]int    `yaml:"waterCells"`
	MountainCells    [][]int    `yaml:"mountainCells"`
	RedBaseCells     [][]int    `yaml:"redBaseCells"`
	BlueBaseCells    [][]int    `yaml:"blueBaseCells"`
	NGOSiteCells     [][]int    `yaml:"ngoSiteCells"`
	VillageCells     [][]int    `yaml:"villageCells"`
	GeoOrigin        *geoOrigin `yaml:"geoOrigin"`
}

// Load reads and validates the environment file at path.
func Load(path string) (*core.Environment, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment file: %w", err)
	}
	env, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment file %s: %w", path, err)
	}
	return env, nil
}

// Parse decodes an environment document.
func Parse(b []byte) (*core.Environment, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if !(f.GridToWorldScale > 0) {
		return nil, ErrInvalidScale
	}

	env := &core.Environment{
		GridOrigin:       core.GridOrigin{X: f.GridOrigin.X, Z: f.GridOrigin.Z},
		GridToWorldScale: f.GridToWorldScale,
	}
	if f.GeoOrigin != nil {
		env.GeoOrigin = &core.GeoOrigin{Longitude: f.GeoOrigin.Longitude, Latitude: f.GeoOrigin.Latitude}
	}

	lists := []cellList{
		{"landCells", f.LandCells, &env.LandCells},
		{"waterCells", f.WaterCells, &env.WaterCells},
		{"mountainCells", f.MountainCells, &env.MountainCells},
		{"redBaseCells", f.RedBaseCells, &env.RedBaseCells},
		{"blueBaseCells", f.BlueBaseCells, &env.BlueBaseCells},
		{"ngoSiteCells", f.NGOSiteCells, &env.NGOSiteCells},
		{"villageCells", f.VillageCells, &env.VillageCells},
	}
	for _, l := range lists {
		cells, err := toCells(l.in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.name, err)
		}
		*l.out = cells
	}
	if err := checkTerrainDisjoint(lists[:3]); err != nil {
		return nil, err
	}
	return env, nil
}

type cellList struct {
	name string
	in   [][]int
	out  *[]core.Cell
}

// checkTerrainDisjoint rejects a cell that appears under two terrain types.
// Repeats within one list are allowed.
func checkTerrainDisjoint(terrains []cellList) error {
	seen := make(map[core.Cell]string)
	for _, t := range terrains {
		for _, c := range *t.out {
			if prev, ok := seen[c]; ok && prev != t.name {
				return fmt.Errorf("%w: [%d, %d] in %s and %s", ErrOverlappingTerrain, c.X, c.Z, prev, t.name)
			}
			seen[c] = t.name
		}
	}
	return nil
}

func toCells(in [][]int) ([]core.Cell, error) {
	out := make([]core.Cell, 0, len(in))
	for i, pair := range in {
		if len(pair) != 2 {
			return nil, fmt.Errorf("entry %d: %w", i, ErrInvalidCell)
		}
		out = append(out, core.Cell{X: pair[0], Z: pair[1]})
	}
	return out, nil
}
