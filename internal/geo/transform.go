package geo

import (
	"math"

	"github.com/soa-sim/mctrial/pkg/core"
)

// Transform maps between discrete grid cells and continuous world coordinates
// on the X/Z plane. Implementations must be pure.
type Transform interface {
	WorldToGrid(x, z float64) core.Cell
	GridToWorld(c core.Cell) (x, z float64)
}

// GridMath is a uniform grid with cell (0, 0) centred at the origin.
type GridMath struct {
	OriginX float64
	OriginZ float64
	Scale   float64 // world km per cell
}

var _ Transform = GridMath{}

// NewGridMath builds the transform described by an environment.
func NewGridMath(env *core.Environment) GridMath {
	return GridMath{
		OriginX: env.GridOrigin.X,
		OriginZ: env.GridOrigin.Z,
		Scale:   env.GridToWorldScale,
	}
}

// GridToWorld returns the world coordinate of the centre of c.
func (g GridMath) GridToWorld(c core.Cell) (float64, float64) {
	return g.OriginX + float64(c.X)*g.Scale, g.OriginZ + float64(c.Z)*g.Scale
}

// WorldToGrid returns the cell whose centre is nearest to (x, z).
// Points exactly on a cell border round up.
func (g GridMath) WorldToGrid(x, z float64) core.Cell {
	return core.Cell{
		X: int(math.Floor((x-g.OriginX)/g.Scale + 0.5)),
		Z: int(math.Floor((z-g.OriginZ)/g.Scale + 0.5)),
	}
}
