// pkg/core/environment.go
package core

// GridOrigin is the world coordinate of cell (0, 0).
type GridOrigin struct {
	X float64
	Z float64
}

// GeoOrigin anchors the world frame on the WGS84 ellipsoid.
type GeoOrigin struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Environment describes the terrain and anchor points trials are generated on.
type Environment struct {
	GridOrigin       GridOrigin
	GridToWorldScale float64

	LandCells     []Cell
	WaterCells    []Cell
	MountainCells []Cell

	RedBaseCells  []Cell
	BlueBaseCells []Cell
	NGOSiteCells  []Cell
	VillageCells  []Cell

	GeoOrigin *GeoOrigin
}

// LandSet returns the land cells as a set.
func (e *Environment) LandSet() CellSet {
	return NewCellSet(e.LandCells)
}

// WaterSet returns the water cells as a set.
func (e *Environment) WaterSet() CellSet {
	return NewCellSet(e.WaterCells)
}

// MountainSet returns the mountain cells as a set.
func (e *Environment) MountainSet() CellSet {
	return NewCellSet(e.MountainCells)
}

// AllSet returns the union of land, water and mountain cells.
func (e *Environment) AllSet() CellSet {
	return NewCellSet(e.LandCells, e.WaterCells, e.MountainCells)
}

// NeutralSiteCells returns NGO sites followed by villages.
func (e *Environment) NeutralSiteCells() []Cell {
	out := make([]Cell, 0, len(e.NGOSiteCells)+len(e.VillageCells))
	out = append(out, e.NGOSiteCells...)
	return append(out, e.VillageCells...)
}
