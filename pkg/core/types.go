// pkg/core/types.go
package core

// Position3D represents a world coordinate in kilometres.
// Y is altitude; X and Z span the ground plane.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"` // altitude
	Z float64 `json:"z"`
}

// Cell is a discrete grid cell on the X/Z plane.
type Cell struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// CellSet is a hash set of grid cells.
type CellSet map[Cell]struct{}

// NewCellSet builds a set from any number of cell lists.
func NewCellSet(lists ...[]Cell) CellSet {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	s := make(CellSet, n)
	for _, l := range lists {
		for _, c := range l {
			s[c] = struct{}{}
		}
	}
	return s
}

// Contains reports whether c is in the set.
func (s CellSet) Contains(c Cell) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of cells in the set.
func (s CellSet) Len() int {
	return len(s)
}
