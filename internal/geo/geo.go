package geo

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/soa-sim/mctrial/pkg/core"
	"github.com/wroge/wgs84"
)

// GEO POINTS
// World coordinates are kilometres east (X) and north (Z) of the environment origin.
// The origin is projected to EPSG:3857, offsets are applied in true metres scaled by the
// Mercator factor at the origin latitude, and the result is projected back to EPSG:4326.
// Good enough for theatre-sized maps; error grows with distance from the origin.

// ErrInvalidOrigin is returned when the geographic origin is outside WGS84 bounds.
var ErrInvalidOrigin = errors.New("invalid geographic origin")

// ErrInvalidPosition is returned when a position does not project to finite coordinates.
var ErrInvalidPosition = errors.New("invalid position")

// mercatorLatLimit is the latitude beyond which EPSG:3857 is undefined.
const mercatorLatLimit = 85.05112878

// Georeferencer places world positions on the globe.
type Georeferencer struct {
	originX float64 // EPSG:3857 metres
	originY float64
	k       float64 // Mercator scale factor at the origin

	toMercator func(a, b, c float64) (float64, float64, float64)
	toLonLat   func(a, b, c float64) (float64, float64, float64)
}

// NewGeoreferencer anchors world (0, 0) at origin.
func NewGeoreferencer(origin core.GeoOrigin) (*Georeferencer, error) {
	if math.IsNaN(origin.Longitude) || math.IsNaN(origin.Latitude) ||
		origin.Longitude < -180 || origin.Longitude > 180 ||
		math.Abs(origin.Latitude) > mercatorLatLimit {
		return nil, ErrInvalidOrigin
	}

	epsg := wgs84.EPSG()
	g := &Georeferencer{
		toMercator: epsg.Transform(4326, 3857),
		toLonLat:   epsg.Transform(3857, 4326),
		k:          1 / math.Cos(origin.Latitude*math.Pi/180),
	}
	g.originX, g.originY, _ = g.toMercator(origin.Longitude, origin.Latitude, 0)
	return g, nil
}

// LonLat returns the WGS84 longitude and latitude of a world position.
func (g *Georeferencer) LonLat(pos core.Position3D) (lon, lat float64) {
	x, y := g.Mercator(pos)
	lon, lat, _ = g.toLonLat(x, y, 0)
	return lon, lat
}

// Mercator returns the EPSG:3857 coordinates of a world position.
func (g *Georeferencer) Mercator(pos core.Position3D) (x, y float64) {
	return g.originX + pos.X*1000*g.k, g.originY + pos.Z*1000*g.k
}

// Point returns the position as a WGS84 XYZ point, altitude in metres.
// Positions that do not project to finite coordinates yield an empty point.
func (g *Georeferencer) Point(pos core.Position3D) (geom.Point, error) {
	lon, lat := g.LonLat(pos)
	pt, err := geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: lon, Y: lat},
			Z:    pos.Y * 1000,
			Type: geom.DimXYZ,
		},
	)
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXYZ), fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	return pt, nil
}
