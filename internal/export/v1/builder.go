package v1

import (
	"fmt"

	"github.com/soa-sim/mctrial/internal/geo"
	"github.com/soa-sim/mctrial/pkg/core"
)

// Build creates a Document from a trial. Platforms are georeferenced when the
// trial carries a geographic origin.
func Build(t *core.Trial) (Document, error) {
	doc := Document{
		FormatVersion: FormatVersion,
		RunID:         t.RunID,
		Trial:         t.Index,
		Name:          t.Name,
		Network: Network{
			RedRoom:  t.Network.RedRoom,
			BlueRoom: t.Network.BlueRoom,
		},
		Simulation: Simulation{
			ProbRedDismountWeaponized: t.Simulation.ProbRedDismountWeaponized,
			ProbRedTruckWeaponized:    t.Simulation.ProbRedTruckWeaponized,
		},
		Logger: Logger{
			OutputFile:            t.Logger.OutputFile,
			EnableLogToFile:       t.Logger.EnableLogToFile,
			EnableLogEventsToFile: t.Logger.EnableLogEventsToFile,
			EnableLogToConsole:    t.Logger.EnableLogToConsole,
		},
		LocalPlatforms:  make([]Platform, 0, len(t.Local)),
		RemotePlatforms: make([]Platform, 0, len(t.Remote)),
	}

	var g *geo.Georeferencer
	if t.GeoOrigin != nil {
		doc.GeoOrigin = &GeoOrigin{Longitude: t.GeoOrigin.Longitude, Latitude: t.GeoOrigin.Latitude}
		var err error
		if g, err = geo.NewGeoreferencer(*t.GeoOrigin); err != nil {
			return Document{}, fmt.Errorf("trial %s: %w", t.Name, err)
		}
	}

	for _, e := range t.Local {
		doc.LocalPlatforms = append(doc.LocalPlatforms, platform(e, g))
	}
	for _, e := range t.Remote {
		doc.RemotePlatforms = append(doc.RemotePlatforms, platform(e, g))
	}
	return doc, nil
}

func platform(e core.Entity, g *geo.Georeferencer) Platform {
	pos := e.Pos()
	p := Platform{
		Type: e.Category().String(),
		X:    pos.X,
		Y:    pos.Y,
		Z:    pos.Z,
	}
	if id, ok := core.RemoteID(e); ok {
		p.ID = &id
	}
	if armed, ok := core.Armed(e); ok {
		p.HasWeapon = &armed
	}
	if g != nil {
		lon, lat := g.LonLat(pos)
		p.Longitude, p.Latitude = &lon, &lat
	}
	return p
}
