// Package convert maps core trials onto GORM rows
package convert

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/soa-sim/mctrial/internal/geo"
	"github.com/soa-sim/mctrial/internal/model"
	"github.com/soa-sim/mctrial/pkg/core"
	"gorm.io/datatypes"
)

// TrialToModel converts a core.Trial and its entities to GORM models.
// Entities are georeferenced when the trial carries a geographic origin.
func TrialToModel(t *core.Trial) (model.Trial, error) {
	params, err := json.Marshal(t.Simulation)
	if err != nil {
		return model.Trial{}, fmt.Errorf("marshal simulation params: %w", err)
	}

	var g *geo.Georeferencer
	if t.GeoOrigin != nil {
		if g, err = geo.NewGeoreferencer(*t.GeoOrigin); err != nil {
			return model.Trial{}, err
		}
	}

	mt := model.Trial{
		RunID:                 t.RunID,
		Index:                 t.Index,
		Name:                  t.Name,
		RedRoom:               t.Network.RedRoom,
		BlueRoom:              t.Network.BlueRoom,
		LoggerOutputFile:      t.Logger.OutputFile,
		EnableLogToFile:       t.Logger.EnableLogToFile,
		EnableLogEventsToFile: t.Logger.EnableLogEventsToFile,
		EnableLogToConsole:    t.Logger.EnableLogToConsole,
		Parameters:            datatypes.JSON(params),
		Entities:              make([]model.Entity, 0, len(t.Local)+len(t.Remote)),
	}

	for i, e := range t.Local {
		me, err := EntityToModel(e, model.SideLocal, i, g)
		if err != nil {
			return model.Trial{}, err
		}
		mt.Entities = append(mt.Entities, me)
	}
	for i, e := range t.Remote {
		me, err := EntityToModel(e, model.SideRemote, i, g)
		if err != nil {
			return model.Trial{}, err
		}
		mt.Entities = append(mt.Entities, me)
	}
	return mt, nil
}

// EntityToModel converts one entity record. g may be nil.
func EntityToModel(e core.Entity, side string, ordinal int, g *geo.Georeferencer) (model.Entity, error) {
	pos := e.Pos()
	me := model.Entity{
		Side:     side,
		Ordinal:  ordinal,
		Category: e.Category().Key(),
		X:        pos.X,
		Altitude: pos.Y,
		Z:        pos.Z,
	}
	if id, ok := core.RemoteID(e); ok {
		me.RemoteID = sql.NullInt32{Int32: int32(id), Valid: true}
	}
	if armed, ok := core.Armed(e); ok {
		me.HasWeapon = sql.NullBool{Bool: armed, Valid: true}
	}
	if g != nil {
		pt, err := g.Point(pos)
		if err != nil {
			return model.Entity{}, fmt.Errorf("%s %s #%d: %w", side, e.Category(), ordinal, err)
		}
		if c, ok := pt.Coordinates(); ok {
			me.Longitude = sql.NullFloat64{Float64: c.X, Valid: true}
			me.Latitude = sql.NullFloat64{Float64: c.Y, Valid: true}
		}
		me.Location = pt.AsText()
	}
	return me, nil
}
