package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Run{},
	&Trial{},
	&Entity{},
}

// Entity sides
const (
	SideLocal  = "local"
	SideRemote = "remote"
)

// Run is one batch invocation
type Run struct {
	gorm.Model
	RunID      string       `json:"runId" gorm:"size:36;uniqueIndex"`
	NumTrials  int          `json:"numTrials"`
	Written    int          `json:"written"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt sql.NullTime `json:"finishedAt"`
}

func (*Run) TableName() string {
	return "runs"
}

// Trial is one generated scenario configuration
type Trial struct {
	gorm.Model
	RunID    string `json:"runId" gorm:"size:36;index:idx_trial_run_index,unique"`
	Index    int    `json:"index" gorm:"column:trial_index;index:idx_trial_run_index,unique"`
	Name     string `json:"name" gorm:"size:127"`
	RedRoom  string `json:"redRoom" gorm:"size:127"`
	BlueRoom string `json:"blueRoom" gorm:"size:127"`

	LoggerOutputFile      string `json:"loggerOutputFile" gorm:"size:127"`
	EnableLogToFile       bool   `json:"enableLogToFile"`
	EnableLogEventsToFile bool   `json:"enableLogEventsToFile"`
	EnableLogToConsole    bool   `json:"enableLogToConsole"`

	// Parameters holds the simulation scalars as JSON
	Parameters datatypes.JSON `json:"parameters"`

	Entities []Entity `json:"entities" gorm:"foreignKey:TrialID"`
}

func (*Trial) TableName() string {
	return "trials"
}

// Entity is one generated platform within a trial
type Entity struct {
	ID       uint   `json:"id" gorm:"primarykey;autoIncrement"`
	TrialID  uint   `json:"trialId" gorm:"index"`
	Side     string `json:"side" gorm:"size:8"`
	Ordinal  int    `json:"ordinal"` // position within its side, generation order
	Category string `json:"category" gorm:"size:32;index"`

	RemoteID  sql.NullInt32 `json:"remoteId"`
	HasWeapon sql.NullBool  `json:"hasWeapon"`

	X        float64 `json:"x"`
	Altitude float64 `json:"altitude"`
	Z        float64 `json:"z"`

	Longitude sql.NullFloat64 `json:"longitude"`
	Latitude  sql.NullFloat64 `json:"latitude"`
	// Location is the WGS84 point as WKT, empty when the environment is not georeferenced
	Location string `json:"location" gorm:"size:127"`
}

func (*Entity) TableName() string {
	return "entities"
}
