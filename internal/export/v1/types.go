// Package v1 contains the v1 trial document format shared by the file and
// websocket writers.
package v1

// FormatVersion is stamped on every document.
const FormatVersion = 1

// Document is the root JSON structure for one trial
type Document struct {
	FormatVersion   int        `json:"formatVersion"`
	RunID           string     `json:"runId"`
	Trial           int        `json:"trial"`
	Name            string     `json:"name"`
	Network         Network    `json:"network"`
	Simulation      Simulation `json:"simulation"`
	Logger          Logger     `json:"logger"`
	GeoOrigin       *GeoOrigin `json:"geoOrigin,omitempty"`
	LocalPlatforms  []Platform `json:"localPlatforms"`
	RemotePlatforms []Platform `json:"remotePlatforms"`
}

// Network holds the channel names for each side
type Network struct {
	RedRoom  string `json:"redRoom"`
	BlueRoom string `json:"blueRoom"`
}

// Simulation holds trial-wide scalar parameters
type Simulation struct {
	ProbRedDismountWeaponized float64 `json:"probRedDismountWeaponized"`
	ProbRedTruckWeaponized    float64 `json:"probRedTruckWeaponized"`
}

// Logger holds the simulation-side logger settings
type Logger struct {
	OutputFile            string `json:"outputFile"`
	EnableLogToFile       bool   `json:"enableLogToFile"`
	EnableLogEventsToFile bool   `json:"enableLogEventsToFile"`
	EnableLogToConsole    bool   `json:"enableLogToConsole"`
}

// GeoOrigin is the WGS84 position of world (0, 0)
type GeoOrigin struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Platform is one entity record. Pointer fields are omitted for categories
// that do not carry them.
type Platform struct {
	Type      string   `json:"type"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Z         float64  `json:"z"`
	ID        *int     `json:"id,omitempty"`
	HasWeapon *bool    `json:"hasWeapon,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
}
