// pkg/core/trial.go
package core

// NetworkConfig holds the per-trial channel names for each side.
type NetworkConfig struct {
	RedRoom  string `json:"redRoom"`
	BlueRoom string `json:"blueRoom"`
}

// SimulationParams are scalar parameters shared by every entity in a trial.
type SimulationParams struct {
	ProbRedDismountWeaponized float64 `json:"probRedDismountWeaponized"`
	ProbRedTruckWeaponized    float64 `json:"probRedTruckWeaponized"`
}

// LoggerConfig controls the simulation-side event logger for a trial.
type LoggerConfig struct {
	OutputFile            string `json:"outputFile"`
	EnableLogToFile       bool   `json:"enableLogToFile"`
	EnableLogEventsToFile bool   `json:"enableLogEventsToFile"`
	EnableLogToConsole    bool   `json:"enableLogToConsole"`
}

// Trial is one complete generated scenario roster.
type Trial struct {
	RunID      string
	Index      int    // 1-based
	Name       string // output name, header plus zero-padded index
	Network    NetworkConfig
	Simulation SimulationParams
	Logger     LoggerConfig
	Local      []Entity
	Remote     []Entity

	// GeoOrigin is copied from the environment when it is georeferenced.
	GeoOrigin *GeoOrigin
}

// CountByCategory tallies local and remote records by category.
func (t *Trial) CountByCategory() map[Category]int {
	counts := make(map[Category]int)
	for _, e := range t.Local {
		counts[e.Category()]++
	}
	for _, e := range t.Remote {
		counts[e.Category()]++
	}
	return counts
}
