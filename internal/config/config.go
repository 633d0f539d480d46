package config

import (
	"fmt"
	"time"

	"github.com/soa-sim/mctrial/pkg/core"
	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "mctrial.cfg.json"

// BatchConfig holds run-level generation settings
type BatchConfig struct {
	NumTrials        int    `json:"numTrials" mapstructure:"numTrials"`
	RemoteStartID    int    `json:"remoteStartId" mapstructure:"remoteStartId"`
	Seed             int64  `json:"seed" mapstructure:"seed"`
	ConfigFileHeader string `json:"configFileHeader" mapstructure:"configFileHeader"`
	LoggerFileHeader string `json:"loggerFileHeader" mapstructure:"loggerFileHeader"`
	LogEvents        bool   `json:"logEvents" mapstructure:"logEvents"`
	LogToConsole     bool   `json:"logToConsole" mapstructure:"logToConsole"`
}

// NetworkConfig holds the channel name prefixes for each side
type NetworkConfig struct {
	RedRoomHeader  string `json:"redRoomHeader" mapstructure:"redRoomHeader"`
	BlueRoomHeader string `json:"blueRoomHeader" mapstructure:"blueRoomHeader"`
}

// PlacementConfig bounds the rejection search
type PlacementConfig struct {
	MaxAttempts int `json:"maxAttempts" mapstructure:"maxAttempts"`
}

// LaydownConfig is the configured placement statistics for one category.
// Anchors and Allowed are named cell lists resolved against the environment.
type LaydownConfig struct {
	CountMean        float64  `json:"countMean" mapstructure:"countMean"`
	CountStdDev      float64  `json:"countStdDev" mapstructure:"countStdDev"`
	CountMin         float64  `json:"countMin" mapstructure:"countMin"`
	CountMax         float64  `json:"countMax" mapstructure:"countMax"`
	OffsetStdDevKm   float64  `json:"offsetStdDevKm" mapstructure:"offsetStdDevKm"`
	OffsetMaxKm      float64  `json:"offsetMaxKm" mapstructure:"offsetMaxKm"`
	AltitudeMeanKm   float64  `json:"altitudeMeanKm" mapstructure:"altitudeMeanKm"`
	AltitudeStdDevKm float64  `json:"altitudeStdDevKm" mapstructure:"altitudeStdDevKm"`
	AltitudeMinKm    float64  `json:"altitudeMinKm" mapstructure:"altitudeMinKm"`
	AltitudeMaxKm    float64  `json:"altitudeMaxKm" mapstructure:"altitudeMaxKm"`
	Anchors          []string `json:"anchors" mapstructure:"anchors"`
	Allowed          []string `json:"allowed" mapstructure:"allowed"`
	ProbWeaponized   float64  `json:"probWeaponized" mapstructure:"probWeaponized"`
}

// FileConfig holds JSON file storage backend settings
type FileConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
	// InMemory builds the database in memory and dumps it to Path at the end of the batch
	InMemory bool `json:"inMemory" mapstructure:"inMemory"`
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslmode" mapstructure:"sslmode"`
}

// WebSocketConfig holds streaming backend settings
type WebSocketConfig struct {
	URL         string        `json:"url" mapstructure:"url"`
	Secret      string        `json:"secret" mapstructure:"secret"`
	AckTimeout  time.Duration `json:"ackTimeout" mapstructure:"ackTimeout"`
	DialTimeout time.Duration `json:"dialTimeout" mapstructure:"dialTimeout"`
}

// InfluxConfig holds InfluxDB metrics sink settings
type InfluxConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Host      string `json:"host" mapstructure:"host"`
	Port      string `json:"port" mapstructure:"port"`
	Protocol  string `json:"protocol" mapstructure:"protocol"`
	Token     string `json:"token" mapstructure:"token"`
	Org       string `json:"org" mapstructure:"org"`
	Bucket    string `json:"bucket" mapstructure:"bucket"`
	BackupDir string `json:"backupDir" mapstructure:"backupDir"`
}

// StorageConfig holds storage backend configuration
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	File      FileConfig      `json:"file" mapstructure:"file"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	Postgres  PostgresConfig  `json:"postgres" mapstructure:"postgres"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
	Influx    InfluxConfig    `json:"influx" mapstructure:"influx"`
}

// LoggingConfig holds log sink settings
type LoggingConfig struct {
	Level          string
	LogsDir        string
	GraylogEnabled bool
	GraylogAddress string
}

// laydownDefaults mirrors the stock scenario tuning.
var laydownDefaults = map[core.Category]LaydownConfig{
	core.CategoryRedDismount: {
		CountMean: 3, CountStdDev: 2, CountMin: 1, CountMax: 10,
		OffsetStdDevKm: 1, OffsetMaxKm: 2,
		AltitudeMeanKm: 0.6, AltitudeStdDevKm: 0, AltitudeMinKm: 0.6, AltitudeMaxKm: 0.6,
		Anchors: []string{"redBase"}, Allowed: []string{"land"},
		ProbWeaponized: 0.5,
	},
	core.CategoryRedTruck: {
		CountMean: 3, CountStdDev: 2, CountMin: 1, CountMax: 10,
		OffsetStdDevKm: 1, OffsetMaxKm: 2,
		AltitudeMeanKm: 0.6, AltitudeStdDevKm: 0, AltitudeMinKm: 0.6, AltitudeMaxKm: 0.6,
		Anchors: []string{"redBase"}, Allowed: []string{"land"},
		ProbWeaponized: 0.5,
	},
	core.CategoryNeutralDismount: {
		CountMean: 2, CountStdDev: 2, CountMin: 0, CountMax: 4,
		OffsetStdDevKm: 2, OffsetMaxKm: 5,
		AltitudeMeanKm: 0.6, AltitudeStdDevKm: 0, AltitudeMinKm: 0.6, AltitudeMaxKm: 0.6,
		Anchors: []string{"ngo", "village"}, Allowed: []string{"land"},
	},
	core.CategoryNeutralTruck: {
		CountMean: 2, CountStdDev: 2, CountMin: 0, CountMax: 4,
		OffsetStdDevKm: 2, OffsetMaxKm: 5,
		AltitudeMeanKm: 0.6, AltitudeStdDevKm: 0, AltitudeMinKm: 0.6, AltitudeMaxKm: 0.6,
		Anchors: []string{"ngo", "village"}, Allowed: []string{"land"},
	},
	core.CategoryBluePolice: {
		CountMean: 1, CountStdDev: 0.5, CountMin: 1, CountMax: 1,
		OffsetStdDevKm: 2, OffsetMaxKm: 5,
		AltitudeMeanKm: 0.6, AltitudeStdDevKm: 0, AltitudeMinKm: 0.6, AltitudeMaxKm: 0.6,
		Anchors: []string{"blueBase"}, Allowed: []string{"land"},
	},
	core.CategoryHeavyUAV: {
		CountMean: 3.5, CountStdDev: 0.5, CountMin: 2, CountMax: 5,
		OffsetStdDevKm: 2, OffsetMaxKm: 5,
		AltitudeMeanKm: 0.6, AltitudeStdDevKm: 0, AltitudeMinKm: 0.6, AltitudeMaxKm: 0.6,
		Anchors: []string{"blueBase"}, Allowed: []string{"all"},
	},
	core.CategorySmallUAV: {
		CountMean: 3.5, CountStdDev: 0.5, CountMin: 2, CountMax: 5,
		OffsetStdDevKm: 2, OffsetMaxKm: 5,
		AltitudeMeanKm: 0.6, AltitudeStdDevKm: 0, AltitudeMinKm: 0.6, AltitudeMaxKm: 0.6,
		Anchors: []string{"blueBase"}, Allowed: []string{"all"},
	},
	core.CategoryBalloon: {
		CountMean: 1, CountStdDev: 0, CountMin: 1, CountMax: 1,
		OffsetStdDevKm: 2, OffsetMaxKm: 5,
		AltitudeMeanKm: 0.6, AltitudeStdDevKm: 0, AltitudeMinKm: 0.6, AltitudeMaxKm: 0.6,
		Anchors: []string{"blueBase"}, Allowed: []string{"all"},
	},
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers every default value. Load calls it; it is exported
// so callers can fall back to defaults when no config file exists.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./mctriallogs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("environmentFile", "EnvConfig.yaml")

	viper.SetDefault("batch.numTrials", 10)
	viper.SetDefault("batch.remoteStartId", 200)
	viper.SetDefault("batch.seed", 0)
	viper.SetDefault("batch.configFileHeader", "MCConfig_")
	viper.SetDefault("batch.loggerFileHeader", "MCOutput_")
	viper.SetDefault("batch.logEvents", true)
	viper.SetDefault("batch.logToConsole", true)

	viper.SetDefault("network.redRoomHeader", "soa-mc-red_")
	viper.SetDefault("network.blueRoomHeader", "soa-mc-blue_")

	viper.SetDefault("placement.maxAttempts", 100000)

	for c, l := range laydownDefaults {
		p := "laydowns." + c.Key() + "."
		viper.SetDefault(p+"countMean", l.CountMean)
		viper.SetDefault(p+"countStdDev", l.CountStdDev)
		viper.SetDefault(p+"countMin", l.CountMin)
		viper.SetDefault(p+"countMax", l.CountMax)
		viper.SetDefault(p+"offsetStdDevKm", l.OffsetStdDevKm)
		viper.SetDefault(p+"offsetMaxKm", l.OffsetMaxKm)
		viper.SetDefault(p+"altitudeMeanKm", l.AltitudeMeanKm)
		viper.SetDefault(p+"altitudeStdDevKm", l.AltitudeStdDevKm)
		viper.SetDefault(p+"altitudeMinKm", l.AltitudeMinKm)
		viper.SetDefault(p+"altitudeMaxKm", l.AltitudeMaxKm)
		viper.SetDefault(p+"anchors", l.Anchors)
		viper.SetDefault(p+"allowed", l.Allowed)
		viper.SetDefault(p+"probWeaponized", l.ProbWeaponized)
	}

	viper.SetDefault("storage.type", "file")
	viper.SetDefault("storage.file.outputDir", "./trials")
	viper.SetDefault("storage.file.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "./trials.db")
	viper.SetDefault("storage.sqlite.inMemory", false)
	viper.SetDefault("storage.websocket.url", "ws://localhost:5000/api/v1/trials/ws")
	viper.SetDefault("storage.websocket.secret", "")
	viper.SetDefault("storage.websocket.ackTimeout", "30s")
	viper.SetDefault("storage.websocket.dialTimeout", "10s")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "mctrial")
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "soa-mc")
	viper.SetDefault("influx.bucket", "mc_trials")
	viper.SetDefault("influx.backupDir", "./mctriallogs")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetBatchConfig returns run-level generation settings.
func GetBatchConfig() BatchConfig {
	return BatchConfig{
		NumTrials:        viper.GetInt("batch.numTrials"),
		RemoteStartID:    viper.GetInt("batch.remoteStartId"),
		Seed:             viper.GetInt64("batch.seed"),
		ConfigFileHeader: viper.GetString("batch.configFileHeader"),
		LoggerFileHeader: viper.GetString("batch.loggerFileHeader"),
		LogEvents:        viper.GetBool("batch.logEvents"),
		LogToConsole:     viper.GetBool("batch.logToConsole"),
	}
}

// GetNetworkConfig returns the channel name prefixes.
func GetNetworkConfig() NetworkConfig {
	return NetworkConfig{
		RedRoomHeader:  viper.GetString("network.redRoomHeader"),
		BlueRoomHeader: viper.GetString("network.blueRoomHeader"),
	}
}

// GetPlacementConfig returns the rejection search bounds.
func GetPlacementConfig() PlacementConfig {
	return PlacementConfig{
		MaxAttempts: viper.GetInt("placement.maxAttempts"),
	}
}

// GetLaydownConfigs returns the placement statistics for every category.
func GetLaydownConfigs() map[core.Category]LaydownConfig {
	out := make(map[core.Category]LaydownConfig, len(laydownDefaults))
	for _, c := range append(append([]core.Category{}, core.LocalCategories...), core.RemoteCategories...) {
		p := "laydowns." + c.Key() + "."
		out[c] = LaydownConfig{
			CountMean:        viper.GetFloat64(p + "countMean"),
			CountStdDev:      viper.GetFloat64(p + "countStdDev"),
			CountMin:         viper.GetFloat64(p + "countMin"),
			CountMax:         viper.GetFloat64(p + "countMax"),
			OffsetStdDevKm:   viper.GetFloat64(p + "offsetStdDevKm"),
			OffsetMaxKm:      viper.GetFloat64(p + "offsetMaxKm"),
			AltitudeMeanKm:   viper.GetFloat64(p + "altitudeMeanKm"),
			AltitudeStdDevKm: viper.GetFloat64(p + "altitudeStdDevKm"),
			AltitudeMinKm:    viper.GetFloat64(p + "altitudeMinKm"),
			AltitudeMaxKm:    viper.GetFloat64(p + "altitudeMaxKm"),
			Anchors:          viper.GetStringSlice(p + "anchors"),
			Allowed:          viper.GetStringSlice(p + "allowed"),
			ProbWeaponized:   viper.GetFloat64(p + "probWeaponized"),
		}
	}
	return out
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		File: FileConfig{
			OutputDir:      viper.GetString("storage.file.outputDir"),
			CompressOutput: viper.GetBool("storage.file.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:     viper.GetString("storage.sqlite.path"),
			InMemory: viper.GetBool("storage.sqlite.inMemory"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
			SSLMode:  viper.GetString("db.sslmode"),
		},
		WebSocket: WebSocketConfig{
			URL:         viper.GetString("storage.websocket.url"),
			Secret:      viper.GetString("storage.websocket.secret"),
			AckTimeout:  viper.GetDuration("storage.websocket.ackTimeout"),
			DialTimeout: viper.GetDuration("storage.websocket.dialTimeout"),
		},
		Influx: InfluxConfig{
			Enabled:   viper.GetBool("influx.enabled"),
			Host:      viper.GetString("influx.host"),
			Port:      viper.GetString("influx.port"),
			Protocol:  viper.GetString("influx.protocol"),
			Token:     viper.GetString("influx.token"),
			Org:       viper.GetString("influx.org"),
			Bucket:    viper.GetString("influx.bucket"),
			BackupDir: viper.GetString("influx.backupDir"),
		},
	}
}

// GetLoggingConfig returns log sink settings.
func GetLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:          viper.GetString("logLevel"),
		LogsDir:        viper.GetString("logsDir"),
		GraylogEnabled: viper.GetBool("graylog.enabled"),
		GraylogAddress: viper.GetString("graylog.address"),
	}
}
