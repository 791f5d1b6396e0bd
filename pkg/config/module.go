package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type SimulatorSettings struct {
	TargetFPS     int
	RegionName    string
	FlushInterval int // seconds between persistence flushes
}

type TerrainSettings struct {
	Snapshot    string // path to a saved terrain; empty means flat
	Width       int
	Height      int
	CellSize    float64
	WaterHeight *float64
}

type PersistSettings struct {
	Enabled bool
	Path    string // sqlite database file
}

type RedisSettings struct {
	Enabled  bool
	Address  string
	Password string
	Channel  string
}

type IngressSettings struct {
	Web struct {
		Port int
	}
	// Messages per second allowed from one client before we start dropping.
	RateLimit float64
}

type Config struct {
	Simulator SimulatorSettings
	Terrain   TerrainSettings
	Persist   PersistSettings
	Redis     RedisSettings
	Ingress   IngressSettings
}

func Default() *Config {
	config := &Config{}
	config.Simulator.TargetFPS = 10
	config.Simulator.RegionName = "region"
	config.Simulator.FlushInterval = 30
	config.Terrain.Width = 256
	config.Terrain.Height = 256
	config.Terrain.CellSize = 1.0
	config.Persist.Path = "simian.db"
	config.Redis.Address = "localhost:6379"
	config.Redis.Channel = "simian.events"
	config.Ingress.Web.Port = 1234
	config.Ingress.RateLimit = 30
	return config
}

// GetSimianConfig reads configuration from the SIMIAN_CONFIG environment
// variable as JSON, layered over defaults. An unset variable just yields
// the defaults.
func GetSimianConfig() (*Config, error) {
	config := Default()

	configJson, ok := os.LookupEnv("SIMIAN_CONFIG")
	if !ok {
		return config, nil
	}

	if err := json.Unmarshal([]byte(configJson), config); err != nil {
		return nil, fmt.Errorf("parsing SIMIAN_CONFIG: %w", err)
	}

	return config, nil
}

// FromFile reads configuration from a JSON file, layered over defaults.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return config, nil
}
