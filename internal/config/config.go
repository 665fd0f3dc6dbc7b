// Package config handles terrain tool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig holds terrain build defaults.
type TerrainConfig struct {
	PatchSize int        `yaml:"patch_size"` // Power of two in [4,128]
	Spacing   SpacingCfg `yaml:"spacing"`
}

// SpacingCfg holds per-axis vertex spacing. Y is the height scale applied
// to raw heightmap samples.
type SpacingCfg struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			PatchSize: 16,
			Spacing:   SpacingCfg{X: 1, Y: 0.25, Z: 1},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
