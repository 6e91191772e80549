package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Sim     SimConfig     `toml:"sim"`
	Logging LoggingConfig `toml:"logging"`
	Scene   SceneConfig   `toml:"scene"`
	View    ViewConfig    `toml:"view"`
}

type SimConfig struct {
	TickRate int `toml:"tick_rate"` // fixed updates per second
	Ticks    int `toml:"ticks"`     // headless run length
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console or json
}

type SceneConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

type ViewConfig struct {
	Scale float64 `toml:"scale"`
	Debug bool    `toml:"debug"`
}

// Load reads a TOML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Sim: SimConfig{
			TickRate: 60,
			Ticks:    600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scene: SceneConfig{
			Path:  "crush.yaml",
			Watch: true,
		},
		View: ViewConfig{
			Scale: 4,
			Debug: true,
		},
	}
}

func (c *Config) Validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("sim.tick_rate must be positive, got %d", c.Sim.TickRate)
	}
	if c.Sim.Ticks < 0 {
		return fmt.Errorf("sim.ticks must not be negative, got %d", c.Sim.Ticks)
	}
	if c.View.Scale <= 0 {
		return fmt.Errorf("view.scale must be positive, got %v", c.View.Scale)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
