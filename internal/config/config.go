package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cedarstats/regstats/internal/regstats"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Output     Output     `yaml:"output"`
	Cache      Cache      `yaml:"cache"`
	Thresholds Thresholds `yaml:"thresholds"`
	Tiers      Tiers      `yaml:"tiers"`
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Cache struct {
	Dir        string `yaml:"dir"`
	TTLHours   int    `yaml:"ttl_hours"`
	MaxEntries int    `yaml:"max_entries"`
}

type Thresholds struct {
	MinImpacted int     `yaml:"min_impacted"`
	PctSD       float64 `yaml:"pct_sd"`
	MinWait     int     `yaml:"min_wait"`
	MinSqueeze  float64 `yaml:"min_squeeze"`
}

type Tiers struct {
	Critical float64 `yaml:"critical"`
	Moderate float64 `yaml:"moderate"`
	Marginal float64 `yaml:"marginal"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for regstats.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "regstats")
}

// DataDir returns the XDG data directory for regstats.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "regstats")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/regstats/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'regstats init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	defaults := regstats.DefaultThresholds()
	cfg := &Config{
		Cache: Cache{
			TTLHours:   24,
			MaxEntries: 20,
		},
		Thresholds: Thresholds{
			MinImpacted: defaults.MinImpacted,
			PctSD:       defaults.PctSD,
			MinWait:     defaults.MinWait,
			MinSqueeze:  defaults.MinSqueeze,
		},
		Tiers: Tiers{
			Critical: regstats.DefaultTierBounds.Critical,
			Moderate: regstats.DefaultTierBounds.Moderate,
			Marginal: regstats.DefaultTierBounds.Marginal,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// GetCacheDir returns the effective cache directory.
func (c *Config) GetCacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(c.GetDataDir(), "cache")
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// ThresholdSet returns the configured default flagging gates.
func (c *Config) ThresholdSet() regstats.ThresholdSet {
	return regstats.ThresholdSet{
		MinImpacted: c.Thresholds.MinImpacted,
		PctSD:       c.Thresholds.PctSD,
		MinWait:     c.Thresholds.MinWait,
		MinSqueeze:  c.Thresholds.MinSqueeze,
	}
}

// TierBounds returns the configured tier band boundaries.
func (c *Config) TierBounds() regstats.TierBounds {
	return regstats.TierBounds{
		Critical: c.Tiers.Critical,
		Moderate: c.Tiers.Moderate,
		Marginal: c.Tiers.Marginal,
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
