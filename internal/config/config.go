// Package config loads the replay configuration from YAML, with MARKETSIM_*
// environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Restore    Restore    `yaml:"restore"`
	Report     Report     `yaml:"report"`
	Checkpoint Checkpoint `yaml:"checkpoint"`
	Sink       Sink       `yaml:"sink"`
	Log        Log        `yaml:"log"`
}

// Restore is the precision applied to limit orders read from checkpoints.
type Restore struct {
	PriceDecimals  int `yaml:"price_decimals"`
	VolumeDecimals int `yaml:"volume_decimals"`
}

// Report configures the rotating report stream file.
type Report struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type Checkpoint struct {
	Dir string `yaml:"dir"`
}

type Sink struct {
	Buffer int `yaml:"buffer"`
}

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func Default() Config {
	return Config{
		Restore: Restore{PriceDecimals: 16, VolumeDecimals: 16},
		Report: Report{
			Path:       "logs/report.jsonl",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 7,
		},
		Checkpoint: Checkpoint{Dir: "checkpoints"},
		Sink:       Sink{Buffer: 100},
		Log:        Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path yields the defaults. A
// .env file in the working directory is loaded if present, then environment
// overrides are applied.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"MARKETSIM_PRICE_DECIMALS":  &c.Restore.PriceDecimals,
		"MARKETSIM_VOLUME_DECIMALS": &c.Restore.VolumeDecimals,
		"MARKETSIM_SINK_BUFFER":     &c.Sink.Buffer,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}
	strs := map[string]*string{
		"MARKETSIM_REPORT_PATH":    &c.Report.Path,
		"MARKETSIM_CHECKPOINT_DIR": &c.Checkpoint.Dir,
		"MARKETSIM_LOG_LEVEL":      &c.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	return nil
}

func (c Config) Validate() error {
	if c.Restore.PriceDecimals < 0 || c.Restore.VolumeDecimals < 0 {
		return fmt.Errorf("restore decimals must be non-negative (price %d, volume %d)",
			c.Restore.PriceDecimals, c.Restore.VolumeDecimals)
	}
	if c.Report.Path == "" {
		return fmt.Errorf("report.path is required")
	}
	if c.Sink.Buffer <= 0 {
		return fmt.Errorf("sink.buffer must be positive, got %d", c.Sink.Buffer)
	}
	return nil
}
