// Package wconfig loads whirr.toml, the configuration file shared by
// whirr's three command-line entrypoints (whirr-worker, whirr-server,
// whirrctl), layering environment variable overrides on top (spec
// §6.3).
package wconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root of whirr.toml.
type Config struct {
	DataDir   string `toml:"data_dir"`
	ServerURL string `toml:"server_url"`
	LogLevel  string `toml:"log_level"`

	Worker WorkerConfig `toml:"worker"`
	Server ServerConfig `toml:"server"`

	// BaseDir is resolved at load time, not read from TOML.
	BaseDir string `toml:"-"`
}

// WorkerConfig configures a whirr-worker process (spec §4.3).
type WorkerConfig struct {
	Slot              string   `toml:"slot"`
	Concurrency       int      `toml:"concurrency"`
	Queue             int      `toml:"queue"`
	PullInterval      string   `toml:"pull_interval"`
	LeaseDuration     string   `toml:"lease_duration"`
	HeartbeatInterval string   `toml:"heartbeat_interval"`
	KillGrace         string   `toml:"kill_grace"`
	AcceleratorEnvVar string   `toml:"accelerator_env_var"`
	AcceleratorValues []string `toml:"accelerator_values"`
	Backoff           Backoff  `toml:"backoff"`
}

// Backoff mirrors whirr.BackoffConfig with duration fields as TOML-friendly
// strings (spec §7).
type Backoff struct {
	MaxRetries          uint32  `toml:"max_retries"`
	InitialInterval     string  `toml:"initial_interval"`
	MaxInterval         string  `toml:"max_interval"`
	Multiplier          float64 `toml:"multiplier"`
	RandomizationFactor float64 `toml:"randomization_factor"`
}

// ServerConfig configures a whirr-server process (spec §2, §4.4).
type ServerConfig struct {
	ListenAddr   string `toml:"listen_addr"`
	PostgresDSN  string `toml:"postgres_dsn"`
	ReapInterval string `toml:"reap_interval"`
	Clean        Clean  `toml:"clean"`
}

// Clean configures the optional retention sweep (spec §6.1 run retention).
type Clean struct {
	Enabled  bool   `toml:"enabled"`
	Status   string `toml:"status"`
	Interval string `toml:"interval"`
	Before   bool   `toml:"before"`
	Delta    string `toml:"delta"`
}

// Load reads path, applies defaults, layers in environment variable
// overrides, and validates the result.
//
// A missing config file is not an error: Load falls back to an empty
// Config and applies defaults and env overrides on top of it, so that
// whirr can run from environment variables alone (spec §6.3).
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		if d, err := DefaultDataDir(); err == nil {
			cfg.DataDir = d
		} else {
			cfg.DataDir = "./whirr-data"
		}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Worker.Slot == "" {
		cfg.Worker.Slot = "default"
	}
	if cfg.Worker.Concurrency <= 0 {
		cfg.Worker.Concurrency = 1
	}
	if cfg.Worker.Queue <= 0 {
		cfg.Worker.Queue = cfg.Worker.Concurrency
	}
	if cfg.Worker.LeaseDuration == "" {
		cfg.Worker.LeaseDuration = "60s"
	}
	if cfg.Worker.HeartbeatInterval == "" {
		cfg.Worker.HeartbeatInterval = "20s"
	}
	if cfg.Worker.KillGrace == "" {
		cfg.Worker.KillGrace = "10s"
	}
	if cfg.Worker.Backoff.InitialInterval == "" {
		cfg.Worker.Backoff.InitialInterval = "500ms"
	}
	if cfg.Worker.Backoff.MaxInterval == "" {
		cfg.Worker.Backoff.MaxInterval = "30s"
	}
	if cfg.Worker.Backoff.Multiplier == 0 {
		cfg.Worker.Backoff.Multiplier = 2
	}
	if cfg.Worker.Backoff.RandomizationFactor == 0 {
		cfg.Worker.Backoff.RandomizationFactor = 0.2
	}

	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.ReapInterval == "" {
		cfg.Server.ReapInterval = "30s"
	}
	if cfg.Server.Clean.Interval == "" {
		cfg.Server.Clean.Interval = "1h"
	}
}

// applyEnv layers WHIRR_SERVER_URL and WHIRR_DATA_DIR on top of the file
// (spec §6.3); env always wins, matching fixflow's token precedence.
func applyEnv(cfg *Config) {
	if v := os.Getenv("WHIRR_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("WHIRR_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
}

func validate(cfg *Config) error {
	durations := map[string]string{
		"worker.pull_interval":            cfg.Worker.PullInterval,
		"worker.lease_duration":           cfg.Worker.LeaseDuration,
		"worker.heartbeat_interval":       cfg.Worker.HeartbeatInterval,
		"worker.kill_grace":               cfg.Worker.KillGrace,
		"worker.backoff.initial_interval": cfg.Worker.Backoff.InitialInterval,
		"worker.backoff.max_interval":     cfg.Worker.Backoff.MaxInterval,
		"server.reap_interval":            cfg.Server.ReapInterval,
		"server.clean.interval":           cfg.Server.Clean.Interval,
		"server.clean.delta":              cfg.Server.Clean.Delta,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
	}
	if cfg.Worker.Concurrency < 1 {
		return fmt.Errorf("worker.concurrency must be >= 1")
	}
	return nil
}

// Duration parses s, which Load has already validated as a well-formed
// duration string; it is a programmer error for s to fail to parse here.
func Duration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("wconfig: invalid duration %q slipped past validation: %v", s, err))
	}
	return d
}

// OptionalDuration parses s, returning zero if s is empty.
func OptionalDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	return Duration(s)
}
