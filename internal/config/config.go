package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the terminal client and the dev
// backend.
type Config struct {
	Backend Backend `yaml:"backend"`
	Storage Storage `yaml:"storage"`
	Server  Server  `yaml:"server"`
	Sync    Sync    `yaml:"sync"`
	Logging Logging `yaml:"logging"`
}

// Backend holds the endpoints the terminal client talks to.
type Backend struct {
	BaseURL   string `yaml:"base_url"`
	StreamURL string `yaml:"stream_url"`
}

// Storage holds paths for local state persistence.
type Storage struct {
	StatePath string `yaml:"state_path"`
}

// Server holds the dev backend listener configuration.
type Server struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	AIRateLimitPerMin int    `yaml:"ai_rate_limit_per_min"`
}

// Sync controls how layout changes propagate to the remote store.
type Sync struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// Debounce returns the remote-write debounce window. Zero or negative
// values mean "use the engine default".
func (s Sync) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Backend: Backend{
			BaseURL:   "http://127.0.0.1:8412",
			StreamURL: "ws://127.0.0.1:8412/api/v1/quotes",
		},
		Storage: Storage{StatePath: "marketterm.db"},
		Server: Server{
			Host:              "127.0.0.1",
			Port:              8412,
			AIRateLimitPerMin: 60,
		},
		Sync:    Sync{DebounceMS: 350},
		Logging: Logging{Level: "info", Format: "json"},
	}
}

// Load reads the YAML configuration file at the given path, parses it over
// the defaults, and then applies environment variable overrides. An empty
// path skips the file and returns defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKETTERM_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("MARKETTERM_STREAM_URL"); v != "" {
		cfg.Backend.StreamURL = v
	}
	if v := os.Getenv("MARKETTERM_STATE_PATH"); v != "" {
		cfg.Storage.StatePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		cfg.Logging.Path = v
	}
}
