package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents runtime configuration shared by both client surfaces.
type Config struct {
	Backend   BackendConfig             `json:"backend"`
	Store     StoreConfig               `json:"store"`
	Web       WebConfig                 `json:"web"`
	Redis     RedisConfig               `json:"redis"`
	Databases map[string]DatabaseConfig `json:"databases"`
}

// BackendConfig points at the external advisory backend.
type BackendConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Timeout returns the configured request timeout, defaulting to 30s like the
// original clients.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// StoreConfig selects the persistent session store implementation.
type StoreConfig struct {
	Driver string `json:"driver"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// WebConfig configures the browser-facing adapter.
type WebConfig struct {
	ListenAddress string `json:"listen_address"`
	StaticDir     string `json:"static_dir"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{BaseURL: "http://localhost:8000"},
		Store:   StoreConfig{Driver: "sqlite3"},
		Web:     WebConfig{ListenAddress: ":9000", StaticDir: "./static"},
		Databases: map[string]DatabaseConfig{
			"sqlite3": {DSN: "./data/session.db"},
		},
	}
}

// Load reads configuration from the provided path (defaults to config.json).
// A missing default file falls back to Default(); an explicitly named file
// must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return applyEnv(Default()), nil
		}
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	cfg := Default()
	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Relative sqlite paths resolve against the config file, not the cwd.
	for name, db := range cfg.Databases {
		if db.DSN != "" && db.DSN != ":memory:" && !filepath.IsAbs(db.DSN) && name == "sqlite3" {
			db.DSN = filepath.Join(filepath.Dir(absPath), db.DSN)
			cfg.Databases[name] = db
		}
	}

	cfg = applyEnv(cfg)
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend base_url must be configured")
	}
	return cfg, nil
}

// applyEnv layers process environment overrides on top of file values. The
// binaries load .env files beforehand, so deployments can configure the
// backend without editing config.json.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("HEALTH_ASSISTANT_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("HEALTH_ASSISTANT_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("HEALTH_ASSISTANT_LISTEN_ADDR"); v != "" {
		cfg.Web.ListenAddress = v
	}
	return cfg
}
