// Package config loads eigenlog-server's configuration: data directory,
// bind address, API-key allowlist, and per-severity cache overrides, from
// a YAML file layered with environment variables (file < env, later wins).
package config

import (
	"fmt"
	"time"

	"github.com/eigenlog/eigenlog/internal/infra/confloader"
)

// EnvPrefix is the environment variable prefix eigenlog-server recognizes,
// e.g. EIGENLOG_SERVER_BIND_ADDR.
const EnvPrefix = "EIGENLOG_"

// Default values.
const (
	DefaultBindAddr = "127.0.0.1:5080"
	DefaultDataDir  = "/var/lib/eigenlog/data"
	DefaultLogLevel = "info"
	DefaultLogFormat = "json"
)

// CacheOverrides mirrors subscriber.CacheLimits in plain ints so it can be
// unmarshaled directly from YAML/env without importing the subscriber
// package from config (neither package imports the other).
type CacheOverrides struct {
	Error int           `koanf:"error"`
	Warn  int           `koanf:"warn"`
	Info  int           `koanf:"info"`
	Debug int           `koanf:"debug"`
	Trace int           `koanf:"trace"`
	Timeout time.Duration `koanf:"timeout"`
}

// Config is eigenlog-server's full runtime configuration.
type Config struct {
	Server struct {
		BindAddr        string   `koanf:"bind_addr"`
		APIKeys         []string `koanf:"api_keys"`
		SubmitRateLimit float64  `koanf:"submit_rate_limit"`
	} `koanf:"server"`

	Storage struct {
		DataDir string `koanf:"data_dir"`
	} `koanf:"storage"`

	Cache CacheOverrides `koanf:"cache"`

	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`
}

// Default returns the default configuration.
func Default() *Config {
	c := &Config{}
	c.Server.BindAddr = DefaultBindAddr
	c.Server.SubmitRateLimit = 1000
	c.Storage.DataDir = DefaultDataDir
	c.Log.Level = DefaultLogLevel
	c.Log.Format = DefaultLogFormat
	return c
}

// Load reads configuration from an optional YAML file and environment
// variables (environment always wins), starting from Default().
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides is Load plus a final layer of dotted key=value
// overrides -- e.g. "server.bind_addr=0.0.0.0:5080" -- supplied by
// eigenlog-server's repeatable -set flag. An override wins over both the
// file and the environment, for the common operator need to flip one
// setting for a single run without editing the config file.
func LoadWithOverrides(path string, overrides map[string]string) (*Config, error) {
	cfg := Default()

	loader := confloader.NewLoader(
		confloader.WithEnvPrefix(EnvPrefix),
		confloader.WithConfigFile(path),
	)
	if err := loader.LoadWithFlags(cfg, overrides); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}
