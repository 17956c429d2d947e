// Package config loads and saves the orbitgraph TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/orbitgraph/config.toml (or
// ~/.config/orbitgraph/config.toml). Every field is optional: a missing file
// or a missing key falls back to [Default].
//
//	[layout]
//	iterations = 200
//	seed = 7
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/orbitgraph/pkg/camera"
	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/layout"
)

const appName = "orbitgraph"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Source kinds.
const (
	SourceJSON  = "json"
	SourceMongo = "mongo"
)

// Config is the full configuration file.
type Config struct {
	Layout layout.Options `toml:"layout"`
	Camera CameraConfig   `toml:"camera"`
	Cache  CacheConfig    `toml:"cache"`
	Source SourceConfig   `toml:"source"`
	Server ServerConfig   `toml:"server"`
}

// CameraConfig controls projection and focus animation.
type CameraConfig struct {
	FOV             float64 `toml:"fov"`
	Near            float64 `toml:"near"`
	Far             float64 `toml:"far"`
	FocusDurationMS int     `toml:"focus_duration_ms"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"` // "file", "redis", "none"
	Dir      string `toml:"dir,omitempty"`
	RedisURL string `toml:"redis_url,omitempty"`
	Prefix   string `toml:"prefix,omitempty"`
	TTLHours int    `toml:"ttl_hours"`
}

// SourceConfig selects where entities and relationships come from.
type SourceConfig struct {
	Kind     string `toml:"kind"` // "json", "mongo"
	Path     string `toml:"path,omitempty"`
	MongoURI string `toml:"mongo_uri,omitempty"`
	Database string `toml:"database,omitempty"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	CORSOrigins    []string `toml:"cors_origins"`
}

// Default returns the default configuration.
func Default() *Config {
	lens := camera.DefaultLens()
	return &Config{
		Layout: layout.DefaultOptions(),
		Camera: CameraConfig{
			FOV:             lens.FOV,
			Near:            lens.Near,
			Far:             lens.Far,
			FocusDurationMS: int(camera.DefaultFocusDuration / time.Millisecond),
		},
		Cache:  CacheConfig{Backend: CacheFile, Prefix: appName + ":", TTLHours: 24 * 7},
		Source: SourceConfig{Kind: SourceJSON, Database: appName},
		Server: ServerConfig{Addr: ":8080", TimeoutSeconds: 60, CORSOrigins: []string{"*"}},
	}
}

// Dir returns the orbitgraph config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config at path (or [Path] when empty). A missing file yields
// the defaults; malformed TOML or invalid values yield INVALID_CONFIG.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path (or [Path] when empty), creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// EnsureExists writes the defaults to path unless a file is already there.
// It reports whether a file was created.
func EnsureExists(path string) (bool, error) {
	if path == "" {
		path = Path()
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	return true, Save(Default(), path)
}

// Validate checks value ranges and backend-specific settings.
func (c *Config) Validate() error {
	if err := errors.ValidateIterations(c.Layout.Iterations); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout.iterations")
	}
	if c.Layout.Damping < 0 || c.Layout.Damping >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.damping must be in [0, 1), got %g", c.Layout.Damping)
	}
	if c.Camera.FOV < 0 || c.Camera.FOV >= 180 {
		return errors.New(errors.ErrCodeInvalidConfig, "camera.fov must be in (0, 180), got %g", c.Camera.FOV)
	}
	if c.Camera.Far != 0 && c.Camera.Far <= c.Camera.Near {
		return errors.New(errors.ErrCodeInvalidConfig, "camera.far must exceed camera.near")
	}

	switch c.Cache.Backend {
	case "", CacheFile, CacheNone:
	case CacheRedis:
		if err := errors.ValidateRedisURL(c.Cache.RedisURL); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Source.Kind {
	case "", SourceJSON:
	case SourceMongo:
		if err := errors.ValidateMongoURI(c.Source.MongoURI); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown source kind %q", c.Source.Kind)
	}
	return nil
}

// LayoutOptions returns the layout parameters with defaults filled.
func (c *Config) LayoutOptions() layout.Options {
	return c.Layout.WithDefaults()
}

// Lens returns the camera projection, with defaults for unset fields.
func (c *Config) Lens() camera.Lens {
	l := camera.DefaultLens()
	if c.Camera.FOV > 0 {
		l.FOV = c.Camera.FOV
	}
	if c.Camera.Near > 0 {
		l.Near = c.Camera.Near
	}
	if c.Camera.Far > 0 {
		l.Far = c.Camera.Far
	}
	return l
}

// FocusDuration returns the focus animation length.
func (c *Config) FocusDuration() time.Duration {
	if c.Camera.FocusDurationMS <= 0 {
		return camera.DefaultFocusDuration
	}
	return time.Duration(c.Camera.FocusDurationMS) * time.Millisecond
}

// CacheTTL returns the cache time-to-live; zero means the built-in defaults.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTLHours <= 0 {
		return 0
	}
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// ServerTimeout returns the per-request timeout of the HTTP API.
func (c *Config) ServerTimeout() time.Duration {
	if c.Server.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}
