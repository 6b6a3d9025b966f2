// Package config loads lineagekit settings from defaults, a config file,
// LINEAGEKIT_ environment variables and explicitly set command-line flags.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
//
// Config files are looked up in the working directory as lineagekit.yaml,
// lineagekit.yml or lineagekit.toml unless a path is given explicitly.
// Nested keys in environment variables use a double underscore:
//
//	LINEAGEKIT_CACHE__REDIS__ADDR=localhost:6379  ->  cache.redis.addr
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/lineagekit/lineagekit/pkg/cache"
	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/lineage"
	"github.com/lineagekit/lineagekit/pkg/normalize"
)

const (
	appName   = "lineagekit"
	envPrefix = "LINEAGEKIT_"
)

// Source modes.
const (
	ModeBackend = "backend"
	ModeMock    = "mock"
)

// Defaults applied before any file, env var or flag.
const (
	DefaultMode           = ModeBackend
	DefaultBackendTimeout = 15 * time.Second
	DefaultAttempts       = 3
	DefaultRetryDelay     = time.Second
	DefaultFreshness      = 5 * time.Minute
	DefaultRetention      = 10 * time.Minute
	DefaultServerAddr     = ":8080"
	DefaultMongoDatabase  = "lineagekit"
	DefaultMongoColl      = "cache"
)

// configNames lists the file names searched when no path is given.
var configNames = []string{"lineagekit.yaml", "lineagekit.yml", "lineagekit.toml"}

// flagKeys maps CLI flag names to config keys. Flags not listed here are
// not configuration and are ignored by the loader.
var flagKeys = map[string]string{
	"mode":        "mode",
	"verbose":     "verbose",
	"backend-url": "backend.url",
	"timeout":     "backend.timeout",
	"attempts":    "backend.attempts",
	"cache":       "cache.backend",
	"cache-dir":   "cache.dir",
	"namespace":   "cache.namespace",
	"freshness":   "cache.freshness",
	"retention":   "cache.retention",
	"catalog":     "mock.catalog",
	"shape":       "mock.shape",
	"latency":     "mock.latency",
	"addr":        "server.addr",
	"direction":   "lineage.direction",
	"depth":       "lineage.depth",
}

// Config holds every lineagekit setting.
type Config struct {
	Mode    string        `koanf:"mode"`
	Verbose bool          `koanf:"verbose"`
	Backend BackendConfig `koanf:"backend"`
	Cache   CacheConfig   `koanf:"cache"`
	Mock    MockConfig    `koanf:"mock"`
	Server  ServerConfig  `koanf:"server"`
	Lineage LineageConfig `koanf:"lineage"`

	// File is the config file that was loaded, empty if none.
	File string `koanf:"-"`
}

// BackendConfig configures the remote lineage backend.
type BackendConfig struct {
	URL        string            `koanf:"url"`
	Timeout    time.Duration     `koanf:"timeout"`
	Attempts   int               `koanf:"attempts"`
	RetryDelay time.Duration     `koanf:"retry_delay"`
	Token      string            `koanf:"token"`
	Headers    map[string]string `koanf:"headers"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string        `koanf:"backend"`
	Dir       string        `koanf:"dir"`
	Freshness time.Duration `koanf:"freshness"`
	Retention time.Duration `koanf:"retention"`
	Namespace string        `koanf:"namespace"`
	Redis     RedisConfig   `koanf:"redis"`
	Mongo     MongoConfig   `koanf:"mongo"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type MongoConfig struct {
	URI        string `koanf:"uri"`
	Database   string `koanf:"database"`
	Collection string `koanf:"collection"`
}

// MockConfig configures the built-in mock source.
type MockConfig struct {
	Catalog string        `koanf:"catalog"`
	Shape   string        `koanf:"shape"`
	Latency time.Duration `koanf:"latency"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// LineageConfig holds default traversal options.
type LineageConfig struct {
	Direction string `koanf:"direction"`
	Depth     int    `koanf:"depth"`
}

// Defaults returns the default configuration as a flat key map.
func Defaults() map[string]any {
	return map[string]any{
		"mode":                   DefaultMode,
		"verbose":                false,
		"backend.timeout":        DefaultBackendTimeout,
		"backend.attempts":       DefaultAttempts,
		"backend.retry_delay":    DefaultRetryDelay,
		"cache.backend":          cache.BackendFile,
		"cache.dir":              DefaultCacheDir(),
		"cache.freshness":        DefaultFreshness,
		"cache.retention":        DefaultRetention,
		"cache.mongo.database":   DefaultMongoDatabase,
		"cache.mongo.collection": DefaultMongoColl,
		"mock.shape":             string(normalize.ShapeServer),
		"server.addr":            DefaultServerAddr,
		"lineage.direction":      string(lineage.DefaultDirection),
		"lineage.depth":          lineage.DefaultDepth,
	}
}

// DefaultCacheDir returns the cache directory using the XDG convention
// (~/.cache/lineagekit/). It falls back to a temp directory when no home
// directory is available.
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}

// Load builds a Config. cfgFile may be empty to search the working
// directory; flags may be nil. Only flags the user changed override
// lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// 2. Config file
	path, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}

	// 3. Environment: LINEAGEKIT_CACHE__REDIS__ADDR -> cache.redis.addr
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, lkerr.Wrap(lkerr.ErrCodeInvalidConfig, err, "decode config")
	}
	cfg.File = path
	cfg.Backend.Token = os.ExpandEnv(cfg.Backend.Token)
	cfg.Cache.Redis.Password = os.ExpandEnv(cfg.Cache.Redis.Password)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// findConfigFile returns the explicit path, or the first known config file
// in the working directory, or "" when none exists.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", lkerr.Wrap(lkerr.ErrCodeFileNotFound, err, "config file %s", explicit)
		}
		return explicit, nil
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

func loadFile(k *koanf.Koanf, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var m map[string]any
		if _, err := toml.DecodeFile(path, &m); err != nil {
			return lkerr.Wrap(lkerr.ErrCodeInvalidConfig, err, "read config file %s", path)
		}
		if err := k.Load(confmap.Provider(m, ""), nil); err != nil {
			return lkerr.Wrap(lkerr.ErrCodeInvalidConfig, err, "read config file %s", path)
		}
	default:
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return lkerr.Wrap(lkerr.ErrCodeInvalidConfig, err, "read config file %s", path)
		}
	}
	return nil
}

// Validate rejects unknown modes, cache backends, shapes and directions.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeBackend, ModeMock:
	default:
		return lkerr.New(lkerr.ErrCodeInvalidConfig, "unknown mode %q (want %s or %s)", c.Mode, ModeBackend, ModeMock)
	}

	switch c.Cache.Backend {
	case "", cache.BackendMemory, cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return lkerr.New(lkerr.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if err := cache.ValidateNamespace(c.Cache.Namespace); err != nil {
		return lkerr.Wrap(lkerr.ErrCodeInvalidConfig, err, "cache.namespace")
	}
	if c.Cache.Freshness <= 0 || c.Cache.Retention < c.Cache.Freshness {
		return lkerr.New(lkerr.ErrCodeInvalidConfig, "cache.retention (%s) must be at least cache.freshness (%s)", c.Cache.Retention, c.Cache.Freshness)
	}

	switch normalize.Shape(c.Mock.Shape) {
	case "", normalize.ShapeLegacy, normalize.ShapeServer:
	default:
		return lkerr.New(lkerr.ErrCodeInvalidConfig, "unknown mock.shape %q", c.Mock.Shape)
	}

	// A missing URL is reported when a backend source is built, so commands
	// that never fetch still work without one.
	if c.Backend.URL != "" {
		if err := lkerr.ValidateURL(c.Backend.URL); err != nil {
			return lkerr.Wrap(lkerr.ErrCodeInvalidConfig, err, "backend.url")
		}
	}
	if c.Backend.Attempts < 1 {
		return lkerr.New(lkerr.ErrCodeInvalidConfig, "backend.attempts must be at least 1")
	}

	if err := c.LineageOptions().WithDefaults().Validate(); err != nil {
		return lkerr.Wrap(lkerr.ErrCodeInvalidConfig, err, "lineage defaults")
	}
	return nil
}

// LineageOptions returns the configured traversal defaults.
func (c *Config) LineageOptions() lineage.Options {
	return lineage.Options{
		Direction: lineage.Direction(c.Lineage.Direction),
		Depth:     c.Lineage.Depth,
	}
}

// CacheOptions converts the cache section for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:   c.Cache.Backend,
		Dir:       c.Cache.Dir,
		Namespace: c.Cache.Namespace,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		},
		Mongo: cache.MongoConfig{
			URI:        c.Cache.Mongo.URI,
			Database:   c.Cache.Mongo.Database,
			Collection: c.Cache.Mongo.Collection,
		},
	}
}
