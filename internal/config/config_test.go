package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineagekit/lineagekit/pkg/cache"
	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// chdir switches to an empty temp directory so no stray config file is
// picked up, and restores the working directory afterwards.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("mode", "", "")
	fs.String("backend-url", "", "")
	fs.Int("depth", 0, "")
	fs.String("direction", "", "")
	fs.Duration("freshness", 0, "")
	fs.String("output", "", "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ModeBackend, cfg.Mode)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 3, cfg.Backend.Attempts)
	assert.Equal(t, time.Second, cfg.Backend.RetryDelay)
	assert.Equal(t, cache.BackendFile, cfg.Cache.Backend)
	assert.Equal(t, "/tmp/xdg/lineagekit", cfg.Cache.Dir)
	assert.Equal(t, 5*time.Minute, cfg.Cache.Freshness)
	assert.Equal(t, 10*time.Minute, cfg.Cache.Retention)
	assert.Equal(t, "server", cfg.Mock.Shape)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, lineage.Options{Direction: lineage.DirectionBoth, Depth: 3}, cfg.LineageOptions())
	assert.Empty(t, cfg.File)
}

func TestLoadYAML(t *testing.T) {
	dir := chdir(t)
	writeFile(t, dir, "lineagekit.yaml", `
mode: mock
backend:
  url: https://lineage.example.com
  timeout: 30s
  attempts: 5
  headers:
    X-Tenant: acme
cache:
  backend: redis
  namespace: staging
  freshness: 1m
  retention: 2m
  redis:
    addr: localhost:6379
    db: 2
mock:
  shape: legacy
  latency: 50ms
lineage:
  direction: upstream
  depth: 5
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "lineagekit.yaml", cfg.File)
	assert.Equal(t, ModeMock, cfg.Mode)
	assert.Equal(t, "https://lineage.example.com", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 5, cfg.Backend.Attempts)
	assert.Equal(t, "acme", cfg.Backend.Headers["X-Tenant"])
	assert.Equal(t, cache.BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Minute, cfg.Cache.Freshness)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, "legacy", cfg.Mock.Shape)
	assert.Equal(t, 50*time.Millisecond, cfg.Mock.Latency)
	assert.Equal(t, lineage.Options{Direction: lineage.DirectionUpstream, Depth: 5}, cfg.LineageOptions())

	opts := cfg.CacheOptions()
	assert.Equal(t, cache.BackendRedis, opts.Backend)
	assert.Equal(t, 2, opts.Redis.DB)
	assert.Equal(t, "staging", opts.Namespace)
}

func TestLoadTOML(t *testing.T) {
	dir := chdir(t)
	path := writeFile(t, dir, "custom.toml", `
mode = "mock"

[cache]
backend = "mongo"

[cache.mongo]
uri = "mongodb://localhost:27017"

[server]
addr = ":9090"
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, ModeMock, cfg.Mode)
	assert.Equal(t, cache.BackendMongo, cfg.Cache.Backend)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Cache.Mongo.URI)
	assert.Equal(t, DefaultMongoDatabase, cfg.Cache.Mongo.Database)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdir(t)
	writeFile(t, dir, "lineagekit.yml", "mode: mock\ncache:\n  backend: memory\n")
	t.Setenv("LINEAGEKIT_CACHE__BACKEND", "none")
	t.Setenv("LINEAGEKIT_CACHE__REDIS__ADDR", "redis:6379")
	t.Setenv("LINEAGEKIT_BACKEND__RETRY_DELAY", "250ms")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, cache.BackendNone, cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Backend.RetryDelay)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	chdir(t)
	t.Setenv("LINEAGEKIT_LINEAGE__DEPTH", "4")
	t.Setenv("LINEAGEKIT_MODE", "backend")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--depth=7", "--mode=mock", "--freshness=30s", "--output=x"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Lineage.Depth)
	assert.Equal(t, ModeMock, cfg.Mode)
	assert.Equal(t, 30*time.Second, cfg.Cache.Freshness)
	// Unset flags leave lower layers alone.
	assert.Equal(t, "both", cfg.Lineage.Direction)
}

func TestLoadTokenExpandsEnv(t *testing.T) {
	dir := chdir(t)
	writeFile(t, dir, "lineagekit.yaml", "backend:\n  url: http://localhost:9000\n  token: ${LINEAGE_TOKEN}\n")
	t.Setenv("LINEAGE_TOKEN", "s3cret")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Backend.Token)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t)
	_, err := Load("nope.yaml", nil)
	require.Error(t, err)
	assert.True(t, lkerr.Is(err, lkerr.ErrCodeFileNotFound))
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdir(t)
	writeFile(t, dir, "lineagekit.toml", "mode = [")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.True(t, lkerr.Is(err, lkerr.ErrCodeInvalidConfig))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Mode:    ModeBackend,
			Backend: BackendConfig{URL: "http://localhost:9000", Attempts: 3},
			Cache:   CacheConfig{Backend: cache.BackendMemory, Freshness: time.Minute, Retention: 2 * time.Minute},
			Mock:    MockConfig{Shape: "server"},
			Lineage: LineageConfig{Direction: "both", Depth: 3},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"no url is fine", func(c *Config) { c.Backend.URL = "" }, true},
		{"mock mode", func(c *Config) { c.Mode = ModeMock }, true},
		{"unknown mode", func(c *Config) { c.Mode = "replay" }, false},
		{"bad url", func(c *Config) { c.Backend.URL = "ftp://x" }, false},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, false},
		{"retention below freshness", func(c *Config) { c.Cache.Retention = time.Second }, false},
		{"unknown shape", func(c *Config) { c.Mock.Shape = "graphql" }, false},
		{"namespace", func(c *Config) { c.Cache.Namespace = "staging" }, true},
		{"reserved namespace", func(c *Config) { c.Cache.Namespace = "lineage" }, false},
		{"reserved batch namespace", func(c *Config) { c.Cache.Namespace = "lineage-batch:" }, false},
		{"zero attempts", func(c *Config) { c.Backend.Attempts = 0 }, false},
		{"bad direction", func(c *Config) { c.Lineage.Direction = "sideways" }, false},
		{"negative depth", func(c *Config) { c.Lineage.Depth = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, lkerr.Is(err, lkerr.ErrCodeInvalidConfig), err.Error())
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "cache.redis.addr", envKey("LINEAGEKIT_CACHE__REDIS__ADDR"))
	assert.Equal(t, "backend.retry_delay", envKey("LINEAGEKIT_BACKEND__RETRY_DELAY"))
	assert.Equal(t, "mode", envKey("LINEAGEKIT_MODE"))
}
