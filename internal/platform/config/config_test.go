package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, BackendNhost, cfg.Backend)
	assert.Equal(t, "muroro_session", cfg.Session.CookieName)
	assert.Equal(t, 10*time.Second, cfg.Nhost.Timeout)
	assert.Equal(t, 1024, cfg.Nhost.CacheSize)
}

func TestNhostURLs_FromSubdomainAndRegion(t *testing.T) {
	n := NhostConfig{Subdomain: "abcdef", Region: "eu-central-1"}

	assert.Equal(t, "https://abcdef.auth.eu-central-1.nhost.run/v1", n.AuthBaseURL())
	assert.Equal(t, "https://abcdef.graphql.eu-central-1.nhost.run/v1", n.GraphQLBaseURL())
}

func TestNhostURLs_LocalAndOverrides(t *testing.T) {
	local := NhostConfig{Subdomain: "local"}
	assert.Equal(t, "https://local.auth.local.nhost.run/v1", local.AuthBaseURL())

	override := NhostConfig{Subdomain: "x", Region: "y", GraphQLURL: "http://localhost:8080/v1/graphql/"}
	assert.Equal(t, "http://localhost:8080/v1/graphql", override.GraphQLBaseURL())
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyEnv(envFrom(map[string]string{
		"PORT":                  "9090",
		"NHOST_SUBDOMAIN":       "farm",
		"NHOST_REGION":          "us-east-1",
		"SESSION_SECRET":        "  secret  ",
		"SESSION_SECURE_COOKIE": "true",
		"BACKEND":               "MEMORY",
		"LOG_FORMAT":            "json",
		"LOG_LEVEL":             "",
		"NHOST_CACHE_SIZE":      "256",
	}))

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "farm", cfg.Nhost.Subdomain)
	assert.Equal(t, "us-east-1", cfg.Nhost.Region)
	assert.Equal(t, "secret", cfg.Session.Secret)
	assert.True(t, cfg.Session.SecureCookie)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level, "empty env values must not override")
	assert.Equal(t, 256, cfg.Nhost.CacheSize)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "muroro.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":7000"
nhost:
  subdomain: farm
  region: eu-central-1
session:
  secret: 0123456789abcdef0123456789abcdef
`), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout, "defaults survive partial files")
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "nhost.subdomain"))
	assert.True(t, strings.Contains(err.Error(), "session.secret"))

	cfg.Backend = BackendMemory
	require.NoError(t, cfg.Validate())

	cfg.Backend = BackendPostgres
	cfg.Nhost.Subdomain = "farm"
	cfg.Nhost.Region = "eu-central-1"
	cfg.Session.Secret = strings.Repeat("k", 32)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_dsn")

	cfg.Backend = Backend("sqlite")
	assert.Error(t, cfg.Validate())
}

func TestValidate_DebugHeaderOnlyInMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMemory
	cfg.DevDebugHeader = true
	require.NoError(t, cfg.Validate())

	cfg.Backend = BackendNhost
	cfg.Nhost.Subdomain = "farm"
	cfg.Nhost.Region = "eu-central-1"
	cfg.Session.Secret = strings.Repeat("k", 32)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dev_debug_header")
}
