package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapty.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8222", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "mapty.db", cfg.Store.Path)
	assert.Equal(t, "workouts", cfg.Store.Key)
	assert.Equal(t, 13, cfg.Map.Zoom)
	assert.Contains(t, cfg.Map.TileURL, "openstreetmap")
	assert.False(t, cfg.Home.IsSet())
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
server:
  addr: "127.0.0.1:9000"
store:
  driver: redis
  redis_addr: "redis:6379"
map:
  zoom: 15
home:
  lat: 51.5
  lng: -0.12
`))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "redis:6379", cfg.Store.RedisAddr)
	assert.Equal(t, 15, cfg.Map.Zoom)
	require.True(t, cfg.Home.IsSet())
	assert.Equal(t, 51.5, *cfg.Home.Lat)
	assert.Equal(t, -0.12, *cfg.Home.Lng)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("MAPTY_STORE_DRIVER", "memory")
	t.Setenv("MAPTY_MAP_ZOOM", "10")

	cfg, err := Load(writeTemp(t, "store:\n  driver: sqlite\nmap:\n  zoom: 15\n"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 10, cfg.Map.Zoom)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	lat, lng, far := 51.5, -0.12, 123.0
	valid := Config{
		Store: StoreConfig{Driver: "sqlite", Path: "x.db", Key: "workouts"},
		Map:   MapConfig{Zoom: 13},
	}
	require.NoError(t, valid.Validate())

	cases := map[string]func(c *Config){
		"unknown driver": func(c *Config) { c.Store.Driver = "mongo" },
		"no sqlite path": func(c *Config) { c.Store.Path = "" },
		"no redis addr":  func(c *Config) { c.Store.Driver = "redis" },
		"no key":         func(c *Config) { c.Store.Key = "" },
		"zoom too low":   func(c *Config) { c.Map.Zoom = 0 },
		"zoom too high":  func(c *Config) { c.Map.Zoom = 20 },
		"half home":      func(c *Config) { c.Home.Lat = &lat },
		"home lat range": func(c *Config) { c.Home.Lat, c.Home.Lng = &far, &lng },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}
