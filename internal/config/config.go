package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Map    MapConfig    `mapstructure:"map"`
	Home   HomeConfig   `mapstructure:"home"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	UI   string `mapstructure:"ui"`
}

type StoreConfig struct {
	Driver        string `mapstructure:"driver"`
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	Key           string `mapstructure:"key"`
}

type MapConfig struct {
	Zoom        int    `mapstructure:"zoom"`
	TileURL     string `mapstructure:"tile_url"`
	Attribution string `mapstructure:"attribution"`
}

// HomeConfig is the fixed position the command line uses instead of a
// device location. Both values must be set for it to count.
type HomeConfig struct {
	Lat *float64 `mapstructure:"lat"`
	Lng *float64 `mapstructure:"lng"`
}

func (h HomeConfig) IsSet() bool {
	return h.Lat != nil && h.Lng != nil
}

// Load reads defaults, then the optional YAML file at path, then MAPTY_
// environment variables (MAPTY_STORE_DRIVER, MAPTY_HOME_LAT, ...).
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("server.addr", ":8222")
	v.SetDefault("server.ui", "./ui")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "mapty.db")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.key", "workouts")
	v.SetDefault("map.zoom", 13)
	v.SetDefault("map.tile_url", "https://{s}.tile.openstreetmap.fr/hot/{z}/{x}/{y}.png")
	v.SetDefault("map.attribution", `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`)
	v.SetDefault("home.lat", nil)
	v.SetDefault("home.lng", nil)

	v.SetEnvPrefix("MAPTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return errors.New("store.path is required for sqlite")
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return errors.New("store.redis_addr is required for redis")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Store.Key == "" {
		return errors.New("store.key is required")
	}
	if c.Map.Zoom < 1 || c.Map.Zoom > 19 {
		return fmt.Errorf("map.zoom must be between 1 and 19, got %d", c.Map.Zoom)
	}
	if (c.Home.Lat == nil) != (c.Home.Lng == nil) {
		return errors.New("home.lat and home.lng must be set together")
	}
	if c.Home.IsSet() {
		if *c.Home.Lat < -90 || *c.Home.Lat > 90 {
			return fmt.Errorf("home.lat out of range: %v", *c.Home.Lat)
		}
		if *c.Home.Lng < -180 || *c.Home.Lng > 180 {
			return fmt.Errorf("home.lng out of range: %v", *c.Home.Lng)
		}
	}
	return nil
}
