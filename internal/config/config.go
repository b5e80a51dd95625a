// Package config loads service configuration from an optional YAML file with
// environment variable overrides for every secret and endpoint.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by all pipeline services. Zero values fall
// back to the defaults set in Load.
type Config struct {
	// Connections. Empty RedisURL or DatabaseURL selects the in-memory
	// broker/store (dev mode).
	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	// External provider credentials.
	GooglePlacesKey string `yaml:"google_places_key"`
	HereMapsKey     string `yaml:"heremaps_key"`
	TelegramToken   string `yaml:"telegram_token"`

	// Admin HTTP listener (metrics + health).
	AdminAddr string `yaml:"admin_addr"`
	// WebSocket chat gateway listener, used when no Telegram token is set.
	WSAddr string `yaml:"ws_addr"`

	ConsumerGroup string `yaml:"consumer_group"`

	MaxWaypoints         int `yaml:"max_waypoints"`
	MaxPlacesPerWaypoint int `yaml:"max_places_per_waypoint"`
	MaxAttractions       int `yaml:"max_attractions"`
	SearchRadiusM        int `yaml:"search_radius_m"`

	ProviderTimeoutSec int `yaml:"provider_timeout_sec"`
	SessionTTLMin      int `yaml:"session_ttl_min"`
}

// Load reads path (if non-empty and present), applies env overrides, and
// fills defaults. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	overrideStr(&cfg.RedisURL, "REDIS_URL")
	overrideStr(&cfg.DatabaseURL, "DATABASE_URL")
	overrideStr(&cfg.GooglePlacesKey, "GOOGLE_PLACES_KEY")
	overrideStr(&cfg.HereMapsKey, "HEREMAPS_ATTRACTIONS_KEY")
	overrideStr(&cfg.TelegramToken, "TELEGRAM_BOT_TOKEN")
	overrideStr(&cfg.AdminAddr, "ADMIN_ADDR")
	overrideStr(&cfg.WSAddr, "WS_ADDR")
	overrideStr(&cfg.ConsumerGroup, "CONSUMER_GROUP")
	overrideInt(&cfg.MaxWaypoints, "MAX_WAYPOINTS")
	overrideInt(&cfg.MaxPlacesPerWaypoint, "MAX_PLACES_PER_WAYPOINT")
	overrideInt(&cfg.MaxAttractions, "MAX_ATTRACTIONS")
	overrideInt(&cfg.SearchRadiusM, "SEARCH_RADIUS_M")
	overrideInt(&cfg.ProviderTimeoutSec, "PROVIDER_TIMEOUT_SEC")
	overrideInt(&cfg.SessionTTLMin, "SESSION_TTL_MIN")

	if cfg.AdminAddr == "" {
		cfg.AdminAddr = ":9090"
	}
	if cfg.WSAddr == "" {
		cfg.WSAddr = ":8081"
	}
	if cfg.ConsumerGroup == "" {
		cfg.ConsumerGroup = "roadtrip"
	}
	if cfg.MaxWaypoints <= 0 {
		cfg.MaxWaypoints = 4
	}
	if cfg.MaxPlacesPerWaypoint <= 0 {
		cfg.MaxPlacesPerWaypoint = 2
	}
	if cfg.MaxAttractions <= 0 {
		cfg.MaxAttractions = 6
	}
	if cfg.SearchRadiusM <= 0 {
		cfg.SearchRadiusM = 3000
	}
	if cfg.ProviderTimeoutSec <= 0 {
		cfg.ProviderTimeoutSec = 10
	}
	if cfg.SessionTTLMin <= 0 {
		cfg.SessionTTLMin = 120
	}
	return cfg, nil
}

// Require returns an error naming every listed credential that is empty.
// Mains treat this as fatal: the process does not start without its keys.
func (c Config) Require(names ...string) error {
	vals := map[string]string{
		"GOOGLE_PLACES_KEY":        c.GooglePlacesKey,
		"HEREMAPS_ATTRACTIONS_KEY": c.HereMapsKey,
		"TELEGRAM_BOT_TOKEN":       c.TelegramToken,
		"DATABASE_URL":             c.DatabaseURL,
		"REDIS_URL":                c.RedisURL,
	}
	for _, n := range names {
		if vals[n] == "" {
			return fmt.Errorf("missing required credential %s", n)
		}
	}
	return nil
}

func (c Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSec) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

func overrideStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
