// Package config reads the server configuration from the environment once at
// startup. Values are immutable for the lifetime of the process.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/enzosantiagosrv1245-cell/aula/models"
)

type Config struct {
	Host        string
	Port        string        `validate:"required"`
	MaxPlayers  int           `validate:"gte=1"`
	MapWidth    float64       `validate:"gt=0"`
	MapHeight   float64       `validate:"gt=0"`
	PlayerSpeed float64       `validate:"gt=0"`
	PlayerSize  float64       `validate:"gt=0"`
	TickRate    int           `validate:"gte=1,lte=120"`
	IdleTimeout time.Duration `validate:"gt=0"`
}

// Load reads a .env file if one exists, then the process environment, and
// validates the result. Unset variables fall back to the same defaults the
// browser client assumes.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	cfg := &Config{
		Host:        os.Getenv("HOST"),
		Port:        envString("PORT", "3000"),
		MaxPlayers:  envInt("MAX_PLAYERS", 20),
		MapWidth:    envFloat("MAP_WIDTH", 1200),
		MapHeight:   envFloat("MAP_HEIGHT", 800),
		PlayerSpeed: envFloat("PLAYER_SPEED", 6),
		PlayerSize:  envFloat("PLAYER_SIZE", 22),
		TickRate:    envInt("TICK_RATE", 30),
		IdleTimeout: envDuration("IDLE_TIMEOUT", 5*time.Minute),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Settings shapes the map/player tunables the way the wire protocol carries
// them.
func (c *Config) Settings() models.GameSettings {
	return models.GameSettings{
		PlayerSpeed: c.PlayerSpeed,
		PlayerSize:  c.PlayerSize,
		MapWidth:    c.MapWidth,
		MapHeight:   c.MapHeight,
	}
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring malformed env var", "key", key, "value", v)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("ignoring malformed env var", "key", key, "value", v)
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("ignoring malformed env var", "key", key, "value", v)
		return fallback
	}
	return d
}
