// Package config loads process settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds settings shared by the server and the simulation CLI.
type Config struct {
	HTTPAddr   string
	DBDriver   string
	DBDSN      string
	SimLogFile string
	LogLevel   logrus.Level
	Sim        SimDefaults
}

// SimDefaults are the simulation parameters used when a caller does not set them.
type SimDefaults struct {
	Games              int
	Players            int
	HandSize           int
	Strategy           string
	FirstMoveSelection string
	Workers            int
	MaxTurns           int
	Seed               *uint64
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		HTTPAddr:   stringOr(getenv("HTTP_ADDR"), ":8080"),
		DBDriver:   stringOr(getenv("DB_DRIVER"), "sqlite3"),
		DBDSN:      stringOr(getenv("DB_DSN"), "./thegame.db"),
		SimLogFile: stringOr(getenv("SIM_LOG_FILE"), "sim.log"),
		Sim: SimDefaults{
			Strategy:           stringOr(getenv("SIM_STRATEGY"), "optimized"),
			FirstMoveSelection: stringOr(getenv("SIM_FIRST_MOVE"), "optimized"),
		},
	}

	level, err := logrus.ParseLevel(stringOr(getenv("LOG_LEVEL"), "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	ints := []struct {
		key string
		dst *int
		def int
	}{
		{"SIM_GAMES", &cfg.Sim.Games, 100},
		{"SIM_PLAYERS", &cfg.Sim.Players, 3},
		{"SIM_HAND_SIZE", &cfg.Sim.HandSize, 6},
		{"SIM_WORKERS", &cfg.Sim.Workers, 4},
		{"SIM_MAX_TURNS", &cfg.Sim.MaxTurns, 0},
	}
	for _, i := range ints {
		if *i.dst, err = intOr(getenv(i.key), i.def); err != nil {
			return Config{}, fmt.Errorf("%s: %w", i.key, err)
		}
	}

	if s := strings.TrimSpace(getenv("SIM_SEED")); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("SIM_SEED: %w", err)
		}
		cfg.Sim.Seed = &seed
	}
	return cfg, nil
}

// NewLogger returns a text logger on stderr at the configured level.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

func stringOr(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func intOr(v string, def int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
