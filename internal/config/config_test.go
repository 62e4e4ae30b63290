package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookup(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, "./thegame.db", cfg.DBDSN)
	assert.Equal(t, "sim.log", cfg.SimLogFile)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, SimDefaults{
		Games:              100,
		Players:            3,
		HandSize:           6,
		Strategy:           "optimized",
		FirstMoveSelection: "optimized",
		Workers:            4,
	}, cfg.Sim)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"HTTP_ADDR":      "127.0.0.1:9000",
		"DB_DRIVER":      "pgx",
		"DB_DSN":         "postgres://localhost/thegame",
		"LOG_LEVEL":      "debug",
		"SIM_GAMES":      " 500 ",
		"SIM_PLAYERS":    "5",
		"SIM_STRATEGY":   "greedy",
		"SIM_FIRST_MOVE": "first_player",
		"SIM_MAX_TURNS":  "200",
		"SIM_SEED":       "42",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 500, cfg.Sim.Games)
	assert.Equal(t, 5, cfg.Sim.Players)
	assert.Equal(t, "greedy", cfg.Sim.Strategy)
	assert.Equal(t, "first_player", cfg.Sim.FirstMoveSelection)
	assert.Equal(t, 200, cfg.Sim.MaxTurns)
	require.NotNil(t, cfg.Sim.Seed)
	assert.Equal(t, uint64(42), *cfg.Sim.Seed)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := map[string]string{
		"SIM_GAMES":     "many",
		"SIM_HAND_SIZE": "6.5",
		"SIM_SEED":      "-1",
		"LOG_LEVEL":     "loud",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := FromEnv(lookup(map[string]string{key: value}))
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := Config{LogLevel: logrus.WarnLevel}.NewLogger()
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}
