package cmd

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "/uploads", cfg.UploadBaseURL)
	assert.Equal(t, "0 * * * * *", cfg.ReconcileSchedule)
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=shoecare sslmode=disable", cfg.DSN())

	rate, err := cfg.LoyaltyRateDecimal()
	require.NoError(t, err)
	assert.Equal(t, "0.01", rate.String())
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Store: "mongo", JWTSecret: " ", LoyaltyRate: "-0.5", LogLevel: "loud"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "LOYALTY_RATE")
	assert.Contains(t, err.Error(), "LOG_LEVEL")

	cfg = Config{Store: StoreMemory, JWTSecret: "x", LoyaltyRate: "0.02", LogLevel: "debug"}
	require.NoError(t, cfg.Validate())
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLogLevel("verbose")
	require.Error(t, err)
}
