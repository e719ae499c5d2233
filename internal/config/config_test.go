package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetenv(t, "PORT", "DATABASE_URL", "GRACE_WINDOW", "SWEEP_SCHEDULE", "TIMEZONE",
		"AUTO_MIGRATE", "AVAILABILITY_LOOP_LIMIT", "RATE_LIMIT_RPS")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3000", c.Addr())
	assert.Equal(t, 15*time.Minute, c.GraceWindow)
	assert.Equal(t, "@every 10m", c.SweepSchedule)
	assert.Equal(t, 10000, c.AvailabilityLoopLimit)
	assert.True(t, c.AutoMigrate)
	assert.Zero(t, c.RateLimitRPS)

	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("GRACE_WINDOW", "5m")
	t.Setenv("TIMEZONE", "Asia/Kolkata")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", c.Addr())
	assert.Equal(t, 5*time.Minute, c.GraceWindow)
	assert.Equal(t, 2.5, c.RateLimitRPS)

	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("GRACE_WINDOW", "0s")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("GRACE_WINDOW", "soon")
	_, err = Load()
	assert.Error(t, err)
}
