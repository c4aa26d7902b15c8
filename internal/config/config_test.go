package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CFG_STR", "value")
	t.Setenv("CFG_INT", "42")
	t.Setenv("CFG_BAD_INT", "x")
	t.Setenv("CFG_DUR", "3s")
	t.Setenv("CFG_LIST", " a, ,b ")

	assert.Equal(t, "value", GetEnv("CFG_STR", "def"))
	assert.Equal(t, "def", GetEnv("CFG_MISSING", "def"))
	assert.Equal(t, 42, GetEnvInt("CFG_INT", 1))
	assert.Equal(t, 1, GetEnvInt("CFG_BAD_INT", 1))
	assert.Equal(t, 3*time.Second, GetEnvDuration("CFG_DUR", time.Second))
	assert.Equal(t, []string{"a", "b"}, GetEnvList("CFG_LIST", nil))
	assert.Equal(t, []string{"z"}, GetEnvList("CFG_MISSING", []string{"z"}))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RECHARGE_POLL_ATTEMPTS", "")
	t.Setenv("CURRENCY", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 8, cfg.RechargePollAttempts)
	assert.Equal(t, 2*time.Second, cfg.RechargePollInterval)
	assert.Equal(t, "COP", cfg.Currency)
}

func TestValidate(t *testing.T) {
	cfg := &Config{JWTSecret: "jwt", WompiEventsSecret: "events", WompiIntegritySecret: "integrity"}
	assert.NoError(t, cfg.Validate())

	cfg.JWTSecret = ""
	cfg.WompiEventsSecret = " "
	err := cfg.Validate()
	assert.EqualError(t, err, "missing required configuration: JWT_SECRET, WOMPI_EVENTS_SECRET")

	assert.Error(t, (&Config{}).Validate())
}
