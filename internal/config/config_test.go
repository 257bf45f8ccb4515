package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.StatementPath)
	assert.Positive(t, cfg.OverdueScanInterval)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/bank.db")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("OVERDUE_SCAN_INTERVAL", "15m")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/bank.db", cfg.DBPath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 15*time.Minute, cfg.OverdueScanInterval)
}

func TestLoadBadInterval(t *testing.T) {
	for _, v := range []string{"soon", "-5m", "0s"} {
		t.Setenv("OVERDUE_SCAN_INTERVAL", v)
		assert.Equal(t, time.Hour, Load().OverdueScanInterval, v)
	}
}
