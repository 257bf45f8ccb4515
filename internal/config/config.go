package config

import (
	"os"
	"time"
)

type Config struct {
	ListenAddr          string
	DBPath              string
	StatementPath       string
	LogLevel            string
	LogFile             string
	LogFormat           string
	OverdueScanInterval time.Duration
}

func Load() *Config {
	return &Config{
		ListenAddr:          getEnv("LISTEN_ADDR", ":8080"),
		DBPath:              getEnv("DB_PATH", "bank_system.db"),
		StatementPath:       getEnv("STATEMENT_PATH", "statements"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFile:             getEnv("LOG_FILE", ""),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		OverdueScanInterval: getDuration("OVERDUE_SCAN_INTERVAL", time.Hour),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// getDuration parses key as a time.Duration, falling back to defaultVal when
// the variable is unset, malformed or not positive.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
