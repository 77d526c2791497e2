// Package config loads SentinelDB's process-wide configuration from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the engine's full runtime configuration.
type Config struct {
	Store     StoreConfig
	WAL       WALConfig
	Retention RetentionConfig
	Policy    PolicyConfig
	Bootstrap BootstrapConfig
	Log       LogConfig
}

// StoreConfig contains on-disk layout configuration.
type StoreConfig struct {
	DataDir string
}

// WALConfig contains write-ahead log configuration.
type WALConfig struct {
	Enabled  bool
	FileName string
}

// RetentionConfig contains the process-wide retention policy at startup.
type RetentionConfig struct {
	Mode    string // "full", "last_n", "last_t"
	Count   int    // for last_n
	Seconds int    // for last_t
}

// PolicyConfig contains the decision policy to use when no prior state
// exists to recover from.
type PolicyConfig struct {
	Default string // "dev_friendly", "safe_default", "strict"
}

// BootstrapConfig contains the optional declarative guard bootstrap file.
type BootstrapConfig struct {
	GuardsFile string
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Store: StoreConfig{
			DataDir: getEnvString("SENTINELDB_DATA_DIR", "./data"),
		},
		WAL: WALConfig{
			Enabled:  getEnvBool("SENTINELDB_WAL_ENABLED", true),
			FileName: getEnvString("SENTINELDB_WAL_FILE", "wal.log"),
		},
		Retention: RetentionConfig{
			Mode:    getEnvString("SENTINELDB_RETENTION_MODE", "full"),
			Count:   getEnvInt("SENTINELDB_RETENTION_COUNT", 0),
			Seconds: getEnvInt("SENTINELDB_RETENTION_SECONDS", 0),
		},
		Policy: PolicyConfig{
			Default: getEnvString("SENTINELDB_DECISION_POLICY", "safe_default"),
		},
		Bootstrap: BootstrapConfig{
			GuardsFile: getEnvString("SENTINELDB_GUARDS_FILE", ""),
		},
		Log: LogConfig{
			Level:  getEnvString("SENTINELDB_LOG_LEVEL", "info"),
			Format: getEnvString("SENTINELDB_LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate rejects configuration combinations the engine cannot act on.
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}

	switch c.Retention.Mode {
	case "full":
	case "last_n":
		if c.Retention.Count < 1 {
			return fmt.Errorf("retention count must be >= 1 for last_n mode, got %d", c.Retention.Count)
		}
	case "last_t":
		if c.Retention.Seconds < 1 {
			return fmt.Errorf("retention seconds must be >= 1 for last_t mode, got %d", c.Retention.Seconds)
		}
	default:
		return fmt.Errorf("invalid retention mode: %s (must be full, last_n, or last_t)", c.Retention.Mode)
	}

	validPolicies := map[string]bool{"dev_friendly": true, "safe_default": true, "strict": true}
	if !validPolicies[c.Policy.Default] {
		return fmt.Errorf("invalid decision policy: %s (must be dev_friendly, safe_default, or strict)", c.Policy.Default)
	}

	if c.Store.DataDir == "" {
		return fmt.Errorf("data directory must be specified")
	}

	return nil
}

// WALPath returns the write-ahead log path under the data directory.
func (c *Config) WALPath() string {
	return c.Store.DataDir + "/" + c.WAL.FileName
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
