// Package config loads estimator configuration from the environment,
// with an optional .env file picked up from the working directory.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the estimator shell
type Config struct {
	Store     StoreConfig
	Rules     RulesConfig
	Numbering NumberingConfig
}

// StoreConfig selects and locates the record store backend
type StoreConfig struct {
	// Driver is one of "sheet", "sqlite" or "memory"
	Driver string
	// Path is the backing file of the sheet or sqlite store
	Path string
	// BackupDir, when set, receives a mirror copy of the sheet
	// after every successful append
	BackupDir string
}

// RulesConfig locates the configuration tables
type RulesConfig struct {
	// MachinesCSV is the available cylinder/paper roll size table
	MachinesCSV string
	// RulesCSV overrides the built-in material rules when set
	RulesCSV string
}

// NumberingConfig controls job number formatting
type NumberingConfig struct {
	SequenceWidth int
}

var validDrivers = map[string]bool{
	"sheet":  true,
	"sqlite": true,
	"memory": true,
}

// Load reads configuration from the environment and returns a
// validated Config. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Store: StoreConfig{
			Driver:    getEnv("RAWMAT_STORE_DRIVER", "sheet"),
			Path:      getEnv("RAWMAT_STORE_PATH", "jobs.csv"),
			BackupDir: os.Getenv("RAWMAT_BACKUP_DIR"),
		},
		Rules: RulesConfig{
			MachinesCSV: os.Getenv("RAWMAT_MACHINES_CSV"),
			RulesCSV:    os.Getenv("RAWMAT_RULES_CSV"),
		},
	}

	if !validDrivers[cfg.Store.Driver] {
		return nil, fmt.Errorf("invalid RAWMAT_STORE_DRIVER: %q (expected: sheet, sqlite, or memory)", cfg.Store.Driver)
	}
	if cfg.Store.Driver != "memory" && cfg.Store.Path == "" {
		return nil, fmt.Errorf("RAWMAT_STORE_PATH cannot be empty for the %s driver", cfg.Store.Driver)
	}

	width, err := getEnvInt("RAWMAT_SEQUENCE_WIDTH", 7)
	if err != nil {
		return nil, err
	}
	if width < 1 || width > 12 {
		return nil, fmt.Errorf("RAWMAT_SEQUENCE_WIDTH must be between 1 and 12, got %d", width)
	}
	cfg.Numbering.SequenceWidth = width

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return parsed, nil
}
