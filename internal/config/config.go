// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"frontoffice/internal/logger"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	Environment         string
	ServerHost          string
	ServerPort          string
	StorageBackend      string
	DataFile            string
	DatabaseURL         string
	BackupDirectory     string
	BackupRetentionDays int
	SessionTTL          time.Duration
	PlayerSeasonYear    int
	AllowedOrigin       string
}

//
// --- Utility Helpers ---
//

// Environment returns ENVIRONMENT, defaulting to dev.
func Environment() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}
	return env
}

// GetEnvBasedSetting reads BASE_DEV or BASE_PROD depending on ENVIRONMENT, then
// falls back to the bare BASE key.
func GetEnvBasedSetting(base string) string {
	if v := os.Getenv(fmt.Sprintf("%s_%s", base, strings.ToUpper(Environment()))); v != "" {
		return v
	}
	return os.Getenv(base)
}

func settingOrDefault(base, fallback string) string {
	if v := GetEnvBasedSetting(base); v != "" {
		return v
	}
	return fallback
}

func intSetting(base string, fallback int) int {
	raw := GetEnvBasedSetting(base)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		logger.LogWarn("Invalid %s: %q, using default %d", base, raw, fallback)
		return fallback
	}
	return n
}

// LogCurrentEnvironment logs which environment is running.
func LogCurrentEnvironment() {
	if Environment() == "dev" {
		logger.LogInfo("Running in development environment")
	} else {
		logger.LogInfo("Running in %s environment", Environment())
	}
}

//
// --- Loaders ---
//

// LoadEnv reads the .env file if present.
func LoadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		log.Printf("Could not determine working directory: %v", err)
	}

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found in %s. Using system environment variables.", wd)
	} else {
		log.Printf("Loaded environment variables from .env file in %s", wd)
	}
}

// LoggerConfig returns a logger.Config populated from the environment.
func LoggerConfig() logger.Config {
	return logger.Config{
		LogsDirectory: settingOrDefault("LOGS_DIRECTORY", "./logs"),
		LogFileFormat: settingOrDefault("LOG_FILE_FORMAT", "server_%s.log"),
		TimeZone:      settingOrDefault("TIME_ZONE", "America/Chicago"),
		Level:         settingOrDefault("LOG_LEVEL", "INFO"),
	}
}

// Load resolves every setting the server needs.
func Load() (Settings, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Settings{}, fmt.Errorf("getting working directory: %w", err)
	}

	s := Settings{
		Environment:         Environment(),
		ServerHost:          settingOrDefault("SERVER_HOST", "127.0.0.1"),
		ServerPort:          settingOrDefault("SERVER_PORT", "5051"),
		StorageBackend:      strings.ToLower(settingOrDefault("STORAGE_BACKEND", BackendFile)),
		DataFile:            settingOrDefault("DATA_FILE", filepath.Join(wd, "data", "db.json")),
		DatabaseURL:         GetEnvBasedSetting("DATABASE_URL"),
		BackupDirectory:     settingOrDefault("BACKUP_DIRECTORY", filepath.Join(wd, "data", "backup")),
		BackupRetentionDays: intSetting("BACKUP_RETENTION_DAYS", 14),
		SessionTTL:          time.Duration(intSetting("SESSION_TTL_MINUTES", 12*60)) * time.Minute,
		PlayerSeasonYear:    intSetting("PLAYER_SEASON_YEAR", 2026),
		AllowedOrigin:       GetEnvBasedSetting("ALLOWED_ORIGIN"),
	}

	switch s.StorageBackend {
	case BackendFile:
	case BackendSQLite:
		if s.DatabaseURL == "" {
			s.DatabaseURL = filepath.Join(wd, "data", "frontoffice.db")
		}
	case BackendMySQL, BackendPostgres:
		if s.DatabaseURL == "" {
			return Settings{}, fmt.Errorf("DATABASE_URL is required for the %s backend", s.StorageBackend)
		}
	default:
		return Settings{}, fmt.Errorf("unknown STORAGE_BACKEND %q", s.StorageBackend)
	}

	if s.AllowedOrigin == "" {
		logger.LogWarn("ALLOWED_ORIGIN not set, CORS headers will not be sent")
	}

	return s, nil
}

// Addr is the listen address.
func (s Settings) Addr() string {
	return s.ServerHost + ":" + s.ServerPort
}
