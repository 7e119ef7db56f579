package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds application configuration values.
type Config struct {
	Secret         string
	DatabaseDSN    string
	HTTPPort       string
	AllowedOrigins []string
	Backup         BackupConfig
	Debug          bool
}

// BackupConfig controls the scheduled snapshot job. An empty Schedule
// disables it.
type BackupConfig struct {
	Dir      string
	Schedule string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "gastrade.db"
	}

	origins := []string{"*"}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins = []string{v}
	}

	backupDir := os.Getenv("BACKUP_DIR")
	if backupDir == "" {
		backupDir = "backups"
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	return Config{
		Secret:         secret,
		DatabaseDSN:    dsn,
		HTTPPort:       port,
		AllowedOrigins: origins,
		Backup: BackupConfig{
			Dir:      backupDir,
			Schedule: os.Getenv("BACKUP_SCHEDULE"),
		},
		Debug: os.Getenv("DEBUG") == "1",
	}
}
