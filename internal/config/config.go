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

	"sttbackend/internal/logger"
)

// Variables available everywhere
var (
	baseDir         string
	dataDirectory   string
	databasePath    string
	backupDirectory string
	logsDirectory   string
	seedFilePath    string

	adminEmail    string
	adminSecret   string
	sessionSecret string
	sessionTTL    time.Duration

	// Exported settings
	LogFileFormat string
)

const (
	defaultAdminEmail  = "admin@stt.com"
	defaultAdminSecret = "admin123"
	defaultSessionTTL  = 24 * time.Hour
)

//
// --- Utility Helpers ---
//

// Helper: get a setting based on ENVIRONMENT (dev or prod)
func GetEnvBasedSetting(base string) string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}
	return os.Getenv(fmt.Sprintf("%s_%s", base, strings.ToUpper(env)))
}

// Helper: log which environment is running
func LogCurrentEnvironment() {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	if env == "dev" {
		logger.LogInfo("Running in development environment")
	} else {
		logger.LogInfo("Running in production environment")
	}
}

//
// --- Loaders ---
//

// LoadEnv reads .env file
func LoadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		log.Printf("Could not determine working directory: %v", err)
	} else {
		log.Printf("Current working directory: %s", wd)
	}

	err = godotenv.Load(".env")
	if err != nil {
		log.Printf("No .env file found in %s. Using system environment variables.", wd)
	} else {
		log.Printf("Loaded environment variables from .env file in %s", wd)
	}
}

// LoggerConfig returns a logger.Config struct populated from environment
func LoggerConfig() logger.Config {
	logDir := GetEnvBasedSetting("LOGS_DIRECTORY")
	if logDir == "" {
		logDir = "./logs"
	}

	logFormat := GetEnvBasedSetting("LOG_FILE_FORMAT")
	if logFormat == "" {
		logFormat = "./logs/server_%s.log"
	}

	timezone := os.Getenv("TIME_ZONE")
	if timezone == "" {
		timezone = "Local"
	}

	return logger.Config{
		LogsDirectory: logDir,
		LogFileFormat: logFormat,
		TimeZone:      timezone,
	}
}

// ConfigurePaths sets up folders and paths
func ConfigurePaths() {
	wd, err := os.Getwd()
	if err != nil {
		logger.LogFatal("Failed to get working directory: %v", err)
	}
	baseDir = wd

	dataDir := GetEnvBasedSetting("DATA_DIRECTORY")
	if dataDir != "" {
		dataDirectory = dataDir
	} else {
		dataDirectory = filepath.Join(baseDir, "data")
	}

	dbPath := GetEnvBasedSetting("DATABASE_PATH")
	if dbPath != "" {
		databasePath = dbPath
	} else {
		databasePath = filepath.Join(dataDirectory, "merchant.db")
	}

	backupDir := GetEnvBasedSetting("BACKUP_DIRECTORY")
	if backupDir != "" {
		backupDirectory = backupDir
	} else {
		backupDirectory = filepath.Join(dataDirectory, "backup")
	}

	logsDir := GetEnvBasedSetting("LOGS_DIRECTORY")
	if logsDir != "" {
		logsDirectory = logsDir
	} else {
		logsDirectory = filepath.Join(baseDir, "logs")
	}

	seedFile := GetEnvBasedSetting("SEED_FILE")
	if seedFile != "" {
		seedFilePath = seedFile
	} else {
		seedFilePath = filepath.Join(dataDirectory, "sample_catalog.json")
	}

	// Set derived paths
	LogFileFormat = filepath.Join(logsDirectory, "server_%s.log")
}

// LoadAdminConfig sets up the reserved platform-admin identity
func LoadAdminConfig() {
	adminEmail = os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = defaultAdminEmail
	}

	adminSecret = os.Getenv("ADMIN_SECRET")
	if adminSecret == "" {
		adminSecret = defaultAdminSecret
		logger.LogWarn("ADMIN_SECRET not set, using built-in default - change this in production")
	}
}

// LoadSessionConfig sets up session token signing
func LoadSessionConfig() {
	sessionSecret = os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = "dev-session-secret"
		logger.LogWarn("SESSION_SECRET not set, using built-in dev secret - change this in production")
	}

	sessionTTL = defaultSessionTTL
	ttlStr := os.Getenv("SESSION_TTL_HOURS")
	if ttlStr != "" {
		hours, err := strconv.Atoi(ttlStr)
		if err != nil || hours <= 0 {
			logger.LogWarn("Invalid SESSION_TTL_HOURS: %s, using default %v", ttlStr, defaultSessionTTL)
		} else {
			sessionTTL = time.Duration(hours) * time.Hour
		}
	}
}

//
// --- Getters (exported) ---
//

func DataDirectory() string {
	return dataDirectory
}

func DatabasePath() string {
	return databasePath
}

func BackupDirectory() string {
	return backupDirectory
}

func LogsDirectory() string {
	return logsDirectory
}

func SeedFilePath() string {
	return seedFilePath
}

func AdminEmail() string {
	return adminEmail
}

func AdminSecret() string {
	return adminSecret
}

func SessionSecret() string {
	return sessionSecret
}

func SessionTTL() time.Duration {
	return sessionTTL
}
