package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Annany2002/nebula-docstore/internal/logger"
	"github.com/joho/godotenv"
)

var (
	customLog = logger.NewLogger()
)

// Supported document store drivers
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverJSON   = "json"
)

// Config holds application configuration values
type Config struct {
	ServerPort    string
	JWTSecret     string
	JWTExpiration time.Duration

	DataDir     string
	StoreDriver string
	StoreFile   string

	CORSAllowedOrigins []string
	RateLimitPerMinute int
	RowsDefaultLimit   int
}

// StorePath returns the full path of the snapshot file.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, c.StoreFile)
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	// Attempt to load .env file if in development environment (skip in production)
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	port := getEnv("SERVER_PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "")
	jwtExpHoursStr := getEnv("JWT_EXPIRATION_HOURS", "24")
	dataDir := getEnv("DATA_DIRECTORY", "data")
	driver := strings.ToLower(getEnv("STORE_DRIVER", StoreDriverSQLite))

	// Critical: Ensure JWT Secret is set
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable must be set")
	}
	if jwtSecret == "!!replace_this_with_a_real_secret_key!!" {
		customLog.Warnln("WARNING: JWT_SECRET is set to the default placeholder!")
	}

	var defaultFile string
	switch driver {
	case StoreDriverSQLite:
		defaultFile = "maindb.sqlite"
	case StoreDriverJSON:
		defaultFile = "maindb.json"
	default:
		return nil, errors.New("STORE_DRIVER must be one of 'sqlite' or 'json'")
	}
	storeFile := getEnv("STORE_FILE", defaultFile)

	jwtExpHours, err := strconv.Atoi(jwtExpHoursStr)
	if err != nil || jwtExpHours <= 0 {
		customLog.Warnf("Invalid JWT_EXPIRATION_HOURS '%s'. Using default 24h. Error: %v", jwtExpHoursStr, err)
		jwtExpHours = 24
	}

	cfg := &Config{
		ServerPort:         strings.TrimPrefix(port, ":"),
		JWTSecret:          jwtSecret,
		JWTExpiration:      time.Hour * time.Duration(jwtExpHours),
		DataDir:            dataDir,
		StoreDriver:        driver,
		StoreFile:          storeFile,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120, 0),
		RowsDefaultLimit:   getEnvInt("ROWS_DEFAULT_LIMIT", 20, 1),
	}

	customLog.Printf("Configuration loaded successfully. Port: %s, Store: %s (%s), JWT Exp: %v",
		cfg.ServerPort, cfg.StorePath(), cfg.StoreDriver, cfg.JWTExpiration)
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt reads an integer variable no smaller than floor, falling back on
// parse errors.
func getEnvInt(key string, fallback, floor int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < floor {
		customLog.Warnf("Invalid %s '%s'. Using default %d.", key, raw, fallback)
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
