// Package config loads and validates the service configuration from the
// environment
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment is the deployment stage
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

// DefaultCORSOrigins are the browser origins allowed when CORS_ALLOWED_ORIGINS is unset
const DefaultCORSOrigins = "http://localhost:3000,https://kairomed.vercel.app"

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes
	ServiceName       string

	DatabaseURL         string
	DBMaxConns          int
	DBMinConns          int
	SimilarityThreshold float64

	GeminiAPIKey          string
	GeminiModel           string
	AITimeout             time.Duration
	UnknownMedicinePolicy string

	CORSAllowedOrigins []string
	StoreCheckInterval time.Duration
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	databaseURL := getEnvWithDefault("DATABASE_URL", os.Getenv("SUPABASE_DB_URL"))

	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               Environment(strings.ToLower(getEnvWithDefault("ENV", "dev"))),
		LogLevel:          strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 65536),      // 64KB
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB
		ServiceName:       getEnvWithDefault("SERVICE_NAME", "medicine-info-api"),

		DatabaseURL:         strings.TrimSpace(databaseURL),
		DBMaxConns:          getIntEnvWithDefault("DB_MAX_CONNS", 10),
		DBMinConns:          getIntEnvWithDefault("DB_MIN_CONNS", 1),
		SimilarityThreshold: getFloatEnvWithDefault("SIMILARITY_THRESHOLD", 0.2),

		GeminiAPIKey:          strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:           getEnvWithDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		AITimeout:             getDurationEnvWithDefault("AI_TIMEOUT", 20*time.Second),
		UnknownMedicinePolicy: strings.ToLower(getEnvWithDefault("UNKNOWN_MEDICINE_POLICY", "degrade")),

		CORSAllowedOrigins: splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", DefaultCORSOrigins)),
		StoreCheckInterval: getDurationEnvWithDefault("STORE_CHECK_INTERVAL", time.Minute),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ListenAddr returns the host:port the HTTP server binds to
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Address, c.Port)
}

// AIEnabled reports whether a Gemini credential is configured
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validateDatabaseURL(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	if err := validatePoolSize(cfg.DBMinConns, cfg.DBMaxConns); err != nil {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS: %w", err)
	}

	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		return fmt.Errorf("invalid SIMILARITY_THRESHOLD: must be in (0, 1], got: %v", cfg.SimilarityThreshold)
	}

	if err := validatePositiveDuration(cfg.AITimeout, "AI_TIMEOUT"); err != nil {
		return fmt.Errorf("invalid AI_TIMEOUT: %w", err)
	}

	if cfg.UnknownMedicinePolicy != "degrade" && cfg.UnknownMedicinePolicy != "strict" {
		return fmt.Errorf("invalid UNKNOWN_MEDICINE_POLICY: must be degrade or strict, got: %s", cfg.UnknownMedicinePolicy)
	}

	if err := validateOrigins(cfg.CORSAllowedOrigins); err != nil {
		return fmt.Errorf("invalid CORS_ALLOWED_ORIGINS: %w", err)
	}

	if err := validatePositiveDuration(cfg.StoreCheckInterval, "STORE_CHECK_INTERVAL"); err != nil {
		return fmt.Errorf("invalid STORE_CHECK_INTERVAL: %w", err)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress accepts localhost, loopback, private and unspecified
// addresses. Containers bind 0.0.0.0.
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env Environment) error {
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction, EnvTest:
		return nil
	case "":
		return fmt.Errorf("ENV cannot be empty")
	}
	return fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", env)
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 {
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 {
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// validateDatabaseURL requires a postgres URL or key/value DSN
func validateDatabaseURL(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL (or SUPABASE_DB_URL) is required")
	}

	if !strings.Contains(dsn, "://") {
		if strings.Contains(dsn, "=") {
			return nil
		}
		return fmt.Errorf("DATABASE_URL must be a postgres URL or key=value connection string")
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL")
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL scheme must be postgres or postgresql, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("DATABASE_URL must include a host")
	}

	return nil
}

func validatePoolSize(minConns, maxConns int) error {
	if maxConns < 1 || maxConns > 100 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 100, got: %d", maxConns)
	}
	if minConns < 0 || minConns > maxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS, got: %d", minConns)
	}
	return nil
}

func validatePositiveDuration(d time.Duration, configName string) error {
	if d <= 0 {
		return fmt.Errorf("%s must be a positive duration, got: %s", configName, d)
	}
	return nil
}

// validateOrigins requires absolute http(s) origins or the "*" wildcard
func validateOrigins(origins []string) error {
	if len(origins) == 0 {
		return fmt.Errorf("at least one origin is required")
	}

	for _, origin := range origins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("origin must be an absolute http(s) URL, got: %s", origin)
		}
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getFloatEnvWithDefault returns 0 for unparsable values so validation rejects them
func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

// getDurationEnvWithDefault accepts Go durations ("20s") or plain seconds ("20").
// Unparsable values yield 0.
func getDurationEnvWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, strings.TrimRight(item, "/"))
		}
	}
	return items
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"SERVICE_NAME",
		"DATABASE_URL",
		"SUPABASE_DB_URL",
		"DB_MAX_CONNS",
		"DB_MIN_CONNS",
		"SIMILARITY_THRESHOLD",
		"GEMINI_API_KEY",
		"GEMINI_MODEL",
		"AI_TIMEOUT",
		"UNKNOWN_MEDICINE_POLICY",
		"CORS_ALLOWED_ORIGINS",
		"STORE_CHECK_INTERVAL",
	}
}
