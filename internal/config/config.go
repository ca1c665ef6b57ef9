package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

// AttendanceConfig holds reconciliation settings
type AttendanceConfig struct {
	UTCOffset          time.Duration
	GracePeriodMinutes int
	BatchWorkers       int
	ReconcileInterval  time.Duration
	ReconcileHour      int
}

func Load() (*Config, error) {
	// .env is optional; deployed environments set variables directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Error loading .env file", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance configuration
	utcOffset, err := time.ParseDuration(getEnv("ATTENDANCE_UTC_OFFSET", "8h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_UTC_OFFSET: %w", err)
	}

	gracePeriod, err := strconv.Atoi(getEnv("ATTENDANCE_GRACE_PERIOD_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_GRACE_PERIOD_MINUTES: %w", err)
	}

	batchWorkers, err := strconv.Atoi(getEnv("ATTENDANCE_BATCH_WORKERS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_BATCH_WORKERS: %w", err)
	}

	reconcileInterval, err := time.ParseDuration(getEnv("ATTENDANCE_RECONCILE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_RECONCILE_INTERVAL: %w", err)
	}

	reconcileHour, err := strconv.Atoi(getEnv("ATTENDANCE_RECONCILE_HOUR", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_RECONCILE_HOUR: %w", err)
	}

	config.Attendance = AttendanceConfig{
		UTCOffset:          utcOffset,
		GracePeriodMinutes: gracePeriod,
		BatchWorkers:       batchWorkers,
		ReconcileInterval:  reconcileInterval,
		ReconcileHour:      reconcileHour,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.MaxConns < 1 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS and DB_MAX_CONNS must satisfy 0 <= min <= max, max >= 1")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.UTCOffset < -12*time.Hour || c.Attendance.UTCOffset > 14*time.Hour {
		return fmt.Errorf("ATTENDANCE_UTC_OFFSET must be between -12h and 14h")
	}
	if c.Attendance.GracePeriodMinutes < 0 {
		return fmt.Errorf("ATTENDANCE_GRACE_PERIOD_MINUTES must not be negative")
	}
	if c.Attendance.BatchWorkers < 1 {
		return fmt.Errorf("ATTENDANCE_BATCH_WORKERS must be at least 1")
	}
	if c.Attendance.ReconcileInterval <= 0 {
		return fmt.Errorf("ATTENDANCE_RECONCILE_INTERVAL must be positive")
	}
	if c.Attendance.ReconcileHour < 0 || c.Attendance.ReconcileHour > 23 {
		return fmt.Errorf("ATTENDANCE_RECONCILE_HOUR must be between 0 and 23")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
