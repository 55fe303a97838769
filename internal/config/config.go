package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// devJWTSecret is used only when JWT_SECRET is unset; Load reports it via Warnings.
const devJWTSecret = "ourtasker-dev-secret-change-me"

type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	HTTPAddr    string
	CORSOrigins []string

	JWTSecret []byte
	JWTTTL    time.Duration

	LogLevel  string
	LogFormat string

	AIRatePerMinute int
	AIRateBurst     int

	GoogleCredentialsFile string
	SlackTimeout          time.Duration

	// Warnings collects non-fatal problems found while loading.
	Warnings []string
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests need not touch the process env.
func FromEnv(getenv func(string) string) (*Config, error) {
	c := &Config{
		DBHost:     getenv("DB_HOST"),
		DBUser:     getenv("DB_USER"),
		DBPassword: getenv("DB_PASSWORD"),
		DBName:     getenv("DB_NAME"),
		DBSSLMode:  orDefault(getenv("DB_SSLMODE"), "disable"),

		HTTPAddr:    orDefault(getenv("HTTP_ADDR"), ":8080"),
		CORSOrigins: splitList(orDefault(getenv("CORS_ALLOWED_ORIGINS"), "*")),

		LogLevel:  orDefault(getenv("LOG_LEVEL"), "info"),
		LogFormat: orDefault(getenv("LOG_FORMAT"), "json"),

		GoogleCredentialsFile: getenv("GOOGLE_CREDENTIALS_FILE"),
	}

	var err error
	if c.DBPort, err = intVar(getenv, "DB_PORT", 5432); err != nil {
		return nil, err
	}
	ttlHours, err := intVar(getenv, "JWT_TTL_HOURS", 168)
	if err != nil {
		return nil, err
	}
	c.JWTTTL = time.Duration(ttlHours) * time.Hour

	if c.AIRatePerMinute, err = intVar(getenv, "AI_RATE_PER_MINUTE", 30); err != nil {
		return nil, err
	}
	if c.AIRateBurst, err = intVar(getenv, "AI_RATE_BURST", 5); err != nil {
		return nil, err
	}
	slackSeconds, err := intVar(getenv, "SLACK_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	c.SlackTimeout = time.Duration(slackSeconds) * time.Second

	secret := getenv("JWT_SECRET")
	if secret == "" {
		secret = devJWTSecret
		c.Warnings = append(c.Warnings, "JWT_SECRET not set, using development secret")
	}
	c.JWTSecret = []byte(secret)

	return c, nil
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
	}
	return n, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
