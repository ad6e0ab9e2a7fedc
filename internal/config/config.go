package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabaseFile string
	LogLevel     string

	// S3 (scan archive)
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Sessions
	JWTSecret  string
	SessionTTL time.Duration

	// Upload limits and pricing
	MaxFileSize  int64
	CostPerSheet float64
}

func Load() (*Config, error) {
	// A missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseFile:      getEnv("DATABASE_FILE", "data/grader.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		S3Endpoint:        getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "answer-sheets"),
		S3UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-3-pro-preview"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		MaxFileSize:       3 * 1024 * 1024,
		CostPerSheet:      0.50,
	}

	// The API key may be empty: evaluation requests then fail with a
	// configuration error and a remediation hint instead of the server
	// refusing to start.
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ttlHours, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "72"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}
	cfg.SessionTTL = time.Duration(ttlHours) * time.Hour

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
