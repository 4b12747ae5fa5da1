package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Addr      string
	DBPath    string
	JWTSecret string

	// SMTP settings. If Host is empty, notifications are only logged.
	SMTPAddr     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
}

// Load reads configuration from the environment, loading a .env file first
// if one exists. Missing values fall back to defaults; the JWT secret may
// legitimately be empty, in which case the caller generates one.
func Load() *Config {
	// A missing .env file is fine; the environment is used as-is.
	_ = godotenv.Load()

	return &Config{
		Addr:         getEnv("KNJIZNICA_ADDR", ":8080"),
		DBPath:       getEnv("KNJIZNICA_DB", "knjiznica.sqlite3"),
		JWTSecret:    os.Getenv("KNJIZNICA_JWT_SECRET"),
		SMTPAddr:     os.Getenv("SMTP_ADDR"),
		SMTPFrom:     getEnv("SMTP_FROM", "library@localhost"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
