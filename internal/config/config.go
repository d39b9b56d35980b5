package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds application configuration
type Config struct {
	AppName        string
	Version        string
	Port           string
	DBConn         string
	LogLevel       string
	SepayAPIKey    string
	AllowedOrigins []string

	// SMTP settings for payment notifications. Notifications are disabled
	// when SMTPHost or NotifyEmail is empty.
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	NotifyEmail  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		AppName:        getEnv("APP_NAME", "payment-service"),
		Version:        getEnv("VERSION", "0.1.0"),
		Port:           getEnv("PORT", "8080"),
		DBConn:         getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=payments sslmode=disable"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		SepayAPIKey:    getEnv("SEPAY_API_KEY", ""),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		NotifyEmail:    getEnv("NOTIFY_EMAIL", ""),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.SepayAPIKey == "" {
		return nil, fmt.Errorf("SEPAY_API_KEY is required")
	}

	return cfg, nil
}

// NotificationsEnabled reports whether SMTP notifications are configured
func (c *Config) NotificationsEnabled() bool {
	return c.SMTPHost != "" && c.NotifyEmail != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
