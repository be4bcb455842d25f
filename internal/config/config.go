// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the portal client.
type Config struct {
	// Host Configuration
	AppMode       string        `mapstructure:"APP_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"-"` // SERVER_TIMEOUT_SECONDS

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Remote API
	APIBaseURL string        `mapstructure:"API_BASE_URL"`
	APITimeout time.Duration `mapstructure:"-"` // API_TIMEOUT_SECONDS

	// Local session storage
	SessionDBPath string `mapstructure:"SESSION_DB_PATH"`
	SessionKey    string `mapstructure:"SESSION_KEY"`

	// Firebase Configuration
	FirebaseAPIKey                string `mapstructure:"FIREBASE_API_KEY"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`

	// Google OAuth (federated sign-in)
	GoogleClientID     string        `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackAddr string        `mapstructure:"GOOGLE_CALLBACK_ADDR"`
	GoogleCallbackPath string        `mapstructure:"GOOGLE_CALLBACK_PATH"`
	FederatedTimeout   time.Duration `mapstructure:"-"` // FEDERATED_TIMEOUT_SECONDS

	// Screens
	NavigationDelay      time.Duration `mapstructure:"-"` // NAVIGATION_DELAY_SECONDS
	AvatarPlaceholderURL string        `mapstructure:"AVATAR_PLACEHOLDER_URL"`
	CORSAllowedOrigins   []string      `mapstructure:"-"` // CORS_ALLOWED_ORIGINS

	// Cron Jobs
	TokenRefreshSchedule string        `mapstructure:"TOKEN_REFRESH_SCHEDULE"`
	TokenRefreshLeeway   time.Duration `mapstructure:"-"` // TOKEN_REFRESH_LEEWAY_MINUTES
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault("APP_MODE", "debug")
	v.SetDefault("SERVER_HOST", "127.0.0.1")
	v.SetDefault("SERVER_PORT", "3333")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("API_BASE_URL", "http://localhost:3000")
	v.SetDefault("API_TIMEOUT_SECONDS", 30)

	v.SetDefault("SESSION_DB_PATH", "portal_session.db")
	v.SetDefault("SESSION_KEY", "@portal:session")

	v.SetDefault("FIREBASE_API_KEY", "")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "") // Optional, enables ID token verification

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_CALLBACK_ADDR", "127.0.0.1:8765")
	v.SetDefault("GOOGLE_CALLBACK_PATH", "/oauth/google/callback")
	v.SetDefault("FEDERATED_TIMEOUT_SECONDS", 300)

	v.SetDefault("NAVIGATION_DELAY_SECONDS", 5)
	v.SetDefault("AVATAR_PLACEHOLDER_URL", "https://ui-avatars.com/api/")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("TOKEN_REFRESH_SCHEDULE", "@every 5m")
	v.SetDefault("TOKEN_REFRESH_LEEWAY_MINUTES", 10)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.APITimeout = time.Duration(v.GetInt("API_TIMEOUT_SECONDS")) * time.Second
	cfg.FederatedTimeout = time.Duration(v.GetInt("FEDERATED_TIMEOUT_SECONDS")) * time.Second
	cfg.NavigationDelay = time.Duration(v.GetInt("NAVIGATION_DELAY_SECONDS")) * time.Second
	cfg.TokenRefreshLeeway = time.Duration(v.GetInt("TOKEN_REFRESH_LEEWAY_MINUTES")) * time.Minute

	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("FATAL: API_BASE_URL is not set")
	}
	if _, err := url.ParseRequestURI(c.APIBaseURL); err != nil {
		return fmt.Errorf("FATAL: API_BASE_URL (%s) is not a valid URL: %w", c.APIBaseURL, err)
	}
	if c.NavigationDelay < 0 {
		return fmt.Errorf("FATAL: NAVIGATION_DELAY_SECONDS must not be negative")
	}
	if c.FirebaseServiceAccountKeyPath != "" {
		if _, err := os.Stat(c.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
			return fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", c.FirebaseServiceAccountKeyPath)
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
