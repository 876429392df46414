package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMemory    = "memory"
	DriverMySQL     = "mysql"
	DriverFirestore = "firestore"
)

// Config is read from the environment after godotenv has loaded .env.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	JWTSecret    string
	TokenTTL     time.Duration
	AuthUsername string
	AuthPassword string

	StoreDriver         string
	DBDSN               string
	FirestoreCollection string

	FirebaseCredentials string
	FirebaseProjectID   string
	FCMTopic            string

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string

	SeedDemoData   bool
	ReportTimezone string
}

// Load membaca semua konfigurasi dari environment, dengan default
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret:    getEnv("JWT_SECRET", "rahasia_dapur_medicare"), // Fallback kalau .env lupa diisi
		AuthUsername: getEnv("AUTH_USERNAME", "admin"),
		AuthPassword: getEnv("AUTH_PASSWORD", "admin"),

		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		DBDSN:               os.Getenv("DB_DSN"),
		FirestoreCollection: getEnv("FIRESTORE_COLLECTION", "patients"),

		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS"),
		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FCMTopic:            os.Getenv("FCM_TOPIC"),

		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		ReportTimezone: getEnv("REPORT_TIMEZONE", "Local"),
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	if cfg.SeedDemoData, err = strconv.ParseBool(getEnv("SEED_DEMO_DATA", strconv.FormatBool(cfg.IsDev()))); err != nil {
		return nil, fmt.Errorf("SEED_DEMO_DATA: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate refuses configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverMySQL:
		if c.DBDSN == "" {
			return errors.New("DB_DSN is required when STORE_DRIVER=mysql")
		}
	case DriverFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required when STORE_DRIVER=firestore")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be memory, mysql or firestore, got %q", c.StoreDriver)
	}

	if c.FCMTopic != "" && c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required when FCM_TOPIC is set")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if !c.IsDev() && c.JWTSecret == "rahasia_dapur_medicare" {
		return errors.New("JWT_SECRET must be set outside development")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the timezone that defines "today" for reports and stats.
func (c *Config) Location() (*time.Location, error) {
	if c.ReportTimezone == "" || c.ReportTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("REPORT_TIMEZONE: %w", err)
	}
	return loc, nil
}

// UsesFirebase reports whether a firebase app has to be initialised.
func (c *Config) UsesFirebase() bool {
	return c.StoreDriver == DriverFirestore || c.FCMTopic != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
