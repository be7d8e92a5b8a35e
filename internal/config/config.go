// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Image storage backends.
const (
	ImageBackendFS = "fs"
	ImageBackendS3 = "s3"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// PublicBaseURL is the externally visible origin of this server, without
	// a trailing slash. Image URLs of the fs backend are built from it.
	PublicBaseURL string

	// MaxUploadBytes caps request bodies. Defaults to 5 MiB.
	MaxUploadBytes int64

	Auth   AuthConfig
	Images ImageConfig
}

// AuthConfig holds the single inventory account and session settings.
type AuthConfig struct {
	Username string

	// Exactly one of Password and PasswordHash is needed. PasswordHash is a
	// bcrypt hash and wins when both are set.
	Password     string
	PasswordHash string

	// SessionKey is the PASETO v4 symmetric key as 64 hex characters.
	// Empty means a random key per process, so sessions die on restart.
	SessionKey string
	SessionTTL time.Duration

	// LoginRatePerMinute bounds login attempts per client IP.
	LoginRatePerMinute int
}

// ImageConfig selects and configures the object store for tie images.
type ImageConfig struct {
	Backend string
	Dir     string

	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	S3PublicURL string
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		Auth: AuthConfig{
			Username:     os.Getenv("ADMIN_USERNAME"),
			Password:     os.Getenv("ADMIN_PASSWORD"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			SessionKey:   os.Getenv("SESSION_KEY"),
		},
		Images: ImageConfig{
			Backend:     strings.ToLower(getEnv("IMAGE_BACKEND", ImageBackendFS)),
			Dir:         getEnv("IMAGE_DIR", "./data/images"),
			S3Endpoint:  os.Getenv("S3_ENDPOINT"),
			S3Bucket:    os.Getenv("S3_BUCKET"),
			S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("S3_SECRET_KEY"),
			S3PublicURL: strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
		},
	}

	var (
		missing []string
		invalid []string
		err     error
	)

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.Auth.Username == "" {
		missing = append(missing, "ADMIN_USERNAME")
	}
	if cfg.Auth.Password == "" && cfg.Auth.PasswordHash == "" {
		missing = append(missing, "ADMIN_PASSWORD or ADMIN_PASSWORD_HASH")
	}

	if cfg.Auth.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "12h")); err != nil || cfg.Auth.SessionTTL <= 0 {
		invalid = append(invalid, "SESSION_TTL")
	}
	if cfg.Auth.LoginRatePerMinute, err = strconv.Atoi(getEnv("LOGIN_RATE_PER_MINUTE", "10")); err != nil || cfg.Auth.LoginRatePerMinute <= 0 {
		invalid = append(invalid, "LOGIN_RATE_PER_MINUTE")
	}
	if cfg.MaxUploadBytes, err = strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "5242880"), 10, 64); err != nil || cfg.MaxUploadBytes <= 0 {
		invalid = append(invalid, "MAX_UPLOAD_BYTES")
	}
	if cfg.Images.S3UseSSL, err = strconv.ParseBool(getEnv("S3_USE_SSL", "true")); err != nil {
		invalid = append(invalid, "S3_USE_SSL")
	}
	if k := cfg.Auth.SessionKey; k != "" && len(k) != 64 {
		invalid = append(invalid, "SESSION_KEY")
	}

	switch cfg.Images.Backend {
	case ImageBackendFS:
	case ImageBackendS3:
		for key, v := range map[string]string{
			"S3_ENDPOINT":   cfg.Images.S3Endpoint,
			"S3_BUCKET":     cfg.Images.S3Bucket,
			"S3_ACCESS_KEY": cfg.Images.S3AccessKey,
			"S3_SECRET_KEY": cfg.Images.S3SecretKey,
		} {
			if v == "" {
				missing = append(missing, key)
			}
		}
		if cfg.Images.S3PublicURL == "" {
			scheme := "https"
			if !cfg.Images.S3UseSSL {
				scheme = "http"
			}
			cfg.Images.S3PublicURL = scheme + "://" + cfg.Images.S3Endpoint + "/" + cfg.Images.S3Bucket
		}
	default:
		invalid = append(invalid, "IMAGE_BACKEND")
	}

	if len(missing) > 0 {
		// S3 keys come out of a map; keep the message stable.
		slices.Sort(missing)
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// DatabaseURL returns DATABASE_URL on its own, for commands such as
// migrations that do not need the rest of the configuration.
func DatabaseURL() (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "", errors.New("required environment variables not set: DATABASE_URL")
	}
	return dsn, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
