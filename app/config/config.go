package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// DataDir is the Badger database directory.
	DataDir string

	// BackupDir receives files written by the backup command.
	BackupDir string

	// JWTSecret signs and verifies bearer tokens. Required to serve.
	JWTSecret string

	// JWTExpire is the lifetime of an issued token.
	JWTExpire time.Duration

	LogLevel        slog.Level
	AuthorCacheSize int
	BcryptCost      int
	ShutdownTimeout time.Duration
}

const (
	DefaultPort            = 4000
	DefaultDataDir         = "data/badger"
	DefaultBackupDir       = "data/backups"
	DefaultJWTExpire       = 7 * 24 * time.Hour
	DefaultAuthorCacheSize = 1024
	DefaultBcryptCost      = 10
	DefaultShutdownTimeout = 10 * time.Second
)

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            DefaultPort,
		DataDir:         envOr("DATA_DIR", DefaultDataDir),
		BackupDir:       envOr("BACKUP_DIR", DefaultBackupDir),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTExpire:       DefaultJWTExpire,
		LogLevel:        slog.LevelInfo,
		AuthorCacheSize: DefaultAuthorCacheSize,
		BcryptCost:      DefaultBcryptCost,
		ShutdownTimeout: DefaultShutdownTimeout,
	}

	var err error
	if p := os.Getenv("PORT"); p != "" {
		cfg.Port, err = strconv.Atoi(p)
		if err != nil || cfg.Port < 1 || cfg.Port > 65535 {
			return nil, fmt.Errorf("invalid PORT: %q", p)
		}
	}

	if e := os.Getenv("JWT_EXPIRE"); e != "" {
		cfg.JWTExpire, err = ParseDuration(e)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
		}
	}

	if l := os.Getenv("LOG_LEVEL"); l != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(l)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	if s := os.Getenv("AUTHOR_CACHE_SIZE"); s != "" {
		cfg.AuthorCacheSize, err = strconv.Atoi(s)
		if err != nil || cfg.AuthorCacheSize < 1 {
			return nil, fmt.Errorf("invalid AUTHOR_CACHE_SIZE: %q", s)
		}
	}

	if c := os.Getenv("BCRYPT_COST"); c != "" {
		cfg.BcryptCost, err = strconv.Atoi(c)
		if err != nil || cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %q", c)
		}
	}

	if t := os.Getenv("SHUTDOWN_TIMEOUT"); t != "" {
		cfg.ShutdownTimeout, err = time.ParseDuration(t)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
	}

	return cfg, nil
}

// RequireSecret reports an error when no signing secret is configured.
func (c *Config) RequireSecret() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ParseDuration accepts Go durations plus a whole-day suffix such as "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("bad day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", s)
	}
	return d, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
