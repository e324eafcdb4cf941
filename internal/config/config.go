// Package config loads and validates application configuration.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional TOML file named by CONFIG_FILE, and environment variables. A .env
// file in the working directory is loaded into the environment first; it
// never overrides variables that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/pkordes/cargotrack/backend/internal/domain"
)

// Config holds all configuration values for the API server.
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
	CORSOrigins []string

	// StorageTimeout bounds each storage operation, retries included.
	StorageTimeout time.Duration

	// TxMaxRetries is how often a transaction that lost a serialization
	// conflict is replayed.
	TxMaxRetries uint64

	// AuditSchedule is the cron spec of the capacity audit. Empty disables it.
	AuditSchedule string

	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64

	// Destinations is the closed set of trip destinations.
	Destinations []string

	// MigrateOnStart runs the goose migrations before serving.
	MigrateOnStart bool
}

// fileConfig mirrors Config in the TOML file. Durations are strings.
type fileConfig struct {
	Port           string   `toml:"port"`
	DatabaseURL    string   `toml:"database_url"`
	LogLevel       string   `toml:"log_level"`
	CORSOrigins    []string `toml:"cors_origins"`
	StorageTimeout string   `toml:"storage_timeout"`
	TxMaxRetries   int64    `toml:"tx_max_retries"`
	AuditSchedule  string   `toml:"audit_schedule"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`
	Destinations   []string `toml:"destinations"`
	MigrateOnStart bool     `toml:"migrate_on_start"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Port:           "8080",
		LogLevel:       "info",
		CORSOrigins:    []string{"http://localhost:5173"},
		StorageTimeout: 5 * time.Second,
		TxMaxRetries:   3,
		AuditSchedule:  "@every 5m",
		MaxBodyBytes:   1 << 20,
		Destinations:   append([]string(nil), domain.DefaultDestinations...),
		MigrateOnStart: true,
	}
}

// Load builds the Config from defaults, CONFIG_FILE, and the environment.
// Returns an error listing every invalid or missing value.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: read .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("config.Load: %w", err)
		}
	}

	var problems []string
	applyEnv(&cfg, &problems)

	if cfg.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if len(cfg.Destinations) == 0 {
		problems = append(problems, "DESTINATIONS must name at least one destination")
	}
	if cfg.MaxBodyBytes <= 0 {
		problems = append(problems, "MAX_BODY_BYTES must be positive")
	}
	if cfg.StorageTimeout <= 0 {
		problems = append(problems, "STORAGE_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// applyFile overlays the keys the TOML file defines.
func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config file %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("database_url") {
		cfg.DatabaseURL = strings.TrimSpace(raw.DatabaseURL)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CORSOrigins = trimAll(raw.CORSOrigins)
	}
	if meta.IsDefined("storage_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.StorageTimeout))
		if err != nil {
			return fmt.Errorf("parse storage_timeout: %w", err)
		}
		cfg.StorageTimeout = d
	}
	if meta.IsDefined("tx_max_retries") {
		if raw.TxMaxRetries < 0 {
			return fmt.Errorf("tx_max_retries must not be negative")
		}
		cfg.TxMaxRetries = uint64(raw.TxMaxRetries)
	}
	if meta.IsDefined("audit_schedule") {
		cfg.AuditSchedule = strings.TrimSpace(raw.AuditSchedule)
	}
	if meta.IsDefined("max_body_bytes") {
		cfg.MaxBodyBytes = raw.MaxBodyBytes
	}
	if meta.IsDefined("destinations") {
		cfg.Destinations = trimAll(raw.Destinations)
	}
	if meta.IsDefined("migrate_on_start") {
		cfg.MigrateOnStart = raw.MigrateOnStart
	}
	return nil
}

// applyEnv overrides cfg with every non-empty environment variable.
// AUDIT_SCHEDULE is the exception: set but empty disables the audit.
func applyEnv(cfg *Config, problems *[]string) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("STORAGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*problems = append(*problems, "STORAGE_TIMEOUT: "+err.Error())
		} else {
			cfg.StorageTimeout = d
		}
	}
	if v := os.Getenv("TX_MAX_RETRIES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			*problems = append(*problems, "TX_MAX_RETRIES: "+err.Error())
		} else {
			cfg.TxMaxRetries = n
		}
	}
	if v, ok := os.LookupEnv("AUDIT_SCHEDULE"); ok {
		cfg.AuditSchedule = strings.TrimSpace(v)
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			*problems = append(*problems, "MAX_BODY_BYTES: "+err.Error())
		} else {
			cfg.MaxBodyBytes = n
		}
	}
	if v := os.Getenv("DESTINATIONS"); v != "" {
		cfg.Destinations = splitCSV(v)
	}
	if v := os.Getenv("MIGRATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			*problems = append(*problems, "MIGRATE_ON_START: "+err.Error())
		} else {
			cfg.MigrateOnStart = b
		}
	}
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	return trimAll(strings.Split(s, ","))
}

func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
