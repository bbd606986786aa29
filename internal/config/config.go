package config

import (
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultDBPath        = "./dev.db"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultMigrationsDir = "migrations"
	defaultCacheTTL      = 5 * time.Minute
	defaultEnv           = "development"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env             string
	DBPath          string
	Port            string
	LogLevel        string
	LogFormat       string
	MigrationsDir   string
	CacheTTL        time.Duration
	ExportDelimiter rune
}

// IsDev reports whether the service runs outside production.
func (c Config) IsDev() bool {
	return c.Env != "production"
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	return LoadFrom(".env")
}

// LoadFrom loads a dotenv file, then reads the environment.
// A missing file is fine; variables already set in the environment win over the file.
func LoadFrom(dotenvPath string) Config {
	if err := godotenv.Load(dotenvPath); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", dotenvPath).Msg("could not load dotenv file")
	}

	cfg := Config{
		Env:             getEnv("APP_ENV", defaultEnv),
		DBPath:          getEnv("DB_PATH", defaultDBPath),
		Port:            strings.TrimPrefix(getEnv("PORT", defaultPort), ":"),
		LogLevel:        getEnv("LOG_LEVEL", defaultLogLevel),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		MigrationsDir:   getEnv("MIGRATIONS_DIR", defaultMigrationsDir),
		CacheTTL:        defaultCacheTTL,
		ExportDelimiter: ',',
	}

	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl < 0 {
			log.Warn().Str("value", raw).Msg("invalid CACHE_TTL, using default")
		} else {
			cfg.CacheTTL = ttl
		}
	}

	if raw := os.Getenv("EXPORT_DELIMITER"); raw != "" {
		if r, size := utf8.DecodeRuneInString(raw); size == len(raw) && r != utf8.RuneError && r != '"' && r != '\n' {
			cfg.ExportDelimiter = r
		} else {
			log.Warn().Str("value", raw).Msg("EXPORT_DELIMITER must be a single character, using ','")
		}
	}

	if cfg.DBPath == defaultDBPath && !cfg.IsDev() {
		log.Warn().Msg("DB_PATH is not set, using ./dev.db in production")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
