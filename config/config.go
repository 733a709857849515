package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"library-catalog/library"
)

// Config selects where the catalog lives and how loudly the CLI logs.
type Config struct {
	StoreKind string
	FilePath  string
	DBPath    string
	LogLevel  slog.Level
}

// Path returns the location of the configured store.
func (c Config) Path() string {
	if c.StoreKind == library.StoreSQLite {
		return c.DBPath
	}
	return c.FilePath
}

// Load reads an optional .env file from the working directory and then the
// process environment. Values already in the environment win over .env. If
// the .env file cannot be parsed, the returned Config is still filled from
// the environment and defaults, alongside the error.
func Load(envFiles ...string) (Config, error) {
	err := godotenv.Load(envFiles...)
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}

	cfg := Config{
		StoreKind: strings.ToLower(GetEnv("LIBRARY_STORE", library.StoreText)),
		FilePath:  GetEnv("LIBRARY_FILE", "library.txt"),
		DBPath:    GetEnv("LIBRARY_DB", "library.db"),
		LogLevel:  ParseLevel(GetEnv("LIBRARY_LOG_LEVEL", "warn")),
	}
	return cfg, err
}

// GetEnv returns the value of key, or the first default when key is unset.
func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// ParseLevel maps debug/info/warn/error to a slog level. Anything else is warn.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn
	}
	return lvl
}
