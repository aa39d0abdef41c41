package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names read by parseEnv.
const (
	EnvBaseURL        = "GOPHSTORE_BASE_URL"
	EnvCharactersURL  = "GOPHSTORE_CHARACTERS_URL"
	EnvPerPage        = "GOPHSTORE_PER_PAGE"
	EnvDebounceDelay  = "GOPHSTORE_DEBOUNCE_DELAY"
	EnvRequestTimeout = "GOPHSTORE_REQUEST_TIMEOUT"
	EnvRateLimit      = "GOPHSTORE_RATE_LIMIT"
	EnvDatabasePath   = "GOPHSTORE_DB"
	EnvLogLevel       = "GOPHSTORE_LOG_LEVEL"
	EnvLogFormat      = "GOPHSTORE_LOG_FORMAT"
	EnvSaveLocation   = "GOPHSTORE_SAVE_LOCATION"
)

// dotenvFile is loaded when present; variables already set win.
var dotenvFile = ".env"

// parseEnv overlays Config with GOPHSTORE_* variables. Durations use Go
// syntax ("750ms"). Malformed values panic, like the other loaders.
func parseEnv(cfg *Config) {
	if _, err := os.Stat(dotenvFile); err == nil {
		if err := godotenv.Load(dotenvFile); err != nil {
			panic(fmt.Errorf("load %s: %w", dotenvFile, err))
		}
	}

	setString(&cfg.BaseURL, EnvBaseURL)
	setString(&cfg.CharactersURL, EnvCharactersURL)
	setString(&cfg.DatabasePath, EnvDatabasePath)
	setString(&cfg.LogLevel, EnvLogLevel)
	setString(&cfg.LogFormat, EnvLogFormat)
	setString(&cfg.SaveLocation, EnvSaveLocation)

	if v, ok := os.LookupEnv(EnvPerPage); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvPerPage, err))
		}
		cfg.PerPage = n
	}
	if v, ok := os.LookupEnv(EnvRateLimit); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvRateLimit, err))
		}
		cfg.RateLimit = f
	}
	setDuration(&cfg.DebounceDelay, EnvDebounceDelay)
	setDuration(&cfg.RequestTimeout, EnvRequestTimeout)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}
