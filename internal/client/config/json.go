package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophstore/internal/flagx"
	"github.com/dmitrijs2005/gophstore/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-value fields that are absent from the file leave Config untouched.
type JsonConfig struct {
	BaseURL        string          `json:"base_url"`
	CharactersURL  string          `json:"characters_url"`
	PerPage        int             `json:"per_page"`
	DebounceDelay  *timex.Duration `json:"debounce_delay"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	RateLimit      *float64        `json:"rate_limit"`
	DatabasePath   string          `json:"database_path"`
	LogLevel       string          `json:"log_level"`
	LogFormat      string          `json:"log_format"`
	SaveLocation   string          `json:"save_location"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c/-config (or $GOPHSTORE_CONFIG). Read or decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.BaseURL, jc.BaseURL)
	overlay(&cfg.CharactersURL, jc.CharactersURL)
	overlay(&cfg.DatabasePath, jc.DatabasePath)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.LogFormat, jc.LogFormat)
	overlay(&cfg.SaveLocation, jc.SaveLocation)
	if jc.PerPage > 0 {
		cfg.PerPage = jc.PerPage
	}
	if jc.DebounceDelay != nil {
		cfg.DebounceDelay = jc.DebounceDelay.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RateLimit != nil {
		cfg.RateLimit = *jc.RateLimit
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
