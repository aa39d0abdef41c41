package config

import "time"

// Config holds runtime settings for the GophStore CLI.
type Config struct {
	BaseURL        string
	CharactersURL  string
	PerPage        int
	DebounceDelay  time.Duration
	RequestTimeout time.Duration
	// RateLimit is outbound requests per second; 0 disables throttling.
	RateLimit    float64
	DatabasePath string
	LogLevel     string
	LogFormat    string
	// SaveLocation is sent with image uploads: "database" or "s3".
	SaveLocation string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080/"
	c.CharactersURL = "https://rickandmortyapi.com/api/character"
	c.PerPage = 10
	c.DebounceDelay = 1000 * time.Millisecond
	c.RequestTimeout = 15 * time.Second
	c.RateLimit = 0
	c.DatabasePath = "gophstore.db"
	c.LogLevel = "info"
	c.LogFormat = "console"
	c.SaveLocation = "database"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and .env), JSON (if present) and command-line flags (if
// present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
