// Package config loads runtime configuration for the GophStore CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables (GOPHSTORE_*), after loading ./.env when present.
//  3. Optional JSON file selected via -c/-config or $GOPHSTORE_CONFIG.
//  4. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "750ms" or
// integer nanoseconds:
//
//	{
//	  "base_url": "https://store.example.com/",
//	  "characters_url": "https://rickandmortyapi.com/api/character",
//	  "per_page": 10,
//	  "debounce_delay": "1s",
//	  "request_timeout": "15s",
//	  "rate_limit": 5,
//	  "database_path": "gophstore.db",
//	  "log_level": "info",
//	  "save_location": "database"
//	}
package config
