package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-b string   backend base URL
//	-r string   character list URL
//	-p int      items per page
//	-d int      search debounce delay (milliseconds)
//	-t int      request timeout (seconds)
//	-l float    outbound requests per second (0 = unlimited)
//	-db string  local database path
//	-log string log level
//	-s string   image save location (database|s3)
//
// os.Args is filtered with flagx.FilterArgs so other layers' flags are ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-r", "-p", "-d", "-t", "-l", "-db", "-log", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "b", cfg.BaseURL, "backend base URL")
	fs.StringVar(&cfg.CharactersURL, "r", cfg.CharactersURL, "character list URL")
	fs.IntVar(&cfg.PerPage, "p", cfg.PerPage, "items per page")
	debounce := fs.Int("d", int(cfg.DebounceDelay.Milliseconds()), "search debounce delay (in milliseconds)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.Float64Var(&cfg.RateLimit, "l", cfg.RateLimit, "outbound requests per second, 0 disables")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.SaveLocation, "s", cfg.SaveLocation, "image save location (database|s3)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.DebounceDelay = time.Duration(*debounce) * time.Millisecond
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
