package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names read by parseEnv.
const (
	EnvAddr           = "GOPHSTORE_ADDR"
	EnvDatabaseDSN    = "GOPHSTORE_DATABASE_DSN"
	EnvSecretKey      = "GOPHSTORE_SECRET_KEY"
	EnvAccessTokenTTL = "GOPHSTORE_ACCESS_TOKEN_TTL"
	EnvImageStore     = "GOPHSTORE_IMAGE_STORE"
	EnvS3RootUser     = "GOPHSTORE_S3_ROOT_USER"
	EnvS3RootPassword = "GOPHSTORE_S3_ROOT_PASSWORD"
	EnvS3Bucket       = "GOPHSTORE_S3_BUCKET"
	EnvS3Region       = "GOPHSTORE_S3_REGION"
	EnvS3BaseEndpoint = "GOPHSTORE_S3_BASE_ENDPOINT"
	EnvCORSOrigins    = "GOPHSTORE_CORS_ORIGINS"
	EnvLogLevel       = "GOPHSTORE_LOG_LEVEL"
	EnvLogFormat      = "GOPHSTORE_LOG_FORMAT"
	EnvSeedCompanyID  = "GOPHSTORE_SEED_COMPANY_ID"
	EnvSeedEmail      = "GOPHSTORE_SEED_EMAIL"
	EnvSeedPassword   = "GOPHSTORE_SEED_PASSWORD"
)

var dotenvFile = ".env"

// parseEnv overlays Config with GOPHSTORE_* variables, loading .env first
// when it exists. Malformed values panic.
func parseEnv(cfg *Config) {
	if _, err := os.Stat(dotenvFile); err == nil {
		if err := godotenv.Load(dotenvFile); err != nil {
			panic(fmt.Errorf("load %s: %w", dotenvFile, err))
		}
	}

	for key, dst := range map[string]*string{
		EnvAddr:           &cfg.Addr,
		EnvDatabaseDSN:    &cfg.DatabaseDSN,
		EnvSecretKey:      &cfg.SecretKey,
		EnvImageStore:     &cfg.ImageStore,
		EnvS3RootUser:     &cfg.S3RootUser,
		EnvS3RootPassword: &cfg.S3RootPassword,
		EnvS3Bucket:       &cfg.S3Bucket,
		EnvS3Region:       &cfg.S3Region,
		EnvS3BaseEndpoint: &cfg.S3BaseEndpoint,
		EnvLogLevel:       &cfg.LogLevel,
		EnvLogFormat:      &cfg.LogFormat,
		EnvSeedEmail:      &cfg.SeedEmail,
		EnvSeedPassword:   &cfg.SeedPassword,
	} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvAccessTokenTTL); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvAccessTokenTTL, err))
		}
		cfg.AccessTokenTTL = d
	}
	if v, ok := os.LookupEnv(EnvSeedCompanyID); ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvSeedCompanyID, err))
		}
		cfg.SeedCompanyID = id
	}
	if v, ok := os.LookupEnv(EnvCORSOrigins); ok && v != "" {
		cfg.CORSOrigins = splitList(v)
	}
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
