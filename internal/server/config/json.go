package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophstore/internal/flagx"
	"github.com/dmitrijs2005/gophstore/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// Durations use timex.Duration so both "12h" and integer nanoseconds parse.
// Absent fields leave the corresponding Config value untouched.
type JsonConfig struct {
	Addr           string          `json:"addr"`
	DatabaseDSN    string          `json:"database_dsn"`
	SecretKey      string          `json:"secret_key"`
	AccessTokenTTL *timex.Duration `json:"access_token_ttl"`
	ImageStore     string          `json:"image_store"`
	S3RootUser     string          `json:"s3_root_user"`
	S3RootPassword string          `json:"s3_root_password"`
	S3Bucket       string          `json:"s3_bucket"`
	S3Region       string          `json:"s3_region"`
	S3BaseEndpoint string          `json:"s3_base_endpoint"`
	CORSOrigins    []string        `json:"cors_origins"`
	LogLevel       string          `json:"log_level"`
	LogFormat      string          `json:"log_format"`
	SeedCompanyID  int64           `json:"seed_company_id"`
	SeedEmail      string          `json:"seed_email"`
	SeedPassword   string          `json:"seed_password"`
}

// parseJson loads configuration values from the JSON file named by
// -c/-config (or $GOPHSTORE_CONFIG). If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	for dst, v := range map[*string]string{
		&config.Addr:           c.Addr,
		&config.DatabaseDSN:    c.DatabaseDSN,
		&config.SecretKey:      c.SecretKey,
		&config.ImageStore:     c.ImageStore,
		&config.S3RootUser:     c.S3RootUser,
		&config.S3RootPassword: c.S3RootPassword,
		&config.S3Bucket:       c.S3Bucket,
		&config.S3Region:       c.S3Region,
		&config.S3BaseEndpoint: c.S3BaseEndpoint,
		&config.LogLevel:       c.LogLevel,
		&config.LogFormat:      c.LogFormat,
		&config.SeedEmail:      c.SeedEmail,
		&config.SeedPassword:   c.SeedPassword,
	} {
		if v != "" {
			*dst = v
		}
	}
	if c.AccessTokenTTL != nil {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.SeedCompanyID != 0 {
		config.SeedCompanyID = c.SeedCompanyID
	}
}
