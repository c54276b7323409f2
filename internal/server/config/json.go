package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/chatserver/internal/flagx"
	"github.com/dmitrijs2005/chatserver/internal/timex"
)

// defaultConfigPaths are tried in order when neither -c/-config nor
// APP_CONFIG_PATH names a file.
var defaultConfigPaths = []string{"config.json", "/etc/chatserver/config.json"}

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Absent fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	KeySource                   string         `json:"key_source"`
	PrivateKeyPath              string         `json:"private_key_path"`
	PublicKeyPath               string         `json:"public_key_path"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	TokenIssuer                 *string        `json:"token_issuer"`
	HashWorkers                 *int           `json:"hash_workers"`
	LogLevel                    string         `json:"log_level"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from a JSON file onto config.
//
// The file is located with flagx.ResolveConfigPath: -c/-config flag,
// then $APP_CONFIG_PATH, then ./config.json, then /etc/chatserver/config.json.
// If nothing is found the config is left as is. An unreadable or invalid
// file panics, like a bad flag does.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ResolveConfigPath(defaultConfigPaths...)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.KeySource, c.KeySource)
	setString(&config.PrivateKeyPath, c.PrivateKeyPath)
	setString(&config.PublicKeyPath, c.PublicKeyPath)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.TokenIssuer != nil {
		config.TokenIssuer = *c.TokenIssuer
	}
	if c.HashWorkers != nil {
		config.HashWorkers = *c.HashWorkers
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
