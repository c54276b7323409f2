// Package config handles configuration for the chat server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"time"
)

// Key sources understood by the keystore.
const (
	KeySourceFile = "file"
	KeySourceS3   = "s3"
)

// Config holds runtime settings for the chat server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses of the two transports.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory identity store.
//   - KeySource: where the RS384 key pair is read from ("file" or "s3").
//   - PrivateKeyPath / PublicKeyPath: PEM locations, file paths or S3 object keys.
//   - AccessTokenValidityDuration: lifetime of issued session tokens.
//   - TokenIssuer: value of the "iss" claim; empty disables the check.
//   - HashWorkers: concurrent argon2 computations; 0 means GOMAXPROCS.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint: object storage.
type Config struct {
	EndpointAddrHTTP            string
	EndpointAddrGRPC            string
	DatabaseDSN                 string
	KeySource                   string
	PrivateKeyPath              string
	PublicKeyPath               string
	AccessTokenValidityDuration time.Duration
	TokenIssuer                 string
	HashWorkers                 int
	LogLevel                    string
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
}

// LoadDefaults populates Config with development defaults.
// NOTE: S3 credentials here are for a local MinIO only.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.KeySource = KeySourceFile
	c.PrivateKeyPath = "keys/private.pem"
	c.PublicKeyPath = "keys/public.pem"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.TokenIssuer = "chatserver"
	c.HashWorkers = 0
	c.LogLevel = "info"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "chatserver-keys"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.EndpointAddrHTTP == "" && c.EndpointAddrGRPC == "" {
		return fmt.Errorf("config: at least one of http or grpc address is required")
	}
	switch c.KeySource {
	case KeySourceFile, KeySourceS3:
	default:
		return fmt.Errorf("config: unknown key source %q", c.KeySource)
	}
	if c.PrivateKeyPath == "" || c.PublicKeyPath == "" {
		return fmt.Errorf("config: private and public key locations are required")
	}
	if c.KeySource == KeySourceS3 && c.S3Bucket == "" {
		return fmt.Errorf("config: s3 key source requires a bucket")
	}
	if c.AccessTokenValidityDuration <= 0 {
		return fmt.Errorf("config: access token validity must be positive")
	}
	if c.HashWorkers < 0 {
		return fmt.Errorf("config: hash workers must not be negative")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
