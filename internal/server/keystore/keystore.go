// Package keystore loads the deployment's RS384 key pair at startup, either
// from PEM files on disk or from an S3-compatible bucket.
package keystore

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/chatserver/internal/server/auth"
	"github.com/dmitrijs2005/chatserver/internal/server/config"
)

// Source yields the PEM-encoded private and public halves of the key pair.
type Source interface {
	Load(ctx context.Context) (private, public []byte, err error)
}

// FileSource reads both halves from the local filesystem.
type FileSource struct {
	PrivatePath string
	PublicPath  string
}

func (s FileSource) Load(ctx context.Context) ([]byte, []byte, error) {
	priv, err := os.ReadFile(s.PrivatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("read private key: %w", err)
	}
	pub, err := os.ReadFile(s.PublicPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read public key: %w", err)
	}
	return priv, pub, nil
}

// LoadKeyPair reads and parses the key pair once. Any error is fatal for
// the caller: the server cannot issue or verify tokens without it.
func LoadKeyPair(ctx context.Context, src Source) (auth.KeyPair, error) {
	priv, pub, err := src.Load(ctx)
	if err != nil {
		return auth.KeyPair{}, fmt.Errorf("load key material: %w", err)
	}
	kp, err := auth.ParseKeyPair(priv, pub)
	if err != nil {
		return auth.KeyPair{}, fmt.Errorf("load key material: %w", err)
	}
	return kp, nil
}

// FromConfig picks the Source named by cfg.KeySource.
func FromConfig(cfg *config.Config) (Source, error) {
	switch cfg.KeySource {
	case config.KeySourceFile, "":
		return FileSource{PrivatePath: cfg.PrivateKeyPath, PublicPath: cfg.PublicKeyPath}, nil
	case config.KeySourceS3:
		return &S3Source{
			Bucket:      cfg.S3Bucket,
			PrivateKey:  cfg.PrivateKeyPath,
			PublicKey:   cfg.PublicKeyPath,
			Region:      cfg.S3Region,
			AccessKey:   cfg.S3RootUser,
			SecretKey:   cfg.S3RootPassword,
			EndpointURL: cfg.S3BaseEndpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unknown key source %q", cfg.KeySource)
	}
}
