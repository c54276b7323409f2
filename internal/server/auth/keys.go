package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// minKeyBits is the smallest modulus accepted for RS384.
const minKeyBits = 2048

// KeyPair is the deployment's signing material, loaded once at startup.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// ParsePrivateKeyPEM accepts PKCS#1 ("RSA PRIVATE KEY") and PKCS#8
// ("PRIVATE KEY") encodings.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	if key.N.BitLen() < minKeyBits {
		return nil, fmt.Errorf("parse private key: modulus of %d bits is below %d", key.N.BitLen(), minKeyBits)
	}
	return key, nil
}

// ParsePublicKeyPEM accepts PKIX ("PUBLIC KEY"), PKCS#1 ("RSA PUBLIC KEY")
// and certificate encodings.
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	if key.N.BitLen() < minKeyBits {
		return nil, fmt.Errorf("parse public key: modulus of %d bits is below %d", key.N.BitLen(), minKeyBits)
	}
	return key, nil
}

// ParseKeyPair parses both halves and checks that they belong together.
func ParseKeyPair(privatePEM, publicPEM []byte) (KeyPair, error) {
	priv, err := ParsePrivateKeyPEM(privatePEM)
	if err != nil {
		return KeyPair{}, err
	}
	pub, err := ParsePublicKeyPEM(publicPEM)
	if err != nil {
		return KeyPair{}, err
	}
	if !priv.PublicKey.Equal(pub) {
		return KeyPair{}, errors.New("public key does not match private key")
	}
	return KeyPair{Private: priv, Public: pub}, nil
}
