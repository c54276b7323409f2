// Package authtest provides RSA key material for tests. Keys are generated
// once per test binary because 2048-bit generation is slow.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

var (
	mu   sync.Mutex
	keys = map[string]*rsa.PrivateKey{}
)

// Key returns a cached 2048-bit key for name. Different names give
// unrelated keys.
func Key(t testing.TB, name string) *rsa.PrivateKey {
	t.Helper()
	mu.Lock()
	defer mu.Unlock()

	if k, ok := keys[name]; ok {
		return k
	}
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	keys[name] = k
	return k
}

// PrivatePEM encodes k as PKCS#8.
func PrivatePEM(t testing.TB, k *rsa.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(k)
	if err != nil {
		t.Fatalf("marshal private key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

// PublicPEM encodes the public half of k as PKIX.
func PublicPEM(t testing.TB, k *rsa.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&k.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// WriteKeyFiles writes private.pem and public.pem for k into dir and
// returns their paths.
func WriteKeyFiles(t testing.TB, dir string, k *rsa.PrivateKey) (string, string) {
	t.Helper()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	if err := os.WriteFile(priv, PrivatePEM(t, k), 0o600); err != nil {
		t.Fatalf("write private key: %v", err)
	}
	if err := os.WriteFile(pub, PublicPEM(t, k), 0o644); err != nil {
		t.Fatalf("write public key: %v", err)
	}
	return priv, pub
}
