// Command keygen writes a fresh RS384 key pair for the chat server:
// a PKCS#8 private key and a PKIX public key, both PEM encoded.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/chatserver/internal/filex"
)

func main() {
	dir := flag.String("o", "keys", "output directory")
	bits := flag.Int("bits", 2048, "RSA modulus size")
	force := flag.Bool("f", false, "overwrite existing files")
	flag.Parse()

	if err := run(*dir, *bits, *force); err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}
}

func run(dir string, bits int, force bool) error {
	if bits < 2048 {
		return fmt.Errorf("refusing to generate a %d-bit key", bits)
	}
	dir, err := filex.EnsureDir(dir, 0o700)
	if err != nil {
		return err
	}

	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	if !force {
		for _, p := range []string{privPath, pubPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s exists, use -f to overwrite", p)
			}
		}
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return err
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return err
	}

	if err := os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}), 0o600); err != nil {
		return err
	}
	if err := os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o644); err != nil {
		return err
	}

	fmt.Printf("wrote %s and %s\n", privPath, pubPath)
	return nil
}
