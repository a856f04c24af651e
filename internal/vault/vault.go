// Package vault encrypts the long-lived Google refresh token before it
// is written to the local user directory.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrDecrypt is returned when ciphertext cannot be decrypted, either
// because it is corrupt or because the encryption key has changed.
var ErrDecrypt = errors.New("vault: decrypt failed")

// kdfSalt keeps key derivation deterministic across restarts. The
// derived key only ever protects data on the same host as the secret
// itself, so a fixed salt is acceptable here.
var kdfSalt = []byte("schoolerp-vault-v1")

// Vault performs symmetric encryption with AES-256-GCM. The key is the
// configured secret directly when it is base64 of 32 bytes, otherwise
// it is derived from the secret with argon2id.
type Vault struct {
	aead cipher.AEAD
}

func New(secret string) (*Vault, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("vault: encryption key is required")
	}

	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil || len(key) != 32 {
		key = argon2.IDKey([]byte(secret), kdfSalt, 1, 64*1024, 4, 32)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Encrypt seals the plaintext with a fresh nonce and returns
// base64(nonce || ciphertext).
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any authentication or framing failure is
// reported as ErrDecrypt.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	ns := v.aead.NonceSize()
	if len(raw) < ns {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	plaintext, err := v.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plaintext), nil
}
