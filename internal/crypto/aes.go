// Package crypto provides AES-256-GCM encryption for sensitive config
// values, so LLM and search API keys never have to sit in config.yaml as
// plain text.
//
// Usage:
//  1. Generate a 32-byte master key (`openssl rand -hex 32`) and export it
//     as SITEASSIST_MASTER_KEY.
//  2. Encrypt a key with the encryptkey tool → an "enc:aes256:..." string.
//  3. Paste that string into config.yaml; the loader decrypts at startup.
//
// The "enc:aes256:" prefix is a sentinel: values without it pass through
// unchanged, so plain and encrypted values can be mixed during migration.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// masterKeyEnv names the environment variable holding the hex master key.
const masterKeyEnv = "SITEASSIST_MASTER_KEY"

// encPrefix marks an encrypted config value: enc:aes256:<base64(nonce+ct)>.
const encPrefix = "enc:aes256:"

// Encrypt seals plaintext with AES-256-GCM under the 32-byte key. A fresh
// random nonce is generated per call, so encrypting the same plaintext
// twice yields different ciphertext.
func Encrypt(key []byte, plaintext string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: generate nonce: %w", err)
	}

	// Seal appends ciphertext and auth tag to the nonce.
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return encPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Values without the sentinel prefix are returned
// unchanged.
func Decrypt(key []byte, value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encPrefix))
	if err != nil {
		return "", fmt.Errorf("crypto: base64-decode encrypted value: %w", err)
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("crypto: ciphertext too short")
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// Wrong key or tampered data.
		return "", fmt.Errorf("crypto: decryption failed: %w", err)
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("crypto: key must be exactly 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: create GCM: %w", err)
	}
	return gcm, nil
}

// IsEncrypted reports whether value carries the enc:aes256: sentinel.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, encPrefix)
}

// MasterKeyFromEnv reads the master key from SITEASSIST_MASTER_KEY, which
// must hold 64 hex characters (32 bytes).
func MasterKeyFromEnv() ([]byte, error) {
	hexKey := os.Getenv(masterKeyEnv)
	if hexKey == "" {
		return nil, fmt.Errorf("crypto: %s environment variable is not set; "+
			"generate one with: openssl rand -hex 32", masterKeyEnv)
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: %s is not valid hex: %w", masterKeyEnv, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("crypto: %s must be 64 hex chars (32 bytes), got %d bytes",
			masterKeyEnv, len(key))
	}
	return key, nil
}

// DecryptValue decrypts one config value using the env master key. Plain
// values pass through; encrypted values with a missing or wrong master key
// are an error.
func DecryptValue(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	key, err := MasterKeyFromEnv()
	if err != nil {
		return "", fmt.Errorf("crypto: cannot decrypt config value: %w", err)
	}
	return Decrypt(key, value)
}
