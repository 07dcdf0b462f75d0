// internal/security/token.go
//
// Bot tokens are stored encrypted with AES-256-GCM. The key is derived from
// the TOKEN_SECRET environment variable with PBKDF2-SHA256, and the stored
// blob is base64url(nonce || ciphertext || tag).
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 10000
	keyBytes         = 32
)

// Fixed application salt: tokens must decrypt across process restarts, so the
// salt cannot be random per call. Rotating TOKEN_SECRET invalidates stored
// tokens, which is the intended operational lever.
var keySalt = []byte("botreach-token-v1")

var ErrNoSecret = errors.New("TOKEN_SECRET is not set")

func deriveKey() ([]byte, error) {
	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		return nil, ErrNoSecret
	}
	return pbkdf2.Key([]byte(secret), keySalt, pbkdf2Iterations, keyBytes, sha256.New), nil
}

// EncryptToken encrypts a plaintext bot token for storage.
func EncryptToken(token string) (string, error) {
	key, err := deriveKey()
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(token), nil)
	return base64.URLEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

// DecryptToken decrypts a blob produced by EncryptToken.
func DecryptToken(encoded string) (string, error) {
	key, err := deriveKey()
	if err != nil {
		return "", err
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", errors.New("malformed token ciphertext (too short for nonce)")
	}

	plaintext, err := gcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
