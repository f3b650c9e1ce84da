package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id для ключа, которым запечатывается приватный ключ на диске
const (
	Argon2Time    = 1
	Argon2Memory  = 64 * 1024
	Argon2Threads = 4
	Argon2KeyLen  = 32
	SaltSize      = 16
	NonceSize     = 12
)

// sealedPrefix префикс запечатанного приватного ключа: sealed:v1:<salt>:<nonce+ciphertext>
const sealedPrefix = "sealed:v1:"

// IsSealed сообщает, запечатан ли сохраненный ключ паролем
func IsSealed(stored string) bool {
	return strings.HasPrefix(stored, sealedPrefix)
}

// SealPrivateKey шифрует base64 приватный ключ паролем (Argon2id + AES-256-GCM)
func SealPrivateKey(passphrase, privateKey string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("passphrase cannot be empty")
	}
	if privateKey == "" {
		return "", fmt.Errorf("private key cannot be empty")
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := newSealCipher(passphrase, salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// nonce + ciphertext + auth_tag
	sealed := aead.Seal(nonce, nonce, []byte(privateKey), nil)

	return sealedPrefix +
		base64.StdEncoding.EncodeToString(salt) + ":" +
		base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenPrivateKey расшифровывает ключ, запечатанный SealPrivateKey
func OpenPrivateKey(passphrase, stored string) (string, error) {
	if !IsSealed(stored) {
		return "", fmt.Errorf("%w: key is not sealed", ErrInvalidKey)
	}

	parts := strings.Split(strings.TrimPrefix(stored, sealedPrefix), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: malformed sealed key", ErrInvalidKey)
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(salt) != SaltSize {
		return "", fmt.Errorf("%w: malformed salt", ErrInvalidKey)
	}

	sealed, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(sealed) < NonceSize {
		return "", fmt.Errorf("%w: malformed ciphertext", ErrInvalidKey)
	}

	aead, err := newSealCipher(passphrase, salt)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, sealed[:NonceSize], sealed[NonceSize:], nil)
	if err != nil {
		return "", ErrWrongPassphrase
	}

	return string(plaintext), nil
}

// newSealCipher деривирует ключ из пароля и создает AES-GCM
func newSealCipher(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(passphrase), salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aead, nil
}
