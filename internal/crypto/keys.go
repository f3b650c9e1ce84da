package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
)

// DefaultKeyBits размер RSA ключа экземпляра
const DefaultKeyBits = 2048

// KeyPair содержит base64 DER (PKCS#1) представление ключевой пары экземпляра.
// PrivateKey никогда не покидает локальный экземпляр, PublicKey регистрируется в центре.
type KeyPair struct {
	PrivateKey string
	PublicKey  string
}

// GenerateKeyPair генерирует новую RSA ключевую пару
func GenerateKeyPair(bits int) (*KeyPair, error) {
	if bits < 1024 {
		return nil, fmt.Errorf("key size must be at least 1024 bits, got %d", bits)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rsa key: %w", err)
	}

	return &KeyPair{
		PrivateKey: EncodePrivateKey(privateKey),
		PublicKey:  EncodePublicKey(&privateKey.PublicKey),
	}, nil
}

// EncodePrivateKey кодирует приватный ключ в base64 PKCS#1 DER
func EncodePrivateKey(key *rsa.PrivateKey) string {
	return base64.StdEncoding.EncodeToString(x509.MarshalPKCS1PrivateKey(key))
}

// EncodePublicKey кодирует публичный ключ в base64 PKCS#1 DER
func EncodePublicKey(key *rsa.PublicKey) string {
	return base64.StdEncoding.EncodeToString(x509.MarshalPKCS1PublicKey(key))
}

// ParsePrivateKey декодирует base64 DER приватный ключ.
// Поддерживает PKCS#1 и PKCS#8.
func ParsePrivateKey(encoded string) (*rsa.PrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64: %v", ErrInvalidKey, err)
	}

	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse private key: %v", ErrInvalidKey, err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is not RSA", ErrInvalidKey)
	}

	return key, nil
}

// ParsePublicKey декодирует base64 DER публичный ключ.
// Поддерживает PKCS#1 и PKIX (SubjectPublicKeyInfo).
func ParsePublicKey(encoded string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64: %v", ErrInvalidKey, err)
	}

	if key, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse public key: %v", ErrInvalidKey, err)
	}

	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is not RSA", ErrInvalidKey)
	}

	return key, nil
}
