package crypto

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// chunkDigest вычисляет SHA-256 от center_id ‖ body.
// Подписывается конструкция целиком, чтобы подпись нельзя было переиграть против тела другого центра.
func chunkDigest(centerID string, body []byte) []byte {
	h := sha256.New()
	h.Write([]byte(centerID))
	h.Write(body)
	return h.Sum(nil)
}

// SignChunk подписывает тело чанка (RSA PKCS#1 v1.5, SHA-256) и возвращает base64 подпись
func SignChunk(key *rsa.PrivateKey, centerID string, body []byte) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: private key is nil", ErrInvalidKey)
	}

	signature, err := rsa.SignPKCS1v15(rand.Reader, key, stdcrypto.SHA256, chunkDigest(centerID, body))
	if err != nil {
		return "", fmt.Errorf("failed to sign chunk: %w", err)
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}

// VerifyChunk проверяет base64 подпись тела чанка.
// Любая ошибка (base64, формат, несовпадение) оборачивает ErrInvalidSignature.
func VerifyChunk(key *rsa.PublicKey, centerID string, body []byte, signature string) error {
	if key == nil {
		return fmt.Errorf("%w: public key is nil", ErrInvalidSignature)
	}

	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: failed to decode base64: %v", ErrInvalidSignature, err)
	}

	if err := rsa.VerifyPKCS1v15(key, stdcrypto.SHA256, chunkDigest(centerID, body), raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return nil
}
