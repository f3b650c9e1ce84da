package crypto

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClaimCenterID имя обязательного claim с идентификатором центра
const ClaimCenterID = "center_id"

// AvailabilityClaims claims подписанного утверждения о личности центра
type AvailabilityClaims struct {
	CenterID string `json:"center_id"`
	jwt.RegisteredClaims
}

// Validate вызывается jwt парсером после проверки подписи
func (c AvailabilityClaims) Validate() error {
	if c.CenterID == "" {
		return fmt.Errorf("missing required claim %q", ClaimCenterID)
	}
	return nil
}

// SignAvailabilityClaim создает RS256 JWT с claim center_id
func SignAvailabilityClaim(key *rsa.PrivateKey, centerID string) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: private key is nil", ErrInvalidKey)
	}

	claims := AvailabilityClaims{
		CenterID: centerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign claim: %w", err)
	}

	return signed, nil
}

// CheckClaimAlgorithm декодирует только заголовок токена и проверяет алгоритм.
// Ключевой материал не используется - дешевая проверка до обращения к хранилищу.
func CheckClaimAlgorithm(token string) error {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &AvailabilityClaims{})
	if err != nil {
		return fmt.Errorf("%w: failed to decode token: %v", ErrInvalidSignature, err)
	}

	if parsed.Method == nil || parsed.Method.Alg() != jwt.SigningMethodRS256.Alg() {
		return fmt.Errorf("%w: %v", ErrUnexpectedAlgorithm, parsed.Header["alg"])
	}

	return nil
}

// VerifyAvailabilityClaim проверяет подпись токена публичным ключом центра
// и требует наличия claim center_id
func VerifyAvailabilityClaim(key *rsa.PublicKey, token string) (*AvailabilityClaims, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: public key is nil", ErrInvalidSignature)
	}

	claims := &AvailabilityClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to verify token: %v", ErrInvalidSignature, err)
	}

	return claims, nil
}
