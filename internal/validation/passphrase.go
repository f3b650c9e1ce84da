package validation

import "fmt"

// MinPassphraseLen минимальная длина пароля для запечатывания ключа
const MinPassphraseLen = 6

// ValidatePassphrase проверяет пароль нового запечатанного ключа
func ValidatePassphrase(passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase cannot be empty")
	}

	if len(passphrase) < MinPassphraseLen {
		return fmt.Errorf("passphrase must be at least %d characters long", MinPassphraseLen)
	}

	return nil
}
