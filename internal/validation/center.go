package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// NamespacePattern определяет допустимый формат ключа центра, из которого строится namespace
// Только строчные латинские буквы, цифры, '_' и '-'. Длина: 1-64 символа.
// Регистр фиксирован: на нечувствительных к регистру ФС "A.db" и "a.db" - один файл.
var NamespacePattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// CenterIDPrefix обязательная табличная часть идентификатора центра
const CenterIDPrefix = "center:"

const (
	// MaxCenterIDLen максимальная длина идентификатора центра
	MaxCenterIDLen = 128
	// MaxRecordIDLen максимальная длина record_id
	MaxRecordIDLen = 255
)

// ValidateCenterID проверяет идентификатор центра.
// Формат: "center:key", например "center:z0zwv63iaazyq8idwjd8".
func ValidateCenterID(centerID string) error {
	if centerID == "" {
		return fmt.Errorf("center id cannot be empty")
	}

	if len(centerID) > MaxCenterIDLen {
		return fmt.Errorf("center id must not exceed %d characters", MaxCenterIDLen)
	}

	if _, err := NamespaceFor(centerID); err != nil {
		return err
	}

	return nil
}

// NamespaceFor детерминированно вычисляет имя изолированного namespace для центра.
// Namespace - ключевая часть после префикса "center:", отображение взаимно однозначно.
func NamespaceFor(centerID string) (string, error) {
	key, ok := strings.CutPrefix(centerID, CenterIDPrefix)
	if !ok {
		return "", fmt.Errorf("center id %q must have the form %s<key>", centerID, CenterIDPrefix)
	}

	if !NamespacePattern.MatchString(key) {
		return "", fmt.Errorf("center id %q must end with 1-64 lowercase letters, digits, '_' or '-'", centerID)
	}

	return key, nil
}

// ValidateRecordID проверяет record_id события
func ValidateRecordID(recordID string) error {
	if recordID == "" {
		return fmt.Errorf("record id cannot be empty")
	}

	if len(recordID) > MaxRecordIDLen {
		return fmt.Errorf("record id must not exceed %d characters", MaxRecordIDLen)
	}

	for _, r := range recordID {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("record id contains non-printable characters")
		}
	}

	return nil
}
