package storage

import "context"

// Ключи локальных настроек экземпляра
const (
	SettingInstanceType = "instance_type" // master / slave
	SettingCenterID     = "center_id"     // идентификатор центра
	SettingPrivateKey   = "private_key"   // base64 PKCS#1 DER, возможно запечатанный паролем
)

//go:generate moq -out settings_mock.go . SettingsStorage

// SettingsStorage хранилище локальных настроек экземпляра
type SettingsStorage interface {
	// GetSetting возвращает значение настройки
	// Returns ErrSettingNotFound if key is not set
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting сохраняет значение настройки
	SetSetting(ctx context.Context, key, value string) error
}
