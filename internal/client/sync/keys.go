package sync

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/iudanet/centersync/internal/client/storage"
	"github.com/iudanet/centersync/internal/crypto"
)

// KeyProvider возвращает локальный приватный ключ экземпляра
type KeyProvider interface {
	PrivateKey(ctx context.Context) (*rsa.PrivateKey, error)
}

// KeyProviderFunc адаптер функции к KeyProvider
type KeyProviderFunc func(ctx context.Context) (*rsa.PrivateKey, error)

// PrivateKey вызывает f(ctx)
func (f KeyProviderFunc) PrivateKey(ctx context.Context) (*rsa.PrivateKey, error) {
	return f(ctx)
}

// SettingsKeyProvider читает ключ из настроек; запечатанный ключ открывается паролем
type SettingsKeyProvider struct {
	settings   storage.SettingsStorage
	passphrase string
}

// NewSettingsKeyProvider создает провайдер ключа из локальных настроек
func NewSettingsKeyProvider(settings storage.SettingsStorage, passphrase string) *SettingsKeyProvider {
	return &SettingsKeyProvider{
		settings:   settings,
		passphrase: passphrase,
	}
}

// PrivateKey загружает и разбирает private_key
func (p *SettingsKeyProvider) PrivateKey(ctx context.Context) (*rsa.PrivateKey, error) {
	stored, err := p.settings.GetSetting(ctx, storage.SettingPrivateKey)
	if err != nil {
		if errors.Is(err, storage.ErrSettingNotFound) {
			return nil, fmt.Errorf("%w: private key is not set", ErrNotConfigured)
		}
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}

	if crypto.IsSealed(stored) {
		if p.passphrase == "" {
			return nil, fmt.Errorf("%w: private key is sealed and no passphrase was given", ErrNotConfigured)
		}
		stored, err = crypto.OpenPrivateKey(p.passphrase, stored)
		if err != nil {
			return nil, fmt.Errorf("failed to open private key: %w", err)
		}
	}

	key, err := crypto.ParsePrivateKey(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return key, nil
}
