package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/centersync/internal/client/storage"
)

// GetSetting возвращает значение настройки
func (s *Storage) GetSetting(ctx context.Context, key string) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSettings).Get([]byte(key))
		if data == nil {
			return storage.ErrSettingNotFound
		}
		value = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

// SetSetting сохраняет значение настройки
func (s *Storage) SetSetting(ctx context.Context, key, value string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if key == "" {
		return fmt.Errorf("setting key cannot be empty")
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSettings).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}

	return nil
}
