// Package cli команды локального экземпляра: настройка личности центра,
// запись в outbox и запуск цикла синхронизации.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/iudanet/centersync/internal/client/iocli"
	"github.com/iudanet/centersync/internal/client/storage"
	"github.com/iudanet/centersync/internal/client/storage/boltdb"
	"github.com/iudanet/centersync/internal/config"
	"github.com/iudanet/centersync/internal/crypto"
)

// EnvPassphrase переменная окружения с паролем запечатанного ключа
const EnvPassphrase = "CENTERSYNC_PASSPHRASE"

// Cli окружение одной команды: конфигурация, локальное хранилище, терминал
type Cli struct {
	io     iocli.IO
	cfg    *config.Client
	logger *slog.Logger
	store  *boltdb.Storage
	opts   *Options
}

// open загружает конфигурацию, применяет флаги и открывает локальную базу
func open(ctx context.Context, opts *Options, term iocli.IO, logOut io.Writer) (*Cli, error) {
	cfg, err := config.LoadClient(config.ResolvePath(opts.ConfigPath))
	if err != nil {
		return nil, err
	}

	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.CentralURL != "" {
		cfg.CentralURL = opts.CentralURL
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	logger, err := cfg.Log.NewLogger(logOut)
	if err != nil {
		return nil, err
	}

	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	return &Cli{
		io:     term,
		cfg:    cfg,
		logger: logger,
		store:  store,
		opts:   opts,
	}, nil
}

// Close закрывает локальную базу
func (c *Cli) Close() error {
	return c.store.Close()
}

// setting читает настройку; отсутствие возвращается как пустая строка
func (c *Cli) setting(ctx context.Context, key string) (string, error) {
	value, err := c.store.GetSetting(ctx, key)
	if errors.Is(err, storage.ErrSettingNotFound) {
		return "", nil
	}
	return value, err
}

// passphrase получает пароль ключа в порядке приоритета:
// 1. переменная окружения CENTERSYNC_PASSPHRASE
// 2. файл из --passphrase-file
// 3. интерактивный ввод
func (c *Cli) passphrase(confirm bool) (string, error) {
	if env := os.Getenv(EnvPassphrase); env != "" {
		return env, nil
	}

	if c.opts.PassphraseFile != "" {
		content, err := os.ReadFile(c.opts.PassphraseFile)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase file: %w", err)
		}
		passphrase := strings.TrimSpace(string(content))
		if passphrase == "" {
			return "", fmt.Errorf("passphrase file is empty")
		}
		return passphrase, nil
	}

	passphrase, err := c.io.ReadPassword("Key passphrase: ")
	if err != nil {
		return "", err
	}
	if passphrase == "" {
		return "", fmt.Errorf("passphrase cannot be empty")
	}

	if confirm {
		again, err := c.io.ReadPassword("Repeat passphrase: ")
		if err != nil {
			return "", err
		}
		if again != passphrase {
			return "", fmt.Errorf("passphrases do not match")
		}
	}

	return passphrase, nil
}

// keyPassphrase возвращает пароль, только если сохраненный ключ запечатан
func (c *Cli) keyPassphrase(ctx context.Context) (string, error) {
	stored, err := c.setting(ctx, storage.SettingPrivateKey)
	if err != nil {
		return "", err
	}
	if !crypto.IsSealed(stored) {
		return "", nil
	}
	return c.passphrase(false)
}
