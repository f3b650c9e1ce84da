// Package config загружает конфигурацию клиента и сервера.
//
// Порядок применения: значения по умолчанию, затем YAML файл (--config или
// CENTERSYNC_CONFIG), затем переменные окружения CENTERSYNC_*, затем флаги команды.
// Готовый объект передается в конструкторы компонентов, глобального состояния нет.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath переменная окружения с путем к файлу конфигурации
const EnvConfigPath = "CENTERSYNC_CONFIG"

// LogConfig настройки логирования
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// ParseLevel преобразует строковый уровень в slog.Level
func (l LogConfig) ParseLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}

// NewLogger создает slog.Logger по настройкам
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.ParseLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	switch l.Format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text or json", l.Format)
	}
}

// ResolvePath возвращает путь к файлу конфигурации: флаг, затем переменная окружения.
// Пустая строка означает "только значения по умолчанию".
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvConfigPath)
}

// loadFile декодирует YAML файл поверх уже заполненной структуры
func loadFile(path string, out any) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// envString переопределяет значение из переменной окружения, если она задана
func envString(name string, target *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*target = v
	}
}
