package config

import (
	"fmt"
	"net/url"
	"time"
)

// RetryConfig экспоненциальный backoff при ошибке загрузки чанка
type RetryConfig struct {
	Attempts  int           `yaml:"attempts"`   // повторов сверх первой попытки
	BaseDelay time.Duration `yaml:"base_delay"` // первая задержка
	MaxDelay  time.Duration `yaml:"max_delay"`  // потолок задержки
}

// Client конфигурация локального экземпляра
type Client struct {
	Log            LogConfig     `yaml:"log"`
	CentralURL     string        `yaml:"central_url"`
	DBPath         string        `yaml:"db_path"`
	Retry          RetryConfig   `yaml:"retry"`
	Interval       time.Duration `yaml:"interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	BatchSize      int           `yaml:"batch_size"`
	CryptoWorkers  int           `yaml:"crypto_workers"`
	CompressChunks bool          `yaml:"compress_chunks"`
}

// DefaultClient возвращает конфигурацию клиента по умолчанию
func DefaultClient() Client {
	return Client{
		Log:            LogConfig{Level: "info", Format: "text"},
		CentralURL:     "http://127.0.0.1:4000",
		DBPath:         "centersync-client.db",
		Retry:          RetryConfig{Attempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second},
		Interval:       time.Minute,
		RequestTimeout: 30 * time.Second,
		BatchSize:      100,
		CryptoWorkers:  1,
	}
}

// LoadClient загружает конфигурацию клиента: defaults -> файл -> окружение
func LoadClient(path string) (*Client, error) {
	cfg := DefaultClient()

	if err := loadFile(path, &cfg); err != nil {
		return nil, err
	}

	envString("CENTERSYNC_CENTRAL_URL", &cfg.CentralURL)
	envString("CENTERSYNC_DB_PATH", &cfg.DBPath)
	envString("CENTERSYNC_LOG_LEVEL", &cfg.Log.Level)

	return &cfg, nil
}

// Validate проверяет конфигурацию клиента
func (c *Client) Validate() error {
	u, err := url.Parse(c.CentralURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("central_url must be an absolute URL, got %q", c.CentralURL)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.CryptoWorkers < 1 {
		return fmt.Errorf("crypto_workers must be positive, got %d", c.CryptoWorkers)
	}
	if c.Retry.Attempts < 0 {
		return fmt.Errorf("retry.attempts must not be negative, got %d", c.Retry.Attempts)
	}
	if c.Retry.Attempts > 0 && (c.Retry.BaseDelay <= 0 || c.Retry.MaxDelay < c.Retry.BaseDelay) {
		return fmt.Errorf("retry requires 0 < base_delay <= max_delay")
	}
	if _, err := c.Log.ParseLevel(); err != nil {
		return err
	}
	return nil
}
