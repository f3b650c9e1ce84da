package config

import (
	"fmt"
	"time"
)

// Политики удаления отсутствующей записи
const (
	DeletePolicyIdempotent = "idempotent"
	DeletePolicyStrict     = "strict"
)

// RateLimitConfig ограничение частоты запросов за окно Window.
// Requests считается на аутентифицированный центр, IPRequests - на адрес клиента до проверки подписи.
// Нулевое значение отключает соответствующий лимит.
type RateLimitConfig struct {
	Requests          int           `yaml:"requests"`
	IPRequests        int           `yaml:"ip_requests"`
	Window            time.Duration `yaml:"window"`
	TrustProxyHeaders bool          `yaml:"trust_proxy_headers"`
}

// Enabled сообщает, включен ли хотя бы один лимит
func (r RateLimitConfig) Enabled() bool {
	return r.Requests > 0 || r.IPRequests > 0
}

// Server конфигурация центрального сервера
type Server struct {
	Log               LogConfig       `yaml:"log"`
	ListenAddr        string          `yaml:"listen_addr"`
	DirectoryDB       string          `yaml:"directory_db"`
	TenantsDir        string          `yaml:"tenants_dir"`
	DeletePolicy      string          `yaml:"delete_policy"`
	RateLimit         RateLimitConfig `yaml:"rate_limit"`
	CryptoWorkers     int             `yaml:"crypto_workers"`
	MaxChunkBytes     int64           `yaml:"max_chunk_bytes"`
	TenantIdleTimeout time.Duration   `yaml:"tenant_idle_timeout"` // 0 - namespace не закрываются до остановки
	ReadTimeout       time.Duration   `yaml:"read_timeout"`
	WriteTimeout      time.Duration   `yaml:"write_timeout"`
	ShutdownTimeout   time.Duration   `yaml:"shutdown_timeout"`
}

// DefaultServer возвращает конфигурацию сервера по умолчанию
func DefaultServer() Server {
	return Server{
		Log:           LogConfig{Level: "info", Format: "text"},
		ListenAddr:    ":4000",
		DirectoryDB:   "centersync.db",
		TenantsDir:    "tenants",
		DeletePolicy:  DeletePolicyIdempotent,
		RateLimit:     RateLimitConfig{Requests: 120, IPRequests: 600, Window: time.Minute},
		CryptoWorkers: 4,
		MaxChunkBytes: 8 << 20,

		TenantIdleTimeout: 10 * time.Minute,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,

		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadServer загружает конфигурацию сервера: defaults -> файл -> окружение
func LoadServer(path string) (*Server, error) {
	cfg := DefaultServer()

	if err := loadFile(path, &cfg); err != nil {
		return nil, err
	}

	envString("CENTERSYNC_LISTEN_ADDR", &cfg.ListenAddr)
	envString("CENTERSYNC_DIRECTORY_DB", &cfg.DirectoryDB)
	envString("CENTERSYNC_TENANTS_DIR", &cfg.TenantsDir)
	envString("CENTERSYNC_DELETE_POLICY", &cfg.DeletePolicy)
	envString("CENTERSYNC_LOG_LEVEL", &cfg.Log.Level)

	return &cfg, nil
}

// Validate проверяет конфигурацию сервера
func (s *Server) Validate() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if s.DirectoryDB == "" {
		return fmt.Errorf("directory_db is required")
	}
	if s.TenantsDir == "" {
		return fmt.Errorf("tenants_dir is required")
	}
	if s.TenantIdleTimeout < 0 {
		return fmt.Errorf("tenant_idle_timeout must not be negative, got %s", s.TenantIdleTimeout)
	}
	if s.DeletePolicy != DeletePolicyIdempotent && s.DeletePolicy != DeletePolicyStrict {
		return fmt.Errorf("delete_policy must be %q or %q, got %q", DeletePolicyIdempotent, DeletePolicyStrict, s.DeletePolicy)
	}
	if s.CryptoWorkers < 1 {
		return fmt.Errorf("crypto_workers must be positive, got %d", s.CryptoWorkers)
	}
	if s.MaxChunkBytes < 1 {
		return fmt.Errorf("max_chunk_bytes must be positive, got %d", s.MaxChunkBytes)
	}
	if s.RateLimit.Requests < 0 || s.RateLimit.IPRequests < 0 || (s.RateLimit.Enabled() && s.RateLimit.Window <= 0) {
		return fmt.Errorf("rate_limit requires non-negative requests and a positive window")
	}
	if _, err := s.Log.ParseLevel(); err != nil {
		return err
	}
	return nil
}
