package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/centersync/pkg/api"
)

// RateLimiter ограничивает число запросов на ключ в пределах окна (token bucket
// с полным пополнением раз в окно)
type RateLimiter struct {
	buckets  map[string]*bucket
	logger   *slog.Logger
	stopC    chan struct{}
	stopOnce sync.Once
	rate     int
	window   time.Duration
	mu       sync.Mutex
}

type bucket struct {
	lastRefill time.Time
	tokens     int
}

// NewRateLimiter создает limiter на rate запросов за window.
// Фоновая очистка неактивных ключей останавливается через Stop.
func NewRateLimiter(rate int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		window:  window,
		logger:  logger,
		stopC:   make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evict(time.Now())
		case <-rl.stopC:
			return
		}
	}
}

// evict удаляет ключи, не обращавшиеся дольше двух окон
func (rl *RateLimiter) evict(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, b := range rl.buckets {
		if now.Sub(b.lastRefill) > rl.window*2 {
			delete(rl.buckets, key)
		}
	}
}

// Stop останавливает фоновую очистку. Повторный вызов безопасен.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopC) })
}

// Allow расходует токен ключа; false, если токены окна исчерпаны
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.rate, lastRefill: now}
		rl.buckets[key] = b
	}

	if now.Sub(b.lastRefill) >= rl.window {
		b.tokens = rl.rate
		b.lastRefill = now
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--

	return true
}

// Len количество отслеживаемых ключей
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// KeyFunc вычисляет ключ, по которому считается лимит. Пустой ключ лимитом не ограничивается.
type KeyFunc func(r *http.Request) string

// RateLimitMiddleware отвечает 429 {"status":"rate_limited"}, когда ключ исчерпал лимит
func RateLimitMiddleware(limiter *RateLimiter, keyFn KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(key) {
				logger.WarnContext(r.Context(), "Rate limit exceeded",
					"key", key,
					"method", r.Method,
					"path", r.URL.Path,
				)
				WriteStatus(w, http.StatusTooManyRequests, api.StatusRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIPKey ключ по адресу клиента для лимита до аутентификации.
// X-Forwarded-For и X-Real-IP учитываются только при trustProxy.
func ClientIPKey(trustProxy bool) KeyFunc {
	return func(r *http.Request) string {
		return "ip:" + clientIP(r, trustProxy)
	}
}

// CenterKey ключ по центру, аутентифицированному SignatureMiddleware.
// Ставится внутри SignatureMiddleware; без центра в контексте ключ пуст.
func CenterKey(r *http.Request) string {
	center, ok := CenterFromContext(r.Context())
	if !ok {
		return ""
	}
	return "center:" + center.ID
}

// clientIP извлекает IP клиента, при trustProxy с учетом X-Forwarded-For и X-Real-IP
func clientIP(r *http.Request, trustProxy bool) string {
	if !trustProxy {
		return remoteHost(r)
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
