// Package tenant отображает центр на изолированное хранилище (отдельный файл SQLite
// на namespace) и применяет к нему события чанков.
package tenant

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/centersync/internal/server/storage/sqlite"
	"github.com/iudanet/centersync/internal/validation"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Router открывает namespace тенантов по требованию.
// Блокировка карты берется только на поиск и вставку, открытие и миграции идут без нее.
// Namespace без активных пользователей закрывается после idleTimeout простоя.
type Router struct {
	logger      *slog.Logger
	migrations  fs.FS
	namespaces  map[string]*Namespace
	stopC       chan struct{}
	now         func() time.Time
	dir         string
	group       singleflight.Group
	idleTimeout time.Duration
	stopOnce    sync.Once
	mu          sync.Mutex
	closed      bool
}

// NewRouter создает роутер, хранящий базы тенантов в dir.
// idleTimeout <= 0 отключает закрытие по простою.
func NewRouter(dir string, idleTimeout time.Duration, logger *slog.Logger) (*Router, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create tenants dir: %w", err)
	}

	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant migrations: %w", err)
	}

	r := &Router{
		logger:      logger,
		migrations:  migrations,
		namespaces:  make(map[string]*Namespace),
		stopC:       make(chan struct{}),
		now:         time.Now,
		dir:         dir,
		idleTimeout: idleTimeout,
	}

	if idleTimeout > 0 {
		go r.evictLoop()
	}

	return r, nil
}

// Namespace возвращает хранилище центра, создавая и мигрируя его при первом обращении.
// Хендл без Acquire может быть закрыт после idleTimeout простоя.
func (r *Router) Namespace(ctx context.Context, centerID string) (*Namespace, error) {
	ns, release, err := r.Acquire(ctx, centerID)
	if err != nil {
		return nil, err
	}
	release()
	return ns, nil
}

// Acquire возвращает namespace центра и функцию release.
// До вызова release namespace не закрывается по простою.
// Параллельные первые обращения к одному namespace открывают базу один раз.
func (r *Router) Acquire(ctx context.Context, centerID string) (*Namespace, func(), error) {
	name, err := validation.NamespaceFor(centerID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidCenterID, err)
	}

	for {
		ns, err := r.acquireOpen(name)
		if err != nil {
			return nil, nil, err
		}
		if ns != nil {
			return ns, r.releaseFunc(ns), nil
		}

		// после открытия namespace уже в карте; если его успели вытеснить, открываем заново
		if err := r.open(ctx, name); err != nil {
			return nil, nil, err
		}
	}
}

// open открывает и мигрирует namespace и кладет его в карту
func (r *Router) open(ctx context.Context, name string) error {
	ch := r.group.DoChan(name, func() (any, error) {
		r.mu.Lock()
		_, exists := r.namespaces[name]
		r.mu.Unlock()
		if exists {
			return nil, nil
		}

		// открытие идет без отмены: его результат ждут все запросы к namespace
		openCtx := context.WithoutCancel(ctx)
		path := filepath.Join(r.dir, name+".db")

		db, err := sqlite.Open(openCtx, path, r.migrations)
		if err != nil {
			return nil, fmt.Errorf("failed to open namespace %s: %w", name, err)
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			_ = db.Close()
			return nil, ErrRouterClosed
		}
		r.namespaces[name] = &Namespace{name: name, db: db, lastUsed: r.now()}

		r.logger.Info("Tenant namespace opened", "namespace", name, "path", path)
		return nil, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// acquireOpen захватывает уже открытый namespace; nil, если он не открыт
func (r *Router) acquireOpen(name string) (*Namespace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRouterClosed
	}

	ns := r.namespaces[name]
	if ns != nil {
		ns.refs++
		ns.lastUsed = r.now()
	}
	return ns, nil
}

func (r *Router) releaseFunc(ns *Namespace) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			ns.refs--
			ns.lastUsed = r.now()
		})
	}
}

func (r *Router) evictLoop() {
	ticker := time.NewTicker(max(r.idleTimeout/2, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(r.now())
		case <-r.stopC:
			return
		}
	}
}

// evictIdle закрывает namespace без пользователей, простаивающие дольше idleTimeout.
// Возвращает имена закрытых namespace.
func (r *Router) evictIdle(now time.Time) []string {
	r.mu.Lock()
	if r.closed || r.idleTimeout <= 0 {
		r.mu.Unlock()
		return nil
	}

	var idle []*Namespace
	for name, ns := range r.namespaces {
		if ns.refs == 0 && now.Sub(ns.lastUsed) >= r.idleTimeout {
			delete(r.namespaces, name)
			idle = append(idle, ns)
		}
	}
	r.mu.Unlock()

	names := make([]string, 0, len(idle))
	for _, ns := range idle {
		if err := ns.db.Close(); err != nil {
			r.logger.Warn("Failed to close idle namespace", "namespace", ns.name, "error", err)
		}
		names = append(names, ns.name)
		r.logger.Debug("Idle tenant namespace closed", "namespace", ns.name)
	}
	sort.Strings(names)

	return names
}

// Open возвращает имена открытых namespace
func (r *Router) Open() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close закрывает все namespace; повторный вызов безопасен
func (r *Router) Close() error {
	r.stopOnce.Do(func() { close(r.stopC) })

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var firstErr error
	for name, ns := range r.namespaces {
		if err := ns.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close namespace %s: %w", name, err)
		}
	}
	r.namespaces = nil

	return firstErr
}
