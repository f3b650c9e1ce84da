package tenant

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/centersync/pkg/api"
)

func TestRouter_Namespace(t *testing.T) {
	router, dir := setupTestRouter(t)
	ctx := context.Background()

	ns, err := router.Namespace(ctx, "center:z0zwv63iaazyq8idwjd8")
	require.NoError(t, err)
	assert.Equal(t, "z0zwv63iaazyq8idwjd8", ns.Name())

	// файл создан и схема на месте
	_, err = os.Stat(filepath.Join(dir, "z0zwv63iaazyq8idwjd8.db"))
	require.NoError(t, err)

	count, err := ns.CountRecords(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// повторный вызов возвращает тот же namespace
	again, err := router.Namespace(ctx, "center:z0zwv63iaazyq8idwjd8")
	require.NoError(t, err)
	assert.Same(t, ns, again)
}

func TestRouter_InvalidCenterID(t *testing.T) {
	router, dir := setupTestRouter(t)

	for _, id := range []string{"", "center:", "center:../../etc", "center:a b", "alpha", "evil:alpha", "x:y:alpha", "center:Alpha"} {
		_, err := router.Namespace(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidCenterID, id)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRouter_ConcurrentOpen(t *testing.T) {
	router, _ := setupTestRouter(t)
	ctx := context.Background()

	const workers = 16
	results := make([]*Namespace, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ns, err := router.Namespace(ctx, "center:shared")
			assert.NoError(t, err)
			results[i] = ns
		}(i)
	}
	wg.Wait()

	for _, ns := range results {
		assert.Same(t, results[0], ns)
	}
	assert.Equal(t, []string{"shared"}, router.Open())
}

func TestRouter_ReopenAfterRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	router, err := NewRouter(dir, 0, setupTestLogger())
	require.NoError(t, err)
	applier := NewApplier(router, DeleteIdempotent, setupTestLogger())
	require.NoError(t, applier.Apply(ctx, "center:a", []api.SyncEvent{event("CREATE", "r1", `{"v":1}`)}, nil))
	require.NoError(t, router.Close())

	// повторная миграция существующего namespace не трогает данные
	router, err = NewRouter(dir, 0, setupTestLogger())
	require.NoError(t, err)
	defer router.Close()

	ns, err := router.Namespace(ctx, "center:a")
	require.NoError(t, err)
	count, err := ns.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRouter_Closed(t *testing.T) {
	router, err := NewRouter(t.TempDir(), 0, setupTestLogger())
	require.NoError(t, err)

	require.NoError(t, router.Close())
	require.NoError(t, router.Close())

	_, err = router.Namespace(context.Background(), "center:a")
	assert.ErrorIs(t, err, ErrRouterClosed)
}

func TestRouter_EvictIdle(t *testing.T) {
	ctx := context.Background()
	router, err := NewRouter(t.TempDir(), time.Hour, setupTestLogger())
	require.NoError(t, err)
	defer router.Close()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	router.now = func() time.Time { return now }

	applier := NewApplier(router, DeleteIdempotent, setupTestLogger())
	require.NoError(t, applier.Apply(ctx, "center:idle", []api.SyncEvent{event("CREATE", "r1", `{"v":1}`)}, nil))

	held, release, err := router.Acquire(ctx, "center:busy")
	require.NoError(t, err)

	// простой меньше таймаута
	assert.Empty(t, router.evictIdle(now.Add(30*time.Minute)))

	// занятый namespace остается открытым
	assert.Equal(t, []string{"idle"}, router.evictIdle(now.Add(2*time.Hour)))
	assert.Equal(t, []string{"busy"}, router.Open())

	count, err := held.CountRecords(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	release()
	release()
	assert.Equal(t, []string{"busy"}, router.evictIdle(now.Add(2*time.Hour)))
	assert.Empty(t, router.Open())

	// вытесненный namespace открывается заново с прежними данными
	ns, err := router.Namespace(ctx, "center:idle")
	require.NoError(t, err)
	count, err = ns.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRouter_EvictIdleDisabled(t *testing.T) {
	router, _ := setupTestRouter(t)

	_, err := router.Namespace(context.Background(), "center:a")
	require.NoError(t, err)

	assert.Empty(t, router.evictIdle(time.Now().Add(24*time.Hour)))
	assert.Equal(t, []string{"a"}, router.Open())
}
