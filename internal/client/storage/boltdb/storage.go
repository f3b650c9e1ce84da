package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/centersync/internal/client/storage"
)

var (
	// BoltDB bucket names
	bucketOutbox   = []byte("outbox")         // local_id -> JSON события
	bucketPending  = []byte("outbox_pending") // local_id -> pendingMark, индекс неотправленных
	bucketSettings = []byte("settings")       // ключ -> значение
)

// pendingMark значение в индексе неотправленных; важен только ключ
var pendingMark = []byte{1}

// Проверяем, что Storage реализует интерфейсы клиента
var (
	_ storage.OutboxStorage   = (*Storage)(nil)
	_ storage.SettingsStorage = (*Storage)(nil)
)

// Storage represents BoltDB storage implementation for client
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB; таймаут защищает от второго процесса, держащего файл
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	// Инициализируем buckets
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketOutbox, bucketPending, bucketSettings} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// itob кодирует local_id в big-endian, чтобы порядок ключей совпадал с порядком вставки
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// btoi декодирует ключ обратно в local_id
func btoi(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
