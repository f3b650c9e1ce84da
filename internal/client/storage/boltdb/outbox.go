package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/centersync/internal/client/storage"
	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/internal/validation"
)

// Append добавляет событие в outbox и в индекс неотправленных
func (s *Storage) Append(ctx context.Context, event *models.OutboxEvent) (uint64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	if err := validateEvent(event); err != nil {
		return 0, err
	}

	var id uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		outbox := tx.Bucket(bucketOutbox)

		seq, err := outbox.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate local id: %w", err)
		}

		stored := *event
		stored.LocalID = seq
		stored.Pushed = false
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = time.Now().UTC()
		}

		data, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("failed to marshal outbox event: %w", err)
		}

		key := itob(seq)
		if err := outbox.Put(key, data); err != nil {
			return fmt.Errorf("failed to save outbox event: %w", err)
		}
		if err := tx.Bucket(bucketPending).Put(key, pendingMark); err != nil {
			return fmt.Errorf("failed to index pending event: %w", err)
		}

		id = seq
		return nil
	})
	if err != nil {
		return 0, err
	}

	event.LocalID = id
	event.Pushed = false
	return id, nil
}

// CountPending возвращает размер индекса неотправленных событий
func (s *Storage) CountPending(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketPending).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending events: %w", err)
	}

	return count, nil
}

// FetchPending возвращает до limit неотправленных событий в порядке local_id
func (s *Storage) FetchPending(ctx context.Context, limit int) ([]*models.OutboxEvent, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	events := make([]*models.OutboxEvent, 0, limit)

	err := s.db.View(func(tx *bbolt.Tx) error {
		outbox := tx.Bucket(bucketOutbox)
		c := tx.Bucket(bucketPending).Cursor()

		for k, _ := c.First(); k != nil && len(events) < limit; k, _ = c.Next() {
			data := outbox.Get(k)
			if data == nil {
				// индекс ссылается на отсутствующую запись - пропускаем
				continue
			}

			var event models.OutboxEvent
			if err := json.Unmarshal(data, &event); err != nil {
				return fmt.Errorf("failed to unmarshal outbox event %d: %w", btoi(k), err)
			}
			events = append(events, &event)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending events: %w", err)
	}

	return events, nil
}

// MarkPushed отмечает события как отправленные и удаляет их из индекса
func (s *Storage) MarkPushed(ctx context.Context, ids []uint64) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if len(ids) == 0 {
		return nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		outbox := tx.Bucket(bucketOutbox)
		pending := tx.Bucket(bucketPending)

		for _, id := range ids {
			key := itob(id)
			if pending.Get(key) == nil {
				// уже отправлено или неизвестно
				continue
			}

			data := outbox.Get(key)
			if data != nil {
				var event models.OutboxEvent
				if err := json.Unmarshal(data, &event); err != nil {
					return fmt.Errorf("failed to unmarshal outbox event %d: %w", id, err)
				}
				event.Pushed = true

				updated, err := json.Marshal(&event)
				if err != nil {
					return fmt.Errorf("failed to marshal outbox event %d: %w", id, err)
				}
				if err := outbox.Put(key, updated); err != nil {
					return fmt.Errorf("failed to update outbox event %d: %w", id, err)
				}
			}

			if err := pending.Delete(key); err != nil {
				return fmt.Errorf("failed to unindex event %d: %w", id, err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// Get возвращает событие по local_id
func (s *Storage) Get(ctx context.Context, id uint64) (*models.OutboxEvent, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var event *models.OutboxEvent
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketOutbox).Get(itob(id))
		if data == nil {
			return storage.ErrEventNotFound
		}

		event = &models.OutboxEvent{}
		if err := json.Unmarshal(data, event); err != nil {
			return fmt.Errorf("failed to unmarshal outbox event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// validateEvent проверяет событие перед вставкой
func validateEvent(event *models.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if err := validation.ValidateRecordID(event.RecordID); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	if !event.Event.Valid() {
		return fmt.Errorf("invalid event: unknown event kind %q", event.Event)
	}
	if err := event.Content.Validate(event.Event); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	return nil
}
