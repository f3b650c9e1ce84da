package tenant

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Record текущее состояние сущности в хранилище центра
type Record struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	RecordID  string
	Kind      string
	Payload   json.RawMessage
}

// JournalEntry запись о примененном чанке
type JournalEntry struct {
	ReceivedAt time.Time
	Digest     string // blake3 тела чанка, hex
	ID         int64
	Events     int
}

// Namespace изолированное хранилище одного центра
type Namespace struct {
	lastUsed time.Time // под Router.mu
	db       *sql.DB
	name     string
	refs     int // активные Acquire, под Router.mu
}

// Name имя namespace (ключевая часть идентификатора центра)
func (n *Namespace) Name() string {
	return n.name
}

// GetRecord возвращает запись по record_id
func (n *Namespace) GetRecord(ctx context.Context, recordID string) (*Record, error) {
	query := `
		SELECT record_id, kind, payload, created_at, updated_at
		FROM records
		WHERE record_id = ?
	`

	var (
		record    Record
		payload   sql.NullString
		createdAt string
		updatedAt string
	)

	err := n.db.QueryRowContext(ctx, query, recordID).Scan(
		&record.RecordID,
		&record.Kind,
		&payload,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	if payload.Valid {
		record.Payload = json.RawMessage(payload.String)
	}
	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if record.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &record, nil
}

// CountRecords возвращает количество записей
func (n *Namespace) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := n.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// Journal возвращает последние limit примененных чанков, новые первыми
func (n *Namespace) Journal(ctx context.Context, limit int) ([]JournalEntry, error) {
	query := `
		SELECT id, digest, events, received_at
		FROM chunk_journal
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := n.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var (
			entry      JournalEntry
			receivedAt string
		)
		if err := rows.Scan(&entry.ID, &entry.Digest, &entry.Events, &receivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		if entry.ReceivedAt, err = parseTime(receivedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

// formatTime время хранится текстом RFC3339Nano в UTC
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}
