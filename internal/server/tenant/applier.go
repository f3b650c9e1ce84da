package tenant

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/zeebo/blake3"

	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/internal/validation"
	"github.com/iudanet/centersync/pkg/api"
)

// DeletePolicy поведение DELETE для отсутствующей записи
type DeletePolicy string

const (
	// DeleteIdempotent повторный DELETE успешен, как повторный CREATE
	DeleteIdempotent DeletePolicy = "idempotent"
	// DeleteStrict DELETE отсутствующей записи - ошибка (поведение исходной системы)
	DeleteStrict DeletePolicy = "strict"
)

// ParseDeletePolicy разбирает значение из конфигурации
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(s) {
	case DeleteIdempotent, DeleteStrict:
		return DeletePolicy(s), nil
	case "":
		return DeleteIdempotent, nil
	default:
		return "", fmt.Errorf("unknown delete policy %q", s)
	}
}

// Applier воспроизводит события чанка в namespace центра
type Applier struct {
	router *Router
	logger *slog.Logger
	policy DeletePolicy
	now    func() time.Time
}

// NewApplier создает Applier
func NewApplier(router *Router, policy DeletePolicy, logger *slog.Logger) *Applier {
	if policy == "" {
		policy = DeleteIdempotent
	}
	return &Applier{
		router: router,
		logger: logger,
		policy: policy,
		now:    time.Now,
	}
}

// Policy возвращает действующую политику удаления
func (a *Applier) Policy() DeletePolicy {
	return a.policy
}

// Apply применяет события в порядке массива в одной транзакции:
// CREATE и UPDATE - upsert по record_id (последняя запись побеждает), DELETE - удаление.
// Любая ошибка (включая ErrUnknownEvent) откатывает весь чанк.
// rawBody используется только для digest в журнале.
func (a *Applier) Apply(ctx context.Context, centerID string, events []api.SyncEvent, rawBody []byte) error {
	ns, release, err := a.router.Acquire(ctx, centerID)
	if err != nil {
		return err
	}
	defer release()

	tx, err := ns.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i := range events {
		if err := a.applyEvent(ctx, tx, &events[i]); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}

	digest := blake3.Sum256(rawBody)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO chunk_journal (digest, events, received_at) VALUES (?, ?, ?)`,
		hex.EncodeToString(digest[:]),
		len(events),
		formatTime(a.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to record chunk: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.logger.DebugContext(ctx, "Chunk applied",
		"namespace", ns.Name(),
		"events", len(events))

	return nil
}

// applyEvent применяет одно событие внутри транзакции
func (a *Applier) applyEvent(ctx context.Context, tx *sql.Tx, event *api.SyncEvent) error {
	if err := validation.ValidateRecordID(event.RecordID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	switch models.EventKind(event.Event) {
	case models.EventCreate, models.EventUpdate:
		return upsertRecord(ctx, tx, event)
	case models.EventDelete:
		return a.deleteRecord(ctx, tx, event.RecordID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event.Event)
	}
}

// upsertRecord вставляет или перезаписывает запись; created_at первой версии сохраняется
func upsertRecord(ctx context.Context, tx *sql.Tx, event *api.SyncEvent) error {
	query := `
		INSERT INTO records (record_id, kind, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(record_id) DO UPDATE SET
			kind = excluded.kind,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`

	var payload sql.NullString
	if len(event.Content.Payload) > 0 {
		payload = sql.NullString{String: string(event.Content.Payload), Valid: true}
	}

	ts := formatTime(event.CreatedAt)
	if _, err := tx.ExecContext(ctx, query, event.RecordID, event.Content.Kind, payload, ts, ts); err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", event.RecordID, err)
	}

	return nil
}

// deleteRecord удаляет запись с учетом политики
func (a *Applier) deleteRecord(ctx context.Context, tx *sql.Tx, recordID string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE record_id = ?`, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", recordID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", recordID, err)
	}

	if affected == 0 && a.policy == DeleteStrict {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
	}

	return nil
}
