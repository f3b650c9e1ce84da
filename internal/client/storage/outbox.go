package storage

import (
	"context"

	"github.com/iudanet/centersync/internal/models"
)

//go:generate moq -out outbox_mock.go . OutboxStorage

// OutboxStorage локальная очередь мутаций, ожидающих отправки в центр.
// События никогда не удаляются, единственная мутация после вставки - отметка pushed.
type OutboxStorage interface {
	// Append добавляет событие в конец очереди и возвращает присвоенный local_id.
	// Pushed всегда false для нового события.
	Append(ctx context.Context, event *models.OutboxEvent) (uint64, error)

	// CountPending возвращает количество неотправленных событий
	CountPending(ctx context.Context) (int, error)

	// FetchPending возвращает до limit неотправленных событий в порядке вставки
	FetchPending(ctx context.Context, limit int) ([]*models.OutboxEvent, error)

	// MarkPushed отмечает ровно указанные события как отправленные.
	// Неизвестные и уже отмеченные id игнорируются.
	MarkPushed(ctx context.Context, ids []uint64) error

	// Get возвращает событие по local_id
	// Returns ErrEventNotFound if event doesn't exist
	Get(ctx context.Context, id uint64) (*models.OutboxEvent, error)
}
