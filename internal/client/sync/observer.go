package sync

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/iudanet/centersync/internal/models"
)

// EventType тип наблюдаемого события синхронизатора
type EventType string

// События синхронизатора
const (
	EventRoleChecked             EventType = "sync_role_checked"
	EventNotMaster               EventType = "sync_not_master"
	EventAvailable               EventType = "sync_available"
	EventUnavailable             EventType = "sync_unavailable"
	EventCollectingChanges       EventType = "sync_collecting_changes"
	EventCollectingChangesFailed EventType = "sync_collecting_changes_failed"
	EventStart                   EventType = "sync_start"
	EventProgress                EventType = "sync_progress"
	EventUploadChunkFailed       EventType = "sync_upload_chunk_failed"
	EventCompleted               EventType = "sync_completed"
	EventSleep                   EventType = "sync_sleep"
)

// Event описывает один переход состояния синхронизатора
type Event struct {
	Time      time.Time
	Err       error
	Type      EventType
	CenterID  string
	Role      models.InstanceRole
	Pending   int           // неотправленных событий на момент перехода
	ChunkSize int           // размер текущего чанка
	Uploaded  int           // отправлено за текущий проход
	Total     int           // ожидаемый объем прохода
	Interval  time.Duration // для sync_sleep
}

// Observer получает события синхронизатора. Вызов не должен блокироваться надолго;
// ошибки и паники наблюдателя на работу цикла не влияют.
type Observer interface {
	Notify(event Event)
}

// ObserverFunc адаптер функции к Observer
type ObserverFunc func(event Event)

// Notify вызывает f(event)
func (f ObserverFunc) Notify(event Event) {
	f(event)
}

// LogObserver пишет события в slog
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver создает наблюдателя, пишущего в logger
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// Notify логирует событие; отказы на уровне warn
func (o *LogObserver) Notify(event Event) {
	attrs := []any{"event", string(event.Type)}
	if event.CenterID != "" {
		attrs = append(attrs, "center_id", event.CenterID)
	}

	switch event.Type {
	case EventRoleChecked, EventNotMaster:
		attrs = append(attrs, "role", string(event.Role))
	case EventStart:
		attrs = append(attrs, "pending", event.Pending)
	case EventProgress:
		attrs = append(attrs, "chunk_size", event.ChunkSize, "uploaded", event.Uploaded, "total", event.Total)
	case EventCompleted:
		attrs = append(attrs, "uploaded", event.Uploaded)
	case EventSleep:
		attrs = append(attrs, "interval", event.Interval)
	case EventUploadChunkFailed:
		attrs = append(attrs, "chunk_size", event.ChunkSize)
	}

	if event.Err != nil {
		attrs = append(attrs, "error", event.Err)
		o.logger.Warn("Sync event", attrs...)
		return
	}

	o.logger.Debug("Sync event", attrs...)
}

// ChannelObserver передает события в буферизованный канал (например, в UI).
// Если буфер полон, событие отбрасывается.
type ChannelObserver struct {
	events  chan Event
	dropped atomic.Int64
}

// NewChannelObserver создает наблюдателя с буфером size
func NewChannelObserver(size int) *ChannelObserver {
	if size < 1 {
		size = 1
	}
	return &ChannelObserver{events: make(chan Event, size)}
}

// Notify отправляет событие без блокировки
func (o *ChannelObserver) Notify(event Event) {
	select {
	case o.events <- event:
	default:
		o.dropped.Add(1)
	}
}

// Events канал событий для чтения
func (o *ChannelObserver) Events() <-chan Event {
	return o.events
}

// Dropped количество отброшенных событий
func (o *ChannelObserver) Dropped() int64 {
	return o.dropped.Load()
}

// MultiObserver рассылает события нескольким наблюдателям по порядку
type MultiObserver []Observer

// Notify вызывает каждого наблюдателя
func (m MultiObserver) Notify(event Event) {
	for _, o := range m {
		if o != nil {
			o.Notify(event)
		}
	}
}
