// Package sync реализует клиентскую сторону синхронизации: проверку доступности,
// подпись чанков и цикл выгрузки outbox в центр.
package sync

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iudanet/centersync/internal/client/storage"
	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/internal/workpool"
	"github.com/iudanet/centersync/pkg/api"
)

// Options параметры цикла синхронизации
type Options struct {
	Interval       time.Duration // пауза между проходами
	BatchSize      int           // размер чанка
	RetryAttempts  int           // повторов загрузки чанка сверх первой попытки
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	Compress       bool // сжимать тело чанка zstd
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		Interval:       time.Minute,
		BatchSize:      100,
		RetryAttempts:  3,
		RetryBaseDelay: time.Second,
		RetryMaxDelay:  30 * time.Second,
	}
}

// normalize подставляет значения по умолчанию вместо некорректных
func (o Options) normalize() Options {
	def := DefaultOptions()
	if o.Interval <= 0 {
		o.Interval = def.Interval
	}
	if o.BatchSize <= 0 {
		o.BatchSize = def.BatchSize
	}
	if o.RetryAttempts < 0 {
		o.RetryAttempts = 0
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = def.RetryBaseDelay
	}
	if o.RetryMaxDelay < o.RetryBaseDelay {
		o.RetryMaxDelay = o.RetryBaseDelay
	}
	return o
}

// Result итог одного прохода
type Result struct {
	CenterID  string
	Role      models.InstanceRole
	Available bool
	Pending   int // неотправленных событий в начале выгрузки
	Chunks    int // успешно загружено чанков
	Pushed    int // отмечено отправленными событий
}

// Syncer фоновая задача выгрузки outbox. Одновременно выполняется не больше одного прохода.
type Syncer struct {
	outbox   storage.OutboxStorage
	settings storage.SettingsStorage
	keys     KeyProvider
	api      CentralAPI
	prover   *Prover
	signer   *Signer
	observer Observer
	logger   *slog.Logger
	opts     Options
	running  atomic.Bool
}

// NewSyncer creates a new Syncer
func NewSyncer(
	outbox storage.OutboxStorage,
	settings storage.SettingsStorage,
	keys KeyProvider,
	client CentralAPI,
	pool *workpool.Pool,
	observer Observer,
	opts Options,
	logger *slog.Logger,
) *Syncer {
	if observer == nil {
		observer = NewLogObserver(logger)
	}

	return &Syncer{
		outbox:   outbox,
		settings: settings,
		keys:     keys,
		api:      client,
		prover:   NewProver(client, pool, logger),
		signer:   NewSigner(pool),
		observer: observer,
		logger:   logger,
		opts:     opts.normalize(),
	}
}

// Run выполняет проходы до отмены ctx, засыпая на Interval между ними.
// Ошибка прохода не останавливает цикл. При отмене возвращает nil.
func (s *Syncer) Run(ctx context.Context) error {
	s.logger.Info("Sync loop started", "interval", s.opts.Interval, "batch_size", s.opts.BatchSize)

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("Sync pass failed", "error", err)
		}

		if ctx.Err() != nil {
			s.logger.Info("Sync loop stopped")
			return nil
		}

		s.emit(Event{Type: EventSleep, Interval: s.opts.Interval})

		timer := time.NewTimer(s.opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Sync loop stopped")
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce выполняет один полный проход: роль, доступность, выгрузка до пустой очереди.
// Для не-master экземпляра возвращает Result без ошибки.
func (s *Syncer) RunOnce(ctx context.Context) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	result := &Result{}

	role, err := s.loadRole(ctx)
	if err != nil {
		return result, err
	}
	result.Role = role
	s.emit(Event{Type: EventRoleChecked, Role: role})

	if !role.IsMaster() {
		s.emit(Event{Type: EventNotMaster, Role: role})
		return result, nil
	}

	centerID, key, err := s.loadIdentity(ctx)
	if err != nil {
		s.emit(Event{Type: EventUnavailable, Err: err})
		return result, err
	}
	result.CenterID = centerID

	if err := s.prover.Check(ctx, centerID, key); err != nil {
		s.emit(Event{Type: EventUnavailable, CenterID: centerID, Err: err})
		return result, fmt.Errorf("sync is not available: %w", err)
	}
	result.Available = true
	s.emit(Event{Type: EventAvailable, CenterID: centerID})

	if err := s.drain(ctx, centerID, key, result); err != nil {
		return result, err
	}

	return result, nil
}

// drain выгружает очередь чанками по BatchSize, пока счетчик неотправленных не станет нулем
func (s *Syncer) drain(ctx context.Context, centerID string, key *rsa.PrivateKey, result *Result) error {
	s.emit(Event{Type: EventCollectingChanges, CenterID: centerID})

	pending, err := s.outbox.CountPending(ctx)
	if err != nil {
		s.emit(Event{Type: EventCollectingChangesFailed, CenterID: centerID, Err: err})
		return fmt.Errorf("failed to count pending events: %w", err)
	}
	result.Pending = pending

	if pending == 0 {
		return nil
	}

	total := pending
	s.emit(Event{Type: EventStart, CenterID: centerID, Pending: pending, Total: total})

	for pending > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		events, err := s.outbox.FetchPending(ctx, s.opts.BatchSize)
		if err != nil {
			s.emit(Event{Type: EventCollectingChangesFailed, CenterID: centerID, Err: err})
			return fmt.Errorf("failed to fetch pending events: %w", err)
		}
		if len(events) == 0 {
			break
		}

		if err := s.uploadChunk(ctx, centerID, key, events); err != nil {
			s.emit(Event{
				Type:      EventUploadChunkFailed,
				CenterID:  centerID,
				ChunkSize: len(events),
				Uploaded:  result.Pushed,
				Err:       err,
			})
			// возвращаемся к внешнему ожиданию, очередь не тронута
			return err
		}

		ids := make([]uint64, 0, len(events))
		for _, event := range events {
			ids = append(ids, event.LocalID)
		}
		if err := s.outbox.MarkPushed(ctx, ids); err != nil {
			return fmt.Errorf("failed to mark events as pushed: %w", err)
		}

		result.Chunks++
		result.Pushed += len(ids)

		pending, err = s.outbox.CountPending(ctx)
		if err != nil {
			s.emit(Event{Type: EventCollectingChangesFailed, CenterID: centerID, Err: err})
			return fmt.Errorf("failed to count pending events: %w", err)
		}

		// writer мог добавить события во время выгрузки
		total = max(total, result.Pushed+pending)
		s.emit(Event{
			Type:      EventProgress,
			CenterID:  centerID,
			ChunkSize: len(ids),
			Uploaded:  result.Pushed,
			Pending:   pending,
			Total:     total,
		})
	}

	s.emit(Event{Type: EventCompleted, CenterID: centerID, Uploaded: result.Pushed, Total: total})
	return nil
}

// uploadChunk подписывает чанк и загружает его с ограниченным экспоненциальным backoff.
// Повторяются только транспортные ошибки, 5xx и 429.
func (s *Syncer) uploadChunk(ctx context.Context, centerID string, key *rsa.PrivateKey, events []*models.OutboxEvent) error {
	body, err := s.signer.Encode(events)
	if err != nil {
		return err
	}

	signature, err := s.signer.Sign(ctx, centerID, key, body)
	if err != nil {
		return err
	}

	backoff := retry.NewExponential(s.opts.RetryBaseDelay)
	backoff = retry.WithCappedDuration(s.opts.RetryMaxDelay, backoff)
	backoff = retry.WithMaxRetries(uint64(s.opts.RetryAttempts), backoff)

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		resp, err := s.api.UploadChunk(ctx, centerID, signature, body, s.opts.Compress)
		if err != nil {
			classified := classifyStatusError(err)
			if isRetryable(ctx, err) {
				s.logger.Warn("Chunk upload failed, will retry",
					"center_id", centerID,
					"attempt", attempt,
					"chunk_size", len(events),
					"error", err)
				return retry.RetryableError(classified)
			}
			return classified
		}

		if resp.Status != api.StatusAccepted {
			return fmt.Errorf("%w: status %q", ErrUnexpectedResponse, resp.Status)
		}
		return nil
	})
}

// loadRole читает роль экземпляра; отсутствие настройки означает не-master
func (s *Syncer) loadRole(ctx context.Context) (models.InstanceRole, error) {
	value, err := s.settings.GetSetting(ctx, storage.SettingInstanceType)
	if err != nil {
		if errors.Is(err, storage.ErrSettingNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load instance role: %w", err)
	}
	return models.InstanceRole(value), nil
}

// loadIdentity читает center_id и приватный ключ
func (s *Syncer) loadIdentity(ctx context.Context) (string, *rsa.PrivateKey, error) {
	centerID, err := s.settings.GetSetting(ctx, storage.SettingCenterID)
	if err != nil {
		if errors.Is(err, storage.ErrSettingNotFound) {
			return "", nil, fmt.Errorf("%w: center id is not set", ErrNotConfigured)
		}
		return "", nil, fmt.Errorf("failed to load center id: %w", err)
	}

	key, err := s.keys.PrivateKey(ctx)
	if err != nil {
		return "", nil, err
	}

	return centerID, key, nil
}

// emit уведомляет наблюдателя; паника наблюдателя игнорируется
func (s *Syncer) emit(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Sync observer panicked", "event", string(event.Type), "panic", r)
		}
	}()

	s.observer.Notify(event)
}
