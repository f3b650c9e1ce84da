// Package workpool выполняет CPU-тяжелые операции (RSA подпись и проверка)
// на фиксированном наборе горутин, чтобы они не конкурировали с обработкой запросов.
package workpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrPoolClosed пул остановлен
var ErrPoolClosed = errors.New("worker pool is closed")

// job задача пула и канал для результата
type job struct {
	fn     func() error
	result chan error
}

// Pool ограниченный пул воркеров
type Pool struct {
	logger *slog.Logger
	jobs   chan job
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	size   int
}

// New создает пул с size воркерами
func New(size int, logger *slog.Logger) *Pool {
	if size < 1 {
		size = 1
	}

	p := &Pool{
		logger: logger,
		jobs:   make(chan job),
		done:   make(chan struct{}),
		size:   size,
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}

	return p
}

// Size возвращает количество воркеров
func (p *Pool) Size() int {
	return p.size
}

// worker выполняет задачи до закрытия пула
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case j := <-p.jobs:
			j.result <- p.run(j.fn)
		case <-p.done:
			return
		}
	}
}

// run выполняет задачу, превращая панику в ошибку
func (p *Pool) run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic in worker pool job", "error", r)
			err = fmt.Errorf("worker pool job panicked: %v", r)
		}
	}()

	return fn()
}

// Do передает fn воркеру и ждет результата.
// Если контекст отменен до того, как задача взята воркером, возвращает ctx.Err().
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	// буфер 1: воркер не блокируется, если вызывающий ушел по отмене контекста
	j := job{fn: fn, result: make(chan error, 1)}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrPoolClosed
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close останавливает воркеры и ждет их завершения
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}
