package countdown

import (
	"context"
	"sync"
	"time"
)

// Ticker — источник тиков, который можно остановить.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock создаёт тикеры. Реальные часы используются в приложении,
// ручные — в тестах.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

type realTicker struct {
	t *time.Ticker
}

// RealClock возвращает часы поверх time.Ticker.
func RealClock() Clock {
	return realClock{}
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time {
	return r.t.C
}

func (r *realTicker) Stop() {
	r.t.Stop()
}

// Task — периодическая задача, привязанная к своему контексту.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Every запускает fn на каждый тик clock с интервалом interval,
// пока задача не остановлена или ctx не отменён.
// Тикер создаётся синхронно, до возврата из функции.
func Every(ctx context.Context, clock Clock, interval time.Duration, fn func()) *Task {
	ctx, cancel := context.WithCancel(ctx)
	task := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	ticker := clock.NewTicker(interval)

	go func() {
		defer close(task.done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				// тик мог прийти одновременно с отменой
				if ctx.Err() != nil {
					return
				}

				fn()
			}
		}
	}()

	return task
}

// Stop отменяет задачу. Не блокирует, можно вызывать повторно.
func (t *Task) Stop() {
	t.cancel()
}

// Done закрывается, когда горутина задачи завершилась.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait ждёт завершения горутины задачи.
func (t *Task) Wait() {
	<-t.done
}

// Slot хранит не более одной активной задачи.
type Slot struct {
	mu   sync.Mutex
	task *Task
}

// Replace останавливает предыдущую задачу и ставит на её место новую.
func (s *Slot) Replace(task *Task) {
	s.mu.Lock()
	prev := s.task
	s.task = task
	s.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
}

// Stop останавливает текущую задачу и освобождает слот.
// Возвращает остановленную задачу (или nil), чтобы вызывающий мог дождаться её
// завершения вне своих блокировок.
func (s *Slot) Stop() *Task {
	s.mu.Lock()
	prev := s.task
	s.task = nil
	s.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}

	return prev
}

// Active сообщает, занят ли слот.
func (s *Slot) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.task != nil
}
