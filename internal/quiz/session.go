package quiz

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/letsssgooo/coursedeck/internal/countdown"
)

// TickInterval — период таймера вопроса.
const TickInterval = time.Second

// Session связывает Attempt с таймером и сериализует все события.
// Одновременно живёт не больше одного таймера, и только в фазе Answering.
type Session struct {
	mu      sync.Mutex
	ctx     context.Context
	attempt *Attempt
	closed  bool

	clock countdown.Clock
	timer countdown.Slot
	armed Scope

	log        *slog.Logger
	onChange   func(View)
	onComplete []func(Result)
}

// Option настраивает Session.
type Option func(*Session)

// WithClock задаёт источник тиков.
func WithClock(clock countdown.Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithLogger задаёт логгер сессии.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// OnChange подписывает на каждое изменение состояния.
func OnChange(fn func(View)) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// OnComplete подписывает на итог попытки. Каждый подписчик вызывается ровно один раз.
func OnComplete(fn func(Result)) Option {
	return func(s *Session) {
		s.onComplete = append(s.onComplete, fn)
	}
}

// NewSession начинает попытку и запускает таймер первого вопроса.
// Отмена ctx останавливает таймер.
func NewSession(ctx context.Context, questions []Question, opts ...Option) (*Session, error) {
	attempt, err := NewAttempt(questions)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ctx:     ctx,
		attempt: attempt,
		clock:   countdown.RealClock(),
		log:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.With(slog.String("attempt", attempt.ID()))

	s.mu.Lock()
	s.rearm()
	s.mu.Unlock()

	s.log.Debug("attempt started", slog.Int("questions", len(questions)))

	return s, nil
}

// SelectOption выбирает вариант для текущего вопроса.
func (s *Session) SelectOption(option int) bool {
	return s.apply("select", func(a *Attempt) bool {
		return a.SelectOption(option)
	})
}

// Advance выполняет действие основной кнопки.
func (s *Session) Advance() bool {
	return s.apply("advance", (*Attempt).Advance)
}

// Previous возвращает к предыдущему вопросу.
func (s *Session) Previous() bool {
	return s.apply("previous", (*Attempt).Previous)
}

// View возвращает снимок состояния.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attempt.View()
}

// Close останавливает таймер. Дальнейшие события игнорируются.
// Не ждёт завершения горутины таймера, поэтому безопасен внутри колбэков.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	s.timer.Stop()

	s.log.Debug("attempt closed")
}

func (s *Session) tick(scope Scope) {
	s.apply("tick", func(a *Attempt) bool {
		return a.Tick(scope)
	})
}

// apply применяет событие под блокировкой, а колбэки вызывает уже без неё.
func (s *Session) apply(event string, fn func(*Attempt) bool) bool {
	s.mu.Lock()

	if s.closed || !fn(s.attempt) {
		s.mu.Unlock()
		return false
	}

	s.rearm()
	view := s.attempt.View()
	result, finished := s.attempt.TakeResult()

	s.mu.Unlock()

	if view.TimedOut && event == "tick" {
		s.log.Debug("question timed out", slog.Int("index", view.Index))
	}

	if s.onChange != nil {
		s.onChange(view)
	}

	if finished {
		s.log.Info("attempt finished",
			slog.Int("score", result.Score),
			slog.Int("correct", result.CorrectCount),
			slog.Int("total", result.Total),
		)

		for _, fn := range s.onComplete {
			fn(result)
		}
	}

	return true
}

// rearm приводит таймер в соответствие с фазой. Вызывается под s.mu.
func (s *Session) rearm() {
	scope := s.attempt.Scope()
	if scope.Phase != PhaseAnswering {
		s.timer.Stop()
		s.armed = Scope{}

		return
	}

	if scope == s.armed && s.timer.Active() {
		return
	}

	s.armed = scope
	s.timer.Replace(countdown.Every(s.ctx, s.clock, TickInterval, func() {
		s.tick(scope)
	}))
}
