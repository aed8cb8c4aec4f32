package events

import (
	"sync"
)

// Kind — тип глобального события.
type Kind string

const (
	KindKeyDown          Kind = "keydown"
	KindFullscreenChange Kind = "fullscreenchange"
)

// Клавиши, на которые реагируют компоненты.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyPlus       = "+"
	KeyMinus      = "-"
	KeyEscape     = "Escape"
)

// Event — событие, доставляемое подписчикам.
type Event struct {
	Kind       Kind
	Key        string
	Fullscreen bool
}

// Handler обрабатывает событие.
type Handler func(Event)

// Bus — реестр глобальных слушателей (клавиатура, полноэкранный режим).
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[Kind]map[int]Handler
}

// NewBus создаёт пустой Bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Kind]map[int]Handler),
	}
}

// Subscribe регистрирует обработчик и возвращает функцию отписки.
// Функцию отписки можно вызывать несколько раз.
func (b *Bus) Subscribe(kind Kind, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[int]Handler)
	}

	id := b.nextID
	b.nextID++
	b.handlers[kind][id] = h

	var once sync.Once

	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers[kind], id)
			b.mu.Unlock()
		})
	}
}

// Publish доставляет событие всем подписчикам его типа.
// Обработчики вызываются вне блокировки, поэтому могут отписываться.
// Возвращает количество вызванных обработчиков.
func (b *Bus) Publish(e Event) int {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[e.Kind]))
	for _, h := range b.handlers[e.Kind] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}

	return len(hs)
}

// Count возвращает число подписчиков типа kind.
func (b *Bus) Count(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.handlers[kind])
}

// Registrations собирает функции отписки и освобождает их разом.
type Registrations struct {
	mu       sync.Mutex
	releases []func()
	released bool
}

// Add добавляет функцию отписки. Если набор уже освобождён,
// отписка выполняется сразу.
func (r *Registrations) Add(release func()) {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		release()

		return
	}

	r.releases = append(r.releases, release)
	r.mu.Unlock()
}

// Release выполняет все отписки в обратном порядке. Повторный вызов ничего не делает.
func (r *Registrations) Release() {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return
	}

	r.released = true
	releases := r.releases
	r.releases = nil
	r.mu.Unlock()

	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}
}
