package countdown

import (
	"sync"
	"time"
)

// ManualClock — часы для тестов: тики выдаются вызовом Tick.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers map[*manualTicker]struct{}
}

type manualTicker struct {
	clock   *ManualClock
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

// NewManualClock создаёт ручные часы.
func NewManualClock() *ManualClock {
	return &ManualClock{
		now:     time.Unix(0, 0),
		tickers: make(map[*manualTicker]struct{}),
	}
}

func (m *ManualClock) NewTicker(_ time.Duration) Ticker {
	t := &manualTicker{
		clock:   m,
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}

	m.mu.Lock()
	m.tickers[t] = struct{}{}
	m.mu.Unlock()

	return t
}

// Tick отдаёт по одному тику каждому живому тикеру.
// Возвращается, когда каждый тик принят получателем или тикер остановлен.
func (m *ManualClock) Tick() {
	m.mu.Lock()
	m.now = m.now.Add(time.Second)
	now := m.now
	live := make([]*manualTicker, 0, len(m.tickers))
	for t := range m.tickers {
		live = append(live, t)
	}
	m.mu.Unlock()

	for _, t := range live {
		select {
		case t.ch <- now:
		case <-t.stopped:
		}
	}
}

// Tickers возвращает количество неостановленных тикеров.
func (m *ManualClock) Tickers() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.tickers)
}

func (t *manualTicker) C() <-chan time.Time {
	return t.ch
}

func (t *manualTicker) Stop() {
	t.once.Do(func() {
		close(t.stopped)

		t.clock.mu.Lock()
		delete(t.clock.tickers, t)
		t.clock.mu.Unlock()
	})
}
