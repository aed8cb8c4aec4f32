package slides

import (
	"log/slog"
	"sync"

	"github.com/letsssgooo/coursedeck/internal/events"
)

// Display управляет полноэкранным режимом платформы.
type Display interface {
	EnterFullscreen() error
	ExitFullscreen() error
}

// State — снимок состояния просмотрщика для отрисовки.
type State struct {
	Page       int
	TotalPages int
	Zoom       float64
	Progress   float64
	Completed  bool
	Fullscreen bool
	Status     Status
	Error      string
	CanPrev    bool
	CanNext    bool
	Closed     bool
}

// Viewer — просмотрщик документа, который открывает квиз после
// прихода на последнюю страницу.
type Viewer struct {
	mu         sync.Mutex
	deck       *Deck
	fullscreen bool
	closed     bool

	display Display
	regs    events.Registrations
	log     *slog.Logger

	onComplete  func()
	onClose     func()
	onChange    func(State)
	onLoad      func(int)
	onLoadError func(string)
}

// Option настраивает Viewer.
type Option func(*Viewer)

// WithDisplay задаёт управление полноэкранным режимом.
func WithDisplay(d Display) Option {
	return func(v *Viewer) {
		v.display = d
	}
}

// WithLogger задаёт логгер.
func WithLogger(log *slog.Logger) Option {
	return func(v *Viewer) {
		v.log = log
	}
}

// OnComplete вызывается при каждом приходе на последнюю страницу.
func OnComplete(fn func()) Option {
	return func(v *Viewer) {
		v.onComplete = fn
	}
}

// OnClose вызывается при закрытии пользователем.
func OnClose(fn func()) Option {
	return func(v *Viewer) {
		v.onClose = fn
	}
}

// OnChange вызывается после каждого изменения состояния.
func OnChange(fn func(State)) Option {
	return func(v *Viewer) {
		v.onChange = fn
	}
}

// OnLoad вызывается после загрузки документа с числом страниц.
func OnLoad(fn func(int)) Option {
	return func(v *Viewer) {
		v.onLoad = fn
	}
}

// OnLoadError вызывается при ошибке загрузки документа.
func OnLoadError(fn func(string)) Option {
	return func(v *Viewer) {
		v.onLoadError = fn
	}
}

// NewViewer создаёт просмотрщик и подписывает его на клавиатуру и
// смену полноэкранного режима. Подписки снимаются в Close или Release.
func NewViewer(bus *events.Bus, opts ...Option) *Viewer {
	v := &Viewer{
		deck: NewDeck(),
		log:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(v)
	}

	if bus != nil {
		v.regs.Add(bus.Subscribe(events.KindKeyDown, func(e events.Event) {
			v.HandleKey(e.Key)
		}))
		v.regs.Add(bus.Subscribe(events.KindFullscreenChange, func(e events.Event) {
			v.SyncFullscreen(e.Fullscreen)
		}))
	}

	return v
}

// State возвращает снимок состояния.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state()
}

// ChangePage сдвигает страницу на offset.
func (v *Viewer) ChangePage(offset int) {
	v.update(func(d *Deck) (bool, bool) {
		before := d.Page()
		arrived := d.ChangePage(offset)

		return before != d.Page(), arrived
	})
}

// ZoomIn увеличивает масштаб.
func (v *Viewer) ZoomIn() {
	v.update(func(d *Deck) (bool, bool) {
		return d.ZoomIn(), false
	})
}

// ZoomOut уменьшает масштаб.
func (v *Viewer) ZoomOut() {
	v.update(func(d *Deck) (bool, bool) {
		return d.ZoomOut(), false
	})
}

// DocumentLoaded сообщает число страниц загруженного документа.
func (v *Viewer) DocumentLoaded(total int) {
	var (
		loaded  bool
		message string
	)

	v.update(func(d *Deck) (bool, bool) {
		if d.Status() != StatusLoading {
			return false, false
		}

		arrived := d.Loaded(total)
		loaded = d.Status() == StatusReady
		message = d.Error()

		return true, arrived
	})

	switch {
	case loaded:
		v.log.Debug("document loaded", slog.Int("pages", total))
		if v.onLoad != nil {
			v.onLoad(total)
		}
	case message != "":
		v.reportError(message)
	}
}

// DocumentLoadFailed сообщает об ошибке загрузки. Просмотрщик остаётся открытым.
func (v *Viewer) DocumentLoadFailed(message string) {
	failed := false

	v.update(func(d *Deck) (bool, bool) {
		if d.Status() != StatusLoading {
			return false, false
		}

		d.Failed(message)
		failed = true

		return true, false
	})

	if failed {
		v.reportError(message)
	}
}

// HandleKey обрабатывает нажатие клавиши.
func (v *Viewer) HandleKey(key string) {
	switch key {
	case events.KeyArrowRight:
		v.ChangePage(1)
	case events.KeyArrowLeft:
		v.ChangePage(-1)
	case events.KeyPlus:
		v.ZoomIn()
	case events.KeyMinus:
		v.ZoomOut()
	case events.KeyEscape:
		v.mu.Lock()
		fullscreen := v.fullscreen
		v.mu.Unlock()

		if fullscreen {
			v.ToggleFullscreen()
		} else {
			v.Close()
		}
	}
}

// ToggleFullscreen входит в полноэкранный режим или выходит из него.
func (v *Viewer) ToggleFullscreen() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}

	enter := !v.fullscreen
	v.fullscreen = enter
	state := v.state()
	v.mu.Unlock()

	if v.display != nil {
		var err error
		if enter {
			err = v.display.EnterFullscreen()
		} else {
			err = v.display.ExitFullscreen()
		}

		if err != nil {
			v.log.Warn("can not switch fullscreen", slog.Bool("enter", enter), slog.Any("error", err))
		}
	}

	v.notify(state)
}

// SyncFullscreen принимает внешнее изменение полноэкранного режима.
func (v *Viewer) SyncFullscreen(fullscreen bool) {
	v.mu.Lock()
	if v.closed || v.fullscreen == fullscreen {
		v.mu.Unlock()
		return
	}

	v.fullscreen = fullscreen
	state := v.state()
	v.mu.Unlock()

	v.notify(state)
}

// Close закрывает просмотрщик по действию пользователя: снимает подписки
// и вызывает OnClose. Повторный вызов ничего не делает.
func (v *Viewer) Close() {
	if !v.release() {
		return
	}

	v.log.Debug("viewer closed")

	if v.onClose != nil {
		v.onClose()
	}
}

// Release снимает подписки без вызова OnClose.
func (v *Viewer) Release() {
	v.release()
}

func (v *Viewer) release() bool {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return false
	}

	v.closed = true
	v.mu.Unlock()

	v.regs.Release()

	return true
}

// update применяет изменение под блокировкой и вызывает колбэки без неё.
func (v *Viewer) update(fn func(*Deck) (changed, arrived bool)) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}

	changed, arrived := fn(v.deck)
	state := v.state()
	v.mu.Unlock()

	if !changed {
		return
	}

	if arrived {
		v.log.Info("last page reached", slog.Int("page", state.Page))
		if v.onComplete != nil {
			v.onComplete()
		}
	}

	v.notify(state)
}

func (v *Viewer) reportError(message string) {
	v.log.Warn("document load failed", slog.String("error", message))

	if v.onLoadError != nil {
		v.onLoadError(message)
	}
}

func (v *Viewer) notify(state State) {
	if v.onChange != nil {
		v.onChange(state)
	}
}

func (v *Viewer) state() State {
	total := v.deck.DisplayTotal()
	ready := v.deck.Status() == StatusReady

	return State{
		Page:       v.deck.Page(),
		TotalPages: total,
		Zoom:       v.deck.Zoom(),
		Progress:   v.deck.Progress(),
		Completed:  v.deck.Completed(),
		Fullscreen: v.fullscreen,
		Status:     v.deck.Status(),
		Error:      v.deck.Error(),
		CanPrev:    ready && v.deck.Page() > 1,
		CanNext:    ready && v.deck.Page() < total,
		Closed:     v.closed,
	}
}
