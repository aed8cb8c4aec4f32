package terminal

import (
	"fmt"
	"io"

	"github.com/letsssgooo/coursedeck/internal/events"
)

// Управляющие последовательности альтернативного экрана
const (
	seqEnterAltScreen = "\x1b[?1049h\x1b[H"
	seqExitAltScreen  = "\x1b[?1049l"
)

// ScreenDisplay — полноэкранный режим терминала через альтернативный экран.
// После переключения публикует KindFullscreenChange, как это делает платформа.
type ScreenDisplay struct {
	out io.Writer
	bus *events.Bus
}

// NewScreenDisplay создаёт ScreenDisplay. bus может быть nil.
func NewScreenDisplay(out io.Writer, bus *events.Bus) *ScreenDisplay {
	return &ScreenDisplay{out: out, bus: bus}
}

// EnterFullscreen переключает терминал на альтернативный экран.
func (d *ScreenDisplay) EnterFullscreen() error {
	return d.switchScreen(seqEnterAltScreen, true)
}

// ExitFullscreen возвращает основной экран.
func (d *ScreenDisplay) ExitFullscreen() error {
	return d.switchScreen(seqExitAltScreen, false)
}

func (d *ScreenDisplay) switchScreen(seq string, fullscreen bool) error {
	if _, err := io.WriteString(d.out, seq); err != nil {
		return fmt.Errorf("can not switch screen, %w", err)
	}

	if d.bus != nil {
		d.bus.Publish(events.Event{Kind: events.KindFullscreenChange, Fullscreen: fullscreen})
	}

	return nil
}
