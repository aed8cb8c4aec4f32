package terminal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/letsssgooo/coursedeck/internal/countdown"
	"github.com/letsssgooo/coursedeck/internal/course"
	"github.com/letsssgooo/coursedeck/internal/document"
	"github.com/letsssgooo/coursedeck/internal/events"
	"github.com/letsssgooo/coursedeck/internal/quiz"
	"github.com/letsssgooo/coursedeck/internal/slides"
)

// LoadFunc запускает загрузку документа и возвращает функцию отмены.
type LoadFunc func(ctx context.Context, sink document.Sink) (cancel func())

// Config — зависимости App.
type Config struct {
	Page   *course.Page
	Load   LoadFunc
	Report string
	Logger *slog.Logger

	// Clock подменяет часы таймера вопросов, nil — реальные часы.
	Clock countdown.Clock
}

// App — терминальная страница курса: просмотр документа, затем квиз.
type App struct {
	cfg     Config
	page    *course.Page
	bus     *events.Bus
	display slides.Display
	render  *Renderer
	fetcher *LineFetcher
	log     *slog.Logger
}

// NewApp создаёт App, читающий команды из in и пишущий в out.
func NewApp(cfg Config, in io.Reader, out io.Writer) *App {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	bus := events.NewBus()

	return &App{
		cfg:     cfg,
		page:    cfg.Page,
		bus:     bus,
		display: NewScreenDisplay(out, bus),
		render:  NewRenderer(out),
		fetcher: NewLineFetcher(in),
		log:     log,
	}
}

// Run показывает документ и квиз до закрытия документа, сдачи квиза,
// конца ввода или отмены ctx. Перед выходом ждёт фоновые сохранения результата.
func (a *App) Run(ctx context.Context) error {
	defer a.page.Close()

	lines := a.fetcher.Lines(ctx)

	for {
		takeQuiz, err := a.runSlides(ctx, lines)
		if err != nil || !takeQuiz {
			return err
		}

		finished, err := a.runQuiz(ctx, lines)
		if err != nil || finished {
			return err
		}
	}
}

// runSlides возвращает true, если пользователь перешёл к квизу.
func (a *App) runSlides(ctx context.Context, lines <-chan string) (bool, error) {
	viewer := slides.NewViewer(a.bus,
		slides.WithDisplay(a.display),
		slides.WithLogger(a.log),
		slides.OnChange(a.render.Slides),
		slides.OnComplete(a.unlockQuiz),
	)
	defer viewer.Release()

	a.render.Slides(viewer.State())

	cancel := a.cfg.Load(ctx, viewer)
	defer cancel()

	a.render.Message(msgSlidesHelp)

	for {
		if viewer.State().Closed {
			a.render.Message(msgViewerClosed)
			return false, nil
		}

		var line string
		var ok bool

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case line, ok = <-lines:
			if !ok {
				return false, nil
			}
		}

		cmd := ParseCommand(line, ModeSlides)

		switch cmd.Kind {
		case CmdEmpty:
		case CmdHelp:
			a.render.Message(msgSlidesHelp)
		case CmdKey:
			a.bus.Publish(events.Event{Kind: events.KindKeyDown, Key: cmd.Key})
		case CmdFullscreen:
			viewer.ToggleFullscreen()
		case CmdClose:
			viewer.Close()
		case CmdTakeQuiz:
			switch {
			case a.page.Quiz() == nil:
				a.render.Message(msgNoQuiz)
			case !a.page.CanTakeQuiz():
				a.render.Message(msgQuizLocked)
			default:
				if viewer.State().Fullscreen {
					viewer.ToggleFullscreen()
				}

				return true, nil
			}
		default:
			a.render.Message(msgUnknownCommand)
		}
	}
}

func (a *App) unlockQuiz() {
	if a.page.Unlocked() {
		return
	}

	a.page.Unlock()

	if a.page.Quiz() != nil {
		a.render.Success(msgQuizUnlocked)
	}
}

// runQuiz возвращает true, если квиз сдан.
func (a *App) runQuiz(ctx context.Context, lines <-chan string) (bool, error) {
	results := make(chan quiz.Result, 1)

	opts := []quiz.Option{
		quiz.OnChange(a.render.Quiz),
		quiz.OnComplete(func(r quiz.Result) {
			results <- r
		}),
	}
	if a.cfg.Clock != nil {
		opts = append(opts, quiz.WithClock(a.cfg.Clock))
	}

	session, err := a.page.StartQuiz(opts...)
	if err != nil {
		return false, err
	}
	defer a.page.FinishQuiz()

	a.render.Message(msgQuizHelp)
	a.render.Quiz(session.View())

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case result := <-results:
			a.writeReport(result)
			return true, nil
		case line, ok := <-lines:
			if !ok {
				return false, nil
			}

			if a.handleQuizCommand(session, ParseCommand(line, ModeQuiz)) {
				a.render.Message(msgQuizLeft)
				return false, nil
			}
		}
	}
}

// handleQuizCommand выполняет команду и возвращает true, если пользователь покидает квиз.
func (a *App) handleQuizCommand(session *quiz.Session, cmd Command) bool {
	switch cmd.Kind {
	case CmdEmpty:
	case CmdHelp:
		a.render.Message(msgQuizHelp)
	case CmdClose:
		return true
	case CmdSelect:
		if session.SelectOption(cmd.Option) {
			return false
		}

		view := session.View()
		if cmd.Option >= len(view.Question.Options) {
			a.render.Message(msgNoSuchOption)
		} else if view.Phase != quiz.PhaseResults {
			a.render.Message(msgSelectionLocked)
		}
	case CmdAdvance:
		if !session.Advance() && session.View().Phase == quiz.PhaseAnswering {
			a.render.Message(msgPickOption)
		}
	case CmdBack:
		if !session.Previous() {
			a.render.Message(msgNoPrevious)
		}
	default:
		a.render.Message(msgUnknownCommand)
	}

	return false
}

func (a *App) writeReport(result quiz.Result) {
	if a.cfg.Report == "" {
		return
	}

	data, err := quiz.ExportCSV(a.page.Quiz().Questions, result)
	if err == nil {
		err = os.WriteFile(a.cfg.Report, data, 0o644)
	}

	if err != nil {
		a.log.Error("can not write report", slog.String("path", a.cfg.Report), slog.Any("error", err))
		a.render.Failure(fmt.Sprintf(msgReportFailed, err))

		return
	}

	a.render.Message(fmt.Sprintf(msgReportSaved, a.cfg.Report))
}
