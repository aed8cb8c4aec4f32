package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/letsssgooo/coursedeck/internal/quiz"
	"github.com/letsssgooo/coursedeck/internal/slides"
)

const barWidth = 20

// Renderer выводит состояние просмотрщика и квиза в терминал.
// Вызывается из разных горутин (ввод, таймер, загрузка), поэтому вывод сериализован.
type Renderer struct {
	mu   sync.Mutex
	out  io.Writer
	last *quiz.View

	// timerOpen — строка таймера напечатана без перевода строки.
	timerOpen bool
}

// NewRenderer создаёт Renderer поверх out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Message печатает строку.
func (r *Renderer) Message(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.endTimerLine()
	fmt.Fprintln(r.out, text)
}

// Success печатает строку зелёным.
func (r *Renderer) Success(text string) {
	r.Message(color.GreenString(text))
}

// Failure печатает строку красным.
func (r *Renderer) Failure(text string) {
	r.Message(color.RedString(text))
}

// Slides печатает состояние просмотрщика.
func (r *Renderer) Slides(s slides.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.endTimerLine()

	switch s.Status {
	case slides.StatusLoading:
		fmt.Fprintln(r.out, color.HiBlackString("Loading PDF..."))
		return
	case slides.StatusFailed:
		fmt.Fprintln(r.out, color.RedString(s.Error))
		return
	}

	line := fmt.Sprintf("Page %d / %d  %s %3.0f%%  zoom %d%%",
		s.Page, s.TotalPages, bar(s.Progress), s.Progress*100, int(s.Zoom*100+0.5))

	if s.Fullscreen {
		line += "  " + color.CyanString("[fullscreen]")
	}

	if s.Completed {
		line += "  " + color.GreenString("✓ completed")
	}

	fmt.Fprintln(r.out, line)
}

// Quiz печатает состояние квиза. Если изменился только таймер,
// перерисовывается одна строка с оставшимся временем.
func (r *Renderer) Quiz(v quiz.View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last != nil && onlyTimerChanged(*r.last, v) {
		if r.timerOpen {
			fmt.Fprint(r.out, "\r")
		}

		fmt.Fprintf(r.out, "%s ", timerLabel(v.TimeLeft))
		r.last = &v
		r.timerOpen = true

		return
	}

	r.endTimerLine()
	r.last = &v

	switch v.Phase {
	case quiz.PhaseResults:
		r.results(v)
	default:
		r.question(v)
	}
}

func (r *Renderer) question(v quiz.View) {
	fmt.Fprintf(r.out, "\nQuestion %d of %d  %s\n", v.Index+1, v.Total, bar(v.Progress))
	fmt.Fprintln(r.out, color.New(color.Bold).Sprint(v.Question.Text))

	for i, option := range v.Question.Options {
		fmt.Fprintln(r.out, optionLine(v, i, option))
	}

	if v.Phase == quiz.PhaseAnswering && v.Locked {
		fmt.Fprintln(r.out, color.HiBlackString(msgAnswerLocked))
	}

	if v.Phase == quiz.PhaseFeedback {
		switch {
		case v.WasCorrect:
			fmt.Fprintln(r.out, color.GreenString("Correct! 🎉"))
		default:
			if v.TimedOut {
				fmt.Fprintln(r.out, color.RedString("Time's up!"))
			}

			correct := v.Question.Options[v.Question.CorrectOptionIndex]
			fmt.Fprintln(r.out, color.RedString("Incorrect. The correct answer is: %s", correct))
		}
	}

	hints := []string{"[c] " + v.AdvanceLabel}
	if !v.CanAdvance {
		hints[0] = color.HiBlackString(hints[0])
	}
	if v.CanGoBack {
		hints = append(hints, "[b] Previous")
	}
	fmt.Fprintln(r.out, strings.Join(hints, "  "))

	if v.Phase == quiz.PhaseAnswering {
		fmt.Fprintf(r.out, "%s ", timerLabel(v.TimeLeft))
		r.timerOpen = true
	}
}

func (r *Renderer) results(v quiz.View) {
	scoreText := ScoreColor(v.Score).Sprintf("%d%%", v.Score)

	fmt.Fprintf(r.out, "\nQuiz Completed!\n")
	fmt.Fprintf(r.out, "You scored %s (%d of %d correct)\n", scoreText, v.CorrectCount, v.Total)
	fmt.Fprintf(r.out, "%s  %s\n",
		color.GreenString("%d Correct", v.CorrectCount),
		color.RedString("%d Incorrect", v.Total-v.CorrectCount),
	)
}

// endTimerLine завершает строку таймера, если она осталась открытой.
func (r *Renderer) endTimerLine() {
	if r.timerOpen {
		fmt.Fprintln(r.out)
		r.timerOpen = false
	}
}

func optionLine(v quiz.View, i int, option string) string {
	marker := " "
	if v.Selected == i {
		marker = ">"
	}

	line := fmt.Sprintf("%s %s) %s", marker, quiz.IndexToLetter(i), option)

	if v.Phase != quiz.PhaseFeedback {
		return line
	}

	switch {
	case i == v.Question.CorrectOptionIndex:
		return color.GreenString("%s ✓", line)
	case i == v.Selected:
		return color.RedString("%s ✗", line)
	default:
		return line
	}
}

func onlyTimerChanged(prev, next quiz.View) bool {
	if next.Phase != quiz.PhaseAnswering || prev.TimeLeft == next.TimeLeft {
		return false
	}

	prev.TimeLeft = next.TimeLeft

	return prev.AttemptID == next.AttemptID &&
		prev.Index == next.Index &&
		prev.Phase == next.Phase &&
		prev.Selected == next.Selected &&
		prev.Locked == next.Locked &&
		prev.CanAdvance == next.CanAdvance
}

func timerLabel(seconds int) string {
	return TimerColor(seconds).Sprintf("⏰ %ds", seconds)
}

// TimerColor возвращает цвет таймера: больше 30 секунд зелёный, больше 10 жёлтый, иначе красный.
func TimerColor(seconds int) *color.Color {
	switch {
	case seconds > 30:
		return color.New(color.FgGreen)
	case seconds > 10:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// ScoreColor возвращает цвет итогового балла.
func ScoreColor(score int) *color.Color {
	switch {
	case score >= 80:
		return color.New(color.FgGreen)
	case score >= 50:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func bar(progress float64) string {
	filled := int(progress*barWidth + 0.5)
	filled = max(0, min(filled, barWidth))

	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}
