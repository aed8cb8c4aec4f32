package terminal

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/letsssgooo/coursedeck/internal/events"
	"github.com/letsssgooo/coursedeck/internal/quiz"
)

// Mode — экран, для которого разбирается команда.
type Mode int

const (
	ModeSlides Mode = iota
	ModeQuiz
)

// CommandKind — тип команды пользователя.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdEmpty
	CmdHelp
	CmdKey
	CmdFullscreen
	CmdTakeQuiz
	CmdClose
	CmdSelect
	CmdAdvance
	CmdBack
)

// Command — разобранная строка ввода.
type Command struct {
	Kind   CommandKind
	Key    string
	Option int
}

// ParseCommand переводит строку ввода в команду для экрана mode.
func ParseCommand(line string, mode Mode) Command {
	line = strings.TrimSpace(line)
	lower := strings.ToLower(line)

	switch lower {
	case "":
		return Command{Kind: CmdEmpty}
	case "h", "help", "?":
		return Command{Kind: CmdHelp}
	}

	if mode == ModeQuiz {
		return parseQuizCommand(line, lower)
	}

	switch lower {
	case "n", "next", "right":
		return Command{Kind: CmdKey, Key: events.KeyArrowRight}
	case "p", "prev", "left":
		return Command{Kind: CmdKey, Key: events.KeyArrowLeft}
	case "+", "=":
		return Command{Kind: CmdKey, Key: events.KeyPlus}
	case "-":
		return Command{Kind: CmdKey, Key: events.KeyMinus}
	case "esc", "escape":
		return Command{Kind: CmdKey, Key: events.KeyEscape}
	case "f", "fullscreen":
		return Command{Kind: CmdFullscreen}
	case "t", "quiz":
		return Command{Kind: CmdTakeQuiz}
	case "q", "quit", "close":
		return Command{Kind: CmdClose}
	}

	return Command{Kind: CmdUnknown}
}

// LineFetcher читает строки ввода в фоне.
type LineFetcher struct {
	scanner *bufio.Scanner
}

// NewLineFetcher создаёт читателя поверх r.
func NewLineFetcher(r io.Reader) *LineFetcher {
	return &LineFetcher{scanner: bufio.NewScanner(r)}
}

// Lines отдаёт строки ввода. Канал закрывается на конце ввода или при отмене ctx.
func (f *LineFetcher) Lines(ctx context.Context) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		for f.scanner.Scan() {
			select {
			case lines <- f.scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	return lines
}

// В квизе строчные c и b — команды, а заглавные C и B выбирают варианты.
// Варианты также выбираются цифрами 1-6.
func parseQuizCommand(line, lower string) Command {
	switch line {
	case "c":
		return Command{Kind: CmdAdvance}
	case "b":
		return Command{Kind: CmdBack}
	}

	switch lower {
	case "check", "next", "submit":
		return Command{Kind: CmdAdvance}
	case "back":
		return Command{Kind: CmdBack}
	case "q", "quit", "esc":
		return Command{Kind: CmdClose}
	}

	if idx, ok := quiz.LetterToIndex(line); ok {
		return Command{Kind: CmdSelect, Option: idx}
	}

	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(quiz.AnswerLetters) {
		return Command{Kind: CmdSelect, Option: n - 1}
	}

	return Command{Kind: CmdUnknown}
}
