package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput возвращается, если ввод закончился до ответа.
var ErrNoInput = errors.New("input closed")

// Prompter задаёт вопросы пользователю до запуска App.
// Читает из того же bufio.Reader, что и App, чтобы не терять буферизованные строки.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// NewPrompter создаёт Prompter. fd — дескриптор терминала для ввода пароля
// без эха, -1 если ввод не из терминала.
func NewPrompter(in *bufio.Reader, out io.Writer, fd int) *Prompter {
	return &Prompter{in: in, out: out, fd: fd}
}

// Line печатает prompt и возвращает введённую строку без пробелов по краям.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}

		return "", fmt.Errorf("can not read input, %w", err)
	}

	return strings.TrimSpace(line), nil
}

// Password читает пароль. В терминале ввод не отображается.
func (p *Prompter) Password(prompt string) (string, error) {
	if p.fd < 0 || !term.IsTerminal(p.fd) {
		return p.Line(prompt)
	}

	fmt.Fprint(p.out, prompt)
	defer fmt.Fprintln(p.out)

	pw, err := term.ReadPassword(p.fd)
	if err != nil {
		return "", fmt.Errorf("can not read password, %w", err)
	}

	return string(pw), nil
}
