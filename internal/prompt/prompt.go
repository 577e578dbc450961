// Package prompt asks the user questions. It is the only place fresh-init
// blocks on input.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/Sumangal44/fresh/internal/output"
)

// ErrNoAnswer is returned when input ends, is empty, or the user aborts.
var ErrNoAnswer = errors.New("no answer given")

// Prompter asks questions and returns answers.
type Prompter interface {
	// Input asks for a single line of text.
	Input(title, placeholder string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(title string) (bool, error)

	// Interactive reports whether a human can answer.
	Interactive() bool
}

// New returns a form prompter when in is a terminal and a line prompter
// reading in and writing questions to out otherwise.
func New(in io.Reader, out io.Writer) Prompter {
	if output.IsTerminal(in) && output.IsTerminal(out) {
		return &FormPrompter{}
	}
	return NewLinePrompter(in, out)
}

// LinePrompter reads answers one line at a time.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Input implements Prompter.
func (p *LinePrompter) Input(title, _ string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", title)
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", ErrNoAnswer
	}
	return answer, nil
}

// Confirm implements Prompter. Anything other than y/yes counts as no.
func (p *LinePrompter) Confirm(title string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", title)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Interactive implements Prompter.
func (p *LinePrompter) Interactive() bool {
	return false
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", ErrNoAnswer
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// FormPrompter asks questions with terminal forms.
type FormPrompter struct{}

// Input implements Prompter.
func (*FormPrompter) Input(title, placeholder string) (string, error) {
	var answer string
	err := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&answer).
		Run()
	if err != nil {
		return "", formError(err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrNoAnswer
	}
	return answer, nil
}

// Confirm implements Prompter.
func (*FormPrompter) Confirm(title string) (bool, error) {
	var answer bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&answer).
		Run()
	if err != nil {
		return false, formError(err)
	}
	return answer, nil
}

// Interactive implements Prompter.
func (*FormPrompter) Interactive() bool {
	return true
}

func formError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrNoAnswer
	}
	return fmt.Errorf("prompt: %w", err)
}
