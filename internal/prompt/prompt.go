// Package prompt provides interactive yes/no and multiple-choice confirmation.
//
// The engines that mutate the tree take a Confirmer rather than reading the
// terminal themselves, so they stay testable without one.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Bounds for interactive and unattended operation. Exceeding either one is a
// fatal condition for the whole run, not just the current question.
const (
	DefaultMaxRetries        = 5
	DefaultAutoConfirmBudget = 100
)

// ErrTooManyRetries is returned when the user keeps giving unparseable answers.
var ErrTooManyRetries = errors.New("too many invalid answers")

// ErrBudgetExceeded is returned when auto-confirm mode has answered more
// questions than its safety-valve budget allows.
var ErrBudgetExceeded = errors.New("auto-confirm budget exceeded")

// Confirmer answers questions on behalf of the user.
type Confirmer interface {
	// Confirm asks a yes/no question. def is the answer for empty input.
	Confirm(question string, def bool) (bool, error)
	// Choose asks the user to pick one of options by number.
	// def is the zero-based index returned for empty input and under
	// auto-confirm mode.
	Choose(question string, options []string, def int) (int, error)
}

// Terminal is a line-oriented Confirmer.
type Terminal struct {
	in          *bufio.Reader
	out         io.Writer
	autoConfirm bool

	MaxRetries int
	// Budget is the number of auto-confirmed answers still allowed.
	Budget int
}

// NewTerminal returns a Terminal reading answers from in and writing prompts
// to out. With autoConfirm set, every question is answered with its default
// without reading input, drawing from a bounded budget.
func NewTerminal(in io.Reader, out io.Writer, autoConfirm bool) *Terminal {
	return &Terminal{
		in:          bufio.NewReader(in),
		out:         out,
		autoConfirm: autoConfirm,
		MaxRetries:  DefaultMaxRetries,
		Budget:      DefaultAutoConfirmBudget,
	}
}

// Confirm implements Confirmer.
func (t *Terminal) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	if t.autoConfirm {
		if err := t.spend(); err != nil {
			return false, err
		}
		fmt.Fprintf(t.out, "%s (%s) yes\n", question, hint)
		return true, nil
	}

	for attempt := 0; attempt < t.MaxRetries; attempt++ {
		fmt.Fprintf(t.out, "%s (%s) ", question, hint)
		line, err := t.readLine()
		if err != nil {
			return false, fmt.Errorf("reading answer: %w", err)
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintf(t.out, "Please answer yes or no.\n")
	}
	return false, ErrTooManyRetries
}

// Choose implements Confirmer.
func (t *Terminal) Choose(question string, options []string, def int) (int, error) {
	if t.autoConfirm {
		if err := t.spend(); err != nil {
			return 0, err
		}
		return def, nil
	}

	fmt.Fprintln(t.out, question)
	for i, opt := range options {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, opt)
	}

	for attempt := 0; attempt < t.MaxRetries; attempt++ {
		fmt.Fprintf(t.out, "Choice (1-%d) [%d]: ", len(options), def+1)
		line, err := t.readLine()
		if err != nil {
			return 0, fmt.Errorf("reading answer: %w", err)
		}
		if line == "" {
			return def, nil
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(t.out, "Please answer a number between 1 and %d.\n", len(options))
	}
	return 0, ErrTooManyRetries
}

// spend consumes one unit of the auto-confirm budget.
func (t *Terminal) spend() error {
	if t.Budget <= 0 {
		return ErrBudgetExceeded
	}
	t.Budget--
	return nil
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
