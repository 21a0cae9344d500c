// Package prompt reads answers from the user, with or without echo.
//
// On a terminal, questions are drawn as huh forms. When either end is not a
// terminal the answer is read as a plain line, so scripts can be fed from a
// pipe.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNotTerminal is returned by WithRawMode when fd is not a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// ErrAborted is returned when the user cancels a form with Ctrl+C or Esc.
var ErrAborted = errors.New("prompt aborted")

// interactive reports whether in and out are both terminals.
var interactive = func(in io.Reader, out io.Writer) bool {
	fin, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(fin.Fd())) {
		return false
	}
	fout, ok := out.(*os.File)
	return ok && term.IsTerminal(int(fout.Fd()))
}

var runForm = func(f *huh.Form) error {
	return f.Run()
}

func newForm(in io.Reader, out io.Writer, field huh.Field) *huh.Form {
	return huh.NewForm(huh.NewGroup(field)).
		WithInput(in).
		WithOutput(out).
		WithShowHelp(false).
		WithTheme(huh.ThemeDracula())
}

func run(f *huh.Form) error {
	err := runForm(f)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	if err != nil {
		return fmt.Errorf("form error: %w", err)
	}
	return nil
}

// Ask writes question to out and reads one line from in. The trailing line
// ending is removed. io.EOF is returned only when nothing was read.
func Ask(in io.Reader, out io.Writer, question string) (string, error) {
	if interactive(in, out) {
		var answer string
		err := run(newForm(in, out, huh.NewInput().
			Title(strings.TrimSpace(question)).
			Value(&answer)))
		return answer, err
	}
	if _, err := fmt.Fprint(out, question); err != nil {
		return "", err
	}
	return readLine(in)
}

// AskSecret is Ask without echo. When f is not a terminal the line is read
// normally, which lets answers be piped in.
func AskSecret(f *os.File, out io.Writer, question string) (string, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return Ask(f, out, question)
	}
	if _, err := fmt.Fprint(out, question); err != nil {
		return "", err
	}
	secret, err := term.ReadPassword(fd)
	// The user's Enter was not echoed.
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return string(secret), nil
}

// WithRawMode runs fn with the terminal on fd in raw mode. The previous mode
// is restored when fn returns or panics.
func WithRawMode(fd int, fn func() error) (err error) {
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() {
		if rerr := term.Restore(fd, oldState); rerr != nil && err == nil {
			err = fmt.Errorf("failed to restore terminal: %w", rerr)
		}
	}()
	return fn()
}

// Confirm asks a yes/no question. An empty answer returns def.
func Confirm(in io.Reader, out io.Writer, question string, def bool) (bool, error) {
	if interactive(in, out) {
		answer := def
		err := run(newForm(in, out, huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&answer)))
		if err != nil {
			return def, err
		}
		return answer, nil
	}

	hint := " [y/N] "
	if def {
		hint = " [Y/n] "
	}
	for {
		answer, err := Ask(in, out, question+hint)
		if err != nil {
			return def, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		_, _ = fmt.Fprintln(out, "Please answer y or n.")
	}
}

// readLine reads up to and including '\n' one byte at a time, so nothing
// past the line is consumed from in.
func readLine(in io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return strings.TrimSuffix(sb.String(), "\r"), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return strings.TrimSuffix(sb.String(), "\r"), nil
			}
			return "", err
		}
	}
}
