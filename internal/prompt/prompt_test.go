package prompt

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/huh"
)

func TestAsk(t *testing.T) {
	in := strings.NewReader("ada\r\nlovelace\nlast")
	var out bytes.Buffer

	for _, want := range []string{"ada", "lovelace", "last"} {
		got, err := Ask(in, &out, "name? ")
		if err != nil {
			t.Fatalf("Ask failed: %v", err)
		}
		if got != want {
			t.Errorf("Ask() = %q, want %q", got, want)
		}
	}
	if _, err := Ask(in, &out, "name? "); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
	if out.String() != strings.Repeat("name? ", 4) {
		t.Errorf("prompt output = %q", out.String())
	}
}

func TestAskSecretFromPipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	defer r.Close()
	go func() {
		_, _ = w.WriteString("hunter2\n")
		_ = w.Close()
	}()

	var out bytes.Buffer
	got, err := AskSecret(r, &out, "password: ")
	if err != nil {
		t.Fatalf("AskSecret failed: %v", err)
	}
	if got != "hunter2" {
		t.Errorf("AskSecret() = %q", got)
	}
}

func TestWithRawModeRequiresTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	defer r.Close()
	defer w.Close()

	called := false
	err = WithRawMode(int(r.Fd()), func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrNotTerminal) {
		t.Errorf("expected ErrNotTerminal, got %v", err)
	}
	if called {
		t.Error("fn should not run without a terminal")
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{"yes", "y\n", false, true},
		{"no", "NO\n", true, false},
		{"empty takes default", "\n", true, true},
		{"retries on nonsense", "maybe\nyes\n", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Confirm(strings.NewReader(tt.input), &out, "continue?", tt.def)
			if err != nil {
				t.Fatalf("Confirm failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirmEOF(t *testing.T) {
	got, err := Confirm(strings.NewReader(""), io.Discard, "continue?", true)
	if !errors.Is(err, io.EOF) || got != true {
		t.Errorf("Confirm on EOF = %v, %v", got, err)
	}
}

// withForms makes every reader/writer pair count as a terminal and replaces
// running the form with fn.
func withForms(t *testing.T, fn func(*huh.Form) error) *int {
	t.Helper()
	calls := 0
	oldInteractive, oldRun := interactive, runForm
	interactive = func(io.Reader, io.Writer) bool { return true }
	runForm = func(f *huh.Form) error {
		calls++
		return fn(f)
	}
	t.Cleanup(func() { interactive, runForm = oldInteractive, oldRun })
	return &calls
}

func TestConfirmOnTerminalUsesForm(t *testing.T) {
	calls := withForms(t, func(*huh.Form) error { return nil })

	var out bytes.Buffer
	got, err := Confirm(strings.NewReader("n\n"), &out, "continue?", true)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if !got {
		t.Error("untouched form should keep the default")
	}
	if *calls != 1 {
		t.Errorf("form ran %d times, want 1", *calls)
	}
	if out.Len() != 0 {
		t.Errorf("line prompt written alongside form: %q", out.String())
	}
}

func TestFormErrors(t *testing.T) {
	withForms(t, func(*huh.Form) error { return huh.ErrUserAborted })
	if got, err := Confirm(os.Stdin, io.Discard, "continue?", false); !errors.Is(err, ErrAborted) || got {
		t.Errorf("Confirm aborted = %v, %v", got, err)
	}
	if _, err := Ask(os.Stdin, io.Discard, "name? "); !errors.Is(err, ErrAborted) {
		t.Errorf("Ask aborted = %v", err)
	}

	boom := errors.New("boom")
	withForms(t, func(*huh.Form) error { return boom })
	if _, err := Ask(os.Stdin, io.Discard, "name? "); !errors.Is(err, boom) {
		t.Errorf("Ask error = %v", err)
	}
}

func TestPipesAreNotInteractive(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	defer r.Close()
	defer w.Close()

	if interactive(r, w) {
		t.Error("a pipe is not a terminal")
	}
	if interactive(strings.NewReader(""), io.Discard) {
		t.Error("in-memory streams are not terminals")
	}
}
