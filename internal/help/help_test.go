package help

import (
	"fmt"
	"strings"
	"testing"

	"github.com/steveyegge/console/internal/options"
)

func testSet(t *testing.T) *options.Set {
	t.Helper()
	raw := options.Merge(map[string]options.Spec{
		"f":    {Param: "FILE", Description: "Input file", Requirement: options.Required},
		"name": {Param: "NAME", Description: "Who to greet"},
		"a":    {Requirement: options.OneRequired},
		"b":    {Requirement: options.OneRequired},
	}, options.Builtins())
	set, err := options.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return set
}

func TestUsageTokens(t *testing.T) {
	got := UsageTokens(testSet(t))
	want := []string{"[-a | -b]", "-f FILE", "[--help]", "[--name=NAME]", "[--quiet]", "[--verbose]"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("UsageTokens() = %q, want %q", got, want)
	}
}

func TestUsageTokenForms(t *testing.T) {
	set, err := options.Normalize(map[string]options.Spec{
		"l":     {ParamOptional: true},
		"level": {Param: "N", ParamOptional: true},
		"o":     {Param: "OUT"},
		"x":     {},
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	got := UsageTokens(set)
	want := []string{"[-l [VALUE]]", "[--level[=N]]", "[-o OUT]", "[-x]"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("UsageTokens() = %q, want %q", got, want)
	}
}

func TestUsageNamedGroups(t *testing.T) {
	set, err := options.Normalize(map[string]options.Spec{
		"a": {Requirement: options.OneRequired, Group: "src"},
		"b": {Requirement: options.OneRequired, Group: "dst"},
		"c": {Requirement: options.OneRequired, Group: "src"},
		"d": {Requirement: options.OneRequired, Group: "dst"},
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	got := Usage("prog", set, 80)
	if got != "Usage: prog [-a | -c] [-b | -d]" {
		t.Errorf("Usage() = %q", got)
	}
}

func TestUsageWraps(t *testing.T) {
	got := Usage("prog", testSet(t), 40)
	lines := strings.Split(got, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapped usage, got %q", got)
	}
	if !strings.HasPrefix(lines[0], "Usage: prog [-a | -b]") {
		t.Errorf("first line = %q", lines[0])
	}
	for i, line := range lines[1:] {
		if !strings.HasPrefix(line, "            ") {
			t.Errorf("continuation %d not aligned: %q", i+1, line)
		}
	}
}

func TestUsageEmptySet(t *testing.T) {
	set, err := options.Normalize(nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got := Usage("prog", set, 80); got != "Usage: prog" {
		t.Errorf("Usage() = %q", got)
	}
	if got := Options(set, 80); got != "" {
		t.Errorf("Options() = %q, want empty", got)
	}
}

func TestOptionsTable(t *testing.T) {
	got := Options(testSet(t), 80)
	// Longest cell is "    --name=NAME" (15) plus a gap of 2.
	row := func(cell, desc string) string { return fmt.Sprintf("  %-17s%s", cell, desc) }
	want := strings.Join([]string{
		"  -a",
		"  -b",
		row("-f FILE", "Input file"),
		row("-h, --help", "Show this help text and exit"),
		row("    --name=NAME", "Who to greet"),
		row("-q, --quiet", "Suppress all output except errors"),
		row("-v, --verbose", "Increase output verbosity (repeatable: -vv, -vvv)"),
	}, "\n")
	if got != want {
		t.Errorf("Options() =\n%s\nwant\n%s", got, want)
	}
}

func TestOptionsWrapsDescriptions(t *testing.T) {
	set, err := options.Normalize(map[string]options.Spec{
		"retry": {Param: "N", Description: strings.Repeat("retries the operation ", 8)},
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	got := Options(set, 50)
	lines := strings.Split(got, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapped description, got %q", got)
	}
	indent := strings.Repeat(" ", len("  ")+len("    --retry=N")+2)
	for i, line := range lines {
		if len(line) > 50 {
			t.Errorf("line %d exceeds width: %q", i, line)
		}
		if i > 0 && !strings.HasPrefix(line, indent) {
			t.Errorf("line %d not aligned to description column: %q", i, line)
		}
	}
}

func TestRender(t *testing.T) {
	cfg := Config{
		Program:   "greet",
		Header:    "Greets people.",
		Footer:    "Report bugs to nobody.",
		Copyright: "(c) 2026 Example",
		Width:     80,
	}
	got := Render(cfg, testSet(t))

	sections := strings.Split(strings.TrimSuffix(got, "\n"), "\n\n")
	if len(sections) != 5 {
		t.Fatalf("expected 5 sections, got %d:\n%s", len(sections), got)
	}
	if sections[0] != "Greets people." {
		t.Errorf("header = %q", sections[0])
	}
	if !strings.HasPrefix(sections[1], "Usage: greet ") {
		t.Errorf("usage = %q", sections[1])
	}
	if !strings.HasPrefix(sections[2], "Options:\n  -a") {
		t.Errorf("options = %q", sections[2])
	}
	if sections[3] != "Report bugs to nobody." || sections[4] != "(c) 2026 Example" {
		t.Errorf("footer sections = %q", sections[3:])
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("help text should end with a newline")
	}
}

func TestRenderOmitsEmptySections(t *testing.T) {
	got := Render(Config{Program: "greet"}, testSet(t))
	if !strings.HasPrefix(got, "Usage: greet") {
		t.Errorf("expected usage first, got %q", got)
	}
	if strings.Count(got, "\n\n") != 1 {
		t.Errorf("expected only usage and options sections:\n%s", got)
	}
	if Render(Config{Program: "greet"}, testSet(t)) != got {
		t.Error("Render is not deterministic")
	}
}
