// Package help renders usage and option help text from a normalized option set.
package help

import (
	"strings"

	"github.com/steveyegge/console/internal/options"
	"github.com/steveyegge/console/internal/ui"
)

// Config holds the free-form parts of the help text.
type Config struct {
	Program   string
	Header    string
	Footer    string
	Copyright string
	// Width is the wrap width; <= 0 means ui.DefaultWidth.
	Width int
}

const (
	tableIndent = "  "
	columnGap   = 2
)

// Render builds the complete help text. It is a pure function of its inputs.
func Render(cfg Config, set *options.Set) string {
	width := cfg.Width
	if width <= 0 {
		width = ui.DefaultWidth
	}

	var sections []string
	if h := strings.TrimSpace(cfg.Header); h != "" {
		sections = append(sections, ui.WrapText(h, width))
	}
	sections = append(sections, Usage(cfg.Program, set, width))
	if table := Options(set, width); table != "" {
		sections = append(sections, "Options:\n"+table)
	}
	if f := strings.TrimSpace(cfg.Footer); f != "" {
		sections = append(sections, ui.WrapText(f, width))
	}
	if c := strings.TrimSpace(cfg.Copyright); c != "" {
		sections = append(sections, c)
	}

	return strings.Join(sections, "\n\n") + "\n"
}

// Usage renders the one-line synopsis, wrapped between tokens at width.
func Usage(program string, set *options.Set, width int) string {
	prefix := "Usage: "
	if program != "" {
		prefix += program + " "
	}
	line := ui.JoinTokens(prefix, UsageTokens(set), len([]rune(prefix)), width)
	return strings.TrimRight(line, " ")
}

// UsageTokens returns the synopsis tokens in option-name order. REQUIRED
// options are bare, OPTIONAL ones bracketed, and each ONE_REQUIRED group is
// one bracketed alternative placed at its first member.
func UsageTokens(set *options.Set) []string {
	groupOf := make(map[string]int)
	groups := set.Groups()
	for i, g := range groups {
		for _, m := range g.Members {
			groupOf[m.Name] = i
		}
	}

	var tokens []string
	emitted := make(map[int]bool)
	for _, spec := range set.Specs() {
		switch spec.Requirement {
		case options.Required:
			tokens = append(tokens, usageToken(spec))
		case options.OneRequired:
			i := groupOf[spec.Name]
			if emitted[i] {
				continue
			}
			emitted[i] = true
			alts := make([]string, len(groups[i].Members))
			for j, m := range groups[i].Members {
				alts[j] = usageToken(m)
			}
			tokens = append(tokens, "["+strings.Join(alts, " | ")+"]")
		default:
			tokens = append(tokens, "["+usageToken(spec)+"]")
		}
	}
	return tokens
}

// usageToken renders how a user types one option in the synopsis.
func usageToken(spec options.Spec) string {
	name := options.Display(spec.Name)
	if !spec.TakesValue() {
		return name
	}
	switch {
	case spec.IsShort() && spec.ParamOptional:
		return name + " [" + spec.Param + "]"
	case spec.IsShort():
		return name + " " + spec.Param
	case spec.ParamOptional:
		return name + "[=" + spec.Param + "]"
	default:
		return name + "=" + spec.Param
	}
}

// Options renders the option table. Descriptions start in a column derived
// from the longest name/parameter cell.
func Options(set *options.Set, width int) string {
	specs := set.Specs()
	if len(specs) == 0 {
		return ""
	}
	if width <= 0 {
		width = ui.DefaultWidth
	}

	cells := make([]string, len(specs))
	column := 0
	for i, spec := range specs {
		cells[i] = optionCell(spec)
		if n := len([]rune(cells[i])); n > column {
			column = n
		}
	}
	column += columnGap

	descIndent := len(tableIndent) + column
	var b strings.Builder
	for i, spec := range specs {
		line := tableIndent + cells[i]
		if desc := spec.Description; desc != "" {
			line = tableIndent + ui.PadRight(cells[i], column) + ui.WrapIndent(desc, descIndent, width)
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// optionCell renders the left column of the option table:
//
//	-x
//	-f FILE
//	-h, --help
//	    --level[=LEVEL]
func optionCell(spec options.Spec) string {
	var names string
	switch {
	case spec.IsShort():
		names = "-" + spec.Name
	case spec.Short != "":
		names = "-" + spec.Short + ", --" + spec.Name
	default:
		names = "    --" + spec.Name
	}

	if !spec.TakesValue() {
		return names
	}
	switch {
	case spec.IsShort() && spec.ParamOptional:
		return names + " [" + spec.Param + "]"
	case spec.IsShort():
		return names + " " + spec.Param
	case spec.ParamOptional:
		return names + "[=" + spec.Param + "]"
	default:
		return names + "=" + spec.Param
	}
}
