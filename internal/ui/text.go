package ui

import (
	"strings"
	"unicode/utf8"
)

// DefaultWidth is the wrap width used when none is configured.
const DefaultWidth = 80

// WrapText wraps text at word boundaries to fit within maxWidth.
// Preserves existing line breaks. Words longer than maxWidth are kept whole.
func WrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = DefaultWidth
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString(wrapLine(line, maxWidth))
	}

	return result.String()
}

// WrapIndent wraps text to maxWidth with every line after the first prefixed
// by indent spaces. The first line is assumed to start at column indent too,
// so all lines share the same usable width.
func WrapIndent(text string, indent, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = DefaultWidth
	}
	usable := maxWidth - indent
	if usable < 20 {
		usable = 20
	}
	wrapped := WrapText(text, usable)
	return strings.ReplaceAll(wrapped, "\n", "\n"+strings.Repeat(" ", indent))
}

// JoinTokens lays tokens out separated by single spaces, starting a new line
// (indented by indent spaces) when the next token would pass maxWidth.
// prefix is written before the first token and counts against the width.
// Tokens are never split.
func JoinTokens(prefix string, tokens []string, indent, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = DefaultWidth
	}

	var result strings.Builder
	result.WriteString(prefix)
	currentLen := utf8.RuneCountInString(prefix)
	lineHasToken := false

	for _, token := range tokens {
		tokenLen := utf8.RuneCountInString(token)
		switch {
		case !lineHasToken:
			result.WriteString(token)
			currentLen += tokenLen
		case currentLen+1+tokenLen <= maxWidth:
			result.WriteString(" ")
			result.WriteString(token)
			currentLen += 1 + tokenLen
		default:
			result.WriteString("\n")
			result.WriteString(strings.Repeat(" ", indent))
			result.WriteString(token)
			currentLen = indent + tokenLen
		}
		lineHasToken = true
	}

	return result.String()
}

// wrapLine wraps a single line at word boundaries.
func wrapLine(line string, maxWidth int) string {
	if utf8.RuneCountInString(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	words := strings.Fields(line)
	currentLen := 0

	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)

		// If this is first word on line, add it even if too long
		if currentLen == 0 {
			result.WriteString(word)
			currentLen = wordLen
			continue
		}

		// Check if word fits on current line (with space)
		if currentLen+1+wordLen <= maxWidth {
			result.WriteString(" ")
			result.WriteString(word)
			currentLen += 1 + wordLen
		} else {
			// Start new line
			result.WriteString("\n")
			result.WriteString(word)
			currentLen = wordLen
		}
	}

	return result.String()
}

// PadRight pads s with spaces to width runes. Longer strings are returned as is.
func PadRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
