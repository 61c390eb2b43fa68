package snapfilter

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Position is a 1-based line and column (in runes) within the source.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Position returns where the error starts in Source.
func (e *CompileError) Position() Position {
	start := min(max(e.Span.Start, 0), len(e.Source))
	before := e.Source[:start]

	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1

	return Position{Line: line, Column: utf8.RuneCountInString(before[lineStart:]) + 1}
}

// SourceLine returns the line of Source containing the error start.
func (e *CompileError) SourceLine() string {
	start := min(max(e.Span.Start, 0), len(e.Source))

	lineStart := strings.LastIndexByte(e.Source[:start], '\n') + 1

	lineEnd := strings.IndexByte(e.Source[start:], '\n')
	if lineEnd < 0 {
		return strings.TrimRight(e.Source[lineStart:], "\r")
	}

	return strings.TrimRight(e.Source[lineStart:start+lineEnd], "\r")
}

// DetailedError returns the error message followed by the source line and a
// caret marker under the offending fragment.
func (e *CompileError) DetailedError() string {
	var builder strings.Builder

	pos := e.Position()

	builder.WriteString(pos.String())
	builder.WriteString(": ")
	builder.WriteString(e.Error())
	builder.WriteString("\n")

	line := e.SourceLine()
	if strings.TrimSpace(line) == "" && e.Fragment == "" {
		return builder.String()
	}

	builder.WriteString("\n")
	builder.WriteString(line)
	builder.WriteString("\n")
	builder.WriteString(e.Marker())
	builder.WriteString("\n")

	return builder.String()
}

// Marker returns the caret line aligned under the offending fragment of
// SourceLine. Tabs are kept so the marker lines up in a terminal, and East
// Asian wide characters count as two columns.
func (e *CompileError) Marker() string {
	line := e.SourceLine()
	pos := e.Position()

	var builder strings.Builder

	column := 1
	for _, r := range line {
		if column >= pos.Column {
			break
		}

		if r == '\t' {
			builder.WriteByte('\t')
		} else {
			builder.WriteString(strings.Repeat(" ", runeWidth(r)))
		}

		column++
	}

	// Only the part of the fragment on the first line is underlined.
	frag, _, _ := strings.Cut(e.Fragment, "\n")

	carets := 0
	for _, r := range frag {
		carets += runeWidth(r)
	}

	builder.WriteString(strings.Repeat("^", max(carets, 1)))

	return builder.String()
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
