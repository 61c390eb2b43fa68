package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shibukawa/snapfilter/tokenizer"
)

// Sentinel errors - Parser related
var (
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnexpectedEOF   = errors.New("unexpected end of input")
	ErrTooDeep         = errors.New("expression nested too deeply")
)

// endOfInput is what ParseError.Found holds when the stream ran out.
const endOfInput = "end of input"

// ParseError reports the token at Span that matches no production expected
// at that point.
type ParseError struct {
	Span tokenizer.Span
	// Found is the offending token's lexeme, or "end of input".
	Found string
	// Expected lists the alternatives accepted at Span, sorted.
	Expected []string
	Reason   error
}

func (e *ParseError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%v at %s: found %s", e.Reason, e.Span, e.Found)

	if len(e.Expected) > 0 {
		sb.WriteString(", expected ")
		sb.WriteString(ExpectedString(e.Expected))
	}

	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Reason
}

// ExpectedString joins alternatives as "x" or "one of x, y".
func ExpectedString(expected []string) string {
	if len(expected) == 1 {
		return expected[0]
	}
	return "one of " + strings.Join(expected, ", ")
}
