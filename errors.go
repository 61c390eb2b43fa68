package snapfilter

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shibukawa/snapfilter/parser"
	"github.com/shibukawa/snapfilter/tokenizer"
)

// Common errors used throughout the snapfilter package
var (
	// ErrInvalidTree indicates a serialized tree that does not have one of the five node shapes.
	ErrInvalidTree = errors.New("invalid filter tree")
	// ErrEncodeTree is returned when a parsed tree could not be serialized.
	ErrEncodeTree = errors.New("failed to encode filter tree")
)

// ErrorKind classifies compile failures.
type ErrorKind int

const (
	KindLexical ErrorKind = iota
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindLexical:
		return "lexical error"
	case KindParse:
		return "parse error"
	default:
		return "error"
	}
}

// CompileError is the single diagnostic produced by a failed compile.
type CompileError struct {
	Kind   ErrorKind
	Source string
	Span   tokenizer.Span
	// Fragment is Source[Span.Start:Span.End]; empty at end of input.
	Fragment string
	// Expected lists the alternatives accepted at Span (parse errors only).
	Expected []string
	// Err is the underlying *tokenizer.LexicalError or *parser.ParseError.
	Err error
}

// newCompileError converts a tokenizer or parser failure into a CompileError.
func newCompileError(source string, err error) error {
	var (
		lexErr   *tokenizer.LexicalError
		parseErr *parser.ParseError
	)

	switch {
	case errors.As(err, &lexErr):
		return &CompileError{
			Kind:     KindLexical,
			Source:   source,
			Span:     lexErr.Span,
			Fragment: fragment(source, lexErr.Span),
			Err:      err,
		}
	case errors.As(err, &parseErr):
		return &CompileError{
			Kind:     KindParse,
			Source:   source,
			Span:     parseErr.Span,
			Fragment: fragment(source, parseErr.Span),
			Expected: parseErr.Expected,
			Err:      err,
		}
	default:
		return err
	}
}

func fragment(source string, span tokenizer.Span) string {
	start := min(max(span.Start, 0), len(source))
	end := min(max(span.End, start), len(source))
	return source[start:end]
}

// Error implements the error interface
func (e *CompileError) Error() string {
	reason := errors.Unwrap(e.Err)
	if reason == nil {
		reason = e.Err
	}

	if e.Kind == KindLexical {
		return fmt.Sprintf("%s at %s: %v %s", e.Kind, e.Span, reason, e.near())
	}

	if errors.Is(e.Err, parser.ErrTooDeep) {
		return fmt.Sprintf("%s at %s: %v near %s", e.Kind, e.Span, reason, e.near())
	}

	msg := fmt.Sprintf("%s at %s: unexpected %s", e.Kind, e.Span, e.near())
	if len(e.Expected) > 0 {
		msg += ", expected " + parser.ExpectedString(e.Expected)
	}

	return msg
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// near quotes the offending fragment for messages.
func (e *CompileError) near() string {
	if e.Fragment == "" {
		return "end of input"
	}
	return strconv.Quote(e.Fragment)
}

// UnmarshalError reports a serialized tree that could not be decoded.
type UnmarshalError struct {
	Reason error
}

func (e *UnmarshalError) Error() string {
	return fmt.Sprintf("failed to unmarshal filter tree: %v", e.Reason)
}

func (e *UnmarshalError) Unwrap() error {
	return e.Reason
}
