package tokenizer

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors
var (
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrInvalidEscape       = errors.New("invalid escape sequence")
)

// TokenType represents the type of a token
type TokenType int

const (
	IDENTIFIER     TokenType = iota // field names
	STRING                          // string literals ('text', "text"), already unescaped
	OPENED_PARENS                   // (
	CLOSED_PARENS                   // )
	OPENED_BRACKET                  // [
	CLOSED_BRACKET                  // ]
	COMMA                           // ,
	EQUAL                           // =
	NOT_EQUAL                       // !=

	// Keyword operators, matched case-insensitively
	NOT
	AND
	OR
	IN
)

// keywords maps the upper-cased reserved words to their token types.
var keywords = map[string]TokenType{
	"AND": AND,
	"OR":  OR,
	"NOT": NOT,
	"IN":  IN,
}

// String returns the string representation of TokenType
func (t TokenType) String() string {
	switch t {
	case IDENTIFIER:
		return "IDENTIFIER"
	case STRING:
		return "STRING"
	case OPENED_PARENS:
		return "OPENED_PARENS"
	case CLOSED_PARENS:
		return "CLOSED_PARENS"
	case OPENED_BRACKET:
		return "OPENED_BRACKET"
	case CLOSED_BRACKET:
		return "CLOSED_BRACKET"
	case COMMA:
		return "COMMA"
	case EQUAL:
		return "EQUAL"
	case NOT_EQUAL:
		return "NOT_EQUAL"
	case NOT:
		return "NOT"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case IN:
		return "IN"
	default:
		return "UNKNOWN"
	}
}

// Describe returns the name used for this token type in "expected ..." diagnostics.
func (t TokenType) Describe() string {
	switch t {
	case IDENTIFIER:
		return "identifier"
	case STRING:
		return "string literal"
	case OPENED_PARENS:
		return `"("`
	case CLOSED_PARENS:
		return `")"`
	case OPENED_BRACKET:
		return `"["`
	case CLOSED_BRACKET:
		return `"]"`
	case COMMA:
		return `","`
	case EQUAL:
		return `"="`
	case NOT_EQUAL:
		return `"!="`
	case NOT, AND, OR, IN:
		return strconv.Quote(t.String())
	default:
		return "unknown token"
	}
}

// Span is a half-open byte range [Start, End) into the original source.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Token represents a token
type Token struct {
	Type TokenType
	// Value holds the identifier text, the unescaped string literal, or the
	// lexeme as written for punctuation and keywords.
	Value string
	Span  Span
}

// String returns the string representation of Token
func (t Token) String() string {
	return t.Type.String() + ": " + t.Value
}

// Lexeme returns the token as it should be quoted in diagnostics.
func (t Token) Lexeme() string {
	if t.Type == STRING {
		return strconv.Quote(t.Value)
	}
	return t.Value
}

// LexicalError reports input at Span that matches no token rule.
type LexicalError struct {
	Span   Span
	Reason error
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("%v at %s", e.Reason, e.Span)
}

func (e *LexicalError) Unwrap() error {
	return e.Reason
}
