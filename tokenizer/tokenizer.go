package tokenizer

import (
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenIterator uses Go 1.23 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// FilterTokenizer is a tokenizer that returns an iterator
type FilterTokenizer struct {
	input string
}

// NewFilterTokenizer creates a new FilterTokenizer
func NewFilterTokenizer(input string) *FilterTokenizer {
	return &FilterTokenizer{input: input}
}

// Tokens returns an iterator of tokens. Iteration stops after the first
// error; there is no recovery.
func (t *FilterTokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		tokenizer := &tokenizer{input: t.input}

		for {
			token, ok, err := tokenizer.nextToken()
			if err != nil {
				yield(Token{}, err)
				return
			}

			if !ok {
				return
			}

			if !yield(token, nil) {
				return
			}
		}
	}
}

// AllTokens collects every token, failing on the first lexical error.
func (t *FilterTokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, 16)

	for token, err := range t.Tokens() {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// Tokenize eagerly tokenizes input and wraps the result in a Stream.
func Tokenize(input string) (*Stream, error) {
	tokens, err := NewFilterTokenizer(input).AllTokens()
	if err != nil {
		return nil, err
	}

	return NewStream(tokens, len(input)), nil
}

// Internal tokenizer implementation
type tokenizer struct {
	input    string
	position int
}

// nextToken returns the next token; ok is false at end of input.
func (t *tokenizer) nextToken() (Token, bool, error) {
	t.skipWhitespace()

	if t.position >= len(t.input) {
		return Token{}, false, nil
	}

	start := t.position
	c := t.input[t.position]

	switch c {
	case '(':
		return t.single(OPENED_PARENS), true, nil
	case ')':
		return t.single(CLOSED_PARENS), true, nil
	case '[':
		return t.single(OPENED_BRACKET), true, nil
	case ']':
		return t.single(CLOSED_BRACKET), true, nil
	case ',':
		return t.single(COMMA), true, nil
	case '=':
		return t.single(EQUAL), true, nil
	case '!':
		if t.peek(1) == '=' {
			t.position += 2
			return Token{Type: NOT_EQUAL, Value: "!=", Span: Span{start, t.position}}, true, nil
		}
		return Token{}, false, t.unexpected()
	case '\'', '"':
		token, err := t.readString(c)
		if err != nil {
			return Token{}, false, err
		}
		return token, true, nil
	default:
		if isIdentStart(c) {
			return t.readWord(), true, nil
		}
		return Token{}, false, t.unexpected()
	}
}

func (t *tokenizer) peek(offset int) byte {
	if t.position+offset >= len(t.input) {
		return 0
	}
	return t.input[t.position+offset]
}

func (t *tokenizer) single(tokenType TokenType) Token {
	start := t.position
	t.position++
	return Token{Type: tokenType, Value: t.input[start:t.position], Span: Span{start, t.position}}
}

func (t *tokenizer) skipWhitespace() {
	for t.position < len(t.input) {
		switch t.input[t.position] {
		case ' ', '\t', '\n', '\r', '\f':
			t.position++
		default:
			return
		}
	}
}

// unexpected reports the rune at the current position.
func (t *tokenizer) unexpected() error {
	_, size := utf8.DecodeRuneInString(t.input[t.position:])
	return &LexicalError{
		Span:   Span{t.position, t.position + size},
		Reason: ErrUnexpectedCharacter,
	}
}

// readWord reads an identifier or a keyword operator
func (t *tokenizer) readWord() Token {
	start := t.position
	for t.position < len(t.input) && isIdentPart(t.input[t.position]) {
		t.position++
	}

	word := t.input[start:t.position]
	span := Span{start, t.position}

	if tokenType, ok := keywords[strings.ToUpper(word)]; ok {
		return Token{Type: tokenType, Value: word, Span: span}
	}

	return Token{Type: IDENTIFIER, Value: word, Span: span}
}

// readString reads a quoted literal and unescapes it
func (t *tokenizer) readString(quote byte) (Token, error) {
	start := t.position
	t.position++

	var builder strings.Builder

	for t.position < len(t.input) {
		c := t.input[t.position]

		switch c {
		case quote:
			t.position++
			return Token{Type: STRING, Value: builder.String(), Span: Span{start, t.position}}, nil
		case '\\':
			if err := t.readEscape(&builder); err != nil {
				return Token{}, err
			}
		default:
			builder.WriteByte(c)
			t.position++
		}
	}

	return Token{}, &LexicalError{Span: Span{start, len(t.input)}, Reason: ErrUnterminatedString}
}

// readEscape consumes one backslash escape sequence starting at the current
// position and writes its decoded value.
func (t *tokenizer) readEscape(builder *strings.Builder) error {
	start := t.position
	t.position++ // backslash

	if t.position >= len(t.input) {
		// The closing quote is missing; let readString report it.
		return nil
	}

	c := t.input[t.position]
	t.position++

	switch c {
	case '\\', '"', '\'', '/':
		builder.WriteByte(c)
	case 'n':
		builder.WriteByte('\n')
	case 'r':
		builder.WriteByte('\r')
	case 't':
		builder.WriteByte('\t')
	case '0':
		builder.WriteByte(0)
	case 'u':
		r, ok := t.readUnicodeEscape()
		if !ok {
			return &LexicalError{Span: Span{start, t.position}, Reason: ErrInvalidEscape}
		}
		builder.WriteRune(r)
	default:
		// keep the span on the whole escaped rune
		t.position--
		_, size := utf8.DecodeRuneInString(t.input[t.position:])
		t.position += size
		return &LexicalError{Span: Span{start, t.position}, Reason: ErrInvalidEscape}
	}

	return nil
}

// readUnicodeEscape reads either {X..XXXXXX} or exactly four hex digits after \u.
func (t *tokenizer) readUnicodeEscape() (rune, bool) {
	var digits string

	if t.peek(0) == '{' {
		end := strings.IndexByte(t.input[t.position:], '}')
		if end < 2 || end > 7 {
			return 0, false
		}
		digits = t.input[t.position+1 : t.position+end]
		t.position += end + 1
	} else {
		if t.position+4 > len(t.input) {
			return 0, false
		}
		digits = t.input[t.position : t.position+4]
		t.position += 4
	}

	value, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || !utf8.ValidRune(rune(value)) {
		return 0, false
	}

	return rune(value), true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// IsIdentifier reports whether s reads back as a single IDENTIFIER token,
// that is a bare word that is not a keyword.
func IsIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}

	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}

	_, reserved := keywords[strings.ToUpper(s)]

	return !reserved
}
