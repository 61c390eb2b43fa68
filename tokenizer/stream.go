package tokenizer

// Stream is a read-only, position-indexed view over a token sequence.
// Positions are token indexes; the parser keeps its own cursor.
type Stream struct {
	tokens []Token
	size   int
}

// NewStream wraps tokens taken from a source of size bytes. The slice is not
// copied and must not be modified afterwards.
func NewStream(tokens []Token, size int) *Stream {
	return &Stream{tokens: tokens, size: size}
}

// Start returns the initial cursor position.
func (s *Stream) Start() int {
	return 0
}

// Len returns the number of tokens.
func (s *Stream) Len() int {
	return len(s.tokens)
}

// Size returns the length in bytes of the tokenized source.
func (s *Stream) Size() int {
	return s.size
}

// IsEOF reports whether pos is past the last token.
func (s *Stream) IsEOF(pos int) bool {
	return pos >= len(s.tokens)
}

// At returns the token at pos, or false past the end.
func (s *Stream) At(pos int) (Token, bool) {
	if pos < 0 || pos >= len(s.tokens) {
		return Token{}, false
	}
	return s.tokens[pos], true
}

// Slice returns the tokens in [begin, end), clamped to the stream bounds.
// The result shares the underlying array.
func (s *Stream) Slice(begin, end int) []Token {
	begin = max(0, min(begin, len(s.tokens)))
	end = max(begin, min(end, len(s.tokens)))
	return s.tokens[begin:end:end]
}

// SpanAt maps a position to a source location. End of input maps to the
// empty span [size, size).
func (s *Stream) SpanAt(pos int) Span {
	if token, ok := s.At(pos); ok {
		return token.Span
	}
	return Span{s.size, s.size}
}
