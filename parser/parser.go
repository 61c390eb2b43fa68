package parser

import (
	"slices"

	tok "github.com/shibukawa/snapfilter/tokenizer"
)

// MaxDepth bounds nesting of parentheses and NOT operators. Valid input
// nested deeper than this is rejected.
const MaxDepth = 256

// Parse builds the filter tree from the whole token stream.
//
// Grammar, loosest binding first:
//
//	or      = and { OR and }
//	and     = not { AND not }
//	not     = NOT not | primary
//	primary = "(" or ")" | field "=" string | field "!=" string
//	        | field IN list | field NOT IN list
//	field   = identifier | string
//	list    = "[" [ string { "," string } ] "]"
//
// A field written as a string literal may hold any text, such as k8s.pod or
// a reserved word. Parentheses and NOT nest at most MaxDepth levels; deeper
// input fails with ErrTooDeep instead of growing the stack.
func Parse(stream *tok.Stream) (AstNode, error) {
	p := &parser{stream: stream, pos: stream.Start()}

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if !p.stream.IsEOF(p.pos) {
		return nil, p.unexpected(tok.AND.Describe(), tok.OR.Describe(), endOfInput)
	}

	return node, nil
}

// ParseString tokenizes and parses src.
func ParseString(src string) (AstNode, error) {
	stream, err := tok.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(stream)
}

type parser struct {
	stream *tok.Stream
	pos    int
	depth  int
}

// peek returns the type of the current token; ok is false at end of input.
func (p *parser) peek() (tok.TokenType, bool) {
	token, ok := p.stream.At(p.pos)
	return token.Type, ok
}

func (p *parser) accept(tokenType tok.TokenType) (tok.Token, bool) {
	token, ok := p.stream.At(p.pos)
	if !ok || token.Type != tokenType {
		return tok.Token{}, false
	}
	p.pos++
	return token, true
}

func (p *parser) expect(tokenType tok.TokenType) (tok.Token, error) {
	token, ok := p.accept(tokenType)
	if !ok {
		return tok.Token{}, p.unexpected(tokenType.Describe())
	}
	return token, nil
}

// unexpected builds the error for the token at the cursor.
func (p *parser) unexpected(expected ...string) *ParseError {
	return p.unexpectedAt(p.pos, expected...)
}

func (p *parser) unexpectedAt(pos int, expected ...string) *ParseError {
	expected = slices.Clone(expected)
	slices.Sort(expected)
	expected = slices.Compact(expected)

	err := &ParseError{
		Span:     p.stream.SpanAt(pos),
		Expected: expected,
	}

	if token, ok := p.stream.At(pos); ok {
		err.Found = token.Lexeme()
		err.Reason = ErrUnexpectedToken
	} else {
		err.Found = endOfInput
		err.Reason = ErrUnexpectedEOF
	}

	return err
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		err := p.unexpected()
		err.Reason = ErrTooDeep
		return err
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

// parseOr handles OR expressions (lowest precedence).
func (p *parser) parseOr() (AstNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for {
		if _, ok := p.accept(tok.OR); !ok {
			return left, nil
		}

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = &Or{Left: left, Right: right}
	}
}

// parseAnd handles AND expressions.
func (p *parser) parseAnd() (AstNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for {
		if _, ok := p.accept(tok.AND); !ok {
			return left, nil
		}

		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		left = &And{Left: left, Right: right}
	}
}

// parseNot handles prefix NOT. It applies to the next NOT, atom or
// parenthesized group only, never across AND/OR.
func (p *parser) parseNot() (AstNode, error) {
	if _, ok := p.accept(tok.NOT); !ok {
		return p.parsePrimary()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	node, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	return &Not{Node: node}, nil
}

// parsePrimary handles parenthesized expressions and field predicates.
func (p *parser) parsePrimary() (AstNode, error) {
	tokenType, ok := p.peek()
	if !ok || (tokenType != tok.OPENED_PARENS && tokenType != tok.IDENTIFIER && tokenType != tok.STRING) {
		return nil, p.unexpected(tok.OPENED_PARENS.Describe(), tok.NOT.Describe(), tok.IDENTIFIER.Describe(), tok.STRING.Describe())
	}

	if tokenType == tok.OPENED_PARENS {
		return p.parseGroup()
	}

	return p.parsePredicate()
}

func (p *parser) parseGroup() (AstNode, error) {
	p.pos++ // (

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if _, ok := p.accept(tok.CLOSED_PARENS); !ok {
		return nil, p.unexpected(tok.AND.Describe(), tok.OR.Describe(), tok.CLOSED_PARENS.Describe())
	}

	return node, nil
}

// parsePredicate parses field = v, field != v, field IN [..] and
// field NOT IN [..]. The last two words of NOT IN must follow the field
// directly; anywhere else NOT is the prefix operator.
func (p *parser) parsePredicate() (AstNode, error) {
	name, ok := p.accept(tok.IDENTIFIER)
	if !ok {
		if name, ok = p.accept(tok.STRING); !ok {
			return nil, p.unexpected(tok.IDENTIFIER.Describe(), tok.STRING.Describe())
		}
	}

	tokenType, ok := p.peek()
	if !ok {
		return nil, p.unexpected(predicateOperators()...)
	}

	switch tokenType {
	case tok.EQUAL, tok.NOT_EQUAL:
		p.pos++

		value, err := p.expect(tok.STRING)
		if err != nil {
			return nil, err
		}

		eq := &Eq{Field: name.Value, Value: value.Value}
		if tokenType == tok.NOT_EQUAL {
			return &Not{Node: eq}, nil
		}
		return eq, nil

	case tok.IN:
		p.pos++

		values, err := p.parseList()
		if err != nil {
			return nil, err
		}

		return &In{Field: name.Value, Values: values}, nil

	case tok.NOT:
		p.pos++

		if _, err := p.expect(tok.IN); err != nil {
			return nil, err
		}

		values, err := p.parseList()
		if err != nil {
			return nil, err
		}

		return &Not{Node: &In{Field: name.Value, Values: values}}, nil

	default:
		return nil, p.unexpected(predicateOperators()...)
	}
}

func predicateOperators() []string {
	return []string{
		tok.EQUAL.Describe(),
		tok.NOT_EQUAL.Describe(),
		tok.IN.Describe(),
		tok.NOT.Describe(),
	}
}

// parseList parses "[" string {"," string} "]". The elements are read
// through a window of the stream covering the run of strings and commas.
func (p *parser) parseList() ([]string, error) {
	if _, err := p.expect(tok.OPENED_BRACKET); err != nil {
		return nil, err
	}

	begin := p.pos
	end := begin

	for {
		token, ok := p.stream.At(end)
		if !ok || (token.Type != tok.STRING && token.Type != tok.COMMA) {
			break
		}
		end++
	}

	window := p.stream.Slice(begin, end)
	values := make([]string, 0, (len(window)+1)/2)

	for i, token := range window {
		if i%2 == 0 {
			if token.Type != tok.STRING {
				if i == 0 {
					return nil, p.unexpectedAt(begin+i, tok.STRING.Describe(), tok.CLOSED_BRACKET.Describe())
				}
				return nil, p.unexpectedAt(begin+i, tok.STRING.Describe())
			}
			values = append(values, token.Value)
		} else if token.Type != tok.COMMA {
			return nil, p.unexpectedAt(begin+i, tok.COMMA.Describe(), tok.CLOSED_BRACKET.Describe())
		}
	}

	p.pos = end

	switch {
	case len(window) == 0:
		if _, ok := p.accept(tok.CLOSED_BRACKET); !ok {
			return nil, p.unexpected(tok.STRING.Describe(), tok.CLOSED_BRACKET.Describe())
		}
	case len(window)%2 == 0:
		// trailing comma
		return nil, p.unexpected(tok.STRING.Describe())
	default:
		if _, ok := p.accept(tok.CLOSED_BRACKET); !ok {
			return nil, p.unexpected(tok.COMMA.Describe(), tok.CLOSED_BRACKET.Describe())
		}
	}

	return values, nil
}
