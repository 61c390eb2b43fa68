package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/snapfilter/tokenizer"
)

const (
	eqA1 = `{"$eq":{"field":"a","value":"1"}}`
	eqB2 = `{"$eq":{"field":"b","value":"2"}}`
	eqC3 = `{"$eq":{"field":"c","value":"3"}}`
)

func TestParseAndEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "equality",
			input:    `a = "x"`,
			expected: `{"$eq":{"field":"a","value":"x"}}`,
		},
		{
			name:     "inequality desugars to not eq",
			input:    `a != "x"`,
			expected: `{"$not":{"$eq":{"field":"a","value":"x"}}}`,
		},
		{
			name:     "membership",
			input:    `a IN ["x","y"]`,
			expected: `{"$in":{"field":"a","values":["x","y"]}}`,
		},
		{
			name:     "field level not in",
			input:    `a NOT IN ["x"]`,
			expected: `{"$not":{"$in":{"field":"a","values":["x"]}}}`,
		},
		{
			name:     "empty list",
			input:    `a IN []`,
			expected: `{"$in":{"field":"a","values":[]}}`,
		},
		{
			name:     "single quoted values",
			input:    `a IN ['x', 'y z']`,
			expected: `{"$in":{"field":"a","values":["x","y z"]}}`,
		},
		{
			name:     "and binds tighter than or",
			input:    `a = "1" AND b = "2" OR c = "3"`,
			expected: `{"$or":[{"$and":[` + eqA1 + `,` + eqB2 + `]},` + eqC3 + `]}`,
		},
		{
			name:     "and binds tighter than or on the right",
			input:    `a = "1" OR b = "2" AND c = "3"`,
			expected: `{"$or":[` + eqA1 + `,{"$and":[` + eqB2 + `,` + eqC3 + `]}]}`,
		},
		{
			name:     "parentheses change grouping",
			input:    `a = "1" AND (b = "2" OR c = "3")`,
			expected: `{"$and":[` + eqA1 + `,{"$or":[` + eqB2 + `,` + eqC3 + `]}]}`,
		},
		{
			name:     "or is left associative",
			input:    `a = "1" OR b = "2" OR c = "3"`,
			expected: `{"$or":[{"$or":[` + eqA1 + `,` + eqB2 + `]},` + eqC3 + `]}`,
		},
		{
			name:     "and is left associative",
			input:    `a = "1" AND b = "2" AND c = "3"`,
			expected: `{"$and":[{"$and":[` + eqA1 + `,` + eqB2 + `]},` + eqC3 + `]}`,
		},
		{
			name:     "not binds to a single atom",
			input:    `NOT a = "1" AND b = "2"`,
			expected: `{"$and":[{"$not":` + eqA1 + `},` + eqB2 + `]}`,
		},
		{
			name:     "not applies to a group",
			input:    `NOT (a = "1" AND b = "2")`,
			expected: `{"$not":{"$and":[` + eqA1 + `,` + eqB2 + `]}}`,
		},
		{
			name:     "repeated not",
			input:    `NOT NOT a = "1"`,
			expected: `{"$not":{"$not":` + eqA1 + `}}`,
		},
		{
			name:     "prefix not before field level not in",
			input:    `NOT a NOT IN ["1"]`,
			expected: `{"$not":{"$not":{"$in":{"field":"a","values":["1"]}}}}`,
		},
		{
			name:     "lower case keywords",
			input:    `a = "1" and not (b = "2" or c = "3")`,
			expected: `{"$and":[` + eqA1 + `,{"$not":{"$or":[` + eqB2 + `,` + eqC3 + `]}}]}`,
		},
		{
			name:     "single quoted field",
			input:    `'k8s.pod' = "x"`,
			expected: `{"$eq":{"field":"k8s.pod","value":"x"}}`,
		},
		{
			name:     "quoted reserved word as field",
			input:    `"and" NOT IN ["x"]`,
			expected: `{"$not":{"$in":{"field":"and","values":["x"]}}}`,
		},
		{
			name:     "redundant parentheses",
			input:    `((a = "1"))`,
			expected: eqA1,
		},
		{
			name:     "html characters are not escaped",
			input:    `a = "<b>&"`,
			expected: `{"$eq":{"field":"a","value":"<b>&"}}`,
		},
		{
			name:     "escaped quote in value",
			input:    `a = "say \"hi\""`,
			expected: `{"$eq":{"field":"a","value":"say \"hi\""}}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			node, err := ParseString(test.input)
			assert.NoError(t, err)

			encoded, err := Encode(node)
			assert.NoError(t, err)
			assert.Equal(t, test.expected, encoded)

			// serializing the same tree again gives identical text
			again, err := Encode(node)
			assert.NoError(t, err)
			assert.Equal(t, encoded, again)
		})
	}
}

func TestParseTree(t *testing.T) {
	node, err := ParseString(`level = "error" OR service NOT IN ["a", "b"]`)
	assert.NoError(t, err)

	expected := &Or{
		Left: &Eq{Field: "level", Value: "error"},
		Right: &Not{Node: &In{
			Field:  "service",
			Values: []string{"a", "b"},
		}},
	}

	assert.True(t, Equal(expected, node))
	assert.Equal(t, OR_NODE, node.Type())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		reason   error
		span     tokenizer.Span
		found    string
		expected []string
	}{
		{
			name:     "identifier as value",
			input:    `a = x`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 4, End: 5},
			found:    "x",
			expected: []string{"string literal"},
		},
		{
			name:     "missing value",
			input:    `a =`,
			reason:   ErrUnexpectedEOF,
			span:     tokenizer.Span{Start: 3, End: 3},
			found:    "end of input",
			expected: []string{"string literal"},
		},
		{
			name:     "unclosed parenthesis",
			input:    `(a = "1"`,
			reason:   ErrUnexpectedEOF,
			span:     tokenizer.Span{Start: 8, End: 8},
			found:    "end of input",
			expected: []string{`")"`, `"AND"`, `"OR"`},
		},
		{
			name:     "stray closing parenthesis",
			input:    `a = "1")`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 7, End: 8},
			found:    ")",
			expected: []string{`"AND"`, `"OR"`, "end of input"},
		},
		{
			name:     "trailing comma in list",
			input:    `a IN ["x",]`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 10, End: 11},
			found:    "]",
			expected: []string{"string literal"},
		},
		{
			name:     "missing comma in list",
			input:    `a IN ["x" "y"]`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 10, End: 13},
			found:    `"y"`,
			expected: []string{`","`, `"]"`},
		},
		{
			name:     "leading comma in list",
			input:    `a IN [,]`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 6, End: 7},
			found:    ",",
			expected: []string{`"]"`, "string literal"},
		},
		{
			name:     "identifier in list",
			input:    `a IN [x]`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 6, End: 7},
			found:    "x",
			expected: []string{`"]"`, "string literal"},
		},
		{
			name:     "unclosed list",
			input:    `a IN ["x"`,
			reason:   ErrUnexpectedEOF,
			span:     tokenizer.Span{Start: 9, End: 9},
			found:    "end of input",
			expected: []string{`","`, `"]"`},
		},
		{
			name:     "list without brackets",
			input:    `a IN "x"`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 5, End: 8},
			found:    `"x"`,
			expected: []string{`"["`},
		},
		{
			name:     "not without in",
			input:    `a NOT "x"`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 6, End: 9},
			found:    `"x"`,
			expected: []string{`"IN"`},
		},
		{
			name:     "field without operator",
			input:    `a`,
			reason:   ErrUnexpectedEOF,
			span:     tokenizer.Span{Start: 1, End: 1},
			found:    "end of input",
			expected: []string{`"!="`, `"="`, `"IN"`, `"NOT"`},
		},
		{
			name:     "keyword after field",
			input:    `a AND b = "1"`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 2, End: 5},
			found:    "AND",
			expected: []string{`"!="`, `"="`, `"IN"`, `"NOT"`},
		},
		{
			name:     "operator where field expected",
			input:    `= "x"`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 0, End: 1},
			found:    "=",
			expected: []string{`"("`, `"NOT"`, "identifier", "string literal"},
		},
		{
			name:     "quoted field needs an operator",
			input:    `'k8s.pod' "x"`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 10, End: 13},
			found:    `"x"`,
			expected: []string{`"!="`, `"="`, `"IN"`, `"NOT"`},
		},
		{
			name:     "empty input",
			input:    ``,
			reason:   ErrUnexpectedEOF,
			span:     tokenizer.Span{Start: 0, End: 0},
			found:    "end of input",
			expected: []string{`"("`, `"NOT"`, "identifier", "string literal"},
		},
		{
			name:     "dangling and",
			input:    `a = "1" AND`,
			reason:   ErrUnexpectedEOF,
			span:     tokenizer.Span{Start: 11, End: 11},
			found:    "end of input",
			expected: []string{`"("`, `"NOT"`, "identifier", "string literal"},
		},
		{
			name:     "empty parentheses",
			input:    `()`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 1, End: 2},
			found:    ")",
			expected: []string{`"("`, `"NOT"`, "identifier", "string literal"},
		},
		{
			name:     "keyword cannot be a field",
			input:    `in = "1"`,
			reason:   ErrUnexpectedToken,
			span:     tokenizer.Span{Start: 0, End: 2},
			found:    "in",
			expected: []string{`"("`, `"NOT"`, "identifier", "string literal"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			node, err := ParseString(test.input)
			assert.Error(t, err)
			assert.True(t, node == nil)
			assert.True(t, errors.Is(err, test.reason))

			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr))
			assert.Equal(t, test.span, parseErr.Span)
			assert.Equal(t, test.found, parseErr.Found)
			assert.Equal(t, test.expected, parseErr.Expected)
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := ParseString(`a = x`)
	assert.EqualError(t, err, "unexpected token at 4..5: found x, expected string literal")

	_, err = ParseString(`(a = "1"`)
	assert.EqualError(t, err, `unexpected end of input at 8..8: found end of input, expected one of ")", "AND", "OR"`)
}

func TestParseLexicalErrorPassesThrough(t *testing.T) {
	_, err := ParseString(`a = "1" & b = "2"`)
	assert.True(t, errors.Is(err, tokenizer.ErrUnexpectedCharacter))
}

func TestParseDepthLimit(t *testing.T) {
	nested := func(depth int) string {
		return strings.Repeat("(", depth) + `a = "1"` + strings.Repeat(")", depth)
	}

	node, err := ParseString(nested(MaxDepth))
	assert.NoError(t, err)
	assert.True(t, Equal(&Eq{Field: "a", Value: "1"}, node))

	_, err = ParseString(nested(MaxDepth + 1))
	assert.True(t, errors.Is(err, ErrTooDeep))

	_, err = ParseString(strings.Repeat("NOT ", MaxDepth+1) + `a = "1"`)
	assert.True(t, errors.Is(err, ErrTooDeep))
}

func TestParseIsDeterministic(t *testing.T) {
	src := `(a = "1" OR b != "2") AND c NOT IN ["x", "y"] OR NOT d IN []`

	first, err := ParseString(src)
	assert.NoError(t, err)
	firstText, err := Encode(first)
	assert.NoError(t, err)

	for range 10 {
		node, err := ParseString(src)
		assert.NoError(t, err)
		text, err := Encode(node)
		assert.NoError(t, err)
		assert.Equal(t, firstText, text)
	}
}
