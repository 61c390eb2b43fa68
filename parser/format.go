package parser

import (
	"strings"

	tok "github.com/shibukawa/snapfilter/tokenizer"
)

// Binding strength used when rendering; higher binds tighter.
const (
	precOr = iota + 1
	precAnd
	precNot
	precAtom
)

func precedence(node AstNode) int {
	switch n := node.(type) {
	case *Or:
		return precOr
	case *And:
		return precAnd
	case *Not:
		switch n.Node.(type) {
		case *Eq, *In:
			// rendered as "!=" / "NOT IN"
			return precAtom
		}
		return precNot
	default:
		return precAtom
	}
}

// group renders node, parenthesized when it binds looser than floor.
func group(node AstNode, floor int) string {
	if precedence(node) < floor {
		return "(" + node.String() + ")"
	}
	return node.String()
}

// Operators are left-associative, so a right operand of the same precedence
// keeps its parentheses.
func (n *Or) String() string {
	return group(n.Left, precOr) + " OR " + group(n.Right, precAnd)
}

func (n *And) String() string {
	return group(n.Left, precAnd) + " AND " + group(n.Right, precNot)
}

func (n *Not) String() string {
	switch leaf := n.Node.(type) {
	case *Eq:
		return field(leaf.Field) + " != " + quote(leaf.Value)
	case *In:
		return field(leaf.Field) + " NOT IN " + list(leaf.Values)
	}
	return "NOT " + group(n.Node, precNot)
}

func (n *Eq) String() string {
	return field(n.Field) + " = " + quote(n.Value)
}

func (n *In) String() string {
	return field(n.Field) + " IN " + list(n.Values)
}

// field renders a field name bare when it reads back as an identifier and
// as a string literal otherwise.
func field(name string) string {
	if tok.IsIdentifier(name) {
		return name
	}
	return quote(name)
}

func list(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
