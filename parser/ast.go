package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// AstNode represents a node of the filter tree. Nodes are immutable once built.
type AstNode interface {
	Type() NodeType
	// String renders the node back to filter expression text.
	String() string
	json.Marshaler
}

// NodeType represents the type of AST node
type NodeType int

const (
	OR_NODE NodeType = iota
	AND_NODE
	NOT_NODE
	EQ_NODE
	IN_NODE
)

// Key returns the operator key used in the serialized tree.
func (n NodeType) Key() string {
	switch n {
	case OR_NODE:
		return "$or"
	case AND_NODE:
		return "$and"
	case NOT_NODE:
		return "$not"
	case EQ_NODE:
		return "$eq"
	case IN_NODE:
		return "$in"
	default:
		return "$unknown"
	}
}

func (n NodeType) String() string {
	switch n {
	case OR_NODE:
		return "OR"
	case AND_NODE:
		return "AND"
	case NOT_NODE:
		return "NOT"
	case EQ_NODE:
		return "EQ"
	case IN_NODE:
		return "IN"
	default:
		return "UNKNOWN"
	}
}

// Or matches when either side matches.
type Or struct {
	Left  AstNode
	Right AstNode
}

func (n *Or) Type() NodeType { return OR_NODE }

func (n *Or) MarshalJSON() ([]byte, error) {
	return marshal(struct {
		Or []AstNode `json:"$or"`
	}{[]AstNode{n.Left, n.Right}})
}

// And matches when both sides match.
type And struct {
	Left  AstNode
	Right AstNode
}

func (n *And) Type() NodeType { return AND_NODE }

func (n *And) MarshalJSON() ([]byte, error) {
	return marshal(struct {
		And []AstNode `json:"$and"`
	}{[]AstNode{n.Left, n.Right}})
}

// Not negates its operand.
type Not struct {
	Node AstNode
}

func (n *Not) Type() NodeType { return NOT_NODE }

func (n *Not) MarshalJSON() ([]byte, error) {
	return marshal(struct {
		Not AstNode `json:"$not"`
	}{n.Node})
}

// Eq matches when Field equals Value.
type Eq struct {
	Field string
	Value string
}

func (n *Eq) Type() NodeType { return EQ_NODE }

func (n *Eq) MarshalJSON() ([]byte, error) {
	type body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}

	return marshal(struct {
		Eq body `json:"$eq"`
	}{body{n.Field, n.Value}})
}

// In matches when Field is one of Values. Values keep source order.
type In struct {
	Field  string
	Values []string
}

func (n *In) Type() NodeType { return IN_NODE }

func (n *In) MarshalJSON() ([]byte, error) {
	type body struct {
		Field  string   `json:"field"`
		Values []string `json:"values"`
	}

	values := n.Values
	if values == nil {
		values = []string{}
	}

	return marshal(struct {
		In body `json:"$in"`
	}{body{n.Field, values}})
}

// Encode serializes the tree to its canonical compact JSON text. Key order is
// fixed, so the same tree always yields the same bytes.
func Encode(node AstNode) (string, error) {
	data, err := marshal(node)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// marshal is json.Marshal without HTML escaping, so values such as "<b>"
// come out as written.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ToMap converts the tree to the generic key/value record model
// (map[string]any, []any and string values only).
func ToMap(node AstNode) map[string]any {
	switch n := node.(type) {
	case *Or:
		return map[string]any{"$or": []any{ToMap(n.Left), ToMap(n.Right)}}
	case *And:
		return map[string]any{"$and": []any{ToMap(n.Left), ToMap(n.Right)}}
	case *Not:
		return map[string]any{"$not": ToMap(n.Node)}
	case *Eq:
		return map[string]any{"$eq": map[string]any{"field": n.Field, "value": n.Value}}
	case *In:
		values := make([]any, len(n.Values))
		for i, v := range n.Values {
			values[i] = v
		}
		return map[string]any{"$in": map[string]any{"field": n.Field, "values": values}}
	default:
		return nil
	}
}

// Equal reports whether two trees have the same shape and contents.
func Equal(a, b AstNode) bool {
	switch x := a.(type) {
	case *Or:
		y, ok := b.(*Or)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *And:
		y, ok := b.(*And)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Not:
		y, ok := b.(*Not)
		return ok && Equal(x.Node, y.Node)
	case *Eq:
		y, ok := b.(*Eq)
		return ok && *x == *y
	case *In:
		y, ok := b.(*In)
		if !ok || x.Field != y.Field || len(x.Values) != len(y.Values) {
			return false
		}
		for i := range x.Values {
			if x.Values[i] != y.Values[i] {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}

// Walk calls fn for node and every descendant in pre-order.
func Walk(node AstNode, fn func(AstNode)) {
	if node == nil {
		return
	}

	fn(node)

	switch n := node.(type) {
	case *Or:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *And:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Not:
		Walk(n.Node, fn)
	}
}

// Fields returns the distinct field names referenced by the tree, in first-seen order.
func Fields(node AstNode) []string {
	var fields []string

	seen := map[string]bool{}
	add := func(field string) {
		if !seen[field] {
			seen[field] = true
			fields = append(fields, field)
		}
	}

	Walk(node, func(n AstNode) {
		switch leaf := n.(type) {
		case *Eq:
			add(leaf.Field)
		case *In:
			add(leaf.Field)
		}
	})

	return fields
}

// quote renders a string literal that the tokenizer reads back unchanged.
func quote(s string) string {
	var sb strings.Builder

	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\u{%X}`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}
