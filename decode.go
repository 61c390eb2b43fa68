package snapfilter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shibukawa/snapfilter/parser"
)

// Decode reads a serialized filter tree back into nodes. $or and $and accept
// one or more operands and fold them left, so trees written by other
// producers with n-ary groups are accepted as well.
func Decode(serialized string) (parser.AstNode, error) {
	decoder := json.NewDecoder(strings.NewReader(serialized))
	decoder.UseNumber()

	var ast map[string]any
	if err := decoder.Decode(&ast); err != nil {
		return nil, &UnmarshalError{Reason: err}
	}

	if _, err := decoder.Token(); err != io.EOF {
		return nil, &UnmarshalError{Reason: fmt.Errorf("%w: trailing data after tree", ErrInvalidTree)}
	}

	node, err := decodeNode(ast, "$")
	if err != nil {
		return nil, &UnmarshalError{Reason: err}
	}

	return node, nil
}

// decodeNode converts one object; path locates it in error messages.
func decodeNode(ast map[string]any, path string) (parser.AstNode, error) {
	if len(ast) != 1 {
		return nil, fmt.Errorf("%w: %s: expected exactly one operator key, got %d", ErrInvalidTree, path, len(ast))
	}

	for key, val := range ast {
		path := path + "." + key

		switch key {
		case "$and", "$or":
			operands, ok := val.([]any)
			if !ok || len(operands) == 0 {
				return nil, fmt.Errorf("%w: %s: expected a non-empty array", ErrInvalidTree, path)
			}

			var result parser.AstNode

			for i, operand := range operands {
				obj, ok := operand.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%w: %s[%d]: expected an object", ErrInvalidTree, path, i)
				}

				node, err := decodeNode(obj, fmt.Sprintf("%s[%d]", path, i))
				if err != nil {
					return nil, err
				}

				switch {
				case result == nil:
					result = node
				case key == "$and":
					result = &parser.And{Left: result, Right: node}
				default:
					result = &parser.Or{Left: result, Right: node}
				}
			}

			return result, nil

		case "$not":
			obj, ok := val.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s: expected an object", ErrInvalidTree, path)
			}

			node, err := decodeNode(obj, path)
			if err != nil {
				return nil, err
			}

			return &parser.Not{Node: node}, nil

		case "$eq":
			obj, err := leafObject(val, path)
			if err != nil {
				return nil, err
			}

			field, err := stringMember(obj, "field", path)
			if err != nil {
				return nil, err
			}

			value, err := stringMember(obj, "value", path)
			if err != nil {
				return nil, err
			}

			return &parser.Eq{Field: field, Value: value}, nil

		case "$in":
			obj, err := leafObject(val, path)
			if err != nil {
				return nil, err
			}

			field, err := stringMember(obj, "field", path)
			if err != nil {
				return nil, err
			}

			rawValues, ok := obj["values"].([]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s.values: expected an array", ErrInvalidTree, path)
			}

			values := make([]string, len(rawValues))
			for i, raw := range rawValues {
				s, ok := raw.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s.values[%d]: expected a string", ErrInvalidTree, path, i)
				}
				values[i] = s
			}

			return &parser.In{Field: field, Values: values}, nil

		default:
			return nil, fmt.Errorf("%w: %s: unknown operator", ErrInvalidTree, path)
		}
	}

	panic("unreachable")
}

// leafObject checks that val is a leaf body holding exactly its two members.
func leafObject(val any, path string) (map[string]any, error) {
	obj, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected an object", ErrInvalidTree, path)
	}

	if len(obj) != 2 {
		return nil, fmt.Errorf("%w: %s: expected exactly two members, got %d", ErrInvalidTree, path, len(obj))
	}

	return obj, nil
}

func stringMember(obj map[string]any, name, path string) (string, error) {
	s, ok := obj[name].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s: expected a string", ErrInvalidTree, path, name)
	}
	return s, nil
}
