// Package snapfilter compiles filter expressions such as
//
//	level = "error" AND service NOT IN ["api", "web"]
//
// into the canonical JSON filter tree built from the $or, $and, $not, $eq
// and $in node shapes.
package snapfilter

import (
	"fmt"

	"github.com/shibukawa/snapfilter/parser"
	"github.com/shibukawa/snapfilter/tokenizer"
)

// Compile translates source into its serialized filter tree. Any lexical or
// structural problem is reported as a *CompileError describing the first
// failure only. Compile keeps no state and is safe for concurrent use.
func Compile(source string) (string, error) {
	node, err := CompileTree(source)
	if err != nil {
		return "", err
	}

	text, err := parser.Encode(node)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodeTree, err)
	}

	return text, nil
}

// CompileTree is Compile without the final serialization step.
func CompileTree(source string) (parser.AstNode, error) {
	stream, err := tokenizer.Tokenize(source)
	if err != nil {
		return nil, newCompileError(source, err)
	}

	node, err := parser.Parse(stream)
	if err != nil {
		return nil, newCompileError(source, err)
	}

	return node, nil
}
