package parser

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts the tree to a protobuf Struct with the same shape as the
// JSON encoding, for engines that take google.protobuf.Struct values.
func ToStruct(node AstNode) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(ToMap(node))
	if err != nil {
		return nil, fmt.Errorf("convert filter tree to struct: %w", err)
	}
	return s, nil
}
