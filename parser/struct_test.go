package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestToStruct(t *testing.T) {
	node, err := ParseString(`a = "1" AND b IN ["x", "y"]`)
	assert.NoError(t, err)

	s, err := ToStruct(node)
	assert.NoError(t, err)

	and := s.GetFields()["$and"].GetListValue().GetValues()
	assert.Equal(t, 2, len(and))

	eq := and[0].GetStructValue().GetFields()["$eq"].GetStructValue().GetFields()
	assert.Equal(t, "a", eq["field"].GetStringValue())
	assert.Equal(t, "1", eq["value"].GetStringValue())

	in := and[1].GetStructValue().GetFields()["$in"].GetStructValue().GetFields()
	assert.Equal(t, "b", in["field"].GetStringValue())

	values := in["values"].GetListValue().GetValues()
	assert.Equal(t, 2, len(values))
	assert.Equal(t, "x", values[0].GetStringValue())
	assert.Equal(t, "y", values[1].GetStringValue())

	assert.Equal(t, ToMap(node), s.AsMap())
}
