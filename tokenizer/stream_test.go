package tokenizer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestStream(t *testing.T) {
	src := `a IN ["x", "y"]`
	stream, err := Tokenize(src)
	assert.NoError(t, err)

	assert.Equal(t, 0, stream.Start())
	assert.Equal(t, 7, stream.Len())
	assert.False(t, stream.IsEOF(6))
	assert.True(t, stream.IsEOF(7))

	token, ok := stream.At(1)
	assert.True(t, ok)
	assert.Equal(t, IN, token.Type)

	_, ok = stream.At(7)
	assert.False(t, ok)

	_, ok = stream.At(-1)
	assert.False(t, ok)

	t.Run("span lookup", func(t *testing.T) {
		assert.Equal(t, Span{0, 1}, stream.SpanAt(0))
		assert.Equal(t, Span{14, 15}, stream.SpanAt(6))
		assert.Equal(t, Span{15, 15}, stream.SpanAt(7))
		assert.Equal(t, Span{15, 15}, stream.SpanAt(100))
	})

	t.Run("slice", func(t *testing.T) {
		window := stream.Slice(3, 6)
		assert.Equal(t, 3, len(window))
		assert.Equal(t, STRING, window[0].Type)
		assert.Equal(t, COMMA, window[1].Type)
		assert.Equal(t, STRING, window[2].Type)

		assert.Equal(t, 0, len(stream.Slice(5, 2)))
		assert.Equal(t, 2, len(stream.Slice(5, 50)))
		assert.Equal(t, 0, len(stream.Slice(50, 60)))
	})
}

func TestEmptyStream(t *testing.T) {
	stream := NewStream(nil, 3)

	assert.True(t, stream.IsEOF(stream.Start()))
	assert.Equal(t, Span{3, 3}, stream.SpanAt(0))
	assert.Equal(t, 0, len(stream.Slice(0, 1)))
}
