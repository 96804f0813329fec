package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseShape(t *testing.T) {
	tests := []struct {
		descriptor string
		params     int
		ret        string
	}{
		{"()V", 0, "V"},
		{"(I)V", 1, "V"},
		{"(IJ)V", 2, "V"},
		{"(Ljava/lang/Object;)Ljava/lang/Object;", 1, "Ljava/lang/Object;"},
		{"(Ljava/lang/String;I)Z", 2, "Z"},
		{"([I)I", 1, "I"},
		{"([[Ljava/lang/String;)V", 1, "V"},
		{"(I[JLjava/util/List;)Ljava/util/List;", 3, "Ljava/util/List;"},
		{"()[B", 0, "[B"},
		{"(D)D", 1, "D"},
		// Malformed descriptors parse as zero-parameter void.
		{"", 0, "V"},
		{"I", 0, "V"},
		{"(I", 0, "V"},
	}
	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			shape := ParseShape(tt.descriptor)
			assert.Equal(t, tt.params, shape.ParamCount)
			assert.Equal(t, tt.ret, shape.Return)
		})
	}
}

func TestShapePredicates(t *testing.T) {
	assert.True(t, ParseShape("()V").IsVoid())
	assert.False(t, ParseShape("()I").IsVoid())

	assert.True(t, ParseShape("()Ljava/lang/String;").ReturnsReference())
	assert.False(t, ParseShape("()I").ReturnsReference())
	assert.False(t, ParseShape("()[Ljava/lang/String;").ReturnsReference())
	assert.False(t, ParseShape("()V").ReturnsReference())
}

func TestParseShapeIsCached(t *testing.T) {
	first := ParseShape("(Lcom/example/Cached;)V")
	second := ParseShape("(Lcom/example/Cached;)V")
	assert.Equal(t, first, second)
}
