package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSimpleSequence(t *testing.T) {
	code := []byte{
		byte(OpALoad0),
		byte(OpBIPush), 7,
		byte(OpInvokeVirtual), 0x00, 0x12,
		byte(OpAReturn),
	}

	instrs, err := Decode(code)
	require.NoError(t, err)
	require.Len(t, instrs, 4)

	assert.Equal(t, 0, instrs[0].PC)
	assert.Equal(t, OpALoad0, instrs[0].Op)
	assert.Empty(t, instrs[0].Operands)

	assert.Equal(t, 1, instrs[1].PC)
	assert.Equal(t, []byte{7}, instrs[1].Operands)

	assert.Equal(t, 3, instrs[2].PC)
	assert.Equal(t, 0x12, instrs[2].CPIndex())

	assert.Equal(t, 6, instrs[3].PC)
}

func TestDecodeTableSwitch(t *testing.T) {
	// nop at pc 0, tableswitch at pc 1: two padding bytes, then default,
	// low=0, high=1 and two jump offsets.
	code := []byte{
		byte(OpNop),
		byte(OpTableSwitch),
		0, 0, // padding to 4-byte boundary
		0, 0, 0, 20, // default
		0, 0, 0, 0, // low
		0, 0, 0, 1, // high
		0, 0, 0, 10,
		0, 0, 0, 14,
		byte(OpReturn),
	}

	instrs, err := Decode(code)
	require.NoError(t, err)
	require.Len(t, instrs, 3)
	assert.Equal(t, OpTableSwitch, instrs[1].Op)
	assert.Equal(t, len(code)-1, instrs[2].PC)
	assert.Equal(t, OpReturn, instrs[2].Op)
}

func TestDecodeLookupSwitch(t *testing.T) {
	// lookupswitch at pc 0: three padding bytes, default, npairs=1, one
	// match/offset pair.
	code := []byte{
		byte(OpLookupSwitch),
		0, 0, 0, // padding
		0, 0, 0, 16, // default
		0, 0, 0, 1, // npairs
		0, 0, 0, 5, // match
		0, 0, 0, 12, // offset
		byte(OpReturn),
	}

	instrs, err := Decode(code)
	require.NoError(t, err)
	require.Len(t, instrs, 2)
	assert.Equal(t, OpLookupSwitch, instrs[0].Op)
	assert.Equal(t, OpReturn, instrs[1].Op)
}

func TestDecodeWide(t *testing.T) {
	code := []byte{
		byte(OpWide), byte(OpILoad), 0x01, 0x00,
		byte(OpWide), byte(OpIInc), 0x01, 0x00, 0x00, 0x05,
		byte(OpReturn),
	}

	instrs, err := Decode(code)
	require.NoError(t, err)
	require.Len(t, instrs, 3)
	assert.Equal(t, OpWide, instrs[0].Op)
	assert.Equal(t, 4, instrs[1].PC)
	assert.Equal(t, 10, instrs[2].PC)
}

func TestDecodeTruncated(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"invoke missing operands", []byte{byte(OpInvokeVirtual), 0x00}},
		{"bipush missing operand", []byte{byte(OpBIPush)}},
		{"tableswitch header cut", []byte{byte(OpTableSwitch), 0, 0, 0}},
		{"wide cut", []byte{byte(OpWide)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.code)
			assert.Error(t, err)
		})
	}
}

func TestCPIndex(t *testing.T) {
	ldc := Instruction{Op: OpLdc, Operands: []byte{0x07}}
	assert.Equal(t, 7, ldc.CPIndex())

	ldcW := Instruction{Op: OpLdcW, Operands: []byte{0x01, 0x02}}
	assert.Equal(t, 0x0102, ldcW.CPIndex())
}

func TestLocalIndex(t *testing.T) {
	tests := []struct {
		name string
		in   Instruction
		want int
	}{
		{"aload_0", Instruction{Op: OpALoad0}, 0},
		{"aload_3", Instruction{Op: OpALoad3}, 3},
		{"iload_2", Instruction{Op: OpILoad0 + 2}, 2},
		{"iload with operand", Instruction{Op: OpILoad, Operands: []byte{9}}, 9},
		{"astore_3", Instruction{Op: OpAStore3}, 3},
		{"astore with operand", Instruction{Op: OpAStore, Operands: []byte{4}}, 4},
		{"not a load", Instruction{Op: OpIAdd}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.LocalIndex())
		})
	}
}
