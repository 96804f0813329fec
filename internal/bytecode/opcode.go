// Package bytecode decodes JVM method bodies into PC-ordered instructions
// and simulates the operand stack alongside the scan, attaching provenance
// tags to simulated values so detectors can recognize multi-instruction call
// chains.
package bytecode

// Opcode is a JVM instruction opcode.
type Opcode uint8

// The opcodes the detectors inspect directly. The decoder handles the full
// instruction set; only these need names.
const (
	OpNop             Opcode = 0
	OpAConstNull      Opcode = 1
	OpIConstM1        Opcode = 2
	OpIConst0         Opcode = 3
	OpIConst1         Opcode = 4
	OpIConst5         Opcode = 8
	OpLConst0         Opcode = 9
	OpDConst1         Opcode = 15
	OpBIPush          Opcode = 16
	OpSIPush          Opcode = 17
	OpLdc             Opcode = 18
	OpLdcW            Opcode = 19
	OpLdc2W           Opcode = 20
	OpILoad           Opcode = 21
	OpALoad           Opcode = 25
	OpILoad0          Opcode = 26
	OpALoad0          Opcode = 42
	OpALoad1          Opcode = 43
	OpALoad2          Opcode = 44
	OpALoad3          Opcode = 45
	OpIALoad          Opcode = 46
	OpSALoad          Opcode = 53
	OpIStore          Opcode = 54
	OpAStore          Opcode = 58
	OpIStore0         Opcode = 59
	OpAStore3         Opcode = 78
	OpIAStore         Opcode = 79
	OpSAStore         Opcode = 86
	OpPop             Opcode = 87
	OpPop2            Opcode = 88
	OpDup             Opcode = 89
	OpDupX1           Opcode = 90
	OpDupX2           Opcode = 91
	OpDup2            Opcode = 92
	OpDup2X1          Opcode = 93
	OpDup2X2          Opcode = 94
	OpSwap            Opcode = 95
	OpIAdd            Opcode = 96
	OpLXor            Opcode = 131
	OpIInc            Opcode = 132
	OpI2L             Opcode = 133
	OpI2S             Opcode = 147
	OpLCmp            Opcode = 148
	OpDCmpG           Opcode = 152
	OpIfEq            Opcode = 153
	OpIfLe            Opcode = 158
	OpIfICmpEq        Opcode = 159
	OpIfACmpNe        Opcode = 166
	OpGoto            Opcode = 167
	OpJsr             Opcode = 168
	OpRet             Opcode = 169
	OpTableSwitch     Opcode = 170
	OpLookupSwitch    Opcode = 171
	OpIReturn         Opcode = 172
	OpLReturn         Opcode = 173
	OpFReturn         Opcode = 174
	OpDReturn         Opcode = 175
	OpAReturn         Opcode = 176
	OpReturn          Opcode = 177
	OpGetStatic       Opcode = 178
	OpPutStatic       Opcode = 179
	OpGetField        Opcode = 180
	OpPutField        Opcode = 181
	OpInvokeVirtual   Opcode = 182
	OpInvokeSpecial   Opcode = 183
	OpInvokeStatic    Opcode = 184
	OpInvokeInterface Opcode = 185
	OpInvokeDynamic   Opcode = 186
	OpNew             Opcode = 187
	OpNewArray        Opcode = 188
	OpANewArray       Opcode = 189
	OpArrayLength     Opcode = 190
	OpAThrow          Opcode = 191
	OpCheckCast       Opcode = 192
	OpInstanceOf      Opcode = 193
	OpMonitorEnter    Opcode = 194
	OpMonitorExit     Opcode = 195
	OpWide            Opcode = 196
	OpMultiANewArray  Opcode = 197
	OpIfNull          Opcode = 198
	OpIfNonNull       Opcode = 199
	OpGotoW           Opcode = 200
	OpJsrW            Opcode = 201
)

// IsALoad reports whether the opcode loads a reference from a local slot.
func IsALoad(op Opcode) bool {
	return op == OpALoad || (op >= OpALoad0 && op <= OpALoad3)
}

// IsReturn reports whether the opcode leaves the method.
func IsReturn(op Opcode) bool {
	return op >= OpIReturn && op <= OpReturn
}

// instrLengths maps an opcode to its total encoded length in bytes,
// including the opcode itself. Variable-length instructions (tableswitch,
// lookupswitch, wide) are marked -1 and handled by the decoder.
var instrLengths = [202]int{}

func init() {
	for op := 0; op < 202; op++ {
		instrLengths[op] = 1
	}
	set := func(length int, ops ...Opcode) {
		for _, op := range ops {
			instrLengths[op] = length
		}
	}
	setRange := func(length int, lo, hi Opcode) {
		for op := lo; op <= hi; op++ {
			instrLengths[op] = length
		}
	}

	set(2, OpBIPush, OpLdc, OpNewArray, OpRet)
	setRange(2, OpILoad, OpALoad)   // iload..aload take a local index
	setRange(2, OpIStore, OpAStore) // istore..astore take a local index
	set(3, OpSIPush, OpLdcW, OpLdc2W, OpIInc, OpGoto, OpJsr, OpNew, OpANewArray,
		OpCheckCast, OpInstanceOf, OpIfNull, OpIfNonNull)
	setRange(3, OpIfEq, OpIfACmpNe)
	setRange(3, OpGetStatic, OpInvokeStatic)
	set(4, OpMultiANewArray)
	set(5, OpInvokeInterface, OpInvokeDynamic, OpGotoW, OpJsrW)
	set(-1, OpTableSwitch, OpLookupSwitch, OpWide)
}
