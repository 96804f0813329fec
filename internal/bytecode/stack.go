package bytecode

import (
	"github.com/715d/lambdalint/internal/classfile"
)

// Tag is a provenance label attached to a simulated stack value, recording
// which higher-level operation produced it. Tags live only as long as the
// value stays on the simulated stack.
type Tag uint8

// Provenance tags used by the stream-chain rules.
const (
	TagNone Tag = iota
	TagCollectItem
	TagFilterItem
	TagFindFirstItem
)

// Value is one simulated operand-stack slot.
type Value struct {
	// Signature is the type descriptor of the value when known, "" otherwise.
	Signature string

	// Register is the local-variable slot the value was loaded from, or -1
	// for temporaries produced by other instructions.
	Register int

	// Const is the value's compile-time constant when known (int32, int64,
	// float32, float64 or string), nil otherwise.
	Const any

	// Tag is the provenance label, TagNone unless a detector set one.
	Tag Tag
}

// OperandStack simulates a method's operand stack instruction by instruction.
// The model is approximate: category-2 (long/double) values occupy a single
// simulated slot, and instructions outside the model conservatively clear
// the stack instead of failing. Detectors read slots by depth and may tag
// the value pushed by the instruction just executed.
type OperandStack struct {
	values []Value
}

// Reset clears all simulated state for a new method entry.
func (s *OperandStack) Reset() {
	s.values = s.values[:0]
}

// Depth returns the number of simulated slots.
func (s *OperandStack) Depth() int {
	return len(s.values)
}

// Peek returns the value at the given depth, 0 being the top of stack.
func (s *OperandStack) Peek(depth int) (Value, bool) {
	if depth < 0 || depth >= len(s.values) {
		return Value{Register: -1}, false
	}
	return s.values[len(s.values)-1-depth], true
}

// SetTopTag attaches a provenance tag to the most recently pushed value.
// It overwrites whatever tag was there.
func (s *OperandStack) SetTopTag(tag Tag) {
	if len(s.values) > 0 {
		s.values[len(s.values)-1].Tag = tag
	}
}

func (s *OperandStack) push(v Value) {
	s.values = append(s.values, v)
}

func (s *OperandStack) pushTemp(signature string) {
	s.push(Value{Signature: signature, Register: -1})
}

func (s *OperandStack) pop(n int) {
	if n > len(s.values) {
		// Underflow means the simulation lost track; start over rather
		// than guess.
		s.values = s.values[:0]
		return
	}
	s.values = s.values[:len(s.values)-n]
}

// Execute simulates the effect of one instruction on the stack. It must be
// called after the detectors have inspected the pre-instruction stack, in
// PC order for every instruction of the method.
func (s *OperandStack) Execute(cf *classfile.ClassFile, in Instruction) {
	op := in.Op
	switch {
	case op == OpNop:

	case op == OpAConstNull:
		s.pushTemp("Ljava/lang/Object;")

	case op >= OpIConstM1 && op <= OpIConst5:
		s.push(Value{Signature: "I", Register: -1, Const: int32(op) - int32(OpIConst0)})

	case op >= OpLConst0 && op <= OpDConst1:
		// lconst_0/1, fconst_0/1/2, dconst_0/1
		s.pushTemp(constKindSig(op))

	case op == OpBIPush:
		s.push(Value{Signature: "I", Register: -1, Const: int32(int8(in.Operands[0]))})

	case op == OpSIPush:
		s.push(Value{Signature: "I", Register: -1, Const: int32(int16(uint16(in.Operands[0])<<8 | uint16(in.Operands[1])))})

	case op == OpLdc || op == OpLdcW || op == OpLdc2W:
		s.push(ldcValue(cf, in.CPIndex()))

	case op >= OpILoad && op <= OpALoad:
		s.push(Value{Signature: loadSig(op), Register: in.LocalIndex()})

	case op >= OpILoad0 && op < OpIALoad:
		kind := Opcode(int(op-OpILoad0)/4) + OpILoad
		s.push(Value{Signature: loadSig(kind), Register: in.LocalIndex()})

	case op >= OpIALoad && op <= OpSALoad:
		s.pop(2)
		s.pushTemp("")

	case op >= OpIStore && op <= OpAStore:
		s.pop(1)

	case op >= OpIStore0 && op <= OpAStore3:
		s.pop(1)

	case op >= OpIAStore && op <= OpSAStore:
		s.pop(3)

	case op == OpPop:
		s.pop(1)

	case op == OpPop2:
		s.pop(2)

	case op == OpDup:
		if top, ok := s.Peek(0); ok {
			s.push(top)
		}

	case op == OpDupX1:
		if n := len(s.values); n >= 2 {
			top, under := s.values[n-1], s.values[n-2]
			s.values = append(s.values[:n-2], top, under, top)
		}

	case op == OpDup2:
		if len(s.values) >= 2 {
			s.push(s.values[len(s.values)-2])
			s.push(s.values[len(s.values)-2])
		}

	case op == OpDupX2 || op == OpDup2X1 || op == OpDup2X2:
		// Rare stack shuffles outside the model.
		s.Reset()

	case op == OpSwap:
		if len(s.values) >= 2 {
			n := len(s.values)
			s.values[n-1], s.values[n-2] = s.values[n-2], s.values[n-1]
		}

	case op >= OpIAdd && op <= OpLXor:
		// Binary arithmetic, negation and shifts.
		if isUnaryArith(op) {
			s.pop(1)
		} else {
			s.pop(2)
		}
		s.pushTemp("")

	case op == OpIInc:

	case op >= OpI2L && op <= OpI2S:
		s.pop(1)
		s.pushTemp("")

	case op >= OpLCmp && op <= OpDCmpG:
		s.pop(2)
		s.pushTemp("I")

	case op >= OpIfEq && op <= OpIfLe:
		s.pop(1)

	case op >= OpIfICmpEq && op <= OpIfACmpNe:
		s.pop(2)

	case op == OpGoto || op == OpGotoW || op == OpRet:

	case op == OpJsr || op == OpJsrW:
		s.pushTemp("")

	case op == OpTableSwitch || op == OpLookupSwitch:
		s.pop(1)

	case op >= OpIReturn && op <= OpAReturn:
		s.pop(1)

	case op == OpReturn:

	case op == OpGetStatic:
		s.pushTemp(fieldSig(cf, in.CPIndex()))

	case op == OpPutStatic:
		s.pop(1)

	case op == OpGetField:
		s.pop(1)
		s.pushTemp(fieldSig(cf, in.CPIndex()))

	case op == OpPutField:
		s.pop(2)

	case op == OpInvokeVirtual || op == OpInvokeSpecial || op == OpInvokeInterface:
		s.invoke(cf, in, true)

	case op == OpInvokeStatic:
		s.invoke(cf, in, false)

	case op == OpInvokeDynamic:
		s.invokeDynamic(cf, in)

	case op == OpNew:
		sig := ""
		if name, err := cf.ClassNameAt(in.CPIndex()); err == nil {
			sig = "L" + name + ";"
		}
		s.pushTemp(sig)

	case op == OpNewArray || op == OpANewArray:
		s.pop(1)
		s.pushTemp("")

	case op == OpArrayLength:
		s.pop(1)
		s.pushTemp("I")

	case op == OpAThrow:
		s.Reset()

	case op == OpCheckCast:
		if len(s.values) > 0 {
			if name, err := cf.ClassNameAt(in.CPIndex()); err == nil {
				s.values[len(s.values)-1].Signature = "L" + name + ";"
			}
		}

	case op == OpInstanceOf:
		s.pop(1)
		s.pushTemp("I")

	case op == OpMonitorEnter || op == OpMonitorExit:
		s.pop(1)

	case op == OpWide:
		s.executeWide(in)

	case op == OpMultiANewArray:
		s.pop(int(in.Operands[2]))
		s.pushTemp("")

	case op == OpIfNull || op == OpIfNonNull:
		s.pop(1)

	default:
		// Anything unmodeled invalidates what we know.
		s.Reset()
	}
}

func (s *OperandStack) executeWide(in Instruction) {
	if len(in.Operands) < 3 {
		s.Reset()
		return
	}
	inner := Opcode(in.Operands[0])
	idx := int(in.Operands[1])<<8 | int(in.Operands[2])
	switch {
	case inner >= OpILoad && inner <= OpALoad:
		s.push(Value{Signature: loadSig(inner), Register: idx})
	case inner >= OpIStore && inner <= OpAStore:
		s.pop(1)
	case inner == OpIInc:
	default:
		s.Reset()
	}
}

func (s *OperandStack) invoke(cf *classfile.ClassFile, in Instruction, hasReceiver bool) {
	_, _, descriptor, err := cf.MethodrefAt(in.CPIndex())
	if err != nil {
		s.Reset()
		return
	}
	shape := classfile.ParseShape(descriptor)
	n := shape.ParamCount
	if hasReceiver {
		n++
	}
	s.pop(n)
	if !shape.IsVoid() {
		s.pushTemp(shape.Return)
	}
}

func (s *OperandStack) invokeDynamic(cf *classfile.ClassFile, in Instruction) {
	cid, err := cf.InvokeDynamicAt(in.CPIndex())
	if err != nil {
		s.Reset()
		return
	}
	_, descriptor, err := cf.NameAndTypeAt(int(cid.NameAndTypeIndex))
	if err != nil {
		s.Reset()
		return
	}
	shape := classfile.ParseShape(descriptor)
	s.pop(shape.ParamCount)
	if !shape.IsVoid() {
		s.pushTemp(shape.Return)
	}
}

func ldcValue(cf *classfile.ClassFile, idx int) Value {
	if idx <= 0 || idx >= len(cf.ConstantPool) {
		return Value{Register: -1}
	}
	switch c := cf.ConstantPool[idx].(type) {
	case classfile.ConstantInteger:
		return Value{Signature: "I", Register: -1, Const: c.Value}
	case classfile.ConstantFloat:
		return Value{Signature: "F", Register: -1, Const: c.Value}
	case classfile.ConstantLong:
		return Value{Signature: "J", Register: -1, Const: c.Value}
	case classfile.ConstantDouble:
		return Value{Signature: "D", Register: -1, Const: c.Value}
	case classfile.ConstantString:
		return Value{Signature: "Ljava/lang/String;", Register: -1}
	case classfile.ConstantClass:
		return Value{Signature: "Ljava/lang/Class;", Register: -1}
	}
	return Value{Register: -1}
}

func fieldSig(cf *classfile.ClassFile, idx int) string {
	_, _, descriptor, err := cf.FieldrefAt(idx)
	if err != nil {
		return ""
	}
	return descriptor
}

func loadSig(kind Opcode) string {
	switch kind {
	case OpILoad:
		return "I"
	case OpILoad + 1:
		return "J"
	case OpILoad + 2:
		return "F"
	case OpILoad + 3:
		return "D"
	}
	return ""
}

func constKindSig(op Opcode) string {
	switch op {
	case OpLConst0, OpLConst0 + 1:
		return "J"
	case OpLConst0 + 2, OpLConst0 + 3, OpLConst0 + 4:
		return "F"
	default:
		return "D"
	}
}

func isUnaryArith(op Opcode) bool {
	// ineg, lneg, fneg, dneg
	return op >= 116 && op <= 119
}
