package bytecode

import (
	"encoding/binary"
	"fmt"
)

// Instruction is one decoded bytecode instruction.
type Instruction struct {
	// PC is the instruction's offset within the method's code array.
	PC int

	// Op is the instruction opcode. For wide-prefixed instructions this is
	// OpWide; the widened opcode is the first operand byte.
	Op Opcode

	// Operands holds the raw operand bytes following the opcode.
	Operands []byte
}

// CPIndex returns the constant-pool index operand of instructions that carry
// one (ldc_w, field access, invokes, new, checkcast, ...).
func (in Instruction) CPIndex() int {
	if in.Op == OpLdc {
		return int(in.Operands[0])
	}
	return int(binary.BigEndian.Uint16(in.Operands))
}

// LocalIndex returns the local-variable slot of load/store instructions,
// including the compact _0.._3 forms, or -1 for other instructions.
func (in Instruction) LocalIndex() int {
	switch {
	case in.Op >= OpILoad && in.Op <= OpALoad:
		return int(in.Operands[0])
	case in.Op >= OpILoad0 && in.Op < OpIALoad:
		return int(in.Op-OpILoad0) % 4
	case in.Op >= OpIStore && in.Op <= OpAStore:
		return int(in.Operands[0])
	case in.Op >= OpIStore0 && in.Op <= OpAStore3:
		return int(in.Op-OpIStore0) % 4
	}
	return -1
}

// Decode splits a method's code array into instructions in PC order. A
// truncated or malformed tail produces an error; callers treat that as
// "stop analyzing this method".
func Decode(code []byte) ([]Instruction, error) {
	var instrs []Instruction
	pc := 0
	for pc < len(code) {
		op := Opcode(code[pc])
		length, err := instrLength(code, pc, op)
		if err != nil {
			return nil, err
		}
		if pc+length > len(code) {
			return nil, fmt.Errorf("truncated instruction %d at pc %d", op, pc)
		}
		instrs = append(instrs, Instruction{
			PC:       pc,
			Op:       op,
			Operands: code[pc+1 : pc+length],
		})
		pc += length
	}
	return instrs, nil
}

func instrLength(code []byte, pc int, op Opcode) (int, error) {
	if int(op) >= len(instrLengths) {
		return 0, fmt.Errorf("unknown opcode %d at pc %d", op, pc)
	}
	if n := instrLengths[op]; n > 0 {
		return n, nil
	}

	switch op {
	case OpWide:
		if pc+1 >= len(code) {
			return 0, fmt.Errorf("truncated wide at pc %d", pc)
		}
		if Opcode(code[pc+1]) == OpIInc {
			return 6, nil
		}
		return 4, nil
	case OpTableSwitch:
		// Zero padding to the next 4-byte boundary, then default, low, high,
		// then (high-low+1) 32-bit offsets.
		base := pc + 1 + padTo4(pc+1)
		if base+12 > len(code) {
			return 0, fmt.Errorf("truncated tableswitch at pc %d", pc)
		}
		low := int(int32(binary.BigEndian.Uint32(code[base+4:])))
		high := int(int32(binary.BigEndian.Uint32(code[base+8:])))
		if high < low {
			return 0, fmt.Errorf("malformed tableswitch at pc %d", pc)
		}
		return base + 12 + (high-low+1)*4 - pc, nil
	case OpLookupSwitch:
		base := pc + 1 + padTo4(pc+1)
		if base+8 > len(code) {
			return 0, fmt.Errorf("truncated lookupswitch at pc %d", pc)
		}
		npairs := int(int32(binary.BigEndian.Uint32(code[base+4:])))
		if npairs < 0 {
			return 0, fmt.Errorf("malformed lookupswitch at pc %d", pc)
		}
		return base + 8 + npairs*8 - pc, nil
	}

	return 0, fmt.Errorf("unknown opcode %d at pc %d", op, pc)
}

func padTo4(off int) int {
	return (4 - off%4) % 4
}
