package cpu

import (
	"fmt"
	"maps"
	"slices"
)

// Opcode is the first byte of an instruction.
//
// Bits 7-6 hold the operand count, bit 5 marks ALU operations, bit 4 marks
// instructions that set the PC directly.
type Opcode byte

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_HLT  = Opcode(0b0000_0001) // HLT
	OP_RET  = Opcode(0b0001_0001) // RET
	OP_PUSH = Opcode(0b0100_0101) // PUSH
	OP_POP  = Opcode(0b0100_0110) // POP
	OP_PRN  = Opcode(0b0100_0111) // PRN
	OP_CALL = Opcode(0b0101_0000) // CALL
	OP_LDI  = Opcode(0b1000_0010) // LDI
	OP_ADD  = Opcode(0b1010_0000) // ADD
	OP_MUL  = Opcode(0b1010_0010) // MUL
)

// Opcodes lists every opcode the machine dispatches, in ascending order.
var Opcodes = slices.Sorted(maps.Keys(handlers))

// AluOp is an ALU operation type.
type AluOp int

//go:generate go tool stringer -linecomment -type=AluOp
const (
	ALU_OP_ADD = AluOp(0) // ADD
	ALU_OP_MUL = AluOp(2) // MUL
)

// Operands returns the number of operand bytes following the opcode.
func (op Opcode) Operands() int {
	return int(op >> 6)
}

// Size returns the full length of the instruction in bytes.
func (op Opcode) Size() int {
	return 1 + op.Operands()
}

// IsAlu returns true if the opcode is handled by the ALU.
func (op Opcode) IsAlu() bool {
	return (op>>5)&1 == 1
}

// SetsPc returns true if the instruction transfers control itself.
func (op Opcode) SetsPc() bool {
	return (op>>4)&1 == 1
}

// AluOp returns the ALU operation encoded in the low nibble.
func (op Opcode) AluOp() AluOp {
	return AluOp(op & 0xf)
}

// Known returns true if the opcode has a dispatch table entry.
func (op Opcode) Known() bool {
	_, ok := handlers[op]
	return ok
}

// Disassemble returns the assembly text of the instruction.
func (op Opcode) Disassemble(a, b byte) (text string) {
	if !op.Known() {
		return fmt.Sprintf(".byte 0x%02x", byte(op))
	}

	switch op {
	case OP_LDI:
		text = fmt.Sprintf("%v R%d,0x%02x", op, a, b)
	case OP_ADD, OP_MUL:
		text = fmt.Sprintf("%v R%d,R%d", op, a, b)
	case OP_PRN, OP_PUSH, OP_POP, OP_CALL:
		text = fmt.Sprintf("%v R%d", op, a)
	default:
		text = op.String()
	}

	return
}
