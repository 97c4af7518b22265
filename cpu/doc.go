// Package cpu implements the LS-8 byte-code machine and its program loaders.
//
// The machine has 255 bytes of memory, eight 8-bit general-purpose registers
// (r0-r7, with r7 used by convention as the stack pointer), a program counter,
// and a flags register. Each instruction is an opcode byte followed by zero,
// one or two operand bytes; the top two bits of the opcode give the operand
// count.
//
// Programs are loaded either from the binary-literal image format (ParseImage)
// or from mnemonic assembly source (Assembler).
package cpu
