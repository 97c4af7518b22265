package cpu

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"os"
)

const (
	MEMORY_SIZE    = 255 // Bytes of memory.
	REGISTER_COUNT = 8   // General purpose registers, including SP.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":    fmt.Sprintf("%v", MEMORY_SIZE),
	"REGISTER_COUNT": fmt.Sprintf("%v", REGISTER_COUNT),
	"STACK_TOP":      fmt.Sprintf("0x%02x", STACK_TOP),
	"REG_SP":         fmt.Sprintf("%v", SP),
}

// handler executes one instruction. Every handler receives both operand
// bytes and is responsible for moving the PC.
type handler func(cpu *Cpu, a, b byte) error

// handlers is the instruction set: every supported opcode and its handler.
var handlers = map[Opcode]handler{
	OP_LDI:  (*Cpu).doLdi,
	OP_PRN:  (*Cpu).doPrn,
	OP_HLT:  (*Cpu).doHlt,
	OP_MUL:  (*Cpu).doAluOp,
	OP_ADD:  (*Cpu).doAluOp,
	OP_PUSH: (*Cpu).doPush,
	OP_POP:  (*Cpu).doPop,
	OP_CALL: (*Cpu).doCall,
	OP_RET:  (*Cpu).doRet,
}

// Cpu is the simulation context for the LS-8 machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   [MEMORY_SIZE]byte    // Program and stack memory.
	Register [REGISTER_COUNT]byte // Register bank. Register[SP] is the stack pointer.
	Pc       int                  // Address of the next instruction.
	Fl       byte                 // Flags. Reserved; no instruction reads or writes it.
	Halted   bool                 // Set once HLT executes.

	Output io.Writer // Destination for PRN.

	Ticks int // Executed instruction counter.

	dispatch [256]handler
}

// NewCpu creates a new CPU in its reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Output: os.Stdout,
	}

	for op, exec := range handlers {
		cpu.dispatch[op] = exec
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears memory, registers and flags.
// - Zeros the PC and the tick counter.
// - Points SP at the top of the stack.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory[:])
	clear(cpu.Register[:])
	cpu.Register[SP] = STACK_TOP
	cpu.Pc = 0
	cpu.Fl = 0
	cpu.Halted = false
	cpu.Ticks = 0
}

// Load copies a program image into memory starting at address 0.
// Opcodes are not validated until they are fetched.
func (cpu *Cpu) Load(image []byte) (err error) {
	if len(image) > MEMORY_SIZE {
		err = ErrProgramSize
		return
	}

	copy(cpu.Memory[:], image)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(image))
	}

	return
}

// RamRead returns the byte at addr.
func (cpu *Cpu) RamRead(addr int) (value byte, err error) {
	if addr < 0 || addr >= MEMORY_SIZE {
		err = ErrMemoryBounds
		return
	}

	value = cpu.Memory[addr]
	return
}

// RamWrite stores value at addr.
func (cpu *Cpu) RamWrite(addr int, value byte) (err error) {
	if addr < 0 || addr >= MEMORY_SIZE {
		err = ErrMemoryBounds
		return
	}

	cpu.Memory[addr] = value
	return
}

// operand reads an operand byte for the fetch stage. Bytes past the end of
// memory read as zero; the instruction length is checked before dispatch.
func (cpu *Cpu) operand(addr int) byte {
	if addr < 0 || addr >= MEMORY_SIZE {
		return 0
	}
	return cpu.Memory[addr]
}

// Trace returns a single line summary of the machine state.
func (cpu *Cpu) Trace() (text string) {
	text = fmt.Sprintf("TRACE: %02X | %02X %02X %02X |",
		cpu.Pc,
		cpu.operand(cpu.Pc),
		cpu.operand(cpu.Pc+1),
		cpu.operand(cpu.Pc+2),
	)

	for _, reg := range cpu.Register {
		text += fmt.Sprintf(" %02X", reg)
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc",
		"fl",
		"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
		"stack",
		"next",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02X", cpu.Pc)
		case "fl":
			strval = fmt.Sprintf("%08b", cpu.Fl)
		case "r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7":
			val := cpu.Register[byte(reg[1]-'0')]
			strval = fmt.Sprintf("%02X (%d)", val, val)
		case "stack":
			val, err := cpu.Peek()
			if err == nil {
				strval = fmt.Sprintf("%02X depth %d", val, cpu.Depth())
			} else {
				strval = "--"
			}
		case "next":
			op := Opcode(cpu.operand(cpu.Pc))
			strval = op.Disassemble(cpu.operand(cpu.Pc+1), cpu.operand(cpu.Pc+2))
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Tick executes a single fetch-decode-execute cycle.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	pc := cpu.Pc
	if pc < 0 || pc >= MEMORY_SIZE {
		err = ErrPcBounds
		return
	}

	op := Opcode(cpu.Memory[pc])
	a := cpu.operand(pc + 1)
	b := cpu.operand(pc + 2)

	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode{Pc: pc, Op: op}, err)
		}
	}()

	if cpu.Verbose {
		log.Print(cpu.Trace())
	}

	exec := cpu.dispatch[op]
	if exec == nil {
		err = ErrOpcodeUnknown
		return
	}

	if pc+op.Operands() >= MEMORY_SIZE {
		err = ErrPcBounds
		return
	}

	err = exec(cpu, a, b)
	if err != nil {
		return
	}

	cpu.Ticks += 1

	return
}

// Run ticks the CPU until HLT executes or an instruction fails.
func (cpu *Cpu) Run() (err error) {
	for !cpu.Halted {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Alu performs the ALU operation on registers a and b, storing the result
// in register a. Results wrap at 8 bits.
func (cpu *Cpu) Alu(op AluOp, a, b byte) (err error) {
	err = cpu.checkRegister(a, b)
	if err != nil {
		return
	}

	switch op {
	case ALU_OP_ADD:
		cpu.Register[a] += cpu.Register[b]
	case ALU_OP_MUL:
		cpu.Register[a] *= cpu.Register[b]
	default:
		err = ErrAluOp
	}

	return
}

// checkRegister verifies register indexes.
func (cpu *Cpu) checkRegister(regs ...byte) (err error) {
	for _, reg := range regs {
		if int(reg) >= len(cpu.Register) {
			err = ErrRegisterInvalid
			return
		}
	}

	return
}

func (cpu *Cpu) doLdi(a, b byte) (err error) {
	err = cpu.checkRegister(a)
	if err != nil {
		return
	}

	cpu.Register[a] = b
	cpu.Pc += 3
	return
}

func (cpu *Cpu) doPrn(a, _ byte) (err error) {
	err = cpu.checkRegister(a)
	if err != nil {
		return
	}

	_, err = fmt.Fprintf(cpu.Output, "%d\n", cpu.Register[a])
	if err != nil {
		return
	}

	cpu.Pc += 2
	return
}

func (cpu *Cpu) doHlt(_, _ byte) (err error) {
	cpu.Pc += 1
	cpu.Halted = true

	if cpu.Verbose {
		log.Printf("cpu: halt at 0x%02x", cpu.Pc-1)
	}

	return
}

// doAluOp handles every opcode with the ALU bit set.
func (cpu *Cpu) doAluOp(a, b byte) (err error) {
	op := Opcode(cpu.Memory[cpu.Pc])

	err = cpu.Alu(op.AluOp(), a, b)
	if err != nil {
		return
	}

	cpu.Pc += op.Size()
	return
}

func (cpu *Cpu) doPush(a, _ byte) (err error) {
	err = cpu.checkRegister(a)
	if err != nil {
		return
	}

	err = cpu.checkStack()
	if err != nil {
		return
	}

	sp := cpu.Register[SP]
	if sp == 0 {
		err = ErrStackFull
		return
	}

	// The register is read after SP moves, so PUSH r7 stores the new SP.
	cpu.Register[SP] = sp - 1
	err = cpu.RamWrite(int(sp-1), cpu.Register[a])
	if err != nil {
		cpu.Register[SP] = sp
		return
	}

	cpu.Pc += 2
	return
}

func (cpu *Cpu) doPop(a, _ byte) (err error) {
	err = cpu.checkRegister(a)
	if err != nil {
		return
	}

	value, err := cpu.Peek()
	if err != nil {
		return
	}

	cpu.Register[a] = value
	cpu.Register[SP]++

	cpu.Pc += 2
	return
}

func (cpu *Cpu) doCall(a, _ byte) (err error) {
	err = cpu.checkRegister(a)
	if err != nil {
		return
	}

	err = cpu.Push(byte(cpu.Pc + 2))
	if err != nil {
		return
	}

	cpu.Pc = int(cpu.Register[a])
	return
}

func (cpu *Cpu) doRet(_, _ byte) (err error) {
	addr, err := cpu.Pop()
	if err != nil {
		return
	}

	cpu.Pc = int(addr)
	return
}
