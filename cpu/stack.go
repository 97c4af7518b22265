package cpu

const (
	STACK_TOP = 0xF4 // Initial stack pointer. The stack grows down from here.
	SP        = 7    // Register reserved by convention as the stack pointer.
)

// checkStack verifies SP lies within the stack region [0, STACK_TOP].
func (cpu *Cpu) checkStack() (err error) {
	if cpu.Register[SP] > STACK_TOP {
		err = ErrStackBounds
	}
	return
}

// Push decrements SP and stores value at the new top of stack.
func (cpu *Cpu) Push(value byte) (err error) {
	err = cpu.checkStack()
	if err != nil {
		return
	}

	sp := cpu.Register[SP]
	if sp == 0 {
		err = ErrStackFull
		return
	}

	sp--
	err = cpu.RamWrite(int(sp), value)
	if err != nil {
		return
	}
	cpu.Register[SP] = sp

	return
}

// Pop reads the top of stack and increments SP.
func (cpu *Cpu) Pop() (value byte, err error) {
	value, err = cpu.Peek()
	if err != nil {
		return
	}
	cpu.Register[SP]++
	return
}

// Peek reads the top of stack without moving SP.
func (cpu *Cpu) Peek() (value byte, err error) {
	err = cpu.checkStack()
	if err != nil {
		return
	}

	if cpu.Empty() {
		err = ErrStackEmpty
		return
	}

	return cpu.RamRead(int(cpu.Register[SP]))
}

// Empty returns true if nothing is on the stack.
func (cpu *Cpu) Empty() bool {
	return cpu.Register[SP] >= STACK_TOP
}

// Depth returns the number of bytes on the stack.
func (cpu *Cpu) Depth() int {
	if cpu.Empty() {
		return 0
	}
	return STACK_TOP - int(cpu.Register[SP])
}
