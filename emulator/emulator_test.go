package emulator

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Krunal1997patel/Computer-Architecture/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)
	assert.Equal(0, emu.Pc())
	assert.Equal(0, emu.Ticks())
}

func loadImage(t *testing.T, name string) (prog *cpu.Program) {
	inf, err := os.Open(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	defer inf.Close()

	prog, err = cpu.ParseImage(inf)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func doRun(emu *Emulator, prog *cpu.Program, t *testing.T) (output string) {
	assert := assert.New(t)

	emu.Program = prog

	err := emu.Reset()
	assert.NoError(err)

	buffer := &bytes.Buffer{}
	emu.Cpu.Output = buffer

	var done bool
	for !done {
		lineno := emu.LineNo()
		assert.NotEqual(0, lineno)
		done, err = emu.Tick()
		if err != nil {
			t.Log(emu.Cpu.String())
			t.Fatalf("%v", err)
		}
	}

	output = buffer.String()
	return
}

func TestEmulatorImages(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		image  string
		output string
		ticks  int
	}){
		{"print8.ls8", "8\n", 3},
		{"mult.ls8", "72\n", 5},
		{"stack.ls8", "2\n4\n1\n", 14},
		{"call.ls8", "20\n30\n36\n60\n", 22},
	}

	for _, entry := range table {
		emu := NewEmulator()
		output := doRun(emu, loadImage(t, entry.image), t)
		assert.Equal(entry.output, output, entry.image)
		assert.Equal(entry.ticks, emu.Ticks(), entry.image)
		assert.True(emu.Cpu.Halted, entry.image)
		assert.Equal(byte(cpu.STACK_TOP), emu.Cpu.Register[cpu.SP], entry.image)
	}
}

func TestEmulatorAssembler(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	asm := &cpu.Assembler{}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}

	inf, err := os.Open(filepath.Join("testdata", "call.asm"))
	if err != nil {
		t.Fatal(err)
	}
	defer inf.Close()

	prog, err := asm.Parse(inf)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	// The assembled source matches the hand written image.
	assert.Equal(loadImage(t, "call.ls8").Binary(), prog.Binary())

	output := doRun(emu, prog, t)
	assert.Equal("20\n30\n36\n60\n", output)
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal("0x82", defines["OP_LDI"])
	assert.Equal("0x01", defines["OP_HLT"])
	assert.Equal("0x50", defines["OP_CALL"])
	assert.Equal("255", defines["MEMORY_SIZE"])

	asm := &cpu.Assembler{}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}
	prog, err := asm.Parse(strings.NewReader(".byte OP_LDI 0 $(MEMORY_SIZE - 1)\n.byte OP_HLT"))
	assert.NoError(err)
	assert.Equal([]byte{0x82, 0, 254, 0x01}, prog.Binary())
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join([]string{
		"LDI R0,7",
		"PRN R0",
		"",
		"POP R1",
		"HLT",
	}, "\n")))
	assert.NoError(err)

	emu.Program = prog
	assert.NoError(emu.Reset())
	buffer := &bytes.Buffer{}
	emu.Cpu.Output = buffer

	err = emu.Run()
	assert.ErrorIs(err, cpu.ErrStackEmpty)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(4, runtime.LineNo)
	}
	assert.Equal("7\n", buffer.String())
	assert.Equal(5, emu.Pc())
}

func TestEmulatorUnknownOpcode(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = &cpu.Program{
		Statements: []cpu.Statement{
			{LineNo: 1, Addr: 0, Bytes: []byte{0xff}},
		},
	}
	assert.NoError(emu.Reset())

	done, err := emu.Tick()
	assert.False(done)
	assert.ErrorIs(err, cpu.ErrOpcodeUnknown)
	assert.Contains(err.Error(), "line 1")
}

func TestEmulatorHalted(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = loadImage(t, "print8.ls8")
	emu.Cpu.Output = &bytes.Buffer{}
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())

	// Ticking a halted machine reports done without executing.
	done, err := emu.Tick()
	assert.True(done)
	assert.NoError(err)
	assert.Equal(3, emu.Ticks())

	// Reset reloads the program.
	assert.NoError(emu.Reset())
	assert.False(emu.Cpu.Halted)
	assert.Equal(byte(0x82), emu.Cpu.Memory[0])
}

func TestEmulatorProgramTooLarge(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = &cpu.Program{
		Statements: []cpu.Statement{
			{LineNo: 1, Addr: 0, Bytes: make([]byte, cpu.MEMORY_SIZE+1)},
		},
	}

	assert.ErrorIs(emu.Reset(), cpu.ErrProgramSize)
}
