package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testProgram() *Program {
	return &Program{
		Statements: []Statement{
			{LineNo: 1, Addr: 0, Words: []string{"LDI", "R0", "8"}, Bytes: []byte{byte(OP_LDI), 0, 8}},
			{LineNo: 3, Addr: 3, Words: []string{"PRN", "R0"}, Bytes: []byte{byte(OP_PRN), 0}},
			{LineNo: 4, Addr: 5, Words: []string{"HLT"}, Bytes: []byte{byte(OP_HLT)}},
		},
	}
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	dbg := prog.Debug(0)
	assert.NotNil(dbg.Statement)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(2)
	assert.NotNil(dbg.Statement)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(2, dbg.Index)

	dbg = prog.Debug(4)
	assert.NotNil(dbg.Statement)
	assert.Equal(3, dbg.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(5)
	assert.Equal(4, dbg.LineNo)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	dbg := prog.Debug(10)
	assert.Nil(dbg.Statement)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	assert.Equal(6, prog.Size())
	assert.Equal([]byte{0x82, 0, 8, 0x47, 0, 0x01}, prog.Binary())

	empty := &Program{}
	assert.Equal(0, empty.Size())
	assert.Empty(empty.Binary())
}

func TestProgram_Bytes(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	var addrs []int
	for addr := range prog.Bytes() {
		addrs = append(addrs, addr)
		if addr == 3 {
			break
		}
	}

	assert.Equal([]int{0, 1, 2, 3}, addrs)
}
