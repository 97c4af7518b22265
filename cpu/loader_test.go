package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseImage(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"# print8.ls8",
		"",
		"10000010 # LDI R0,8",
		"00000000",
		"   00001000   ",
		"01000111 # PRN R0",
		"00000000",
		"00000001 # HLT",
	}

	prog, err := ParseImage(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	assert.Equal([]byte{0x82, 0, 8, 0x47, 0, 0x01}, prog.Binary())

	dbg := prog.Debug(0)
	assert.Equal(3, dbg.LineNo)
	dbg = prog.Debug(5)
	assert.Equal(8, dbg.LineNo)
}

func TestParseImage_Empty(t *testing.T) {
	assert := assert.New(t)

	prog, err := ParseImage(strings.NewReader("# nothing here\n\n"))
	assert.NoError(err)
	assert.Empty(prog.Binary())
}

func TestParseImage_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		source string
		lineno int
	}){
		{"not_binary", "10000010\n00000002\n", 2},
		{"too_wide", "100000000\n", 1},
		{"text", "# hi\nLDI R0,8\n", 2},
	}

	for _, entry := range table {
		_, err := ParseImage(strings.NewReader(entry.source))
		var syntax *ErrSyntax
		assert.True(errors.As(err, &syntax), entry.name)
		if syntax != nil {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
		var number ErrParseNumber
		assert.True(errors.As(err, &number), entry.name)
	}
}

func TestParseImage_TooLarge(t *testing.T) {
	assert := assert.New(t)

	source := strings.Repeat("00000001\n", MEMORY_SIZE+1)

	_, err := ParseImage(strings.NewReader(source))
	assert.ErrorIs(err, ErrProgramSize)

	source = strings.Repeat("00000001\n", MEMORY_SIZE)
	prog, err := ParseImage(strings.NewReader(source))
	assert.NoError(err)
	assert.Equal(MEMORY_SIZE, prog.Size())
}
