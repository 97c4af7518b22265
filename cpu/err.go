package cpu

import (
	"errors"

	"github.com/Krunal1997patel/Computer-Architecture/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrOpcodeUnknown   = errors.New(f("unrecognized instruction"))
	ErrAluOp           = errors.New(f("unsupported alu operation"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrMemoryBounds    = errors.New(f("memory address out of bounds"))
	ErrPcBounds        = errors.New(f("pc out of bounds"))
	ErrStackEmpty      = errors.New(f("stack empty"))
	ErrStackFull       = errors.New(f("stack full"))
	ErrStackBounds     = errors.New(f("stack pointer outside stack"))
	ErrProgramSize     = errors.New(f("program too large"))
	ErrHalted          = errors.New(f("halted"))

	// Loader and assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("operand missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
)

// ErrOpcode identifies the instruction that failed.
type ErrOpcode struct {
	Pc int
	Op Opcode
}

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x %v at 0x%02x", byte(eo.Op), eo.Op.String(), eo.Pc)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
