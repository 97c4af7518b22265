package cpu

import (
	"iter"
)

// Statement is one line of program source with the bytes it produced.
type Statement struct {
	LineNo    int      // Source line number, starting at 1.
	Addr      int      // Memory address of the first byte.
	Words     []string // Source words, after comment removal.
	Bytes     []byte   // Generated bytes.
	LinkLabel string   // Label to link into the last byte, if any.
}

// Program is a loadable sequence of statements.
type Program struct {
	Statements []Statement
}

type Debug struct {
	*Statement
	Index int
}

// Debug finds the statement that generated the byte at addr.
func (prog *Program) Debug(addr int) (dbg Debug) {
	for n, st := range prog.Statements {
		if addr >= st.Addr && addr < st.Addr+len(st.Bytes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     addr - st.Addr,
			}
			break
		}
	}

	return
}

// Size returns the number of bytes in the program image.
func (prog *Program) Size() (size int) {
	for _, st := range prog.Statements {
		if end := st.Addr + len(st.Bytes); end > size {
			size = end
		}
	}

	return
}

// Binary returns the memory image of the program, starting at address 0.
func (prog *Program) Binary() (bins []byte) {
	bins = make([]byte, prog.Size())
	for addr, value := range prog.Bytes() {
		bins[addr] = value
	}

	return
}

// Bytes iterates over every generated byte and its address.
func (prog *Program) Bytes() iter.Seq2[int, byte] {
	return func(yield func(addr int, value byte) bool) {
		for _, st := range prog.Statements {
			for n, value := range st.Bytes {
				if !yield(st.Addr+n, value) {
					return
				}
			}
		}
	}
}
