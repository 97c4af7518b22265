package cpu

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ParseImage reads a program image: one base-2 byte literal per line.
// Text after '#' is a comment; blank lines are skipped.
func ParseImage(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	prog = &Program{}
	addr := 0

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		line = strings.TrimSpace(strings.SplitN(text, "#", 2)[0])
		if len(line) == 0 {
			continue
		}

		var value uint64
		value, err = strconv.ParseUint(line, 2, 8)
		if err != nil {
			err = ErrParseNumber(line)
			return
		}

		if addr >= MEMORY_SIZE {
			err = ErrProgramSize
			return
		}

		prog.Statements = append(prog.Statements, Statement{
			LineNo: lineno,
			Addr:   addr,
			Words:  []string{line},
			Bytes:  []byte{byte(value)},
		})
		addr++
	}

	err = scanner.Err()

	return
}
