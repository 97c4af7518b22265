// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/Krunal1997patel/Computer-Architecture/cpu"
	"github.com/Krunal1997patel/Computer-Architecture/emulator"
)

// defineList collects repeated -D NAME=VALUE flags.
type defineList []string

func (dl *defineList) String() string {
	return strings.Join(*dl, ",")
}

func (dl *defineList) Set(value string) error {
	*dl = append(*dl, value)
	return nil
}

func main() {
	var assemble bool
	var output string
	var verbose bool
	var defines defineList

	flag.BoolVar(&assemble, "a", false, "Program is assembler source, not a binary image")
	flag.StringVar(&output, "o", "-", "PRN output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(&defines, "D", "Assembler equate NAME=VALUE (repeatable)")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: %v [-a] [-v] [-o output] [-D NAME=VALUE] program", os.Args[0])
	}

	source := flag.Arg(0)

	inf, err := os.Open(source)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}
	defer inf.Close()

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	var prog *cpu.Program
	if assemble {
		asm := &cpu.Assembler{Verbose: verbose}
		for name, value := range emu.Defines() {
			asm.Predefine(name, value)
		}
		for _, define := range defines {
			name, value, ok := strings.Cut(define, "=")
			if !ok {
				log.Fatalf("-D %v: expected NAME=VALUE", define)
			}
			asm.Predefine(name, value)
		}
		prog, err = asm.Parse(inf)
	} else {
		prog, err = cpu.ParseImage(inf)
	}
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	emu.Program = prog

	if output != "-" {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Cpu.Output = ouf
	}

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	err = emu.Run()
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}
}
