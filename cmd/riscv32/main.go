// Package main provides the entry point for riscv32.
// riscv32 is a functional RV32I + Zicsr instruction-set simulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ymgyt/riscv-emulator/bus"
	"github.com/ymgyt/riscv-emulator/cpu"
)

var (
	baseAddr  = flag.Uint64("base", 0, "load address of the program image")
	maxCycles = flag.Uint64("max-cycles", 0, "stop after this many cycles (0 = unlimited)")
	memSize   = flag.Int("mem-size", 1<<20, "size in bytes of the simulated RAM")
	verbose   = flag.Bool("v", false, "verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: riscv32 [options] <program.bin>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	image, err := os.ReadFile(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	exitCode := run(image, programPath)
	os.Exit(exitCode)
}

// run loads a raw binary image into RAM at baseAddr and drives the CPU to
// completion (the first fault or the cycle limit), then reports the final
// architectural state. It accepts only flat raw images: ELF parsing is a
// loader concern this simulator core does not carry.
func run(image []byte, programPath string) int {
	mem := bus.NewRAM(*memSize)
	for i, b := range image {
		addr := *baseAddr + uint64(i)
		if err := mem.Write8(uint32(addr), b); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
			return 1
		}
	}

	c := cpu.New(mem, cpu.WithResetPC(uint32(*baseAddr)), cpu.WithMaxCycles(*maxCycles))

	if *verbose {
		fmt.Printf("Loaded: %s (%d bytes at 0x%08x)\n", programPath, len(image), *baseAddr)
	}

	var runErr error
	for {
		if err := c.Cycle(); err != nil {
			runErr = err
			break
		}
	}

	state := c.State()
	if *verbose {
		fmt.Printf("\nProgram: %s\n", programPath)
		fmt.Printf("Final pc: 0x%08x\n", state.PC)
		fmt.Printf("Cycles executed: %d\n", state.CycleCounter)
		fmt.Printf("Stop reason: %v\n", runErr)
	}

	if cerr, ok := runErr.(*cpu.CpuError); ok {
		fmt.Fprintf(os.Stderr, "%v\n", cerr)
		return 1
	}
	// ErrMaxCyclesReached is an orderly stop, not a failure.
	return 0
}
