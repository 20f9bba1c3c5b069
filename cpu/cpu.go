// Package cpu implements the RV32I + Zicsr execution engine: a register
// file, a CSR file, a decoder instance, and a bus, driven one retired
// instruction at a time by Cycle.
package cpu

import (
	"errors"
	"fmt"

	"github.com/ymgyt/riscv-emulator/bus"
	"github.com/ymgyt/riscv-emulator/decode"
)

// State is a read-only snapshot of architectural state exposed to the
// host runtime for inspection between cycles.
type State struct {
	PC           uint32
	CycleCounter uint64
	Mode         Mode
}

// CPU owns the register file, CSR file, decoder, and bus for a single
// hart, and advances architectural state one retired instruction at a
// time via Cycle.
type CPU struct {
	bus     bus.Bus
	decoder *decode.Decoder

	regs RegFile
	csr  CSRFile
	pc   uint32
	mode Mode

	cycleCounter uint64
	maxCycles    uint64 // 0 means unlimited
}

// Option configures a CPU at construction time.
type Option func(*CPU)

// WithResetPC sets the initial program counter. Defaults to 0.
func WithResetPC(pc uint32) Option {
	return func(c *CPU) { c.pc = pc }
}

// WithMaxCycles bounds the number of cycles Cycle will execute before
// returning ErrMaxCyclesReached; 0 (the default) means unlimited.
func WithMaxCycles(max uint64) Option {
	return func(c *CPU) { c.maxCycles = max }
}

// WithMode sets the initial privilege mode. Defaults to Machine. This core
// does not implement privilege transitions, so the mode never changes
// after construction.
func WithMode(mode Mode) Option {
	return func(c *CPU) { c.mode = mode }
}

// New constructs a CPU over the given bus with all architectural state at
// its reset value: every x register zero, pc 0 (unless overridden),
// every CSR zero, cycle counter 0, mode Machine.
func New(b bus.Bus, opts ...Option) *CPU {
	c := &CPU{
		bus:     b,
		decoder: decode.NewDecoder(),
		mode:    Machine,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of pc, cycle counter, and mode.
func (c *CPU) State() State {
	return State{PC: c.pc, CycleCounter: c.cycleCounter, Mode: c.mode}
}

// Registers returns a snapshot of all 32 general-purpose registers.
func (c *CPU) Registers() [32]uint32 {
	return c.regs.Snapshot()
}

// CSR returns the CPU's CSR file for inspection.
func (c *CPU) CSR() *CSRFile {
	return &c.csr
}

// ErrMaxCyclesReached is returned by Cycle once the configured
// WithMaxCycles budget is exhausted.
var ErrMaxCyclesReached = errors.New("max cycles reached")

// FaultDirection distinguishes which side of the bus contract a CpuError
// originated from.
type FaultDirection int

const (
	// Load errors arise from instruction fetch or a load instruction's
	// data access.
	Load FaultDirection = iota
	// Store errors arise from a store instruction's data access.
	Store
)

func (d FaultDirection) String() string {
	if d == Store {
		return "store"
	}
	return "load"
}

// CpuError is the error type Cycle returns. It wraps either a bus fault
// (tagged with the direction that produced it) or a decode error.
type CpuError struct {
	Direction FaultDirection
	BusErr    error // non-nil for a bus fault
	DecodeErr error // non-nil for a decode error
}

func (e *CpuError) Error() string {
	if e.DecodeErr != nil {
		return fmt.Sprintf("decode error: %v", e.DecodeErr)
	}
	return fmt.Sprintf("%s error: %v", e.Direction, e.BusErr)
}

func (e *CpuError) Unwrap() error {
	if e.DecodeErr != nil {
		return e.DecodeErr
	}
	return e.BusErr
}

// Cycle advances architectural state by exactly one retired instruction:
// fetch, decode, process (pure, snapshots all inputs), then apply (commits
// all writes). The cycle counter is incremented exactly once per call,
// whether or not the call ultimately returns an error.
//
// On error, no architectural state beyond the cycle counter is mutated:
// process runs to completion (producing an effect, not a side effect)
// before apply performs any write, and apply's own bus accesses for
// Load/Store happen before the corresponding register write is committed.
func (c *CPU) Cycle() error {
	c.cycleCounter++

	if c.maxCycles != 0 && c.cycleCounter > c.maxCycles {
		return ErrMaxCyclesReached
	}

	raw, err := c.bus.Read32(c.pc)
	if err != nil {
		return &CpuError{Direction: Load, BusErr: err}
	}

	ir, err := c.decoder.Decode(raw)
	if err != nil {
		return &CpuError{DecodeErr: err}
	}

	eff, err := c.process(ir)
	if err != nil {
		return err
	}

	return c.apply(eff)
}

// Run repeatedly calls Cycle until it returns a non-nil error, which it
// then returns. It is the minimal host-runtime loop: construct a CPU over
// a bus, then cycle until something stops it.
func Run(b bus.Bus, opts ...Option) error {
	c := New(b, opts...)
	for {
		if err := c.Cycle(); err != nil {
			return err
		}
	}
}
