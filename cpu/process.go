package cpu

import "github.com/ymgyt/riscv-emulator/decode"

// process computes the Effect a decoded instruction produces, reading
// whatever register, CSR, and pc state it needs before returning — no
// writes happen here. This is what lets apply commit every write of a
// cycle as a single atomic step: by the time apply runs, every input it
// needs has already been captured in the effect value.
func (c *CPU) process(ir decode.Instruction) (effect, error) {
	switch ir.Op {
	case decode.OpLUI:
		return effect{kind: effectUpdateRegister, rd: ir.Rd(), value: ir.ImmU()}, nil

	case decode.OpAUIPC:
		return effect{kind: effectUpdateRegister, rd: ir.Rd(), value: c.pc + ir.ImmU()}, nil

	case decode.OpJAL:
		return effect{kind: effectJal, rd: ir.Rd(), pc: c.pc, imm: ir.ImmJ()}, nil

	case decode.OpJALR:
		return effect{
			kind: effectJalr,
			rd:   ir.Rd(),
			pc:   c.pc,
			imm:  ir.ImmI(),
			base: c.regs.Read(ir.Rs1()),
		}, nil

	case decode.OpBEQ:
		return c.branchUnsigned(ir, func(a, b uint32) bool { return a == b }), nil
	case decode.OpBNE:
		return c.branchUnsigned(ir, func(a, b uint32) bool { return a != b }), nil
	case decode.OpBLTU:
		return c.branchUnsigned(ir, func(a, b uint32) bool { return a < b }), nil
	case decode.OpBGEU:
		return c.branchUnsigned(ir, func(a, b uint32) bool { return a >= b }), nil
	case decode.OpBLT:
		return c.branchSigned(ir, func(a, b int32) bool { return a < b }), nil
	case decode.OpBGE:
		return c.branchSigned(ir, func(a, b int32) bool { return a >= b }), nil

	case decode.OpLB:
		return c.load(ir, 1, true), nil
	case decode.OpLH:
		return c.load(ir, 2, true), nil
	case decode.OpLW:
		return c.load(ir, 4, false), nil
	case decode.OpLBU:
		return c.load(ir, 1, false), nil
	case decode.OpLHU:
		return c.load(ir, 2, false), nil

	case decode.OpSB:
		return c.store(ir, 1), nil
	case decode.OpSH:
		return c.store(ir, 2), nil
	case decode.OpSW:
		return c.store(ir, 4), nil

	case decode.OpCSRRW:
		return c.csrOp(ir, func(t, rs1 uint32) (uint32, bool) { return rs1, true }), nil
	case decode.OpCSRRS:
		return c.csrOp(ir, func(t, rs1 uint32) (uint32, bool) { return t | rs1, rs1 != 0 }), nil
	case decode.OpCSRRC:
		return c.csrOp(ir, func(t, rs1 uint32) (uint32, bool) { return t &^ rs1, rs1 != 0 }), nil
	case decode.OpCSRRWI:
		return c.csrOpImm(ir, func(t, uimm uint32) (uint32, bool) { return uimm, true }), nil
	case decode.OpCSRRSI:
		return c.csrOpImm(ir, func(t, uimm uint32) (uint32, bool) { return t | uimm, uimm != 0 }), nil
	case decode.OpCSRRCI:
		return c.csrOpImm(ir, func(t, uimm uint32) (uint32, bool) { return t &^ uimm, uimm != 0 }), nil

	default:
		// Unreachable: Decode never returns an Op without a recognized
		// opcode/funct3 pairing.
		return effect{}, &CpuError{DecodeErr: &decode.Error{Word: ir.Raw()}}
	}
}

func (c *CPU) branchUnsigned(ir decode.Instruction, cmp func(a, b uint32) bool) effect {
	taken := cmp(c.regs.Read(ir.Rs1()), c.regs.Read(ir.Rs2()))
	return effect{kind: effectBranch, taken: taken, pc: c.pc, imm: ir.ImmB()}
}

func (c *CPU) branchSigned(ir decode.Instruction, cmp func(a, b int32) bool) effect {
	taken := cmp(int32(c.regs.Read(ir.Rs1())), int32(c.regs.Read(ir.Rs2())))
	return effect{kind: effectBranch, taken: taken, pc: c.pc, imm: ir.ImmB()}
}

func (c *CPU) load(ir decode.Instruction, width uint8, signExtend bool) effect {
	addr := c.regs.Read(ir.Rs1()) + uint32(ir.ImmI())
	return effect{kind: effectLoad, rd: ir.Rd(), addr: addr, width: width, signExtend: signExtend}
}

func (c *CPU) store(ir decode.Instruction, width uint8) effect {
	addr := c.regs.Read(ir.Rs1()) + uint32(ir.ImmS())
	return effect{kind: effectStore, addr: addr, width: width, storeValue: c.regs.Read(ir.Rs2())}
}

// csrOp implements CSRRW/CSRRS/CSRRC. compute returns the new CSR value to
// write along with whether the write should actually happen — for CSRRS
// and CSRRC the write is suppressed when rs1 == x0, per the ISA spec (see
// the Open Question resolution in DESIGN.md).
func (c *CPU) csrOp(ir decode.Instruction, compute func(t, rs1 uint32) (uint32, bool)) effect {
	addr := ir.Csr()
	t := c.csr.Read(addr)
	rs1 := c.regs.Read(ir.Rs1())
	newV, doWrite := compute(t, rs1)
	if !doWrite {
		newV = t
	}
	return effect{kind: effectCsr, rd: ir.Rd(), value: t, csrAddr: addr, csrNewValue: newV}
}

// csrOpImm implements CSRRWI/CSRRSI/CSRRCI, where the 5-bit rs1 field is an
// unsigned literal rather than a register index.
func (c *CPU) csrOpImm(ir decode.Instruction, compute func(t, uimm uint32) (uint32, bool)) effect {
	addr := ir.Csr()
	t := c.csr.Read(addr)
	uimm := ir.Rs1()
	newV, doWrite := compute(t, uimm)
	if !doWrite {
		newV = t
	}
	return effect{kind: effectCsr, rd: ir.Rd(), value: t, csrAddr: addr, csrNewValue: newV}
}
