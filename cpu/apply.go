package cpu

// apply commits the side effects the process stage computed: register and
// CSR writes, and data bus reads/writes, then advances pc. Every opcode
// classifies as either auto-advancing (pc += 4 after the effect commits)
// or self-setting (the effect handler assigns pc directly); see the
// switch below for which is which.
func (c *CPU) apply(e effect) error {
	switch e.kind {
	case effectUpdateRegister:
		c.regs.Write(e.rd, e.value)
		c.pc += 4

	case effectJal:
		c.regs.Write(e.rd, e.pc+4)
		c.pc = uint32(int64(e.pc) + int64(e.imm))

	case effectJalr:
		c.regs.Write(e.rd, e.pc+4)
		target := uint32(int64(e.base) + int64(e.imm))
		c.pc = target &^ 1

	case effectBranch:
		if e.taken {
			c.pc = uint32(int64(e.pc) + int64(e.imm))
		} else {
			c.pc += 4
		}

	case effectLoad:
		v, err := c.loadBus(e.addr, e.width, e.signExtend)
		if err != nil {
			return &CpuError{Direction: Load, BusErr: err}
		}
		c.regs.Write(e.rd, v)
		c.pc += 4

	case effectStore:
		if err := c.storeBus(e.addr, e.width, e.storeValue); err != nil {
			return &CpuError{Direction: Store, BusErr: err}
		}
		c.pc += 4

	case effectCsr:
		// Read-before-write: rd is written with the value captured in
		// process before the CSR write below, so CSRRW rd=csr (rd==rs1)
		// still observes the pre-write value.
		c.regs.Write(e.rd, e.value)
		c.csr.Write(e.csrAddr, e.csrNewValue)
		c.pc += 4
	}

	return nil
}

func (c *CPU) loadBus(addr uint32, width uint8, signExtend bool) (uint32, error) {
	switch width {
	case 1:
		v, err := c.bus.Read8(addr)
		if err != nil {
			return 0, err
		}
		if signExtend {
			return uint32(int32(int8(v))), nil
		}
		return uint32(v), nil
	case 2:
		v, err := c.bus.Read16(addr)
		if err != nil {
			return 0, err
		}
		if signExtend {
			return uint32(int32(int16(v))), nil
		}
		return uint32(v), nil
	default:
		return c.bus.Read32(addr)
	}
}

func (c *CPU) storeBus(addr uint32, width uint8, value uint32) error {
	switch width {
	case 1:
		return c.bus.Write8(addr, uint8(value))
	case 2:
		return c.bus.Write16(addr, uint16(value))
	default:
		return c.bus.Write32(addr, value)
	}
}
