package cpu

// csrAddrSpace is the number of addressable CSRs: a 12-bit address space.
const csrAddrSpace = 4096

// Named CSR addresses.
const (
	// CsrMstatus is the machine status register address.
	CsrMstatus uint32 = 0x300
)

// CSRFile is the control-and-status register file: a flat, fully
// addressable array of 4096 32-bit words. There is no access-permission
// checking in this core (deferred to future privilege-mode work) and
// undefined CSRs simply read as whatever was last written, defaulting to
// zero.
type CSRFile struct {
	r [csrAddrSpace]uint32
}

// Read returns the current value of the CSR at addr.
func (c *CSRFile) Read(addr uint32) uint32 {
	return c.r[addr]
}

// Write stores v into the CSR at addr.
func (c *CSRFile) Write(addr uint32, v uint32) {
	c.r[addr] = v
}

// ReadMstatus returns a view over the current mstatus CSR.
func (c *CSRFile) ReadMstatus() Mstatus {
	return Mstatus(c.Read(CsrMstatus))
}

// Mstatus is a bit-accessor view over the mstatus CSR (0x300).
type Mstatus uint32

// MIE reports the machine interrupt enable bit (bit 3).
func (m Mstatus) MIE() bool {
	return m&0x08 != 0
}
