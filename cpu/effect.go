package cpu

// effectKind tags which variant of effect a process step produced. Go has
// no sum types; this closed tagged struct plus the kind discriminant is the
// idiomatic stand-in, scoped to exactly the variants spec.md names.
type effectKind int

const (
	effectUpdateRegister effectKind = iota
	effectJal
	effectJalr
	effectBranch
	effectLoad
	effectStore
	effectCsr
)

// effect is the intermediate value produced by process and consumed by
// apply within the same cycle; it never escapes a single Cycle call.
//
// Fields are grouped by which effectKind reads them; unused fields for a
// given kind are simply left zero.
type effect struct {
	kind effectKind

	rd uint32

	// UpdateRegister / Csr: the value written to rd
	value uint32

	// Jal / Jalr / Branch: the pc this instruction was fetched at, and the
	// (possibly negative) displacement to apply to it.
	pc  uint32
	imm int32

	// Jalr: base register value read before any write (rs1, snapshotted).
	base uint32

	// Branch: whether the condition evaluated true.
	taken bool

	// Load / Store
	addr       uint32
	width      uint8 // 1, 2, or 4 bytes
	signExtend bool
	storeValue uint32

	// Csr
	csrAddr     uint32
	csrNewValue uint32
}
