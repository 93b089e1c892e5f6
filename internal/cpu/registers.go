package cpu

// Register indexes one of the eight 8-bit registers of the CPU. The F
// register is special in that it is used to hold the flags, and only
// its upper 4 bits are used.
type Register uint8

const (
	A Register = iota
	B
	C
	D
	E
	F
	H
	L
)

var registerNames = [8]string{"A", "B", "C", "D", "E", "F", "H", "L"}

func (r Register) String() string {
	return registerNames[r&7]
}

// Pair identifies a register pair, which is used to access the upper
// and lower registers as a single 16-bit value.
type Pair uint8

const (
	AF Pair = iota
	BC
	DE
	HL
)

// pairs holds the high and low register of each Pair.
var pairs = [4][2]Register{
	AF: {A, F},
	BC: {B, C},
	DE: {D, E},
	HL: {H, L},
}

var pairNames = [4]string{"AF", "BC", "DE", "HL"}

func (p Pair) String() string {
	return pairNames[p&3]
}

// Registers is the register file of the CPU. The register pairs are
// views over the 8-bit registers and are never stored separately.
type Registers struct {
	r [8]uint8

	// SP is the stack pointer, it points to the top of the stack.
	SP uint16
	// PC is the program counter, it points to the next instruction to be executed.
	PC uint16
}

// Get returns the value of reg.
func (r *Registers) Get(reg Register) uint8 {
	return r.r[reg&7]
}

// Set sets reg to value. Writes to F only keep the upper nibble.
func (r *Registers) Set(reg Register, value uint8) {
	reg &= 7
	if reg == F {
		value &= 0xF0
	}
	r.r[reg] = value
}

// Pair returns the 16-bit value of p.
func (r *Registers) Pair(p Pair) uint16 {
	rp := pairs[p&3]
	return uint16(r.r[rp[0]])<<8 | uint16(r.r[rp[1]])
}

// SetPair splits value across the two registers of p.
func (r *Registers) SetPair(p Pair, value uint16) {
	rp := pairs[p&3]
	r.Set(rp[0], uint8(value>>8))
	r.Set(rp[1], uint8(value))
}
