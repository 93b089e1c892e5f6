package cpu

// Flag is the bit index of a flag within the F register.
type Flag = uint8

const (
	FlagZero      Flag = 7
	FlagSubtract  Flag = 6
	FlagHalfCarry Flag = 5
	FlagCarry     Flag = 4
)

// Flag returns true if the given flag is set.
func (r *Registers) Flag(flag Flag) bool {
	return r.r[F]&(1<<flag) != 0
}

// SetFlag sets or clears a single flag.
func (r *Registers) SetFlag(flag Flag, value bool) {
	if value {
		r.r[F] |= 1 << flag
	} else {
		r.r[F] &^= 1 << flag
	}
}

// SetFlags sets all four flags at once, producing the combined F
// register.
func (r *Registers) SetFlags(zero, subtract, halfCarry, carry bool) {
	var f uint8
	if zero {
		f |= 1 << FlagZero
	}
	if subtract {
		f |= 1 << FlagSubtract
	}
	if halfCarry {
		f |= 1 << FlagHalfCarry
	}
	if carry {
		f |= 1 << FlagCarry
	}
	r.r[F] = f
}

// carryBit returns the carry flag as 0 or 1.
func (r *Registers) carryBit() uint8 {
	return r.r[F] >> FlagCarry & 1
}
