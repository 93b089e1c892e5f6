package cpu

import "github.com/thelolagemann/gbcore/internal/types"

// rotateLeftCarry rotates n left by 1 bit. The most significant bit is copied
// to both the carry flag and the least significant bit.
//
//	RLC n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 7 data.
func (c *CPU) rotateLeftCarry(n uint8) uint8 {
	computed := n<<1 | n>>7
	c.SetFlags(computed == 0, false, false, n&types.Bit7 != 0)
	return computed
}

// rotateRightCarry rotates n right by 1 bit. The least significant bit is
// copied to both the carry flag and the most significant bit.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0 data.
func (c *CPU) rotateRightCarry(n uint8) uint8 {
	computed := n>>1 | n<<7
	c.SetFlags(computed == 0, false, false, n&types.Bit0 != 0)
	return computed
}

// rotateLeftThroughCarry rotates n left by 1 bit through the carry flag.
func (c *CPU) rotateLeftThroughCarry(n uint8) uint8 {
	computed := n<<1 | c.carryBit()
	c.SetFlags(computed == 0, false, false, n&types.Bit7 != 0)
	return computed
}

// rotateRightThroughCarry rotates n right by 1 bit through the carry flag.
func (c *CPU) rotateRightThroughCarry(n uint8) uint8 {
	computed := n>>1 | c.carryBit()<<7
	c.SetFlags(computed == 0, false, false, n&types.Bit0 != 0)
	return computed
}

// shiftLeftArithmetic shifts n left into the carry flag. Bit 0 is reset.
func (c *CPU) shiftLeftArithmetic(n uint8) uint8 {
	computed := n << 1
	c.SetFlags(computed == 0, false, false, n&types.Bit7 != 0)
	return computed
}

// shiftRightArithmetic shifts n right into the carry flag. Bit 7 is
// unchanged.
func (c *CPU) shiftRightArithmetic(n uint8) uint8 {
	computed := n>>1 | n&types.Bit7
	c.SetFlags(computed == 0, false, false, n&types.Bit0 != 0)
	return computed
}

// shiftRightLogical shifts n right into the carry flag. Bit 7 is reset.
func (c *CPU) shiftRightLogical(n uint8) uint8 {
	computed := n >> 1
	c.SetFlags(computed == 0, false, false, n&types.Bit0 != 0)
	return computed
}

// swap the upper and lower nibbles of a byte
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) swap(n uint8) uint8 {
	c.SetFlags(n == 0, false, false, false)
	return n<<4 | n>>4
}

// the accumulator forms always reset the zero flag

func (c *CPU) rlca(uint8) bool {
	c.r[A] = c.rotateLeftCarry(c.r[A])
	c.SetFlag(FlagZero, false)
	return true
}

func (c *CPU) rrca(uint8) bool {
	c.r[A] = c.rotateRightCarry(c.r[A])
	c.SetFlag(FlagZero, false)
	return true
}

func (c *CPU) rla(uint8) bool {
	c.r[A] = c.rotateLeftThroughCarry(c.r[A])
	c.SetFlag(FlagZero, false)
	return true
}

func (c *CPU) rra(uint8) bool {
	c.r[A] = c.rotateRightThroughCarry(c.r[A])
	c.SetFlag(FlagZero, false)
	return true
}

// modify applies fn to the operand encoded in the low 3 bits of an
// extended opcode.
func (c *CPU) modify(opcode uint8, fn func(uint8) uint8) bool {
	c.setOperand(opcode, fn(c.operand(opcode)))
	return true
}

func (c *CPU) rlc(opcode uint8) bool   { return c.modify(opcode, c.rotateLeftCarry) }
func (c *CPU) rrc(opcode uint8) bool   { return c.modify(opcode, c.rotateRightCarry) }
func (c *CPU) rl(opcode uint8) bool    { return c.modify(opcode, c.rotateLeftThroughCarry) }
func (c *CPU) rr(opcode uint8) bool    { return c.modify(opcode, c.rotateRightThroughCarry) }
func (c *CPU) sla(opcode uint8) bool   { return c.modify(opcode, c.shiftLeftArithmetic) }
func (c *CPU) sra(opcode uint8) bool   { return c.modify(opcode, c.shiftRightArithmetic) }
func (c *CPU) swapR(opcode uint8) bool { return c.modify(opcode, c.swap) }
func (c *CPU) srl(opcode uint8) bool   { return c.modify(opcode, c.shiftRightLogical) }

// bit tests bit y of an operand.
//
//	BIT y, r
//
// Flags affected:
//
//	Z - Set if the bit is 0.
//	N - Reset.
//	H - Set.
//	C - Not affected.
func (c *CPU) bit(opcode uint8) bool {
	mask := uint8(1) << (opcode >> 3 & 7)
	c.SetFlags(c.operand(opcode)&mask == 0, false, true, c.Flag(FlagCarry))
	return true
}

// res resets bit y of an operand. Flags are not affected.
func (c *CPU) res(opcode uint8) bool {
	mask := uint8(1) << (opcode >> 3 & 7)
	c.setOperand(opcode, c.operand(opcode)&^mask)
	return true
}

// set sets bit y of an operand. Flags are not affected.
func (c *CPU) set(opcode uint8) bool {
	mask := uint8(1) << (opcode >> 3 & 7)
	c.setOperand(opcode, c.operand(opcode)|mask)
	return true
}
