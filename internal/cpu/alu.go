package cpu

// aluOperand returns the source of an ALU opcode, which is either the
// register field or, for the 0xC6 column, an immediate byte.
func (c *CPU) aluOperand(opcode uint8) uint8 {
	if opcode >= 0xC0 {
		return c.fetch()
	}
	return c.operand(opcode)
}

// add adds n, and optionally the carry flag, to A.
//
//	ADD A, n
//	ADC A, n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) add(n uint8, withCarry bool) {
	var carry uint8
	if withCarry {
		carry = c.carryBit()
	}
	a := c.r[A]
	sum := uint16(a) + uint16(n) + uint16(carry)
	c.r[A] = uint8(sum)
	c.SetFlags(uint8(sum) == 0, false, a&0x0F+n&0x0F+carry > 0x0F, sum > 0xFF)
}

// subtract computes A - n, and optionally the carry flag, setting the
// flags and returning the result without storing it.
//
//	SUB n
//	SBC A, n
//	CP n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Set if borrow.
func (c *CPU) subtract(n uint8, withCarry bool) uint8 {
	var carry uint8
	if withCarry {
		carry = c.carryBit()
	}
	a := c.r[A]
	result := a - n - carry
	c.SetFlags(result == 0, true, int(a&0x0F)-int(n&0x0F)-int(carry) < 0, int(a)-int(n)-int(carry) < 0)
	return result
}

func (c *CPU) aluAdd(opcode uint8) bool {
	c.add(c.aluOperand(opcode), false)
	return true
}

func (c *CPU) aluAdc(opcode uint8) bool {
	c.add(c.aluOperand(opcode), true)
	return true
}

func (c *CPU) aluSub(opcode uint8) bool {
	c.r[A] = c.subtract(c.aluOperand(opcode), false)
	return true
}

func (c *CPU) aluSbc(opcode uint8) bool {
	c.r[A] = c.subtract(c.aluOperand(opcode), true)
	return true
}

func (c *CPU) aluCp(opcode uint8) bool {
	c.subtract(c.aluOperand(opcode), false)
	return true
}

// aluAnd performs a bitwise AND operation on n and the A Register.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set.
//	C - Reset.
func (c *CPU) aluAnd(opcode uint8) bool {
	c.r[A] &= c.aluOperand(opcode)
	c.SetFlags(c.r[A] == 0, false, true, false)
	return true
}

// aluXor performs a bitwise XOR operation on n and the A Register.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) aluXor(opcode uint8) bool {
	c.r[A] ^= c.aluOperand(opcode)
	c.SetFlags(c.r[A] == 0, false, false, false)
	return true
}

// aluOr performs a bitwise OR operation on n and the A Register.
func (c *CPU) aluOr(opcode uint8) bool {
	c.r[A] |= c.aluOperand(opcode)
	c.SetFlags(c.r[A] == 0, false, false, false)
	return true
}

// inc8 increments an 8-bit operand.
//
//	INC n
//	n = A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Not affected.
func (c *CPU) inc8(opcode uint8) bool {
	index := opcode >> 3
	n := c.operand(index)
	result := n + 1
	c.setOperand(index, result)
	c.SetFlags(result == 0, false, n&0x0F == 0x0F, c.Flag(FlagCarry))
	return true
}

// dec8 decrements an 8-bit operand.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Not affected.
func (c *CPU) dec8(opcode uint8) bool {
	index := opcode >> 3
	n := c.operand(index)
	result := n - 1
	c.setOperand(index, result)
	c.SetFlags(result == 0, true, n&0x0F == 0, c.Flag(FlagCarry))
	return true
}

// inc16 and dec16 wrap and leave the flags untouched.
func (c *CPU) inc16(opcode uint8) bool {
	index := opcode >> 4
	c.setRP(index, c.rp(index)+1)
	return true
}

func (c *CPU) dec16(opcode uint8) bool {
	index := opcode >> 4
	c.setRP(index, c.rp(index)-1)
	return true
}

// addHL adds a 16-bit operand to HL.
//
//	ADD HL, nn
//	nn = BC, DE, HL, SP
//
// Flags affected:
//
//	Z - Not affected.
//	N - Reset.
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
func (c *CPU) addHL(opcode uint8) bool {
	hl := c.Pair(HL)
	n := c.rp(opcode >> 4)
	sum := uint32(hl) + uint32(n)
	c.SetPair(HL, uint16(sum))
	c.SetFlags(c.Flag(FlagZero), false, hl&0x0FFF+n&0x0FFF > 0x0FFF, sum > 0xFFFF)
	return true
}

// addSPSigned returns SP plus a signed immediate byte. The carry flags
// come from the unsigned addition of the low byte of SP.
//
// Flags affected:
//
//	Z - Reset.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) addSPSigned() uint16 {
	offset := c.fetch()
	sp := c.SP
	result := uint16(int32(sp) + int32(int8(offset)))
	c.SetFlags(false, false, sp&0x0F+uint16(offset&0x0F) > 0x0F, sp&0xFF+uint16(offset) > 0xFF)
	return result
}

func (c *CPU) addSP(uint8) bool {
	c.SP = c.addSPSigned()
	return true
}

func (c *CPU) loadHLSP(uint8) bool {
	c.SetPair(HL, c.addSPSigned())
	return true
}
