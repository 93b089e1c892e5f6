package cpu

// load8 copies one 8-bit operand into another.
//
//	LD r, r'
//	r, r' = A, B, C, D, E, H, L, (HL)
func (c *CPU) load8(opcode uint8) bool {
	c.setOperand(opcode>>3, c.operand(opcode))
	return true
}

// load8Immediate loads d8 into an 8-bit operand.
func (c *CPU) load8Immediate(opcode uint8) bool {
	c.setOperand(opcode>>3, c.fetch())
	return true
}

// load16Immediate loads d16 into BC, DE, HL or SP.
func (c *CPU) load16Immediate(opcode uint8) bool {
	c.setRP(opcode>>4, c.fetch16())
	return true
}

// loadIndirect moves A to or from the address held in BC, DE or HL.
// The HL forms post-increment or post-decrement HL.
//
//	LD (BC), A   LD A, (BC)
//	LD (DE), A   LD A, (DE)
//	LD (HL+), A  LD A, (HL+)
//	LD (HL-), A  LD A, (HL-)
func (c *CPU) loadIndirect(opcode uint8) bool {
	index := opcode >> 4 & 3
	var address uint16
	switch index {
	case 0:
		address = c.Pair(BC)
	case 1:
		address = c.Pair(DE)
	default:
		address = c.Pair(HL)
	}

	if opcode&0x08 != 0 {
		c.r[A] = c.b.Read(address)
	} else {
		c.b.Write(address, c.r[A])
	}

	switch index {
	case 2:
		c.SetPair(HL, address+1)
	case 3:
		c.SetPair(HL, address-1)
	}
	return true
}

// loadHigh moves A to or from the 0xFF00 page, offset by either an
// immediate byte or C.
func (c *CPU) loadHigh(opcode uint8) bool {
	var address uint16
	if opcode&0x02 != 0 {
		address = 0xFF00 | uint16(c.r[C])
	} else {
		address = 0xFF00 | uint16(c.fetch())
	}

	if opcode&0x10 != 0 {
		c.r[A] = c.b.Read(address)
	} else {
		c.b.Write(address, c.r[A])
	}
	return true
}

// loadAbsolute moves A to or from a 16-bit immediate address.
func (c *CPU) loadAbsolute(opcode uint8) bool {
	address := c.fetch16()
	if opcode&0x10 != 0 {
		c.r[A] = c.b.Read(address)
	} else {
		c.b.Write(address, c.r[A])
	}
	return true
}

// storeSP stores SP at a 16-bit immediate address, low byte first.
func (c *CPU) storeSP(uint8) bool {
	address := c.fetch16()
	c.b.Write(address, uint8(c.SP))
	c.b.Write(address+1, uint8(c.SP>>8))
	return true
}

func (c *CPU) loadSPHL(uint8) bool {
	c.SP = c.Pair(HL)
	return true
}

// pushRR pushes BC, DE, HL or AF.
func (c *CPU) pushRR(opcode uint8) bool {
	index := opcode >> 4 & 3
	if index == 3 {
		c.push(c.Pair(AF))
	} else {
		c.push(c.rp(index))
	}
	return true
}

// popRR pops into BC, DE, HL or AF. Popping AF discards the lower
// nibble of F.
func (c *CPU) popRR(opcode uint8) bool {
	index := opcode >> 4 & 3
	value := c.pop()
	if index == 3 {
		c.SetPair(AF, value)
	} else {
		c.setRP(index, value)
	}
	return true
}
