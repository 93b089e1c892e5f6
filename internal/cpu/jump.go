package cpu

// jumpRelative adds a signed offset to PC.
func (c *CPU) jumpRelative(offset uint8) {
	c.PC = uint16(int32(c.PC) + int32(int8(offset)))
}

// jr jumps relative to the address following the instruction.
//
//	JR r8
func (c *CPU) jr(uint8) bool {
	c.jumpRelative(c.fetch())
	return true
}

// jrcc jumps relative if the condition holds. The offset is consumed
// either way.
//
//	JR cc, r8
//	cc = NZ, Z, NC, C
func (c *CPU) jrcc(opcode uint8) bool {
	offset := c.fetch()
	if !c.condition(opcode) {
		return false
	}
	c.jumpRelative(offset)
	return true
}

func (c *CPU) jp(uint8) bool {
	c.PC = c.fetch16()
	return true
}

// jpcc jumps to a16 if the condition holds.
//
//	JP cc, a16
func (c *CPU) jpcc(opcode uint8) bool {
	address := c.fetch16()
	if !c.condition(opcode) {
		return false
	}
	c.PC = address
	return true
}

func (c *CPU) jpHL(uint8) bool {
	c.PC = c.Pair(HL)
	return true
}

// call pushes the address of the next instruction and jumps to a16.
//
//	CALL a16
func (c *CPU) call(uint8) bool {
	address := c.fetch16()
	c.push(c.PC)
	c.PC = address
	return true
}

func (c *CPU) callcc(opcode uint8) bool {
	address := c.fetch16()
	if !c.condition(opcode) {
		return false
	}
	c.push(c.PC)
	c.PC = address
	return true
}

func (c *CPU) ret(uint8) bool {
	c.PC = c.pop()
	return true
}

func (c *CPU) retcc(opcode uint8) bool {
	if !c.condition(opcode) {
		return false
	}
	c.PC = c.pop()
	return true
}

// reti returns and enables interrupts.
func (c *CPU) reti(uint8) bool {
	c.PC = c.pop()
	c.IME = true
	return true
}

// rst calls one of the eight fixed restart addresses.
//
//	RST n
//	n = 00H, 08H, 10H, 18H, 20H, 28H, 30H, 38H
func (c *CPU) rst(opcode uint8) bool {
	c.push(c.PC)
	c.PC = uint16(opcode & 0x38)
	return true
}
