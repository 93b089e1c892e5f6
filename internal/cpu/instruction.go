package cpu

// handler executes an opcode of a group. It returns false when a
// conditional instruction did not take its branch.
type handler func(c *CPU, opcode uint8) bool

// handlers maps each Group to the function executing it. GroupPrefix is
// resolved by execute and has no entry.
var handlers = [groupCount]handler{
	GroupUndefined:       (*CPU).undefined,
	GroupNOP:             (*CPU).nop,
	GroupSTOP:            (*CPU).stop,
	GroupHALT:            (*CPU).halt,
	GroupDI:              (*CPU).disableInterrupts,
	GroupEI:              (*CPU).enableInterrupts,
	GroupLoad8:           (*CPU).load8,
	GroupLoad8Immediate:  (*CPU).load8Immediate,
	GroupLoad16Immediate: (*CPU).load16Immediate,
	GroupLoadIndirect:    (*CPU).loadIndirect,
	GroupLoadHigh:        (*CPU).loadHigh,
	GroupLoadAbsolute:    (*CPU).loadAbsolute,
	GroupStoreSP:         (*CPU).storeSP,
	GroupLoadSPHL:        (*CPU).loadSPHL,
	GroupLoadHLSP:        (*CPU).loadHLSP,
	GroupPush:            (*CPU).pushRR,
	GroupPop:             (*CPU).popRR,
	GroupInc8:            (*CPU).inc8,
	GroupDec8:            (*CPU).dec8,
	GroupInc16:           (*CPU).inc16,
	GroupDec16:           (*CPU).dec16,
	GroupAddHL:           (*CPU).addHL,
	GroupAddSP:           (*CPU).addSP,
	GroupAdd:             (*CPU).aluAdd,
	GroupAdc:             (*CPU).aluAdc,
	GroupSub:             (*CPU).aluSub,
	GroupSbc:             (*CPU).aluSbc,
	GroupAnd:             (*CPU).aluAnd,
	GroupXor:             (*CPU).aluXor,
	GroupOr:              (*CPU).aluOr,
	GroupCp:              (*CPU).aluCp,
	GroupRLCA:            (*CPU).rlca,
	GroupRRCA:            (*CPU).rrca,
	GroupRLA:             (*CPU).rla,
	GroupRRA:             (*CPU).rra,
	GroupDAA:             (*CPU).daa,
	GroupCPL:             (*CPU).cpl,
	GroupSCF:             (*CPU).scf,
	GroupCCF:             (*CPU).ccf,
	GroupJR:              (*CPU).jr,
	GroupJRcc:            (*CPU).jrcc,
	GroupJP:              (*CPU).jp,
	GroupJPcc:            (*CPU).jpcc,
	GroupJPHL:            (*CPU).jpHL,
	GroupCall:            (*CPU).call,
	GroupCallcc:          (*CPU).callcc,
	GroupRet:             (*CPU).ret,
	GroupRetcc:           (*CPU).retcc,
	GroupRETI:            (*CPU).reti,
	GroupRST:             (*CPU).rst,
	GroupRLC:             (*CPU).rlc,
	GroupRRC:             (*CPU).rrc,
	GroupRL:              (*CPU).rl,
	GroupRR:              (*CPU).rr,
	GroupSLA:             (*CPU).sla,
	GroupSRA:             (*CPU).sra,
	GroupSWAP:            (*CPU).swapR,
	GroupSRL:             (*CPU).srl,
	GroupBIT:             (*CPU).bit,
	GroupRES:             (*CPU).res,
	GroupSET:             (*CPU).set,
}

func (c *CPU) nop(uint8) bool {
	return true
}

func (c *CPU) undefined(opcode uint8) bool {
	c.log.Debugf("undefined opcode 0x%02X at 0x%04X", opcode, c.PC-1)
	return true
}

// stop skips its padding byte and otherwise behaves like NOP.
func (c *CPU) stop(uint8) bool {
	c.PC++
	return true
}

func (c *CPU) halt(uint8) bool {
	c.Halted = true
	return true
}

func (c *CPU) disableInterrupts(uint8) bool {
	c.IME = false
	return true
}

func (c *CPU) enableInterrupts(uint8) bool {
	c.IME = true
	return true
}

// daa adjusts A into packed BCD after an addition or subtraction.
//
//	DAA
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Not affected.
//	H - Reset.
//	C - Set if the correction overflowed, otherwise unchanged.
func (c *CPU) daa(uint8) bool {
	a := c.r[A]
	carry := c.Flag(FlagCarry)
	if !c.Flag(FlagSubtract) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.Flag(FlagHalfCarry) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if c.Flag(FlagHalfCarry) {
			a -= 0x06
		}
	}
	c.r[A] = a
	c.SetFlags(a == 0, c.Flag(FlagSubtract), false, carry)
	return true
}

// cpl complements A.
//
// Flags affected:
//
//	Z - Not affected.
//	N - Set.
//	H - Set.
//	C - Not affected.
func (c *CPU) cpl(uint8) bool {
	c.r[A] = ^c.r[A]
	c.SetFlag(FlagSubtract, true)
	c.SetFlag(FlagHalfCarry, true)
	return true
}

// scf sets the carry flag, clearing N and H.
func (c *CPU) scf(uint8) bool {
	c.SetFlags(c.Flag(FlagZero), false, false, true)
	return true
}

// ccf complements the carry flag, clearing N and H.
func (c *CPU) ccf(uint8) bool {
	c.SetFlags(c.Flag(FlagZero), false, false, !c.Flag(FlagCarry))
	return true
}
