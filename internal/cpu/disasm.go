package cpu

import (
	"fmt"
	"strings"
)

// Peeker is implemented by buses that can be read without side effects
// on attached peripherals.
type Peeker interface {
	Peek(address uint16) uint8
}

// Disassemble renders the instruction at address with its operands
// filled in, returning the text and the instruction length. Buses that
// implement Peeker are read through Peek.
func Disassemble(b Bus, address uint16) (string, uint8) {
	read := b.Read
	if p, ok := b.(Peeker); ok {
		read = p.Peek
	}

	op := Primary[read(address)]
	if op.Group == GroupPrefix {
		ext := Extended[read(address+1)]
		return ext.Name, ext.Length
	}

	switch op.Length {
	case 2:
		v := read(address + 1)
		return strings.NewReplacer(
			"d8", fmt.Sprintf("$%02X", v),
			"a8", fmt.Sprintf("$FF%02X", v),
			"+r8", fmt.Sprintf("%+d", int8(v)),
			"r8", fmt.Sprintf("%+d", int8(v)),
		).Replace(op.Name), op.Length
	case 3:
		v := uint16(read(address+2))<<8 | uint16(read(address+1))
		return strings.NewReplacer(
			"d16", fmt.Sprintf("$%04X", v),
			"a16", fmt.Sprintf("$%04X", v),
		).Replace(op.Name), op.Length
	}

	return op.Name, op.Length
}
