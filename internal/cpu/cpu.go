package cpu

import (
	"errors"
	"fmt"

	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
	"github.com/thelolagemann/gbcore/pkg/utils"
)

const (
	// ClockSpeed is the clock speed of the CPU.
	ClockSpeed = 4194304

	// interruptCycles is the cost of dispatching an interrupt.
	interruptCycles = 16
	// haltCycles is the cost of a step spent waiting for an interrupt.
	haltCycles = 4
)

// ErrUnhandledOpcode is returned by Step when an opcode belongs to a
// group without a handler. The CPU stays stopped afterwards.
var ErrUnhandledOpcode = errors.New("cpu: unhandled opcode")

// Bus is the address space seen by the CPU.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU represents the Gameboy CPU. It is responsible for executing instructions.
type CPU struct {
	// Registers contains the 8-bit registers, as well as SP and PC.
	Registers

	// IME is the interrupt master enable flag.
	IME bool
	// Halted is set by HALT, the CPU does nothing until an interrupt
	// is pending.
	Halted bool

	// Trace logs every executed instruction at debug level.
	Trace bool

	b   Bus
	log log.Logger
	err error
}

// NewCPU creates a new CPU that reads and writes through b. All
// registers start at zero.
func NewCPU(b Bus, l log.Logger) *CPU {
	if l == nil {
		l = log.NewNullLogger()
	}
	return &CPU{b: b, log: l}
}

// Err returns the error that stopped the CPU, if any.
func (c *CPU) Err() error {
	return c.err
}

// Step executes a single instruction, or services a pending interrupt,
// and returns the number of clock cycles it took.
func (c *CPU) Step() (uint8, error) {
	if c.err != nil {
		return 0, c.err
	}

	if cycles, ok := c.serviceInterrupt(); ok {
		return cycles, nil
	}
	if c.Halted {
		return haltCycles, nil
	}

	pc := c.PC
	if c.Trace {
		c.trace(pc)
	}
	opcode := c.fetch()
	cycles, err := c.execute(opcode)
	if err != nil {
		c.err = fmt.Errorf("at 0x%04X: %w", pc, err)
		c.log.Errorf("cpu stopped: %v", c.err)
		return 0, c.err
	}

	return cycles, nil
}

// serviceInterrupt checks IE & IF. A pending interrupt always wakes the
// CPU from HALT, but is only dispatched while IME is set.
func (c *CPU) serviceInterrupt() (uint8, bool) {
	flags := c.b.Read(types.IF)
	pending := c.b.Read(types.IE) & flags & interrupts.Mask
	if pending == 0 {
		return 0, false
	}
	c.Halted = false
	if !c.IME {
		return 0, false
	}

	flag, vector, _ := interrupts.Highest(pending)
	c.IME = false
	c.b.Write(types.IF, flags&^flag)
	c.push(c.PC)
	c.PC = vector

	return interruptCycles, true
}

// execute runs opcode, which has already been fetched.
func (c *CPU) execute(opcode uint8) (uint8, error) {
	op := Primary[opcode]
	if op.Group == GroupPrefix {
		sub := c.fetch()
		ext := Extended[sub]
		if !c.run(ext, sub) {
			return 0, fmt.Errorf("%w: 0xCB 0x%02X (%s)", ErrUnhandledOpcode, sub, ext.Group)
		}
		return op.Cycles + ext.Cycles, nil
	}

	h := handlers[op.Group]
	if h == nil {
		return 0, fmt.Errorf("%w: 0x%02X (%s)", ErrUnhandledOpcode, opcode, op.Group)
	}
	if !h(c, opcode) {
		return op.CyclesNotTaken, nil
	}
	return op.Cycles, nil
}

// run executes an extended opcode, returning false if its group has no
// handler.
func (c *CPU) run(op *Opcode, opcode uint8) bool {
	h := handlers[op.Group]
	if h == nil {
		return false
	}
	h(c, opcode)
	return true
}

func (c *CPU) trace(pc uint16) {
	text, _ := Disassemble(c.b, pc)
	c.log.Debugf("%04X  %-18s A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X",
		pc, text, c.r[A], c.r[F], c.r[B], c.r[C], c.r[D], c.r[E], c.r[H], c.r[L], c.SP)
}

// fetch reads the byte at PC and advances it.
func (c *CPU) fetch() uint8 {
	value := c.b.Read(c.PC)
	c.PC++
	return value
}

// fetch16 reads a little-endian word at PC and advances past it.
func (c *CPU) fetch16() uint16 {
	low := c.fetch()
	high := c.fetch()
	return utils.BytesToUint16(high, low)
}

// push decrements SP by 2 and stores value, low byte first.
func (c *CPU) push(value uint16) {
	c.SP -= 2
	c.b.Write(c.SP, uint8(value))
	c.b.Write(c.SP+1, uint8(value>>8))
}

// pop reads the word at SP and increments SP by 2.
func (c *CPU) pop() uint16 {
	low := c.b.Read(c.SP)
	high := c.b.Read(c.SP + 1)
	c.SP += 2
	return uint16(high)<<8 | uint16(low)
}

// operandRegisters maps the 3-bit register field of an opcode to a
// register. Index 6 is (HL) and is handled separately.
var operandRegisters = [8]Register{B, C, D, E, H, L, F, A}

const operandHL = 6

// operand reads the 8-bit operand encoded by index.
func (c *CPU) operand(index uint8) uint8 {
	index &= 7
	if index == operandHL {
		return c.b.Read(c.Pair(HL))
	}
	return c.r[operandRegisters[index]]
}

// setOperand writes the 8-bit operand encoded by index.
func (c *CPU) setOperand(index uint8, value uint8) {
	index &= 7
	if index == operandHL {
		c.b.Write(c.Pair(HL), value)
		return
	}
	c.r[operandRegisters[index]] = value
}

// rp returns the 16-bit operand encoded by index, where 3 selects SP.
func (c *CPU) rp(index uint8) uint16 {
	if index&3 == 3 {
		return c.SP
	}
	return c.Pair(Pair(index&3 + 1))
}

// setRP sets the 16-bit operand encoded by index, where 3 selects SP.
func (c *CPU) setRP(index uint8, value uint16) {
	if index&3 == 3 {
		c.SP = value
		return
	}
	c.SetPair(Pair(index&3+1), value)
}

// condition evaluates the cc field of a conditional opcode.
func (c *CPU) condition(opcode uint8) bool {
	switch opcode >> 3 & 3 {
	case 0:
		return !c.Flag(FlagZero)
	case 1:
		return c.Flag(FlagZero)
	case 2:
		return !c.Flag(FlagCarry)
	default:
		return c.Flag(FlagCarry)
	}
}

var _ types.Stater = (*CPU)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - A, F, B, C, D, E, H, L (uint8)
//   - SP, PC (uint16)
//   - IME, Halted (bool)
func (c *CPU) Load(s *types.State) {
	for _, r := range []Register{A, F, B, C, D, E, H, L} {
		c.Set(r, s.Read8())
	}
	c.SP = s.Read16()
	c.PC = s.Read16()
	c.IME = s.ReadBool()
	c.Halted = s.ReadBool()
	c.err = nil
}

// Save implements the types.Stater interface.
func (c *CPU) Save(s *types.State) {
	for _, r := range []Register{A, F, B, C, D, E, H, L} {
		s.Write8(c.Get(r))
	}
	s.Write16(c.SP)
	s.Write16(c.PC)
	s.WriteBool(c.IME)
	s.WriteBool(c.Halted)
}
