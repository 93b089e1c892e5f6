// Package gameboy wires the CPU, memory unit and cartridge of a Game Boy
// together and drives them.
package gameboy

import (
	"context"
	"fmt"

	"github.com/thelolagemann/gbcore/internal/boot"
	"github.com/thelolagemann/gbcore/internal/cartridge"
	"github.com/thelolagemann/gbcore/internal/cpu"
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/mmu"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the Game Boy.
	ClockSpeed = cpu.ClockSpeed // 4.194304 MHz
	// CyclesPerFrame is the number of clock cycles per frame. Run checks
	// its context once per frame.
	CyclesPerFrame = 70224
)

// GameBoy represents a Game Boy. It contains all the components of the Game Boy.
// It is the main entry point for the emulator.
type GameBoy struct {
	CPU        *cpu.CPU
	MMU        *mmu.MMU
	Cartridge  *cartridge.Cartridge
	Interrupts *interrupts.Service

	log.Logger

	model   types.Model
	bootROM []byte
	trace   bool

	persister   cartridge.Persister
	peripherals []attachment
	clocked     []types.Clocked
	serial      *serialDebugger

	cycles uint64
}

type attachment struct {
	p types.Peripheral
	r types.AddressRange
}

// New returns a new GameBoy running rom. Without a boot ROM the registers
// start out as the boot ROM would have left them.
func New(rom []byte, opts ...Opt) (*GameBoy, error) {
	g := &GameBoy{
		Logger: log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}

	cart, err := cartridge.New(rom, g.cartridgeOpts()...)
	if err != nil {
		return nil, err
	}
	g.Cartridge = cart
	g.Interrupts = interrupts.NewService()
	g.MMU = mmu.NewMMU(cart, g.Interrupts, g.Logger)
	g.CPU = cpu.NewCPU(g.MMU, g.Logger)
	g.CPU.Trace = g.trace

	var bootROM *boot.ROM
	if g.bootROM != nil {
		if bootROM, err = boot.LoadBootROM(g.bootROM); err != nil {
			return nil, err
		}
		g.MMU.SetBootROM(bootROM)
		g.Logger.Infof("gameboy: boot rom %s", bootROM.Model())
	}

	if g.model == types.Unset {
		g.model = types.DMG
		if cart.Header.GameboyColor() || (bootROM != nil && bootROM.Colour()) {
			g.model = types.CGB
		}
	}
	g.MMU.SetColour(g.model == types.CGB)

	if g.serial != nil {
		g.serial.irq = g.Interrupts
		g.peripherals = append(g.peripherals, attachment{g.serial, types.SerialRange})
	}
	for _, a := range g.peripherals {
		if err := g.MMU.Attach(a.p, a.r); err != nil {
			return nil, err
		}
	}

	if bootROM == nil {
		g.skipBoot()
	}
	return g, nil
}

func (g *GameBoy) cartridgeOpts() []cartridge.Opt {
	opts := []cartridge.Opt{cartridge.WithLogger(g.Logger)}
	if g.persister != nil {
		opts = append(opts, cartridge.WithPersister(g.persister))
	}
	return opts
}

// skipBoot puts the registers in the state the boot ROM leaves them in.
func (g *GameBoy) skipBoot() {
	r := &g.CPU.Registers
	switch g.model {
	case types.CGB:
		r.SetPair(cpu.AF, 0x1180)
		r.SetPair(cpu.BC, 0x0000)
		r.SetPair(cpu.DE, 0xFF56)
		r.SetPair(cpu.HL, 0x000D)
	default:
		r.SetPair(cpu.AF, 0x01B0)
		r.SetPair(cpu.BC, 0x0013)
		r.SetPair(cpu.DE, 0x00D8)
		r.SetPair(cpu.HL, 0x014D)
	}
	r.SP = 0xFFFE
	r.PC = 0x0100
}

// Model returns the model being emulated.
func (g *GameBoy) Model() types.Model {
	return g.model
}

// Cycles returns the number of clock cycles executed so far.
func (g *GameBoy) Cycles() uint64 {
	return g.cycles
}

// Step executes a single CPU step and ticks every clocked component
// with the cycles it took.
func (g *GameBoy) Step() (uint8, error) {
	cycles, err := g.CPU.Step()
	if err != nil {
		return 0, err
	}
	for _, c := range g.clocked {
		c.Tick(cycles)
	}
	g.cycles += uint64(cycles)
	return cycles, nil
}

// Run steps the Game Boy until at least cycles clock cycles have been
// executed, ctx is done, or the CPU stops. A zero budget runs until ctx
// is done.
func (g *GameBoy) Run(ctx context.Context, cycles uint64) error {
	target := g.cycles + cycles
	for check := g.cycles; cycles == 0 || g.cycles < target; {
		if g.cycles >= check {
			if err := ctx.Err(); err != nil {
				return err
			}
			check = g.cycles + CyclesPerFrame
		}
		if _, err := g.Step(); err != nil {
			return fmt.Errorf("gameboy: %w", err)
		}
	}
	return nil
}

// Close saves battery backed RAM.
func (g *GameBoy) Close() error {
	return g.Cartridge.Persist()
}
