package gameboy

import (
	"io"

	"github.com/thelolagemann/gbcore/internal/cartridge"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// Opt is a function that modifies a GameBoy
// instance.
type Opt func(gb *GameBoy)

// Debug traces every executed instruction.
func Debug() Opt {
	return func(gb *GameBoy) {
		gb.trace = true
	}
}

// WithBootROM sets the boot ROM for the emulator. The emulator then
// starts at 0x0000 with every register cleared, rather than in the
// state the boot ROM would have left it in.
func WithBootROM(rom []byte) Opt {
	return func(gb *GameBoy) {
		gb.bootROM = rom
	}
}

func WithLogger(log log.Logger) Opt {
	return func(gb *GameBoy) {
		gb.Logger = log
	}
}

// WithPersistence loads and saves battery backed RAM through p.
func WithPersistence(p cartridge.Persister) Opt {
	return func(gb *GameBoy) {
		gb.persister = p
	}
}

// AsModel forces the model to emulate, instead of deciding it from
// the cartridge header.
func AsModel(m types.Model) Opt {
	return func(gb *GameBoy) {
		gb.model = m
	}
}

// WithPeripheral attaches p to the I/O registers in r.
func WithPeripheral(p types.Peripheral, r types.AddressRange) Opt {
	return func(gb *GameBoy) {
		gb.peripherals = append(gb.peripherals, attachment{p, r})
	}
}

// WithClocked ticks c after every CPU step.
func WithClocked(c types.Clocked) Opt {
	return func(gb *GameBoy) {
		gb.clocked = append(gb.clocked, c)
	}
}

// SerialDebugger writes every byte sent over the serial port to w. Test
// ROMs use this to report their results.
func SerialDebugger(w io.Writer) Opt {
	return func(gb *GameBoy) {
		gb.serial = &serialDebugger{w: w}
	}
}
