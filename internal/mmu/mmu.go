// Package mmu provides a memory management unit for the Game Boy. The
// MMU owns every memory bank of the address space, decodes each access
// into a bank and offset, and forwards register traffic to the attached
// peripherals.
package mmu

import (
	"errors"
	"fmt"

	"github.com/thelolagemann/gbcore/internal/boot"
	"github.com/thelolagemann/gbcore/internal/cartridge"
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/ram"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
	"github.com/thelolagemann/gbcore/pkg/utils"
)

// openBus is returned for addresses nothing responds to.
const openBus = 0xFF

// ErrInvalidRange is returned when a peripheral is attached outside of
// the I/O registers, or over a register owned by the MMU.
var ErrInvalidRange = errors.New("mmu: invalid peripheral range")

// ErrInvalidMapping is returned by CheckMapping when a bank index is
// outside of the banks present.
var ErrInvalidMapping = errors.New("mmu: bank mapping out of range")

// MMU is the memory management unit for the Game Boy. It handles all
// memory reads and writes to the Game Boy's 64kB of memory.
type MMU struct {
	// the active bank indices, shared with the cartridge
	mapping *types.Mapping

	// 0x0000 - 0x00FF/0x0900 - BOOT ROM (256B/2304B)
	bootROM *boot.ROM

	// 0x0000 - 0x7FFF - ROM (16kB banks)
	// 0xA000 - 0xBFFF - External RAM (8kB banks)
	Cart *cartridge.Cartridge

	// 0x8000 - 0x9FFF - Video RAM (2 x 8kB)
	vRAM [2][0x2000]uint8

	// 0xC000 - 0xDFFF - Work RAM (8 x 4kB)
	// 0xE000 - 0xFDFF - Echo RAM (7.5kB)
	wRAM *WRAM

	// 0xFE00 - 0xFE9F - Sprite Attribute Table (160B)
	oam *ram.RAM

	// 0xFF00 - 0xFF7F - I/O Registers
	io [0x80]types.Peripheral

	// 0xFF80 - 0xFFFE - Zero Page RAM (127B)
	zRAM *ram.RAM

	// 0xFF0F & 0xFFFF - interrupt flag and enable registers
	IRQ *interrupts.Service

	Log log.Logger

	isGBC bool
}

// NewMMU returns a new MMU for cart. The MMU adopts the mapping of the
// cartridge, so bank controller writes are visible immediately.
func NewMMU(cart *cartridge.Cartridge, irq *interrupts.Service, l log.Logger) *MMU {
	if l == nil {
		l = log.NewNullLogger()
	}
	m := &MMU{
		mapping: cart.Mapping,
		Cart:    cart,
		wRAM:    NewWRAM(cart.Mapping),
		oam:     ram.NewRAM(0xA0),
		zRAM:    ram.NewRAM(0x7F),
		IRQ:     irq,
		Log:     l,
	}

	return m
}

// SetBootROM maps the boot ROM over the cartridge until types.BDIS is
// written.
func (m *MMU) SetBootROM(rom *boot.ROM) {
	m.bootROM = rom
	m.mapping.Boot = rom != nil
}

// SetColour enables the colour mode registers types.VBK and types.SVBK.
func (m *MMU) SetColour(colour bool) {
	m.isGBC = colour
	if !colour {
		m.mapping.VRAM = 0
		m.mapping.WRAM = 1
	}
}

// IsGBC returns true if colour mode is enabled.
func (m *MMU) IsGBC() bool {
	return m.isGBC
}

// Mapping returns the active bank mapping.
func (m *MMU) Mapping() *types.Mapping {
	return m.mapping
}

// Attach forwards every access within r to p. Only I/O registers not
// owned by the MMU itself can be attached.
func (m *MMU) Attach(p types.Peripheral, r types.AddressRange) error {
	if r.From < 0xFF00 || r.To >= 0xFF80 || r.From > r.To {
		return fmt.Errorf("%w: 0x%04X-0x%04X", ErrInvalidRange, r.From, r.To)
	}
	for _, owned := range []uint16{types.IF, types.VBK, types.BDIS, types.SVBK} {
		if r.Contains(owned) {
			return fmt.Errorf("%w: 0x%04X is owned by the mmu", ErrInvalidRange, owned)
		}
	}
	for addr := r.From; addr <= r.To; addr++ {
		m.io[addr-0xFF00] = p
	}
	return nil
}

// Read returns the value at the given address. It handles all the memory
// banks, mirroring, I/O, etc.
func (m *MMU) Read(address uint16) uint8 {
	switch address >> 12 {
	case 0x0, 0x1, 0x2, 0x3:
		if m.mapping.Boot && m.bootROM != nil && m.bootROM.Contains(address) {
			return m.bootROM.Read(address)
		}
		return m.Cart.ROM[m.mapping.ROM0][address]
	case 0x4, 0x5, 0x6, 0x7:
		return m.Cart.ROM[m.mapping.ROM1][address&0x3FFF]
	case 0x8, 0x9:
		return m.vRAM[m.mapping.VRAM][address&0x1FFF]
	case 0xA, 0xB:
		if len(m.Cart.RAM) == 0 {
			return openBus
		}
		return m.Cart.RAM[m.mapping.RAM][address&0x1FFF]
	case 0xC, 0xD, 0xE:
		return m.wRAM.Read(address)
	}

	switch {
	case address < 0xFE00:
		return m.wRAM.Read(address)
	case address < 0xFEA0:
		return m.oam.Read(address - 0xFE00)
	case address < 0xFF00:
		m.Log.Debugf("mmu: read from unusable memory 0x%04X", address)
		return openBus
	case address < 0xFF80:
		return m.readIO(address)
	case address < 0xFFFF:
		return m.zRAM.Read(address - 0xFF80)
	default:
		return m.IRQ.Enable
	}
}

// Peek returns the value at address without reaching attached
// peripherals or logging. Unusable memory and the I/O registers read
// as open bus.
func (m *MMU) Peek(address uint16) uint8 {
	if address >= 0xFEA0 && address < 0xFF80 {
		return openBus
	}
	return m.Read(address)
}

func (m *MMU) readIO(address uint16) uint8 {
	switch address {
	case types.IF:
		return m.IRQ.ReadFlag()
	case types.BDIS:
		return openBus
	case types.VBK:
		if m.isGBC {
			return 0xFE | uint8(m.mapping.VRAM)
		}
	case types.SVBK:
		if m.isGBC {
			return 0xF8 | uint8(m.mapping.WRAM)
		}
	}

	if p := m.io[address-0xFF00]; p != nil {
		return p.ReadRegister(address)
	}
	m.Log.Debugf("mmu: unmapped read from 0x%04X", address)
	return openBus
}

// Write writes value to the given address. Writes to the ROM region
// are forwarded to the bank controller and never stored.
func (m *MMU) Write(address uint16, value uint8) {
	switch address >> 12 {
	case 0x0, 0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7:
		m.Cart.Controller.ROMWrite(address, value)
		return
	case 0x8, 0x9:
		m.vRAM[m.mapping.VRAM][address&0x1FFF] = value
		return
	case 0xA, 0xB:
		m.Cart.Controller.RAMWrite(address, value)
		return
	case 0xC, 0xD, 0xE:
		m.wRAM.Write(address, value)
		return
	}

	switch {
	case address < 0xFE00:
		m.wRAM.Write(address, value)
	case address < 0xFEA0:
		m.oam.Write(address-0xFE00, value)
	case address < 0xFF00:
		m.Log.Debugf("mmu: write 0x%02X to unusable memory 0x%04X", value, address)
	case address < 0xFF80:
		m.writeIO(address, value)
	case address < 0xFFFF:
		m.zRAM.Write(address-0xFF80, value)
	default:
		m.IRQ.Enable = value
	}
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch address {
	case types.IF:
		m.IRQ.WriteFlag(value)
		return
	case types.BDIS:
		// it's assumed any write to this register will disable the boot rom
		if m.mapping.Boot {
			m.Log.Debugf("mmu: boot rom unmapped")
		}
		m.mapping.Boot = false
		return
	case types.VBK:
		if m.isGBC {
			m.mapping.VRAM = int(value & 0x01)
			return
		}
	case types.SVBK:
		if m.isGBC {
			m.mapping.WRAM = int(utils.ZeroAdjust8(value & 0x07))
			return
		}
	}

	if p := m.io[address-0xFF00]; p != nil {
		p.WriteRegister(address, value)
		return
	}
	m.Log.Debugf("mmu: unmapped write 0x%02X to 0x%04X", value, address)
}

// Read16 reads a little-endian word at address.
func (m *MMU) Read16(address uint16) uint16 {
	return utils.BytesToUint16(m.Read(address+1), m.Read(address))
}

// Write16 writes a little-endian word at address.
func (m *MMU) Write16(address uint16, value uint16) {
	high, low := utils.Uint16ToBytes(value)
	m.Write(address, low)
	m.Write(address+1, high)
}

// CheckMapping verifies every index of the active mapping selects a bank
// that exists.
func (m *MMU) CheckMapping() error {
	banks := []struct {
		name         string
		index, count int
	}{
		{"ROM0", m.mapping.ROM0, len(m.Cart.ROM)},
		{"ROM1", m.mapping.ROM1, len(m.Cart.ROM)},
		{"VRAM", m.mapping.VRAM, len(m.vRAM)},
		{"RAM", m.mapping.RAM, max(len(m.Cart.RAM), 1)},
		{"WRAM", m.mapping.WRAM, len(m.wRAM.raw)},
	}
	for _, b := range banks {
		if b.index < 0 || b.index >= b.count {
			return fmt.Errorf("%w: %s bank %d of %d", ErrInvalidMapping, b.name, b.index, b.count)
		}
	}
	return nil
}

var _ types.Stater = (*MMU)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - Mapping
//   - VRAM ([2][0x2000]uint8)
//   - WRAM
//   - OAM
//   - Zero Page RAM
//   - IRQ
func (m *MMU) Load(s *types.State) {
	m.mapping.Load(s)
	for i := range m.vRAM {
		s.ReadData(m.vRAM[i][:])
	}
	m.wRAM.Load(s)
	m.oam.Load(s)
	m.zRAM.Load(s)
	m.IRQ.Load(s)
}

// Save implements the types.Stater interface.
func (m *MMU) Save(s *types.State) {
	m.mapping.Save(s)
	for i := range m.vRAM {
		s.WriteData(m.vRAM[i][:])
	}
	m.wRAM.Save(s)
	m.oam.Save(s)
	m.zRAM.Save(s)
	m.IRQ.Save(s)
}
