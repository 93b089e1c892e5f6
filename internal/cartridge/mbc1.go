package cartridge

import (
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/utils"
)

// MemoryBankedCartridge1 represents a MBC1 cartridge. It supports up to
// 2MB of ROM and 32KB of RAM. A shared 2-bit register either extends the
// ROM bank number or, in banking mode 1, selects the RAM bank and the
// bank mapped at 0x0000.
type MemoryBankedCartridge1 struct {
	*memoryBankedCartridge

	bank1 uint8 // lower 5 bits of the ROM bank, never 0
	bank2 uint8 // upper 2 bits of the ROM bank, or the RAM bank
	mode  bool  // banking mode 1 when set
}

func newMBC1(c *Cartridge) BankController {
	return &MemoryBankedCartridge1{
		memoryBankedCartridge: &memoryBankedCartridge{Cartridge: c},
		bank1:                 1,
	}
}

// ROMWrite updates the bank registers.
//
//	0x0000-0x1FFF RAM enable (0x0A in the lower nibble)
//	0x2000-0x3FFF ROM bank, lower 5 bits (0 selects 1)
//	0x4000-0x5FFF RAM bank or ROM bank, upper 2 bits
//	0x6000-0x7FFF banking mode
func (m *MemoryBankedCartridge1) ROMWrite(address uint16, value uint8) {
	switch address & 0x6000 {
	case 0x0000:
		m.setRAMEnabled(value&0x0F == 0x0A)
	case 0x2000:
		m.bank1 = utils.ZeroAdjust8(value & 0x1F)
	case 0x4000:
		m.bank2 = value & 0x03
	case 0x6000:
		m.mode = value&0x01 == 0x01
	}
	m.update()
}

// update recomputes the mapping from the bank registers.
func (m *MemoryBankedCartridge1) update() {
	m.Mapping.ROM1 = m.romBank(int(m.bank2)<<5 | int(m.bank1))
	if m.mode {
		m.Mapping.ROM0 = m.romBank(int(m.bank2) << 5)
		m.Mapping.RAM = m.ramBank(int(m.bank2))
	} else {
		m.Mapping.ROM0 = 0
		m.Mapping.RAM = 0
	}
}

var _ types.Stater = (*MemoryBankedCartridge1)(nil)

// Load implements the types.Stater interface.
func (m *MemoryBankedCartridge1) Load(s *types.State) {
	m.ramEnabled = s.ReadBool()
	m.bank1 = s.Read8()
	m.bank2 = s.Read8()
	m.mode = s.ReadBool()
}

// Save implements the types.Stater interface.
func (m *MemoryBankedCartridge1) Save(s *types.State) {
	s.WriteBool(m.ramEnabled)
	s.Write8(m.bank1)
	s.Write8(m.bank2)
	s.WriteBool(m.mode)
}
