package cartridge

import (
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/utils"
)

// MemoryBankedCartridge2 represents a MBC2 cartridge. It supports up to
// 256KB of ROM and has 512 half-bytes of RAM built in, which repeat
// through 0xA000-0xBFFF.
type MemoryBankedCartridge2 struct {
	*memoryBankedCartridge

	bank uint8
}

func newMBC2(c *Cartridge) BankController {
	return &MemoryBankedCartridge2{
		memoryBankedCartridge: &memoryBankedCartridge{Cartridge: c},
		bank:                  1,
	}
}

// ROMWrite updates the RAM gate or the ROM bank. Bit 8 of the address
// selects between the two, and only 0x0000-0x3FFF is decoded.
func (m *MemoryBankedCartridge2) ROMWrite(address uint16, value uint8) {
	if address >= 0x4000 {
		return
	}
	if address&0x0100 == 0 {
		m.setRAMEnabled(value&0x0F == 0x0A)
		return
	}

	m.bank = utils.ZeroAdjust8(value & 0x0F)
	m.Mapping.ROM1 = m.romBank(int(m.bank))
}

// RAMWrite stores the lower nibble at every mirror of the address, so
// reads of the bank see the repeated 4-bit RAM with the upper bits set.
func (m *MemoryBankedCartridge2) RAMWrite(address uint16, value uint8) {
	if !m.ramEnabled || len(m.RAM) == 0 {
		return
	}
	value |= 0xF0
	for offset := address & 0x01FF; offset < RAMBankSize; offset += 0x0200 {
		m.RAM[0][offset] = value
	}
}

var _ types.Stater = (*MemoryBankedCartridge2)(nil)

func (m *MemoryBankedCartridge2) Load(s *types.State) {
	m.ramEnabled = s.ReadBool()
	m.bank = s.Read8()
}

func (m *MemoryBankedCartridge2) Save(s *types.State) {
	s.WriteBool(m.ramEnabled)
	s.Write8(m.bank)
}
