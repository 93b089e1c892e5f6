package cartridge

import "github.com/thelolagemann/gbcore/internal/types"

// MemoryBankedCartridge5 represents a MBC5 cartridge. It supports up to
// 8MB of ROM and 128KB of RAM. Unlike the earlier controllers, bank 0
// can be mapped at 0x4000.
type MemoryBankedCartridge5 struct {
	*memoryBankedCartridge

	romBankNumber uint16 // 9 bits
	ramBankNumber uint8  // 4 bits
}

func newMBC5(c *Cartridge) BankController {
	return &MemoryBankedCartridge5{
		memoryBankedCartridge: &memoryBankedCartridge{Cartridge: c},
		romBankNumber:         1,
	}
}

// ROMWrite updates the bank registers.
//
//	0x0000-0x1FFF RAM enable
//	0x2000-0x2FFF ROM bank, lower 8 bits
//	0x3000-0x3FFF ROM bank, bit 8
//	0x4000-0x5FFF RAM bank (bit 3 drives the rumble motor on rumble carts)
func (m *MemoryBankedCartridge5) ROMWrite(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.setRAMEnabled(value&0x0F == 0x0A)
	case address < 0x3000:
		m.romBankNumber = m.romBankNumber&0x100 | uint16(value)
		m.Mapping.ROM1 = m.romBank(int(m.romBankNumber))
	case address < 0x4000:
		m.romBankNumber = m.romBankNumber&0xFF | uint16(value&0x01)<<8
		m.Mapping.ROM1 = m.romBank(int(m.romBankNumber))
	case address < 0x6000:
		m.ramBankNumber = value & 0x0F
		if m.features.rumble {
			m.ramBankNumber &= 0x07
		}
		m.Mapping.RAM = m.ramBank(int(m.ramBankNumber))
	}
}

var _ types.Stater = (*MemoryBankedCartridge5)(nil)

func (m *MemoryBankedCartridge5) Load(s *types.State) {
	m.ramEnabled = s.ReadBool()
	m.romBankNumber = s.Read16()
	m.ramBankNumber = s.Read8()
}

func (m *MemoryBankedCartridge5) Save(s *types.State) {
	s.WriteBool(m.ramEnabled)
	s.Write16(m.romBankNumber)
	s.Write8(m.ramBankNumber)
}
