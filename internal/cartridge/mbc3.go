package cartridge

import (
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/utils"
)

// MemoryBankedCartridge3 represents a MBC3 cartridge. It supports up to
// 2MB of ROM and 32KB of RAM. The real time clock registers are not
// emulated: selecting one is logged, and the RAM region stays
// read-only until a RAM bank is selected again.
type MemoryBankedCartridge3 struct {
	*memoryBankedCartridge

	romBankNumber uint8
	ramBankNumber uint8
	rtcSelected   bool
}

func newMBC3(c *Cartridge) BankController {
	return &MemoryBankedCartridge3{
		memoryBankedCartridge: &memoryBankedCartridge{Cartridge: c},
		romBankNumber:         1,
	}
}

// ROMWrite updates the bank registers.
//
//	0x0000-0x1FFF RAM and RTC enable
//	0x2000-0x3FFF ROM bank, 7 bits (0 selects 1)
//	0x4000-0x5FFF RAM bank (0x00-0x03) or RTC register (0x08-0x0C)
//	0x6000-0x7FFF RTC latch
func (m *MemoryBankedCartridge3) ROMWrite(address uint16, value uint8) {
	switch address & 0x6000 {
	case 0x0000:
		m.setRAMEnabled(value&0x0F == 0x0A)
	case 0x2000:
		m.romBankNumber = utils.ZeroAdjust8(value & 0x7F)
		m.Mapping.ROM1 = m.romBank(int(m.romBankNumber))
	case 0x4000:
		switch {
		case value <= 0x03:
			m.rtcSelected = false
			m.ramBankNumber = value
			m.Mapping.RAM = m.ramBank(int(value))
		case value >= 0x08 && value <= 0x0C:
			m.rtcSelected = true
			m.log.Debugf("cartridge: RTC register 0x%02X selected, clock not emulated", value)
		default:
			m.log.Debugf("cartridge: ignoring MBC3 bank select 0x%02X", value)
		}
	case 0x6000:
		m.log.Debugf("cartridge: ignoring RTC latch 0x%02X", value)
	}
}

func (m *MemoryBankedCartridge3) RAMWrite(address uint16, value uint8) {
	if m.rtcSelected {
		return
	}
	m.writeRAM(address, value)
}

var _ types.Stater = (*MemoryBankedCartridge3)(nil)

func (m *MemoryBankedCartridge3) Load(s *types.State) {
	m.ramEnabled = s.ReadBool()
	m.romBankNumber = s.Read8()
	m.ramBankNumber = s.Read8()
	m.rtcSelected = s.ReadBool()
}

func (m *MemoryBankedCartridge3) Save(s *types.State) {
	s.WriteBool(m.ramEnabled)
	s.Write8(m.romBankNumber)
	s.Write8(m.ramBankNumber)
	s.WriteBool(m.rtcSelected)
}
