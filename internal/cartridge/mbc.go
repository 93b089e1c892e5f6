package cartridge

import (
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/utils"
)

// BankController translates writes into bank selections. ROMWrite is
// called for every write to 0x0000-0x7FFF and is the only way the
// selected banks change. RAMWrite is called for every write to
// 0xA000-0xBFFF; reads of that region go straight to the mapped bank.
type BankController interface {
	ROMWrite(address uint16, value uint8)
	RAMWrite(address uint16, value uint8)

	types.Stater
}

// memoryBankedCartridge holds the state shared by every controller.
type memoryBankedCartridge struct {
	*Cartridge

	ramEnabled bool
}

// setRAMEnabled updates the RAM gate, persisting the RAM when it goes
// from enabled to disabled.
func (m *memoryBankedCartridge) setRAMEnabled(enabled bool) {
	if m.ramEnabled && !enabled {
		m.persist()
	}
	m.ramEnabled = enabled
}

// romBank wraps bank into the number of ROM banks present.
func (m *memoryBankedCartridge) romBank(bank int) int {
	return bank & utils.BankMask(len(m.ROM)) % len(m.ROM)
}

// ramBank wraps bank into the number of RAM banks present.
func (m *memoryBankedCartridge) ramBank(bank int) int {
	if len(m.RAM) == 0 {
		return 0
	}
	return bank & utils.BankMask(len(m.RAM)) % len(m.RAM)
}

// writeRAM stores value in the mapped RAM bank while RAM is enabled.
func (m *memoryBankedCartridge) writeRAM(address uint16, value uint8) {
	if !m.ramEnabled || len(m.RAM) == 0 {
		return
	}
	m.RAM[m.Mapping.RAM][address&0x1FFF] = value
}

func (m *memoryBankedCartridge) RAMWrite(address uint16, value uint8) {
	m.writeRAM(address, value)
}

// noController is used by cartridges without bank switching. Writes
// to the ROM region are logged and dropped, and RAM, if present, is
// always enabled.
type noController struct {
	*memoryBankedCartridge
}

func newNoController(c *Cartridge) BankController {
	return &noController{&memoryBankedCartridge{Cartridge: c, ramEnabled: true}}
}

func (n *noController) ROMWrite(address uint16, value uint8) {
	n.log.Debugf("cartridge: ignoring write 0x%02X to 0x%04X on %s", value, address, n.CartridgeType)
}

func (n *noController) Load(*types.State) {}
func (n *noController) Save(*types.State) {}
