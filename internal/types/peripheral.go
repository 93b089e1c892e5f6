package types

// Peripheral is a device that exposes memory-mapped registers to the
// CPU, such as the joypad, the serial port, the timer, etc. The memory
// unit forwards every access within the peripheral's assigned
// AddressRange verbatim.
type Peripheral interface {
	// ReadRegister returns the value of the register at address.
	ReadRegister(address uint16) uint8
	// WriteRegister writes value to the register at address.
	WriteRegister(address uint16, value uint8)
}

// Clocked is a component that advances with the CPU clock. Tick is
// called by the driving loop with the number of cycles consumed by the
// last CPU step, never by the CPU itself.
type Clocked interface {
	Tick(cycles uint8)
}

// Mapping is the Active Bank Mapping of the address space. Each field
// indexes into the corresponding bank array of the memory unit.
type Mapping struct {
	ROM0 int // bank mapped at 0x0000 - 0x3FFF
	ROM1 int // bank mapped at 0x4000 - 0x7FFF
	VRAM int // bank mapped at 0x8000 - 0x9FFF
	RAM  int // bank mapped at 0xA000 - 0xBFFF
	WRAM int // bank mapped at 0xD000 - 0xDFFF

	// Boot is set while the boot ROM overlays the cartridge.
	Boot bool
}

// NewMapping returns the power-on Mapping.
func NewMapping() *Mapping {
	return &Mapping{
		ROM1: 1,
		WRAM: 1,
	}
}

var _ Stater = (*Mapping)(nil)

// Load implements the Stater interface.
func (m *Mapping) Load(s *State) {
	m.ROM0 = int(s.Read16())
	m.ROM1 = int(s.Read16())
	m.VRAM = int(s.Read8())
	m.RAM = int(s.Read8())
	m.WRAM = int(s.Read8())
	m.Boot = s.ReadBool()
}

// Save implements the Stater interface.
func (m *Mapping) Save(s *State) {
	s.Write16(uint16(m.ROM0))
	s.Write16(uint16(m.ROM1))
	s.Write8(uint8(m.VRAM))
	s.Write8(uint8(m.RAM))
	s.Write8(uint8(m.WRAM))
	s.WriteBool(m.Boot)
}
