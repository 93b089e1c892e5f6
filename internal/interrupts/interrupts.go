package interrupts

import (
	"github.com/thelolagemann/gbcore/internal/types"
)

const (
	// VBlankFlag is the VBlank interrupt flag (bit 0),
	// which is requested every time the display controller
	// enters VBlank.
	VBlankFlag = types.Bit0
	// LCDFlag is the LCD interrupt flag (bit 1), which
	// is requested by the LCD STAT register when certain
	// conditions are met.
	LCDFlag = types.Bit1
	// TimerFlag is the Timer interrupt flag (bit 2),
	// which is requested when the timer overflows.
	TimerFlag = types.Bit2
	// SerialFlag is the Serial interrupt flag (bit 3),
	// which is requested when a serial transfer is
	// completed.
	SerialFlag = types.Bit3
	// JoypadFlag is the Joypad interrupt Flag (bit 4),
	// which is requested when any of the selected joypad
	// lines go from high to low.
	JoypadFlag = types.Bit4

	// Mask covers the five interrupt sources.
	Mask = 0x1F
)

// Vectors holds the fixed interrupt vectors, in IF/IE bit order.
var Vectors = [5]uint16{0x0040, 0x0048, 0x0050, 0x0058, 0x0060}

// Highest returns the flag and vector of the highest priority
// interrupt in pending. Bit 0 has the highest priority, bit 4 the
// lowest. If no interrupt is pending, ok is false.
func Highest(pending uint8) (flag uint8, vector uint16, ok bool) {
	for i := uint8(0); i < 5; i++ {
		flag = 1 << i
		if pending&flag != 0 {
			return flag, Vectors[i], true
		}
	}

	return 0, 0, false
}

// Service holds the interrupt request and enable registers.
//
// When an interrupt is requested, the corresponding bit
// in the Flag register is set. When an interrupt is
// enabled, the corresponding bit in the Enable register
// is set. When an interrupt is requested and enabled,
// and the IME is set, the CPU will jump to the interrupt
// vector, and the corresponding bit in the Flag register
// will be cleared.
type Service struct {
	Flag   uint8 // interrupt Flag (types.IF)
	Enable uint8 // interrupt Enable (types.IE)
}

// NewService returns a new Service.
func NewService() *Service {
	return &Service{}
}

// ReadFlag returns the IF register. The upper 3 bits are always set.
func (s *Service) ReadFlag() uint8 {
	return s.Flag | 0xE0
}

// WriteFlag writes the IF register, only the first 5 bits are used.
func (s *Service) WriteFlag(v uint8) {
	s.Flag = v & Mask
}

// Request requests the specified interrupt, by setting
// the corresponding bit in the Flag register.
func (s *Service) Request(flag uint8) {
	s.Flag |= flag & Mask
}

var _ types.Stater = (*Service)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - Flag (uint8)
//   - Enable (uint8)
func (s *Service) Load(st *types.State) {
	s.Flag = st.Read8()
	s.Enable = st.Read8()
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - Flag (uint8)
//   - Enable (uint8)
func (s *Service) Save(st *types.State) {
	st.Write8(s.Flag)
	st.Write8(s.Enable)
}
