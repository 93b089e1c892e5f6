package gameboy

import (
	"io"

	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/types"
)

// transferStart is the value of SC that starts a transfer on the
// internal clock.
const transferStart = 0x81

// serialDebugger intercepts serial transfers. With no link partner the
// transfer completes immediately, shifting 0xFF into SB.
type serialDebugger struct {
	w   io.Writer
	irq *interrupts.Service

	data    uint8
	control uint8
}

func (s *serialDebugger) ReadRegister(address uint16) uint8 {
	switch address {
	case types.SB:
		return s.data
	case types.SC:
		return s.control | 0x7E
	}
	return 0xFF
}

func (s *serialDebugger) WriteRegister(address uint16, value uint8) {
	switch address {
	case types.SB:
		s.data = value
	case types.SC:
		s.control = value & transferStart
		if s.control != transferStart {
			return
		}
		_, _ = s.w.Write([]byte{s.data})
		s.data = 0xFF
		s.control &^= types.Bit7
		s.irq.Request(interrupts.SerialFlag)
	}
}

var _ types.Stater = (*serialDebugger)(nil)

func (s *serialDebugger) Load(st *types.State) {
	s.data = st.Read8()
	s.control = st.Read8()
}

func (s *serialDebugger) Save(st *types.State) {
	st.Write8(s.data)
	st.Write8(s.control)
}
