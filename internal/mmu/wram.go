package mmu

import "github.com/thelolagemann/gbcore/internal/types"

// WRAM is the working RAM at 0xC000 - 0xDFFF, mirrored by the echo
// region at 0xE000 - 0xFDFF. Bank 0 is fixed, the bank mapped at
// 0xD000 is taken from the mapping.
type WRAM struct {
	mapping *types.Mapping
	raw     [8][0x1000]uint8
}

func NewWRAM(mapping *types.Mapping) *WRAM {
	return &WRAM{mapping: mapping}
}

// bank returns the bank and offset for an address in 0xC000 - 0xFDFF.
func (w *WRAM) bank(addr uint16) (*[0x1000]uint8, uint16) {
	// the echo region has the same layout, 0x2000 higher
	if addr&0x1000 == 0 {
		return &w.raw[0], addr & 0xFFF
	}
	return &w.raw[w.mapping.WRAM&7], addr & 0xFFF
}

func (w *WRAM) Read(addr uint16) uint8 {
	b, offset := w.bank(addr)
	return b[offset]
}

func (w *WRAM) Write(addr uint16, v uint8) {
	b, offset := w.bank(addr)
	b[offset] = v
}

var _ types.Stater = (*WRAM)(nil)

func (w *WRAM) Load(s *types.State) {
	for i := range w.raw {
		s.ReadData(w.raw[i][:])
	}
}

func (w *WRAM) Save(s *types.State) {
	for i := range w.raw {
		s.WriteData(w.raw[i][:])
	}
}
