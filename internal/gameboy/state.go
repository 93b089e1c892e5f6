package gameboy

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/thelolagemann/gbcore/internal/types"
)

const (
	stateMagic   = "GBST"
	stateVersion = 1
)

var (
	// ErrInvalidState is returned when save state data cannot be read.
	ErrInvalidState = errors.New("gameboy: invalid save state")
	// ErrStateMismatch is returned when a save state belongs to another
	// cartridge.
	ErrStateMismatch = errors.New("gameboy: save state is for a different cartridge")
)

var _ types.Stater = (*GameBoy)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - CPU
//   - MMU
//   - Cartridge
//   - Cycles (uint32 low, uint32 high)
//   - Serial debugger (bool present, then its registers)
//
// Serial registers saved by a Game Boy with a serial debugger are
// skipped by one without.
func (g *GameBoy) Load(s *types.State) {
	g.CPU.Load(s)
	g.MMU.Load(s)
	g.Cartridge.Load(s)
	g.cycles = uint64(s.Read32()) | uint64(s.Read32())<<32
	if s.ReadBool() {
		serial := g.serial
		if serial == nil {
			serial = &serialDebugger{}
		}
		serial.Load(s)
	}
}

// Save implements the types.Stater interface.
func (g *GameBoy) Save(s *types.State) {
	g.CPU.Save(s)
	g.MMU.Save(s)
	g.Cartridge.Save(s)
	s.Write32(uint32(g.cycles))
	s.Write32(uint32(g.cycles >> 32))
	s.WriteBool(g.serial != nil)
	if g.serial != nil {
		g.serial.Save(s)
	}
}

// SaveState returns a compressed snapshot of the running Game Boy.
func (g *GameBoy) SaveState() ([]byte, error) {
	s := types.NewState()
	s.WriteData([]byte(stateMagic))
	s.Write8(stateVersion)
	s.Write32(uint32(g.Cartridge.Checksum()))
	s.Write32(uint32(g.Cartridge.Checksum() >> 32))
	g.Save(s)

	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(s.Bytes()); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadState restores a snapshot taken with SaveState. If the snapshot
// is short or maps banks that do not exist, the Game Boy is left as it
// was.
func (g *GameBoy) LoadState(b []byte) error {
	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(b)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	s := types.StateFromBytes(raw)

	magic := make([]byte, len(stateMagic))
	s.ReadData(magic)
	if string(magic) != stateMagic {
		return fmt.Errorf("%w: bad magic", ErrInvalidState)
	}
	if v := s.Read8(); v != stateVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidState, v)
	}
	if sum := uint64(s.Read32()) | uint64(s.Read32())<<32; sum != g.Cartridge.Checksum() {
		return fmt.Errorf("%w: %016x", ErrStateMismatch, sum)
	}

	backup := types.NewState()
	g.Save(backup)
	g.Load(s)
	err = s.Err()
	if err == nil {
		err = g.MMU.CheckMapping()
	}
	if err != nil {
		g.Load(types.StateFromBytes(backup.Bytes()))
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}
