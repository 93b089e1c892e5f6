package types

import (
	"errors"
)

// ErrShortState is returned by State.Err when a read ran past the end
// of the state data.
var ErrShortState = errors.New("state: unexpected end of data")

// State represents the emulator state. This is used to
// save and load states between runs.
type State struct {
	raw          []byte // raw state data (for serialization)
	readPosition int    // current read position
	short        bool   // set once a read runs out of data
}

// Stater is an interface that allows an object to be saved
// and loaded from a state.
type Stater interface {
	Load(*State) // Load the state of the object
	Save(*State) // Save the state of the object
}

// NewState creates a new state.
func NewState() *State {
	return &State{
		raw: make([]byte, 0),
	}
}

// StateFromBytes creates a new state from the given bytes.
func StateFromBytes(raw []byte) *State {
	return &State{
		raw: raw,
	}
}

func (s *State) Write8(value uint8) {
	s.raw = append(s.raw, value)
}

func (s *State) Write16(value uint16) {
	s.raw = append(s.raw, byte(value), byte(value>>8))
}

func (s *State) Write32(value uint32) {
	s.raw = append(s.raw, byte(value), byte(value>>8), byte(value>>16), byte(value>>24))
}

func (s *State) WriteBool(value bool) {
	if value {
		s.raw = append(s.raw, 1)
	} else {
		s.raw = append(s.raw, 0)
	}
}

func (s *State) WriteData(data []byte) {
	s.raw = append(s.raw, data...)
}

// take returns the next n bytes, or nil if fewer than n remain.
func (s *State) take(n int) []byte {
	if s.readPosition+n > len(s.raw) {
		s.short = true
		s.readPosition = len(s.raw)
		return nil
	}
	b := s.raw[s.readPosition : s.readPosition+n]
	s.readPosition += n
	return b
}

func (s *State) Read8() uint8 {
	b := s.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (s *State) Read16() uint16 {
	b := s.take(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

func (s *State) Read32() uint32 {
	b := s.take(4)
	if b == nil {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func (s *State) ReadBool() bool {
	return s.Read8() != 0
}

func (s *State) ReadData(p []byte) {
	copy(p, s.take(len(p)))
}

// Err returns ErrShortState if any read ran past the end of the data.
func (s *State) Err() error {
	if s.short {
		return ErrShortState
	}
	return nil
}

func (s *State) Bytes() []byte {
	return s.raw
}
