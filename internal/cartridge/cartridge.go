// Package cartridge provides the game cartridge for the DMG and CGB.
// The cartridge holds the game ROM and any external RAM, along with the
// bank controller that decides which banks are visible.
package cartridge

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

const (
	// ROMBankSize is the size of a single ROM bank.
	ROMBankSize = 0x4000
	// RAMBankSize is the size of a single external RAM bank.
	RAMBankSize = 0x2000
)

// ErrUnsupportedType is returned for cartridge type bytes without a
// bank controller.
var ErrUnsupportedType = errors.New("cartridge: unsupported cartridge type")

// Persister stores battery backed RAM between sessions.
type Persister interface {
	// LoadRAM returns the banks previously saved under key.
	LoadRAM(key string, banks int) ([][RAMBankSize]byte, error)
	// SaveRAM stores banks under key.
	SaveRAM(key string, banks [][RAMBankSize]byte) error
}

// features describes the hardware present for a cartridge type.
type features struct {
	controller func(c *Cartridge) BankController
	ram        bool
	battery    bool
	rumble     bool
}

var supported = map[Type]features{
	ROM:               {controller: newNoController},
	ROMRAM:            {controller: newNoController, ram: true},
	ROMRAMBATT:        {controller: newNoController, ram: true, battery: true},
	MBC1:              {controller: newMBC1},
	MBC1RAM:           {controller: newMBC1, ram: true},
	MBC1RAMBATT:       {controller: newMBC1, ram: true, battery: true},
	MBC2:              {controller: newMBC2, ram: true},
	MBC2BATT:          {controller: newMBC2, ram: true, battery: true},
	MBC3TIMERBATT:     {controller: newMBC3, battery: true},
	MBC3TIMERRAMBATT:  {controller: newMBC3, ram: true, battery: true},
	MBC3:              {controller: newMBC3},
	MBC3RAM:           {controller: newMBC3, ram: true},
	MBC3RAMBATT:       {controller: newMBC3, ram: true, battery: true},
	MBC5:              {controller: newMBC5},
	MBC5RAM:           {controller: newMBC5, ram: true},
	MBC5RAMBATT:       {controller: newMBC5, ram: true, battery: true},
	MBC5RUMBLE:        {controller: newMBC5, rumble: true},
	MBC5RUMBLERAM:     {controller: newMBC5, ram: true, rumble: true},
	MBC5RUMBLERAMBATT: {controller: newMBC5, ram: true, battery: true, rumble: true},
}

// Cartridge represents a game cartridge.
type Cartridge struct {
	Header

	// ROM and RAM hold every physical bank of the cartridge.
	ROM [][ROMBankSize]byte
	RAM [][RAMBankSize]byte

	// Mapping holds the active ROM0, ROM1 and RAM bank indices. It is
	// shared with the memory unit, which owns the remaining indices.
	Mapping *types.Mapping

	// Controller translates writes into bank selections.
	Controller BankController

	features  features
	checksum  uint64
	persister Persister
	log       log.Logger
}

// Opt is a function that configures a Cartridge.
type Opt func(c *Cartridge)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l log.Logger) Opt {
	return func(c *Cartridge) {
		c.log = l
	}
}

// WithPersister sets where battery backed RAM is loaded from and saved to.
func WithPersister(p Persister) Opt {
	return func(c *Cartridge) {
		c.persister = p
	}
}

// New parses the header of rom and creates a cartridge with the bank
// controller its type requires.
func New(rom []byte, opts ...Opt) (*Cartridge, error) {
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	f, ok := supported[header.CartridgeType]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X (%s)", ErrUnsupportedType, uint8(header.CartridgeType), header.CartridgeType)
	}

	c := &Cartridge{
		Header:   header,
		Mapping:  types.NewMapping(),
		features: f,
		checksum: xxhash.Sum64(rom),
		log:      log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if sum := c.ComputeChecksum(); sum != c.HeaderChecksum {
		c.log.Warnf("cartridge: header checksum mismatch: expected 0x%02X, got 0x%02X", c.HeaderChecksum, sum)
	}

	// allocate enough banks for the header and the image, whichever is larger
	romBanks := (len(rom) + ROMBankSize - 1) / ROMBankSize
	if header.ROMBanks > romBanks {
		romBanks = header.ROMBanks
	}
	if romBanks < 2 {
		romBanks = 2
	}
	c.ROM = make([][ROMBankSize]byte, romBanks)
	for i := range c.ROM {
		if i*ROMBankSize >= len(rom) {
			break
		}
		copy(c.ROM[i][:], rom[i*ROMBankSize:])
	}

	switch {
	case !f.ram:
		c.RAMBanks = 0
	case c.CartridgeType == MBC2 || c.CartridgeType == MBC2BATT:
		c.RAMBanks = 1
	case c.RAMBanks == 0:
		c.log.Debugf("cartridge: %s declares no RAM", c.CartridgeType)
	}
	c.RAM = make([][RAMBankSize]byte, c.RAMBanks)
	c.restore()

	c.Controller = f.controller(c)
	c.log.Infof("cartridge: %s", c.Header.String())

	return c, nil
}

// Checksum returns the xxhash of the full ROM image.
func (c *Cartridge) Checksum() uint64 {
	return c.checksum
}

// Key identifies the cartridge for battery saves.
func (c *Cartridge) Key() string {
	title := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, c.Title)
	if title == "" {
		title = "untitled"
	}
	return fmt.Sprintf("%s-%016x", title, c.checksum)
}

// HasBattery returns true if the RAM of the cartridge is battery backed.
func (c *Cartridge) HasBattery() bool {
	return c.features.battery && len(c.RAM) > 0
}

// restore loads persisted RAM, falling back to zero filled banks.
func (c *Cartridge) restore() {
	if !c.HasBattery() || c.persister == nil {
		return
	}
	banks, err := c.persister.LoadRAM(c.Key(), len(c.RAM))
	switch {
	case err != nil:
		c.log.Warnf("cartridge: ignoring saved RAM: %v", err)
	case banks == nil:
	case len(banks) != len(c.RAM):
		c.log.Warnf("cartridge: ignoring saved RAM: expected %d banks, got %d", len(c.RAM), len(banks))
	default:
		copy(c.RAM, banks)
	}
}

// Persist saves the battery backed RAM, if any.
func (c *Cartridge) Persist() error {
	if !c.HasBattery() || c.persister == nil {
		return nil
	}
	if err := c.persister.SaveRAM(c.Key(), c.RAM); err != nil {
		return fmt.Errorf("cartridge: saving RAM: %w", err)
	}
	return nil
}

// persist is used by the controllers when RAM is disabled.
func (c *Cartridge) persist() {
	if err := c.Persist(); err != nil {
		c.log.Errorf("%v", err)
	}
}

var _ types.Stater = (*Cartridge)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - RAM banks ([]byte)
//   - Controller state
func (c *Cartridge) Load(s *types.State) {
	for i := range c.RAM {
		s.ReadData(c.RAM[i][:])
	}
	c.Controller.Load(s)
}

// Save implements the types.Stater interface.
func (c *Cartridge) Save(s *types.State) {
	for i := range c.RAM {
		s.WriteData(c.RAM[i][:])
	}
	c.Controller.Save(s)
}
