package cartridge

import (
	"errors"
	"fmt"
	"strings"
)

// Flag is the colour compatibility flag of a cartridge.
type Flag uint8

const (
	FlagOnlyDMG Flag = iota
	FlagSupportsCGB
	FlagOnlyCGB
)

// Type is the cartridge type byte at 0x0147, which selects the bank
// controller and any extra hardware.
type Type uint8

const (
	ROM               Type = 0x00
	MBC1              Type = 0x01
	MBC1RAM           Type = 0x02
	MBC1RAMBATT       Type = 0x03
	MBC2              Type = 0x05
	MBC2BATT          Type = 0x06
	ROMRAM            Type = 0x08
	ROMRAMBATT        Type = 0x09
	MMM01             Type = 0x0B
	MMM01RAM          Type = 0x0C
	MMM01RAMBATT      Type = 0x0D
	MBC3TIMERBATT     Type = 0x0F
	MBC3TIMERRAMBATT  Type = 0x10
	MBC3              Type = 0x11
	MBC3RAM           Type = 0x12
	MBC3RAMBATT       Type = 0x13
	MBC5              Type = 0x19
	MBC5RAM           Type = 0x1A
	MBC5RAMBATT       Type = 0x1B
	MBC5RUMBLE        Type = 0x1C
	MBC5RUMBLERAM     Type = 0x1D
	MBC5RUMBLERAMBATT Type = 0x1E
	POCKETCAMERA      Type = 0x1F
	BANDAITAMA5       Type = 0xFD
	HUDSONHUC3        Type = 0xFE
	HUDSONHUC1        Type = 0xFF
)

var typeNames = map[Type]string{
	ROM:               "ROM ONLY",
	MBC1:              "MBC1",
	MBC1RAM:           "MBC1+RAM",
	MBC1RAMBATT:       "MBC1+RAM+BATTERY",
	MBC2:              "MBC2",
	MBC2BATT:          "MBC2+BATTERY",
	ROMRAM:            "ROM+RAM",
	ROMRAMBATT:        "ROM+RAM+BATTERY",
	MMM01:             "MMM01",
	MMM01RAM:          "MMM01+RAM",
	MMM01RAMBATT:      "MMM01+RAM+BATTERY",
	MBC3TIMERBATT:     "MBC3+TIMER+BATTERY",
	MBC3TIMERRAMBATT:  "MBC3+TIMER+RAM+BATTERY",
	MBC3:              "MBC3",
	MBC3RAM:           "MBC3+RAM",
	MBC3RAMBATT:       "MBC3+RAM+BATTERY",
	MBC5:              "MBC5",
	MBC5RAM:           "MBC5+RAM",
	MBC5RAMBATT:       "MBC5+RAM+BATTERY",
	MBC5RUMBLE:        "MBC5+RUMBLE",
	MBC5RUMBLERAM:     "MBC5+RUMBLE+RAM",
	MBC5RUMBLERAMBATT: "MBC5+RUMBLE+RAM+BATTERY",
	POCKETCAMERA:      "POCKET CAMERA",
	BANDAITAMA5:       "BANDAI TAMA5",
	HUDSONHUC3:        "HuC3",
	HUDSONHUC1:        "HuC1+RAM+BATTERY",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown (0x%02X)", uint8(t))
}

// ramBanks maps the RAM size code at 0x0149 to a number of 8KB banks.
// The 2KB code still occupies a whole bank.
var ramBanks = map[uint8]int{
	0x00: 0,
	0x01: 1,
	0x02: 1,
	0x03: 4,
	0x04: 16,
	0x05: 8,
}

// ErrInvalidROM is returned when a ROM image is too short to hold a header.
var ErrInvalidROM = errors.New("cartridge: rom too short for header")

// Header represents the header of a cartridge, each cartridge has a header and is
// located at the address space 0x0100-0x014F. The header contains information about
// the cartridge itself, and the hardware it expects to run on.
type Header struct {
	// 0x0134-0x0143 - Title of the game
	Title string

	// 0x013F-0x0142 - ManufacturerCode of the game
	ManufacturerCode string

	// 0x0143 - CartridgeGBMode of the game. In older cartridges this byte was part
	// of the title, but the Colour Game Boy and later models interpret this byte
	// to determine if the cartridge is compatible with the Colour Game Boy.
	CartridgeGBMode Flag

	// 0x0144-0x0145 - NewLicenseeCode of the game.
	NewLicenseeCode string
	SGBFlag         bool
	CartridgeType   Type

	// ROMSizeCode and RAMSizeCode are the raw size bytes, ROMBanks and
	// RAMBanks are the number of 16KB and 8KB banks they describe.
	ROMSizeCode uint8
	RAMSizeCode uint8
	ROMBanks    int
	RAMBanks    int

	CountryCode     uint8
	OldLicenseeCode uint8
	MaskROMVersion  uint8
	HeaderChecksum  uint8
	GlobalChecksum  uint16

	raw [0x50]byte
}

// ParseHeader parses the header found at 0x0100-0x014F of rom.
func ParseHeader(rom []byte) (Header, error) {
	h := Header{}
	if len(rom) < 0x150 {
		return h, fmt.Errorf("%w: %d bytes", ErrInvalidROM, len(rom))
	}
	copy(h.raw[:], rom[0x100:0x150])
	header := h.raw[:]

	// parse the mode of the cartridge and parse the header accordingly
	switch header[0x43] {
	case 0x80:
		h.CartridgeGBMode = FlagSupportsCGB
	case 0xC0:
		h.CartridgeGBMode = FlagOnlyCGB
	default:
		h.CartridgeGBMode = FlagOnlyDMG
	}

	if h.CartridgeGBMode == FlagOnlyDMG {
		h.Title = string(header[0x34:0x44])
	} else {
		h.Title = string(header[0x34:0x43])
	}
	h.Title = strings.TrimRight(h.Title, "\x00 ")

	h.ManufacturerCode = string(header[0x3F:0x43])
	h.NewLicenseeCode = string(header[0x44:0x46])
	h.SGBFlag = header[0x46] == 0x03
	h.CartridgeType = Type(header[0x47])

	// ROM size is 32kB x (1 << n), with a few odd sizes used by
	// some multi-chip cartridges
	h.ROMSizeCode = header[0x48]
	switch {
	case h.ROMSizeCode <= 0x08:
		h.ROMBanks = 2 << h.ROMSizeCode
	case h.ROMSizeCode == 0x52:
		h.ROMBanks = 72
	case h.ROMSizeCode == 0x53:
		h.ROMBanks = 80
	case h.ROMSizeCode == 0x54:
		h.ROMBanks = 96
	}

	h.RAMSizeCode = header[0x49]
	h.RAMBanks = ramBanks[h.RAMSizeCode]

	h.CountryCode = header[0x4A]
	h.OldLicenseeCode = header[0x4B]
	h.MaskROMVersion = header[0x4C]
	h.HeaderChecksum = header[0x4D]
	h.GlobalChecksum = uint16(header[0x4E])<<8 | uint16(header[0x4F])

	return h, nil
}

// ComputeChecksum calculates the header checksum over 0x0134-0x014C.
func (h *Header) ComputeChecksum() uint8 {
	var sum uint8
	for _, b := range h.raw[0x34:0x4D] {
		sum = sum - b - 1
	}
	return sum
}

// GameboyColor returns true if the cartridge supports colour mode.
func (h *Header) GameboyColor() bool {
	return h.CartridgeGBMode == FlagOnlyCGB || h.CartridgeGBMode == FlagSupportsCGB
}

func (h *Header) Hardware() string {
	switch h.CartridgeGBMode {
	case FlagOnlyDMG:
		return "DMG"
	case FlagSupportsCGB, FlagOnlyCGB:
		return "CGB"
	default:
		return "Unknown"
	}
}

func (h *Header) String() string {
	return fmt.Sprintf("%s Mode: %s | Type: %s | ROM Size: %dkB | RAM Size: %dkB",
		h.Title, h.Hardware(), h.CartridgeType, h.ROMBanks*16, h.RAMBanks*8)
}
