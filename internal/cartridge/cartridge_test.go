package cartridge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cespare/xxhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeROM builds a ROM image whose banks start with their own index.
func makeROM(t Type, romCode, ramCode uint8, title string) []byte {
	banks := 2 << romCode
	rom := make([]byte, banks*ROMBankSize)
	for i := 0; i < banks; i++ {
		rom[i*ROMBankSize] = uint8(i)
	}
	copy(rom[0x134:0x144], title)
	rom[0x147] = uint8(t)
	rom[0x148] = romCode
	rom[0x149] = ramCode

	var sum uint8
	for _, b := range rom[0x134:0x14D] {
		sum = sum - b - 1
	}
	rom[0x14D] = sum
	return rom
}

func newCartridge(t *testing.T, rom []byte, opts ...Opt) *Cartridge {
	t.Helper()
	c, err := New(rom, opts...)
	require.NoError(t, err)
	return c
}

// memoryPersister keeps saved banks in memory.
type memoryPersister struct {
	banks   map[string][][RAMBankSize]byte
	loadErr error
	saves   int
}

func (m *memoryPersister) LoadRAM(key string, _ int) ([][RAMBankSize]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.banks[key], nil
}

func (m *memoryPersister) SaveRAM(key string, banks [][RAMBankSize]byte) error {
	m.saves++
	m.banks[key] = append([][RAMBankSize]byte(nil), banks...)
	return nil
}

func TestParseHeader(t *testing.T) {
	rom := makeROM(MBC1RAMBATT, 0x05, 0x03, "POKEMON RED")
	h, err := ParseHeader(rom)
	require.NoError(t, err)

	assert.Equal(t, "POKEMON RED", h.Title)
	assert.Equal(t, MBC1RAMBATT, h.CartridgeType)
	assert.Equal(t, 64, h.ROMBanks)
	assert.Equal(t, 4, h.RAMBanks)
	assert.Equal(t, h.HeaderChecksum, h.ComputeChecksum())
	assert.False(t, h.GameboyColor())
	assert.Equal(t, "MBC1+RAM+BATTERY", h.CartridgeType.String())

	rom[0x143] = 0xC0
	h, err = ParseHeader(rom)
	require.NoError(t, err)
	assert.True(t, h.GameboyColor())

	for code, banks := range map[uint8]int{0x00: 2, 0x08: 512, 0x52: 72, 0x53: 80, 0x54: 96} {
		rom[0x148] = code
		h, err = ParseHeader(rom)
		require.NoError(t, err)
		assert.Equal(t, banks, h.ROMBanks, "code 0x%02X", code)
	}

	_, err = ParseHeader(make([]byte, 0x100))
	assert.ErrorIs(t, err, ErrInvalidROM)
}

func TestNew(t *testing.T) {
	t.Run("unsupported type", func(t *testing.T) {
		_, err := New(makeROM(MMM01, 0x00, 0x00, "MMM"))
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})
	t.Run("short image is padded", func(t *testing.T) {
		c := newCartridge(t, makeROM(ROM, 0x00, 0x00, "TETRIS")[:0x4000])
		assert.Len(t, c.ROM, 2)
	})
	t.Run("no ram for types without ram", func(t *testing.T) {
		c := newCartridge(t, makeROM(MBC1, 0x01, 0x03, "NORAM"))
		assert.Empty(t, c.RAM)
	})
	t.Run("mbc2 has built in ram", func(t *testing.T) {
		c := newCartridge(t, makeROM(MBC2, 0x01, 0x00, "MBC2"))
		assert.Len(t, c.RAM, 1)
	})
	t.Run("key", func(t *testing.T) {
		rom := makeROM(ROM, 0x00, 0x00, "SUPER MARIO")
		c := newCartridge(t, rom)
		assert.Equal(t, xxhash.Sum64(rom), c.Checksum())
		assert.Equal(t, fmt.Sprintf("SUPER_MARIO-%016x", xxhash.Sum64(rom)), c.Key())
	})
}

func TestNoController(t *testing.T) {
	c := newCartridge(t, makeROM(ROMRAM, 0x00, 0x02, "PLAIN"))
	c.Controller.ROMWrite(0x2000, 0x05)
	assert.Equal(t, 0, c.Mapping.ROM0)
	assert.Equal(t, 1, c.Mapping.ROM1)

	// ROM+RAM has no enable gate
	c.Controller.RAMWrite(0xA010, 0x99)
	assert.Equal(t, uint8(0x99), c.RAM[0][0x10])
}

func TestMBC1(t *testing.T) {
	t.Run("bank 0 selects bank 1", func(t *testing.T) {
		c := newCartridge(t, makeROM(MBC1, 0x05, 0x00, "MBC1"))
		c.Controller.ROMWrite(0x2000, 0x00)
		assert.Equal(t, 1, c.Mapping.ROM1)
		assert.Equal(t, uint8(1), c.ROM[c.Mapping.ROM1][0])
	})
	t.Run("upper bits", func(t *testing.T) {
		c := newCartridge(t, makeROM(MBC1, 0x05, 0x00, "MBC1"))
		c.Controller.ROMWrite(0x2000, 0x05)
		assert.Equal(t, 5, c.Mapping.ROM1)
		c.Controller.ROMWrite(0x4000, 0x01)
		assert.Equal(t, 0x25, c.Mapping.ROM1)
		assert.Equal(t, 0, c.Mapping.ROM0)

		c.Controller.ROMWrite(0x6000, 0x01)
		assert.Equal(t, 0x20, c.Mapping.ROM0)
		assert.Equal(t, uint8(0x20), c.ROM[c.Mapping.ROM0][0])

		// 0x20 aliases to 0x21
		c.Controller.ROMWrite(0x2000, 0x20)
		assert.Equal(t, 0x21, c.Mapping.ROM1)
	})
	t.Run("out of range banks are masked", func(t *testing.T) {
		c := newCartridge(t, makeROM(MBC1, 0x01, 0x00, "MBC1"))
		c.Controller.ROMWrite(0x2000, 0x1F)
		assert.Equal(t, 3, c.Mapping.ROM1)
		c.Controller.ROMWrite(0x2000, 0x06)
		assert.Equal(t, 2, c.Mapping.ROM1)
	})
	t.Run("ram banking", func(t *testing.T) {
		c := newCartridge(t, makeROM(MBC1RAM, 0x05, 0x03, "MBC1"))
		c.Controller.RAMWrite(0xA000, 0x11)
		assert.Equal(t, uint8(0), c.RAM[0][0], "write with RAM disabled")

		c.Controller.ROMWrite(0x0000, 0x0A)
		c.Controller.ROMWrite(0x6000, 0x01)
		c.Controller.ROMWrite(0x4000, 0x02)
		assert.Equal(t, 2, c.Mapping.RAM)
		c.Controller.RAMWrite(0xA123, 0x42)
		assert.Equal(t, uint8(0x42), c.RAM[2][0x123])

		c.Controller.ROMWrite(0x0000, 0x00)
		c.Controller.RAMWrite(0xA123, 0x24)
		assert.Equal(t, uint8(0x42), c.RAM[2][0x123])
		assert.Equal(t, 2, c.Mapping.RAM)

		c.Controller.ROMWrite(0x6000, 0x00)
		assert.Equal(t, 0, c.Mapping.RAM)
	})
}

func TestMBC2(t *testing.T) {
	c := newCartridge(t, makeROM(MBC2, 0x03, 0x00, "MBC2"))

	c.Controller.ROMWrite(0x2100, 0x00)
	assert.Equal(t, 1, c.Mapping.ROM1)
	c.Controller.ROMWrite(0x2100, 0x0B)
	assert.Equal(t, 11, c.Mapping.ROM1)

	// bit 8 clear selects the RAM gate, not the bank
	c.Controller.ROMWrite(0x0000, 0x0A)
	assert.Equal(t, 11, c.Mapping.ROM1)

	c.Controller.RAMWrite(0xA005, 0x3C)
	for _, offset := range []int{0x005, 0x205, 0x1E05} {
		assert.Equal(t, uint8(0xFC), c.RAM[0][offset], "offset 0x%04X", offset)
	}
}

func TestMBC3(t *testing.T) {
	c := newCartridge(t, makeROM(MBC3RAMBATT, 0x06, 0x03, "MBC3"))

	c.Controller.ROMWrite(0x2000, 0x00)
	assert.Equal(t, 1, c.Mapping.ROM1)
	c.Controller.ROMWrite(0x2000, 0x7F)
	assert.Equal(t, 0x7F, c.Mapping.ROM1)
	c.Controller.ROMWrite(0x2000, 0xFF)
	assert.Equal(t, 0x7F, c.Mapping.ROM1)

	c.Controller.ROMWrite(0x0000, 0x0A)
	c.Controller.ROMWrite(0x4000, 0x03)
	assert.Equal(t, 3, c.Mapping.RAM)
	c.Controller.RAMWrite(0xA000, 0x55)
	assert.Equal(t, uint8(0x55), c.RAM[3][0])

	// RTC registers are not backed by RAM
	c.Controller.ROMWrite(0x4000, 0x08)
	c.Controller.RAMWrite(0xA000, 0x66)
	assert.Equal(t, uint8(0x55), c.RAM[3][0])
	assert.Equal(t, 3, c.Mapping.RAM)
}

func TestMBC5(t *testing.T) {
	c := newCartridge(t, makeROM(MBC5RAM, 0x08, 0x04, "MBC5"))

	c.Controller.ROMWrite(0x2000, 0x00)
	assert.Equal(t, 0, c.Mapping.ROM1, "bank 0 is valid")
	c.Controller.ROMWrite(0x2000, 0x34)
	c.Controller.ROMWrite(0x3000, 0x01)
	assert.Equal(t, 0x134, c.Mapping.ROM1)
	c.Controller.ROMWrite(0x4000, 0x0F)
	assert.Equal(t, 15, c.Mapping.RAM)

	rumble := newCartridge(t, makeROM(MBC5RUMBLERAM, 0x01, 0x04, "RUMBLE"))
	rumble.Controller.ROMWrite(0x4000, 0x0B)
	assert.Equal(t, 3, rumble.Mapping.RAM)
}

func TestBatteryPersistence(t *testing.T) {
	rom := makeROM(MBC1RAMBATT, 0x01, 0x03, "SAVES")

	t.Run("restores and saves on disable", func(t *testing.T) {
		p := &memoryPersister{banks: map[string][][RAMBankSize]byte{}}
		saved := make([][RAMBankSize]byte, 4)
		saved[1][0x10] = 0xAB
		p.banks[fmt.Sprintf("SAVES-%016x", xxhash.Sum64(rom))] = saved

		c := newCartridge(t, rom, WithPersister(p))
		assert.Equal(t, uint8(0xAB), c.RAM[1][0x10])

		c.Controller.ROMWrite(0x0000, 0x0A)
		c.Controller.RAMWrite(0xA000, 0x01)
		assert.Equal(t, 0, p.saves)
		c.Controller.ROMWrite(0x0000, 0x00)
		assert.Equal(t, 1, p.saves)
		assert.Equal(t, uint8(0x01), p.banks[c.Key()][0][0])

		// disabling again is not a transition
		c.Controller.ROMWrite(0x0000, 0x00)
		assert.Equal(t, 1, p.saves)
	})
	t.Run("bad data falls back to zero banks", func(t *testing.T) {
		p := &memoryPersister{banks: map[string][][RAMBankSize]byte{}, loadErr: errors.New("corrupt")}
		c := newCartridge(t, rom, WithPersister(p))
		assert.Equal(t, make([][RAMBankSize]byte, 4), c.RAM)

		p = &memoryPersister{banks: map[string][][RAMBankSize]byte{c.Key(): make([][RAMBankSize]byte, 2)}}
		p.banks[c.Key()][0][0] = 0xFF
		c = newCartridge(t, rom, WithPersister(p))
		assert.Equal(t, uint8(0), c.RAM[0][0])
	})
	t.Run("no battery", func(t *testing.T) {
		p := &memoryPersister{banks: map[string][][RAMBankSize]byte{}}
		c := newCartridge(t, makeROM(MBC1RAM, 0x01, 0x03, "NOBATT"), WithPersister(p))
		require.NoError(t, c.Persist())
		assert.Equal(t, 0, p.saves)
	})
}
