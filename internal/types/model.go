package types

import "strings"

type Model int // The Model used in emulation.

const (
	Unset Model = iota // Unset - Model hasn't been set - decided by the cartridge header
	DMG                // DMG - Standard Game Boy
	CGB                // CGB - Game Boy Colour, enables VRAM/WRAM banking
)

var ModelNames = map[Model]string{
	DMG:   "DMG",
	CGB:   "CGB",
	Unset: "Unset",
}

// StringToModel converts a string to a Model.
func StringToModel(s string) Model {
	for m, n := range ModelNames {
		if n == strings.ToUpper(s) {
			return m
		}
	}

	return Unset
}

func (m Model) String() string {
	return ModelNames[m]
}
