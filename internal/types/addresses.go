package types

// HardwareAddress represents the address of a hardware
// register of the Game Boy. The hardware registers are mapped
// to memory addresses 0xFF00 - 0xFF7F & 0xFFFF.
type HardwareAddress = uint16

const (
	// P1 is the address of the P1 hardware register. The P1
	// hardware register is used to select the input keys to
	// be read by the CPU, and to read the state of the joypad.
	P1 HardwareAddress = 0xFF00
	// SB is the address of the SB hardware register. The SB
	// hardware register is used to transfer data between the
	// CPU and the serial port.
	SB HardwareAddress = 0xFF01
	// SC is the address of the SC hardware register. The SC
	// hardware register is used to control the serial port.
	SC HardwareAddress = 0xFF02
	// DIV is the address of the DIV hardware register. The DIV
	// hardware register is incremented at a rate of 16384Hz.
	DIV HardwareAddress = 0xFF04
	// TAC is the address of the TAC hardware register, the last
	// register owned by the timer.
	TAC HardwareAddress = 0xFF07
	// IF is the address of the IF hardware register. The IF
	// hardware register is used to request interrupts.
	//
	//  Bit 0: V-Blank Interrupt Request (INT 40h)  (1=Request)
	//  Bit 1: LCD STAT Interrupt Request (INT 48h) (1=Request)
	//  Bit 2: Timer Interrupt Request (INT 50h)    (1=Request)
	//  Bit 3: Serial Interrupt Request (INT 58h)   (1=Request)
	//  Bit 4: Joypad Interrupt Request (INT 60h)   (1=Request)
	IF HardwareAddress = 0xFF0F
	// NR10 is the first sound register.
	NR10 HardwareAddress = 0xFF10
	// WaveRAMEnd is the last byte of the wave pattern RAM, and the
	// last address owned by the sound controller.
	WaveRAMEnd HardwareAddress = 0xFF3F
	// LCDC is the address of the LCDC hardware register, the first
	// register owned by the display controller.
	LCDC HardwareAddress = 0xFF40
	// WX is the address of the WX hardware register, the last
	// register owned by the display controller.
	WX HardwareAddress = 0xFF4B
	// VBK is the address of the VBK hardware register. In colour
	// mode bit 0 selects the active VRAM bank.
	VBK HardwareAddress = 0xFF4F
	// BDIS is the address of the BDIS hardware register. Writing
	// any value to it unmaps the boot ROM for the rest of the session.
	BDIS HardwareAddress = 0xFF50
	// SVBK is the address of the SVBK hardware register. In colour
	// mode bits 0-2 select the WRAM bank mapped at 0xD000 - 0xDFFF.
	SVBK HardwareAddress = 0xFF70
	// IE is the address of the IE hardware register. The IE
	// hardware register is used to enable interrupts, using the
	// same bit layout as IF.
	IE HardwareAddress = 0xFFFF
)

// AddressRange is an inclusive range of hardware register addresses
// owned by a single peripheral.
type AddressRange struct {
	From, To HardwareAddress
}

// Contains reports whether address falls within the range.
func (r AddressRange) Contains(address uint16) bool {
	return address >= r.From && address <= r.To
}

var (
	// JoypadRange is owned by the joypad.
	JoypadRange = AddressRange{P1, P1}
	// SerialRange is owned by the serial link.
	SerialRange = AddressRange{SB, SC}
	// TimerRange is owned by the timer.
	TimerRange = AddressRange{DIV, TAC}
	// SoundRange is owned by the audio synthesis engine.
	SoundRange = AddressRange{NR10, WaveRAMEnd}
	// VideoRange is owned by the display controller.
	VideoRange = AddressRange{LCDC, WX}
)
