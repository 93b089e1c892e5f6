package cpu

import (
	"errors"
	"testing"

	"github.com/thelolagemann/gbcore/internal/types"
)

// testBus is a flat 64KiB address space.
type testBus [0x10000]uint8

func (b *testBus) Read(address uint16) uint8         { return b[address] }
func (b *testBus) Write(address uint16, value uint8) { b[address] = value }

// newTestCPU places program at 0x0100 and points PC at it.
func newTestCPU(program ...uint8) (*CPU, *testBus) {
	b := &testBus{}
	copy(b[0x0100:], program)
	c := NewCPU(b, nil)
	c.PC = 0x0100
	c.SP = 0xFFFE
	return c, b
}

func step(t *testing.T, c *CPU) uint8 {
	t.Helper()
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return cycles
}

func TestRegisters(t *testing.T) {
	var r Registers
	r.Set(F, 0xFF)
	if r.Get(F) != 0xF0 {
		t.Errorf("expected F to be 0xF0, got 0x%02X", r.Get(F))
	}

	r.SetPair(AF, 0x12FF)
	if r.Get(A) != 0x12 || r.Get(F) != 0xF0 {
		t.Errorf("expected AF to be 0x12F0, got 0x%04X", r.Pair(AF))
	}

	r.SetPair(HL, 0xC0DE)
	if r.Get(H) != 0xC0 || r.Get(L) != 0xDE || r.Pair(HL) != 0xC0DE {
		t.Errorf("expected HL to be 0xC0DE, got 0x%04X", r.Pair(HL))
	}

	r.SetFlags(true, false, true, false)
	if r.Get(F) != 0xA0 {
		t.Errorf("expected F to be 0xA0, got 0x%02X", r.Get(F))
	}
	r.SetFlag(FlagCarry, true)
	r.SetFlag(FlagZero, false)
	if r.Flag(FlagZero) || !r.Flag(FlagCarry) || !r.Flag(FlagHalfCarry) || r.Flag(FlagSubtract) {
		t.Errorf("unexpected flags %08b", r.Get(F))
	}
}

func TestXorA(t *testing.T) {
	c, _ := newTestCPU(0xAF)
	c.Set(A, 0x5A)

	if cycles := step(t, c); cycles != 4 {
		t.Errorf("expected 4 cycles, got %d", cycles)
	}
	if c.Get(A) != 0 {
		t.Errorf("expected A to be 0, got 0x%02X", c.Get(A))
	}
	if c.Get(F) != 0x80 {
		t.Errorf("expected F to be 0x80, got 0x%02X", c.Get(F))
	}
	if c.PC != 0x0101 {
		t.Errorf("expected PC to be 0x0101, got 0x%04X", c.PC)
	}
}

func TestAddFlags(t *testing.T) {
	c, _ := newTestCPU()
	for a := 0; a < 256; a++ {
		for n := 0; n < 256; n++ {
			for carry := 0; carry < 2; carry++ {
				c.Set(A, uint8(a))
				c.SetFlags(false, false, false, carry == 1)
				c.add(uint8(n), true)

				sum := a + n + carry
				if c.Get(A) != uint8(sum) {
					t.Fatalf("%02X+%02X+%d: expected 0x%02X, got 0x%02X", a, n, carry, uint8(sum), c.Get(A))
				}
				if c.Flag(FlagZero) != (sum&0xFF == 0) ||
					c.Flag(FlagSubtract) ||
					c.Flag(FlagHalfCarry) != (a&0xF+n&0xF+carry > 0xF) ||
					c.Flag(FlagCarry) != (sum > 0xFF) {
					t.Fatalf("%02X+%02X+%d: unexpected flags %08b", a, n, carry, c.Get(F))
				}
			}
		}
	}
}

func TestSubtractFlags(t *testing.T) {
	c, _ := newTestCPU()
	for a := 0; a < 256; a++ {
		for n := 0; n < 256; n++ {
			for carry := 0; carry < 2; carry++ {
				c.Set(A, uint8(a))
				c.SetFlags(false, false, false, carry == 1)
				result := c.subtract(uint8(n), true)

				diff := a - n - carry
				if result != uint8(diff) {
					t.Fatalf("%02X-%02X-%d: expected 0x%02X, got 0x%02X", a, n, carry, uint8(diff), result)
				}
				if c.Flag(FlagZero) != (uint8(diff) == 0) ||
					!c.Flag(FlagSubtract) ||
					c.Flag(FlagHalfCarry) != (a&0xF-n&0xF-carry < 0) ||
					c.Flag(FlagCarry) != (diff < 0) {
					t.Fatalf("%02X-%02X-%d: unexpected flags %08b", a, n, carry, c.Get(F))
				}
			}
		}
	}
}

func toBCD(v int) uint8 {
	return uint8(v/10<<4 | v%10)
}

func TestDAA(t *testing.T) {
	c, _ := newTestCPU()

	t.Run("addition", func(t *testing.T) {
		for x := 0; x < 100; x++ {
			for y := 0; y < 100; y++ {
				c.Set(A, toBCD(x))
				c.add(toBCD(y), false)
				c.daa(0x27)

				if want := toBCD((x + y) % 100); c.Get(A) != want {
					t.Fatalf("%d+%d: expected 0x%02X, got 0x%02X", x, y, want, c.Get(A))
				}
				if c.Flag(FlagCarry) != (x+y > 99) {
					t.Fatalf("%d+%d: expected carry %v", x, y, x+y > 99)
				}
			}
		}
	})
	t.Run("subtraction", func(t *testing.T) {
		for x := 0; x < 100; x++ {
			for y := 0; y < 100; y++ {
				c.Set(A, toBCD(x))
				c.Set(A, c.subtract(toBCD(y), false))
				c.daa(0x27)

				if want := toBCD((x - y + 100) % 100); c.Get(A) != want {
					t.Fatalf("%d-%d: expected 0x%02X, got 0x%02X", x, y, want, c.Get(A))
				}
				if c.Flag(FlagCarry) != (x < y) {
					t.Fatalf("%d-%d: expected carry %v", x, y, x < y)
				}
			}
		}
	})
	t.Run("all inputs", func(t *testing.T) {
		for a := 0; a < 256; a++ {
			for f := 0; f < 16; f++ {
				n, h, cy := f&4 != 0, f&2 != 0, f&1 != 0

				var correction int
				carry := cy
				if h || (!n && a&0xF > 9) {
					correction |= 0x06
				}
				if cy || (!n && a > 0x99) {
					correction |= 0x60
					carry = true
				}
				want := uint8(a + correction)
				if n {
					want = uint8(a - correction)
				}

				c.Set(A, uint8(a))
				c.SetFlags(f&8 != 0, n, h, cy)
				c.daa(0x27)
				if c.Get(A) != want || c.Flag(FlagCarry) != carry || c.Flag(FlagZero) != (want == 0) ||
					c.Flag(FlagHalfCarry) || c.Flag(FlagSubtract) != n {
					t.Fatalf("a=0x%02X flags=%04b: expected 0x%02X carry %v, got 0x%02X flags %08b", a, f, want, carry, c.Get(A), c.Get(F))
				}
			}
		}
	})
}

func TestLoads(t *testing.T) {
	t.Run("LD (HL+), A", func(t *testing.T) {
		c, b := newTestCPU(0x22, 0x3A)
		c.Set(A, 0x42)
		c.SetPair(HL, 0xC000)

		if cycles := step(t, c); cycles != 8 {
			t.Errorf("expected 8 cycles, got %d", cycles)
		}
		if b[0xC000] != 0x42 || c.Pair(HL) != 0xC001 {
			t.Errorf("expected 0x42 at 0xC000 and HL 0xC001, got 0x%02X and 0x%04X", b[0xC000], c.Pair(HL))
		}

		b[0xC001] = 0x99
		step(t, c)
		if c.Get(A) != 0x99 || c.Pair(HL) != 0xC000 {
			t.Errorf("expected A 0x99 and HL 0xC000, got 0x%02X and 0x%04X", c.Get(A), c.Pair(HL))
		}
	})
	t.Run("LD r, (HL)", func(t *testing.T) {
		c, b := newTestCPU(0x46, 0x70)
		c.SetPair(HL, 0xD000)
		b[0xD000] = 0x7E

		if cycles := step(t, c); cycles != 8 {
			t.Errorf("expected 8 cycles, got %d", cycles)
		}
		if c.Get(B) != 0x7E {
			t.Errorf("expected B to be 0x7E, got 0x%02X", c.Get(B))
		}
		c.Set(B, 0x11)
		step(t, c)
		if b[0xD000] != 0x11 {
			t.Errorf("expected 0x11 at 0xD000, got 0x%02X", b[0xD000])
		}
	})
	t.Run("LDH", func(t *testing.T) {
		c, b := newTestCPU(0xE0, 0x80, 0xF2)
		c.Set(A, 0x5C)
		c.Set(C, 0x81)
		b[0xFF81] = 0x33

		if cycles := step(t, c); cycles != 12 {
			t.Errorf("expected 12 cycles, got %d", cycles)
		}
		if b[0xFF80] != 0x5C {
			t.Errorf("expected 0x5C at 0xFF80, got 0x%02X", b[0xFF80])
		}
		step(t, c)
		if c.Get(A) != 0x33 {
			t.Errorf("expected A to be 0x33, got 0x%02X", c.Get(A))
		}
	})
	t.Run("LD (a16), SP", func(t *testing.T) {
		c, b := newTestCPU(0x08, 0x00, 0xC1)
		c.SP = 0xBEEF

		if cycles := step(t, c); cycles != 20 {
			t.Errorf("expected 20 cycles, got %d", cycles)
		}
		if b[0xC100] != 0xEF || b[0xC101] != 0xBE {
			t.Errorf("expected SP stored little-endian, got %02X %02X", b[0xC100], b[0xC101])
		}
	})
}

func TestPushPop(t *testing.T) {
	c, b := newTestCPU(0xC5, 0xD1, 0xF1)
	c.SetPair(BC, 0x1234)

	if cycles := step(t, c); cycles != 16 {
		t.Errorf("expected PUSH to take 16 cycles, got %d", cycles)
	}
	if c.SP != 0xFFFC || b[0xFFFC] != 0x34 || b[0xFFFD] != 0x12 {
		t.Errorf("unexpected stack after PUSH: SP 0x%04X [%02X %02X]", c.SP, b[0xFFFC], b[0xFFFD])
	}

	if cycles := step(t, c); cycles != 12 {
		t.Errorf("expected POP to take 12 cycles, got %d", cycles)
	}
	if c.Pair(DE) != 0x1234 || c.SP != 0xFFFE {
		t.Errorf("expected DE 0x1234 and SP 0xFFFE, got 0x%04X and 0x%04X", c.Pair(DE), c.SP)
	}

	// POP AF drops the lower nibble of F
	c.SP = 0xC000
	b[0xC000], b[0xC001] = 0xFF, 0x12
	step(t, c)
	if c.Pair(AF) != 0x12F0 {
		t.Errorf("expected AF to be 0x12F0, got 0x%04X", c.Pair(AF))
	}
}

func TestConditionalCycles(t *testing.T) {
	tests := []struct {
		name     string
		program  []uint8
		zero     bool
		carry    bool
		cycles   uint8
		expectPC uint16
	}{
		{"JR NZ taken", []uint8{0x20, 0x05}, false, false, 12, 0x0107},
		{"JR NZ not taken", []uint8{0x20, 0x05}, true, false, 8, 0x0102},
		{"JR Z backwards", []uint8{0x28, 0xFE}, true, false, 12, 0x0100},
		{"JP C taken", []uint8{0xDA, 0x00, 0x20}, false, true, 16, 0x2000},
		{"JP C not taken", []uint8{0xDA, 0x00, 0x20}, false, false, 12, 0x0103},
		{"CALL NC taken", []uint8{0xD4, 0x00, 0x30}, false, false, 24, 0x3000},
		{"CALL NC not taken", []uint8{0xD4, 0x00, 0x30}, false, true, 12, 0x0103},
		{"RET Z not taken", []uint8{0xC8}, false, false, 8, 0x0101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCPU(tt.program...)
			c.SetFlags(tt.zero, false, false, tt.carry)

			if cycles := step(t, c); cycles != tt.cycles {
				t.Errorf("expected %d cycles, got %d", tt.cycles, cycles)
			}
			if c.PC != tt.expectPC {
				t.Errorf("expected PC to be 0x%04X, got 0x%04X", tt.expectPC, c.PC)
			}
		})
	}
}

func TestCallReturn(t *testing.T) {
	c, b := newTestCPU(0xCD, 0x00, 0x02)
	b[0x0200] = 0xC9 // RET

	if cycles := step(t, c); cycles != 24 {
		t.Errorf("expected CALL to take 24 cycles, got %d", cycles)
	}
	if c.PC != 0x0200 || b[0xFFFC] != 0x03 || b[0xFFFD] != 0x01 {
		t.Errorf("expected PC 0x0200 with 0x0103 pushed, got PC 0x%04X", c.PC)
	}
	if cycles := step(t, c); cycles != 16 {
		t.Errorf("expected RET to take 16 cycles, got %d", cycles)
	}
	if c.PC != 0x0103 || c.SP != 0xFFFE {
		t.Errorf("expected PC 0x0103 and SP 0xFFFE, got 0x%04X and 0x%04X", c.PC, c.SP)
	}
}

func TestAddSP(t *testing.T) {
	tests := []struct {
		opcode    uint8
		sp        uint16
		offset    uint8
		result    uint16
		halfCarry bool
		carry     bool
	}{
		{0xE8, 0x00FF, 0x01, 0x0100, true, true},
		{0xE8, 0x0000, 0xFF, 0xFFFF, false, false},
		{0xE8, 0x0FF8, 0x08, 0x1000, true, true},
		{0xF8, 0xFFF8, 0x02, 0xFFFA, false, false},
		{0xF8, 0x0005, 0xFE, 0x0003, true, true},
	}
	for _, tt := range tests {
		c, _ := newTestCPU(tt.opcode, tt.offset)
		c.SP = tt.sp
		c.SetFlags(true, true, false, false)
		step(t, c)

		got := c.SP
		if tt.opcode == 0xF8 {
			got = c.Pair(HL)
		}
		if got != tt.result {
			t.Errorf("%02X SP=0x%04X %+d: expected 0x%04X, got 0x%04X", tt.opcode, tt.sp, int8(tt.offset), tt.result, got)
		}
		if c.Flag(FlagZero) || c.Flag(FlagSubtract) || c.Flag(FlagHalfCarry) != tt.halfCarry || c.Flag(FlagCarry) != tt.carry {
			t.Errorf("%02X SP=0x%04X %+d: unexpected flags %08b", tt.opcode, tt.sp, int8(tt.offset), c.Get(F))
		}
	}
}

func TestRotateAccumulatorClearsZero(t *testing.T) {
	c, _ := newTestCPU(0x07, 0xCB, 0x07)
	c.SetFlags(true, false, false, false)

	step(t, c)
	if c.Get(A) != 0 || c.Flag(FlagZero) {
		t.Errorf("expected RLCA to clear Z for a zero result, got flags %08b", c.Get(F))
	}
	step(t, c)
	if !c.Flag(FlagZero) {
		t.Errorf("expected RLC A to set Z for a zero result, got flags %08b", c.Get(F))
	}
}

func TestExtended(t *testing.T) {
	tests := []struct {
		name   string
		sub    uint8
		hl     uint8
		a      uint8
		cycles uint8
		check  func(c *CPU, b *testBus) bool
	}{
		{"BIT 0, (HL)", 0x46, 0x01, 0, 12, func(c *CPU, _ *testBus) bool { return !c.Flag(FlagZero) && c.Flag(FlagHalfCarry) }},
		{"RLC (HL)", 0x06, 0x81, 0, 16, func(c *CPU, b *testBus) bool { return b[0xC000] == 0x03 && c.Flag(FlagCarry) }},
		{"SWAP A", 0x37, 0, 0xF1, 8, func(c *CPU, _ *testBus) bool { return c.Get(A) == 0x1F && c.Get(F) == 0 }},
		{"SRA A", 0x2F, 0, 0x81, 8, func(c *CPU, _ *testBus) bool { return c.Get(A) == 0xC0 && c.Flag(FlagCarry) }},
		{"SRL (HL)", 0x3E, 0x01, 0, 16, func(c *CPU, b *testBus) bool { return b[0xC000] == 0 && c.Flag(FlagZero) && c.Flag(FlagCarry) }},
		{"RES 7, (HL)", 0xBE, 0xFF, 0, 16, func(c *CPU, b *testBus) bool { return b[0xC000] == 0x7F }},
		{"SET 3, A", 0xDF, 0, 0x00, 8, func(c *CPU, _ *testBus) bool { return c.Get(A) == 0x08 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, b := newTestCPU(0xCB, tt.sub)
			c.SetPair(HL, 0xC000)
			b[0xC000] = tt.hl
			c.Set(A, tt.a)

			if cycles := step(t, c); cycles != tt.cycles {
				t.Errorf("expected %d cycles, got %d", tt.cycles, cycles)
			}
			if c.PC != 0x0102 {
				t.Errorf("expected PC to be 0x0102, got 0x%04X", c.PC)
			}
			if !tt.check(c, b) {
				t.Errorf("unexpected result: A 0x%02X (HL) 0x%02X F %08b", c.Get(A), b[0xC000], c.Get(F))
			}
		})
	}
}

func TestInterruptDispatch(t *testing.T) {
	c, b := newTestCPU()
	c.PC = 0x1234
	c.IME = true
	b[types.IE] = 0x01
	b[types.IF] = 0x01

	if cycles := step(t, c); cycles != 16 {
		t.Errorf("expected 16 cycles, got %d", cycles)
	}
	if c.PC != 0x0040 {
		t.Errorf("expected PC to be 0x0040, got 0x%04X", c.PC)
	}
	if c.SP != 0xFFFC || b[0xFFFC] != 0x34 || b[0xFFFD] != 0x12 {
		t.Errorf("expected 0x1234 pushed at 0xFFFC, got SP 0x%04X [%02X %02X]", c.SP, b[0xFFFC], b[0xFFFD])
	}
	if b[types.IF]&0x1F != 0 {
		t.Errorf("expected IF to be cleared, got %05b", b[types.IF])
	}
	if c.IME {
		t.Error("expected IME to be cleared")
	}
}

func TestInterruptPriority(t *testing.T) {
	c, b := newTestCPU()
	c.IME = true
	b[types.IE] = 0x14
	b[types.IF] = 0x1F

	step(t, c)
	if c.PC != 0x0050 {
		t.Errorf("expected timer vector 0x0050, got 0x%04X", c.PC)
	}
	if b[types.IF] != 0x1B {
		t.Errorf("expected only the timer bit cleared, got %05b", b[types.IF])
	}
}

func TestInterruptIgnoredWithoutIME(t *testing.T) {
	c, b := newTestCPU(0x00)
	b[types.IE] = 0x01
	b[types.IF] = 0x01

	step(t, c)
	if c.PC != 0x0101 || b[types.IF] != 0x01 {
		t.Errorf("expected NOP to run with IF untouched, got PC 0x%04X IF %05b", c.PC, b[types.IF])
	}
}

func TestHaltWakesWithoutIME(t *testing.T) {
	c, b := newTestCPU(0x76, 0x00)

	step(t, c)
	if !c.Halted {
		t.Fatal("expected CPU to be halted")
	}
	if cycles := step(t, c); cycles != 4 || c.PC != 0x0101 {
		t.Errorf("expected a 4 cycle idle step at 0x0101, got %d cycles at 0x%04X", cycles, c.PC)
	}

	b[types.IE] = 0x04
	b[types.IF] = 0x04
	step(t, c)
	if c.Halted {
		t.Error("expected a pending interrupt to wake the CPU")
	}
	if c.PC != 0x0102 {
		t.Errorf("expected the NOP after HALT to execute, got PC 0x%04X", c.PC)
	}
	if b[types.IF] != 0x04 {
		t.Errorf("expected IF to be untouched, got %05b", b[types.IF])
	}
}

func TestEIAndRETI(t *testing.T) {
	c, b := newTestCPU(0xF3, 0xFB, 0xD9)
	c.SP = 0xC000
	b[0xC000], b[0xC001] = 0x00, 0x40

	step(t, c)
	if c.IME {
		t.Error("expected DI to clear IME")
	}
	step(t, c)
	if !c.IME {
		t.Error("expected EI to set IME")
	}
	c.IME = false
	if cycles := step(t, c); cycles != 16 {
		t.Errorf("expected RETI to take 16 cycles, got %d", cycles)
	}
	if !c.IME || c.PC != 0x4000 {
		t.Errorf("expected RETI to enable IME and return to 0x4000, got %v 0x%04X", c.IME, c.PC)
	}
}

func TestStop(t *testing.T) {
	c, _ := newTestCPU(0x10, 0x00, 0x00)
	if cycles := step(t, c); cycles != 4 {
		t.Errorf("expected 4 cycles, got %d", cycles)
	}
	if c.PC != 0x0102 {
		t.Errorf("expected STOP to skip its padding byte, got PC 0x%04X", c.PC)
	}
}

func TestUndefinedOpcode(t *testing.T) {
	for _, opcode := range undefinedOpcodes {
		c, _ := newTestCPU(opcode)
		if cycles := step(t, c); cycles != 0 {
			t.Errorf("0x%02X: expected 0 cycles, got %d", opcode, cycles)
		}
		if c.PC != 0x0101 {
			t.Errorf("0x%02X: expected PC to be 0x0101, got 0x%04X", opcode, c.PC)
		}
	}
}

func TestUnhandledGroup(t *testing.T) {
	saved := Primary[0xD3]
	Primary[0xD3] = &Opcode{Name: "BROKEN", Length: 1, Group: groupInvalid}
	defer func() { Primary[0xD3] = saved }()

	c, _ := newTestCPU(0xD3)
	if _, err := c.Step(); !errors.Is(err, ErrUnhandledOpcode) {
		t.Fatalf("expected ErrUnhandledOpcode, got %v", err)
	}
	if _, err := c.Step(); !errors.Is(err, ErrUnhandledOpcode) {
		t.Errorf("expected the CPU to stay stopped, got %v", err)
	}
	if c.Err() == nil {
		t.Error("expected Err to report the failure")
	}
}

func TestState(t *testing.T) {
	c, _ := newTestCPU()
	c.SetPair(AF, 0x01B0)
	c.SetPair(BC, 0x0013)
	c.SetPair(DE, 0x00D8)
	c.SetPair(HL, 0x014D)
	c.PC = 0x0150
	c.IME = true

	s := types.NewState()
	c.Save(s)

	restored, _ := newTestCPU()
	restored.Load(types.StateFromBytes(s.Bytes()))
	if restored.Registers != c.Registers || !restored.IME || restored.Halted {
		t.Errorf("expected registers %+v, got %+v", c.Registers, restored.Registers)
	}
}
