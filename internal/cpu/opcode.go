package cpu

import (
	"errors"
	"fmt"
)

// Group identifies the behaviour shared by a family of opcodes. Every
// opcode in a group is executed by the same handler, which decodes any
// register or condition operands from the opcode bits.
type Group uint8

const (
	groupInvalid Group = iota
	GroupUndefined
	GroupNOP
	GroupSTOP
	GroupHALT
	GroupDI
	GroupEI
	GroupLoad8
	GroupLoad8Immediate
	GroupLoad16Immediate
	GroupLoadIndirect
	GroupLoadHigh
	GroupLoadAbsolute
	GroupStoreSP
	GroupLoadSPHL
	GroupLoadHLSP
	GroupPush
	GroupPop
	GroupInc8
	GroupDec8
	GroupInc16
	GroupDec16
	GroupAddHL
	GroupAddSP
	GroupAdd
	GroupAdc
	GroupSub
	GroupSbc
	GroupAnd
	GroupXor
	GroupOr
	GroupCp
	GroupRLCA
	GroupRRCA
	GroupRLA
	GroupRRA
	GroupDAA
	GroupCPL
	GroupSCF
	GroupCCF
	GroupJR
	GroupJRcc
	GroupJP
	GroupJPcc
	GroupJPHL
	GroupCall
	GroupCallcc
	GroupRet
	GroupRetcc
	GroupRETI
	GroupRST
	GroupPrefix

	GroupRLC
	GroupRRC
	GroupRL
	GroupRR
	GroupSLA
	GroupSRA
	GroupSWAP
	GroupSRL
	GroupBIT
	GroupRES
	GroupSET

	groupCount
)

var groupNames = [groupCount]string{
	groupInvalid:         "invalid",
	GroupUndefined:       "undefined",
	GroupNOP:             "nop",
	GroupSTOP:            "stop",
	GroupHALT:            "halt",
	GroupDI:              "di",
	GroupEI:              "ei",
	GroupLoad8:           "ld r, r",
	GroupLoad8Immediate:  "ld r, d8",
	GroupLoad16Immediate: "ld rr, d16",
	GroupLoadIndirect:    "ld (rr)",
	GroupLoadHigh:        "ldh",
	GroupLoadAbsolute:    "ld (a16)",
	GroupStoreSP:         "ld (a16), sp",
	GroupLoadSPHL:        "ld sp, hl",
	GroupLoadHLSP:        "ld hl, sp+r8",
	GroupPush:            "push",
	GroupPop:             "pop",
	GroupInc8:            "inc r",
	GroupDec8:            "dec r",
	GroupInc16:           "inc rr",
	GroupDec16:           "dec rr",
	GroupAddHL:           "add hl, rr",
	GroupAddSP:           "add sp, r8",
	GroupAdd:             "add",
	GroupAdc:             "adc",
	GroupSub:             "sub",
	GroupSbc:             "sbc",
	GroupAnd:             "and",
	GroupXor:             "xor",
	GroupOr:              "or",
	GroupCp:              "cp",
	GroupRLCA:            "rlca",
	GroupRRCA:            "rrca",
	GroupRLA:             "rla",
	GroupRRA:             "rra",
	GroupDAA:             "daa",
	GroupCPL:             "cpl",
	GroupSCF:             "scf",
	GroupCCF:             "ccf",
	GroupJR:              "jr",
	GroupJRcc:            "jr cc",
	GroupJP:              "jp",
	GroupJPcc:            "jp cc",
	GroupJPHL:            "jp hl",
	GroupCall:            "call",
	GroupCallcc:          "call cc",
	GroupRet:             "ret",
	GroupRetcc:           "ret cc",
	GroupRETI:            "reti",
	GroupRST:             "rst",
	GroupPrefix:          "prefix",
	GroupRLC:             "rlc",
	GroupRRC:             "rrc",
	GroupRL:              "rl",
	GroupRR:              "rr",
	GroupSLA:             "sla",
	GroupSRA:             "sra",
	GroupSWAP:            "swap",
	GroupSRL:             "srl",
	GroupBIT:             "bit",
	GroupRES:             "res",
	GroupSET:             "set",
}

func (g Group) String() string {
	if g >= groupCount {
		return fmt.Sprintf("group(%d)", uint8(g))
	}
	return groupNames[g]
}

// Opcode describes a single instruction encoding.
type Opcode struct {
	// Name is the mnemonic template, with operand placeholders such as
	// d8, d16, a8, a16 and r8.
	Name string
	// Length is the instruction length in bytes, including the opcode.
	Length uint8
	// Cycles is the cost in clock cycles. For conditional instructions it
	// is the cost when the branch is taken.
	Cycles uint8
	// CyclesNotTaken is the cost of a conditional instruction whose
	// condition failed. It equals Cycles for everything else.
	CyclesNotTaken uint8
	// Group selects the handler that executes the opcode.
	Group Group
}

// ErrDuplicateOpcode is returned when two definitions claim the same
// opcode while building a table.
var ErrDuplicateOpcode = errors.New("cpu: duplicate opcode")

type definition struct {
	opcode   uint8
	name     string
	length   uint8
	cycles   uint8
	notTaken uint8
	group    Group
}

// buildTable assembles a 256 entry opcode table from defs. Opcodes
// without a definition are filled with entries of the invalid group,
// which have no handler.
func buildTable(defs []definition) ([256]*Opcode, error) {
	var table [256]*Opcode
	for _, d := range defs {
		if existing := table[d.opcode]; existing != nil {
			return table, fmt.Errorf("%w: 0x%02X assigned to both %q and %q", ErrDuplicateOpcode, d.opcode, existing.Name, d.name)
		}
		notTaken := d.notTaken
		if notTaken == 0 {
			notTaken = d.cycles
		}
		table[d.opcode] = &Opcode{
			Name:           d.name,
			Length:         d.length,
			Cycles:         d.cycles,
			CyclesNotTaken: notTaken,
			Group:          d.group,
		}
	}
	for i, op := range table {
		if op == nil {
			table[i] = &Opcode{Name: fmt.Sprintf("DB $%02X", i), Length: 1, Group: groupInvalid}
		}
	}

	return table, nil
}

func mustBuild(defs []definition) [256]*Opcode {
	table, err := buildTable(defs)
	if err != nil {
		panic(err)
	}
	return table
}

var (
	// Primary is the table of unprefixed opcodes.
	Primary = mustBuild(primaryDefinitions())
	// Extended is the table of opcodes following the 0xCB prefix. Their
	// cycle costs exclude the 4 cycles of the prefix itself.
	Extended = mustBuild(extendedDefinitions())
)

var (
	// operand names in the order they are encoded in opcode bits
	r8Names      = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	r16Names     = [4]string{"BC", "DE", "HL", "SP"}
	r16StkNames  = [4]string{"BC", "DE", "HL", "AF"}
	indirectName = [4]string{"(BC)", "(DE)", "(HL+)", "(HL-)"}
	ccNames      = [4]string{"NZ", "Z", "NC", "C"}

	aluGroups = [8]Group{GroupAdd, GroupAdc, GroupSub, GroupSbc, GroupAnd, GroupXor, GroupOr, GroupCp}
	aluNames  = [8]string{"ADD A, ", "ADC A, ", "SUB ", "SBC A, ", "AND ", "XOR ", "OR ", "CP "}

	shiftGroups = [8]Group{GroupRLC, GroupRRC, GroupRL, GroupRR, GroupSLA, GroupSRA, GroupSWAP, GroupSRL}
	shiftNames  = [8]string{"RLC ", "RRC ", "RL ", "RR ", "SLA ", "SRA ", "SWAP ", "SRL "}
)

// undefinedOpcodes do nothing and cost nothing.
var undefinedOpcodes = []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

func primaryDefinitions() []definition {
	var defs []definition
	add := func(opcode uint8, group Group, name string, length, cycles, notTaken uint8) {
		defs = append(defs, definition{opcode: opcode, name: name, length: length, cycles: cycles, notTaken: notTaken, group: group})
	}
	hlCost := func(index, normal, hl uint8) uint8 {
		if index == 6 {
			return hl
		}
		return normal
	}

	add(0x00, GroupNOP, "NOP", 1, 4, 0)
	add(0x08, GroupStoreSP, "LD (a16), SP", 3, 20, 0)
	add(0x10, GroupSTOP, "STOP", 2, 4, 0)
	add(0x18, GroupJR, "JR r8", 2, 12, 0)
	add(0x07, GroupRLCA, "RLCA", 1, 4, 0)
	add(0x0F, GroupRRCA, "RRCA", 1, 4, 0)
	add(0x17, GroupRLA, "RLA", 1, 4, 0)
	add(0x1F, GroupRRA, "RRA", 1, 4, 0)
	add(0x27, GroupDAA, "DAA", 1, 4, 0)
	add(0x2F, GroupCPL, "CPL", 1, 4, 0)
	add(0x37, GroupSCF, "SCF", 1, 4, 0)
	add(0x3F, GroupCCF, "CCF", 1, 4, 0)

	for i := uint8(0); i < 4; i++ {
		add(0x20+i<<3, GroupJRcc, "JR "+ccNames[i]+", r8", 2, 12, 8)
		add(0x01+i<<4, GroupLoad16Immediate, "LD "+r16Names[i]+", d16", 3, 12, 0)
		add(0x02+i<<4, GroupLoadIndirect, "LD "+indirectName[i]+", A", 1, 8, 0)
		add(0x0A+i<<4, GroupLoadIndirect, "LD A, "+indirectName[i], 1, 8, 0)
		add(0x03+i<<4, GroupInc16, "INC "+r16Names[i], 1, 8, 0)
		add(0x0B+i<<4, GroupDec16, "DEC "+r16Names[i], 1, 8, 0)
		add(0x09+i<<4, GroupAddHL, "ADD HL, "+r16Names[i], 1, 8, 0)

		add(0xC0+i<<3, GroupRetcc, "RET "+ccNames[i], 1, 20, 8)
		add(0xC2+i<<3, GroupJPcc, "JP "+ccNames[i]+", a16", 3, 16, 12)
		add(0xC4+i<<3, GroupCallcc, "CALL "+ccNames[i]+", a16", 3, 24, 12)
		add(0xC1+i<<4, GroupPop, "POP "+r16StkNames[i], 1, 12, 0)
		add(0xC5+i<<4, GroupPush, "PUSH "+r16StkNames[i], 1, 16, 0)
	}

	for r := uint8(0); r < 8; r++ {
		add(0x04+r<<3, GroupInc8, "INC "+r8Names[r], 1, hlCost(r, 4, 12), 0)
		add(0x05+r<<3, GroupDec8, "DEC "+r8Names[r], 1, hlCost(r, 4, 12), 0)
		add(0x06+r<<3, GroupLoad8Immediate, "LD "+r8Names[r]+", d8", 2, hlCost(r, 8, 12), 0)

		add(0xC6+r<<3, aluGroups[r], aluNames[r]+"d8", 2, 8, 0)
		add(0xC7+r<<3, GroupRST, fmt.Sprintf("RST %02XH", r<<3), 1, 16, 0)
	}

	// 0x40 - 0x7F
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x40 | dst<<3 | src
			if opcode == 0x76 {
				add(opcode, GroupHALT, "HALT", 1, 4, 0)
				continue
			}
			cycles := uint8(4)
			if dst == 6 || src == 6 {
				cycles = 8
			}
			add(opcode, GroupLoad8, "LD "+r8Names[dst]+", "+r8Names[src], 1, cycles, 0)
		}
	}

	// 0x80 - 0xBF
	for op := uint8(0); op < 8; op++ {
		for src := uint8(0); src < 8; src++ {
			add(0x80|op<<3|src, aluGroups[op], aluNames[op]+r8Names[src], 1, hlCost(src, 4, 8), 0)
		}
	}

	add(0xC3, GroupJP, "JP a16", 3, 16, 0)
	add(0xC9, GroupRet, "RET", 1, 16, 0)
	add(0xCB, GroupPrefix, "PREFIX CB", 2, 4, 0)
	add(0xCD, GroupCall, "CALL a16", 3, 24, 0)
	add(0xD9, GroupRETI, "RETI", 1, 16, 0)
	add(0xE0, GroupLoadHigh, "LDH (a8), A", 2, 12, 0)
	add(0xF0, GroupLoadHigh, "LDH A, (a8)", 2, 12, 0)
	add(0xE2, GroupLoadHigh, "LD (C), A", 1, 8, 0)
	add(0xF2, GroupLoadHigh, "LD A, (C)", 1, 8, 0)
	add(0xE8, GroupAddSP, "ADD SP, r8", 2, 16, 0)
	add(0xE9, GroupJPHL, "JP HL", 1, 4, 0)
	add(0xEA, GroupLoadAbsolute, "LD (a16), A", 3, 16, 0)
	add(0xFA, GroupLoadAbsolute, "LD A, (a16)", 3, 16, 0)
	add(0xF3, GroupDI, "DI", 1, 4, 0)
	add(0xFB, GroupEI, "EI", 1, 4, 0)
	add(0xF8, GroupLoadHLSP, "LD HL, SP+r8", 2, 12, 0)
	add(0xF9, GroupLoadSPHL, "LD SP, HL", 1, 8, 0)

	for _, opcode := range undefinedOpcodes {
		add(opcode, GroupUndefined, fmt.Sprintf("UNDEFINED %02X", opcode), 1, 0, 0)
	}

	return defs
}

func extendedDefinitions() []definition {
	defs := make([]definition, 0, 256)
	for i := 0; i < 256; i++ {
		opcode := uint8(i)
		r, y := opcode&7, opcode>>3&7
		d := definition{opcode: opcode, length: 2, cycles: 4}
		switch opcode >> 6 {
		case 0:
			d.group, d.name = shiftGroups[y], shiftNames[y]+r8Names[r]
			if r == 6 {
				d.cycles = 12
			}
		case 1:
			d.group, d.name = GroupBIT, fmt.Sprintf("BIT %d, %s", y, r8Names[r])
			if r == 6 {
				d.cycles = 8
			}
		case 2:
			d.group, d.name = GroupRES, fmt.Sprintf("RES %d, %s", y, r8Names[r])
			if r == 6 {
				d.cycles = 12
			}
		case 3:
			d.group, d.name = GroupSET, fmt.Sprintf("SET %d, %s", y, r8Names[r])
			if r == 6 {
				d.cycles = 12
			}
		}
		defs = append(defs, d)
	}

	return defs
}
