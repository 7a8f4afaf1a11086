package cpu

// buildLookup constructs the 256-entry opcode dispatch table. The standard
// 6502 layout is carried over verbatim from the teacher's table; a handful of
// 65C02-only opcodes are layered on top of illegal (XXX) slots when the
// machine is running in Variant65C02. Most illegal-opcode slots remain XXX:
// full undocumented-opcode and full 65C02 superset fidelity is out of scope
// (spec §1 Non-goals: "any 6502 variant beyond the two cpu codes").
func (m *Machine) buildLookup() {
	xxx := instruction{"XXX", opXXX, amIMP, 2}
	t := &m.instLookup

	for i := range t {
		t[i] = xxx
	}

	set := func(op byte, name string, exec func(*Machine) byte, mode func(*Machine) byte, cycles byte) {
		t[op] = instruction{name, exec, mode, cycles}
	}

	set(0x00, "BRK", opBRK, amIMP, 7)
	set(0x01, "ORA", opORA, amIZX, 6)
	set(0x05, "ORA", opORA, amZP0, 3)
	set(0x06, "ASL", opASL, amZP0, 5)
	set(0x08, "PHP", opPHP, amIMP, 3)
	set(0x09, "ORA", opORA, amIMM, 2)
	set(0x0A, "ASL", opASL, amIMP, 2)
	set(0x0D, "ORA", opORA, amABS, 4)
	set(0x0E, "ASL", opASL, amABS, 6)

	set(0x10, "BPL", opBPL, amREL, 2)
	set(0x11, "ORA", opORA, amIZY, 5)
	set(0x15, "ORA", opORA, amZPX, 4)
	set(0x16, "ASL", opASL, amZPX, 6)
	set(0x18, "CLC", opCLC, amIMP, 2)
	set(0x19, "ORA", opORA, amABY, 4)
	set(0x1D, "ORA", opORA, amABX, 4)
	set(0x1E, "ASL", opASL, amABX, 7)

	set(0x20, "JSR", opJSR, amABS, 6)
	set(0x21, "AND", opAND, amIZX, 6)
	set(0x24, "BIT", opBIT, amZP0, 3)
	set(0x25, "AND", opAND, amZP0, 3)
	set(0x26, "ROL", opROL, amZP0, 5)
	set(0x28, "PLP", opPLP, amIMP, 4)
	set(0x29, "AND", opAND, amIMM, 2)
	set(0x2A, "ROL", opROL, amIMP, 2)
	set(0x2C, "BIT", opBIT, amABS, 4)
	set(0x2D, "AND", opAND, amABS, 4)
	set(0x2E, "ROL", opROL, amABS, 6)

	set(0x30, "BMI", opBMI, amREL, 2)
	set(0x31, "AND", opAND, amIZY, 5)
	set(0x35, "AND", opAND, amZPX, 4)
	set(0x36, "ROL", opROL, amZPX, 6)
	set(0x38, "SEC", opSEC, amIMP, 2)
	set(0x39, "AND", opAND, amABY, 4)
	set(0x3D, "AND", opAND, amABX, 4)
	set(0x3E, "ROL", opROL, amABX, 7)

	set(0x40, "RTI", opRTI, amIMP, 6)
	set(0x41, "EOR", opEOR, amIZX, 6)
	set(0x45, "EOR", opEOR, amZP0, 3)
	set(0x46, "LSR", opLSR, amZP0, 5)
	set(0x48, "PHA", opPHA, amIMP, 3)
	set(0x49, "EOR", opEOR, amIMM, 2)
	set(0x4A, "LSR", opLSR, amIMP, 2)
	set(0x4C, "JMP", opJMP, amABS, 3)
	set(0x4D, "EOR", opEOR, amABS, 4)
	set(0x4E, "LSR", opLSR, amABS, 6)

	set(0x50, "BVC", opBVC, amREL, 2)
	set(0x51, "EOR", opEOR, amIZY, 5)
	set(0x55, "EOR", opEOR, amZPX, 4)
	set(0x56, "LSR", opLSR, amZPX, 6)
	set(0x58, "CLI", opCLI, amIMP, 2)
	set(0x59, "EOR", opEOR, amABY, 4)
	set(0x5D, "EOR", opEOR, amABX, 4)
	set(0x5E, "LSR", opLSR, amABX, 7)

	set(0x60, "RTS", opRTS, amIMP, 6)
	set(0x61, "ADC", opADC, amIZX, 6)
	set(0x65, "ADC", opADC, amZP0, 3)
	set(0x66, "ROR", opROR, amZP0, 5)
	set(0x68, "PLA", opPLA, amIMP, 4)
	set(0x69, "ADC", opADC, amIMM, 2)
	set(0x6A, "ROR", opROR, amIMP, 2)
	set(0x6C, "JMP", opJMP, amIND, 5)
	set(0x6D, "ADC", opADC, amABS, 4)
	set(0x6E, "ROR", opROR, amABS, 6)

	set(0x70, "BVS", opBVS, amREL, 2)
	set(0x71, "ADC", opADC, amIZY, 5)
	set(0x75, "ADC", opADC, amZPX, 4)
	set(0x76, "ROR", opROR, amZPX, 6)
	set(0x78, "SEI", opSEI, amIMP, 2)
	set(0x79, "ADC", opADC, amABY, 4)
	set(0x7D, "ADC", opADC, amABX, 4)
	set(0x7E, "ROR", opROR, amABX, 7)

	set(0x81, "STA", opSTA, amIZX, 6)
	set(0x84, "STY", opSTY, amZP0, 3)
	set(0x85, "STA", opSTA, amZP0, 3)
	set(0x86, "STX", opSTX, amZP0, 3)
	set(0x88, "DEY", opDEY, amIMP, 2)
	set(0x8A, "TXA", opTXA, amIMP, 2)
	set(0x8C, "STY", opSTY, amABS, 4)
	set(0x8D, "STA", opSTA, amABS, 4)
	set(0x8E, "STX", opSTX, amABS, 4)

	set(0x90, "BCC", opBCC, amREL, 2)
	set(0x91, "STA", opSTA, amIZY, 6)
	set(0x94, "STY", opSTY, amZPX, 4)
	set(0x95, "STA", opSTA, amZPX, 4)
	set(0x96, "STX", opSTX, amZPY, 4)
	set(0x98, "TYA", opTYA, amIMP, 2)
	set(0x99, "STA", opSTA, amABY, 5)
	set(0x9A, "TXS", opTXS, amIMP, 2)
	set(0x9D, "STA", opSTA, amABX, 5)

	set(0xA0, "LDY", opLDY, amIMM, 2)
	set(0xA1, "LDA", opLDA, amIZX, 6)
	set(0xA2, "LDX", opLDX, amIMM, 2)
	set(0xA4, "LDY", opLDY, amZP0, 3)
	set(0xA5, "LDA", opLDA, amZP0, 3)
	set(0xA6, "LDX", opLDX, amZP0, 3)
	set(0xA8, "TAY", opTAY, amIMP, 2)
	set(0xA9, "LDA", opLDA, amIMM, 2)
	set(0xAA, "TAX", opTAX, amIMP, 2)
	set(0xAC, "LDY", opLDY, amABS, 4)
	set(0xAD, "LDA", opLDA, amABS, 4)
	set(0xAE, "LDX", opLDX, amABS, 4)

	set(0xB0, "BCS", opBCS, amREL, 2)
	set(0xB1, "LDA", opLDA, amIZY, 5)
	set(0xB4, "LDY", opLDY, amZPX, 4)
	set(0xB5, "LDA", opLDA, amZPX, 4)
	set(0xB6, "LDX", opLDX, amZPY, 4)
	set(0xB8, "CLV", opCLV, amIMP, 2)
	set(0xB9, "LDA", opLDA, amABY, 4)
	set(0xBA, "TSX", opTSX, amIMP, 2)
	set(0xBC, "LDY", opLDY, amABX, 4)
	set(0xBD, "LDA", opLDA, amABX, 4)
	set(0xBE, "LDX", opLDX, amABY, 4)

	set(0xC0, "CPY", opCPY, amIMM, 2)
	set(0xC1, "CMP", opCMP, amIZX, 6)
	set(0xC4, "CPY", opCPY, amZP0, 3)
	set(0xC5, "CMP", opCMP, amZP0, 3)
	set(0xC6, "DEC", opDEC, amZP0, 5)
	set(0xC8, "INY", opINY, amIMP, 2)
	set(0xC9, "CMP", opCMP, amIMM, 2)
	set(0xCA, "DEX", opDEX, amIMP, 2)
	set(0xCC, "CPY", opCPY, amABS, 4)
	set(0xCD, "CMP", opCMP, amABS, 4)
	set(0xCE, "DEC", opDEC, amABS, 6)

	set(0xD0, "BNE", opBNE, amREL, 2)
	set(0xD1, "CMP", opCMP, amIZY, 5)
	set(0xD5, "CMP", opCMP, amZPX, 4)
	set(0xD6, "DEC", opDEC, amZPX, 6)
	set(0xD8, "CLD", opCLD, amIMP, 2)
	set(0xD9, "CMP", opCMP, amABY, 4)
	set(0xDD, "CMP", opCMP, amABX, 4)
	set(0xDE, "DEC", opDEC, amABX, 7)

	set(0xE0, "CPX", opCPX, amIMM, 2)
	set(0xE1, "SBC", opSBC, amIZX, 6)
	set(0xE4, "CPX", opCPX, amZP0, 3)
	set(0xE5, "SBC", opSBC, amZP0, 3)
	set(0xE6, "INC", opINC, amZP0, 5)
	set(0xE8, "INX", opINX, amIMP, 2)
	set(0xE9, "SBC", opSBC, amIMM, 2)
	set(0xEA, "NOP", opNOP, amIMP, 2)
	set(0xEC, "CPX", opCPX, amABS, 4)
	set(0xED, "SBC", opSBC, amABS, 4)
	set(0xEE, "INC", opINC, amABS, 6)

	set(0xF0, "BEQ", opBEQ, amREL, 2)
	set(0xF1, "SBC", opSBC, amIZY, 5)
	set(0xF5, "SBC", opSBC, amZPX, 4)
	set(0xF6, "INC", opINC, amZPX, 6)
	set(0xF8, "SED", opSED, amIMP, 2)
	set(0xF9, "SBC", opSBC, amABY, 4)
	set(0xFD, "SBC", opSBC, amABX, 4)
	set(0xFE, "INC", opINC, amABX, 7)

	if m.variant == Variant65C02 {
		set(0x12, "ORA", opORA, amZPI, 5)
		set(0x1A, "INC", func(mm *Machine) byte { mm.A++; mm.setFlag(FlagZ, mm.A == 0); mm.setFlag(FlagN, mm.A&0x80 > 0); return 0 }, amIMP, 2)
		set(0x32, "AND", opAND, amZPI, 5)
		set(0x3A, "DEC", func(mm *Machine) byte { mm.A--; mm.setFlag(FlagZ, mm.A == 0); mm.setFlag(FlagN, mm.A&0x80 > 0); return 0 }, amIMP, 2)
		set(0x52, "EOR", opEOR, amZPI, 5)
		set(0x5A, "PHY", opPHY, amIMP, 3)
		set(0x64, "STZ", opSTZ, amZP0, 3)
		set(0x72, "ADC", opADC, amZPI, 5)
		set(0x7A, "PLY", opPLY, amIMP, 4)
		set(0x80, "BRA", opBRA, amREL, 3)
		set(0x92, "STA", opSTA, amZPI, 5)
		set(0x9C, "STZ", opSTZ, amABS, 4)
		set(0x9E, "STZ", opSTZ, amABX, 5)
		set(0xB2, "LDA", opLDA, amZPI, 5)
		set(0xD2, "CMP", opCMP, amZPI, 5)
		set(0xDA, "PHX", opPHX, amIMP, 3)
		set(0xF2, "SBC", opSBC, amZPI, 5)
		set(0xFA, "PLX", opPLX, amIMP, 4)
	}
}

// Mnemonic returns the instruction mnemonic at the given opcode, for
// disassembly/dump use.
func (m *Machine) Mnemonic(opcode byte) string { return m.instLookup[opcode].Name }
