package cpu

// Instruction bodies, adapted from the teacher's per-opcode methods onto a
// Machine taken as an explicit parameter rather than a receiver closed over at
// table-build time. Each returns any extra cycles it needs.

func opADC(m *Machine) byte {
	m.fetch()
	result := uint16(m.A) + uint16(m.fetched) + uint16(m.getFlag(FlagC))
	m.setFlag(FlagC, result > 0xFF)
	m.setFlag(FlagZ, byte(result) == 0)
	m.setFlag(FlagN, result&(1<<7) > 0)
	a := m.A & (1 << 7)
	v := m.fetched & (1 << 7)
	r := byte(result) & (1 << 7)
	m.setFlag(FlagV, (a == v) && (a != r))
	m.A = byte(result)
	return 0
}

func opAND(m *Machine) byte {
	m.fetch()
	m.A &= m.fetched
	m.setFlag(FlagZ, m.A == 0)
	m.setFlag(FlagN, m.A&(1<<7) > 0)
	return 0
}

func opASL(m *Machine) byte {
	m.fetch()
	m.setFlag(FlagC, m.fetched&(1<<7) > 0)
	result := m.fetched << 1
	if m.isImpliedAddr {
		m.A = result
	} else {
		m.Write(m.addrAbs, result)
	}
	m.setFlag(FlagZ, result == 0)
	m.setFlag(FlagN, result&(1<<7) > 0)
	return 0
}

func branchIf(m *Machine, cond bool) byte {
	if cond {
		m.cycles++
		dest := m.PC + m.addrRel
		if dest&0xFF00 != m.PC&0xFF00 {
			m.cycles++
		}
		m.PC = dest
	}
	return 0
}

func opBCC(m *Machine) byte { return branchIf(m, m.getFlag(FlagC) == 0) }
func opBCS(m *Machine) byte { return branchIf(m, m.getFlag(FlagC) != 0) }
func opBEQ(m *Machine) byte { return branchIf(m, m.getFlag(FlagZ) != 0) }
func opBMI(m *Machine) byte { return branchIf(m, m.getFlag(FlagN) != 0) }
func opBNE(m *Machine) byte { return branchIf(m, m.getFlag(FlagZ) == 0) }
func opBPL(m *Machine) byte { return branchIf(m, m.getFlag(FlagN) == 0) }
func opBVC(m *Machine) byte { return branchIf(m, m.getFlag(FlagV) == 0) }
func opBVS(m *Machine) byte { return branchIf(m, m.getFlag(FlagV) != 0) }

// opBRA is the 65C02 unconditional branch.
func opBRA(m *Machine) byte { return branchIf(m, true) }

func opBIT(m *Machine) byte {
	m.fetch()
	result := m.fetched & m.A
	m.setFlag(FlagZ, result == 0)
	m.setFlag(FlagV, m.fetched&(1<<6) > 0)
	m.setFlag(FlagN, m.fetched&(1<<7) > 0)
	return 0
}

func opBRK(m *Machine) byte {
	m.stackPush(byte(m.PC >> 8))
	m.stackPush(byte(m.PC))
	m.stackPush(m.SR | byte(FlagB))
	m.PC = m.readWord(irqVectAddr)
	m.setFlag(FlagB, true)
	return 0
}

func opCLC(m *Machine) byte { m.setFlag(FlagC, false); return 0 }
func opCLD(m *Machine) byte { m.setFlag(FlagD, false); return 0 }
func opCLI(m *Machine) byte { m.setFlag(FlagI, false); return 0 }
func opCLV(m *Machine) byte { m.setFlag(FlagV, false); return 0 }
func opSEC(m *Machine) byte { m.setFlag(FlagC, true); return 0 }
func opSED(m *Machine) byte { m.setFlag(FlagD, true); return 0 }
func opSEI(m *Machine) byte { m.setFlag(FlagI, true); return 0 }

func compare(m *Machine, reg byte) byte {
	m.fetch()
	m.setFlag(FlagC, reg >= m.fetched)
	m.setFlag(FlagZ, reg == m.fetched)
	m.setFlag(FlagN, (reg-m.fetched)&(1<<7) > 0)
	return 0
}

func opCMP(m *Machine) byte { return compare(m, m.A) }
func opCPX(m *Machine) byte { return compare(m, m.X) }
func opCPY(m *Machine) byte { return compare(m, m.Y) }

func opDEC(m *Machine) byte {
	m.fetch()
	m.fetched--
	m.Write(m.addrAbs, m.fetched)
	m.setFlag(FlagZ, m.fetched == 0)
	m.setFlag(FlagN, m.fetched&(1<<7) > 0)
	return 0
}

func opDEX(m *Machine) byte {
	m.X--
	m.setFlag(FlagZ, m.X == 0)
	m.setFlag(FlagN, m.X&(1<<7) > 0)
	return 0
}

func opDEY(m *Machine) byte {
	m.Y--
	m.setFlag(FlagZ, m.Y == 0)
	m.setFlag(FlagN, m.Y&(1<<7) > 0)
	return 0
}

func opEOR(m *Machine) byte {
	m.fetch()
	m.A ^= m.fetched
	m.setFlag(FlagZ, m.A == 0)
	m.setFlag(FlagN, m.A&(1<<7) > 0)
	return 0
}

func opINC(m *Machine) byte {
	m.fetch()
	m.fetched++
	m.Write(m.addrAbs, m.fetched)
	m.setFlag(FlagZ, m.fetched == 0)
	m.setFlag(FlagN, m.fetched&(1<<7) > 0)
	return 0
}

func opINX(m *Machine) byte {
	m.X++
	m.setFlag(FlagZ, m.X == 0)
	m.setFlag(FlagN, m.X&(1<<7) > 0)
	return 0
}

func opINY(m *Machine) byte {
	m.Y++
	m.setFlag(FlagZ, m.Y == 0)
	m.setFlag(FlagN, m.Y&(1<<7) > 0)
	return 0
}

func opJMP(m *Machine) byte { m.PC = m.addrAbs; return 0 }

func opJSR(m *Machine) byte {
	m.stackPush(byte(m.PC >> 8))
	m.stackPush(byte(m.PC))
	m.PC = m.addrAbs
	return 0
}

func opLDA(m *Machine) byte {
	m.fetch()
	m.A = m.fetched
	m.setFlag(FlagZ, m.A == 0)
	m.setFlag(FlagN, m.A&(1<<7) > 0)
	return 0
}

func opLDX(m *Machine) byte {
	m.fetch()
	m.X = m.fetched
	m.setFlag(FlagZ, m.X == 0)
	m.setFlag(FlagN, m.X&(1<<7) > 0)
	return 0
}

func opLDY(m *Machine) byte {
	m.fetch()
	m.Y = m.fetched
	m.setFlag(FlagZ, m.Y == 0)
	m.setFlag(FlagN, m.Y&(1<<7) > 0)
	return 0
}

func opLSR(m *Machine) byte {
	m.fetch()
	m.setFlag(FlagC, m.fetched&0x1 > 0)
	m.fetched >>= 1
	m.setFlag(FlagZ, m.fetched == 0)
	m.setFlag(FlagN, false)
	if m.isImpliedAddr {
		m.A = m.fetched
	} else {
		m.Write(m.addrAbs, m.fetched)
	}
	return 0
}

func opNOP(m *Machine) byte { return 0 }

func opORA(m *Machine) byte {
	m.fetch()
	m.A |= m.fetched
	m.setFlag(FlagZ, m.A == 0)
	m.setFlag(FlagN, m.A&(1<<7) > 0)
	return 0
}

func opPHA(m *Machine) byte { m.stackPush(m.A); return 0 }
func opPHP(m *Machine) byte { m.stackPush(m.SR | byte(FlagB)); return 0 }

func opPLA(m *Machine) byte {
	m.A = m.stackPop()
	m.setFlag(FlagZ, m.A == 0)
	m.setFlag(FlagN, m.A&(1<<7) > 0)
	return 0
}

func opPLP(m *Machine) byte {
	bFlag := m.getFlag(FlagB) > 0
	m.SR = m.stackPop()
	m.setFlag(FlagB, bFlag)
	m.setFlag(FlagX, true)
	return 0
}

// opPHX/opPHY/opPLX/opPLY are 65C02 additions.
func opPHX(m *Machine) byte { m.stackPush(m.X); return 0 }
func opPHY(m *Machine) byte { m.stackPush(m.Y); return 0 }
func opPLX(m *Machine) byte {
	m.X = m.stackPop()
	m.setFlag(FlagZ, m.X == 0)
	m.setFlag(FlagN, m.X&(1<<7) > 0)
	return 0
}
func opPLY(m *Machine) byte {
	m.Y = m.stackPop()
	m.setFlag(FlagZ, m.Y == 0)
	m.setFlag(FlagN, m.Y&(1<<7) > 0)
	return 0
}

// opSTZ is the 65C02 store-zero instruction.
func opSTZ(m *Machine) byte { m.Write(m.addrAbs, 0); return 0 }

func opROL(m *Machine) byte {
	m.fetch()
	carry := m.getFlag(FlagC)
	m.setFlag(FlagC, m.fetched&(1<<7) > 0)
	m.fetched = (m.fetched << 1) | carry
	m.setFlag(FlagZ, m.fetched == 0)
	m.setFlag(FlagN, m.fetched&(1<<7) > 0)
	if m.isImpliedAddr {
		m.A = m.fetched
	} else {
		m.Write(m.addrAbs, m.fetched)
	}
	return 0
}

func opROR(m *Machine) byte {
	m.fetch()
	carry := m.getFlag(FlagC)
	m.setFlag(FlagC, m.fetched&1 > 0)
	m.fetched = (m.fetched >> 1) | (carry << 7)
	m.setFlag(FlagZ, m.fetched == 0)
	m.setFlag(FlagN, m.fetched&(1<<7) > 0)
	if m.isImpliedAddr {
		m.A = m.fetched
	} else {
		m.Write(m.addrAbs, m.fetched)
	}
	return 0
}

func opRTI(m *Machine) byte {
	bFlag := m.getFlag(FlagB) > 0
	m.SR = m.stackPop()
	m.setFlag(FlagB, bFlag)
	m.setFlag(FlagX, true)
	lo := m.stackPop()
	hi := m.stackPop()
	m.PC = uint16(hi)<<8 | uint16(lo)
	return 0
}

func opRTS(m *Machine) byte {
	lo := m.stackPop()
	hi := m.stackPop()
	m.PC = uint16(hi)<<8 | uint16(lo)
	return 0
}

func opSBC(m *Machine) byte {
	m.fetch()
	sub := uint16(m.fetched) ^ 0x00FF
	result := uint16(m.A) + sub + uint16(m.getFlag(FlagC))
	m.setFlag(FlagC, result > 0xFF)
	m.setFlag(FlagZ, byte(result) == 0)
	m.setFlag(FlagN, result&(1<<7) > 0)
	a := m.A & (1 << 7)
	v := m.fetched & (1 << 7)
	r := byte(result) & (1 << 7)
	m.setFlag(FlagV, (a != v) && (v == r))
	m.A = byte(result)
	return 0
}

func opSTA(m *Machine) byte { m.Write(m.addrAbs, m.A); return 0 }
func opSTX(m *Machine) byte { m.Write(m.addrAbs, m.X); return 0 }
func opSTY(m *Machine) byte { m.Write(m.addrAbs, m.Y); return 0 }

func opTAX(m *Machine) byte {
	m.X = m.A
	m.setFlag(FlagZ, m.X == 0)
	m.setFlag(FlagN, m.X&(1<<7) > 0)
	return 0
}

func opTAY(m *Machine) byte {
	m.Y = m.A
	m.setFlag(FlagZ, m.Y == 0)
	m.setFlag(FlagN, m.Y&(1<<7) > 0)
	return 0
}

func opTSX(m *Machine) byte {
	m.X = m.SP
	m.setFlag(FlagZ, m.X == 0)
	m.setFlag(FlagN, m.X&(1<<7) > 0)
	return 0
}

func opTXA(m *Machine) byte {
	m.A = m.X
	m.setFlag(FlagZ, m.A == 0)
	m.setFlag(FlagN, m.A&(1<<7) > 0)
	return 0
}

func opTXS(m *Machine) byte { m.SP = m.X; return 0 }

func opTYA(m *Machine) byte {
	m.A = m.Y
	m.setFlag(FlagZ, m.A == 0)
	m.setFlag(FlagN, m.A&(1<<7) > 0)
	return 0
}

// opXXX is the catch-all for illegal/unimplemented opcodes.
func opXXX(m *Machine) byte { return 0 }
