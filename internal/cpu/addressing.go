package cpu

// Addressing-mode functions set addrAbs (or addrRel, for branches) and return
// any extra cycles their effective-address computation costs. Adapted from
// the teacher's per-mode layout; each now takes the Machine explicitly rather
// than closing over a receiver captured at table-build time.

func amIMP(m *Machine) byte {
	m.isImpliedAddr = true
	m.fetched = m.A
	return 0
}

func amIMM(m *Machine) byte {
	m.addrAbs = m.PC
	m.PC++
	return 0
}

func amREL(m *Machine) byte {
	addr := m.Read(m.PC)
	m.PC++
	m.addrRel = uint16(addr)
	if m.addrRel&0x80 != 0 {
		m.addrRel |= 0xFF00
	}
	return 0
}

func amZP0(m *Machine) byte {
	lo := m.Read(m.PC)
	m.PC++
	m.addrAbs = uint16(lo)
	return 0
}

func amZPX(m *Machine) byte {
	m.addrAbs = uint16(m.Read(m.PC)+m.X) & 0x00FF
	m.PC++
	return 0
}

func amZPY(m *Machine) byte {
	m.addrAbs = uint16(m.Read(m.PC)+m.Y) & 0x00FF
	m.PC++
	return 0
}

func amABS(m *Machine) byte {
	m.addrAbs = m.readWord(m.PC)
	m.PC += 2
	return 0
}

func amABX(m *Machine) byte {
	addr := m.readWord(m.PC)
	m.PC += 2
	m.addrAbs = addr + uint16(m.X)
	if m.addrAbs&0xFF00 != addr&0xFF00 {
		return 1
	}
	return 0
}

func amABY(m *Machine) byte {
	addr := m.readWord(m.PC)
	m.PC += 2
	m.addrAbs = addr + uint16(m.Y)
	if m.addrAbs&0xFF00 != addr&0xFF00 {
		return 1
	}
	return 0
}

func amIND(m *Machine) byte {
	addr := m.readWord(m.PC)
	m.PC += 2
	m.addrAbs = m.readWord(addr)
	return 0
}

func amIZX(m *Machine) byte {
	addr := (m.Read(m.PC) + m.X) & 0x00FF
	m.PC++
	lo := m.Read(uint16(addr))
	hi := m.Read((uint16(addr) + 1) & 0x00FF)
	m.addrAbs = uint16(hi)<<8 | uint16(lo)
	return 0
}

func amIZY(m *Machine) byte {
	addr := uint16(m.Read(m.PC)) & 0x00FF
	m.PC++
	lo := m.Read(addr)
	hi := m.Read((addr + 1) & 0x00FF)
	m.addrAbs = (uint16(hi)<<8 | uint16(lo)) + uint16(m.Y)
	if m.addrAbs&0xFF00 != uint16(hi)<<8 {
		return 1
	}
	return 0
}

// amZPI is the 65C02 zero-page-indirect mode: (zp), no index.
func amZPI(m *Machine) byte {
	addr := uint16(m.Read(m.PC))
	m.PC++
	lo := m.Read(addr)
	hi := m.Read((addr + 1) & 0x00FF)
	m.addrAbs = uint16(hi)<<8 | uint16(lo)
	return 0
}

func (m *Machine) fetch() {
	if !m.isImpliedAddr {
		m.fetched = m.Read(m.addrAbs)
	}
}
