package engine

import "github.com/pm100/db65-sub000/internal/cpu"

// transientHeapKey is the address a pending allocation is recorded under
// between the call to malloc and its return (spec §3 heap blocks).
const transientHeapKey = 0

// mallocIntercept implements spec §4.7's malloc entry/return handling.
func mallocIntercept(e *Engine, entering bool) *StopReason {
	if entering {
		size := uint16(e.M.X)<<8 | uint16(e.M.A)
		e.heap[transientHeapKey] = &HeapBlock{Size: size, AllocSitePC: e.M.PC}
		e.privileged = true
		return nil
	}

	e.privileged = false
	pending, ok := e.heap[transientHeapKey]
	delete(e.heap, transientHeapKey)
	if !ok {
		return nil
	}
	addr := uint16(e.M.X)<<8 | uint16(e.M.A)
	if addr == 0 {
		// malloc failure, not a bug.
		return nil
	}
	pending.Addr = addr
	e.heap[addr] = pending
	grantRange(e.M, addr, pending.Size)
	return nil
}

// freeIntercept implements spec §4.7's free entry handling: a free of an
// address with no tracked block is a heap-check bug; a legitimate free
// clears the block's shadow bits so a subsequent use trips ReadBeforeWrite.
func freeIntercept(e *Engine, entering bool) *StopReason {
	if !entering {
		return nil
	}
	addr := uint16(e.M.X)<<8 | uint16(e.M.A)
	if addr == 0 {
		return nil // free(NULL) is a no-op, not tracked
	}
	block, ok := e.heap[addr]
	if !ok {
		if !e.heapCheck {
			return nil
		}
		return &StopReason{Kind: StopBug, Bug: BugHeapCheck}
	}
	delete(e.heap, addr)
	clearRange(e.M, addr, block.Size)
	return nil
}

// reallocIntercept is the best-effort realloc handling resolved in spec §9:
// it cannot detect an in-place shrink-then-grow race across two separate
// calls, but it does correctly re-key a tracked block to its new address
// and size. A moved block loses the old range's shadow grant; the new range
// is granted in full, and an in-place shrink revokes nothing.
func reallocIntercept(e *Engine, entering bool) *StopReason {
	if entering {
		oldAddr := uint16(e.M.X)<<8 | uint16(e.M.A)
		size := e.M.PeekWord(e.currentSP65()) // best-effort: cc65 passes size on the C stack, not in registers
		e.heap[transientHeapKey] = &HeapBlock{AllocSitePC: e.M.PC, ReallocSize: size, HasRealloc: true, Addr: oldAddr}
		e.privileged = true
		return nil
	}

	e.privileged = false
	pending, ok := e.heap[transientHeapKey]
	delete(e.heap, transientHeapKey)
	if !ok {
		return nil
	}
	newAddr := uint16(e.M.X)<<8 | uint16(e.M.A)
	if newAddr == 0 {
		return nil // realloc failure leaves the original block untouched
	}
	if old, ok := e.heap[pending.Addr]; ok {
		delete(e.heap, pending.Addr)
		if pending.Addr != newAddr {
			clearRange(e.M, pending.Addr, old.Size)
		}
	}
	e.heap[newAddr] = &HeapBlock{Addr: newAddr, Size: pending.ReallocSize, AllocSitePC: pending.AllocSitePC}
	grantRange(e.M, newAddr, pending.ReallocSize)
	return nil
}

func grantRange(m *cpu.Machine, addr, size uint16) {
	shadow := m.Shadow()
	end := uint32(addr) + uint32(size)
	for a := uint32(addr); a < end && a < 0x10000; a++ {
		shadow[a] |= cpu.ShadowRead | cpu.ShadowWrite
	}
}

func clearRange(m *cpu.Machine, addr, size uint16) {
	shadow := m.Shadow()
	end := uint32(addr) + uint32(size)
	for a := uint32(addr); a < end && a < 0x10000; a++ {
		shadow[a] = 0
	}
}

// GetHeapBlocks returns the current heap tracker snapshot (SPEC_FULL §12).
func (e *Engine) GetHeapBlocks() []HeapBlock {
	out := make([]HeapBlock, 0, len(e.heap))
	for addr, b := range e.heap {
		if addr == transientHeapKey {
			continue
		}
		out = append(out, *b)
	}
	return out
}
