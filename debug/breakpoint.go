package debug

// Breakpoint is a recorded software breakpoint: the bytes GetBkptIns
// wrote over the target's original instruction, and the bytes that were
// there before so removal can restore them.
type Breakpoint struct {
	Addr  uint64
	Len   int
	Saved [8]byte
}

// insertBreakpoint records and installs a software breakpoint at addr/len
// using backend, returning the new Breakpoint, or an error if the backend
// doesn't support breakpoint instructions or memory access.
func insertBreakpoint(b *Backend, addr uint64, length int) (*Breakpoint, error) {
	if b.GetBkptIns == nil || b.GetMem == nil || b.SetMem == nil {
		return nil, errUnsupportedBreakpoint
	}
	if length > len(Breakpoint{}.Saved) {
		return nil, errBreakpointTooLong
	}
	bp := &Breakpoint{Addr: addr, Len: length}
	if n := b.GetMem(bp.Saved[:length], addr); n != length {
		return nil, errBreakpointReadShort
	}
	ins := make([]byte, length)
	if n := b.GetBkptIns(ins, addr, length); n != length {
		return nil, errBreakpointEncodeShort
	}
	if n := b.SetMem(ins, addr); n != length {
		return nil, errBreakpointWriteShort
	}
	return bp, nil
}

// removeBreakpoint restores the original bytes a breakpoint overwrote.
func removeBreakpoint(b *Backend, bp *Breakpoint) error {
	if b.SetMem == nil {
		return errUnsupportedBreakpoint
	}
	if n := b.SetMem(bp.Saved[:bp.Len], bp.Addr); n != bp.Len {
		return errBreakpointWriteShort
	}
	return nil
}
