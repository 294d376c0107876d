package debug

import "errors"

var (
	errUnsupportedBreakpoint = errors.New("debug: backend does not support breakpoints")
	errBreakpointTooLong     = errors.New("debug: breakpoint length exceeds the saved-bytes capacity")
	errBreakpointReadShort   = errors.New("debug: short read saving original instruction bytes")
	errBreakpointEncodeShort = errors.New("debug: short breakpoint instruction encoding")
	errBreakpointWriteShort  = errors.New("debug: short write installing/restoring breakpoint bytes")
)
