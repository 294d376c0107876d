package bus

import "errors"

var (
	errUnsupportedSpecialCycle = errors.New("bus: device has no special-cycle handler")
	errOverlap                 = errors.New("bus: region overlaps an already-registered region")
)
