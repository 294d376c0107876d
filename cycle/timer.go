package cycle

import "container/heap"

// Timer is a one-shot cycle timer. At most one active instance exists
// per Timer at a time; Mod re-arms it (cancelling any pending expiry first).
type Timer struct {
	clock      *Clock
	expiry     int64
	seq        uint64
	cb         func(clientData interface{})
	clientData interface{}
	active     bool
	index      int // position in the heap, -1 when not active/not in heap
}

// NewTimer creates an inactive timer. Call Mod to arm it.
func (c *Clock) NewTimer(cb func(clientData interface{}), clientData interface{}) *Timer {
	return &Timer{clock: c, cb: cb, clientData: clientData, index: -1}
}

// Mod (re)arms the timer to fire deltaCycles from now, cancelling any
// pending expiry. deltaCycles must be > 0; a timer never fires in the past.
func (t *Timer) Mod(deltaCycles int64) {
	if deltaCycles <= 0 {
		deltaCycles = 1
	}
	c := t.clock
	if t.active {
		heap.Remove(&c.h, t.index)
	}
	t.expiry = c.now + deltaCycles
	t.seq = c.seqNext()
	t.active = true
	heap.Push(&c.h, t)
}

// Remove makes an active timer inactive synchronously. A no-op if the
// timer is already inactive. A timer whose callback has already begun
// running completes; Remove only affects future firing.
func (t *Timer) Remove() {
	if !t.active {
		return
	}
	heap.Remove(&t.clock.h, t.index)
	t.active = false
	t.index = -1
}

// IsActive reports whether the timer is currently armed.
func (t *Timer) IsActive() bool { return t.active }

func (c *Clock) seqNext() uint64 {
	c.seq++
	return c.seq
}

// timerHeap is a min-heap ordered by (expiry, seq): earliest expiry first,
// FIFO among timers sharing an expiry.
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].expiry != h[j].expiry {
		return h[i].expiry < h[j].expiry
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x interface{}) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
