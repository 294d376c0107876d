// Package async implements the host-event reactor: a single-thread
// readiness multiplexer over file descriptors, a TCP listen/accept helper,
// and byte-stream handles built on top of it. Everything here cooperates
// with the rest of the simulator's single-threaded model: callbacks run
// synchronously from RunOnce, never from a separate goroutine. The
// reactor itself is a thin epoll(7) wrapper (reactor_linux.go) over
// golang.org/x/sys/unix.
package async

import (
	"fmt"
	"time"

	"leigun-emu/cycle"
	"leigun-emu/internal/emulog"
)

// EventMask selects which readiness conditions a handle is interested in.
type EventMask uint8

const (
	Readable EventMask = 1 << iota
	Writable
)

var log = emulog.New("async")

// Manager owns one reactor and every handle registered against it. The
// zero value is not usable; construct with NewManager.
type Manager struct {
	clock   *cycle.Clock
	reactor reactor
	handles map[int]*PollHandle
}

// PollHandle wraps one fd's readiness subscription.
type PollHandle struct {
	mgr    *Manager
	fd     int
	mask   EventMask
	cb     func(EventMask, interface{})
	client interface{}
	active bool
}

// NewManager returns a Manager whose RunOnce bounds its wait by clock's
// FirstExpiry, so timers fire promptly even with no fd activity.
func NewManager(clock *cycle.Clock) (*Manager, error) {
	r, err := newReactor()
	if err != nil {
		return nil, fmt.Errorf("async: %w", err)
	}
	return &Manager{clock: clock, reactor: r, handles: make(map[int]*PollHandle)}, nil
}

// PollInit registers fd with the reactor, initially with no interest set:
// a handle can be created before the caller decides which events it
// wants.
func (m *Manager) PollInit(fd int) *PollHandle {
	h := &PollHandle{mgr: m, fd: fd}
	m.handles[fd] = h
	return h
}

// PollStart arms (or re-arms) a handle for the given event mask. A handle
// that was stopped can be started again.
func (h *PollHandle) PollStart(mask EventMask, cb func(EventMask, interface{}), client interface{}) error {
	h.cb = cb
	h.client = client
	h.mask = mask
	if h.active {
		return h.mgr.reactor.modify(h.fd, mask)
	}
	h.active = true
	h.mgr.handles[h.fd] = h
	return h.mgr.reactor.add(h.fd, mask)
}

// PollStop disarms a handle; pending dispatches for it are dropped before
// returning. Cancellation is synchronous.
func (h *PollHandle) PollStop() error {
	if !h.active {
		return nil
	}
	h.active = false
	delete(h.mgr.handles, h.fd)
	return h.mgr.reactor.remove(h.fd)
}

// RunOnce waits for readiness events (bounded by maxWait and by the
// clock's first timer expiry) and dispatches them. It does not itself
// advance the clock; the caller is expected to interleave RunOnce with
// cycle.Clock.Advance the way the CPU loop interleaves instruction
// execution with bus accesses.
func (m *Manager) RunOnce(maxWait time.Duration) error {
	wait := maxWait
	if first := m.clock.FirstExpiry(); first != cycle.NoExpiry {
		if bound := time.Duration(m.clock.CyclesToNs(first - m.clock.Now())); bound < wait {
			wait = bound
		}
	}
	if wait < 0 {
		wait = 0
	}
	events, err := m.reactor.wait(wait)
	if err != nil {
		return err
	}
	for _, ev := range events {
		h, ok := m.handles[ev.fd]
		if !ok || !h.active || h.cb == nil {
			continue
		}
		h.cb(ev.mask, h.client)
	}
	return nil
}

// Close releases the reactor itself. Individual handles must be stopped
// (or their owning Close called) first.
func (m *Manager) Close() error {
	return m.reactor.close()
}

type readyEvent struct {
	fd   int
	mask EventMask
}

type reactor interface {
	add(fd int, mask EventMask) error
	modify(fd int, mask EventMask) error
	remove(fd int) error
	wait(timeout time.Duration) ([]readyEvent, error)
	close() error
}
