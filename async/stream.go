//go:build unix

package async

import (
	"golang.org/x/sys/unix"
)

// StreamHandle is a bidirectional byte stream over a socket fd: an
// accepted TCP connection, most commonly one the GDB server talks RSP
// over.
type StreamHandle struct {
	mgr    *Manager
	poll   *PollHandle
	fd     int
	closed bool

	readCb     func([]byte, interface{})
	readClient interface{}
	readActive bool

	writeQueue []pendingWrite
}

type pendingWrite struct {
	buf    []byte
	off    int
	cb     func(error, interface{})
	client interface{}
}

func newStream(mgr *Manager, fd int) *StreamHandle {
	s := &StreamHandle{mgr: mgr, fd: fd}
	s.poll = mgr.PollInit(fd)
	return s
}

// ReadStart enables delivery of inbound bytes to cb. cb receives a nil
// (or zero-length) slice on EOF or error and is expected to terminate the
// session in that case.
func (s *StreamHandle) ReadStart(cb func([]byte, interface{}), client interface{}) error {
	s.readCb = cb
	s.readClient = client
	s.readActive = true
	return s.rearm()
}

// ReadStop disables inbound delivery without closing the stream.
func (s *StreamHandle) ReadStop() error {
	s.readActive = false
	return s.rearm()
}

func (s *StreamHandle) rearm() error {
	mask := EventMask(0)
	if s.readActive {
		mask |= Readable
	}
	if len(s.writeQueue) > 0 {
		mask |= Writable
	}
	if mask == 0 {
		return s.poll.PollStop()
	}
	return s.poll.PollStart(mask, s.onEvent, nil)
}

func (s *StreamHandle) onEvent(mask EventMask, _ interface{}) {
	if mask&Readable != 0 {
		s.doRead()
	}
	if mask&Writable != 0 {
		s.drainWrites()
	}
}

func (s *StreamHandle) doRead() {
	buf := make([]byte, 4096)
	n, err := unix.Read(s.fd, buf)
	if err == unix.EAGAIN {
		return
	}
	if n <= 0 || err != nil {
		if s.readCb != nil {
			s.readCb(nil, s.readClient)
		}
		return
	}
	if s.readCb != nil {
		s.readCb(buf[:n], s.readClient)
	}
}

// Write queues buf for asynchronous transmission. completionCb fires once
// buf has been fully written (or on error); the caller must keep buf alive
// until then.
func (s *StreamHandle) Write(buf []byte, completionCb func(error, interface{}), client interface{}) error {
	s.writeQueue = append(s.writeQueue, pendingWrite{buf: buf, cb: completionCb, client: client})
	s.drainWrites()
	return nil
}

func (s *StreamHandle) drainWrites() {
	for len(s.writeQueue) > 0 {
		w := &s.writeQueue[0]
		n, err := unix.Write(s.fd, w.buf[w.off:])
		if err == unix.EAGAIN {
			break
		}
		if err != nil {
			s.writeQueue = s.writeQueue[1:]
			if w.cb != nil {
				w.cb(err, w.client)
			}
			continue
		}
		w.off += n
		if w.off >= len(w.buf) {
			s.writeQueue = s.writeQueue[1:]
			if w.cb != nil {
				w.cb(nil, w.client)
			}
			continue
		}
	}
	s.rearm()
}

// Close shuts down the stream and, once the platform has confirmed
// closure, invokes freeCb so the owner can release its own state.
func (s *StreamHandle) Close(freeCb func(interface{}), client interface{}) error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.poll.PollStop()
	err := unix.Close(s.fd)
	if freeCb != nil {
		freeCb(client)
	}
	return err
}
