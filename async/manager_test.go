//go:build linux

package async

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
	"periph.io/x/periph/conn/physic"

	"leigun-emu/cycle"
)

func socketpair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	unix.SetNonblock(fds[0], true)
	unix.SetNonblock(fds[1], true)
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestPollFiresOnReadable(t *testing.T) {
	clk := cycle.NewClock(physic.MegaHertz)
	m, err := NewManager(clk)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	a, b := socketpair(t)
	h := m.PollInit(a)
	fired := make(chan EventMask, 1)
	if err := h.PollStart(Readable, func(mask EventMask, _ interface{}) { fired <- mask }, nil); err != nil {
		t.Fatalf("PollStart: %v", err)
	}

	unix.Write(b, []byte("hi"))
	if err := m.RunOnce(time.Second); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	select {
	case mask := <-fired:
		if mask&Readable == 0 {
			t.Fatalf("mask = %v, want Readable set", mask)
		}
	default:
		t.Fatal("callback did not fire for a readable socket")
	}
}

func TestStreamReadStartStop(t *testing.T) {
	clk := cycle.NewClock(physic.MegaHertz)
	m, err := NewManager(clk)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	a, b := socketpair(t)
	s := newStream(m, a)

	var got []byte
	s.ReadStart(func(buf []byte, _ interface{}) { got = append(got, buf...) }, nil)

	unix.Write(b, []byte("hello"))
	if err := m.RunOnce(time.Second); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}

	s.ReadStop()
	unix.Write(b, []byte("ignored"))
	m.RunOnce(10 * time.Millisecond)
	if string(got) != "hello" {
		t.Fatalf("got %q after ReadStop, want unchanged %q", got, "hello")
	}
}

func TestStreamWriteCompletion(t *testing.T) {
	clk := cycle.NewClock(physic.MegaHertz)
	m, err := NewManager(clk)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	a, b := socketpair(t)
	s := newStream(m, a)

	done := make(chan error, 1)
	if err := s.Write([]byte("payload"), func(err error, _ interface{}) { done <- err }, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("write completion error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("write completion never fired")
	}

	buf := make([]byte, 16)
	n, _ := unix.Read(b, buf)
	if string(buf[:n]) != "payload" {
		t.Fatalf("peer read %q, want %q", buf[:n], "payload")
	}
}

func TestRunOnceBoundedByFirstExpiry(t *testing.T) {
	clk := cycle.NewClock(physic.GigaHertz)
	m, err := NewManager(clk)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	clk.NewTimer(func(interface{}) {}, nil).Mod(1) // expires almost immediately

	start := time.Now()
	if err := m.RunOnce(time.Hour); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("RunOnce waited %v, want it bounded by the near timer expiry", elapsed)
	}
}
