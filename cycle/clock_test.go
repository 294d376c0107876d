package cycle

import (
	"testing"

	"periph.io/x/periph/conn/physic"
)

// A timer armed N cycles out fires exactly once, on the advance that
// reaches its expiry.
func TestTimerFiresOnceAtExpiry(t *testing.T) {
	c := NewClock(physic.GigaHertz)
	fired := 0
	tm := c.NewTimer(func(interface{}) { fired++ }, nil)
	tm.Mod(1000)

	c.Advance(999)
	if fired != 0 {
		t.Fatalf("fired=%d before expiry", fired)
	}
	if !tm.IsActive() {
		t.Fatal("timer should still be active before expiry")
	}

	c.Advance(1)
	if fired != 1 {
		t.Fatalf("fired=%d, want 1", fired)
	}
	if tm.IsActive() {
		t.Fatal("timer should be inactive after firing")
	}
}

func TestFirstExpiryCoherence(t *testing.T) {
	c := NewClock(physic.MegaHertz)
	if got := c.FirstExpiry(); got != noExpiry {
		t.Fatalf("FirstExpiry on empty clock = %d, want noExpiry", got)
	}
	a := c.NewTimer(func(interface{}) {}, nil)
	b := c.NewTimer(func(interface{}) {}, nil)
	a.Mod(500)
	b.Mod(100)
	if got := c.FirstExpiry(); got != 100 {
		t.Fatalf("FirstExpiry = %d, want 100", got)
	}
	b.Remove()
	if got := c.FirstExpiry(); got != 500 {
		t.Fatalf("FirstExpiry after remove = %d, want 500", got)
	}
}

func TestMonotonicity(t *testing.T) {
	c := NewClock(physic.MegaHertz)
	c.Advance(10)
	c.Advance(0)
	c.Advance(5)
	if c.Now() != 15 {
		t.Fatalf("Now() = %d, want 15", c.Now())
	}
}

func TestReentrantRearm(t *testing.T) {
	c := NewClock(physic.MegaHertz)
	count := 0
	var self *Timer
	self = c.NewTimer(func(interface{}) {
		count++
		if count < 3 {
			self.Mod(10)
		}
	}, nil)
	self.Mod(10)
	c.Advance(10)
	c.Advance(10)
	c.Advance(10)
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestFIFOOrderingAtSameExpiry(t *testing.T) {
	c := NewClock(physic.MegaHertz)
	var order []int
	for i := 0; i < 4; i++ {
		i := i
		tm := c.NewTimer(func(interface{}) { order = append(order, i) }, nil)
		tm.Mod(100)
	}
	c.Advance(100)
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want FIFO 0..3", order)
		}
	}
}
