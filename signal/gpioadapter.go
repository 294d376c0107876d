package signal

import (
	"errors"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
)

// pinAdapter exposes a Node as a periph.io/x/periph/conn/gpio.PinIO, so a
// real periph.io-based peripheral driver can treat a simulated pin exactly
// like real hardware.
type pinAdapter struct {
	n    *Node
	num  int
	fn   string
	pull gpio.Pull
}

// AsPinIO wraps n as a gpio.PinIO. num and fn are cosmetic (periph.io's
// pin.Pin.Number/Function), matching what a board's pin-header registration
// code would supply.
func AsPinIO(n *Node, num int, fn string) gpio.PinIO {
	return &pinAdapter{n: n, num: num, fn: fn, pull: gpio.Float}
}

// String implements conn.Resource.
func (p *pinAdapter) String() string { return p.n.Name() }

// Halt implements conn.Resource. A simulated pin has nothing to halt.
func (p *pinAdapter) Halt() error { return nil }

// Name implements pin.Pin.
func (p *pinAdapter) Name() string { return p.n.Name() }

// Number implements pin.Pin.
func (p *pinAdapter) Number() int { return p.num }

// Function implements pin.Pin.
func (p *pinAdapter) Function() string { return p.fn }

// In implements gpio.PinIn: drives the requested pull onto the node (weak
// levels only) and records it for Pull()/DefaultPull(). Edge-triggered
// notification is not supported; use Node.Trace directly for that.
func (p *pinAdapter) In(pull gpio.Pull, edge gpio.Edge) error {
	if edge != gpio.NoEdge {
		return errors.New("signal: edge triggering is not supported via the gpio.PinIO adapter; use Node.Trace")
	}
	switch pull {
	case gpio.PullUp:
		p.n.Set(PULLUP)
	case gpio.PullDown:
		p.n.Set(PULLDOWN)
	case gpio.Float, gpio.PullNoChange:
		p.n.Set(OPEN)
	default:
		return errors.New("signal: unsupported pull")
	}
	p.pull = pull
	return nil
}

// Read implements gpio.PinIn. A weak pull-up resolution reads high, the
// same way a real input stage sees a pulled-up line.
func (p *pinAdapter) Read() gpio.Level {
	v := p.n.Val()
	return v == HIGH || v == PULLUP
}

// WaitForEdge implements gpio.PinIn. Polling-only adapter: edges are not
// supported, so this always reports no edge occurred within t.
func (p *pinAdapter) WaitForEdge(t time.Duration) bool { return false }

// DefaultPull implements gpio.PinIn.
func (p *pinAdapter) DefaultPull() gpio.Pull { return gpio.Float }

// Pull implements gpio.PinIn.
func (p *pinAdapter) Pull() gpio.Pull { return p.pull }

// Out implements gpio.PinOut: drives a strong level onto the node.
func (p *pinAdapter) Out(l gpio.Level) error {
	if l {
		p.n.Set(HIGH)
	} else {
		p.n.Set(LOW)
	}
	return nil
}

// PWM implements gpio.PinOut. Not modeled: a signal node has no duty-cycle
// concept, only an instantaneous resolved level.
func (p *pinAdapter) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("signal: PWM not implemented")
}
