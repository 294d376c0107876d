// Package screen implements a live terminal console that renders the
// resolved level of a configured set of signal nodes (e.g. SPI/I²C bus
// activity, an LCD chip-select line) as one colored cell per node,
// refreshed on every trace callback.
package screen

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"leigun-emu/signal"
)

// levelColor is the cell color for each signal.Level: strong levels are
// saturated, weak (pull) levels are dim, OPEN is gray. Node.Val resolves
// weak pulls to HIGH or LOW, so a cell shows the HIGH, LOW or OPEN color.
var levelColor = map[signal.Level]color.NRGBA{
	signal.HIGH:     {R: 0x00, G: 0xd0, B: 0x00, A: 0xff},
	signal.LOW:      {R: 0xd0, G: 0x00, B: 0x00, A: 0xff},
	signal.PULLUP:   {R: 0x40, G: 0x60, B: 0x00, A: 0xff},
	signal.PULLDOWN: {R: 0x00, G: 0x30, B: 0x60, A: 0xff},
	signal.OPEN:     {R: 0x30, G: 0x30, B: 0x30, A: 0xff},
}

// Console is a terminal tracer over a fixed set of signal nodes. Create
// with New, which subscribes a trace on each node; the console repaints
// its whole row whenever any watched node's resolved level changes.
type Console struct {
	w      io.Writer
	color  bool
	nodes  []*signal.Node
	traces []*signal.Trace
	buf    bytes.Buffer
}

// New returns a Console painting one cell per name, in order, looked up
// (or created) in net. Color output is gated on stdout being a real
// terminal.
func New(net *signal.Network, names ...string) *Console {
	c := &Console{
		w:     colorable.NewColorableStdout(),
		color: isatty.IsTerminal(os.Stdout.Fd()),
	}
	for _, name := range names {
		n := net.New(name)
		c.nodes = append(c.nodes, n)
		c.traces = append(c.traces, n.Trace(func(*signal.Node, signal.Level, interface{}) {
			c.refresh()
		}, nil))
	}
	c.refresh()
	return c
}

// String implements conn.Resource.
func (c *Console) String() string { return "Console" }

// Halt implements conn.Resource: stop watching and clear the display so
// the terminal is left in a clean state.
func (c *Console) Halt() error {
	for _, t := range c.traces {
		t.Untrace()
	}
	_, err := c.w.Write([]byte("\n\033[0m"))
	return err
}

func (c *Console) refresh() {
	c.buf.Reset()
	_, _ = c.buf.WriteString("\r\033[0m")
	for _, n := range c.nodes {
		lvl := n.Val()
		if c.color {
			_, _ = io.WriteString(&c.buf, ansi256.Default.Block(levelColor[lvl]))
		} else {
			fmt.Fprintf(&c.buf, "[%s:%s] ", n.Name(), lvl)
		}
	}
	_, _ = c.buf.WriteString("\033[0m ")
	_, _ = c.buf.WriteTo(c.w)
}
