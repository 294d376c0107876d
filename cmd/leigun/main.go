//go:build unix

// leigun wires the core simulation substrate together from a
// configuration file and blocks servicing timers, async I/O and the
// senseless-poll detector. The CPU stepping loop itself lives in the
// loaded CPU model; this command's run loop is a placeholder that keeps
// the substrate alive for a peripheral/CPU model plugged in via the
// plugin loader.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"periph.io/x/periph/conn/physic"

	"leigun-emu/async"
	"leigun-emu/bus"
	"leigun-emu/config"
	"leigun-emu/cycle"
	"leigun-emu/debug"
	"leigun-emu/devices/screen"
	"leigun-emu/internal/emulog"
	"leigun-emu/plugin"
	"leigun-emu/senseless"
	"leigun-emu/signal"
)

var log = emulog.New("main")

// system holds every core component, wired leaves-first in dependency
// order.
type system struct {
	cfg    *config.Store
	clock  *cycle.Clock
	net    *signal.Network
	mgr    *async.Manager
	bus    *bus.Bus
	poll   *senseless.Detector
	dbg    *debug.Server
	loader *plugin.Loader
}

func mainImpl() error {
	verbose := flag.Bool("v", false, "verbose console tracing of [console] watch nodes")
	flag.Parse()
	if flag.NArg() == 0 {
		return errors.New("usage: leigun [-v] config-file [config-file ...]")
	}

	cfg := config.New()
	for _, path := range flag.Args() {
		if err := cfg.LoadFile(path); err != nil {
			return fmt.Errorf("leigun: %w", err)
		}
	}

	sys, err := newSystem(cfg)
	if err != nil {
		return err
	}
	defer sys.mgr.Close()

	if *verbose {
		if watch, ok := cfg.ReadList("console", "watch"); ok && len(watch) > 0 {
			console := screen.New(sys.net, watch...)
			defer console.Halt()
		}
	}

	sys.loader.Load(cfg)

	log.Printf("running; ^C to stop")
	return sys.run()
}

func newSystem(cfg *config.Store) (*system, error) {
	rate := physic.Frequency(cfg.IntOr("global", "rate", 100_000_000)) * physic.Hertz
	clock := cycle.NewClock(rate)
	net := signal.NewNetwork()
	b := bus.New()

	mgr, err := async.NewManager(clock)
	if err != nil {
		return nil, fmt.Errorf("leigun: %w", err)
	}

	sensitivity := int64(cfg.IntOr("poll_detector", "sensivity", 10))
	threshold := int64(cfg.IntOr("poll_detector", "threshold", 0))
	jumpWidth := int64(cfg.IntOr("poll_detector", "jump_width", 0))
	det := senseless.New(clock, sensitivity, threshold, jumpWidth)

	sys := &system{
		cfg:    cfg,
		clock:  clock,
		net:    net,
		mgr:    mgr,
		bus:    b,
		poll:   det,
		loader: plugin.NewLoader(),
	}

	if _, ok := cfg.ReadVar("gdebug", "host"); ok {
		host := cfg.StringOr("gdebug", "host", "127.0.0.1")
		port := int(cfg.IntOr("gdebug", "port", 2159))
		// The backend is wired by whichever CPU model the plugin loader
		// registers; until one attaches, every Backend field is nil, so
		// memory, register, run-control and breakpoint requests get the
		// empty "not supported" reply.
		dbg, err := debug.NewServer(mgr, host, port, &debug.Backend{})
		if err != nil {
			return nil, fmt.Errorf("leigun: %w", err)
		}
		sys.dbg = dbg
		log.Printf("GDB server listening on %s:%d", host, port)
	}

	return sys, nil
}

// run services the reactor, timers and senseless-poll detector until
// interrupted. With no CPU model driving the clock, the loop advances
// simulated time to each pending timer expiry after the reactor wait, so
// armed timers still fire while the system is otherwise idle.
func (s *system) run() error {
	for {
		if err := s.mgr.RunOnce(50 * time.Millisecond); err != nil {
			return fmt.Errorf("leigun: reactor: %w", err)
		}
		if first := s.clock.FirstExpiry(); first != cycle.NoExpiry {
			s.clock.Advance(first - s.clock.Now())
		}
		s.poll.Report(0)
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "leigun: %s.\n", err)
		os.Exit(1)
	}
}
