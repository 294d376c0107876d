// Package emulog provides the small per-subsystem logging helpers shared
// by every core package: a log.Logger wrapper with a per-subsystem prefix
// (bus, signal, gdb, ...) and a timing-annotated helper for debug lines.
package emulog

import (
	"log"
	"os"
	"time"
)

// Logger is a per-subsystem logger. The zero value is not usable; construct
// one with New.
type Logger struct {
	l      *log.Logger
	prefix string
}

// New returns a Logger that prefixes every line with "<name>: ".
func New(name string) *Logger {
	return &Logger{
		l:      log.New(os.Stderr, "", log.Lmicroseconds),
		prefix: name + ": ",
	}
}

func (g *Logger) Printf(format string, args ...interface{}) {
	g.l.Printf(g.prefix+format, args...)
}

func (g *Logger) Println(args ...interface{}) {
	g.l.Println(append([]interface{}{g.prefix}, args...)...)
}

// Fatalf logs and terminates the process. Reserved for the "emulator-internal
// invariant violation" error class from the error-handling design: bugs, not
// guest-visible or recoverable conditions.
func (g *Logger) Fatalf(format string, args ...interface{}) {
	g.l.Fatalf(g.prefix+format, args...)
}

// roundDuration rounds d to 3 significant digits so timings stay short
// in debug log lines.
func roundDuration(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	scale := time.Duration(1)
	for d/scale >= 1000 {
		scale *= 10
	}
	return (d + scale/2) / scale * scale
}

// Timed returns a func that, when deferred, logs how long the enclosing
// call took.
func (g *Logger) Timed(what string) func() {
	start := time.Now()
	return func() {
		g.Printf("%7s %s", roundDuration(time.Since(start)), what)
	}
}
