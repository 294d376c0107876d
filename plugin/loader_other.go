//go:build !unix

package plugin

import "leigun-emu/config"

// Loader has no non-unix implementation: Go's plugin package only
// supports linux/darwin/freebsd.
type Loader struct{}

// NewLoader returns a Loader whose Load is a fatal no-op on this
// platform.
func NewLoader() *Loader {
	return &Loader{}
}

// Load is unsupported outside unix; it panics rather than silently
// ignoring configured libraries, since a bound-to-exist device model
// never loading is worse than a loud failure.
func (l *Loader) Load(cfg *config.Store) {
	if libs, ok := cfg.ReadList("global", "libs"); ok && len(libs) > 0 {
		panic("plugin: dynamic library loading is unsupported on this platform")
	}
}
