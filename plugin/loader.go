//go:build unix

package plugin

import (
	stdplugin "plugin"
	"strings"

	"leigun-emu/config"
	"leigun-emu/internal/emulog"
)

var log = emulog.New("plugin")

// initSymbol is the exported symbol each library must provide; called
// once after a successful load, expected to call Register for every
// device model the library implements.
const initSymbol = "Init"

// Loader resolves `[global] libs`/`libpath` against the filesystem and
// loads each named library exactly once.
type Loader struct{}

// NewLoader returns a Loader ready for Load.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads [global] libs (a whitespace/comma-separated list of library
// file names) and [global] libpath (a ':'-separated directory search
// path, defaulting to ".") from cfg, and loads each library, trying each
// directory in order and taking the first match. A library missing after
// the whole path is exhausted is fatal.
func (l *Loader) Load(cfg *config.Store) {
	libs, ok := cfg.ReadList("global", "libs")
	if !ok || len(libs) == 0 {
		return
	}
	libpath := cfg.StringOr("global", "libpath", ".")
	dirs := strings.Split(libpath, ":")

	for _, lib := range libs {
		if !l.loadOne(lib, dirs) {
			log.Fatalf("could not open library %q in path %q", lib, libpath)
		}
	}
}

func (l *Loader) loadOne(lib string, dirs []string) bool {
	for _, dir := range dirs {
		path := dir + "/" + lib
		p, err := stdplugin.Open(path)
		if err != nil {
			continue
		}
		log.Printf("loaded %s", path)
		sym, err := p.Lookup(initSymbol)
		if err != nil {
			log.Printf("%s: no %s symbol: %v", path, initSymbol, err)
			continue
		}
		initFn, ok := sym.(func())
		if !ok {
			log.Printf("%s: %s has the wrong signature, want func()", path, initSymbol)
			continue
		}
		log.Printf("calling %s.%s", path, initSymbol)
		initFn()
		return true
	}
	return false
}
