// Package plugin implements the dynamically-loaded device-model registry:
// a name-keyed factory registry that loaded libraries populate from their
// own init path, and a loader that resolves `[global] libs`/`libpath`
// against the filesystem.
package plugin

import (
	"fmt"
	"sync"
)

// Factory constructs one instance of a device model, given its
// configuration section name.
type Factory func(instanceName string) (interface{}, error)

var (
	mu        sync.Mutex
	factories = map[string]Factory{}
)

// Register adds a device-model factory under name. Called from a loaded
// library's init function, in the style of periph's gpioreg.Register; the
// core never enumerates libraries' exports directly.
func Register(name string, f Factory) error {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		return fmt.Errorf("plugin: device model %q already registered", name)
	}
	factories[name] = f
	return nil
}

// Lookup returns the factory registered under name, if any.
func Lookup(name string) (Factory, bool) {
	mu.Lock()
	defer mu.Unlock()
	f, ok := factories[name]
	return f, ok
}

// Names returns every currently registered device-model name.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	return out
}
