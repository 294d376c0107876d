// Package leigun is documentation-only: it names the core packages that
// make up the simulation substrate and how cmd/leigun wires them.
//
// # Packages
//
//   - config: the process-wide INI-style configuration store.
//   - cycle: the global cycle counter and one-shot cycle timers.
//   - signal: the electrical-net abstraction (nodes, link groups, traces).
//   - async: the host-event reactor (poll handles, TCP listen/accept,
//     stream handles).
//   - image: fixed-size, file-backed persistent device storage.
//   - bus: the flat 32-bit address space of direct mappings and trapping
//     I/O regions.
//   - senseless: the tight-poll detector that skips cycles and sleeps real
//     time.
//   - debug: the debug-backend vtable and the GDB remote-serial-protocol
//     server built on it.
//   - plugin: the dynamically-loaded device-model registry and loader.
//
// Peripheral and CPU models are external collaborators; they consume these
// packages only through their published interfaces.
package leigun
