package bus

// SpecialCycle is a tagged message delivered to a device's special-cycle
// handler, bypassing the address-mapped read/write path entirely. Magic
// identifies the message shape; devices that don't recognize it return an
// error.
type SpecialCycle struct {
	Magic   SpecialMagic
	Payload interface{}
}

// SpecialMagic discriminates the shape of a SpecialCycle's Payload. The
// DRAM controller's command-phase notification is the reference shape
// every other special-cycle magic follows: a small enum plus an
// address/bank pair.
type SpecialMagic uint32

const (
	// BSCMAGIC_DRAM_CMD conveys SDRAM command-phase notifications from a
	// memory controller model to a DRAM device, letting it observe
	// RAS/CAS/precharge phasing without the controller misusing ordinary
	// address reads to signal them.
	BSCMAGIC_DRAM_CMD SpecialMagic = 1
)

// Device is a bus_device record: the owner's identity, its advertised
// hardware flags, the map/unmap callbacks invoked by UpdateMappings, an
// optional special-cycle handler, and the linked list of its live
// mappings.
type Device struct {
	Owner   interface{}
	HwFlags HwFlags

	// MapFn/UnmapFn re-establish a single existing mapping m when called
	// from UpdateMappings; typically each re-registers m's span with
	// different read/write semantics (e.g. flash switching from
	// memory-mapped read to a trapping command interpreter).
	MapFn   func(dev *Device, m *Mapping) error
	UnmapFn func(dev *Device, m *Mapping) error

	SpecialCycleFn func(dev *Device, msg SpecialCycle) error

	bus          *Bus
	firstMapping *Mapping
}

// NewDevice registers a new, as-yet-unmapped device on b.
func (b *Bus) NewDevice(owner interface{}, flags HwFlags) *Device {
	return &Device{Owner: owner, HwFlags: flags, bus: b}
}

// Mapping is one live mapping belonging to a Device: either a direct range
// or an I/O region. Device.firstMapping/Mapping.next form the linked list
// of a device's live mappings walked by UpdateMappings.
type Mapping struct {
	dev  *Device
	next *Mapping

	Base uint32
	Size uint32

	direct *directRegion
	io     *ioRegion
}

func (dev *Device) appendMapping(m *Mapping) {
	m.dev = dev
	if dev.firstMapping == nil {
		dev.firstMapping = m
		return
	}
	last := dev.firstMapping
	for last.next != nil {
		last = last.next
	}
	last.next = m
}

func (dev *Device) removeMapping(m *Mapping) {
	if dev.firstMapping == m {
		dev.firstMapping = m.next
		return
	}
	for p := dev.firstMapping; p != nil; p = p.next {
		if p.next == m {
			p.next = m.next
			return
		}
	}
}

// UpdateMappings re-establishes dev's mappings: for each mapping currently
// on dev's list (a stable snapshot taken before calling either callback,
// since UnmapFn/MapFn are expected to mutate the list), call dev.UnmapFn
// then dev.MapFn. This is the mechanism that lets a device switch access
// semantics (e.g. flash P/E vs. read, LCD controller enable) atomically
// from the CPU's point of view: the next access after UpdateMappings
// returns always sees the new mapping, never a half-updated one, because
// nothing else runs on the single cooperative thread between calls.
func (b *Bus) UpdateMappings(dev *Device) {
	var snapshot []*Mapping
	for m := dev.firstMapping; m != nil; m = m.next {
		snapshot = append(snapshot, m)
	}
	for _, m := range snapshot {
		if dev.UnmapFn != nil {
			if err := dev.UnmapFn(dev, m); err != nil {
				b.log.Printf("UnmapFn for %v at %#x: %v", dev.Owner, m.Base, err)
			}
		}
		if dev.MapFn != nil {
			if err := dev.MapFn(dev, m); err != nil {
				b.log.Printf("MapFn for %v at %#x: %v", dev.Owner, m.Base, err)
			}
		}
	}
}

// SpecialCycle dispatches msg to dev's special-cycle handler. Returns an
// error if dev has none or if the handler doesn't recognize msg.Magic.
func (b *Bus) SpecialCycle(dev *Device, msg SpecialCycle) error {
	if dev.SpecialCycleFn == nil {
		return errUnsupportedSpecialCycle
	}
	return dev.SpecialCycleFn(dev, msg)
}
