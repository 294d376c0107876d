package bus

import "encoding/binary"

// directRegion is a [base, base+mapSize) range backed by a host buffer.
// If mapSize > len(buf), the buffer tiles (aliased) across the range.
type directRegion struct {
	base    uint32
	mapSize uint32
	buf     []byte
	flags   HwFlags

	traced   bool
	pageSize uint32
	dirty    map[uint32]bool
	dirtyFn  func(page uint32)
}

// MapRange associates buf with [base, base+mapSize) on dev's behalf. If
// mapSize > len(buf), buf tiles across the range. Overlapping an existing
// direct region without first calling UnmapRange is a registration-time
// bug and returns errOverlap; callers are expected to wire devices
// correctly, not to recover from this at runtime.
func (b *Bus) MapRange(dev *Device, base uint32, buf []byte, mapSize uint32, flags HwFlags) (*Mapping, error) {
	for _, dr := range b.direct {
		if overlaps(dr.base, dr.mapSize, base, mapSize) {
			return nil, errOverlap
		}
	}
	dr := &directRegion{base: base, mapSize: mapSize, buf: buf, flags: flags}
	b.direct = append(b.direct, dr)
	m := &Mapping{Base: base, Size: mapSize, direct: dr}
	dev.appendMapping(m)
	return m, nil
}

// MapRangeTraced is MapRange plus page-granular dirty tracking: every
// WriteTraced call through the returned Mapping additionally marks the
// written page dirty and, the first time a given page goes dirty since the
// last Mapping.ClearDirty, invokes dirtyFn(page). Used by devices like an
// LCD controller that want to know which framebuffer pages changed without
// trapping every store.
func (b *Bus) MapRangeTraced(dev *Device, base uint32, buf []byte, mapSize, pageSize uint32, flags HwFlags, dirtyFn func(page uint32)) (*Mapping, error) {
	m, err := b.MapRange(dev, base, buf, mapSize, flags)
	if err != nil {
		return nil, err
	}
	m.direct.traced = true
	m.direct.pageSize = pageSize
	m.direct.dirty = map[uint32]bool{}
	m.direct.dirtyFn = dirtyFn
	return m, nil
}

// UnmapRange reverses a MapRange/MapRangeTraced call.
func (b *Bus) UnmapRange(dev *Device, base uint32, mapSize uint32) {
	for i, dr := range b.direct {
		if dr.base == base && dr.mapSize == mapSize {
			b.direct = append(b.direct[:i], b.direct[i+1:]...)
			break
		}
	}
	for m := dev.firstMapping; m != nil; m = m.next {
		if m.direct != nil && m.Base == base && m.Size == mapSize {
			dev.removeMapping(m)
			return
		}
	}
}

// WriteTraced writes data at offset within a traced mapping's range and
// marks the containing page(s) dirty, invoking dirtyFn once per
// newly-dirtied page. offset is relative to the mapping's base.
func (m *Mapping) WriteTraced(offset uint32, data []byte) {
	dr := m.direct
	copy(dr.tiledSlice(offset, uint32(len(data))), data)
	if !dr.traced {
		return
	}
	firstPage := offset / dr.pageSize
	lastPage := (offset + uint32(len(data)) - 1) / dr.pageSize
	for p := firstPage; p <= lastPage; p++ {
		if !dr.dirty[p] {
			dr.dirty[p] = true
			if dr.dirtyFn != nil {
				dr.dirtyFn(p)
			}
		}
	}
}

// ClearDirty clears the dirty bit for page, allowing dirtyFn to fire again
// next time it's written.
func (m *Mapping) ClearDirty(page uint32) {
	if m.direct != nil && m.direct.dirty != nil {
		delete(m.direct.dirty, page)
	}
}

// Bytes returns the mapping's backing buffer for untraced fast-path
// access with no callback at all.
func (m *Mapping) Bytes() []byte {
	if m.direct == nil {
		return nil
	}
	return m.direct.buf
}

func (dr *directRegion) tiledSlice(offset, n uint32) []byte {
	bufLen := uint32(len(dr.buf))
	if bufLen == dr.mapSize || offset+n <= bufLen {
		return dr.buf[offset : offset+n]
	}
	// Tiled alias: wrap the offset into the backing buffer. Callers that
	// cross a tile boundary get a window into the single tile only; this
	// mirrors how real aliased hardware presents the same physical bytes
	// at every alias address, not a new buffer per tile.
	o := offset % bufLen
	if o+n > bufLen {
		n = bufLen - o
	}
	return dr.buf[o : o+n]
}

func (b *Bus) findDirect(addr uint32, width int) (*directRegion, uint32) {
	for _, dr := range b.direct {
		if addr >= dr.base && addr+uint32(width) <= dr.base+dr.mapSize {
			return dr, addr - dr.base
		}
	}
	return nil, 0
}

func (dr *directRegion) readBuf(offset uint32, width int) uint32 {
	s := dr.tiledSlice(offset, uint32(width))
	switch width {
	case 1:
		return uint32(s[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(s))
	case 4:
		return binary.LittleEndian.Uint32(s)
	default:
		return 0
	}
}

func (dr *directRegion) writeBuf(offset uint32, value uint32, width int) {
	s := dr.tiledSlice(offset, uint32(width))
	switch width {
	case 1:
		s[0] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(s, uint16(value))
	case 4:
		binary.LittleEndian.PutUint32(s, value)
	}
}
