// Package image implements the fixed-size, file-backed persistent storage
// service used by every stateful peripheral (RTC, flash, EEPROM, ...) for
// its non-volatile image. Only the generic fixed-size create/open/mmap/
// read/write service lives here; each peripheral defines its own magic
// header and layout on top.
package image

import (
	"errors"
	"fmt"
	"os"
)

// Flag controls Open's create/access-mode behavior.
type Flag int

const (
	// RDONLY opens an existing image read-only.
	RDONLY Flag = 1 << iota
	// RDWR opens an existing (or, combined with a CREAT_* flag, new) image
	// for reading and writing, and permits Mmap.
	RDWR
	// CreatFF creates a missing image filled with 0xFF.
	CreatFF
	// Creat00 creates a missing image filled with 0x00.
	Creat00
)

// Image is a fixed-size persistent, file-backed buffer. The zero value is
// not usable; construct with Open.
type Image struct {
	f      *os.File
	size   int64
	rdwr   bool
	mapped []byte
}

// Open opens or creates path as a fixed-size image of exactly size bytes.
//
//   - If the file does not exist and no CreatFF/Creat00 flag is set, Open
//     fails.
//   - If creating, the file is truncated to exactly size and filled with
//     0xFF or 0x00 per the requested flag.
//   - If the file exists with a different size than size, Open fails;
//     callers must migrate an existing image explicitly.
func Open(path string, size int64, flags Flag) (*Image, error) {
	rdwr := flags&RDWR != 0
	creatFF := flags&CreatFF != 0
	creat00 := flags&Creat00 != 0
	if creatFF && creat00 {
		return nil, errors.New("image: CreatFF and Creat00 are mutually exclusive")
	}

	perm := os.O_RDONLY
	if rdwr {
		perm = os.O_RDWR
	}

	info, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if info.Size() != size {
			return nil, fmt.Errorf("image: %s: existing size %d does not match requested size %d", path, info.Size(), size)
		}
		f, err := os.OpenFile(path, perm, 0o644)
		if err != nil {
			return nil, fmt.Errorf("image: open %s: %w", path, err)
		}
		return &Image{f: f, size: size, rdwr: rdwr}, nil

	case os.IsNotExist(statErr):
		if !creatFF && !creat00 {
			return nil, fmt.Errorf("image: %s does not exist and no CREAT flag was given", path)
		}
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
		if err != nil {
			return nil, fmt.Errorf("image: create %s: %w", path, err)
		}
		fill := byte(0x00)
		if creatFF {
			fill = 0xFF
		}
		if err := fillFile(f, size, fill); err != nil {
			f.Close()
			return nil, fmt.Errorf("image: create %s: %w", path, err)
		}
		if !rdwr {
			f.Close()
			f, err = os.OpenFile(path, os.O_RDONLY, 0o644)
			if err != nil {
				return nil, fmt.Errorf("image: reopen %s read-only: %w", path, err)
			}
		}
		return &Image{f: f, size: size, rdwr: rdwr}, nil

	default:
		return nil, fmt.Errorf("image: stat %s: %w", path, statErr)
	}
}

func fillFile(f *os.File, size int64, fill byte) error {
	if err := f.Truncate(size); err != nil {
		return err
	}
	const chunk = 64 * 1024
	buf := make([]byte, chunk)
	for i := range buf {
		buf[i] = fill
	}
	var off int64
	for off < size {
		n := int64(len(buf))
		if off+n > size {
			n = size - off
		}
		if _, err := f.WriteAt(buf[:n], off); err != nil {
			return err
		}
		off += n
	}
	return nil
}

// Size returns the image's fixed size.
func (im *Image) Size() int64 { return im.size }

// Read performs a bounded read at offset, returning the number of bytes
// transferred.
func (im *Image) Read(offset int64, buf []byte) (int, error) {
	if offset < 0 || offset > im.size {
		return 0, fmt.Errorf("image: read offset %d out of range [0,%d]", offset, im.size)
	}
	n := int64(len(buf))
	if offset+n > im.size {
		n = im.size - offset
	}
	got, err := im.f.ReadAt(buf[:n], offset)
	return got, err
}

// Write performs a bounded write at offset, returning the number of bytes
// transferred. Writes are eventually durable but not explicitly synced.
func (im *Image) Write(offset int64, buf []byte) (int, error) {
	if !im.rdwr {
		return 0, errors.New("image: write to a read-only image")
	}
	if offset < 0 || offset > im.size {
		return 0, fmt.Errorf("image: write offset %d out of range [0,%d]", offset, im.size)
	}
	n := int64(len(buf))
	if offset+n > im.size {
		n = im.size - offset
	}
	if im.mapped != nil {
		copy(im.mapped[offset:offset+n], buf[:n])
		return int(n), nil
	}
	return im.f.WriteAt(buf[:n], offset)
}

// Close releases the image. Safe to call once; further Read/Write/Mmap
// calls are invalid afterward.
func (im *Image) Close() error {
	if im.mapped != nil {
		if err := im.unmap(); err != nil {
			return err
		}
	}
	return im.f.Close()
}
