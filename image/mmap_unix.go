//go:build unix

package image

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Mmap returns a mutable mapping of the whole image. Only valid if the
// image was opened with RDWR.
func (im *Image) Mmap() ([]byte, error) {
	if !im.rdwr {
		return nil, errors.New("image: Mmap requires RDWR")
	}
	if im.mapped != nil {
		return im.mapped, nil
	}
	b, err := unix.Mmap(int(im.f.Fd()), 0, int(im.size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	im.mapped = b
	return b, nil
}

func (im *Image) unmap() error {
	err := unix.Munmap(im.mapped)
	im.mapped = nil
	return err
}
