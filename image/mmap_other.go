//go:build !unix

package image

import "errors"

// Mmap is unsupported outside unix build targets; use Read/Write instead.
func (im *Image) Mmap() ([]byte, error) {
	return nil, errors.New("image: Mmap is only supported on unix targets")
}

func (im *Image) unmap() error { return nil }
