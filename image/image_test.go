package image

import (
	"os"
	"path/filepath"
	"testing"
)

// newTmpImagePath returns a path inside a throwaway temp directory that
// stands in for a real device image directory.
func newTmpImagePath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "leigun-image-")
	if err != nil {
		t.Fatalf("could not create tmp-dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "dev.img")
}

func TestOpenMissingWithoutCreateFails(t *testing.T) {
	path := newTmpImagePath(t)
	if _, err := Open(path, 1024, RDWR); err == nil {
		t.Fatal("expected error opening a missing image without a CREAT flag")
	}
}

func TestCreateFillsPattern(t *testing.T) {
	path := newTmpImagePath(t)
	im, err := Open(path, 16, RDWR|CreatFF)
	if err != nil {
		t.Fatal(err)
	}
	defer im.Close()
	buf := make([]byte, 16)
	if _, err := im.Read(0, buf); err != nil {
		t.Fatal(err)
	}
	for i, b := range buf {
		if b != 0xFF {
			t.Fatalf("byte %d = %#x, want 0xFF", i, b)
		}
	}
}

// Write/read round-trip, and across close+reopen.
func TestWriteReadRoundTrip(t *testing.T) {
	path := newTmpImagePath(t)
	im, err := Open(path, 64, RDWR|Creat00)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte("hello persistent image")
	if _, err := im.Write(4, want); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, len(want))
	if _, err := im.Read(4, got); err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	if err := im.Close(); err != nil {
		t.Fatal(err)
	}

	im2, err := Open(path, 64, RDWR)
	if err != nil {
		t.Fatal(err)
	}
	defer im2.Close()
	got2 := make([]byte, len(want))
	if _, err := im2.Read(4, got2); err != nil {
		t.Fatal(err)
	}
	if string(got2) != string(want) {
		t.Fatalf("after reopen: got %q, want %q", got2, want)
	}
}

func TestWrongSizeOnReopenFails(t *testing.T) {
	path := newTmpImagePath(t)
	im, err := Open(path, 32, RDWR|Creat00)
	if err != nil {
		t.Fatal(err)
	}
	im.Close()
	if _, err := Open(path, 64, RDWR); err == nil {
		t.Fatal("expected size-mismatch error on reopen")
	}
}

func TestReadOnlyRejectsWrite(t *testing.T) {
	path := newTmpImagePath(t)
	im, err := Open(path, 8, RDWR|Creat00)
	if err != nil {
		t.Fatal(err)
	}
	im.Close()

	ro, err := Open(path, 8, RDONLY)
	if err != nil {
		t.Fatal(err)
	}
	defer ro.Close()
	if _, err := ro.Write(0, []byte{1}); err == nil {
		t.Fatal("expected write to a read-only image to fail")
	}
}
