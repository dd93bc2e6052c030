//go:build unix

package storage

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MapFile maps the file at path read-only into memory and returns it as a
// read-only Buffer. The mapping is removed when the last handle is dropped.
//
// The file must not be modified or truncated while it is mapped.
// Empty files produce an empty heap Buffer since zero-length mappings fail.
func MapFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapping file %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("mapping file %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("mapping file %s: not a regular file", path)
	}

	size := fi.Size()
	if size == 0 {
		return NewBuffer(nil), nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("mapping file %s: %w", path, ErrAllocationFailure)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mapping file %s: %w", path, err)
	}

	return NewReadOnlyBuffer(data, func(b []byte) {
		if err := unix.Munmap(b); err != nil {
			currentLogger().WithField("path", path).Error("munmap failed: %v", err)
		}
	}), nil
}
