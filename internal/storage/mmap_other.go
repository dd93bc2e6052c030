//go:build !unix

package storage

import (
	"fmt"
	"os"
)

// MapFile reads the file at path into a read-only Buffer.
// Platforms without mmap support fall back to a plain read.
func MapFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mapping file %s: %w", path, err)
	}
	return NewReadOnlyBuffer(data, nil), nil
}
