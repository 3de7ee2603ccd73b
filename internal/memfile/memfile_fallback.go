//go:build !unix

// Package memfile provides platform-specific anonymous memory reservations
// for arena memory supplies.
package memfile

import "fmt"

// Reserve allocates a zero-filled region when mmap is not available.
func Reserve(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("memfile: invalid reservation size %d", size)
	}
	data := make([]byte, size)
	return data, func() error { return nil }, nil
}
