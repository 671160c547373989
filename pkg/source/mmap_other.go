//go:build !unix

package source

import (
	"io"
	"os"
)

// mapFile reads the whole file into memory on platforms without POSIX mmap.
func mapFile(f *os.File, size int64) ([]byte, error) {
	return io.ReadAll(f)
}

func unmapFile(data []byte) error {
	return nil
}
