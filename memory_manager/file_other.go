//go:build !linux
// +build !linux

package memory_manager

import "os"

func preallocate(file *os.File, size int64) error {
	return file.Truncate(size)
}

func syncFile(file *os.File) error {
	return file.Sync()
}
