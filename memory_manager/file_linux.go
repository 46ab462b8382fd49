//go:build linux
// +build linux

package memory_manager

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves size bytes for the file. Fresh blocks read back as zeroes.
func preallocate(file *os.File, size int64) error {

	err := unix.Fallocate(int(file.Fd()), 0, 0, size)

	// some filesystems (tmpfs on older kernels, overlayfs) do not support fallocate.
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		return file.Truncate(size)
	}
	return err
}

func syncFile(file *os.File) error {
	return unix.Fdatasync(int(file.Fd()))
}
