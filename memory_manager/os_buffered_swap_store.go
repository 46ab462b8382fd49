package memory_manager

import (
	"fmt"
	"log/slog"
	"os"
)

// OSBufferedSwapStore reads and writes slots through the kernel page cache.
type OSBufferedSwapStore struct {
	file     *os.File
	pageSize int
}

func NewOSBufferedSwapStore(filePath string, pageSize int, size int64) (*OSBufferedSwapStore, error) {

	file, err := createSwapFile(filePath, size)

	if err != nil {
		return nil, err
	}

	return &OSBufferedSwapStore{
		file:     file,
		pageSize: pageSize,
	}, nil
}

func (store *OSBufferedSwapStore) readSlot(slotId SlotID, buf []byte) error {

	offset := int64(slotId) * int64(store.pageSize)

	slog.Debug("Reading slot", "slot", slotId, "offset", offset, "function", "readSlot", "at", "OSBufferedSwapStore")

	// ReadAt calls pread, so the seek and the read happen atomically.
	n, err := store.file.ReadAt(buf[:store.pageSize], offset)

	if err != nil {
		slog.Error("Failed to read slot", "slot", slotId, "error", err.Error(), "function", "readSlot", "at", "OSBufferedSwapStore")
		return err
	}
	if n != store.pageSize {
		return fmt.Errorf("incomplete read")
	}
	return nil
}

func (store *OSBufferedSwapStore) writeSlot(slotId SlotID, buf []byte) error {

	offset := int64(slotId) * int64(store.pageSize)

	slog.Debug("Writing slot", "slot", slotId, "offset", offset, "function", "writeSlot", "at", "OSBufferedSwapStore")

	n, err := store.file.WriteAt(buf[:store.pageSize], offset)

	if err != nil {
		slog.Error("Failed to write slot", "slot", slotId, "error", err.Error(), "function", "writeSlot", "at", "OSBufferedSwapStore")
		return err
	}
	if n != store.pageSize {
		return fmt.Errorf("incomplete write")
	}
	return nil
}

func (store *OSBufferedSwapStore) close() error {

	slog.Info("Closing OSBufferedSwapStore...", "function", "close", "at", "OSBufferedSwapStore")

	if err := syncFile(store.file); err != nil {

		slog.Error("Failed to sync swap file", "error", err.Error(), "function", "close", "at", "OSBufferedSwapStore")
		store.file.Close()
		return err
	}

	return store.file.Close()
}
