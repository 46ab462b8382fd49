package memory_manager

import (
	"log/slog"
	"os"
)

// SwapStore is the persistent backing file of the swap area.
// It transfers whole slots of PAGE_SIZE bytes at byte offset slotId * PAGE_SIZE.
type SwapStore interface {

	// readSlot fills buf with the contents of a slot.
	readSlot(slotId SlotID, buf []byte) error

	// writeSlot persists buf to a slot.
	writeSlot(slotId SlotID, buf []byte) error

	// flushes the file to disk, then closes it. The file itself is kept.
	close() error
}

// NewSwapStore creates (or truncates) the swap file and fills it with zeroes up to its full capacity.
func NewSwapStore(config Config) (SwapStore, error) {

	if config.DirectIO {
		return NewDirectIOSwapStore(config.SwapFilePath, config.PageSize, config.swapFileSize())
	}
	return NewOSBufferedSwapStore(config.SwapFilePath, config.PageSize, config.swapFileSize())
}

// createSwapFile truncates the file at filePath and preallocates size zero bytes.
func createSwapFile(filePath string, size int64) (*os.File, error) {

	slog.Info("Creating swap file", "filePath", filePath, "size", size, "function", "createSwapFile", "at", "SwapStore")

	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)

	if err != nil {
		slog.Error("Failed to create swap file", "filePath", filePath, "error", err.Error(), "function", "createSwapFile", "at", "SwapStore")
		return nil, err
	}

	if err := preallocate(file, size); err != nil {

		slog.Error("Failed to preallocate swap file", "filePath", filePath, "error", err.Error(), "function", "createSwapFile", "at", "SwapStore")
		file.Close()
		return nil, err
	}

	return file, nil
}
