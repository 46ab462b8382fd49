package memory_manager

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ncw/directio"
)

// DirectIOSwapStore uses Direct I/O to move slots directly between the memory pool and the disk controller,
// bypassing the kernel page cache.

// Direct I/O only accepts transfers that are aligned to directio.BlockSize, while a slot is PAGE_SIZE bytes.
// Every slot transfer therefore reads the aligned block(s) enclosing the slot, and writes them back after patching.
type DirectIOSwapStore struct {
	file     *os.File
	pageSize int
}

func NewDirectIOSwapStore(filePath string, pageSize int, size int64) (*DirectIOSwapStore, error) {

	// the file must span whole blocks so every aligned transfer stays inside it.
	size = alignUp(size)

	file, err := createSwapFile(filePath, size)

	if err != nil {
		return nil, err
	}

	if err := file.Close(); err != nil {
		return nil, err
	}

	slog.Info("Opening swap file in DIRECT I/O mode", "filePath", filePath, "function", "NewDirectIOSwapStore", "at", "DirectIOSwapStore")

	file, err = directio.OpenFile(filePath, os.O_RDWR, 0644)

	if err != nil {
		slog.Error("Failed to open swap file in DIRECT I/O mode", "filePath", filePath, "error", err.Error(), "function", "NewDirectIOSwapStore", "at", "DirectIOSwapStore")
		return nil, err
	}

	return &DirectIOSwapStore{
		file:     file,
		pageSize: pageSize,
	}, nil
}

func alignDown(offset int64) int64 {
	return offset / directio.BlockSize * directio.BlockSize
}

func alignUp(offset int64) int64 {
	return (offset + directio.BlockSize - 1) / directio.BlockSize * directio.BlockSize
}

// readBlocks reads the aligned blocks that contain the slot, and returns them with the slot's offset inside them.
func (store *DirectIOSwapStore) readBlocks(slotId SlotID) (block []byte, blockOffset int64, slotOffset int, err error) {

	offset := int64(slotId) * int64(store.pageSize)

	blockOffset = alignDown(offset)
	blockEnd := alignUp(offset + int64(store.pageSize))

	block = directio.AlignedBlock(int(blockEnd - blockOffset))

	n, err := store.file.ReadAt(block, blockOffset)

	if err != nil {
		return nil, 0, 0, err
	}
	if n != len(block) {
		return nil, 0, 0, fmt.Errorf("incomplete read")
	}

	return block, blockOffset, int(offset - blockOffset), nil
}

func (store *DirectIOSwapStore) readSlot(slotId SlotID, buf []byte) error {

	slog.Debug("Reading slot", "slot", slotId, "function", "readSlot", "at", "DirectIOSwapStore")

	block, _, slotOffset, err := store.readBlocks(slotId)

	if err != nil {
		slog.Error("Failed to read slot", "slot", slotId, "error", err.Error(), "function", "readSlot", "at", "DirectIOSwapStore")
		return err
	}

	copy(buf[:store.pageSize], block[slotOffset:slotOffset+store.pageSize])
	return nil
}

func (store *DirectIOSwapStore) writeSlot(slotId SlotID, buf []byte) error {

	slog.Debug("Writing slot", "slot", slotId, "function", "writeSlot", "at", "DirectIOSwapStore")

	block, blockOffset, slotOffset, err := store.readBlocks(slotId)

	if err != nil {
		slog.Error("Failed to read blocks before write", "slot", slotId, "error", err.Error(), "function", "writeSlot", "at", "DirectIOSwapStore")
		return err
	}

	copy(block[slotOffset:slotOffset+store.pageSize], buf[:store.pageSize])

	n, err := store.file.WriteAt(block, blockOffset)

	if err != nil {
		slog.Error("Failed to write slot", "slot", slotId, "error", err.Error(), "function", "writeSlot", "at", "DirectIOSwapStore")
		return err
	}
	if n != len(block) {
		return fmt.Errorf("incomplete write")
	}
	return nil
}

func (store *DirectIOSwapStore) close() error {

	slog.Info("Closing DirectIOSwapStore...", "function", "close", "at", "DirectIOSwapStore")

	if err := syncFile(store.file); err != nil {

		slog.Error("Failed to sync swap file", "error", err.Error(), "function", "close", "at", "DirectIOSwapStore")
		store.file.Close()
		return err
	}

	return store.file.Close()
}
