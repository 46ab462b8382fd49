package memory_manager

import (
	"fmt"
	"log/slog"
)

// Read copies len(buf) bytes starting at virtual address addr of the process into buf.
func (kernel *Kernel) Read(pid int, addr int, buf []byte) error {
	return kernel.access(pid, addr, buf, false)
}

// Write copies data to the virtual address range [addr, addr+len(data)) of the process,
// and marks every touched page dirty.
func (kernel *Kernel) Write(pid int, addr int, data []byte) error {
	return kernel.access(pid, addr, data, true)
}

// access resolves the pages covering [addr, addr+len(buf)) in ascending order and copies each page's part of the range.
// When the range fits in the memory pool, every touched page is resident and most recently used afterwards.
func (kernel *Kernel) access(pid int, addr int, buf []byte, write bool) error {

	kernel.mutex.Lock()
	defer kernel.mutex.Unlock()

	if err := kernel.usable(); err != nil {
		return err
	}

	mm, err := kernel.addressSpace(pid)

	if err != nil {
		return err
	}

	if !mm.inBounds(addr, len(buf)) {
		return fmt.Errorf("%w: [%d, %d) in address space of size %d", ErrOutOfBounds, addr, addr+len(buf), mm.size)
	}

	pageSize := kernel.config.PageSize

	for done := 0; done < len(buf); {

		virtualAddr := addr + done
		virtualPage := virtualAddr / pageSize
		pageOffset := virtualAddr % pageSize
		n := min(pageSize-pageOffset, len(buf)-done)

		frameId, err := kernel.ensureResident(pid, mm, virtualPage)

		if err != nil {
			return err
		}

		physicalAddr := int(frameId)*pageSize + pageOffset

		if write {
			copy(kernel.space[physicalAddr:physicalAddr+n], buf[done:done+n])
			mm.pageTable[virtualPage].dirty = true
		} else {
			copy(buf[done:done+n], kernel.space[physicalAddr:physicalAddr+n])
		}

		done += n
	}

	return nil
}

// ensureResident makes the virtual page resident and most recently used, and returns its frame.
func (kernel *Kernel) ensureResident(pid int, mm *AddressSpace, virtualPage int) (FrameID, error) {

	pte := &mm.pageTable[virtualPage]

	switch pte.state() {

	case RESIDENT:
		kernel.lru.promote(pte.frameId())
		return pte.frameId(), nil

	case UNMAPPED:
		frameId, err := kernel.acquireFrame()

		if err != nil {
			return INVALID_FRAME, err
		}

		clear(kernel.frameData(frameId))
		kernel.si.unlink(frameId)
		pte.mapFrame(frameId)

		slog.Debug("Mapped new page", "pid", pid, "page", virtualPage, "frame", frameId, "function", "ensureResident", "at", "Kernel")

		kernel.lru.insert(frameId, pid, virtualPage)
		return frameId, nil

	default:
		slotId := pte.slotId()

		frameId, err := kernel.acquireFrame()

		if err != nil {
			return INVALID_FRAME, err
		}

		if err := kernel.swap.readSlot(slotId, kernel.frameData(frameId)); err != nil {
			kernel.frames.release(frameId)
			return INVALID_FRAME, kernel.halt(&SwapIOError{Op: "read", Slot: int(slotId), Err: err})
		}

		// the slot keeps a valid copy, a clean eviction can reuse it without writing.
		kernel.si.link(frameId, slotId)
		pte.mapFrame(frameId)

		slog.Debug("Swapped in page", "pid", pid, "page", virtualPage, "slot", slotId, "frame", frameId, "function", "ensureResident", "at", "Kernel")

		kernel.lru.insert(frameId, pid, virtualPage)
		return frameId, nil
	}
}

// acquireFrame occupies the lowest free frame, evicting the least recently used page if memory is full.
func (kernel *Kernel) acquireFrame() (FrameID, error) {

	frameId, ok := kernel.frames.firstFree()

	// every other frame is occupied, so the evicted frame is the lowest free one.
	if !ok {

		var err error
		if frameId, err = kernel.evictOldest(); err != nil {
			return INVALID_FRAME, err
		}
	}

	kernel.frames.occupy(frameId)
	return frameId, nil
}

// evictOldest swaps out the least recently used page and returns the frame it freed.
func (kernel *Kernel) evictOldest() (FrameID, error) {

	frameId, entry, ok := kernel.lru.victim()

	if !ok {
		return INVALID_FRAME, kernel.halt(fmt.Errorf("%w: no resident page to evict with %d frames occupied", ErrFrameAccounting, kernel.frames.occupiedCount()))
	}

	pte := &kernel.mm[entry.PID].pageTable[entry.VirtualPage]
	data := kernel.frameData(frameId)
	slotId := kernel.si.linkedSlot(frameId)

	// a clean page with a slot already holds a valid copy on disk.
	if pte.dirty || slotId == INVALID_SLOT {

		if slotId == INVALID_SLOT {

			var err error
			if slotId, err = kernel.si.allocateSlot(); err != nil {
				return INVALID_FRAME, kernel.halt(&SwapIOError{Op: "allocate", Slot: int(INVALID_SLOT), Err: err})
			}
		}

		if err := kernel.swap.writeSlot(slotId, data); err != nil {
			return INVALID_FRAME, kernel.halt(&SwapIOError{Op: "write", Slot: int(slotId), Err: err})
		}
	}

	slog.Debug("Evicted page", "pid", entry.PID, "page", entry.VirtualPage, "frame", frameId, "slot", slotId, "dirty", pte.dirty,
		"function", "evictOldest", "at", "Kernel")

	clear(data)
	pte.mapSlot(slotId)
	kernel.si.unlink(frameId)
	kernel.frames.release(frameId)

	return frameId, nil
}
