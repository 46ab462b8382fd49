package memory_manager

import (
	"fmt"
	"log/slog"
)

// CreateProcess allocates an address space of size bytes in a free process slot and returns its pid.
// No frame or swap slot is consumed until a page is accessed.
func (kernel *Kernel) CreateProcess(size int) (int, error) {

	kernel.mutex.Lock()
	defer kernel.mutex.Unlock()

	if err := kernel.usable(); err != nil {
		return -1, err
	}

	if size <= 0 || size > kernel.config.VirtualSpaceSize {
		return -1, fmt.Errorf("%w: size %d, limit %d", ErrCapacityExceeded, size, kernel.config.VirtualSpaceSize)
	}

	for pid, running := range kernel.running {

		if running {
			continue
		}

		kernel.running[pid] = true
		kernel.mm[pid] = newAddressSpace(size, kernel.config.PageSize)

		slog.Info("Process created", "pid", pid, "size", size, "pages", kernel.mm[pid].pageCount(), "function", "CreateProcess", "at", "Kernel")
		return pid, nil
	}

	return -1, ErrNoFreeSlot
}

// ExitProcess releases every frame, LRU entry and swap slot held by the process, and frees its process slot.
func (kernel *Kernel) ExitProcess(pid int) error {

	kernel.mutex.Lock()
	defer kernel.mutex.Unlock()

	if err := kernel.usable(); err != nil {
		return err
	}

	mm, err := kernel.addressSpace(pid)

	if err != nil {
		return err
	}

	releasedFrames, releasedSlots := 0, 0

	for page := range mm.pageTable {

		pte := &mm.pageTable[page]

		switch pte.state() {

		case RESIDENT:
			frameId := pte.frameId()

			kernel.lru.remove(frameId)

			// a page that was swapped in still owns its slot.
			if slotId := kernel.si.linkedSlot(frameId); slotId != INVALID_SLOT {
				kernel.si.freeSlot(slotId)
				releasedSlots++
			}
			kernel.si.unlink(frameId)

			clear(kernel.frameData(frameId))
			kernel.frames.release(frameId)
			releasedFrames++

		case SWAPPED_OUT:
			kernel.si.freeSlot(pte.slotId())
			releasedSlots++
		}
	}

	kernel.mm[pid] = nil
	kernel.running[pid] = false

	slog.Info("Process exited", "pid", pid, "releasedFrames", releasedFrames, "releasedSlots", releasedSlots, "function", "ExitProcess", "at", "Kernel")
	return nil
}
