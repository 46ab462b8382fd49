package memory_manager

import "fmt"

type SlotID int

const INVALID_SLOT SlotID = -1

// SwapInfo is the bookkeeping of the swap area.
type SwapInfo struct {

	// slot occupancy in the swap file, true for occupied.
	slotMap   []bool
	usedSlots int

	// maps each frame of the memory pool to the swap slot its current page was swapped in from.
	// INVALID_SLOT means the page in the frame has no home in the swap file yet.
	frameSlot []SlotID
}

func NewSwapInfo(slotCount int, frameCount int) *SwapInfo {

	frameSlot := make([]SlotID, frameCount)

	for i := range frameSlot {
		frameSlot[i] = INVALID_SLOT
	}

	return &SwapInfo{
		slotMap:   make([]bool, slotCount),
		frameSlot: frameSlot,
	}
}

// allocateSlot marks the lowest free slot as occupied and returns it.
func (si *SwapInfo) allocateSlot() (SlotID, error) {

	for slotId, occupied := range si.slotMap {
		if !occupied {
			si.slotMap[slotId] = true
			si.usedSlots++
			return SlotID(slotId), nil
		}
	}
	return INVALID_SLOT, fmt.Errorf("swap area exhausted, %d slots in use", si.usedSlots)
}

func (si *SwapInfo) freeSlot(slotId SlotID) {

	if slotId == INVALID_SLOT {
		return
	}

	if si.slotMap[slotId] {
		si.slotMap[slotId] = false
		si.usedSlots--
	}
}

func (si *SwapInfo) isOccupied(slotId SlotID) bool {
	return si.slotMap[slotId]
}

func (si *SwapInfo) linkedSlot(frameId FrameID) SlotID {
	return si.frameSlot[frameId]
}

func (si *SwapInfo) link(frameId FrameID, slotId SlotID) {
	si.frameSlot[frameId] = slotId
}

func (si *SwapInfo) unlink(frameId FrameID) {
	si.frameSlot[frameId] = INVALID_SLOT
}
