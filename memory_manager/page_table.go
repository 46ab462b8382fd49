package memory_manager

// PageState is the state of a virtual page, derived from its page table entry.
type PageState int

const (
	UNMAPPED PageState = iota
	SWAPPED_OUT
	RESIDENT
)

func (state PageState) String() string {

	switch state {
	case UNMAPPED:
		return "unmapped"
	case SWAPPED_OUT:
		return "swapped-out"
	case RESIDENT:
		return "resident"
	default:
		return "unknown"
	}
}

// PTE is a page table entry.
// frame holds a frame index when the page is present, a swap slot index when it is swapped out,
// and -1 when the mapping has not been built yet.
type PTE struct {
	frame   int
	present bool
	dirty   bool
}

func (pte *PTE) state() PageState {

	if pte.present {
		return RESIDENT
	}
	if pte.frame == -1 {
		return UNMAPPED
	}
	return SWAPPED_OUT
}

func (pte *PTE) mapFrame(frameId FrameID) {
	pte.frame = int(frameId)
	pte.present = true
	pte.dirty = false
}

func (pte *PTE) mapSlot(slotId SlotID) {
	pte.frame = int(slotId)
	pte.present = false
	pte.dirty = false
}

func (pte *PTE) frameId() FrameID {
	return FrameID(pte.frame)
}

func (pte *PTE) slotId() SlotID {
	return SlotID(pte.frame)
}

// AddressSpace is the virtual memory of one running process.
type AddressSpace struct {
	size      int
	pageTable []PTE
}

func newAddressSpace(size int, pageSize int) *AddressSpace {

	pageCount := (size + pageSize - 1) / pageSize

	pageTable := make([]PTE, pageCount)

	// the mapping is built lazily on first access.
	for i := range pageTable {
		pageTable[i] = PTE{frame: -1}
	}

	return &AddressSpace{
		size:      size,
		pageTable: pageTable,
	}
}

func (mm *AddressSpace) pageCount() int {
	return len(mm.pageTable)
}

// inBounds returns true if [addr, addr+size) lies inside the address space.
func (mm *AddressSpace) inBounds(addr int, size int) bool {
	return addr >= 0 && size >= 0 && addr+size <= mm.size
}
