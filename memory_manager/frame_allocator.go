package memory_manager

type FrameID int

const INVALID_FRAME FrameID = -1

// FrameAllocator keeps track of which frames of the memory pool are occupied.
type FrameAllocator struct {
	occupied []bool
	count    int
}

func NewFrameAllocator(frameCount int) *FrameAllocator {

	return &FrameAllocator{
		occupied: make([]bool, frameCount),
	}
}

// firstFree returns the lowest free frame, or false if every frame is occupied.
func (allocator *FrameAllocator) firstFree() (FrameID, bool) {

	for frameId, occupied := range allocator.occupied {
		if !occupied {
			return FrameID(frameId), true
		}
	}
	return INVALID_FRAME, false
}

func (allocator *FrameAllocator) occupy(frameId FrameID) {

	if !allocator.occupied[frameId] {
		allocator.occupied[frameId] = true
		allocator.count++
	}
}

func (allocator *FrameAllocator) release(frameId FrameID) {

	if allocator.occupied[frameId] {
		allocator.occupied[frameId] = false
		allocator.count--
	}
}

func (allocator *FrameAllocator) isOccupied(frameId FrameID) bool {
	return allocator.occupied[frameId]
}

// occupiedCount returns the number of frames currently in use.
func (allocator *FrameAllocator) occupiedCount() int {
	return allocator.count
}

func (allocator *FrameAllocator) size() int {
	return len(allocator.occupied)
}

// freeRuns returns every maximal run of free frames as (first frame, run length) pairs, in ascending order.
func (allocator *FrameAllocator) freeRuns() [][2]int {

	runs := make([][2]int, 0)

	frameId := 0
	for frameId < len(allocator.occupied) {

		if allocator.occupied[frameId] {
			frameId++
			continue
		}

		start := frameId
		for frameId < len(allocator.occupied) && !allocator.occupied[frameId] {
			frameId++
		}
		runs = append(runs, [2]int{start, frameId - start})
	}
	return runs
}
