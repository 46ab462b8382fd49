package memory_manager

// LRUEntry identifies a resident virtual page.
type LRUEntry struct {
	PID         int
	VirtualPage int
}

type lruNode struct {
	entry  LRUEntry
	linked bool
	prev   FrameID
	next   FrameID
}

// LRUList keeps track of the order in which resident pages were last accessed, across all processes.
// Every resident page occupies exactly one frame, so the list is stored as an arena indexed by frame ID,
// with integer links instead of pointers. The head is the least recently accessed page, the tail the most recent.
type LRUList struct {
	nodes []lruNode
	head  FrameID
	tail  FrameID
	count int
}

func NewLRUList(frameCount int) *LRUList {

	return &LRUList{
		nodes: make([]lruNode, frameCount),
		head:  INVALID_FRAME,
		tail:  INVALID_FRAME,
	}
}

// insert appends the page stored in frameId at the tail, it becomes the most recently accessed page.
func (list *LRUList) insert(frameId FrameID, pid int, virtualPage int) {

	if list.nodes[frameId].linked {
		list.unlink(frameId)
	}

	list.nodes[frameId].entry = LRUEntry{PID: pid, VirtualPage: virtualPage}
	list.pushBack(frameId)
}

// promote moves the page stored in frameId to the tail. It is a no-op if the frame is not in the list.
func (list *LRUList) promote(frameId FrameID) {

	if !list.nodes[frameId].linked || list.tail == frameId {
		return
	}

	list.unlink(frameId)
	list.pushBack(frameId)
}

// victim removes and returns the frame at the head of the list, which holds the least recently accessed page.
func (list *LRUList) victim() (FrameID, LRUEntry, bool) {

	if list.head == INVALID_FRAME {
		return INVALID_FRAME, LRUEntry{}, false
	}

	frameId := list.head
	entry := list.nodes[frameId].entry

	list.unlink(frameId)
	return frameId, entry, true
}

// remove drops the frame from the list, typically when its process exits.
func (list *LRUList) remove(frameId FrameID) {

	if list.nodes[frameId].linked {
		list.unlink(frameId)
	}
}

func (list *LRUList) contains(frameId FrameID) bool {
	return list.nodes[frameId].linked
}

// size returns the number of pages currently in the list.
func (list *LRUList) size() int {
	return list.count
}

// entries returns the list contents from head (least recent) to tail (most recent).
func (list *LRUList) entries() []LRUEntry {

	entries := make([]LRUEntry, 0, list.count)

	for frameId := list.head; frameId != INVALID_FRAME; frameId = list.nodes[frameId].next {
		entries = append(entries, list.nodes[frameId].entry)
	}
	return entries
}

func (list *LRUList) pushBack(frameId FrameID) {

	node := &list.nodes[frameId]

	node.prev = list.tail
	node.next = INVALID_FRAME
	node.linked = true

	if list.tail != INVALID_FRAME {
		list.nodes[list.tail].next = frameId
	} else {
		list.head = frameId
	}
	list.tail = frameId
	list.count++
}

func (list *LRUList) unlink(frameId FrameID) {

	node := &list.nodes[frameId]

	if node.prev != INVALID_FRAME {
		list.nodes[node.prev].next = node.next
	} else {
		list.head = node.next
	}

	if node.next != INVALID_FRAME {
		list.nodes[node.next].prev = node.prev
	} else {
		list.tail = node.prev
	}

	node.prev = INVALID_FRAME
	node.next = INVALID_FRAME
	node.linked = false
	list.count--
}
