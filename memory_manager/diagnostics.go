package memory_manager

import (
	"fmt"
	"strings"
)

// FreeRun is a run of contiguous free frames, in bytes from the start of the memory pool.
type FreeRun struct {
	Offset int
	Size   int
}

// Mapping describes one virtual page of a process.
// Index is the frame for a resident page, the swap slot for a swapped-out page, and -1 otherwise.
type Mapping struct {
	VirtualPage int
	State       PageState
	Index       int
}

func (kernel *Kernel) FreeSpace() []FreeRun {

	kernel.mutex.Lock()
	defer kernel.mutex.Unlock()

	runs := make([]FreeRun, 0)

	for _, run := range kernel.frames.freeRuns() {
		runs = append(runs, FreeRun{
			Offset: run[0] * kernel.config.PageSize,
			Size:   run[1] * kernel.config.PageSize,
		})
	}
	return runs
}

// LRU returns the resident pages from least to most recently accessed.
func (kernel *Kernel) LRU() []LRUEntry {

	kernel.mutex.Lock()
	defer kernel.mutex.Unlock()

	return kernel.lru.entries()
}

func (kernel *Kernel) Mappings(pid int) ([]Mapping, error) {

	kernel.mutex.Lock()
	defer kernel.mutex.Unlock()

	mm, err := kernel.addressSpace(pid)

	if err != nil {
		return nil, err
	}

	mappings := make([]Mapping, 0, mm.pageCount())

	for page := range mm.pageTable {
		mappings = append(mappings, Mapping{
			VirtualPage: page,
			State:       mm.pageTable[page].state(),
			Index:       mm.pageTable[page].frame,
		})
	}
	return mappings, nil
}

func FormatFreeSpace(runs []FreeRun) string {

	parts := make([]string, 0, len(runs))

	for _, run := range runs {
		parts = append(parts, fmt.Sprintf("(addr:%d, size:%d)", run.Offset, run.Size))
	}
	return "free space: " + strings.Join(parts, " -> ")
}

func FormatLRU(entries []LRUEntry) string {

	parts := make([]string, 0, len(entries))

	for _, entry := range entries {
		parts = append(parts, fmt.Sprintf("(pid:%d, page:%d)", entry.PID, entry.VirtualPage))
	}
	return strings.Join(parts, " -> ")
}

func FormatMappings(pid int, mappings []Mapping) string {

	builder := &strings.Builder{}

	fmt.Fprintf(builder, "Memory mappings of process %d\n", pid)

	for _, mapping := range mappings {

		switch mapping.State {
		case RESIDENT:
			fmt.Fprintf(builder, "virtual page %d -> physical page %d\n", mapping.VirtualPage, mapping.Index)
		case SWAPPED_OUT:
			fmt.Fprintf(builder, "virtual page %d -> swap file page %d\n", mapping.VirtualPage, mapping.Index)
		default:
			fmt.Fprintf(builder, "virtual page %d: Not present\n", mapping.VirtualPage)
		}
	}
	return builder.String()
}
