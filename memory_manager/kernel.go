package memory_manager

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Kernel is the memory manager of the simulated machine.
// It owns the memory pool, the frame allocator, the per-process page tables, the LRU list and the swap area.
// All operations are serialized by a single mutex, since eviction mutates state shared by every process.
type Kernel struct {
	config Config
	mutex  *sync.Mutex

	// physical memory pool, divided into frames of PAGE_SIZE bytes.
	space  []byte
	frames *FrameAllocator

	si   *SwapInfo
	swap SwapStore

	// running[pid] marks whether the process slot is in use, mm[pid] is its address space.
	running []bool
	mm      []*AddressSpace

	lru *LRUList

	// set when a swap transfer fails, the kernel refuses every operation afterwards.
	failure error
	closed  bool
}

// Stats is a snapshot of resource usage.
type Stats struct {
	TotalFrames      int
	OccupiedFrames   int
	LRULength        int
	UsedSlots        int
	RunningProcesses int
}

// NewKernel initializes the memory pool and the process table, and creates the swap file zero-filled to its full capacity.
func NewKernel(config Config) (*Kernel, error) {

	if err := config.Validate(); err != nil {
		return nil, err
	}

	swap, err := NewSwapStore(config)

	if err != nil {
		return nil, err
	}

	return newKernel(config, swap), nil
}

func newKernel(config Config, swap SwapStore) *Kernel {

	slog.Info("Initializing kernel", "kernelSpaceSize", config.KernelSpaceSize, "virtualSpaceSize", config.VirtualSpaceSize,
		"pageSize", config.PageSize, "maxProcessNum", config.MaxProcessNum, "function", "NewKernel", "at", "Kernel")

	return &Kernel{
		config:  config,
		mutex:   &sync.Mutex{},
		space:   make([]byte, config.KernelSpaceSize),
		frames:  NewFrameAllocator(config.frameCount()),
		si:      NewSwapInfo(config.slotCount(), config.frameCount()),
		swap:    swap,
		running: make([]bool, config.MaxProcessNum),
		mm:      make([]*AddressSpace, config.MaxProcessNum),
		lru:     NewLRUList(config.frameCount()),
	}
}

// Close evicts every resident page to the swap file, releases all address spaces and closes the swap file.
// The swap file is not deleted.
func (kernel *Kernel) Close() error {

	kernel.mutex.Lock()
	defer kernel.mutex.Unlock()

	if kernel.closed {
		return ErrKernelClosed
	}

	slog.Info("Closing kernel...", "residentPages", kernel.lru.size(), "function", "Close", "at", "Kernel")

	var evictErr error

	if kernel.failure == nil {
		for kernel.lru.size() > 0 {
			if _, evictErr = kernel.evictOldest(); evictErr != nil {
				break
			}
		}
	}

	for pid := range kernel.mm {
		kernel.mm[pid] = nil
		kernel.running[pid] = false
	}

	kernel.closed = true

	closeErr := kernel.swap.close()

	if closeErr != nil {
		slog.Error("Failed to close swap store", "error", closeErr.Error(), "function", "Close", "at", "Kernel")
	}

	return errors.Join(evictErr, closeErr)
}

func (kernel *Kernel) Config() Config {
	return kernel.config
}

func (kernel *Kernel) Stats() Stats {

	kernel.mutex.Lock()
	defer kernel.mutex.Unlock()

	running := 0
	for _, r := range kernel.running {
		if r {
			running++
		}
	}

	return Stats{
		TotalFrames:      kernel.frames.size(),
		OccupiedFrames:   kernel.frames.occupiedCount(),
		LRULength:        kernel.lru.size(),
		UsedSlots:        kernel.si.usedSlots,
		RunningProcesses: running,
	}
}

// usable returns an error if the kernel has been closed or halted.
func (kernel *Kernel) usable() error {

	if kernel.failure != nil {
		return fmt.Errorf("%w: %w", ErrKernelHalted, kernel.failure)
	}
	if kernel.closed {
		return ErrKernelClosed
	}
	return nil
}

// halt records a fatal failure, every later operation returns ErrKernelHalted.
func (kernel *Kernel) halt(err error) error {

	slog.Error("Kernel halted", "error", err.Error(), "function", "halt", "at", "Kernel")
	kernel.failure = err
	return err
}

func (kernel *Kernel) addressSpace(pid int) (*AddressSpace, error) {

	if pid < 0 || pid >= kernel.config.MaxProcessNum || !kernel.running[pid] {
		return nil, fmt.Errorf("%w: pid %d", ErrInvalidProcess, pid)
	}
	return kernel.mm[pid], nil
}

// frameData returns the bytes of a frame in the memory pool.
func (kernel *Kernel) frameData(frameId FrameID) []byte {

	start := int(frameId) * kernel.config.PageSize
	return kernel.space[start : start+kernel.config.PageSize]
}
