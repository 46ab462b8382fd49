package memory_manager

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded = errors.New("requested address space exceeds virtual space limit")
	ErrNoFreeSlot       = errors.New("no free process slot")
	ErrInvalidProcess   = errors.New("invalid process")
	ErrOutOfBounds      = errors.New("address range out of bounds")

	// returned by every operation once a fatal failure has halted the kernel.
	ErrKernelHalted = errors.New("kernel halted after fatal failure")

	// occupied frames without matching LRU entries, eviction cannot free a frame.
	ErrFrameAccounting = errors.New("frame accounting out of sync")
)

// SwapIOError reports a failed transfer between the memory pool and the swap file.
// The kernel cannot make progress after one, so it is never treated as a recoverable failure.
type SwapIOError struct {
	Op   string
	Slot int
	Err  error
}

func (err *SwapIOError) Error() string {
	return fmt.Sprintf("swap %s failed at slot %d: %v", err.Op, err.Slot, err.Err)
}

func (err *SwapIOError) Unwrap() error {
	return err.Err
}

// IsFatal returns true if err means the kernel can no longer be used.
func IsFatal(err error) bool {

	var swapErr *SwapIOError
	return errors.As(err, &swapErr) || errors.Is(err, ErrKernelHalted) || errors.Is(err, ErrFrameAccounting)
}

var ErrKernelClosed = errors.New("kernel closed")
