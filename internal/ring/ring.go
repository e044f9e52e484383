// Package ring implements the fixed-capacity frame buffer shared between the
// acquisition loop and the archiver.
//
// The buffer is the only capacity-driven blocking point in the pipeline: Put
// blocks while full and Get blocks while empty, which couples the
// camera-rate producer to the disk-rate consumer without unbounded memory
// use. Capacity is chosen as a multiple of one encode-chunk window so the
// buffer can absorb a full chunk's worth of I/O jitter.
package ring

import (
	"sync"

	"github.com/cantin-ortiz/camera-capture-tool/internal/domain"
)

// Buffer is a thread-safe FIFO of frames with fixed capacity. A single mutex
// and condition variable guard all cursor and slot mutation.
//
// Invariants: the buffer is full iff the slot at the write cursor is occupied
// and the cursors coincide; empty iff the slot at the read cursor is
// unoccupied. TotalWritten minus frames consumed always equals occupancy.
type Buffer struct {
	mu   sync.Mutex
	cond *sync.Cond

	slots []*domain.Frame
	write int
	read  int

	totalWritten uint64
	stopped      bool
}

// New creates a buffer with the given capacity. Capacity must be positive.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic("ring: capacity must be positive")
	}
	b := &Buffer{slots: make([]*domain.Frame, capacity)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Put stores an image, blocking while the buffer is full. The frame's
// sequence index is assigned here, from the running write counter, and
// returned. An occupied slot is never overwritten.
func (b *Buffer) Put(img domain.Image) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Full: the write slot is occupied and both cursors coincide. Re-checked
	// on every wakeup.
	for b.slots[b.write] != nil && b.write == b.read {
		b.cond.Wait()
	}

	index := b.totalWritten
	b.slots[b.write] = &domain.Frame{Index: index, Image: img}
	b.write = (b.write + 1) % len(b.slots)
	b.totalWritten++

	b.cond.Signal()
	return index
}

// Get removes and returns the oldest frame, blocking while the buffer is
// empty. It returns ok=false only when a stop has been signalled and the
// buffer is empty at wake time; the emptiness check runs both before and
// after each wait so a late frame racing the stop signal is still delivered.
func (b *Buffer) Get() (domain.Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.slots[b.read] == nil {
		if b.stopped {
			return domain.Frame{}, false
		}
		b.cond.Wait()
	}

	frame := *b.slots[b.read]
	b.slots[b.read] = nil
	b.read = (b.read + 1) % len(b.slots)

	b.cond.Signal()
	return frame, true
}

// Stop marks the buffer as stopping and wakes all waiters. Frames already
// buffered remain retrievable; Get starts returning ok=false once drained.
func (b *Buffer) Stop() {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()
	b.cond.Broadcast()
}

// TotalWritten returns the number of frames ever stored. Together with the
// archiver's consumed count this yields the lag driving flow control.
func (b *Buffer) TotalWritten() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalWritten
}

// Len returns the current occupancy.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, s := range b.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Cap returns the configured capacity.
func (b *Buffer) Cap() int {
	return len(b.slots)
}
