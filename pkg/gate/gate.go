package gate

import "sync/atomic"

// Gate is a single slot admission controller with a drop-latest
// policy. TryAcquire never blocks, callers which fail to take the
// slot are expected to discard their unit of work rather than queue
// it. The slot is a bare atomic flag so acquiring and releasing are
// safe from any goroutine.
type Gate struct {
	held int32
}

func New() *Gate {
	return &Gate{}
}

// TryAcquire takes the slot if it is free. It reports whether the
// caller now holds the slot.
func (g *Gate) TryAcquire() bool {
	return atomic.CompareAndSwapInt32(&g.held, 0, 1)
}

// Release frees the slot. It reports whether the slot was actually
// held, a false return means a double release which is always a
// caller bug.
func (g *Gate) Release() bool {
	return atomic.CompareAndSwapInt32(&g.held, 1, 0)
}

// Held reports whether the slot is currently taken.
func (g *Gate) Held() bool {
	return atomic.LoadInt32(&g.held) == 1
}
