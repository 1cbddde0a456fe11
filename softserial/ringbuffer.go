// softserial/ringbuffer.go

package softserial

import "sync/atomic"

// rxBufferSize is the receive queue capacity in bytes. Power of two so the
// monotonic indices can be reduced cheaply.
const rxBufferSize = 64

// ringBuffer is a single-producer/single-consumer byte queue. The edge
// handler is the only writer of head and the consuming task the only writer
// of tail; atomic index publication is the entire synchronisation story, so
// there is no lock to take in interrupt context.
type ringBuffer struct {
	buf     [rxBufferSize]byte
	head    atomic.Uint32 // producer index, monotonic
	tail    atomic.Uint32 // consumer index, monotonic
	overrun atomic.Bool   // sticky until CheckAndClearOverrun
}

// Used returns how many bytes are buffered but unread.
func (rb *ringBuffer) Used() int {
	return int(rb.head.Load() - rb.tail.Load())
}

// Put stores one byte. A full buffer drops the byte and latches the overrun
// flag instead.
func (rb *ringBuffer) Put(b byte) bool {
	h := rb.head.Load()
	if h-rb.tail.Load() == rxBufferSize {
		rb.overrun.Store(true)
		return false
	}
	rb.buf[h%rxBufferSize] = b // 1) write data
	rb.head.Store(h + 1)       // 2) publish
	return true
}

// Get removes and returns the oldest byte, if any.
func (rb *ringBuffer) Get() (byte, bool) {
	t := rb.tail.Load()
	if rb.head.Load() == t {
		return 0, false
	}
	b := rb.buf[t%rxBufferSize] // 1) read current element
	rb.tail.Store(t + 1)        // 2) publish consumption
	return b, true
}

// CheckAndClearOverrun returns the sticky overrun flag and resets it. The
// buffered read operations compose from this and Get.
func (rb *ringBuffer) CheckAndClearOverrun() bool {
	return rb.overrun.Swap(false)
}
