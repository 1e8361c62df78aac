package audio

import "sync"

// Buffer is the shared capture buffer: the device callback appends
// normalized mono samples, the control goroutine drains them once the
// capture worker has been joined.
type Buffer struct {
	mu      sync.Mutex
	samples []float32
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// TryAppend appends samples if the lock can be taken immediately and
// reports whether it did. The realtime driver thread calls this and
// must never park on a contested lock, so a busy buffer means the
// batch is dropped by the caller.
func (b *Buffer) TryAppend(samples []float32) bool {
	if !b.mu.TryLock() {
		return false
	}
	b.samples = append(b.samples, samples...)
	b.mu.Unlock()
	return true
}

// Drain returns the captured samples and resets the buffer. Called
// once per session, after the writer has terminated.
func (b *Buffer) Drain() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.samples
	b.samples = nil
	return out
}

// Len reports the number of buffered samples.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}
