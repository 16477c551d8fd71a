package vfs

import (
	"fmt"
	"io"
)

// GrowStep is the initial capacity of a Buffer used for streams of
// unknown length, and the amount it grows by each time it fills up.
const GrowStep = 4096

// Buffer is a byte region filled front to back. It is owned by a single
// goroutine until Detach hands the bytes over.
type Buffer struct {
	data []byte
	n    int
}

// NewBuffer allocates a buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Len returns the number of filled bytes.
func (b *Buffer) Len() int { return b.n }

// Cap returns the allocated capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Full reports whether no free space remains.
func (b *Buffer) Full() bool { return b.n == len(b.data) }

// Free returns the unfilled tail. Bytes written there become part of
// the buffer only after Commit.
func (b *Buffer) Free() []byte { return b.data[b.n:] }

// Commit marks n more bytes of the free tail as filled.
func (b *Buffer) Commit(n int) {
	if n < 0 || b.n+n > len(b.data) {
		panic(fmt.Sprintf("vfs: commit %d bytes with %d free", n, len(b.data)-b.n))
	}
	b.n += n
}

// Grow extends the capacity by GrowStep, keeping the filled bytes.
func (b *Buffer) Grow() {
	grown := make([]byte, len(b.data)+GrowStep)
	copy(grown, b.data[:b.n])
	b.data = grown
}

// Bytes returns the filled bytes without transferring ownership.
func (b *Buffer) Bytes() []byte { return b.data[:b.n] }

// Detach returns the filled bytes and leaves the buffer empty. The
// caller owns the returned slice.
func (b *Buffer) Detach() []byte {
	out := b.data[:b.n:b.n]
	b.data = nil
	b.n = 0
	return out
}

// ReadFrom reads r into the free tail until a read yields no bytes,
// growing by GrowStep each time the buffer is exactly full. End of
// stream ends the loop normally; any other error is returned wrapped in
// ErrReadFailed, with everything read before it kept in the buffer.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if b.Full() {
			b.Grow()
		}
		n, err := r.Read(b.Free())
		if n > 0 {
			b.Commit(n)
			total += int64(n)
		}
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, fmt.Errorf("%w: %w", ErrReadFailed, err)
		}
		if n == 0 {
			return total, nil
		}
	}
}
