package audio

// RingBuffer is a byte ring buffer used to reassemble arbitrary-size PCM
// chunks into fixed blocks. It is not synchronized: each instance is owned by
// exactly one goroutine (the producer side of the capture handoff).
type RingBuffer struct {
	buffer []byte
	size   int
	read   int
	write  int
}

// NewRingBuffer creates a ring buffer holding up to size-1 bytes.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		buffer: make([]byte, size),
		size:   size,
	}
}

// Write appends data, returning the number of bytes written. It stops short
// when the buffer fills rather than overwriting unread audio.
func (rb *RingBuffer) Write(data []byte) int {
	written := 0
	for written < len(data) {
		if (rb.write+1)%rb.size == rb.read {
			break
		}
		// Contiguous run up to the end of the backing array, the read
		// index, or the buffer-full guard slot.
		end := rb.size
		if rb.read > rb.write {
			end = rb.read - 1
		} else if rb.read == 0 {
			end = rb.size - 1
		}
		n := copy(rb.buffer[rb.write:end], data[written:])
		if n == 0 {
			break
		}
		rb.write = (rb.write + n) % rb.size
		written += n
	}
	return written
}

// Read fills data with buffered bytes, returning the number read.
func (rb *RingBuffer) Read(data []byte) int {
	read := 0
	for read < len(data) && rb.read != rb.write {
		end := rb.size
		if rb.write > rb.read {
			end = rb.write
		}
		n := copy(data[read:], rb.buffer[rb.read:end])
		rb.read = (rb.read + n) % rb.size
		read += n
	}
	return read
}

// Available returns the number of bytes ready to read.
func (rb *RingBuffer) Available() int {
	if rb.write >= rb.read {
		return rb.write - rb.read
	}
	return rb.size - rb.read + rb.write
}

// Space returns the number of bytes that can be written without loss.
func (rb *RingBuffer) Space() int {
	return rb.size - rb.Available() - 1
}

// Clear discards all buffered bytes.
func (rb *RingBuffer) Clear() {
	rb.read = 0
	rb.write = 0
}
