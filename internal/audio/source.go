package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// CaptureSink is the handoff between an audio producer and the streaming
// pipeline: a bounded single-producer/single-consumer queue of fixed-size PCM
// blocks. A hardware capture callback is the intended producer, so Deliver
// never blocks; when the queue is full the excess audio is dropped and
// counted instead. Closing the sink is the sole end-of-input signal the rest
// of the pipeline sees.
type CaptureSink struct {
	mu      sync.Mutex
	closed  bool
	framer  *Framer
	blocks  chan []byte
	dropped atomic.Uint64
}

// NewCaptureSink creates a sink for the given format with room for depth
// blocks. Depth absorbs a lagging consumer; it must be sized so the producer
// callback does not drop under normal scheduling jitter.
func NewCaptureSink(sampleRate, channels, depth int) *CaptureSink {
	return &CaptureSink{
		framer: NewFramer(sampleRate, channels),
		blocks: make(chan []byte, depth),
	}
}

// Deliver hands a PCM chunk of any size to the pipeline. Safe to call from a
// real-time callback: it never blocks and never allocates beyond the block
// copies themselves. Audio that does not fit the queue is dropped, as is
// audio arriving after Close.
func (s *CaptureSink) Deliver(pcm []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.dropped.Add(uint64(len(pcm)))
		return
	}

	ready, dropped := s.framer.Push(pcm)
	if dropped > 0 {
		s.dropped.Add(uint64(dropped))
	}
	for _, block := range ready {
		select {
		case s.blocks <- block:
		default:
			s.dropped.Add(uint64(len(block)))
		}
	}
}

// Blocks returns the consumer side of the queue. The channel closes when the
// producer calls Close; that closure is how the pipeline learns the input
// has ended.
func (s *CaptureSink) Blocks() <-chan []byte {
	return s.blocks
}

// Close marks the end of input. Any partial trailing block is discarded:
// the encoder only accepts full frames. Safe to call more than once, and
// safe to call concurrently with Deliver: deliveries racing a close are
// dropped rather than sent on the closed queue.
func (s *CaptureSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.blocks)
}

// Dropped returns the total bytes dropped due to backpressure.
func (s *CaptureSink) Dropped() uint64 {
	return s.dropped.Load()
}

// StreamReader reads 16-bit little-endian PCM from r and delivers it to the
// sink until EOF, then closes the sink. A read error while streaming is
// treated the same as end of input, mirroring a capture device failing
// mid-stream; the error is returned for logging.
func StreamReader(r io.Reader, sink *CaptureSink) error {
	defer sink.Close()

	buf := make([]byte, sink.framer.BlockBytes())
	for {
		n, err := r.Read(buf)
		if n > 0 {
			sink.Deliver(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read audio input: %w", err)
		}
	}
}
