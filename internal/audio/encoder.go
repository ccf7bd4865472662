package audio

import (
	"errors"
	"fmt"

	"gopkg.in/hraban/opus.v2"
)

// MaxFrameBytes bounds the size of one encoded frame. An Opus frame larger
// than this is a fatal encoder fault, not a recoverable condition.
const MaxFrameBytes = 4000

// ErrInsufficientSamples is returned when a PCM block is shorter than one
// full frame. The encoder never pads or buffers on the caller's behalf.
var ErrInsufficientSamples = errors.New("insufficient samples for one frame")

// Encoder compresses fixed-length PCM blocks into Opus frames. The encoder
// carries inter-frame prediction state: calls for one session must be
// strictly sequential and in order, or the output is undefined. One encoder
// per session, owned by one goroutine.
type Encoder struct {
	enc        *opus.Encoder
	sampleRate int
	channels   int
	frameSize  int
	out        []byte
}

// NewEncoder creates an Opus encoder for the given format.
func NewEncoder(sampleRate, channels int) (*Encoder, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	enc, err := opus.NewEncoder(sampleRate, channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("create opus encoder: %w", err)
	}
	return &Encoder{
		enc:        enc,
		sampleRate: sampleRate,
		channels:   channels,
		frameSize:  sampleRate * FrameDuration / 1000,
		out:        make([]byte, MaxFrameBytes),
	}, nil
}

// Encode compresses one 16-bit little-endian PCM block into one Opus frame.
// The block must contain at least frameSize*channels samples; fewer fails
// with ErrInsufficientSamples and produces no output.
func (e *Encoder) Encode(pcm []byte) ([]byte, error) {
	samples, err := BytesToSamples(pcm)
	if err != nil {
		return nil, err
	}

	expected := e.frameSize * e.channels
	if len(samples) < expected {
		return nil, fmt.Errorf("%w: got %d samples, expected %d", ErrInsufficientSamples, len(samples), expected)
	}

	n, err := e.enc.Encode(samples[:expected], e.out)
	if err != nil {
		return nil, fmt.Errorf("opus encode: %w", err)
	}

	frame := make([]byte, n)
	copy(frame, e.out[:n])
	return frame, nil
}

// FrameSize returns the per-channel samples in one frame.
func (e *Encoder) FrameSize() int {
	return e.frameSize
}

// SampleRate returns the configured sample rate.
func (e *Encoder) SampleRate() int {
	return e.sampleRate
}

// Channels returns the configured channel count.
func (e *Encoder) Channels() int {
	return e.channels
}
