package audio

// Framer reassembles PCM chunks of arbitrary size into exact fixed-duration
// blocks. Capture callbacks and file readers rarely deliver audio on block
// boundaries; the framer absorbs the mismatch and only ever emits blocks of
// exactly BlockBytes size.
type Framer struct {
	blockBytes int
	buf        *RingBuffer
}

// NewFramer creates a framer for the given format. The internal buffer holds
// several blocks so a late consumer does not immediately cost audio.
func NewFramer(sampleRate, channels int) *Framer {
	blockBytes := BlockBytes(sampleRate, channels)
	return &Framer{
		blockBytes: blockBytes,
		buf:        NewRingBuffer(blockBytes*8 + 1),
	}
}

// BlockBytes returns the size of the blocks this framer emits.
func (f *Framer) BlockBytes() int {
	return f.blockBytes
}

// Push adds a PCM chunk and returns the complete blocks now available.
// Returns nil when no full block has accumulated yet. Bytes that do not fit
// the internal buffer are dropped; the dropped count is returned so the
// caller can surface it.
func (f *Framer) Push(chunk []byte) (blocks [][]byte, dropped int) {
	written := f.buf.Write(chunk)
	dropped = len(chunk) - written

	for f.buf.Available() >= f.blockBytes {
		block := make([]byte, f.blockBytes)
		f.buf.Read(block)
		blocks = append(blocks, block)
	}
	return blocks, dropped
}

// Pending returns the number of buffered bytes short of a full block.
func (f *Framer) Pending() int {
	return f.buf.Available()
}

// Reset discards any partial block.
func (f *Framer) Reset() {
	f.buf.Clear()
}
