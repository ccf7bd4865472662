// Package audio provides the capture-side pipeline: fixed 20 ms PCM blocks,
// the bounded single-producer handoff a hardware callback feeds without ever
// blocking, and the Opus frame encoder that turns each block into one
// compressed frame for the wire.
package audio
