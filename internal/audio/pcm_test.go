package audio

import (
	"math"
	"testing"
)

func TestBlockSizing(t *testing.T) {
	if got := BlockSamples(16000, 1); got != 320 {
		t.Errorf("Expected 320 samples for 16kHz mono, got %d", got)
	}
	if got := BlockBytes(16000, 1); got != 640 {
		t.Errorf("Expected 640 bytes for 16kHz mono, got %d", got)
	}
	if got := BlockSamples(48000, 2); got != 1920 {
		t.Errorf("Expected 1920 samples for 48kHz stereo, got %d", got)
	}
}

func TestBytesToSamples(t *testing.T) {
	data := []byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80}
	samples, err := BytesToSamples(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []int16{1, -1, -32768}
	for i, want := range expected {
		if samples[i] != want {
			t.Errorf("Sample %d: expected %d, got %d", i, want, samples[i])
		}
	}
}

func TestBytesToSamples_OddLength(t *testing.T) {
	if _, err := BytesToSamples([]byte{0x01}); err == nil {
		t.Error("Expected error for odd-length PCM data")
	}
}

func TestSamplesToBytes_RoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345}
	back, err := BytesToSamples(SamplesToBytes(samples))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, want := range samples {
		if back[i] != want {
			t.Errorf("Sample %d: expected %d, got %d", i, want, back[i])
		}
	}
}

func TestCalculateRMS(t *testing.T) {
	if rms := CalculateRMS(nil); rms != 0.0 {
		t.Errorf("Expected RMS 0 for empty input, got %f", rms)
	}

	silence := make([]int16, 160)
	if rms := CalculateRMS(silence); rms != 0.0 {
		t.Errorf("Expected RMS 0 for silence, got %f", rms)
	}

	constant := []int16{1000, -1000, 1000, -1000}
	rms := CalculateRMS(constant)
	if math.Abs(rms-1000.0) > 0.001 {
		t.Errorf("Expected RMS 1000 for constant amplitude, got %f", rms)
	}
}
