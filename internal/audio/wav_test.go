package audio

import (
	"bytes"
	"testing"
)

func TestWAVHeader_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWAVHeader(&buf, 16000, 1, 640); err != nil {
		t.Fatalf("Write header: %v", err)
	}
	buf.Write(make([]byte, 640))

	sampleRate, channels, err := ReadWAVHeader(&buf)
	if err != nil {
		t.Fatalf("Read header: %v", err)
	}
	if sampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", sampleRate)
	}
	if channels != 1 {
		t.Errorf("Expected 1 channel, got %d", channels)
	}
	if buf.Len() != 640 {
		t.Errorf("Expected reader positioned at sample data (640 bytes), got %d", buf.Len())
	}
}

func TestReadWAVHeader_RejectsGarbage(t *testing.T) {
	data := make([]byte, 44)
	copy(data, "NOPE")
	if _, _, err := ReadWAVHeader(bytes.NewReader(data)); err == nil {
		t.Error("Expected error for non-WAV data")
	}
}

func TestReadWAVHeader_RejectsNonPCM(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWAVHeader(&buf, 16000, 1, 0); err != nil {
		t.Fatalf("Write header: %v", err)
	}
	data := buf.Bytes()
	data[20] = 3 // IEEE float format tag
	if _, _, err := ReadWAVHeader(bytes.NewReader(data)); err == nil {
		t.Error("Expected error for non-PCM format")
	}
}

func TestReadWAVHeader_Truncated(t *testing.T) {
	if _, _, err := ReadWAVHeader(bytes.NewReader([]byte{1, 2, 3})); err == nil {
		t.Error("Expected error for truncated header")
	}
}
