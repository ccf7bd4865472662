package audio

import (
	"fmt"
	"math"
)

// FrameDuration is the fixed block cadence in milliseconds. Every PCM block
// and every encoded frame covers exactly this much audio.
const FrameDuration = 20

// BlockSamples returns the number of samples in one 20 ms block.
func BlockSamples(sampleRate, channels int) int {
	return sampleRate * FrameDuration / 1000 * channels
}

// BlockBytes returns the size in bytes of one 20 ms block of 16-bit PCM.
func BlockBytes(sampleRate, channels int) int {
	return BlockSamples(sampleRate, channels) * 2
}

// BytesToSamples converts little-endian 16-bit PCM bytes to samples.
func BytesToSamples(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("PCM data length must be even (16-bit samples), got %d", len(data))
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return samples, nil
}

// SamplesToBytes converts samples to little-endian 16-bit PCM bytes.
func SamplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[i*2] = byte(s)
		data[i*2+1] = byte(s >> 8)
	}
	return data
}

// CalculateRMS calculates the root mean square of audio samples. Used for
// level metering and silence detection.
func CalculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, sample := range samples {
		sum += float64(sample) * float64(sample)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
