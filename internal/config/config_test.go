package config

import (
	"os"
	"testing"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	os.Unsetenv("ASR_ENDPOINT")
	os.Unsetenv("AUDIO_SAMPLE_RATE")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.Endpoint != "wss://frontier-audio-ime-ws.doubao.com/ocean/api/v1/ws" {
		t.Errorf("unexpected default Endpoint '%s'", cfg.Endpoint)
	}

	if cfg.SampleRate != 16000 {
		t.Errorf("Expected default SampleRate 16000, got %d", cfg.SampleRate)
	}

	if cfg.Channels != 1 {
		t.Errorf("Expected default Channels 1, got %d", cfg.Channels)
	}

	if cfg.BlockQueueDepth != 64 {
		t.Errorf("Expected default BlockQueueDepth 64, got %d", cfg.BlockQueueDepth)
	}

	if cfg.EventQueueDepth != 100 {
		t.Errorf("Expected default EventQueueDepth 100, got %d", cfg.EventQueueDepth)
	}

	if cfg.CredentialsPath != "credentials.json" {
		t.Errorf("Expected default CredentialsPath 'credentials.json', got '%s'", cfg.CredentialsPath)
	}

	if cfg.RegisterMaxAttempts != 3 {
		t.Errorf("Expected default RegisterMaxAttempts 3, got %d", cfg.RegisterMaxAttempts)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MetricsEnabled {
		t.Error("Expected default MetricsEnabled false, got true")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	os.Setenv("ASR_ENDPOINT", "wss://example.test/ws")
	os.Setenv("AUDIO_SAMPLE_RATE", "48000")
	os.Setenv("AUDIO_CHANNELS", "2")
	defer os.Unsetenv("ASR_ENDPOINT")
	defer os.Unsetenv("AUDIO_SAMPLE_RATE")
	defer os.Unsetenv("AUDIO_CHANNELS")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.Endpoint != "wss://example.test/ws" {
		t.Errorf("Expected Endpoint 'wss://example.test/ws', got '%s'", cfg.Endpoint)
	}

	if cfg.SampleRate != 48000 {
		t.Errorf("Expected SampleRate 48000, got %d", cfg.SampleRate)
	}

	if cfg.Channels != 2 {
		t.Errorf("Expected Channels 2, got %d", cfg.Channels)
	}
}

func TestLoadFromEnv_InvalidSampleRate(t *testing.T) {
	os.Setenv("AUDIO_SAMPLE_RATE", "44100")
	defer os.Unsetenv("AUDIO_SAMPLE_RATE")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for non-Opus sample rate 44100")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Endpoint:            "wss://example.test/ws",
			SampleRate:          16000,
			Channels:            1,
			BlockQueueDepth:     64,
			FrameQueueDepth:     64,
			EventQueueDepth:     100,
			RegisterMaxAttempts: 3,
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := base()
	cfg.Endpoint = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty endpoint")
	}

	cfg = base()
	cfg.Channels = 3
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for 3 channels")
	}

	cfg = base()
	cfg.EventQueueDepth = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero event queue depth")
	}

	cfg = base()
	cfg.RegisterMaxAttempts = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero register attempts")
	}
}
