package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the dictation client.
type Config struct {
	// Recognition service endpoint
	Endpoint string `envconfig:"ASR_ENDPOINT" default:"wss://frontier-audio-ime-ws.doubao.com/ocean/api/v1/ws"`

	// Audio format
	SampleRate int `envconfig:"AUDIO_SAMPLE_RATE" default:"16000"` // Hz; must be an Opus rate
	Channels   int `envconfig:"AUDIO_CHANNELS" default:"1"`

	// Queue sizing. The capture path must never block, so the block
	// queue bound absorbs downstream lag instead.
	BlockQueueDepth int `envconfig:"BLOCK_QUEUE_DEPTH" default:"64"`
	FrameQueueDepth int `envconfig:"FRAME_QUEUE_DEPTH" default:"64"`
	EventQueueDepth int `envconfig:"EVENT_QUEUE_DEPTH" default:"100"`

	// Device credentials
	CredentialsPath string `envconfig:"CREDENTIALS_PATH" default:"credentials.json"`

	// Registration retry (out-of-band HTTP flow only; sessions never retry)
	RegisterMaxAttempts int `envconfig:"REGISTER_MAX_ATTEMPTS" default:"3"`
	RegisterBackoffMs   int `envconfig:"REGISTER_BACKOFF_MS" default:"500"`

	// Observability
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"` // debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"true"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsPort    string `envconfig:"METRICS_PORT" default:"9090"`
}

// validOpusRates are the sample rates the Opus codec accepts.
var validOpusRates = map[int]bool{8000: true, 12000: true, 16000: true, 24000: true, 48000: true}

// Load reads configuration from a .env file if present, then from the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables,
// skipping the .env file.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints that envconfig cannot express.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("ASR_ENDPOINT is required")
	}
	if !validOpusRates[c.SampleRate] {
		return fmt.Errorf("unsupported sample rate %d: Opus accepts 8000, 12000, 16000, 24000 or 48000", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("unsupported channel count %d: must be 1 or 2", c.Channels)
	}
	if c.BlockQueueDepth <= 0 || c.FrameQueueDepth <= 0 || c.EventQueueDepth <= 0 {
		return fmt.Errorf("queue depths must be positive")
	}
	if c.RegisterMaxAttempts <= 0 {
		return fmt.Errorf("REGISTER_MAX_ATTEMPTS must be positive")
	}
	return nil
}
