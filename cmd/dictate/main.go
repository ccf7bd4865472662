package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/voxkit/dictation/internal/asr"
	"github.com/voxkit/dictation/internal/audio"
	"github.com/voxkit/dictation/internal/config"
	"github.com/voxkit/dictation/internal/device"
	"github.com/voxkit/dictation/internal/observability"
	"github.com/voxkit/dictation/internal/protocol"
	"github.com/voxkit/dictation/internal/resilience"
)

const version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	inputPath := flag.String("input", "-", "audio input: a .wav file, a raw PCM file, or - for stdin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("input", *inputPath).
		Str("log_level", cfg.LogLevel).
		Msg("Dictation client starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	creds, err := ensureCredentials(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Device provisioning failed")
		return 1
	}

	if cfg.MetricsEnabled {
		go serveMetrics(cfg, creds)
	}

	input, sampleRate, channels, err := openInput(*inputPath, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open audio input")
		return 1
	}
	defer input.Close()

	// Capture path: reader -> sink -> encoder -> session. The sink drops
	// rather than blocks when the encoder falls behind.
	sink := audio.NewCaptureSink(sampleRate, channels, cfg.BlockQueueDepth)
	go func() {
		if err := audio.StreamReader(input, sink); err != nil {
			logger.Warn().Err(err).Msg("Audio input ended with error")
		}
	}()

	encoder, err := audio.NewEncoder(sampleRate, channels)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create encoder")
		return 1
	}

	frames := make(chan []byte, cfg.FrameQueueDepth)
	go encodeBlocks(sink, encoder, frames, logger)

	client := asr.NewClient(asr.Config{
		Endpoint:        cfg.Endpoint,
		AppID:           strconv.Itoa(device.AID),
		UserAgent:       device.UserAgent,
		SampleRate:      sampleRate,
		Channels:        channels,
		EventQueueDepth: cfg.EventQueueDepth,
	}, logger)

	session, err := client.Start(ctx, asr.Credentials{DeviceID: creds.DeviceID, Token: creds.Token}, frames)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to start session")
		return 1
	}
	defer session.Close()

	go func() {
		<-quit
		logger.Info().Msg("Interrupted, finishing session")
		sink.Close()
	}()

	exitCode := runEventLoop(session, logger)
	if dropped := sink.Dropped(); dropped > 0 {
		observability.RecordAudioDropped(dropped)
		logger.Warn().Uint64("bytes", dropped).Msg("Audio dropped during capture")
	}
	return exitCode
}

// ensureCredentials loads persisted device credentials, running the
// registration flow and saving the result when they are missing or
// incomplete.
func ensureCredentials(ctx context.Context, cfg *config.Config) (*device.Credentials, error) {
	logger := observability.GetLogger()

	creds, err := device.Load(cfg.CredentialsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Msg("Could not read stored credentials, generating new identity")
		}
		creds = device.NewGenerated()
	}
	if creds.IsComplete() {
		return creds, nil
	}

	retry := &resilience.RetryConfig{
		MaxAttempts:    cfg.RegisterMaxAttempts,
		InitialBackoff: time.Duration(cfg.RegisterBackoffMs) * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
	}
	registrar := device.NewRegistrar(retry, logger)
	if err := registrar.Provision(ctx, creds); err != nil {
		return nil, err
	}
	if err := creds.Save(cfg.CredentialsPath); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist credentials")
	}
	return creds, nil
}

// openInput opens the audio source. WAV files override the configured
// sample rate and channel count with the values from their header.
func openInput(path string, cfg *config.Config) (io.ReadCloser, int, int, error) {
	if path == "-" {
		return os.Stdin, cfg.SampleRate, cfg.Channels, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}

	if strings.HasSuffix(strings.ToLower(path), ".wav") {
		sampleRate, channels, err := audio.ReadWAVHeader(f)
		if err != nil {
			f.Close()
			return nil, 0, 0, fmt.Errorf("invalid WAV file: %w", err)
		}
		return f, sampleRate, channels, nil
	}

	return f, cfg.SampleRate, cfg.Channels, nil
}

// encodeBlocks compresses captured PCM blocks into frames for the session,
// closing the frame queue when capture ends. Encoding is strictly
// sequential; frame order on the wire matches capture order.
func encodeBlocks(sink *audio.CaptureSink, encoder *audio.Encoder, frames chan<- []byte, logger zerolog.Logger) {
	defer close(frames)

	// Local energy metering for operator feedback. The server VAD is
	// authoritative; this never gates what gets sent.
	vad := audio.NewVADDetector(0, 0)

	for block := range sink.Blocks() {
		if samples, err := audio.BytesToSamples(block); err == nil {
			_, started, ended := vad.ProcessFrame(samples)
			if started {
				logger.Debug().Msg("Input level rose above speech threshold")
			} else if ended {
				logger.Debug().Msg("Input level fell silent")
			}
		}

		frame, err := encoder.Encode(block)
		if err != nil {
			logger.Warn().Err(err).Msg("Frame encoding failed, skipping block")
			continue
		}
		frames <- frame
	}
}

// runEventLoop consumes recognition events until the session ends. Interim
// text repaints a single stderr line; final text goes to stdout so the
// transcript survives redirection.
func runEventLoop(session *asr.Session, logger zerolog.Logger) int {
	var interimShown bool
	for ev := range session.Events() {
		switch ev.Type {
		case protocol.EventInterimResult:
			fmt.Fprintf(os.Stderr, "\r\033[K%s", ev.Text)
			interimShown = true
		case protocol.EventFinalResult:
			if interimShown {
				fmt.Fprint(os.Stderr, "\r\033[K")
				interimShown = false
			}
			fmt.Println(ev.Text)
		case protocol.EventVADStart:
			logger.Info().Msg("Speech detected")
		case protocol.EventError:
			if interimShown {
				fmt.Fprint(os.Stderr, "\n")
			}
			logger.Error().Str("message", ev.ErrMsg).Msg("Session failed")
			return 1
		case protocol.EventSessionFinished:
			if interimShown {
				fmt.Fprint(os.Stderr, "\r\033[K")
			}
			logger.Info().Msg("Session finished")
			return 0
		}
	}
	// Channel closed without a terminal event: either a local shutdown or
	// a transmit failure that never produced a server reply.
	if session.State() == asr.StateError {
		if interimShown {
			fmt.Fprint(os.Stderr, "\n")
		}
		logger.Error().Msg("Session ended on a transport failure")
		return 1
	}
	return 0
}

// serveMetrics exposes Prometheus metrics plus health and readiness
// endpoints for scraping during long dictation runs.
func serveMetrics(cfg *config.Config, creds *device.Credentials) {
	logger := observability.GetLogger()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", observability.HealthCheckHandler(version))
	mux.HandleFunc("/ready", observability.ReadinessHandler(func() (bool, string) {
		if !creds.IsComplete() {
			return false, "device not registered"
		}
		return true, ""
	}))

	server := &http.Server{
		Addr:         ":" + cfg.MetricsPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Info().Str("port", cfg.MetricsPort).Msg("Prometheus metrics enabled at /metrics")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}
