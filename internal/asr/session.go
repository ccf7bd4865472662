package asr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/voxkit/dictation/internal/audio"
	"github.com/voxkit/dictation/internal/observability"
	"github.com/voxkit/dictation/internal/protocol"
)

// lastFrameBytes is the fixed length of the synthetic zero-payload frame
// that closes every audio stream.
const lastFrameBytes = 100

// ErrHandshakeRejected indicates the server answered a handshake request
// with a failure message.
var ErrHandshakeRejected = errors.New("handshake rejected")

// Config carries the per-client connection parameters.
type Config struct {
	// Endpoint is the websocket URL of the recognition service.
	Endpoint string

	// AppID is the application identifier sent as a query parameter.
	AppID string

	// UserAgent is the declared client identity for the upgrade request.
	UserAgent string

	// ProtoVersion is the protocol version marker header value.
	ProtoVersion string

	// SampleRate and Channels describe the audio frames that will be sent.
	SampleRate int
	Channels   int

	// EventQueueDepth bounds the outbound event channel to the caller.
	EventQueueDepth int
}

// Credentials identifies the device and authorizes the session. Both values
// are opaque here; the device package produces them.
type Credentials struct {
	DeviceID string
	Token    string
}

// Client starts recognition sessions. It holds no connection state itself;
// every Start produces an independent single-use Session.
type Client struct {
	cfg    Config
	logger zerolog.Logger
}

// NewClient creates a client. Zero-valued config fields get defaults
// suitable for 16 kHz mono dictation.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels == 0 {
		cfg.Channels = 1
	}
	if cfg.EventQueueDepth == 0 {
		cfg.EventQueueDepth = 100
	}
	if cfg.ProtoVersion == "" {
		cfg.ProtoVersion = "v2"
	}
	return &Client{cfg: cfg, logger: logger}
}

// Session is one streaming recognition attempt: one connection, one request
// id, one pass through the state machine. A finished or failed session
// cannot be restarted; callers start a new one.
type Session struct {
	conn      *websocket.Conn
	requestID string
	token     string
	cfg       Config
	logger    zerolog.Logger

	state  atomic.Int32
	events chan *protocol.Event

	closeOnce sync.Once
	done      chan struct{}
}

// Start dials the service, performs the two-request handshake and launches
// the send/receive pumps. Connection and handshake failures are returned
// synchronously; after Start returns nil, all failures surface only as
// events. The session ends when the frames channel closes (clean shutdown
// via Last + FinishSession) or when ctx is cancelled (consumer gone, pumps
// stop silently).
func (c *Client) Start(ctx context.Context, creds Credentials, frames <-chan []byte) (*Session, error) {
	if creds.DeviceID == "" || creds.Token == "" {
		return nil, fmt.Errorf("incomplete credentials: device id and token are required")
	}

	s := &Session{
		requestID: uuid.New().String(),
		token:     creds.Token,
		cfg:       c.cfg,
		events:    make(chan *protocol.Event, c.cfg.EventQueueDepth),
		done:      make(chan struct{}),
	}
	s.logger = c.logger.With().Str("request_id", s.requestID).Logger()

	if err := s.connect(ctx, creds.DeviceID); err != nil {
		s.state.Store(int32(StateError))
		observability.RecordSessionStart(false)
		return nil, err
	}

	if err := s.handshake(creds.DeviceID); err != nil {
		s.state.Store(int32(StateError))
		s.conn.Close()
		observability.RecordSessionStart(false)
		return nil, err
	}

	s.state.Store(int32(StateStreaming))
	observability.RecordSessionStart(true)
	s.logger.Info().Msg("Session streaming")

	go s.outboundPump(frames)
	go s.inboundPump(ctx)

	return s, nil
}

// Events returns the typed event stream. The channel closes when the
// inbound pump terminates; the last event before closure is terminal when
// the session ended on the server's initiative.
func (s *Session) Events() <-chan *protocol.Event {
	return s.events
}

// RequestID returns the request id generated for this attempt.
func (s *Session) RequestID() string {
	return s.requestID
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Close tears the connection down. Pumps observe the closed connection and
// stop; safe to call at any point and more than once. A session that
// already failed keeps reporting StateError.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
		if State(s.state.Load()) != StateError {
			s.state.Store(int32(StateClosed))
		}
	})
}

func (s *Session) connect(ctx context.Context, deviceID string) error {
	s.state.Store(int32(StateConnecting))

	u, err := url.Parse(s.cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("aid", s.cfg.AppID)
	q.Set("device_id", deviceID)
	u.RawQuery = q.Encode()

	// The dialer generates a fresh Sec-WebSocket-Key per attempt.
	header := http.Header{}
	header.Set("User-Agent", s.cfg.UserAgent)
	header.Set("proto-version", s.cfg.ProtoVersion)
	header.Set("x-custom-keepalive", "true")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return fmt.Errorf("connect to recognition service: %w", err)
	}
	s.conn = conn
	return nil
}

// handshake sends StartTask then StartSession, blocking for exactly one
// reply each. An Error classification fails the handshake with the
// server-supplied message; any other reply advances.
func (s *Session) handshake(deviceID string) error {
	s.state.Store(int32(StateAwaitingTaskStarted))
	start := time.Now()

	if err := s.conn.WriteMessage(websocket.BinaryMessage, protocol.BuildStartTask(s.requestID, s.token)); err != nil {
		return fmt.Errorf("send StartTask: %w", err)
	}
	if err := s.awaitHandshakeReply("StartTask"); err != nil {
		return err
	}

	s.state.Store(int32(StateAwaitingSessionStarted))

	sessionCfg := protocol.NewSessionConfig(deviceID, s.cfg.SampleRate, s.cfg.Channels)
	msg, err := protocol.BuildStartSession(s.requestID, s.token, sessionCfg)
	if err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		return fmt.Errorf("send StartSession: %w", err)
	}
	if err := s.awaitHandshakeReply("StartSession"); err != nil {
		return err
	}

	observability.RecordHandshake(time.Since(start))
	return nil
}

func (s *Session) awaitHandshakeReply(method string) error {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read %s reply: %w", method, err)
	}
	ev := protocol.Classify(data)
	if ev.Type == protocol.EventError {
		return fmt.Errorf("%w: %s: %s", ErrHandshakeRejected, method, ev.ErrMsg)
	}
	s.logger.Debug().Str("method", method).Str("event", string(ev.Type)).Msg("Handshake reply")
	return nil
}

// outboundPump transmits encoded frames in strict index order until the
// frame queue closes, then sends the synthetic Last frame and FinishSession.
// A transmit failure terminates the session; there is no retry.
func (s *Session) outboundPump(frames <-chan []byte) {
	var index uint64
	start := uint64(time.Now().UnixMilli())

	for frame := range frames {
		state := protocol.FrameStateMiddle
		if index == 0 {
			state = protocol.FrameStateFirst
		}

		// Timestamps are derived from the frame index, never sampled
		// per frame, so cadence on the wire stays exact.
		ts := start + index*audio.FrameDuration
		msg := protocol.BuildTaskRequest(s.requestID, frame, state, ts)

		if err := s.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			s.logger.Warn().Err(err).Uint64("frame", index).Msg("Transmit failed, terminating session")
			s.failTransmit()
			return
		}

		observability.RecordFrameSent(len(frame))
		index++
		if index%50 == 0 {
			s.logger.Debug().Uint64("frames", index).Msg("Audio frames sent")
		}
	}

	// Queue closed: every session ends with exactly one Last frame and
	// one FinishSession, even when zero real frames were produced.
	s.state.Store(int32(StateFinishing))

	ts := start + index*audio.FrameDuration
	last := protocol.BuildTaskRequest(s.requestID, make([]byte, lastFrameBytes), protocol.FrameStateLast, ts)
	if err := s.conn.WriteMessage(websocket.BinaryMessage, last); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to send closing frame")
		s.failTransmit()
		return
	}

	finish := protocol.BuildFinishSession(s.requestID, s.token)
	if err := s.conn.WriteMessage(websocket.BinaryMessage, finish); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to send FinishSession")
		s.failTransmit()
		return
	}

	s.logger.Info().Uint64("frames", index).Msg("Audio stream finished")
}

// failTransmit records a terminal send failure and tears the connection
// down so the inbound pump unblocks and closes the event channel.
func (s *Session) failTransmit() {
	s.state.Store(int32(StateError))
	observability.RecordTransmitError()
	s.conn.Close()
}

// inboundPump reads envelopes, classifies them and republishes typed events.
// Heartbeats are consumed here and never forwarded. Error and
// SessionFinished are forwarded exactly once and end the pump. Context
// cancellation means the consumer is gone; the pump stops silently.
func (s *Session) inboundPump(ctx context.Context) {
	defer close(s.events)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.State() != StateFinishing && s.State() != StateClosed {
				select {
				case <-s.done:
					// Locally closed; not an error.
				default:
					s.logger.Warn().Err(err).Msg("Connection lost")
					s.state.Store(int32(StateError))
				}
			}
			return
		}

		ev := protocol.Classify(data)
		observability.RecordEvent(string(ev.Type))

		if ev.Type == protocol.EventHeartbeat {
			s.logger.Debug().Int("packet", ev.PacketNumber).Msg("Heartbeat")
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}

		if ev.IsTerminal() {
			if ev.Type == protocol.EventError {
				s.state.Store(int32(StateError))
			} else {
				s.state.Store(int32(StateClosed))
			}
			return
		}
	}
}
