package protocol

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ServiceName is the constant service identifier carried in every request.
const ServiceName = "ASR"

// Method names accepted by the server.
const (
	MethodStartTask     = "StartTask"
	MethodStartSession  = "StartSession"
	MethodTaskRequest   = "TaskRequest"
	MethodFinishSession = "FinishSession"
)

// FrameState marks the position of an audio frame within a session.
type FrameState int32

const (
	FrameStateUnspecified FrameState = 0
	FrameStateFirst       FrameState = 1
	FrameStateMiddle      FrameState = 2
	FrameStateLast        FrameState = 3
)

func (f FrameState) String() string {
	switch f {
	case FrameStateFirst:
		return "first"
	case FrameStateMiddle:
		return "middle"
	case FrameStateLast:
		return "last"
	default:
		return "unspecified"
	}
}

// Request field numbers on the wire.
const (
	reqFieldToken       = 1
	reqFieldServiceName = 2
	reqFieldMethodName  = 3
	reqFieldPayload     = 4
	reqFieldAudioData   = 5
	reqFieldRequestID   = 6
	reqFieldFrameState  = 7
)

// Response field numbers on the wire.
const (
	respFieldMessageType   = 1
	respFieldResultJSON    = 2
	respFieldStatusMessage = 3
)

// Request is the sole unit sent to the server: one protobuf-framed envelope
// carrying a method name, an optional JSON payload and optional audio bytes.
type Request struct {
	Token       string
	ServiceName string
	MethodName  string
	Payload     string
	AudioData   []byte
	RequestID   string
	FrameState  FrameState
}

// Marshal encodes the request using proto3 semantics: zero-valued fields are
// omitted from the wire.
func (r *Request) Marshal() []byte {
	b := make([]byte, 0, 64+len(r.Payload)+len(r.AudioData))
	b = appendString(b, reqFieldToken, r.Token)
	b = appendString(b, reqFieldServiceName, r.ServiceName)
	b = appendString(b, reqFieldMethodName, r.MethodName)
	b = appendString(b, reqFieldPayload, r.Payload)
	if len(r.AudioData) > 0 {
		b = protowire.AppendTag(b, reqFieldAudioData, protowire.BytesType)
		b = protowire.AppendBytes(b, r.AudioData)
	}
	b = appendString(b, reqFieldRequestID, r.RequestID)
	if r.FrameState != FrameStateUnspecified {
		b = protowire.AppendTag(b, reqFieldFrameState, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.FrameState))
	}
	return b
}

// UnmarshalRequest decodes a request envelope. It exists for the benefit of
// tests and fake servers; the client itself only encodes requests.
func UnmarshalRequest(data []byte) (*Request, error) {
	r := &Request{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("decode request tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("decode request field %d: %w", num, protowire.ParseError(n))
			}
			switch num {
			case reqFieldToken:
				r.Token = string(v)
			case reqFieldServiceName:
				r.ServiceName = string(v)
			case reqFieldMethodName:
				r.MethodName = string(v)
			case reqFieldPayload:
				r.Payload = string(v)
			case reqFieldAudioData:
				r.AudioData = append([]byte(nil), v...)
			case reqFieldRequestID:
				r.RequestID = string(v)
			}
			data = data[n:]
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("decode request field %d: %w", num, protowire.ParseError(n))
			}
			if num == reqFieldFrameState {
				r.FrameState = FrameState(v)
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("skip request field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return r, nil
}

// Response is the envelope received from the server: a message type plus an
// optional embedded JSON result document and an optional status message.
type Response struct {
	MessageType   string
	ResultJSON    string
	StatusMessage string
}

// Marshal encodes a response envelope. Used by fake servers in tests.
func (r *Response) Marshal() []byte {
	b := make([]byte, 0, 32+len(r.ResultJSON))
	b = appendString(b, respFieldMessageType, r.MessageType)
	b = appendString(b, respFieldResultJSON, r.ResultJSON)
	b = appendString(b, respFieldStatusMessage, r.StatusMessage)
	return b
}

// UnmarshalResponse decodes a response envelope. Unknown fields are skipped.
func UnmarshalResponse(data []byte) (*Response, error) {
	r := &Response{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("decode response tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if typ != protowire.BytesType {
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("skip response field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("decode response field %d: %w", num, protowire.ParseError(n))
		}
		switch num {
		case respFieldMessageType:
			r.MessageType = string(v)
		case respFieldResultJSON:
			r.ResultJSON = string(v)
		case respFieldStatusMessage:
			r.StatusMessage = string(v)
		}
		data = data[n:]
	}
	return r, nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// BuildStartTask builds the first handshake envelope, carrying the bearer
// token and no payload.
func BuildStartTask(requestID, token string) []byte {
	r := &Request{
		Token:       token,
		ServiceName: ServiceName,
		MethodName:  MethodStartTask,
		RequestID:   requestID,
	}
	return r.Marshal()
}

// BuildStartSession builds the second handshake envelope, carrying the
// serialized session configuration document.
func BuildStartSession(requestID, token string, cfg *SessionConfig) ([]byte, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal session config: %w", err)
	}
	r := &Request{
		Token:       token,
		ServiceName: ServiceName,
		MethodName:  MethodStartSession,
		Payload:     string(payload),
		RequestID:   requestID,
	}
	return r.Marshal(), nil
}

// BuildFinishSession builds the closing envelope sent after the last audio
// frame.
func BuildFinishSession(requestID, token string) []byte {
	r := &Request{
		Token:       token,
		ServiceName: ServiceName,
		MethodName:  MethodFinishSession,
		RequestID:   requestID,
	}
	return r.Marshal()
}

// taskMetadata is the JSON payload attached to every audio frame envelope.
type taskMetadata struct {
	Extra       struct{} `json:"extra"`
	TimestampMS uint64   `json:"timestamp_ms"`
}

// BuildTaskRequest builds one audio frame envelope. The token field is left
// empty: only handshake and finish envelopes carry it.
func BuildTaskRequest(requestID string, audio []byte, state FrameState, timestampMS uint64) []byte {
	payload, _ := json.Marshal(taskMetadata{TimestampMS: timestampMS})
	r := &Request{
		ServiceName: ServiceName,
		MethodName:  MethodTaskRequest,
		Payload:     string(payload),
		AudioData:   audio,
		RequestID:   requestID,
		FrameState:  state,
	}
	return r.Marshal()
}
