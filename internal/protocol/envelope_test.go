package protocol

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRequest_MarshalRoundTrip(t *testing.T) {
	in := &Request{
		Token:       "tok-123",
		ServiceName: ServiceName,
		MethodName:  MethodTaskRequest,
		Payload:     `{"extra":{},"timestamp_ms":40}`,
		AudioData:   []byte{0x01, 0x02, 0x03},
		RequestID:   "req-abc",
		FrameState:  FrameStateMiddle,
	}

	out, err := UnmarshalRequest(in.Marshal())
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Token != in.Token {
		t.Errorf("token: expected %q, got %q", in.Token, out.Token)
	}
	if out.MethodName != in.MethodName {
		t.Errorf("method: expected %q, got %q", in.MethodName, out.MethodName)
	}
	if out.Payload != in.Payload {
		t.Errorf("payload: expected %q, got %q", in.Payload, out.Payload)
	}
	if !bytes.Equal(out.AudioData, in.AudioData) {
		t.Errorf("audio: expected %v, got %v", in.AudioData, out.AudioData)
	}
	if out.RequestID != in.RequestID {
		t.Errorf("request id: expected %q, got %q", in.RequestID, out.RequestID)
	}
	if out.FrameState != FrameStateMiddle {
		t.Errorf("frame state: expected middle, got %s", out.FrameState)
	}
}

func TestResponse_MarshalRoundTrip(t *testing.T) {
	in := &Response{
		MessageType:   "SessionFailed",
		ResultJSON:    `{"results":[]}`,
		StatusMessage: "bad token",
	}
	out, err := UnmarshalResponse(in.Marshal())
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if *out != *in {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestBuildStartTask(t *testing.T) {
	req, err := UnmarshalRequest(BuildStartTask("req-1", "tok"))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.MethodName != MethodStartTask {
		t.Errorf("expected StartTask, got %q", req.MethodName)
	}
	if req.ServiceName != ServiceName {
		t.Errorf("expected service %q, got %q", ServiceName, req.ServiceName)
	}
	if req.Token != "tok" {
		t.Errorf("expected token carried, got %q", req.Token)
	}
	if req.Payload != "" || len(req.AudioData) != 0 {
		t.Error("StartTask must carry no payload and no audio")
	}
	if req.FrameState != FrameStateUnspecified {
		t.Errorf("expected unspecified frame state, got %s", req.FrameState)
	}
}

func TestBuildStartSession(t *testing.T) {
	cfg := NewSessionConfig("device-9", 16000, 1)
	data, err := BuildStartSession("req-1", "tok", cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	req, err := UnmarshalRequest(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.MethodName != MethodStartSession {
		t.Errorf("expected StartSession, got %q", req.MethodName)
	}

	var doc struct {
		AudioInfo struct {
			Channel    int    `json:"channel"`
			Format     string `json:"format"`
			SampleRate int    `json:"sample_rate"`
		} `json:"audio_info"`
		EnablePunctuation bool `json:"enable_punctuation"`
		Extra             struct {
			DID       string `json:"did"`
			InputMode string `json:"input_mode"`
		} `json:"extra"`
	}
	if err := json.Unmarshal([]byte(req.Payload), &doc); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if doc.AudioInfo.Format != "speech_opus" {
		t.Errorf("expected speech_opus format, got %q", doc.AudioInfo.Format)
	}
	if doc.AudioInfo.SampleRate != 16000 || doc.AudioInfo.Channel != 1 {
		t.Errorf("unexpected audio info: %+v", doc.AudioInfo)
	}
	if !doc.EnablePunctuation {
		t.Error("expected punctuation enabled")
	}
	if doc.Extra.DID != "device-9" {
		t.Errorf("expected device id in extra block, got %q", doc.Extra.DID)
	}
	if doc.Extra.InputMode != "tool" {
		t.Errorf("expected tool input mode, got %q", doc.Extra.InputMode)
	}
}

func TestBuildTaskRequest(t *testing.T) {
	audio := []byte{0xAA, 0xBB}
	req, err := UnmarshalRequest(BuildTaskRequest("req-1", audio, FrameStateFirst, 1234))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.MethodName != MethodTaskRequest {
		t.Errorf("expected TaskRequest, got %q", req.MethodName)
	}
	if req.Token != "" {
		t.Error("audio frames must not carry the token")
	}
	if !bytes.Equal(req.AudioData, audio) {
		t.Errorf("expected audio bytes %v, got %v", audio, req.AudioData)
	}
	if req.FrameState != FrameStateFirst {
		t.Errorf("expected first frame state, got %s", req.FrameState)
	}
	if !strings.Contains(req.Payload, `"timestamp_ms":1234`) {
		t.Errorf("expected timestamp in metadata, got %q", req.Payload)
	}
}

func TestBuildFinishSession(t *testing.T) {
	req, err := UnmarshalRequest(BuildFinishSession("req-1", "tok"))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.MethodName != MethodFinishSession {
		t.Errorf("expected FinishSession, got %q", req.MethodName)
	}
	if req.Token != "tok" {
		t.Errorf("expected token carried, got %q", req.Token)
	}
}
