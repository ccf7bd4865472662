package protocol

import (
	"testing"
)

func classifyJSON(t *testing.T, resultJSON string) *Event {
	t.Helper()
	resp := &Response{MessageType: "Result", ResultJSON: resultJSON}
	return Classify(resp.Marshal())
}

func TestClassify_HandshakeMessages(t *testing.T) {
	cases := []struct {
		messageType string
		want        EventType
	}{
		{"TaskStarted", EventTaskStarted},
		{"SessionStarted", EventSessionStarted},
		{"SessionFinished", EventSessionFinished},
	}

	for _, c := range cases {
		resp := &Response{MessageType: c.messageType}
		ev := Classify(resp.Marshal())
		if ev.Type != c.want {
			t.Errorf("message type %q: expected %s, got %s", c.messageType, c.want, ev.Type)
		}
	}
}

func TestClassify_FailureMessagesCarryStatus(t *testing.T) {
	for _, messageType := range []string{"TaskFailed", "SessionFailed"} {
		resp := &Response{MessageType: messageType, StatusMessage: "quota exceeded"}
		ev := Classify(resp.Marshal())
		if ev.Type != EventError {
			t.Errorf("%s: expected error event, got %s", messageType, ev.Type)
		}
		if ev.ErrMsg != "quota exceeded" {
			t.Errorf("%s: expected server status message, got %q", messageType, ev.ErrMsg)
		}
	}
}

func TestClassify_FinalResult(t *testing.T) {
	ev := classifyJSON(t, `{"results":[{"text":"hello","is_interim":false,"is_vad_finished":true}]}`)
	if ev.Type != EventFinalResult {
		t.Fatalf("expected final result, got %s", ev.Type)
	}
	if ev.Text != "hello" {
		t.Errorf("expected text %q, got %q", "hello", ev.Text)
	}
	if !ev.IsFinal {
		t.Error("expected IsFinal to be set")
	}
	if !ev.VADFinished {
		t.Error("expected VADFinished to be set")
	}
}

func TestClassify_NonstreamResultAloneIsFinal(t *testing.T) {
	// The nonstream completion flag is sufficient on its own, even with
	// interim markers still present.
	ev := classifyJSON(t, `{"results":[{"text":"done","is_interim":true,"extra":{"nonstream_result":true}}]}`)
	if ev.Type != EventFinalResult {
		t.Fatalf("expected final result, got %s", ev.Type)
	}
	if ev.Text != "done" {
		t.Errorf("expected text %q, got %q", "done", ev.Text)
	}
}

func TestClassify_NonInterimWithoutVADFinishedIsInterim(t *testing.T) {
	// Both halves of the conjunction are required.
	ev := classifyJSON(t, `{"results":[{"text":"hm","is_interim":false}]}`)
	if ev.Type != EventInterimResult {
		t.Fatalf("expected interim result, got %s", ev.Type)
	}
}

func TestClassify_LastTextWins(t *testing.T) {
	ev := classifyJSON(t, `{"results":[{"text":"he"},{"text":"hello"}]}`)
	if ev.Type != EventInterimResult {
		t.Fatalf("expected interim result, got %s", ev.Type)
	}
	if ev.Text != "hello" {
		t.Errorf("expected last text to win, got %q", ev.Text)
	}
	if ev.IsFinal {
		t.Error("expected interim result to not be final")
	}
}

func TestClassify_Heartbeat(t *testing.T) {
	ev := classifyJSON(t, `{"extra":{"packet_number":17}}`)
	if ev.Type != EventHeartbeat {
		t.Fatalf("expected heartbeat, got %s", ev.Type)
	}
	if ev.PacketNumber != 17 {
		t.Errorf("expected packet number 17, got %d", ev.PacketNumber)
	}
}

func TestClassify_HeartbeatWithoutPacketNumber(t *testing.T) {
	ev := classifyJSON(t, `{"status":"ok"}`)
	if ev.Type != EventHeartbeat {
		t.Fatalf("expected heartbeat, got %s", ev.Type)
	}
	if ev.PacketNumber != -1 {
		t.Errorf("expected packet number -1, got %d", ev.PacketNumber)
	}
}

func TestClassify_VADStart(t *testing.T) {
	ev := classifyJSON(t, `{"results":[],"extra":{"vad_start":true}}`)
	if ev.Type != EventVADStart {
		t.Fatalf("expected vad start, got %s", ev.Type)
	}
	if !ev.VADStart {
		t.Error("expected VADStart to be set")
	}
}

func TestClassify_EmptyResultJSONIsUnknown(t *testing.T) {
	resp := &Response{MessageType: "Result"}
	ev := Classify(resp.Marshal())
	if ev.Type != EventUnknown {
		t.Errorf("expected unknown, got %s", ev.Type)
	}
}

func TestClassify_MalformedInnerDocumentIsUnknown(t *testing.T) {
	ev := classifyJSON(t, `{"results":`)
	if ev.Type != EventUnknown {
		t.Errorf("expected unknown for malformed JSON, got %s", ev.Type)
	}
}

func TestClassify_MalformedEnvelopeIsError(t *testing.T) {
	ev := Classify([]byte{0xff, 0xff, 0xff})
	if ev.Type != EventError {
		t.Fatalf("expected error for malformed envelope, got %s", ev.Type)
	}
	if ev.ErrMsg == "" {
		t.Error("expected a decode error message")
	}
}

func TestEvent_IsTerminal(t *testing.T) {
	if !newEvent(EventError).IsTerminal() {
		t.Error("error events are terminal")
	}
	if !newEvent(EventSessionFinished).IsTerminal() {
		t.Error("session finished events are terminal")
	}
	if newEvent(EventFinalResult).IsTerminal() {
		t.Error("final results are not terminal")
	}
	if newEvent(EventHeartbeat).IsTerminal() {
		t.Error("heartbeats are not terminal")
	}
}
