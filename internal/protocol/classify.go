package protocol

import (
	"encoding/json"
	"fmt"
)

// EventType classifies one inbound envelope.
type EventType string

const (
	EventTaskStarted     EventType = "task_started"
	EventSessionStarted  EventType = "session_started"
	EventSessionFinished EventType = "session_finished"
	EventVADStart        EventType = "vad_start"
	EventInterimResult   EventType = "interim_result"
	EventFinalResult     EventType = "final_result"
	EventHeartbeat       EventType = "heartbeat"
	EventError           EventType = "error"
	EventUnknown         EventType = "unknown"
)

// Event is one typed recognition event produced from one inbound envelope.
// Events are created here, consumed once by the caller's loop and never
// mutated.
type Event struct {
	Type         EventType
	Text         string
	IsFinal      bool
	VADStart     bool
	VADFinished  bool
	PacketNumber int
	ErrMsg       string
	Raw          json.RawMessage
}

// IsTerminal reports whether this event ends the session for the consumer.
func (e *Event) IsTerminal() bool {
	return e.Type == EventError || e.Type == EventSessionFinished
}

func newEvent(t EventType) *Event {
	return &Event{Type: t, PacketNumber: -1}
}

// resultEntry is one element of the "results" array inside the inner JSON
// document. Pointer fields distinguish absent from explicit false.
type resultEntry struct {
	Text          *string `json:"text"`
	IsInterim     *bool   `json:"is_interim"`
	IsVADFinished *bool   `json:"is_vad_finished"`
	Extra         *struct {
		NonstreamResult *bool `json:"nonstream_result"`
	} `json:"extra"`
}

type documentExtra struct {
	VADStart     bool `json:"vad_start"`
	PacketNumber *int `json:"packet_number"`
}

// Classify decodes one received envelope into exactly one event. Malformed
// input is routine data here: a broken outer envelope yields an Error event,
// a broken inner document yields Unknown. Classify never panics.
func Classify(data []byte) *Event {
	resp, err := UnmarshalResponse(data)
	if err != nil {
		ev := newEvent(EventError)
		ev.ErrMsg = fmt.Sprintf("decode error: %v", err)
		return ev
	}
	return ClassifyResponse(resp)
}

// ClassifyResponse classifies an already-decoded envelope.
func ClassifyResponse(resp *Response) *Event {
	switch resp.MessageType {
	case "TaskStarted":
		return newEvent(EventTaskStarted)
	case "SessionStarted":
		return newEvent(EventSessionStarted)
	case "SessionFinished":
		return newEvent(EventSessionFinished)
	case "TaskFailed", "SessionFailed":
		ev := newEvent(EventError)
		ev.ErrMsg = resp.StatusMessage
		return ev
	}

	if resp.ResultJSON == "" {
		return newEvent(EventUnknown)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(resp.ResultJSON), &doc); err != nil {
		return newEvent(EventUnknown)
	}
	raw := json.RawMessage(resp.ResultJSON)

	var extra documentExtra
	if rawExtra, ok := doc["extra"]; ok {
		// A malformed extra block is treated as empty.
		_ = json.Unmarshal(rawExtra, &extra)
	}

	// No results key at all means a server keepalive.
	rawResults, ok := doc["results"]
	if !ok {
		ev := newEvent(EventHeartbeat)
		if extra.PacketNumber != nil {
			ev.PacketNumber = *extra.PacketNumber
		}
		ev.Raw = raw
		return ev
	}

	if extra.VADStart {
		ev := newEvent(EventVADStart)
		ev.VADStart = true
		ev.Raw = raw
		return ev
	}

	var entries []resultEntry
	// A non-array results value scans as zero entries.
	_ = json.Unmarshal(rawResults, &entries)

	var (
		text            string
		isInterim       = true
		vadFinished     bool
		nonstreamResult bool
	)
	for _, r := range entries {
		// Successive partials replace each other: the last entry with
		// text wins.
		if r.Text != nil {
			text = *r.Text
		}
		if r.IsInterim != nil && !*r.IsInterim {
			isInterim = false
		}
		if r.IsVADFinished != nil && *r.IsVADFinished {
			vadFinished = true
		}
		if r.Extra != nil && r.Extra.NonstreamResult != nil && *r.Extra.NonstreamResult {
			nonstreamResult = true
		}
	}

	// The two disjuncts are both observed server behavior; neither is
	// redundant.
	if nonstreamResult || (!isInterim && vadFinished) {
		ev := newEvent(EventFinalResult)
		ev.Text = text
		ev.IsFinal = true
		ev.VADFinished = vadFinished
		ev.Raw = raw
		return ev
	}

	ev := newEvent(EventInterimResult)
	ev.Text = text
	ev.Raw = raw
	return ev
}
