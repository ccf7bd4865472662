package asr

// State is the lifecycle position of a session. Transitions only move
// forward, except that any state may fall to StateError.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateAwaitingTaskStarted
	StateAwaitingSessionStarted
	StateStreaming
	StateFinishing
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAwaitingTaskStarted:
		return "awaiting_task_started"
	case StateAwaitingSessionStarted:
		return "awaiting_session_started"
	case StateStreaming:
		return "streaming"
	case StateFinishing:
		return "finishing"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
