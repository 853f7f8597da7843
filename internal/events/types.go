package events

import (
	"time"
)

// Event type constants
const (
	TypeProgress  = "progress"
	TypeCompleted = "completed"
	TypeFailed    = "failed"
)

// Event is a single notification published by an agent during a run.
// Events are immutable once published and retained in the bus history.
type Event struct {
	Sender    string         `json:"sender"`
	Type      string         `json:"eventType"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// Progress builds a progress event for the given sender.
func Progress(sender string, percent int, label string) Event {
	return Event{
		Sender:    sender,
		Type:      TypeProgress,
		Payload:   map[string]any{"progress": percent, "task": label},
		Timestamp: time.Now().UTC(),
	}
}

// Completed builds a completion event carrying the agent's full payload.
func Completed(sender string, payload map[string]any) Event {
	return Event{
		Sender:    sender,
		Type:      TypeCompleted,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Failed builds a failure event carrying the terminal error detail.
func Failed(sender string, errDetail string) Event {
	return Event{
		Sender:    sender,
		Type:      TypeFailed,
		Payload:   map[string]any{"status": "failed", "error": errDetail},
		Timestamp: time.Now().UTC(),
	}
}
