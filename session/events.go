// Package session owns one optimization job's streaming lifecycle: it decodes
// the executor's WebSocket events and reduces them, strictly in receipt
// order, into a typed session state with cancellation support.
package session

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates the server's streaming messages.
type EventType string

const (
	EventStatus   EventType = "status"
	EventProgress EventType = "progress"
	EventLog      EventType = "log"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one server-to-client message. Which fields are populated depends
// on Type; the union is closed, unknown types are rejected at parse time.
type Event struct {
	Type EventType `json:"type"`

	// status and progress
	Phase    string  `json:"phase,omitempty"`
	Progress float64 `json:"progress,omitempty"`
	Message  string  `json:"message,omitempty"`

	// log
	Level     string `json:"level,omitempty"`
	Logger    string `json:"logger,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	// complete
	Success         bool   `json:"success,omitempty"`
	OriginalPrompt  string `json:"originalPrompt,omitempty"`
	OptimizedPrompt string `json:"optimizedPrompt,omitempty"`
}

// ParseEvent decodes one wire message and validates its discriminator.
func ParseEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("malformed stream event: %w", err)
	}
	switch ev.Type {
	case EventStatus, EventProgress, EventLog, EventComplete, EventError:
		return ev, nil
	}
	return Event{}, fmt.Errorf("unknown stream event type %q", ev.Type)
}
