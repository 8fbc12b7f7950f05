package session

import (
	"github.com/google/uuid"
)

// Status is the lifecycle state of one optimization session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusConnecting Status = "connecting"
	StatusStreaming  Status = "streaming"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition can occur. A new submission
// always starts a brand-new session; terminal states are absorbing.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether a session in this status blocks starting another
// submission.
func (s Status) Active() bool {
	switch s {
	case StatusSubmitting, StatusConnecting, StatusStreaming:
		return true
	}
	return false
}

// FailureCause distinguishes why a session reached StatusFailed.
type FailureCause int

const (
	// CauseNone means the session has not failed.
	CauseNone FailureCause = iota

	// CauseServer means the executor reported an error event.
	CauseServer

	// CauseTransport means the connection dropped or errored without a
	// terminal event.
	CauseTransport
)

// LogEntry is one streamed log line. Entries are append-only and keep receipt
// order; timestamps are informational and never used to re-sort.
type LogEntry struct {
	ID        string `json:"id"`
	Level     string `json:"level"`
	Source    string `json:"source"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Result is the successful outcome of an optimization job.
type Result struct {
	OriginalPrompt  string `json:"originalPrompt"`
	OptimizedPrompt string `json:"optimizedPrompt"`
}

// Session is the reduced state of one optimization job. It is a value type:
// Reduce returns updated copies, and Logs is treated as immutable once
// exposed.
type Session struct {
	JobID    string
	Status   Status
	Phase    string
	Progress float64
	Message  string
	Logs     []LogEntry
	Result   *Result
	Error    string
	Cause    FailureCause
}

// NewSession returns the starting state for one submission attempt.
func NewSession(jobID string) Session {
	return Session{
		JobID:  jobID,
		Status: StatusConnecting,
	}
}

// transportFailureMessage is the generic fallback when the connection dies
// without a server-reported error.
const transportFailureMessage = "connection to the optimization service was lost"

// Reduce applies one event to the session and returns the next state. It is
// pure: the input session is not mutated, and events arriving after a
// terminal state are discarded unchanged.
func Reduce(s Session, ev Event) Session {
	if s.Status.Terminal() {
		return s
	}

	// The first server event of any kind marks the stream as live.
	if s.Status == StatusConnecting {
		s.Status = StatusStreaming
	}

	switch ev.Type {
	case EventStatus:
		s.Phase = ev.Phase
		s.Message = ev.Message

	case EventProgress:
		s.Phase = ev.Phase
		s.Message = ev.Message
		s.Progress = clampProgress(ev.Progress)

	case EventLog:
		entry := LogEntry{
			ID:        uuid.NewString(),
			Level:     ev.Level,
			Source:    ev.Logger,
			Message:   ev.Message,
			Timestamp: ev.Timestamp,
		}
		logs := make([]LogEntry, len(s.Logs), len(s.Logs)+1)
		copy(logs, s.Logs)
		s.Logs = append(logs, entry)

	case EventComplete:
		s.Status = StatusCompleted
		s.Message = ev.Message
		s.Result = &Result{
			OriginalPrompt:  ev.OriginalPrompt,
			OptimizedPrompt: ev.OptimizedPrompt,
		}

	case EventError:
		s.Status = StatusFailed
		s.Cause = CauseServer
		s.Error = ev.Message
		if s.Error == "" {
			s.Error = "the optimization service reported an error"
		}
	}

	return s
}

// failTransport marks the session failed due to a dropped or errored
// connection, as opposed to a server-reported error event.
func failTransport(s Session) Session {
	if s.Status.Terminal() {
		return s
	}
	s.Status = StatusFailed
	s.Cause = CauseTransport
	s.Error = transportFailureMessage
	return s
}

// cancel marks the session cancelled. Cancellation is a distinct terminal
// status, never an error.
func cancel(s Session) Session {
	if s.Status.Terminal() {
		return s
	}
	s.Status = StatusCancelled
	return s
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
