package utils

import "sync"

// CapturedEntry is one log call recorded by MockLogger.
type CapturedEntry struct {
	Level   LogLevel
	Message string
	Fields  []any
}

// MockLogger records log calls for assertions in tests. Safe for concurrent use
// because the session stream logs from its reader goroutine.
type MockLogger struct {
	mu      sync.Mutex
	entries []CapturedEntry
	level   LogLevel
}

func NewMockLogger() *MockLogger {
	return &MockLogger{level: LogLevelDebug}
}

func (m *MockLogger) record(level LogLevel, msg string, keysAndValues []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, CapturedEntry{Level: level, Message: msg, Fields: keysAndValues})
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) {
	m.record(LogLevelDebug, msg, keysAndValues)
}

func (m *MockLogger) Info(msg string, keysAndValues ...any) {
	m.record(LogLevelInfo, msg, keysAndValues)
}

func (m *MockLogger) Warn(msg string, keysAndValues ...any) {
	m.record(LogLevelWarn, msg, keysAndValues)
}

func (m *MockLogger) Error(msg string, keysAndValues ...any) {
	m.record(LogLevelError, msg, keysAndValues)
}

func (m *MockLogger) SetLevel(level LogLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

// Entries returns a copy of everything logged so far.
func (m *MockLogger) Entries() []CapturedEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CapturedEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
