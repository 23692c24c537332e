package logger

import (
	"fmt"
	"strings"
	"sync"
)

// TestLogEntry is a single captured log call.
type TestLogEntry struct {
	Severity string
	Message  string
}

// TestLogger captures log calls in memory for assertions in tests.
// Derived loggers created via With/WithPrefix share the same backing slice.
type TestLogger struct {
	mu       *sync.Mutex
	entries  *[]TestLogEntry
	metadata map[string]interface{}
	prefixes []string
}

var _ Logger = (*TestLogger)(nil)

// NewTestLogger returns a TestLogger which records every call at every level.
func NewTestLogger() *TestLogger {
	var entries []TestLogEntry
	return &TestLogger{
		mu:       &sync.Mutex{},
		entries:  &entries,
		metadata: make(map[string]interface{}),
	}
}

// Entries returns a copy of the captured entries.
func (c *TestLogger) Entries() []TestLogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TestLogEntry, len(*c.entries))
	copy(out, *c.entries)
	return out
}

// Contains reports whether any captured message contains substr.
func (c *TestLogger) Contains(substr string) bool {
	for _, e := range c.Entries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func (c *TestLogger) With(metadata map[string]interface{}) Logger {
	kv := make(map[string]interface{})
	for k, v := range c.metadata {
		kv[k] = v
	}
	for k, v := range metadata {
		kv[k] = v
	}
	return &TestLogger{mu: c.mu, entries: c.entries, metadata: kv, prefixes: c.prefixes}
}

func (c *TestLogger) WithPrefix(prefix string) Logger {
	prefixes := make([]string, len(c.prefixes))
	copy(prefixes, c.prefixes)
	prefixes = append(prefixes, prefix)
	return &TestLogger{mu: c.mu, entries: c.entries, metadata: c.metadata, prefixes: prefixes}
}

func (c *TestLogger) IsLevelEnabled(level LogLevel) bool {
	return true
}

func (c *TestLogger) log(severity string, msg string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.entries = append(*c.entries, TestLogEntry{severity, fmt.Sprintf(msg, args...)})
}

func (c *TestLogger) Trace(msg string, args ...interface{}) {
	c.log("TRACE", msg, args...)
}

func (c *TestLogger) Debug(msg string, args ...interface{}) {
	c.log("DEBUG", msg, args...)
}

func (c *TestLogger) Info(msg string, args ...interface{}) {
	c.log("INFO", msg, args...)
}

func (c *TestLogger) Warn(msg string, args ...interface{}) {
	c.log("WARN", msg, args...)
}

func (c *TestLogger) Error(msg string, args ...interface{}) {
	c.log("ERROR", msg, args...)
}

// Fatal records the message but does not exit, so tests can assert on it.
func (c *TestLogger) Fatal(msg string, args ...interface{}) {
	c.log("FATAL", msg, args...)
}
