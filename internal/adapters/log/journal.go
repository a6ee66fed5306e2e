package log

import (
	"sync"
	"time"

	"github.com/bft-labs/stamper/internal/domain"
	"github.com/bft-labs/stamper/internal/ports"
)

// Journal records every message of a run in order and forwards it to
// another logger.
type Journal struct {
	mu      sync.Mutex
	next    ports.Logger
	now     func() time.Time
	entries []domain.Entry
}

// NewJournal creates a journal forwarding to next. A nil next discards.
func NewJournal(next ports.Logger) *Journal {
	if next == nil {
		next = discard{}
	}
	return &Journal{next: next, now: time.Now}
}

// Debug records and forwards a debug-level message.
func (j *Journal) Debug(msg string, fields ...ports.Field) {
	j.record(domain.LevelDebug, msg, fields)
	j.next.Debug(msg, fields...)
}

// Info records and forwards an info-level message.
func (j *Journal) Info(msg string, fields ...ports.Field) {
	j.record(domain.LevelInfo, msg, fields)
	j.next.Info(msg, fields...)
}

// Warn records and forwards a warning-level message.
func (j *Journal) Warn(msg string, fields ...ports.Field) {
	j.record(domain.LevelWarn, msg, fields)
	j.next.Warn(msg, fields...)
}

// Error records and forwards an error-level message.
func (j *Journal) Error(msg string, fields ...ports.Field) {
	j.record(domain.LevelError, msg, fields)
	j.next.Error(msg, fields...)
}

// Entries returns a copy of the recorded entries.
func (j *Journal) Entries() []domain.Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]domain.Entry(nil), j.entries...)
}

// Reset drops all recorded entries.
func (j *Journal) Reset() {
	j.mu.Lock()
	j.entries = nil
	j.mu.Unlock()
}

func (j *Journal) record(level domain.Level, msg string, fields []ports.Field) {
	var m map[string]any
	if len(fields) > 0 {
		m = make(map[string]any, len(fields))
		for _, f := range fields {
			m[f.Key] = f.Value
		}
	}

	j.mu.Lock()
	j.entries = append(j.entries, domain.Entry{
		Time:    j.now(),
		Level:   level,
		Message: msg,
		Fields:  m,
	})
	j.mu.Unlock()
}

// discard drops every message; a journal without a sink still records.
type discard struct{}

func (discard) Debug(string, ...ports.Field) {}
func (discard) Info(string, ...ports.Field)  {}
func (discard) Warn(string, ...ports.Field)  {}
func (discard) Error(string, ...ports.Field) {}
