package client

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTraceCapacity bounds the number of requests a TraceLog keeps.
const DefaultTraceCapacity = 200

// TraceEntry describes one outbound request.
type TraceEntry struct {
	ID        uuid.UUID
	Method    string
	URL       string
	Data      any
	Params    map[string][]string
	Timestamp time.Time

	// Filled in once the response (or failure) is known.
	Status   int
	Duration time.Duration
	Err      string
}

// TraceLog keeps the most recent requests, oldest first.
type TraceLog struct {
	mu       sync.Mutex
	capacity int
	entries  []TraceEntry
}

func NewTraceLog(capacity int) *TraceLog {
	if capacity <= 0 {
		capacity = DefaultTraceCapacity
	}
	return &TraceLog{capacity: capacity}
}

func (l *TraceLog) add(e TraceEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.capacity; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

func (l *TraceLog) complete(id uuid.UUID, status int, d time.Duration, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].ID != id {
			continue
		}
		l.entries[i].Status = status
		l.entries[i].Duration = d
		if err != nil {
			l.entries[i].Err = err.Error()
		}
		return
	}
}

// Entries returns a copy of the log, oldest first.
func (l *TraceLog) Entries() []TraceEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]TraceEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *TraceLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
