package fusion

import (
	"sync"
	"time"
)

// EventLogEntry records one fusion decision for audit/debugging.
type EventLogEntry struct {
	At           time.Time `json:"at"`
	Alarm        bool      `json:"alarm"`
	Confidence   float64   `json:"confidence"`
	Sources      []string  `json:"sources"`
	HotCellCount int       `json:"hot_cell_count"`
	Reason       string    `json:"reason,omitempty"`
}

// EventLog is the engine's append-only in-memory decision record. Entries are
// never mutated or deleted; retention is the deployer's concern (the
// persistence service mirrors decisions durably).
type EventLog struct {
	mu      sync.Mutex
	entries []EventLogEntry
}

func newEventLog() *EventLog { return &EventLog{} }

func (l *EventLog) append(e EventLogEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

// Snapshot returns a copy of the log for export tooling.
func (l *EventLog) Snapshot() []EventLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
