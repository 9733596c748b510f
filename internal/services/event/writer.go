package event

import (
	"log"
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
)

// Writer wraps the async WriteAPI and tracks the last write error for
// /healthz and /readyz.
type Writer struct {
	api     api.WriteAPI
	mu      sync.RWMutex
	lastErr time.Time
	counts  map[string]int64
}

// NewWriter starts the listener on Influx's async error channel.
func NewWriter(w api.WriteAPI) *Writer {
	ww := &Writer{
		api:     w,
		lastErr: time.Now().Add(-24 * time.Hour), // "long ago" by default
		counts:  make(map[string]int64),
	}
	go func() {
		for err := range w.Errors() {
			if err != nil {
				ww.mu.Lock()
				ww.lastErr = time.Now()
				ww.mu.Unlock()
				log.Printf("influx write error: %v", err)
			}
		}
	}()
	return ww
}

// LastErrorAge returns how long ago the last write error happened.
func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		return 99999 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return time.Since(t)
}

// MarkIngest bumps an internal per-type counter, handy when debugging ingest.
func (w *Writer) MarkIngest(eventType string) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.counts[eventType]++
	w.mu.Unlock()
}

// Count reads the counter for one event type.
func (w *Writer) Count(eventType string) int64 {
	if w == nil {
		return 0
	}
	w.mu.RLock()
	c := w.counts[eventType]
	w.mu.RUnlock()
	return c
}
