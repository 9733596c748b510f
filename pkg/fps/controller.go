// Package fps implements a per-stream feedback controller that maps a
// processing backlog depth to a target sampling rate. It exists purely to
// keep the fusion pipeline's input rate inside a sustainable envelope: a
// deep backlog sheds load with a fast multiplicative cut, recovery is a slow
// additive climb, and a cooldown between adjustments prevents oscillation
// when the backlog hovers near a watermark.
package fps

import (
	"sync"
	"time"
)

const (
	// dropFactor is the multiplicative backoff applied above the high
	// watermark: a 25% cut per adjustment.
	dropFactor = 0.75
	// recoverStep is the additive recovery below the low watermark.
	recoverStep = 1
)

// Config bounds and tunes one controller. Zero fields fall back to defaults.
type Config struct {
	BaseFPS       int           // starting and recovery-target rate (default 25)
	MinFPS        int           // hard floor (default 5, never below 1)
	MaxFPS        int           // hard ceiling (default 30)
	HighWatermark int           // backlog depth that triggers the cut (default 12)
	LowWatermark  int           // backlog depth that allows recovery (default 3)
	Cooldown      time.Duration // minimum gap between adjustments (default 1s)
}

type streamState struct {
	fps        int
	lastChange time.Time // zero until the first actual adjustment
}

// Controller is safe to call from any thread for any stream: the whole
// per-stream map sits behind one lock and no call blocks while holding it.
// Construct one per composition root; there is no package-level instance.
type Controller struct {
	mu      sync.Mutex
	cfg     Config
	streams map[string]*streamState

	now func() time.Time // injected in tests
}

// New builds a controller, normalizing the configuration bounds.
func New(cfg Config) *Controller {
	if cfg.BaseFPS <= 0 {
		cfg.BaseFPS = 25
	}
	if cfg.MinFPS <= 0 {
		cfg.MinFPS = 5
	}
	if cfg.MinFPS < 1 {
		cfg.MinFPS = 1
	}
	if cfg.MaxFPS <= 0 {
		cfg.MaxFPS = 30
	}
	if cfg.MaxFPS < cfg.MinFPS {
		cfg.MaxFPS = cfg.MinFPS
	}
	if cfg.BaseFPS < cfg.MinFPS {
		cfg.BaseFPS = cfg.MinFPS
	}
	if cfg.BaseFPS > cfg.MaxFPS {
		cfg.BaseFPS = cfg.MaxFPS
	}
	if cfg.HighWatermark <= 0 {
		cfg.HighWatermark = 12
	}
	if cfg.LowWatermark < 0 {
		cfg.LowWatermark = 0
	}
	if cfg.LowWatermark == 0 {
		cfg.LowWatermark = 3
	}
	if cfg.LowWatermark >= cfg.HighWatermark {
		cfg.LowWatermark = cfg.HighWatermark - 1
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Second
	}
	return &Controller{
		cfg:     cfg,
		streams: make(map[string]*streamState),
		now:     time.Now,
	}
}

// Update runs one control step for a stream and returns the (possibly
// unchanged) target FPS. A stream id never seen before starts at BaseFPS.
func (c *Controller) Update(streamID string, queueDepth int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.stream(streamID)
	now := c.now()

	// Under cooldown: no-op, and the timestamp stays so a later genuine
	// change is not artificially delayed further.
	if !st.lastChange.IsZero() && now.Sub(st.lastChange) < c.cfg.Cooldown {
		return st.fps
	}

	next := st.fps
	switch {
	case queueDepth >= c.cfg.HighWatermark:
		next = int(float64(st.fps) * dropFactor)
		if next < c.cfg.MinFPS {
			next = c.cfg.MinFPS
		}
	case queueDepth <= c.cfg.LowWatermark && st.fps < c.cfg.BaseFPS:
		next = st.fps + recoverStep
		if next > c.cfg.BaseFPS {
			next = c.cfg.BaseFPS
		}
	}
	if next > c.cfg.MaxFPS {
		next = c.cfg.MaxFPS
	}

	if next != st.fps {
		st.fps = next
		st.lastChange = now
	}
	return st.fps
}

// FPS returns the current rate for a stream (BaseFPS if never updated).
func (c *Controller) FPS(streamID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream(streamID).fps
}

// Interval translates the current FPS into the caller's sampling interval.
func (c *Controller) Interval(streamID string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Second / time.Duration(c.stream(streamID).fps)
}

// Reset restores a stream to BaseFPS and clears the cooldown stamp, so the
// next Update is never blocked by a stale adjustment time.
func (c *Controller) Reset(streamID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.stream(streamID)
	st.fps = c.cfg.BaseFPS
	st.lastChange = time.Time{}
}

// stream looks up or lazily initializes per-stream state. Caller holds mu.
func (c *Controller) stream(id string) *streamState {
	st, ok := c.streams[id]
	if !ok {
		st = &streamState{fps: c.cfg.BaseFPS}
		c.streams[id] = st
	}
	return st
}
