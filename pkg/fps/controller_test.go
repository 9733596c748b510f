package fps

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests step time past the cooldown deterministically.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestController(cfg Config) (*Controller, *fakeClock) {
	c := New(cfg)
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	c.now = clk.now
	return c, clk
}

func TestUnknownStreamStartsAtBase(t *testing.T) {
	c, _ := newTestController(Config{BaseFPS: 25})
	assert.Equal(t, 25, c.FPS("cam-1"))
	assert.Equal(t, time.Second/25, c.Interval("cam-1"))
}

func TestHighBacklogCutsMultiplicatively(t *testing.T) {
	c, _ := newTestController(Config{BaseFPS: 25, MinFPS: 5, HighWatermark: 12})
	got := c.Update("cam-1", 20)
	assert.Equal(t, 18, got) // 25 * 0.75 = 18.75 -> 18
}

func TestCutFlooredAtMin(t *testing.T) {
	c, clk := newTestController(Config{BaseFPS: 25, MinFPS: 5, HighWatermark: 12})
	for i := 0; i < 20; i++ {
		c.Update("cam-1", 100)
		clk.advance(2 * time.Second)
	}
	assert.Equal(t, 5, c.FPS("cam-1"))
}

func TestCooldownFreezesAdjustments(t *testing.T) {
	c, clk := newTestController(Config{BaseFPS: 25, MinFPS: 5, HighWatermark: 12, Cooldown: time.Second})

	first := c.Update("cam-1", 50)
	second := c.Update("cam-1", 50) // same instant: under cooldown
	assert.Equal(t, first, second)

	clk.advance(500 * time.Millisecond)
	assert.Equal(t, first, c.Update("cam-1", 50)) // still cooling down

	clk.advance(600 * time.Millisecond)
	assert.Less(t, c.Update("cam-1", 50), first) // cooldown elapsed, cut again
}

func TestAsymmetricRecovery(t *testing.T) {
	c, clk := newTestController(Config{BaseFPS: 25, MinFPS: 5, HighWatermark: 12, LowWatermark: 3, Cooldown: time.Second})

	// one high-backlog step drops ~25%
	require.Equal(t, 18, c.Update("cam-1", 20))

	// recovery adds 1 per cooled-down step; it takes 7 steps back to 25
	steps := 0
	for c.FPS("cam-1") < 25 {
		clk.advance(1100 * time.Millisecond)
		c.Update("cam-1", 0)
		steps++
		require.Less(t, steps, 50, "recovery must terminate")
	}
	assert.Equal(t, 7, steps)
	assert.Equal(t, 25, c.FPS("cam-1"))
}

func TestRecoveryCappedAtBase(t *testing.T) {
	c, clk := newTestController(Config{BaseFPS: 25, MinFPS: 5})
	clk.advance(time.Hour)
	assert.Equal(t, 25, c.Update("cam-1", 0)) // already at base: no climb past it
}

func TestMidBandIsNoop(t *testing.T) {
	c, clk := newTestController(Config{BaseFPS: 25, MinFPS: 5, HighWatermark: 12, LowWatermark: 3})
	require.Equal(t, 18, c.Update("cam-1", 20))

	// depth between the watermarks: no change, and crucially the timestamp
	// is left alone so the next genuine change is not re-cooled.
	clk.advance(2 * time.Second)
	assert.Equal(t, 18, c.Update("cam-1", 7))
	assert.Equal(t, 18, c.Update("cam-1", 8))

	// a genuine change right after the no-ops is not blocked
	assert.Equal(t, 13, c.Update("cam-1", 50))
}

func TestResetRestoresBaseAndClearsCooldown(t *testing.T) {
	c, _ := newTestController(Config{BaseFPS: 25, MinFPS: 5, HighWatermark: 12})
	require.Equal(t, 18, c.Update("cam-1", 50))

	c.Reset("cam-1")
	assert.Equal(t, 25, c.FPS("cam-1"))

	// no stale cooldown: an immediate update may adjust again
	assert.Equal(t, 18, c.Update("cam-1", 50))
}

func TestStreamsAreIndependent(t *testing.T) {
	c, _ := newTestController(Config{BaseFPS: 25, MinFPS: 5, HighWatermark: 12})
	c.Update("cam-1", 50)
	assert.Equal(t, 18, c.FPS("cam-1"))
	assert.Equal(t, 25, c.FPS("cam-2"))
}

func TestConcurrentUpdates(t *testing.T) {
	c, _ := newTestController(Config{BaseFPS: 25, MinFPS: 5, HighWatermark: 12})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		id := string(rune('a' + g))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				c.Update(id, n%20)
				c.Interval(id)
			}
		}()
	}
	wg.Wait()

	for g := 0; g < 8; g++ {
		id := string(rune('a' + g))
		got := c.FPS(id)
		assert.GreaterOrEqual(t, got, 5)
		assert.LessOrEqual(t, got, 25)
	}
}
