package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFirstSightProcessed(t *testing.T) {
	d := New(time.Minute, 100)
	assert.True(t, d.ShouldProcess("a"))
	assert.False(t, d.ShouldProcess("a"))
	assert.True(t, d.ShouldProcess("b"))
}

func TestEmptyIDAlwaysProcessed(t *testing.T) {
	d := New(time.Minute, 100)
	assert.True(t, d.ShouldProcess(""))
	assert.True(t, d.ShouldProcess(""))
}

func TestExpiredEntryProcessedAgain(t *testing.T) {
	d := New(10*time.Millisecond, 100)
	assert.True(t, d.ShouldProcess("a"))
	time.Sleep(20 * time.Millisecond)
	assert.True(t, d.ShouldProcess("a"))
}

func TestDefaultsApplied(t *testing.T) {
	d := New(0, 0)
	assert.True(t, d.ShouldProcess("x"))
	assert.False(t, d.ShouldProcess("x"))
}
