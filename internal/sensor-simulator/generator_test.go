package sensor_simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededGenerator() *Generator {
	return NewGenerator(GeneratorConfig{Rows: 24, Cols: 32, Seed: 42})
}

func TestFrameShapeAndAmbientRange(t *testing.T) {
	g := newSeededGenerator()
	f := g.NextFrame("site-a", "cam-1")

	assert.Equal(t, "site-a", f.SiteID)
	assert.Equal(t, "cam-1", f.StreamID)
	require.Len(t, f.Cells, 24)
	for _, row := range f.Cells {
		require.Len(t, row, 32)
		for _, v := range row {
			assert.InDelta(t, defaultAmbientC, v, 3.0)
		}
	}
}

func TestDeterministicSeedReproducesFrames(t *testing.T) {
	a := NewGenerator(GeneratorConfig{Seed: 7})
	b := NewGenerator(GeneratorConfig{Seed: 7})

	fa := a.NextFrame("site-a", "cam-1")
	fb := b.NextFrame("site-a", "cam-1")
	assert.Equal(t, fa.Cells, fb.Cells)
}

func TestEmberGrowsWhileBurning(t *testing.T) {
	g := newSeededGenerator()
	g.Ignite()
	require.True(t, g.Burning())

	var prevMax float64
	for i := 0; i < 20; i++ {
		f := g.NextFrame("site-a", "cam-1")
		max := frameMax(f.Cells)
		assert.GreaterOrEqual(t, max+0.5, prevMax) // monotone up to walk noise
		prevMax = max
	}
	assert.Greater(t, prevMax, 45.0) // hot cell threshold territory
}

func TestSuppressCoolsTheGrid(t *testing.T) {
	g := newSeededGenerator()
	g.Ignite()
	for i := 0; i < 30; i++ {
		g.NextFrame("site-a", "cam-1")
	}
	g.Suppress()
	require.False(t, g.Burning())

	for i := 0; i < 60; i++ {
		g.NextFrame("site-a", "cam-1")
	}
	f := g.NextFrame("site-a", "cam-1")
	assert.Less(t, frameMax(f.Cells), 35.0)
}

func TestEnvReadingCarriesRawADC(t *testing.T) {
	g := newSeededGenerator()
	r := g.NextEnv("site-a")

	require.NotNil(t, r.GasADC)
	assert.InDelta(t, gasBaselineADC, *r.GasADC, 50)
	require.NotNil(t, r.SmokePct)
	assert.GreaterOrEqual(t, *r.SmokePct, 0.0)
	assert.Nil(t, r.GasPPM) // conversion is the consumer's job
	assert.Contains(t, r.Raw, "vbat")
}

func TestEnvTracksEmber(t *testing.T) {
	g := newSeededGenerator()
	g.Ignite()
	for i := 0; i < 60; i++ {
		g.NextFrame("site-a", "cam-1")
		g.NextEnv("site-a")
	}
	r := g.NextEnv("site-a")
	assert.Greater(t, *r.GasADC, gasBaselineADC+200)
	assert.Greater(t, *r.SmokePct, 10.0)
}

func TestVisionScoreCorrelatesWithEmber(t *testing.T) {
	g := newSeededGenerator()
	idle := g.NextVision("site-a", "cam-1")
	assert.Less(t, idle.Score, 0.15)

	g.Ignite()
	for i := 0; i < 80; i++ {
		g.NextFrame("site-a", "cam-1")
	}
	burning := g.NextVision("site-a", "cam-1")
	assert.Greater(t, burning.Score, 0.7)
}

func frameMax(cells [][]float64) float64 {
	max := cells[0][0]
	for _, row := range cells {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}
