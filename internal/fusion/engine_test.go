package fusion

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

// uniformGrid builds a rows x cols grid filled with v.
func uniformGrid(rows, cols int, v float64) [][]float64 {
	g := make([][]float64, rows)
	for r := range g {
		g[r] = make([]float64, cols)
		for c := range g[r] {
			g[r][c] = v
		}
	}
	return g
}

func testConfig() Config {
	return Config{
		TempThreshold:         40,
		CriticalTempThreshold: 60,
		GasPPMThreshold:       400,
		SmokeThresholdPct:     25,
		FlameThresholdPct:     60,
		FlameActiveValue:      1,
		MinSources:            2,
	}
}

func TestFuseEmptyReadingNoAlarm(t *testing.T) {
	e := New(testConfig())
	res := e.Fuse(Reading{})

	assert.False(t, res.Alarm)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Sources)
	assert.Empty(t, res.HotCells)
	assert.Zero(t, res.ThermalMax)
	assert.Empty(t, res.Reason)
}

func TestSmokeAloneAlarms(t *testing.T) {
	e := New(testConfig())
	res := e.Fuse(Reading{SmokePct: f64(30)})

	assert.True(t, res.Alarm)
	assert.Contains(t, res.Sources, "smoke")
	assert.InDelta(t, weightSmoke, res.Confidence, 1e-9)
	assert.Contains(t, res.Reason, "smoke")
}

func TestGasAloneAlarms(t *testing.T) {
	e := New(testConfig())
	res := e.Fuse(Reading{GasPPM: f64(500)})

	assert.True(t, res.Alarm)
	assert.Contains(t, res.Sources, "gas")
	assert.Contains(t, res.Reason, "gas")
}

func TestFlameAloneNeverAlarms(t *testing.T) {
	e := New(testConfig())

	res := e.Fuse(Reading{FlameDigital: i(1)})
	assert.False(t, res.Alarm)
	assert.Contains(t, res.Sources, "flame")
	assert.InDelta(t, weightFlame, res.Confidence, 1e-9)

	res = e.Fuse(Reading{FlameAnalogPct: f64(80)})
	assert.False(t, res.Alarm)
	assert.Contains(t, res.Sources, "flame")
}

func TestVisionAloneNeverAlarms(t *testing.T) {
	e := New(testConfig())
	res := e.Fuse(Reading{VisionScore: f64(0.95)})

	assert.False(t, res.Alarm)
	assert.Contains(t, res.Sources, "vision")
	assert.InDelta(t, weightVision, res.Confidence, 1e-9)
}

func TestVisionBelowCutoffIgnored(t *testing.T) {
	e := New(testConfig())
	res := e.Fuse(Reading{VisionScore: f64(0.5), SmokePct: f64(30)})

	assert.True(t, res.Alarm)
	assert.NotContains(t, res.Sources, "vision")
}

func TestFlameThermalCorrelationAlarms(t *testing.T) {
	e := New(testConfig())
	res := e.Fuse(Reading{
		Thermal:      uniformGrid(24, 32, 50),
		FlameDigital: i(1),
	})

	require.True(t, res.Alarm)
	assert.Contains(t, res.Reason, "flame")
	assert.Contains(t, res.Reason, "50.0")
	assert.Equal(t, []string{"thermal", "flame"}, res.Sources)
	// thermal + flame + correlation bonus
	assert.InDelta(t, weightThermal+weightFlame+weightFlameThermal, res.Confidence, 1e-9)
}

func TestVisionCorroboratedByThermalAlarms(t *testing.T) {
	e := New(testConfig())
	res := e.Fuse(Reading{
		Thermal:     uniformGrid(4, 4, 45),
		VisionScore: f64(0.8),
	})

	require.True(t, res.Alarm)
	assert.Contains(t, res.Reason, "vision")
	assert.Equal(t, []string{"thermal", "vision"}, res.Sources)
}

func TestCriticalOverrideDominates(t *testing.T) {
	e := New(testConfig())
	res := e.Fuse(Reading{
		Thermal:  uniformGrid(24, 32, 70),
		SmokePct: f64(90),
		GasPPM:   f64(900),
	})

	require.True(t, res.Alarm)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Contains(t, res.Reason, "critical")
	// sources collected before the override stay
	assert.Equal(t, []string{"thermal", "smoke", "gas"}, res.Sources)
}

func TestHotCellsExactRowMajorOrder(t *testing.T) {
	grid := uniformGrid(8, 8, 20)
	grid[2][3] = 41
	grid[5][5] = 55

	e := New(testConfig())
	res := e.Fuse(Reading{Thermal: grid})

	assert.Equal(t, []Cell{{Row: 2, Col: 3}, {Row: 5, Col: 5}}, res.HotCells)
	assert.Equal(t, 55.0, res.ThermalMax)
}

func TestHotCellThresholdInclusive(t *testing.T) {
	grid := uniformGrid(2, 2, 10)
	grid[1][1] = 40 // exactly at threshold

	e := New(testConfig())
	res := e.Fuse(Reading{Thermal: grid})

	assert.Equal(t, []Cell{{Row: 1, Col: 1}}, res.HotCells)
	assert.Contains(t, res.Sources, "thermal")
}

func TestConfidenceAccumulatesUnbounded(t *testing.T) {
	e := New(testConfig())
	res := e.Fuse(Reading{
		Thermal:      uniformGrid(4, 4, 50), // below critical
		SmokePct:     f64(40),
		FlameDigital: i(1),
		VisionScore:  f64(0.9),
		GasPPM:       f64(800),
	})

	require.True(t, res.Alarm)
	want := weightThermal + weightSmoke + weightFlame + weightFlameThermal + weightVision + weightGas
	assert.InDelta(t, want, res.Confidence, 1e-9)
	assert.Greater(t, res.Confidence, 1.0)
}

func TestRawPassthroughNeverDecides(t *testing.T) {
	e := New(testConfig())
	raw := map[string]float64{"adc1_raw": 3999, "vbat": 3.7}
	res := e.Fuse(Reading{Raw: raw})

	assert.False(t, res.Alarm)
	assert.Equal(t, raw, res.Raw)
}

func TestEventLogAppendsEveryCall(t *testing.T) {
	e := New(testConfig())
	e.Fuse(Reading{})
	e.Fuse(Reading{SmokePct: f64(90)})
	e.Fuse(Reading{})

	entries := e.Events()
	require.Len(t, entries, 3)
	assert.False(t, entries[0].Alarm)
	assert.True(t, entries[1].Alarm)
	assert.Equal(t, 3, e.EventCount())
}

func TestSetConfigTakesEffect(t *testing.T) {
	e := New(testConfig())
	res := e.Fuse(Reading{SmokePct: f64(30)})
	require.True(t, res.Alarm)

	cfg := testConfig()
	cfg.SmokeThresholdPct = 50
	e.SetConfig(cfg)

	res = e.Fuse(Reading{SmokePct: f64(30)})
	assert.False(t, res.Alarm)
}

func TestNewNormalizesCriticalThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.TempThreshold = 80
	cfg.CriticalTempThreshold = 50 // below basic: raised
	e := New(cfg)

	assert.Equal(t, 80.0, e.Config().CriticalTempThreshold)
}

func TestFuseConcurrentCallers(t *testing.T) {
	e := New(testConfig())
	const callers, perCaller = 8, 50

	var wg sync.WaitGroup
	for c := 0; c < callers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < perCaller; n++ {
				e.Fuse(Reading{SmokePct: f64(30)})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, callers*perCaller, e.EventCount())
}
