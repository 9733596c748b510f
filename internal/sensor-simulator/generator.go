package sensor_simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/firesense-dev/firesense/internal/model"
)

// ====== Tunables ======
const (
	// defaultAmbientC: ambient temperature seed when Open-Meteo is unreachable.
	defaultAmbientC = 22.0

	// emberGrowthC: °C the ember core gains per generated frame while burning.
	emberGrowthC = 1.5

	// emberDecayC: °C the ember core loses per frame while suppressed.
	emberDecayC = 4.0

	// emberMaxC: ember core ceiling above ambient.
	emberMaxC = 240.0

	// gasBaselineADC: MQ-135 clean-air ADC midpoint for a 12-bit converter.
	gasBaselineADC = 600.0

	// openMeteoURL: fetched once at startup; NOT called per tick.
	openMeteoURL = "https://api.open-meteo.com/v1/forecast?latitude=%f&longitude=%f&current=temperature_2m"
)

// GeneratorConfig shapes one synthetic site.
type GeneratorConfig struct {
	Rows int
	Cols int
	// Seed makes the stream reproducible; 0 means time-based.
	Seed int64
}

// Generator keeps the synthetic state of one site: a thermal grid doing an
// ambient random walk, an optional growing ember, and slowly drifting gas,
// smoke and flame channels. All methods are safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	rows     int
	cols     int
	seeded   bool
	ambientC float64
	cells    [][]float64

	ember struct {
		active    bool
		row, col  int
		intensity float64 // °C above ambient at the core
	}

	gasADC     float64
	smokePct   float64
	flamePct   float64
	httpClient *http.Client
}

// NewGenerator creates a generator for the given grid shape.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.Rows <= 0 {
		cfg.Rows = 24
	}
	if cfg.Cols <= 0 {
		cfg.Cols = 32
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:        rand.New(rand.NewSource(seed)),
		rows:       cfg.Rows,
		cols:       cfg.Cols,
		gasADC:     gasBaselineADC,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

// SeedFromOpenMeteo --> single fetch at startup to anchor the ambient
// temperature to the site's real weather. Falls back to a default on failure.
func (g *Generator) SeedFromOpenMeteo(ctx context.Context, lat, lon float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.seeded {
		return
	}

	ambient := defaultAmbientC
	if lat != 0 || lon != 0 {
		if t, err := g.fetchAmbient(ctx, lat, lon); err == nil && t > -60 && t < 60 {
			ambient = t
		}
	}
	g.seedLocked(ambient)
}

// Ignite lights an ember at a random grid cell. No-op if one is already
// burning.
func (g *Generator) Ignite() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureSeededLocked()
	if g.ember.active {
		return
	}
	g.ember.active = true
	g.ember.row = g.rng.Intn(g.rows)
	g.ember.col = g.rng.Intn(g.cols)
	g.ember.intensity = 10
}

// Suppress puts the ember out; intensity bleeds off over the next frames.
func (g *Generator) Suppress() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ember.active = false
}

// Burning reports whether an ember is currently growing.
func (g *Generator) Burning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ember.active
}

// NextFrame advances the thermal state one step and returns the grid.
func (g *Generator) NextFrame(siteID, streamID string) model.ThermalFrame {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureSeededLocked()

	// ambient random walk, cell by cell
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			g.cells[r][c] += (g.rng.Float64() - 0.5) * 0.4
			// pull drifting cells back toward ambient
			g.cells[r][c] += (g.ambientC - g.cells[r][c]) * 0.05
		}
	}

	g.stepEmberLocked()

	out := make([][]float64, g.rows)
	for r := range out {
		out[r] = make([]float64, g.cols)
		copy(out[r], g.cells[r])
	}
	if g.ember.intensity > 0 {
		g.paintEmberLocked(out)
	}
	return model.ThermalFrame{
		SiteID:    siteID,
		StreamID:  streamID,
		Rows:      g.rows,
		Cols:      g.cols,
		Cells:     out,
		Timestamp: time.Now().UTC(),
	}
}

// NextEnv advances the environment channels and returns a reading. Gas is
// reported as raw ADC so the consumer side exercises its ppm conversion.
func (g *Generator) NextEnv(siteID string) model.SensorReading {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureSeededLocked()

	// baseline drift plus ember contribution
	g.gasADC += (g.rng.Float64() - 0.5) * 8
	g.gasADC = clamp(g.gasADC, 200, 3800)
	adc := g.gasADC + g.ember.intensity*6

	target := g.ember.intensity / emberMaxC * 100
	g.smokePct += (target - g.smokePct) * 0.2
	g.smokePct = clamp(g.smokePct+(g.rng.Float64()-0.5)*1.5, 0, 100)

	g.flamePct = clamp(target*0.8+(g.rng.Float64()-0.5)*2, 0, 100)
	digital := 0
	if g.flamePct > 50 {
		digital = 1
	}

	gasADC := adc
	smoke := g.smokePct
	flame := g.flamePct
	return model.SensorReading{
		SiteID:         siteID,
		GasADC:         &gasADC,
		SmokePct:       &smoke,
		FlameAnalogPct: &flame,
		FlameDigital:   &digital,
		Raw:            map[string]float64{"adc1_raw": adc, "vbat": 3.7 + (g.rng.Float64()-0.5)*0.1},
		Timestamp:      time.Now().UTC(),
	}
}

// NextVision returns an inference score correlated with the ember intensity.
func (g *Generator) NextVision(siteID, cameraID string) model.VisionScore {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureSeededLocked()

	score := clamp(g.ember.intensity/100+g.rng.Float64()*0.08, 0, 1)
	return model.VisionScore{
		SiteID:    siteID,
		CameraID:  cameraID,
		Score:     score,
		Model:     "synthetic-v1",
		Timestamp: time.Now().UTC(),
	}
}

// ===== Internal state transitions (mu held) =====

func (g *Generator) ensureSeededLocked() {
	if !g.seeded {
		g.seedLocked(defaultAmbientC)
	}
}

func (g *Generator) seedLocked(ambient float64) {
	g.ambientC = ambient
	g.cells = make([][]float64, g.rows)
	for r := range g.cells {
		g.cells[r] = make([]float64, g.cols)
		for c := range g.cells[r] {
			g.cells[r][c] = ambient + (g.rng.Float64()-0.5)*0.6
		}
	}
	g.seeded = true
}

func (g *Generator) stepEmberLocked() {
	if g.ember.active {
		g.ember.intensity = math.Min(g.ember.intensity+emberGrowthC, emberMaxC)
		return
	}
	g.ember.intensity = math.Max(0, g.ember.intensity-emberDecayC)
}

// paintEmberLocked overlays the hot region on an output grid, decaying with
// distance from the core so neighbouring cells cross thresholds as the ember
// grows. The ambient walk underneath stays untouched.
func (g *Generator) paintEmberLocked(out [][]float64) {
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			dr := float64(r - g.ember.row)
			dc := float64(c - g.ember.col)
			dist2 := dr*dr + dc*dc
			out[r][c] += g.ember.intensity * math.Exp(-dist2/6.0)
		}
	}
}

// ===== Helpers =====

func (g *Generator) fetchAmbient(ctx context.Context, lat, lon float64) (float64, error) {
	url := fmt.Sprintf(openMeteoURL, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "firesense-sensor-simulator/1.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("open-meteo HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, err
	}

	var parsed struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
		} `json:"current"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, err
	}
	return parsed.Current.Temperature, nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
