package alarm_controller

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	pb "github.com/firesense-dev/firesense/grpc/gen/go/annunciator"
	"github.com/firesense-dev/firesense/internal/fusion"
	"github.com/firesense-dev/firesense/internal/gas"
	"github.com/firesense-dev/firesense/internal/model"
	"github.com/firesense-dev/firesense/pkg/dedup"
	"github.com/firesense-dev/firesense/pkg/fps"
	"github.com/firesense-dev/firesense/pkg/rabbitmq"
)

// ===================== Config / defaults =====================

const (
	defaultFreshnessSec = 3.0 // env/vision readings older than this don't join a thermal fusion
	defaultFrameQueue   = 64
	defaultSirenSec     = 60
	gasSpecies          = "co2" // the MQ-135 reference curve used for the alarm threshold
)

// ===================== Controller =====================

// Controller consumes the three sensor topic families, runs one fusion
// engine per site and actuates sirens over gRPC when a decision alarms.
type Controller struct {
	consumer  rabbitmq.IConsumer[model.SensorReading]
	publisher rabbitmq.IPublisher
	router    AnnunciatorRouter
	sites     map[string]model.Site
	gasModel  *gas.Model
	metrics   *Metrics

	decisionTopicTmpl string
	sirenDurationSec  int32

	// one engine per site, built from the site thresholds at load time
	engineMu sync.RWMutex
	engines  map[string]*fusion.Engine

	// freshest env/vision data per site, merged into thermal fusions
	freshMu    sync.Mutex
	lastEnv    map[string]timedEnv
	lastVision map[string]timedVision
	freshness  time.Duration

	// thermal frames are queued and drained at the adaptive rate
	frames chan model.ThermalFrame
	rate   *fps.Controller

	// anti double-trigger window per site
	soundingMu    sync.Mutex
	soundingUntil map[string]time.Time

	// discards QoS1 redeliveries by payload hash
	deduper *dedup.Deduper
}

type timedEnv struct {
	reading fusion.Reading
	at      time.Time
}

type timedVision struct {
	score float64
	at    time.Time
}

// ===================== ctor =====================

func NewController(
	c rabbitmq.IConsumer[model.SensorReading],
	p rabbitmq.IPublisher,
	router AnnunciatorRouter,
	sitesPath string,
	decisionTopicTmpl string,
	metrics *Metrics,
) (*Controller, error) {
	if router == nil {
		return nil, errors.New("annunciator router is nil")
	}
	if metrics == nil {
		return nil, errors.New("metrics is nil")
	}

	sites, err := loadSites(sitesPath)
	if err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}

	engines := make(map[string]*fusion.Engine, len(sites))
	for id, s := range sites {
		engines[id] = fusion.New(fusion.Config{
			TempThreshold:         s.Thresholds.TempThreshold,
			CriticalTempThreshold: s.Thresholds.CriticalTempThreshold,
			GasPPMThreshold:       s.Thresholds.GasPPMThreshold,
			SmokeThresholdPct:     s.Thresholds.SmokeThresholdPct,
			FlameThresholdPct:     s.Thresholds.FlameThresholdPct,
			FlameActiveValue:      s.Thresholds.FlameActiveValue,
			MinSources:            s.Thresholds.MinSources,
		})
	}

	freshness := getenvFloat("FUSION_FRESHNESS_SEC", defaultFreshnessSec)
	queueCap := envInt("FRAME_QUEUE_CAP", defaultFrameQueue)
	if queueCap < 1 {
		queueCap = 1
	}
	sirenSec := envInt("SIREN_DURATION_SEC", defaultSirenSec)

	ctrl := &Controller{
		consumer:          c,
		publisher:         p,
		router:            router,
		sites:             sites,
		gasModel:          gas.New(),
		metrics:           metrics,
		decisionTopicTmpl: firstNonEmpty(decisionTopicTmpl, "event/alarmDecision/{site}"),
		sirenDurationSec:  int32(sirenSec),
		engines:           engines,
		lastEnv:           make(map[string]timedEnv),
		lastVision:        make(map[string]timedVision),
		freshness:         time.Duration(freshness * float64(time.Second)),
		frames:            make(chan model.ThermalFrame, queueCap),
		rate:              fps.New(fps.Config{}),
		soundingUntil:     make(map[string]time.Time),
		deduper:           dedup.New(10*time.Minute, 20000),
	}
	c.SetHandler(ctrl.handleMessage)
	return ctrl, nil
}

// Start blocks until ctx is cancelled.
func (c *Controller) Start(ctx context.Context) {
	go c.drainFrames(ctx)
	go c.consumer.ConsumeMessage(ctx)
	<-ctx.Done()
}

// Engine returns the fusion engine of a site, for threshold retuning at runtime.
func (c *Controller) Engine(siteID string) (*fusion.Engine, bool) {
	c.engineMu.RLock()
	defer c.engineMu.RUnlock()
	e, ok := c.engines[siteID]
	return e, ok
}

// ===================== inbound dispatch =====================

func (c *Controller) handleMessage(_ string, msg mqtt.Message) error {
	// dedup before unmarshal: identical QoS1 redeliveries are dropped cheaply
	h := sha256.Sum256(msg.Payload())
	if c.deduper != nil && !c.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		c.metrics.DedupDiscarded.Inc()
		return nil
	}

	topic := msg.Topic()
	switch {
	case strings.HasPrefix(topic, "sensor/thermal/"):
		return c.handleThermal(topic, msg.Payload())
	case strings.HasPrefix(topic, "sensor/env/"):
		return c.handleEnv(topic, msg.Payload())
	case strings.HasPrefix(topic, "vision/score/"):
		return c.handleVision(topic, msg.Payload())
	default:
		log.Printf("controller: ignoring message on unexpected topic %s", topic)
		return nil
	}
}

func (c *Controller) handleThermal(topic string, payload []byte) error {
	var f model.ThermalFrame
	if err := json.Unmarshal(payload, &f); err != nil {
		log.Printf("controller: bad thermal payload: %v", err)
		return nil
	}
	if f.SiteID == "" || f.StreamID == "" {
		f.SiteID, f.StreamID = idsFromTopic(topic)
	}
	if _, ok := c.sites[f.SiteID]; !ok {
		log.Printf("controller: unknown site %s on %s", f.SiteID, topic)
		return nil
	}

	select {
	case c.frames <- f:
		c.metrics.FrameQueue.Set(float64(len(c.frames)))
	default:
		c.metrics.DroppedFrames.Inc()
		log.Printf("controller: frame queue full, dropping frame for %s/%s", f.SiteID, f.StreamID)
	}
	return nil
}

func (c *Controller) handleEnv(topic string, payload []byte) error {
	var s model.SensorReading
	if err := json.Unmarshal(payload, &s); err != nil {
		log.Printf("controller: bad env payload: %v", err)
		return nil
	}
	if s.SiteID == "" {
		s.SiteID, _ = idsFromTopic(topic)
	}
	if _, ok := c.sites[s.SiteID]; !ok {
		log.Printf("controller: unknown site %s on %s", s.SiteID, topic)
		return nil
	}

	r := c.envToReading(s)

	c.freshMu.Lock()
	c.lastEnv[s.SiteID] = timedEnv{reading: r, at: time.Now()}
	c.freshMu.Unlock()

	c.fuse(s.SiteID, r)
	return nil
}

func (c *Controller) handleVision(topic string, payload []byte) error {
	var v model.VisionScore
	if err := json.Unmarshal(payload, &v); err != nil {
		log.Printf("controller: bad vision payload: %v", err)
		return nil
	}
	if v.SiteID == "" {
		v.SiteID, _ = idsFromTopic(topic)
	}
	if _, ok := c.sites[v.SiteID]; !ok {
		log.Printf("controller: unknown site %s on %s", v.SiteID, topic)
		return nil
	}

	// vision never alarms alone, so a score only waits here for the next
	// thermal or env fusion of the same site
	c.freshMu.Lock()
	c.lastVision[v.SiteID] = timedVision{score: v.Score, at: time.Now()}
	c.freshMu.Unlock()
	return nil
}

// envToReading converts one env packet into fusion inputs. A gas ADC value is
// run through the MQ-135 model; conversion failures log and omit the channel.
func (c *Controller) envToReading(s model.SensorReading) fusion.Reading {
	r := fusion.Reading{
		SmokePct:       s.SmokePct,
		FlameAnalogPct: s.FlameAnalogPct,
		FlameDigital:   s.FlameDigital,
		Raw:            s.Raw,
	}
	switch {
	case s.GasPPM != nil:
		r.GasPPM = s.GasPPM
	case s.GasADC != nil:
		ppm, err := c.gasModel.PPM(*s.GasADC, gasSpecies)
		if err != nil {
			log.Printf("controller: gas conversion for %s: %v", s.SiteID, err)
		} else {
			r.GasPPM = &ppm
		}
	}
	return r
}

// ===================== thermal drain loop =====================

// drainFrames feeds queued thermal frames to fusion, retiming itself with the
// adaptive controller so a burst of frames degrades rate instead of latency.
func (c *Controller) drainFrames(ctx context.Context) {
	for {
		var f model.ThermalFrame
		select {
		case <-ctx.Done():
			return
		case f = <-c.frames:
		}

		depth := len(c.frames)
		c.metrics.FrameQueue.Set(float64(depth))
		c.rate.Update(f.StreamID, depth)

		c.fuse(f.SiteID, c.thermalReading(f))

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.rate.Interval(f.StreamID)):
		}
	}
}

// thermalReading merges the frame with fresh env/vision data of the same site.
func (c *Controller) thermalReading(f model.ThermalFrame) fusion.Reading {
	r := fusion.Reading{Thermal: f.Cells}

	c.freshMu.Lock()
	if e, ok := c.lastEnv[f.SiteID]; ok && time.Since(e.at) <= c.freshness {
		r.GasPPM = e.reading.GasPPM
		r.SmokePct = e.reading.SmokePct
		r.FlameAnalogPct = e.reading.FlameAnalogPct
		r.FlameDigital = e.reading.FlameDigital
		r.Raw = e.reading.Raw
	}
	if v, ok := c.lastVision[f.SiteID]; ok && time.Since(v.at) <= c.freshness {
		score := v.score
		r.VisionScore = &score
	}
	c.freshMu.Unlock()
	return r
}

// ===================== decision path =====================

func (c *Controller) fuse(siteID string, r fusion.Reading) {
	eng, ok := c.Engine(siteID)
	if !ok {
		return
	}

	res := eng.Fuse(r)
	c.metrics.FusionCalls.Inc()
	c.metrics.Confidence.WithLabelValues(siteID).Set(res.Confidence)

	if !res.Alarm {
		return
	}
	c.metrics.Alarms.WithLabelValues(siteID, reasonClass(res.Reason)).Inc()
	log.Printf("alarm: site=%s reason=%q confidence=%.2f sources=%v hotCells=%d",
		siteID, res.Reason, res.Confidence, res.Sources, len(res.HotCells))

	decisionID := uuid.New().String()
	c.triggerSiren(siteID, decisionID, res)

	if err := c.publishDecision(siteID, decisionID, res); err != nil {
		log.Printf("controller: publish decision error: %v", err)
	}
}

// triggerSiren actuates the site's first siren unless a sounding window is
// already open for the site.
func (c *Controller) triggerSiren(siteID, decisionID string, res fusion.Result) {
	site := c.sites[siteID]
	if len(site.Annunciators) == 0 {
		return
	}
	sirenID := site.Annunciators[0].ID

	now := time.Now()
	c.soundingMu.Lock()
	if until, have := c.soundingUntil[siteID]; have && now.Before(until) {
		c.soundingMu.Unlock()
		log.Printf("controller: skip trigger %s (sounding until %s)", siteID, until.Format(time.RFC3339))
		return
	}
	c.soundingMu.Unlock()

	cli, ok := c.router.Get(siteID)
	if !ok {
		log.Printf("controller: no annunciator client for site=%s", siteID)
		return
	}

	rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req := &pb.TriggerRequest{
		SiteId:      siteID,
		SirenId:     sirenID,
		DecisionId:  decisionID,
		Reason:      res.Reason,
		Confidence:  res.Confidence,
		DurationSec: c.sirenDurationSec,
	}
	resp, err := cli.TriggerSiren(rctx, req)
	switch {
	case err != nil:
		c.metrics.TriggerErrors.Inc()
		log.Printf("controller: TriggerSiren error: %v", err)
	case !resp.GetSuccess():
		log.Printf("controller: TriggerSiren refused: %s", resp.GetMessage())
	default:
		until := time.Now().Add(time.Duration(c.sirenDurationSec) * time.Second)
		c.soundingMu.Lock()
		if prev, have := c.soundingUntil[siteID]; !have || until.After(prev) {
			c.soundingUntil[siteID] = until
		}
		c.soundingMu.Unlock()
		log.Printf("controller: siren %s/%s ON for %ds (ticket %s)",
			siteID, sirenID, c.sirenDurationSec, resp.GetTicketId())
	}
}

func (c *Controller) publishDecision(siteID, decisionID string, res fusion.Result) error {
	evt := model.AlarmEvent{
		SiteID:       siteID,
		DecisionID:   decisionID,
		Alarm:        res.Alarm,
		Reason:       res.Reason,
		Confidence:   res.Confidence,
		Sources:      res.Sources,
		HotCellCount: len(res.HotCells),
		ThermalMax:   res.ThermalMax,
		Raw:          res.Raw,
		Timestamp:    res.At,
	}
	b, _ := json.Marshal(evt)
	topic := strings.NewReplacer("{site}", siteID).Replace(c.decisionTopicTmpl)

	// decisions go out at QoS 1
	if err := c.publisher.PublishToQos(topic, 1, false, string(b)); err != nil {
		return err
	}
	log.Printf("decision: site=%s id=%s confidence=%.2f topic=%s (qos=1)",
		siteID, decisionID, res.Confidence, topic)
	return nil
}

// ===================== site loading =====================

// loadSites reads the site list and indexes it by site ID. Streams and
// annunciators inherit the site ID when the file omits it.
func loadSites(path string) (map[string]model.Site, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []model.Site
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	out := make(map[string]model.Site, len(list))
	for _, s := range list {
		if s.ID == "" {
			return nil, errors.New("site without id in config")
		}
		for i := range s.Streams {
			if s.Streams[i].SiteID == "" {
				s.Streams[i].SiteID = s.ID
			}
		}
		for i := range s.Annunciators {
			if s.Annunciators[i].SiteID == "" {
				s.Annunciators[i].SiteID = s.ID
			}
		}
		out[s.ID] = s
	}
	return out, nil
}

// ===================== small helpers =====================

// idsFromTopic recovers site and trailing IDs from topics shaped
// "family/kind/{site}" or "family/kind/{site}/{stream-or-camera}".
func idsFromTopic(topic string) (site, sub string) {
	parts := strings.Split(topic, "/")
	if len(parts) >= 3 {
		site = parts[2]
	}
	if len(parts) >= 4 {
		sub = parts[3]
	}
	return site, sub
}

// reasonClass buckets a firing reason by its leading word for metrics labels.
func reasonClass(reason string) string {
	if i := strings.IndexByte(reason, ' '); i > 0 {
		return reason[:i]
	}
	if reason == "" {
		return "none"
	}
	return reason
}

func getenvFloat(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return def
	}
	return f
}

func envInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
