package sensor_simulator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/firesense-dev/firesense/internal/model"
	"github.com/firesense-dev/firesense/pkg/dedup"
	"github.com/firesense-dev/firesense/pkg/fps"

	"github.com/firesense-dev/firesense/pkg/rabbitmq"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultThermalTopicTmpl = "sensor/thermal/{site}/{stream}"
	defaultEnvTopicTmpl     = "sensor/env/{site}"
	defaultVisionTopicTmpl  = "vision/score/{site}/{camera}"
)

type outbound struct {
	topic   string
	payload string
}

// Simulator drives one synthetic site: a thermal frame loop per stream paced
// by the adaptive rate controller, plus slower env and vision loops. Publishes
// go through a buffered outbox so the frame loops can measure their own
// backlog the way a real capture loop measures its encode queue.
type Simulator struct {
	mu          sync.Mutex
	site        model.Site
	generator   *Generator
	publisher   rabbitmq.IPublisher
	consumer    rabbitmq.IConsumer[model.StateChangeEvent]
	deduper     *dedup.Deduper
	rate        *fps.Controller
	outbox      chan outbound
	igniteTimer *time.Timer

	thermalTmpl string
	envTmpl     string
	visionTmpl  string

	envEvery    time.Duration
	visionEvery time.Duration
}

type SimulatorConfig struct {
	Site             model.Site
	EnvInterval      time.Duration // default 2s
	VisionInterval   time.Duration // default 5s
	OutboxCap        int           // default 64
	ThermalTopicTmpl string
	EnvTopicTmpl     string
	VisionTopicTmpl  string
}

func NewSimulator(consumer rabbitmq.IConsumer[model.StateChangeEvent], publisher rabbitmq.IPublisher,
	gen *Generator, cfg SimulatorConfig) *Simulator {
	if cfg.EnvInterval <= 0 {
		cfg.EnvInterval = 2 * time.Second
	}
	if cfg.VisionInterval <= 0 {
		cfg.VisionInterval = 5 * time.Second
	}
	if cfg.OutboxCap <= 0 {
		cfg.OutboxCap = 64
	}
	if cfg.ThermalTopicTmpl == "" {
		cfg.ThermalTopicTmpl = defaultThermalTopicTmpl
	}
	if cfg.EnvTopicTmpl == "" {
		cfg.EnvTopicTmpl = defaultEnvTopicTmpl
	}
	if cfg.VisionTopicTmpl == "" {
		cfg.VisionTopicTmpl = defaultVisionTopicTmpl
	}
	return &Simulator{
		site:        cfg.Site,
		generator:   gen,
		publisher:   publisher,
		consumer:    consumer,
		deduper:     dedup.New(2*time.Minute, 10000), // TTL and cap
		rate:        fps.New(fps.Config{}),
		outbox:      make(chan outbound, cfg.OutboxCap),
		thermalTmpl: cfg.ThermalTopicTmpl,
		envTmpl:     cfg.EnvTopicTmpl,
		visionTmpl:  cfg.VisionTopicTmpl,
		envEvery:    cfg.EnvInterval,
		visionEvery: cfg.VisionInterval,
	}
}

// IgniteAfter schedules an ember ignition; call before Start.
func (s *Simulator) IgniteAfter(d time.Duration) {
	if d <= 0 {
		s.generator.Ignite()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.igniteTimer = time.AfterFunc(d, func() {
		log.Printf("simulator: igniting ember at site %s", s.site.ID)
		s.generator.Ignite()
	})
}

// Start runs the publish loops and the siren feedback subscription. It blocks
// until the context is cancelled.
func (s *Simulator) Start(ctx context.Context) {
	s.consumer.SetHandler(s.handleStateChange)
	go s.consumer.ConsumeMessage(ctx)
	go s.drainOutbox(ctx)

	var wg sync.WaitGroup
	for _, stream := range s.site.Streams {
		wg.Add(1)
		go func(st model.Stream) {
			defer wg.Done()
			s.streamLoop(ctx, st)
		}(stream)
	}
	wg.Add(2)
	go func() { defer wg.Done(); s.envLoop(ctx) }()
	go func() { defer wg.Done(); s.visionLoop(ctx) }()

	wg.Wait()
	s.mu.Lock()
	if s.igniteTimer != nil {
		s.igniteTimer.Stop()
	}
	s.mu.Unlock()
	s.publisher.Close()
}

// streamLoop generates thermal frames and retimes itself through the rate
// controller: outbox depth is the capture backlog the controller reacts to.
func (s *Simulator) streamLoop(ctx context.Context, stream model.Stream) {
	topic := strings.NewReplacer(
		"{site}", s.site.ID,
		"{stream}", stream.ID,
	).Replace(s.thermalTmpl)

	for {
		frame := s.generator.NextFrame(s.site.ID, stream.ID)
		payload, _ := json.Marshal(frame)
		s.enqueue(topic, string(payload))

		s.rate.Update(stream.ID, len(s.outbox))
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.rate.Interval(stream.ID)):
		}
	}
}

func (s *Simulator) envLoop(ctx context.Context) {
	topic := strings.NewReplacer("{site}", s.site.ID).Replace(s.envTmpl)
	ticker := time.NewTicker(s.envEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reading := s.generator.NextEnv(s.site.ID)
			payload, _ := json.Marshal(reading)
			s.enqueue(topic, string(payload))
		}
	}
}

func (s *Simulator) visionLoop(ctx context.Context) {
	ticker := time.NewTicker(s.visionEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, stream := range s.site.Streams {
				score := s.generator.NextVision(s.site.ID, stream.ID)
				topic := strings.NewReplacer(
					"{site}", s.site.ID,
					"{camera}", stream.ID,
				).Replace(s.visionTmpl)
				payload, _ := json.Marshal(score)
				s.enqueue(topic, string(payload))
			}
		}
	}
}

// enqueue drops the message when the outbox is full; frame loops slow down
// through the rate controller before this becomes the norm.
func (s *Simulator) enqueue(topic, payload string) {
	select {
	case s.outbox <- outbound{topic: topic, payload: payload}:
	default:
		log.Printf("simulator: outbox full, dropping message for %s", topic)
	}
}

func (s *Simulator) drainOutbox(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-s.outbox:
			if err := s.publisher.PublishToQos(m.topic, 0, false, m.payload); err != nil {
				log.Printf("simulator: publish error on %s: %v", m.topic, err)
			}
		}
	}
}

// handleStateChange reacts to siren feedback: a sounding siren at this site
// suppresses the ember, simulating intervention.
func (s *Simulator) handleStateChange(_ string, msg mqtt.Message) error {
	// payload dedup: a QoS1 redelivery carries the same payload → same hash
	h := sha256.Sum256(msg.Payload())
	if s.deduper != nil && !s.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil // duplicate → ignore
	}

	var evt model.StateChangeEvent
	if err := json.Unmarshal(msg.Payload(), &evt); err != nil {
		return fmt.Errorf("invalid StateChangeEvent: %w", err)
	}
	if evt.SiteID != s.site.ID {
		// ignore events for other sites
		return nil
	}
	if evt.NewState == model.StateSounding {
		log.Printf("simulator: siren %s sounding at %s, suppressing ember", evt.SirenID, evt.SiteID)
		s.mu.Lock()
		if s.igniteTimer != nil {
			s.igniteTimer.Stop()
			s.igniteTimer = nil
		}
		s.mu.Unlock()
		s.generator.Suppress()
	}
	return nil
}
