package app

import (
	"log"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

type Config struct {
	AnnunciatorURL string
	PersistenceURL string
	EventURL       string
	HTTPTimeout    time.Duration

	BreakerFailures int
	BreakerOpenFor  time.Duration
	BreakerInterval time.Duration

	Logger *log.Logger
}

// Gateway fans out to the three upstreams, each behind its own breaker, and
// keeps a last-good cache of the alarm list for open-breaker windows.
type Gateway struct {
	cfg      Config
	upstream *Upstream

	annunciatorCB *gobreaker.CircuitBreaker
	persistenceCB *gobreaker.CircuitBreaker
	eventCB       *gobreaker.CircuitBreaker

	cacheMu        sync.Mutex
	lastGoodAlarms []Alarm
}

func NewGateway(cfg Config) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 3 * time.Second
	}
	// one breaker per upstream
	return &Gateway{
		cfg:           cfg,
		upstream:      NewUpstream(cfg.HTTPTimeout),
		annunciatorCB: mkCB("annunciator-service", cfg),
		persistenceCB: mkCB("persistence-service", cfg),
		eventCB:       mkCB("event-service", cfg),
	}
}

func mkCB(name string, cfg Config) *gobreaker.CircuitBreaker {
	fails := cfg.BreakerFailures
	if fails < 1 {
		fails = 3
	}
	openFor := cfg.BreakerOpenFor
	if openFor <= 0 {
		openFor = 10 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: cfg.BreakerInterval,
		Timeout:  openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
	})
}

func (g *Gateway) rememberAlarms(a []Alarm) {
	g.cacheMu.Lock()
	g.lastGoodAlarms = a
	g.cacheMu.Unlock()
}

func (g *Gateway) cachedAlarms() []Alarm {
	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()
	out := make([]Alarm, len(g.lastGoodAlarms))
	copy(out, g.lastGoodAlarms)
	return out
}
