package alarm_controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the controller counters on /metrics (promhttp in cmd).
type Metrics struct {
	FusionCalls    prometheus.Counter
	Alarms         *prometheus.CounterVec
	Confidence     *prometheus.GaugeVec
	FrameQueue     prometheus.Gauge
	DroppedFrames  prometheus.Counter
	TriggerErrors  prometheus.Counter
	DedupDiscarded prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		FusionCalls: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "firesense",
			Subsystem: "controller",
			Name:      "fusion_calls_total",
			Help:      "Fusion engine evaluations across all sites.",
		}),
		Alarms: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firesense",
			Subsystem: "controller",
			Name:      "alarms_total",
			Help:      "Alarm decisions by site and firing rule class.",
		}, []string{"site", "rule"}),
		Confidence: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "firesense",
			Subsystem: "controller",
			Name:      "last_confidence",
			Help:      "Confidence of the most recent fusion decision per site.",
		}, []string{"site"}),
		FrameQueue: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "firesense",
			Subsystem: "controller",
			Name:      "thermal_queue_depth",
			Help:      "Buffered thermal frames waiting for fusion.",
		}),
		DroppedFrames: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "firesense",
			Subsystem: "controller",
			Name:      "thermal_frames_dropped_total",
			Help:      "Thermal frames dropped because the inbound queue was full.",
		}),
		TriggerErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "firesense",
			Subsystem: "controller",
			Name:      "siren_trigger_errors_total",
			Help:      "Failed TriggerSiren RPCs.",
		}),
		DedupDiscarded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "firesense",
			Subsystem: "controller",
			Name:      "dedup_discarded_total",
			Help:      "Inbound messages discarded as QoS1 redeliveries.",
		}),
	}
}
