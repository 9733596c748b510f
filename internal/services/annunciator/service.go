package annunciator

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/firesense-dev/firesense/internal/model"
	"github.com/firesense-dev/firesense/pkg/rabbitmq"
)

// Service front-ends the GrpcHandler: it feeds site liveness from the env
// sensor stream and serves the siren status endpoint for the gateway.
type Service struct {
	consumer rabbitmq.IConsumer[model.SensorReading] // env readings double as site heartbeats
	handler  *GrpcHandler
}

func NewService(consumer rabbitmq.IConsumer[model.SensorReading], handler *GrpcHandler) *Service {
	return &Service{
		consumer: consumer,
		handler:  handler,
	}
}

// Start blocks until ctx is cancelled, pumping heartbeats into the handler.
func (s *Service) Start(ctx context.Context) {
	s.consumer.SetHandler(s.heartbeat)
	s.consumer.ConsumeMessage(ctx)
}

func (s *Service) heartbeat(topic string, message mqtt.Message) error {
	return s.handler.OnEnvReading(topic, message)
}

// NewStatusMux serves GET /sirens/status for the gateway dashboard.
func (s *Service) NewStatusMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/sirens/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.handler.Status()); err != nil {
			log.Printf("annunciator: encode status: %v", err)
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
