package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	controller "github.com/firesense-dev/firesense/internal/services/alarm-controller"
	"github.com/firesense-dev/firesense/pkg/rabbitmq"
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MQTT
	host := env("RABBITMQ_HOST", "localhost")
	port := envInt("RABBITMQ_PORT", 1883)
	user := env("RABBITMQ_USER", "guest")
	pass := env("RABBITMQ_PASSWORD", "guest")
	exchange := env("RABBITMQ_EXCHANGE", "sensor_data")
	clientID := fmt.Sprintf("AlarmController-%s", env("HOSTNAME", "local"))

	cfg := &rabbitmq.RabbitMQConfig{Host: host, Port: port, User: user, Password: pass, ClientID: clientID, Exchange: exchange, Kind: "topic"}
	mqClient, err := rabbitmq.NewRabbitMQConn(cfg, ctx)
	if err != nil {
		log.Fatalf("MQTT connect failed: %v", err)
	}

	thermalSub := env("THERMAL_SUB_TOPIC", "sensor/thermal/#")
	envSub := env("ENV_SUB_TOPIC", "sensor/env/#")
	visionSub := env("VISION_SUB_TOPIC", "vision/score/#")
	decisionTmpl := env("ALARM_DECISION_TEMPLATE", "event/alarmDecision/{site}")

	consumer := rabbitmq.NewMultiConsumer(mqClient, []string{thermalSub, envSub, visionSub}, nil)
	publisher := rabbitmq.NewPublisher(mqClient, decisionTmpl, exchange)

	// Siren routing: site -> annunciator service endpoint
	mapStr := env("SIREN_GRPC_ADDR_MAP", "site-a=annunciator-a:50051")
	router, err := controller.NewAnnunciatorRouter(ctx, mapStr)
	if err != nil {
		log.Fatalf("annunciator router init: %v", err)
	}
	defer router.Close()

	sitesPath := env("SITES_CONFIG_PATH", "/app/config/sites-config.json")
	metrics := controller.NewMetrics()

	ctrl, err := controller.NewController(consumer, publisher, router, sitesPath, decisionTmpl, metrics)
	if err != nil {
		log.Fatalf("controller init: %v", err)
	}

	// Prometheus scrape endpoint
	metricsAddr := env("METRICS_ADDR", ":9090")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Printf("AlarmController metrics on %s/metrics", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics serve error: %v", err)
		}
	}()

	log.Printf("AlarmController running. thermal=%s env=%s vision=%s routes=%s", thermalSub, envSub, visionSub, mapStr)
	go ctrl.Start(ctx)

	// graceful shutdown
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc
	cancel()
}
