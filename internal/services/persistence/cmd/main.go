package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	persistencepkg "github.com/firesense-dev/firesense/internal/services/persistence"
	rabbitmq "github.com/firesense-dev/firesense/pkg/rabbitmq"
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MQTT (RabbitMQ/MQTT) ---
	host := env("RABBITMQ_HOST", env("MQTT_HOST", "localhost"))
	port := envInt("RABBITMQ_PORT", envInt("MQTT_PORT", 1883))
	user := env("RABBITMQ_USER", env("MQTT_USER", "mqtt_user"))
	pass := env("RABBITMQ_PASSWORD", env("MQTT_PASS", "mqtt_pwd"))
	exchange := env("RABBITMQ_EXCHANGE", env("MQTT_EXCHANGE", "sensor_data"))
	clientID := env("MQTT_CLIENT_ID", "persistence-service")
	envTopic := env("ENV_SUB_TOPIC", "sensor/env/#")
	decisionTopic := env("DECISION_SUB_TOPIC", "event/alarmDecision/#")

	mqCfg := &rabbitmq.RabbitMQConfig{
		Host:     host,
		Port:     port,
		User:     user,
		Password: pass,
		ClientID: clientID,
		Exchange: exchange,
		Kind:     "topic",
	}
	mqClient, err := rabbitmq.NewRabbitMQConn(mqCfg, ctx)
	if err != nil {
		log.Fatalf("mqtt connect failed: %v", err)
	}
	consumer := rabbitmq.NewMultiConsumer(mqClient, []string{envTopic, decisionTopic}, nil)

	// --- InfluxDB ---
	influxCfg := persistencepkg.InfluxConfig{
		InfluxURL:       env("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:     env("INFLUX_TOKEN", ""),
		InfluxOrg:       env("INFLUX_ORG", "firesense"),
		InfluxBucket:    env("INFLUX_BUCKET", "readings"),
		MeasurementMode: env("MEASUREMENT_MODE", "single"),
		MeasurementName: env("MEASUREMENT", ""),
	}

	// Service: MQTT consumer -> Influx writes + latest cache
	svc, err := persistencepkg.NewService(consumer, influxCfg)
	if err != nil {
		log.Fatalf("persistence init failed: %v", err)
	}

	// --- HTTP mux ---
	// /healthz is already registered inside NewHTTPMux(svc)
	mux := persistencepkg.NewHTTPMux(svc)
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ready": true})
	})

	httpPort := env("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + httpPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("persistence HTTP listening on :%s", httpPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	// start the MQTT consume loop (and with it the Influx writes)
	go svc.Start(ctx)

	<-ctx.Done()
	stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	log.Println("persistence: shutdown complete")
}
