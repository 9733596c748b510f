package main

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	pb "github.com/firesense-dev/firesense/grpc/gen/go/annunciator"
	"github.com/firesense-dev/firesense/internal/model"
	"github.com/firesense-dev/firesense/internal/services/annunciator"
	"github.com/firesense-dev/firesense/pkg/rabbitmq"
)

func mustEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	if def != "" {
		return def
	}
	log.Fatalf("missing required env %s", k)
	return ""
}

func envInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	// ---- ENV ----
	host := mustEnv("RABBITMQ_HOST", "")
	portStr := mustEnv("RABBITMQ_PORT", "1883")
	user := mustEnv("RABBITMQ_USER", "")
	pass := mustEnv("RABBITMQ_PASSWORD", "")
	clientID := mustEnv("RABBITMQ_CLIENTID", "annunciator-service")
	exchange := mustEnv("RABBITMQ_EXCHANGE", "sensor_data")
	grpcPort := mustEnv("GRPC_PORT", "50051")
	httpAddr := mustEnv("HTTP_ADDR", ":8083")
	sitesPath := mustEnv("SITES_CONFIG_PATH", "/app/config/sites-config.json")

	stateTmpl := mustEnv("EVENT_STATECHANGE_TEMPLATE", "event/StateChange/{site}/{siren}")
	resultTmpl := mustEnv("EVENT_SIRENRESULT_TEMPLATE", "event/sirenResult/{site}/{siren}")
	envTopic := mustEnv("SENSOR_ENV_TOPIC", "sensor/env/#")
	livenessTTL := envInt("SITE_LIVENESS_TTL_SEC", 60)
	offlineGrace := envInt("OFFLINE_GRACE_SEC", 5)

	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil {
		log.Fatalf("invalid RABBITMQ_PORT: %v", err)
	}

	// ---- Load sites: list -> map by site ID ----
	raw, err := os.ReadFile(sitesPath)
	if err != nil {
		log.Fatalf("read sites config: %v", err)
	}
	var siteList []model.Site
	if err := json.Unmarshal(raw, &siteList); err != nil {
		log.Fatalf("unmarshal sites config: %v", err)
	}
	sites := make(map[string]model.Site, len(siteList))
	for _, s := range siteList {
		sites[s.ID] = s
	}

	// ---- MQTT (RabbitMQ with "topic" exchange) ----
	rmqc := &rabbitmq.RabbitMQConfig{
		Host:     host,
		Port:     port,
		User:     user,
		Password: pass,
		ClientID: clientID,
		Exchange: exchange,
		Kind:     "topic",
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := rabbitmq.NewRabbitMQConn(rmqc, ctx)
	if err != nil {
		log.Fatalf("MQTT connect error: %v", err)
	}

	publisherFactory := func(topic string) rabbitmq.IPublisher {
		return rabbitmq.NewPublisher(client, topic, rmqc.Exchange)
	}

	handler := annunciator.NewGrpcHandler(publisherFactory, stateTmpl, sites)
	handler.SetResultTopicTemplate(resultTmpl)
	handler.SetLiveness(time.Duration(livenessTTL)*time.Second, time.Duration(offlineGrace)*time.Second)

	// heartbeat consumer + status REST
	svc := annunciator.NewService(rabbitmq.NewConsumer(client, envTopic, nil), handler)
	go svc.Start(ctx)

	httpSrv := &http.Server{Addr: httpAddr, Handler: svc.NewStatusMux()}
	go func() {
		log.Printf("annunciator: status HTTP on %s", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("annunciator: http serve error: %v", err)
		}
	}()

	// ---- gRPC server ----
	addr := ":" + grpcPort
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen %s: %v", addr, err)
	}
	grpcServer := grpc.NewServer()
	pb.RegisterAnnunciatorServiceServer(grpcServer, handler)

	go func() {
		log.Printf("annunciator: gRPC %s; MQTT exchange '%s'; state template '%s'",
			addr, rmqc.Exchange, stateTmpl)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("gRPC serve error: %v", err)
		}
	}()

	// ---- graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc
	log.Println("shutting down...")
	grpcServer.GracefulStop()
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutCancel()
	_ = httpSrv.Shutdown(shutCtx)
	cancel()
	time.Sleep(300 * time.Millisecond)
}
