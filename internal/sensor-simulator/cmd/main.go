package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/firesense-dev/firesense/internal/model"
	sensorSimulator "github.com/firesense-dev/firesense/internal/sensor-simulator"
	"github.com/firesense-dev/firesense/pkg/rabbitmq"
)

func main() {
	// define flags
	siteID := flag.String("site-id", "site-a", "site identifier")
	streamIDs := flag.String("stream-ids", "cam-1", "comma-separated thermal stream identifiers")
	clientID := flag.String("client-id", "sensorSimulator1", "MQTT client ID")
	host := flag.String("broker-host", "localhost", "MQTT broker host")
	port := flag.Int("broker-port", 1883, "MQTT broker port")
	user := flag.String("broker-user", "guest", "MQTT broker user")
	password := flag.String("broker-pass", "guest", "MQTT broker password")
	envInterval := flag.Duration("env-interval", 2*time.Second, "environment packet interval")
	visionInterval := flag.Duration("vision-interval", 5*time.Second, "vision score interval")
	lat := flag.Float64("lat", 41.51109, "site latitude")
	lon := flag.Float64("lon", 12.37007, "site longitude")
	seed := flag.Int64("seed", 0, "deterministic generator seed (0 = time-based)")
	igniteAfter := flag.Duration("ignite-after", 0, "light an ember after this delay (0 = never)")
	rows := flag.Int("rows", 24, "thermal grid rows")
	cols := flag.Int("cols", 32, "thermal grid cols")
	flag.Parse()

	cfg := &rabbitmq.RabbitMQConfig{
		Host:     *host,
		Port:     *port,
		User:     *user,
		Password: *password,
		ClientID: *clientID,
		Exchange: "sensor_data",
		Kind:     "topic",
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := rabbitmq.NewRabbitMQConn(cfg, ctx)
	if err != nil {
		log.Fatal(err)
	}

	site := model.Site{ID: *siteID, Latitude: *lat, Longitude: *lon}
	for _, id := range strings.Split(*streamIDs, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		site.Streams = append(site.Streams, model.Stream{ID: id, SiteID: *siteID, Rows: *rows, Cols: *cols})
	}
	if len(site.Streams) == 0 {
		log.Fatal("simulator: no stream ids given")
	}

	publisher := rabbitmq.NewPublisher(client, "sensor/thermal", cfg.Exchange)
	consumer := rabbitmq.NewConsumer(client, "event/StateChange/"+*siteID+"/#", nil)

	generator := sensorSimulator.NewGenerator(sensorSimulator.GeneratorConfig{
		Rows: *rows,
		Cols: *cols,
		Seed: *seed,
	})
	seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	generator.SeedFromOpenMeteo(seedCtx, *lat, *lon)
	cancel()

	sim := sensorSimulator.NewSimulator(consumer, publisher, generator, sensorSimulator.SimulatorConfig{
		Site:           site,
		EnvInterval:    *envInterval,
		VisionInterval: *visionInterval,
	})
	if *igniteAfter > 0 {
		sim.IgniteAfter(*igniteAfter)
	}

	log.Printf("simulator: site=%s streams=%s", *siteID, *streamIDs)
	sim.Start(ctx)
}
