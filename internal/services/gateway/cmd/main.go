package main

import (
	"log"
	"net/http"
	"time"

	"github.com/firesense-dev/firesense/internal/services/gateway/app"
)

func main() {
	cfg := loadConfig()

	gw := app.NewGateway(app.Config{
		AnnunciatorURL:  cfg.AnnunciatorURL,
		PersistenceURL:  cfg.PersistenceURL,
		EventURL:        cfg.EventURL,
		HTTPTimeout:     time.Duration(cfg.TimeoutMs) * time.Millisecond,
		BreakerFailures: cfg.CBFails,
		BreakerOpenFor:  time.Duration(cfg.CBOpenMs) * time.Millisecond,
		BreakerInterval: time.Duration(cfg.CBIntervalMs) * time.Millisecond,
	})

	http.HandleFunc("/healthz", gw.HandleHealthz)
	http.HandleFunc("/dashboard/data", gw.HandleDashboard)

	addr := ":" + cfg.Port
	log.Printf("gateway listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
