package main

import (
	"os"
	"strconv"
)

type Config struct {
	Port      string
	TimeoutMs int

	AnnunciatorURL string // e.g. http://annunciator.fog:8083
	PersistenceURL string // e.g. http://persistence.cloud:8080
	EventURL       string // e.g. http://event-service.fog:8080

	CBFails      int
	CBOpenMs     int
	CBIntervalMs int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func loadConfig() Config {
	return Config{
		Port:      getenv("PORT", "5009"),
		TimeoutMs: getenvInt("TIMEOUT_MS", 3000),

		AnnunciatorURL: getenv("ANNUNCIATOR_URL", "http://annunciator-service:8083"),
		PersistenceURL: getenv("PERSISTENCE_URL", "http://persistence-service:8080"),
		EventURL:       getenv("EVENT_URL", "http://event-service:8080"),

		CBFails:      getenvInt("CB_FAILS", 3),
		CBOpenMs:     getenvInt("CB_OPEN_MS", 10000),
		CBIntervalMs: getenvInt("CB_INTERVAL_MS", 60000),
	}
}
