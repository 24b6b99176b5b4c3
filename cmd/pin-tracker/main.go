// Command pin-tracker subscribes to pin topics on an MQTT broker and keeps
// a bounded per-pin history of readings and transitions, served over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sweeney/pin-tracker/internal/config"
	"github.com/sweeney/pin-tracker/internal/mqtt"
	"github.com/sweeney/pin-tracker/internal/pin"
	"github.com/sweeney/pin-tracker/internal/tracker"
	"github.com/sweeney/pin-tracker/internal/web"
)

func main() {
	// .env is optional; flags and the config file still apply without it.
	_ = godotenv.Load()

	configPath := flag.String("config", envOr("PIN_TRACKER_CONFIG", ""), "YAML config file (optional)")
	broker := flag.String("broker", envOr("PIN_TRACKER_BROKER", ""), "MQTT broker address (overrides config)")
	filter := flag.String("filter", envOr("PIN_TRACKER_FILTER", ""), "MQTT subscription filter (overrides config)")
	httpAddr := flag.String("http", envOr("PIN_TRACKER_HTTP", ""), "HTTP status address (overrides config)")
	clientID := flag.String("client-id", "pin-tracker", "MQTT client id")
	avgWindow := flag.Duration("avg-window", 15*time.Minute, "Lookback window for status-page temperature averages")

	flag.Parse()

	cfg, err := loadConfig(*configPath, *broker, *filter, *httpAddr)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *clientID, *avgWindow); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// loadConfig reads the optional YAML file and applies flag overrides.
func loadConfig(path, broker, filter, httpAddr string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = &config.Config{
			Broker:   config.DefaultBroker,
			Filter:   config.DefaultFilter,
			HTTPAddr: config.DefaultHTTPAddr,
		}
	}
	if broker != "" {
		cfg.Broker = broker
	}
	if filter != "" {
		cfg.Filter = filter
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	return cfg, nil
}

func run(cfg *config.Config, clientID string, avgWindow time.Duration) error {
	client, err := mqtt.NewRealClient(cfg.Broker, clientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()

	t := tracker.New(time.Now(), tracker.Config{
		Broker:        cfg.Broker,
		Filter:        cfg.Filter,
		HTTPAddr:      cfg.HTTPAddr,
		AverageWindow: avgWindow,
	})
	t.SetMQTTConnected(client.IsConnected())

	if err := client.Subscribe(cfg.Filter, dispatch(t, cfg, time.Now)); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, t)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: broker=%s filter=%s", cfg.Broker, cfg.Filter)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(client, t, ticker.C, sigCh)
}

// dispatch returns the subscriber callback: parse each message, drop bad
// ones with a log line, route good ones into the tracker, and flag
// temperature readings above the node's configured threshold.
func dispatch(t *tracker.Tracker, cfg *config.Config, now func() time.Time) mqtt.Handler {
	return func(msg mqtt.Message) {
		op, err := pin.ParseTopic(msg.Topic, string(msg.Payload), now())
		if err != nil {
			log.Printf("drop %q: %v", msg.Topic, err)
			return
		}
		t.Apply(op)

		if temp, ok := op.State.Value.(pin.Temperature); ok {
			if limit, ok := cfg.AlertTemperature(op.Node); ok && temp.Sub(limit) > 0 {
				log.Printf("alert: node %s pin %d at %.2f° exceeds threshold %.2f°",
					op.Node, op.State.Pin, float64(temp), float64(limit))
			}
		}
	}
}

// runLoop blocks until a shutdown signal arrives, refreshing the tracked
// connection state on every tick.
func runLoop(status mqtt.Client, t *tracker.Tracker, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			return nil
		case <-tick:
			t.SetMQTTConnected(status.IsConnected())
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
