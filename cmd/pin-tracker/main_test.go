package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/pin-tracker/internal/config"
	"github.com/sweeney/pin-tracker/internal/mqtt"
	"github.com/sweeney/pin-tracker/internal/pin"
	"github.com/sweeney/pin-tracker/internal/tracker"
)

var testStart = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testClock() func() time.Time {
	return func() time.Time { return testStart }
}

func newTestConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func TestDispatchAppliesValidMessage(t *testing.T) {
	tr := tracker.New(testStart, tracker.Config{})
	cfg := newTestConfig(t, "{}")
	h := dispatch(tr, cfg, testClock())

	h(mqtt.Message{Topic: "node1/current/analog/3", Payload: []byte("2342")})

	if !tr.IsOn("node1", 3, testStart.Add(time.Second)) {
		t.Error("expected node1/3 on after dispatch")
	}
}

func TestDispatchDropsMalformedMessage(t *testing.T) {
	tr := tracker.New(testStart, tracker.Config{})
	cfg := newTestConfig(t, "{}")
	h := dispatch(tr, cfg, testClock())

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	h(mqtt.Message{Topic: "bad/topic", Payload: []byte("1")})
	h(mqtt.Message{Topic: "node1/current/analog/3", Payload: []byte("not-a-number")})

	snap := tr.Snapshot(testStart)
	if len(snap.Pins) != 0 {
		t.Errorf("malformed messages must not reach the tracker, got %d pins", len(snap.Pins))
	}
	if !strings.Contains(buf.String(), "drop") {
		t.Error("expected drop log lines")
	}
}

func TestDispatchTimeoutTopic(t *testing.T) {
	tr := tracker.New(testStart, tracker.Config{})
	cfg := newTestConfig(t, "{}")
	h := dispatch(tr, cfg, testClock())

	h(mqtt.Message{Topic: "node1/timeout/3600/analog/8", Payload: []byte("2332")})

	if !tr.IsOn("node1", 8, testStart.Add(time.Hour-time.Second)) {
		t.Error("expected on before the timeout elapses")
	}
	if tr.IsOn("node1", 8, testStart.Add(time.Hour+time.Second)) {
		t.Error("expected neither on nor off after the timeout")
	}
	if tr.IsOff("node1", 8, testStart.Add(time.Hour+time.Second)) {
		t.Error("expected neither on nor off after the timeout")
	}
}

func TestDispatchTemperatureAlert(t *testing.T) {
	tr := tracker.New(testStart, tracker.Config{})
	cfg := newTestConfig(t, `
nodes:
  node1:
    alert-temperature: 25
`)
	h := dispatch(tr, cfg, testClock())

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	h(mqtt.Message{Topic: "node1/current/temperature/7", Payload: []byte("30.5")})
	if !strings.Contains(buf.String(), "alert") {
		t.Error("expected alert log line for reading above threshold")
	}

	buf.Reset()
	h(mqtt.Message{Topic: "node1/current/temperature/7", Payload: []byte("20")})
	if strings.Contains(buf.String(), "alert") {
		t.Error("did not expect alert for reading below threshold")
	}

	// Unconfigured node never alerts.
	buf.Reset()
	h(mqtt.Message{Topic: "node2/current/temperature/7", Payload: []byte("99")})
	if strings.Contains(buf.String(), "alert") {
		t.Error("did not expect alert for unconfigured node")
	}

	avg, ok := tr.AverageTemperature("node1", 7, testStart.Add(-time.Minute))
	if !ok || avg != pin.Temperature(25.25) {
		t.Errorf("average: got %v ok=%v, want 25.25", avg, ok)
	}
}

func TestRunLoopExitsOnSignal(t *testing.T) {
	client := mqtt.NewFakeClient()
	tr := tracker.New(testStart, tracker.Config{})

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- runLoop(client, tr, tick, sig) }()

	sig <- syscall.SIGTERM
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runLoop: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("runLoop did not exit on signal")
	}
}

func TestRunLoopRefreshesConnectionState(t *testing.T) {
	client := mqtt.NewFakeClient()
	client.Connected = false
	tr := tracker.New(testStart, tracker.Config{})
	tr.SetMQTTConnected(true)

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- runLoop(client, tr, tick, sig) }()

	tick <- testStart

	deadline := time.Now().Add(time.Second)
	for tr.Snapshot(testStart).MQTTConnected {
		if time.Now().After(deadline) {
			t.Fatal("connection state was not refreshed")
		}
		time.Sleep(time.Millisecond)
	}

	sig <- syscall.SIGTERM
	<-done
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", "", "", "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Broker != config.DefaultBroker {
		t.Errorf("broker: got %q, want %q", cfg.Broker, config.DefaultBroker)
	}
	if cfg.Filter != config.DefaultFilter {
		t.Errorf("filter: got %q, want %q", cfg.Filter, config.DefaultFilter)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "broker: tcp://file:1883\nfilter: \"file/#\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path, "tcp://flag:1883", "", ":9999")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Broker != "tcp://flag:1883" {
		t.Errorf("broker: flag should win, got %q", cfg.Broker)
	}
	if cfg.Filter != "file/#" {
		t.Errorf("filter: file value should survive, got %q", cfg.Filter)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("http: flag should win, got %q", cfg.HTTPAddr)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), "", "", ""); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("PIN_TRACKER_TEST_KEY", "from-env")
	if got := envOr("PIN_TRACKER_TEST_KEY", "fallback"); got != "from-env" {
		t.Errorf("got %q, want from-env", got)
	}
	if got := envOr("PIN_TRACKER_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("got %q, want fallback", got)
	}
}
