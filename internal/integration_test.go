package internal

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sweeney/pin-tracker/internal/mqtt"
	"github.com/sweeney/pin-tracker/internal/pin"
	"github.com/sweeney/pin-tracker/internal/tracker"
	"github.com/sweeney/pin-tracker/internal/web"
)

// TestIntegrationFullFlow drives messages through the fake broker into the
// tracker the same way the daemon's subscriber callback does, then checks
// the tracked state.
func TestIntegrationFullFlow(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := start
	now := func() time.Time { return clock }

	tr := tracker.New(start, tracker.Config{
		Broker:        "tcp://fake:1883",
		Filter:        "#",
		AverageWindow: 15 * time.Minute,
	})

	client := mqtt.NewFakeClient()
	var dropped int
	err := client.Subscribe("#", func(msg mqtt.Message) {
		op, err := pin.ParseTopic(msg.Topic, string(msg.Payload), now())
		if err != nil {
			dropped++
			return
		}
		tr.Apply(op)
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	messages := []struct {
		topic   string
		payload string
	}{
		{"node1/current/analog/3", "2342"},
		{"node1/current/analog/3", "2342"}, // duplicate delivery, no new transition
		{"node1/current/digital/5", "1"},
		{"node1/current/temperature/5", "32.23"},
		{"node1/current/temperature/5", "30.01"},
		{"node1/timeout/3600/analog/8", "2332"},
		{"bad/topic", "1"},                    // dropped
		{"node1/current/analog/3", "garbage"}, // dropped
		{"node1/current/analog/3", "0"},
	}
	for _, m := range messages {
		client.Inject(m.topic, []byte(m.payload))
		clock = clock.Add(time.Second)
	}

	if dropped != 2 {
		t.Errorf("dropped: got %d, want 2", dropped)
	}

	// analog pin 3 ended at 0: off.
	if tr.IsOn("node1", 3, clock) {
		t.Error("node1/3 should not be on")
	}
	if !tr.IsOff("node1", 3, clock) {
		t.Error("node1/3 should be off")
	}

	// digital pin 5: on.
	if !tr.IsOn("node1", 5, clock) {
		t.Error("node1/5 should be on")
	}

	// pin 8 carries a 1h expiry: on now, inactive afterwards.
	if !tr.IsOn("node1", 8, clock) {
		t.Error("node1/8 should be on before expiry")
	}
	late := start.Add(2 * time.Hour)
	if tr.IsOn("node1", 8, late) || tr.IsOff("node1", 8, late) {
		t.Error("node1/8 should be neither on nor off after expiry")
	}

	// temperature average over both readings on pin 5.
	avg, ok := tr.AverageTemperature("node1", 5, start.Add(-time.Minute))
	if !ok {
		t.Fatal("expected temperature average")
	}
	if math.Abs(float64(avg)-31.12) > 1e-9 {
		t.Errorf("average: got %v, want 31.12", avg)
	}

	// the duplicate analog delivery produced no extra transition:
	// transitions on pin 3 are 2342 (seed) and 0.
	s, ok := tr.LastChanged("node1", 3)
	if !ok {
		t.Fatal("expected last changed on node1/3")
	}
	if s.Value != pin.Analog(0) {
		t.Errorf("last transition: got %v, want Analog(0)", s.Value)
	}
}

// TestIntegrationStatusEndpoint checks the HTTP view over tracked pins.
func TestIntegrationStatusEndpoint(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tr := tracker.New(start, tracker.Config{Broker: "tcp://fake:1883", Filter: "#"})
	tr.SetMQTTConnected(true)

	client := mqtt.NewFakeClient()
	if err := client.Subscribe("#", func(msg mqtt.Message) {
		op, err := pin.ParseTopic(msg.Topic, string(msg.Payload), start)
		if err != nil {
			return
		}
		tr.Apply(op)
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	client.Inject("node1/current/digital/5", []byte("1"))
	client.Inject("node2/current/analog/1", []byte("0"))

	srv := web.New(":0", tr)
	req := httptest.NewRequest("GET", "/index.json", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var sj web.StatusJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if len(sj.Status.Pins) != 2 {
		t.Fatalf("pins: got %d, want 2", len(sj.Status.Pins))
	}
	if sj.Status.Pins[0].Node != "node1" || sj.Status.Pins[0].State != "ON" {
		t.Errorf("row 0: got %s %s", sj.Status.Pins[0].Node, sj.Status.Pins[0].State)
	}
	if sj.Status.Pins[1].Node != "node2" || sj.Status.Pins[1].State != "OFF" {
		t.Errorf("row 1: got %s %s", sj.Status.Pins[1].Node, sj.Status.Pins[1].State)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected")
	}
}
