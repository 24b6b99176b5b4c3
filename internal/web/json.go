package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pin-tracker/internal/pin"
	"github.com/sweeney/pin-tracker/internal/tracker"
)

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Pins          []PinJSON  `json:"pins"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Config        ConfigJSON `json:"config"`
}

// PinJSON is the JSON representation of one tracked pin.
type PinJSON struct {
	Node           string     `json:"node"`
	Pin            uint8      `json:"pin"`
	State          string     `json:"state"`
	LastValue      *ValueJSON `json:"last_value,omitempty"`
	LastChanged    string     `json:"last_changed,omitempty"`
	Observations   int        `json:"observations"`
	Transitions    int        `json:"transitions"`
	AvgTemperature *float64   `json:"avg_temperature,omitempty"`
}

// ValueJSON is the JSON representation of a pin value.
type ValueJSON struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker       string `json:"broker"`
	Filter       string `json:"filter"`
	HTTPAddr     string `json:"http_addr"`
	AvgWindowSec int64  `json:"avg_window_seconds"`
}

func valueJSON(v pin.Value) *ValueJSON {
	switch v := v.(type) {
	case pin.Temperature:
		return &ValueJSON{Kind: "temperature", Value: float64(v)}
	case pin.Analog:
		return &ValueJSON{Kind: "analog", Value: float64(v)}
	case pin.Digital:
		return &ValueJSON{Kind: "digital", Value: float64(pin.ValueAsUint16(v))}
	}
	return nil
}

func formatJSON(snap tracker.Snapshot) []byte {
	pins := make([]PinJSON, 0, len(snap.Pins))
	for _, p := range snap.Pins {
		pj := PinJSON{
			Node:         p.Node,
			Pin:          p.Pin,
			State:        p.State,
			Observations: p.Observations,
			Transitions:  p.Transitions,
		}
		if p.LastValue != nil {
			pj.LastValue = valueJSON(p.LastValue)
		}
		if !p.LastChangedAt.IsZero() {
			pj.LastChanged = p.LastChangedAt.UTC().Format(time.RFC3339)
		}
		if p.HasAvgTemp {
			avg := float64(p.AvgTemp)
			pj.AvgTemperature = &avg
		}
		pins = append(pins, pj)
	}

	sj := StatusJSON{
		Status: StatusInner{
			Pins:          pins,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
			Config: ConfigJSON{
				Broker:       snap.Config.Broker,
				Filter:       snap.Config.Filter,
				HTTPAddr:     snap.Config.HTTPAddr,
				AvgWindowSec: int64(snap.Config.AverageWindow.Seconds()),
			},
		},
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
