// Package tracker routes parsed pin operations into per-pin history
// collections and exposes a thread-safe snapshot for HTTP consumers.
// pin.Collection itself is single-writer; the Tracker's lock is what makes
// concurrent subscriber callbacks safe.
package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/sweeney/pin-tracker/internal/pin"
)

// Key addresses one pin on one node.
type Key struct {
	Node string
	Pin  uint8
}

// Config contains daemon configuration for display.
type Config struct {
	Broker   string
	Filter   string
	HTTPAddr string
	// AverageWindow is the lookback used for snapshot temperature averages.
	AverageWindow time.Duration
}

// Tracker owns every pin.Collection, keyed by (node, pin), behind a single
// RWMutex.
type Tracker struct {
	mu            sync.RWMutex
	cols          map[Key]*pin.Collection
	startTime     time.Time
	cfg           Config
	mqttConnected bool
}

// New creates a Tracker with the given start time and config.
func New(startTime time.Time, cfg Config) *Tracker {
	if cfg.AverageWindow <= 0 {
		cfg.AverageWindow = 15 * time.Minute
	}
	return &Tracker{
		cols:      make(map[Key]*pin.Collection),
		startTime: startTime,
		cfg:       cfg,
	}
}

// Apply routes one operation to the owning collection, creating it on first
// sight of the (node, pin) pair.
func (t *Tracker) Apply(op pin.Operation) {
	key := Key{Node: op.Node, Pin: op.State.Pin}
	t.mu.Lock()
	col, ok := t.cols[key]
	if !ok {
		col = pin.NewCollection()
		t.cols[key] = col
	}
	col.Push(op.State)
	t.mu.Unlock()
}

// IsOn reports whether the pin is currently on, accounting for expiry at
// now. An unknown (node, pin) pair is neither on nor off.
func (t *Tracker) IsOn(node string, pinNum uint8, now time.Time) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	col, ok := t.cols[Key{Node: node, Pin: pinNum}]
	return ok && col.IsOn(now)
}

// IsOff reports whether the pin is currently off, accounting for expiry at
// now.
func (t *Tracker) IsOff(node string, pinNum uint8, now time.Time) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	col, ok := t.cols[Key{Node: node, Pin: pinNum}]
	return ok && col.IsOff(now)
}

// LastChanged returns the most recent transition for the pin.
func (t *Tracker) LastChanged(node string, pinNum uint8) (pin.State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	col, ok := t.cols[Key{Node: node, Pin: pinNum}]
	if !ok {
		return pin.State{}, false
	}
	return col.LastChanged()
}

// AverageTemperature returns the mean temperature observed on the pin after
// since. ok is false when the pin is unknown or holds no reading in the
// window.
func (t *Tracker) AverageTemperature(node string, pinNum uint8, since time.Time) (pin.Temperature, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	col, ok := t.cols[Key{Node: node, Pin: pinNum}]
	if !ok {
		return 0, false
	}
	return col.AverageTemperature(since)
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.mqttConnected = connected
	t.mu.Unlock()
}

// PinStatus is one row of a snapshot.
type PinStatus struct {
	Node          string
	Pin           uint8
	Observations  int
	Transitions   int
	State         string // "ON", "OFF", or "UNKNOWN"
	LastValue     pin.Value
	LastChangedAt time.Time // zero when no transition recorded
	AvgTemp       pin.Temperature
	HasAvgTemp    bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Pins          []PinStatus
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Snapshot returns a point-in-time copy of every tracked pin, evaluated at
// now. Rows are sorted by node then pin.
func (t *Tracker) Snapshot(now time.Time) Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	pins := make([]PinStatus, 0, len(t.cols))
	since := now.Add(-t.cfg.AverageWindow)
	for key, col := range t.cols {
		row := PinStatus{
			Node:         key.Node,
			Pin:          key.Pin,
			Observations: col.Len(),
			Transitions:  col.ChangedLen(),
			State:        activity(col, now),
		}
		if v, ok := col.LastChangedValue(); ok {
			row.LastValue = v
		}
		if at, ok := col.LastChangedAt(); ok {
			row.LastChangedAt = at
		}
		row.AvgTemp, row.HasAvgTemp = col.AverageTemperature(since)
		pins = append(pins, row)
	}
	sort.Slice(pins, func(i, j int) bool {
		if pins[i].Node != pins[j].Node {
			return pins[i].Node < pins[j].Node
		}
		return pins[i].Pin < pins[j].Pin
	})

	return Snapshot{
		Pins:          pins,
		StartTime:     t.startTime,
		Now:           now,
		MQTTConnected: t.mqttConnected,
		Config:        t.cfg,
	}
}

func activity(col *pin.Collection, now time.Time) string {
	switch {
	case col.IsOn(now):
		return "ON"
	case col.IsOff(now):
		return "OFF"
	default:
		return "UNKNOWN"
	}
}
