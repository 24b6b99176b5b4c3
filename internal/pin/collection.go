package pin

import (
	"time"

	"github.com/sweeney/pin-tracker/internal/calc"
)

// HistoryDepth is the fixed capacity of each per-pin history buffer.
const HistoryDepth = 20

// ring is a fixed-capacity newest-first buffer of states. Once full, a push
// overwrites the oldest entry. Not safe for concurrent use — caller must
// synchronize.
type ring struct {
	buf   []State
	head  int // next write position
	count int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]State, capacity)}
}

func (r *ring) push(s State) {
	r.buf[r.head] = s
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// at returns the i-th newest entry; at(0) is the most recent push.
// The caller must ensure i < len().
func (r *ring) at(i int) State {
	idx := (r.head - 1 - i + 2*len(r.buf)) % len(r.buf)
	return r.buf[idx]
}

func (r *ring) front() (State, bool) {
	if r.count == 0 {
		return State{}, false
	}
	return r.at(0), true
}

func (r *ring) len() int {
	return r.count
}

// Collection holds the bounded history of one pin: every raw observation in
// states, and only detected transitions in changed. Both are newest-first
// and capped at HistoryDepth. Not safe for concurrent use — callers
// serialize access (see tracker.Tracker).
type Collection struct {
	states  *ring
	changed *ring
}

// NewCollection creates an empty Collection.
func NewCollection() *Collection {
	return &Collection{
		states:  newRing(HistoryDepth),
		changed: newRing(HistoryDepth),
	}
}

// CollectionFromStates seeds a Collection by replaying states in order,
// oldest to newest, through Push. The result is identical to incremental
// construction.
func CollectionFromStates(states []State) *Collection {
	c := NewCollection()
	for _, s := range states {
		c.Push(s)
	}
	return c
}

// Push records an observation. A transition is recorded when the value
// differs from the most recent changed entry of the same kind:
// Digital on a boolean flip, Analog only on a zero-boundary crossing
// (0 to >0 or >0 to 0). Temperature readings never count as transitions.
func (c *Collection) Push(state State) {
	switch v := state.Value.(type) {
	case Digital:
		prev, ok := c.lastChangedDigital()
		if !ok || prev != v {
			c.changed.push(state)
		}
	case Analog:
		prev, ok := c.lastChangedAnalog()
		if !ok || (prev == 0 && v > 0) || (prev > 0 && v == 0) {
			c.changed.push(state)
		}
	case Temperature:
		// raw history only
	}
	c.states.push(state)
}

func (c *Collection) lastChangedDigital() (Digital, bool) {
	for i := 0; i < c.changed.len(); i++ {
		if v, ok := c.changed.at(i).Value.(Digital); ok {
			return v, true
		}
	}
	return false, false
}

func (c *Collection) lastChangedAnalog() (Analog, bool) {
	for i := 0; i < c.changed.len(); i++ {
		if v, ok := c.changed.at(i).Value.(Analog); ok {
			return v, true
		}
	}
	return 0, false
}

// IsOn reports whether the pin is currently on: the latest transition must
// exist, must not have expired at now, and must carry an on-shaped value.
func (c *Collection) IsOn(now time.Time) bool {
	front, ok := c.changed.front()
	if !ok || c.expired(front, now) {
		return false
	}
	return ValueIsOn(front.Value)
}

// IsOff is the mirror of IsOn. An expired or Temperature-valued latest
// transition satisfies neither predicate.
func (c *Collection) IsOff(now time.Time) bool {
	front, ok := c.changed.front()
	if !ok || c.expired(front, now) {
		return false
	}
	return ValueIsOff(front.Value)
}

func (c *Collection) expired(s State, now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// LastChanged returns the most recent transition.
func (c *Collection) LastChanged() (State, bool) {
	return c.changed.front()
}

// LastChangedAt returns the timestamp of the most recent transition.
func (c *Collection) LastChangedAt() (time.Time, bool) {
	front, ok := c.changed.front()
	if !ok {
		return time.Time{}, false
	}
	return front.ObservedAt, true
}

// LastChangedValue returns the value of the most recent transition.
func (c *Collection) LastChangedValue() (Value, bool) {
	front, ok := c.changed.front()
	if !ok {
		return nil, false
	}
	return front.Value, true
}

// AverageTemperature returns the mean of all temperature readings observed
// after since. ok is false when no reading passes the filter — an absent
// average is distinct from an average of zero.
func (c *Collection) AverageTemperature(since time.Time) (Temperature, bool) {
	var readings []float64
	for i := 0; i < c.states.len(); i++ {
		s := c.states.at(i)
		if !s.ObservedAt.After(since) {
			continue
		}
		if t, ok := s.Value.(Temperature); ok {
			readings = append(readings, float64(t))
		}
	}
	if len(readings) == 0 {
		return 0, false
	}
	return Temperature(calc.Average(readings)), true
}

// Len returns the number of raw observations currently held.
func (c *Collection) Len() int {
	return c.states.len()
}

// ChangedLen returns the number of transitions currently held.
func (c *Collection) ChangedLen() int {
	return c.changed.len()
}
