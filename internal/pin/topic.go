package pin

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// State is a single observation of a pin. Immutable once constructed.
type State struct {
	Pin        uint8
	Value      Value
	ObservedAt time.Time
	// ExpiresAt, when set, schedules the observation to stop counting as
	// on or off after that instant.
	ExpiresAt *time.Time
}

// IsOn reports whether the observed value is on-shaped. Expiry is not
// considered here; see Collection.IsOn.
func (s State) IsOn() bool {
	return ValueIsOn(s.Value)
}

// Operation is a parsed, routable unit of work: one observation addressed
// to one node.
type Operation struct {
	State State
	Node  string
}

// ParseTopic parses a /-delimited topic plus its payload into an Operation.
// The topic is read from the end; two shapes are accepted:
//
//	<node>/current/<kind>/<pin>              e.g. node1/current/analog/3
//	<node>/timeout/<seconds>/<kind>/<pin>    e.g. node1/timeout/3600/analog/8
//
// The timeout form schedules expiry at receivedAt + seconds. The node name
// is everything before the marker and may itself contain slashes.
func ParseTopic(topic, payload string, receivedAt time.Time) (Operation, error) {
	segs := strings.Split(topic, "/")

	last, segs, ok := popSegment(segs)
	if !ok {
		return Operation{}, ErrMalformedTopic
	}
	pinNum, err := strconv.ParseUint(last, 10, 8)
	if err != nil {
		return Operation{}, fmt.Errorf("%w: %q", ErrInvalidPin, last)
	}

	kind, segs, ok := popSegment(segs)
	if !ok {
		return Operation{}, ErrMissingKind
	}
	value, err := DecodeValue(kind, payload)
	if err != nil {
		return Operation{}, err
	}

	marker, segs, ok := popSegment(segs)
	if !ok {
		return Operation{}, ErrMalformedTopic
	}

	state := State{
		Pin:        uint8(pinNum),
		Value:      value,
		ObservedAt: receivedAt,
	}

	if marker == "current" {
		node := strings.Join(segs, "/")
		if node == "" {
			return Operation{}, ErrMissingNode
		}
		return Operation{State: state, Node: node}, nil
	}

	seconds, err := strconv.ParseUint(marker, 10, 32)
	if err != nil {
		return Operation{}, fmt.Errorf("%w: %q", ErrInvalidTimeout, marker)
	}
	timeoutMarker, segs, ok := popSegment(segs)
	if !ok || timeoutMarker != "timeout" {
		return Operation{}, ErrMissingTimeoutMarker
	}
	node := strings.Join(segs, "/")
	if node == "" {
		return Operation{}, ErrMissingNode
	}

	expires := receivedAt.Add(time.Duration(seconds) * time.Second)
	state.ExpiresAt = &expires
	return Operation{State: state, Node: node}, nil
}

// popSegment removes and returns the trailing segment.
func popSegment(segs []string) (string, []string, bool) {
	if len(segs) == 0 {
		return "", nil, false
	}
	return segs[len(segs)-1], segs[:len(segs)-1], true
}
