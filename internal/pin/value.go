// Package pin contains pure business logic for per-pin state tracking.
// This package has NO external dependencies (no MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package pin

import "strconv"

// Temperature is a temperature reading in degrees. It doubles as the type
// for externally configured thresholds.
type Temperature float64

// Sub returns the difference t - other.
func (t Temperature) Sub(other Temperature) Temperature {
	return t - other
}

// Abs returns the magnitude of t.
func (t Temperature) Abs() Temperature {
	if t < 0 {
		return -t
	}
	return t
}

// Value is the reading carried by a pin message. Exactly three kinds exist:
// Temperature, Analog, and Digital. The set is closed — consumers type
// switch over all three.
type Value interface {
	pinValue()
}

// Analog is a raw analog reading, conventionally 0..=1023.
type Analog uint16

// Digital is an on/off reading.
type Digital bool

func (Temperature) pinValue() {}
func (Analog) pinValue()      {}
func (Digital) pinValue()     {}

// ValueIsOn reports whether v represents an active reading.
// Temperature readings are neither on nor off.
func ValueIsOn(v Value) bool {
	switch v := v.(type) {
	case Digital:
		return bool(v)
	case Analog:
		return v > 0
	case Temperature:
		return false
	}
	return false
}

// ValueIsOff reports whether v represents an inactive reading.
// Temperature readings are neither on nor off.
func ValueIsOff(v Value) bool {
	switch v := v.(type) {
	case Digital:
		return !bool(v)
	case Analog:
		return v == 0
	case Temperature:
		return false
	}
	return false
}

// ValueAsUint16 coerces an on/off-capable value to a single unsigned scale:
// Digital true is 1, false is 0, Analog is itself. Temperature has no
// meaningful coercion and maps to 0.
func ValueAsUint16(v Value) uint16 {
	switch v := v.(type) {
	case Digital:
		if v {
			return 1
		}
		return 0
	case Analog:
		return uint16(v)
	case Temperature:
		return 0
	}
	return 0
}

// Value kind tags as they appear in topics.
const (
	KindDigital     = "digital"
	KindAnalog      = "analog"
	KindTemperature = "temperature"
)

// DecodeValue parses a payload string according to the kind tag taken from
// the topic. Pure function; all failures map to one of the sentinel decode
// errors.
func DecodeValue(kind, payload string) (Value, error) {
	switch kind {
	case KindDigital:
		n, err := strconv.ParseUint(payload, 10, 8)
		if err != nil {
			return nil, ErrInvalidDigitalPayload
		}
		return Digital(n > 0), nil
	case KindAnalog:
		n, err := strconv.ParseUint(payload, 10, 16)
		if err != nil {
			return nil, ErrInvalidAnalogPayload
		}
		return Analog(n), nil
	case KindTemperature:
		f, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return nil, ErrInvalidTemperaturePayload
		}
		return Temperature(f), nil
	default:
		return nil, ErrUnknownValueKind
	}
}
