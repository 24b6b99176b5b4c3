package pin

import "errors"

// Parse and decode errors. Parsing is the only fallible stage: once an
// Operation exists, every Collection method is total. Callers are expected
// to log and drop the offending message, never to crash.
var (
	ErrMalformedTopic            = errors.New("malformed topic")
	ErrMissingNode               = errors.New("missing node name")
	ErrMissingKind               = errors.New("missing value kind")
	ErrMissingTimeoutMarker      = errors.New("missing timeout marker")
	ErrInvalidPin                = errors.New("invalid pin number")
	ErrInvalidTimeout            = errors.New("invalid timeout seconds")
	ErrUnknownValueKind          = errors.New("unknown value kind")
	ErrInvalidDigitalPayload     = errors.New("invalid digital payload")
	ErrInvalidAnalogPayload      = errors.New("invalid analog payload")
	ErrInvalidTemperaturePayload = errors.New("invalid temperature payload")
)
