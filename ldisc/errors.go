package ldisc

import (
	"errors"
	"fmt"

	"github.com/luhtfiimanal/go-linux-joystick/input"
	"github.com/luhtfiimanal/go-linux-joystick/telemetry"
)

var (
	ErrQueueOverflow   = errors.New("ldisc: queue overflow")
	ErrOversizedRecord = errors.New("ldisc: oversized record")
	ErrEncoding        = errors.New("ldisc: record is not valid UTF-8")
)

// OverflowError reports bytes that did not fit in the queue.
type OverflowError struct {
	Accepted  int
	Attempted int
}

// Error implements error.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("%v: wrote %d of %d bytes", ErrQueueOverflow, e.Accepted, e.Attempted)
}

// Unwrap returns ErrQueueOverflow.
func (e *OverflowError) Unwrap() error { return ErrQueueOverflow }

// ErrorKind classifies the recoverable errors a session reports.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindQueueOverflow
	KindOversizedRecord
	KindEncoding
	KindMissingValue
	KindInvalidValue
	KindUnknownKey
	KindSinkUnavailable
	KindOther
	numKinds
)

var kindNames = [numKinds]string{
	KindNone:            "none",
	KindQueueOverflow:   "queue_overflow",
	KindOversizedRecord: "oversized_record",
	KindEncoding:        "encoding",
	KindMissingValue:    "missing_value",
	KindInvalidValue:    "invalid_value",
	KindUnknownKey:      "unknown_key",
	KindSinkUnavailable: "sink_unavailable",
	KindOther:           "other",
}

// String returns the metric name of k.
func (k ErrorKind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kindNames[k]
}

// Kind classifies a single (unjoined) error.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrQueueOverflow):
		return KindQueueOverflow
	case errors.Is(err, ErrOversizedRecord):
		return KindOversizedRecord
	case errors.Is(err, ErrEncoding):
		return KindEncoding
	case errors.Is(err, telemetry.ErrMissingValue):
		return KindMissingValue
	case errors.Is(err, telemetry.ErrInvalidValue):
		return KindInvalidValue
	case errors.Is(err, telemetry.ErrUnknownKey):
		return KindUnknownKey
	case errors.Is(err, input.ErrSinkUnavailable):
		return KindSinkUnavailable
	}
	return KindOther
}
