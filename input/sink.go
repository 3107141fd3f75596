// Package input defines the device sink that parsed telemetry is reported to
// and provides two implementations: an in-process joystick Device and a
// LogSink that records every report.
package input

import (
	"errors"
	"fmt"

	"github.com/luhtfiimanal/go-linux-joystick/telemetry"
)

// ErrSinkUnavailable is returned when a sample is dispatched with no sink
// attached.
var ErrSinkUnavailable = errors.New("input: sink unavailable")

// Axis identifies an absolute axis slot.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	numAxes
)

// String returns the axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// Button identifies a key slot.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	numButtons
)

// String returns the button name.
func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// Sink receives axis and button updates. Values set since the previous Sync
// must become visible to readers together when Sync is called.
type Sink interface {
	SetAxis(id Axis, value int32)
	SetButton(id Button, pressed int32)
	Sync() error
}

// Dispatch reports the positional axes and buttons of s followed by one Sync.
// Z is not forwarded.
func Dispatch(sink Sink, s telemetry.Sample) error {
	if sink == nil {
		return ErrSinkUnavailable
	}
	sink.SetAxis(AxisX, s.X)
	sink.SetAxis(AxisY, s.Y)
	sink.SetButton(ButtonA, s.A)
	sink.SetButton(ButtonB, s.B)
	if err := sink.Sync(); err != nil {
		return fmt.Errorf("input: sync: %w", err)
	}
	return nil
}
