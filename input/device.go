package input

import (
	"sync"
)

// AbsInfo describes an absolute axis the way an evdev joystick advertises it.
// Fuzz suppresses jitter: a new value within Fuzz/2 of the current one is
// dropped, and within Fuzz it is smoothed towards the current one.
type AbsInfo struct {
	Min  int32
	Max  int32
	Fuzz int32
	Flat int32
}

// DefaultAbsInfo matches the range reported by the accelerometer firmware.
func DefaultAbsInfo() AbsInfo {
	return AbsInfo{Min: -1000, Max: 1000, Fuzz: 100}
}

// State is one published report of the device.
type State struct {
	Axes    [numAxes]int32
	Buttons [numButtons]bool
	Seq     uint64
}

// Axis returns the published value of axis id.
func (s State) Axis(id Axis) int32 { return s.Axes[id] }

// Pressed reports whether button id was down in this report.
func (s State) Pressed(id Button) bool { return s.Buttons[id] }

// Device is an in-process joystick. Writers stage values with SetAxis and
// SetButton and publish them with Sync; Snapshot and subscribers only ever
// see published reports.
//
// The staging side is meant for a single writer. Snapshot and Subscribe are
// safe for concurrent use.
type Device struct {
	name string
	abs  [numAxes]AbsInfo

	pending State

	mu     sync.Mutex
	state  State
	subs   map[chan State]struct{}
	closed bool
}

// NewDevice creates a Device whose X and Y axes use abs.
func NewDevice(name string, abs AbsInfo) *Device {
	d := &Device{
		name: name,
		subs: make(map[chan State]struct{}),
	}
	for i := range d.abs {
		d.abs[i] = abs
	}
	return d
}

// Name returns the device name given to NewDevice.
func (d *Device) Name() string { return d.name }

// AbsInfo returns the parameters of axis id.
func (d *Device) AbsInfo(id Axis) AbsInfo { return d.abs[id] }

// SetAxis stages value for axis id, filtered by the axis fuzz.
func (d *Device) SetAxis(id Axis, value int32) {
	if id >= numAxes {
		return
	}
	d.pending.Axes[id] = defuzz(value, d.pending.Axes[id], d.abs[id].Fuzz)
}

// SetButton stages the state of button id; any non-zero value is pressed.
func (d *Device) SetButton(id Button, pressed int32) {
	if id >= numButtons {
		return
	}
	d.pending.Buttons[id] = pressed != 0
}

// Sync publishes the staged values as one report. Subscribers that are not
// keeping up miss reports rather than blocking the writer.
func (d *Device) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrSinkUnavailable
	}
	d.pending.Seq = d.state.Seq + 1
	d.state = d.pending
	for ch := range d.subs {
		select {
		case ch <- d.state:
		default:
		}
	}
	return nil
}

// Snapshot returns the last published report.
func (d *Device) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Subscribe returns a channel receiving every published report until cancel
// is called or the device is closed.
func (d *Device) Subscribe(buffer int) (<-chan State, func()) {
	ch := make(chan State, buffer)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		close(ch)
		return ch, func() {}
	}
	d.subs[ch] = struct{}{}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			if _, ok := d.subs[ch]; ok {
				delete(d.subs, ch)
				close(ch)
			}
		})
	}
}

// Close unregisters the device. Later Syncs fail with ErrSinkUnavailable.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	for ch := range d.subs {
		delete(d.subs, ch)
		close(ch)
	}
	return nil
}

func defuzz(value, old, fuzz int32) int32 {
	if fuzz <= 0 {
		return value
	}
	diff := int64(value) - int64(old)
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff < int64(fuzz/2):
		return old
	case diff < int64(fuzz):
		return int32((int64(old)*3 + int64(value)) / 4)
	case diff < int64(fuzz)*2:
		return int32((int64(old) + int64(value)) / 2)
	}
	return value
}
