// Package inputtest provides a Sink that records every call, for tests.
package inputtest

import (
	"fmt"
	"sync"

	"github.com/luhtfiimanal/go-linux-joystick/input"
)

// Call is one recorded sink call, formatted as "axis X 10", "button A 1" or
// "sync".
type Call string

// Recorder records sink calls. It is safe for concurrent use so tests can
// read it while a transport goroutine delivers.
type Recorder struct {
	mu      sync.Mutex
	calls   []Call
	SyncErr error
}

// SetAxis records an "axis" call.
func (r *Recorder) SetAxis(id input.Axis, value int32) {
	r.add(Call(fmt.Sprintf("axis %v %d", id, value)))
}

// SetButton records a "button" call.
func (r *Recorder) SetButton(id input.Button, pressed int32) {
	r.add(Call(fmt.Sprintf("button %v %d", id, pressed)))
}

// Sync records a "sync" call and returns SyncErr.
func (r *Recorder) Sync() error {
	r.add("sync")
	return r.SyncErr
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Syncs counts recorded sync calls.
func (r *Recorder) Syncs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == "sync" {
			n++
		}
	}
	return n
}

// Reset drops all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func (r *Recorder) add(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

// Report is the call sequence a dispatched sample produces.
func Report(x, y, a, b int32) []Call {
	return []Call{
		Call(fmt.Sprintf("axis X %d", x)),
		Call(fmt.Sprintf("axis Y %d", y)),
		Call(fmt.Sprintf("button A %d", a)),
		Call(fmt.Sprintf("button B %d", b)),
		"sync",
	}
}
