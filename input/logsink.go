package input

import (
	"github.com/rs/zerolog"
)

// LogSink logs every synchronized report and optionally forwards it to
// another sink.
type LogSink struct {
	log  zerolog.Logger
	next Sink

	axes    [numAxes]int32
	buttons [numButtons]int32
	reports uint64
}

// NewLogSink returns a sink logging at debug level to log. next may be nil.
func NewLogSink(log zerolog.Logger, next Sink) *LogSink {
	return &LogSink{log: log, next: next}
}

// SetAxis records value for the next log line and forwards it.
func (l *LogSink) SetAxis(id Axis, value int32) {
	if id < numAxes {
		l.axes[id] = value
	}
	if l.next != nil {
		l.next.SetAxis(id, value)
	}
}

// SetButton records pressed for the next log line and forwards it.
func (l *LogSink) SetButton(id Button, pressed int32) {
	if id < numButtons {
		l.buttons[id] = pressed
	}
	if l.next != nil {
		l.next.SetButton(id, pressed)
	}
}

// Sync logs the staged report and forwards the sync.
func (l *LogSink) Sync() error {
	l.reports++
	l.log.Debug().
		Uint64("report", l.reports).
		Int32("x", l.axes[AxisX]).
		Int32("y", l.axes[AxisY]).
		Int32("a", l.buttons[ButtonA]).
		Int32("b", l.buttons[ButtonB]).
		Msg("input report")
	if l.next != nil {
		return l.next.Sync()
	}
	return nil
}

// Reports returns the number of Syncs seen.
func (l *LogSink) Reports() uint64 { return l.reports }
