package ldisc

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/luhtfiimanal/go-linux-joystick/input"
	"github.com/luhtfiimanal/go-linux-joystick/telemetry"
)

// Session carries the state of one open transport: the framer's queue and
// the attached sink. Receive, Open, Flush and Close must be called from one
// goroutine at a time; Stats may be read concurrently.
type Session struct {
	framer *Framer
	sink   input.Sink
	open   bool
	log    zerolog.Logger

	records    atomic.Uint64
	dispatched atomic.Uint64
	errs       [numKinds]atomic.Uint64
}

// Option configures a Session.
type Option func(*Session)

// WithCapacity sets the queue and record capacity. Default DefaultCapacity.
func WithCapacity(n int) Option {
	return func(s *Session) { s.framer = NewFramer(n) }
}

// WithLogger sets the logger recoverable errors are reported to.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession returns a closed session; call Open before delivering chunks.
func NewSession(opts ...Option) *Session {
	s := &Session{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.framer == nil {
		s.framer = NewFramer(DefaultCapacity)
	}
	return s
}

// Open empties the queue and attaches sink.
func (s *Session) Open(sink input.Sink) error {
	s.framer.Reset()
	s.sink = sink
	s.open = true
	s.log.Info().Int("capacity", s.framer.Capacity()).Msg("session open")
	return nil
}

// Receive runs one chunk through framing, parsing and dispatch. All errors of
// the call are returned joined; none of them leave the session unusable.
//
// A session that is not open has no sink and no queue to fill: the chunk is
// discarded and an error wrapping input.ErrSinkUnavailable is returned.
func (s *Session) Receive(chunk []byte) error {
	if !s.open {
		err := fmt.Errorf("%w: session not open, %d bytes discarded", input.ErrSinkUnavailable, len(chunk))
		s.report(err)
		return err
	}
	err := s.framer.Feed(chunk, (*recordHandler)(s))
	if err != nil {
		s.report(err)
	}
	return err
}

// Flush discards partially received data.
func (s *Session) Flush() {
	if n := s.framer.Buffered(); n > 0 {
		s.log.Debug().Int("bytes", n).Msg("flush discards queued bytes")
	}
	s.framer.Reset()
}

// Close detaches the sink and empties the queue. Chunks received afterwards
// are discarded with input.ErrSinkUnavailable until the next Open.
func (s *Session) Close() error {
	if !s.open {
		return nil
	}
	s.framer.Reset()
	s.sink = nil
	s.open = false
	s.log.Info().Msg("session closed")
	return nil
}

// Buffered returns the number of bytes queued for the next record.
func (s *Session) Buffered() int { return s.framer.Buffered() }

// Pending reports whether a complete record is queued. The transport calls
// Receive(nil) while Pending holds so no record waits for more input.
func (s *Session) Pending() bool { return s.framer.Pending() }

// Capacity returns the queue capacity. A chunk larger than this cannot be
// queued whole.
func (s *Session) Capacity() int { return s.framer.Capacity() }

// Stats counts the outcome of every record and error seen.
type Stats struct {
	// Framed counts terminated lines, including oversized and non-UTF-8
	// ones dropped before parsing.
	Framed uint64
	// Records counts records handed to the parser.
	Records    uint64
	Dispatched uint64
	Errors     [numKinds]uint64
}

// ErrorCount returns the number of errors of kind k.
func (st Stats) ErrorCount(k ErrorKind) uint64 {
	if k < 0 || k >= numKinds {
		return 0
	}
	return st.Errors[k]
}

// Stats returns a snapshot of the counters. It is safe to call while another
// goroutine is delivering chunks.
func (s *Session) Stats() Stats {
	st := Stats{
		Framed:     s.framer.Framed(),
		Records:    s.records.Load(),
		Dispatched: s.dispatched.Load(),
	}
	for i := range s.errs {
		st.Errors[i] = s.errs[i].Load()
	}
	return st
}

func (s *Session) report(err error) {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range j.Unwrap() {
			s.report(e)
		}
		return
	}
	k := Kind(err)
	s.errs[k].Add(1)
	s.log.Warn().Err(err).Stringer("kind", k).Int("queued", s.framer.Buffered()).Msg("recoverable receive error")
}

type recordHandler Session

// HandleRecord parses rec and dispatches the sample to the sink.
func (h *recordHandler) HandleRecord(rec []byte) error {
	s := (*Session)(h)
	s.records.Add(1)
	sample, err := telemetry.Parse(rec)
	if err != nil {
		return err
	}
	if err := input.Dispatch(s.sink, sample); err != nil {
		return err
	}
	s.dispatched.Add(1)
	return nil
}
