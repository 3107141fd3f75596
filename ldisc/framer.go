package ldisc

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"
	"unicode/utf8"
)

// RecordHandler consumes one framed record. rec excludes the line terminator
// and is only valid for the duration of the call.
type RecordHandler interface {
	HandleRecord(rec []byte) error
}

// Framer reassembles newline-terminated records from arbitrarily split
// chunks. At most one record is produced per Feed; anything after the first
// newline of a chunk is queued, and a record completed inside the queue is
// produced by the following Feed.
type Framer struct {
	q       *Queue
	scratch []byte
	framed  atomic.Uint64
}

// NewFramer returns a framer whose queue and longest record are both bounded
// by capacity bytes.
func NewFramer(capacity int) *Framer {
	q := NewQueue(capacity)
	return &Framer{q: q, scratch: make([]byte, q.Cap())}
}

// Feed processes one chunk. Every error is recoverable and the framer is
// ready for the next chunk when Feed returns. When both the record and the
// queued bytes fail, the errors are joined.
func (f *Framer) Feed(chunk []byte, h RecordHandler) error {
	if k := f.q.IndexByte('\n'); k >= 0 {
		f.framed.Add(1)
		n := f.q.PopAll(f.scratch[:k+1])
		recErr := f.deliver(f.scratch[:n], h)
		return join(recErr, f.push(chunk))
	}

	pos := bytes.IndexByte(chunk, '\n')
	if pos < 0 {
		return f.push(chunk)
	}

	f.framed.Add(1)
	var recErr error
	queued := f.q.PopAll(f.scratch)
	if queued+pos+1 > len(f.scratch) {
		f.q.Reset()
		recErr = fmt.Errorf("%w: %d bytes exceeds %d", ErrOversizedRecord, queued+pos+1, len(f.scratch))
	} else {
		n := queued + copy(f.scratch[queued:], chunk[:pos+1])
		recErr = f.deliver(f.scratch[:n], h)
	}
	return join(recErr, f.push(chunk[pos+1:]))
}

// deliver strips the terminator of line and hands the record to h.
func (f *Framer) deliver(line []byte, h RecordHandler) error {
	rec := line[:len(line)-1]
	if len(rec) > 0 && rec[len(rec)-1] == '\r' {
		rec = rec[:len(rec)-1]
	}
	if !utf8.Valid(rec) {
		f.q.Reset()
		return ErrEncoding
	}
	return h.HandleRecord(rec)
}

func (f *Framer) push(p []byte) error {
	if n := f.q.Push(p); n < len(p) {
		return &OverflowError{Accepted: n, Attempted: len(p)}
	}
	return nil
}

// Pending reports whether the queue already holds a complete record, which
// the next Feed produces even when its chunk is empty.
func (f *Framer) Pending() bool { return f.q.IndexByte('\n') >= 0 }

// Framed returns the number of terminated lines seen, including those
// dropped as oversized or not valid UTF-8.
func (f *Framer) Framed() uint64 { return f.framed.Load() }

// Buffered returns the number of queued bytes.
func (f *Framer) Buffered() int { return f.q.Len() }

// Capacity returns the queue capacity.
func (f *Framer) Capacity() int { return f.q.Cap() }

// Reset discards queued bytes.
func (f *Framer) Reset() { f.q.Reset() }

func join(recErr, pushErr error) error {
	switch {
	case recErr == nil:
		return pushErr
	case pushErr == nil:
		return recErr
	}
	return errors.Join(recErr, pushErr)
}
