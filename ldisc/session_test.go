package ldisc_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/luhtfiimanal/go-linux-joystick/input"
	"github.com/luhtfiimanal/go-linux-joystick/input/inputtest"
	"github.com/luhtfiimanal/go-linux-joystick/ldisc"
	"github.com/luhtfiimanal/go-linux-joystick/telemetry"
)

func openSession(t *testing.T, opts ...ldisc.Option) (*ldisc.Session, *inputtest.Recorder) {
	t.Helper()
	rec := &inputtest.Recorder{}
	s := ldisc.NewSession(opts...)
	require.NoError(t, s.Open(rec))
	t.Cleanup(func() { s.Close() })
	return s, rec
}

func TestSession_WholeRecord(t *testing.T) {
	s, rec := openSession(t)
	require.NoError(t, s.Receive([]byte("X:10,Y:-20,Z:30,A:1,B:0\n")))
	require.Equal(t, inputtest.Report(10, -20, 1, 0), rec.Calls())
}

func TestSession_SplitRecord(t *testing.T) {
	s, rec := openSession(t)
	require.NoError(t, s.Receive([]byte("X:10,Y:-2")))
	require.Empty(t, rec.Calls())
	require.NoError(t, s.Receive([]byte("0,Z:30,A:1,B:0\n")))
	require.Equal(t, inputtest.Report(10, -20, 1, 0), rec.Calls())
}

func TestSession_ChunkSplitInvariance(t *testing.T) {
	record := []byte("X:-731,Y:402,Z:-998,A:0,B:1\r\n")
	want := inputtest.Report(-731, 402, 0, 1)

	// Every two-way and three-way split of the record.
	for i := 0; i <= len(record); i++ {
		for j := i; j <= len(record); j++ {
			s, rec := openSession(t)
			for _, chunk := range [][]byte{record[:i], record[i:j], record[j:]} {
				require.NoError(t, s.Receive(chunk))
			}
			require.Equal(t, want, rec.Calls(), "split at %d,%d", i, j)
		}
	}

	// One byte at a time.
	s, rec := openSession(t)
	for _, b := range record {
		require.NoError(t, s.Receive([]byte{b}))
	}
	require.Equal(t, want, rec.Calls())
}

func TestSession_InvalidValue(t *testing.T) {
	s, rec := openSession(t)
	err := s.Receive([]byte("X:10,Y:abc,Z:30,A:0,B:0\n"))
	require.ErrorIs(t, err, telemetry.ErrInvalidValue)
	require.Empty(t, rec.Calls())
	require.Equal(t, uint64(1), s.Stats().ErrorCount(ldisc.KindInvalidValue))
}

func TestSession_UnknownKey(t *testing.T) {
	s, rec := openSession(t)
	err := s.Receive([]byte("Q:1\n"))
	require.ErrorIs(t, err, telemetry.ErrUnknownKey)
	require.Empty(t, rec.Calls())
}

func TestSession_EmptyRecordIsFormatError(t *testing.T) {
	s, rec := openSession(t)
	require.NoError(t, s.Receive([]byte("A:1\n")))
	err := s.Receive([]byte("\n"))
	require.ErrorIs(t, err, telemetry.ErrMissingValue)
	require.Equal(t, 1, rec.Syncs())
}

func TestSession_OverflowWithoutTerminator(t *testing.T) {
	s, rec := openSession(t)
	err := s.Receive(bytes.Repeat([]byte("7"), 2000))
	require.ErrorIs(t, err, ldisc.ErrQueueOverflow)
	require.Equal(t, ldisc.DefaultCapacity, s.Buffered())
	require.Empty(t, rec.Calls())

	// The truncated record is dropped when the terminator arrives and the
	// stream recovers on the next one.
	err = s.Receive([]byte("\nX:1,Y:2,Z:3,A:0,B:0\n"))
	require.ErrorIs(t, err, ldisc.ErrOversizedRecord)
	require.Empty(t, rec.Calls())

	require.NoError(t, s.Receive(nil))
	require.Equal(t, inputtest.Report(1, 2, 0, 0), rec.Calls())
}

func TestSession_QueueNeverExceedsCapacity(t *testing.T) {
	s, _ := openSession(t, ldisc.WithCapacity(64))
	chunks := []string{
		strings.Repeat("X:1,", 30),
		"\n",
		"Y:2\nA:1\nB:",
		strings.Repeat("Z", 100),
		"\r\n\n\n",
		"",
	}
	for range 20 {
		for _, c := range chunks {
			_ = s.Receive([]byte(c))
			require.LessOrEqual(t, s.Buffered(), 64)
		}
	}
}

func TestSession_TwoTerminatorsInOneChunk(t *testing.T) {
	s, rec := openSession(t)
	require.NoError(t, s.Receive([]byte("X:1,Y:1,A:0,B:0\nX:2,Y:2,A:1,B:1\n")))
	require.Equal(t, inputtest.Report(1, 1, 0, 0), rec.Calls())

	rec.Reset()
	require.NoError(t, s.Receive(nil))
	require.Equal(t, inputtest.Report(2, 2, 1, 1), rec.Calls())
}

func TestSession_SinkUnavailable(t *testing.T) {
	s := ldisc.NewSession()
	err := s.Receive([]byte("X:1\n"))
	require.ErrorIs(t, err, input.ErrSinkUnavailable)

	rec := &inputtest.Recorder{}
	require.NoError(t, s.Open(rec))
	require.NoError(t, s.Receive([]byte("X:1,Y:2,Z:3,A:0,B:1\n")))
	require.Equal(t, 1, rec.Syncs())

	require.NoError(t, s.Close())
	err = s.Receive([]byte("X:1\n"))
	require.ErrorIs(t, err, input.ErrSinkUnavailable)
	require.Equal(t, 1, rec.Syncs())
	require.Zero(t, s.Buffered())
	require.NoError(t, s.Close())
}

func TestSession_OpenResetsQueue(t *testing.T) {
	s, rec := openSession(t)
	require.NoError(t, s.Receive([]byte("garbage,X:")))
	require.NoError(t, s.Open(rec))
	require.Zero(t, s.Buffered())
	require.NoError(t, s.Receive([]byte("X:4,Y:5,A:1,B:1\n")))
	require.Equal(t, inputtest.Report(4, 5, 1, 1), rec.Calls())
}

func TestSession_Flush(t *testing.T) {
	s, rec := openSession(t)
	require.NoError(t, s.Receive([]byte("X:4,Y")))
	s.Flush()
	s.Flush()
	require.Zero(t, s.Buffered())
	require.NoError(t, s.Receive([]byte("X:9,Y:8,A:0,B:0\n")))
	require.Equal(t, inputtest.Report(9, 8, 0, 0), rec.Calls())
}

func TestSession_StatsAndLogging(t *testing.T) {
	var buf bytes.Buffer
	s, _ := openSession(t, ldisc.WithLogger(zerolog.New(&buf)), ldisc.WithCapacity(16))

	require.NoError(t, s.Receive([]byte("X:1\n")))
	require.Error(t, s.Receive([]byte("Q:1\nX:1,Y:2,Z:3,A:4,B:5")))
	s.Flush()
	require.Error(t, s.Receive([]byte{'A', ':', 0xff, '\n'}))

	st := s.Stats()
	require.Equal(t, uint64(2), st.Records)
	require.Equal(t, uint64(1), st.Dispatched)
	require.Equal(t, uint64(1), st.ErrorCount(ldisc.KindUnknownKey))
	require.Equal(t, uint64(1), st.ErrorCount(ldisc.KindQueueOverflow))
	require.Equal(t, uint64(1), st.ErrorCount(ldisc.KindEncoding))
	require.Contains(t, buf.String(), `"kind":"unknown_key"`)
	require.Contains(t, buf.String(), `"kind":"queue_overflow"`)
}

type nopSink struct{ syncs int }

func (n *nopSink) SetAxis(input.Axis, int32)     {}
func (n *nopSink) SetButton(input.Button, int32) {}
func (n *nopSink) Sync() error                   { n.syncs++; return nil }

func TestSession_ReceiveDoesNotAllocate(t *testing.T) {
	sink := &nopSink{}
	s := ldisc.NewSession()
	require.NoError(t, s.Open(sink))

	first := []byte("X:10,Y:-2")
	second := []byte("0,Z:30,A:1,B:0\nX:1")
	allocs := testing.AllocsPerRun(100, func() {
		s.Flush()
		if err := s.Receive(first); err != nil {
			t.Fatal(err)
		}
		if err := s.Receive(second); err != nil {
			t.Fatal(err)
		}
	})
	require.Zero(t, allocs)
	require.Positive(t, sink.syncs)
}

func TestSession_PendingDrainsBurst(t *testing.T) {
	s, rec := openSession(t)
	require.NoError(t, s.Receive([]byte("X:1\nX:2\nX:3\n")))
	require.True(t, s.Pending())

	for s.Pending() {
		require.NoError(t, s.Receive(nil))
	}
	require.Equal(t, 3, rec.Syncs())
	require.Zero(t, s.Buffered())

	// No backlog left: the next record is dispatched on its own call.
	require.NoError(t, s.Receive([]byte("X:4\n")))
	require.False(t, s.Pending())
	require.Equal(t, 4, rec.Syncs())
	require.Equal(t, "axis X 4", string(rec.Calls()[15]))
}

func TestSession_FramedCountsDroppedLines(t *testing.T) {
	s, _ := openSession(t, ldisc.WithCapacity(8))
	require.Error(t, s.Receive([]byte("0123456789\n")))
	require.Error(t, s.Receive([]byte{0xfe, '\n'}))
	require.NoError(t, s.Receive([]byte("A:1\n")))

	st := s.Stats()
	require.Equal(t, uint64(3), st.Framed)
	require.Equal(t, uint64(1), st.Records)
	require.Equal(t, uint64(1), st.Dispatched)
}

func TestSession_ReceiveWhileClosedDiscards(t *testing.T) {
	s := ldisc.NewSession()
	err := s.Receive([]byte("X:1,Y:"))
	require.ErrorIs(t, err, input.ErrSinkUnavailable)
	require.Zero(t, s.Buffered())

	rec := &inputtest.Recorder{}
	require.NoError(t, s.Open(rec))
	require.NoError(t, s.Receive([]byte("X:2\n")))
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.Receive([]byte("X:1")), input.ErrSinkUnavailable)
	require.Zero(t, s.Buffered())
	require.Equal(t, uint64(2), s.Stats().ErrorCount(ldisc.KindSinkUnavailable))
}
