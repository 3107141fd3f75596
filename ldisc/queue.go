package ldisc

import "bytes"

// DefaultCapacity bounds both the queue and the longest record accepted.
const DefaultCapacity = 1024

// Queue is a fixed-capacity byte FIFO. Its storage is allocated once by
// NewQueue and it never grows.
type Queue struct {
	buf  []byte
	head int
	n    int
}

// NewQueue returns an empty queue holding at most capacity bytes.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{buf: make([]byte, capacity)}
}

// Push appends the longest prefix of p that fits and returns its length.
func (q *Queue) Push(p []byte) int {
	free := len(q.buf) - q.n
	if len(p) > free {
		p = p[:free]
	}
	tail := (q.head + q.n) % len(q.buf)
	c := copy(q.buf[tail:], p)
	if c < len(p) {
		copy(q.buf, p[c:])
	}
	q.n += len(p)
	return len(p)
}

// PopAll moves up to len(dst) bytes from the front of the queue into dst and
// returns how many were moved.
func (q *Queue) PopAll(dst []byte) int {
	want := min(len(dst), q.n)
	c := copy(dst[:want], q.buf[q.head:min(q.head+want, len(q.buf))])
	if c < want {
		copy(dst[c:want], q.buf)
	}
	q.head = (q.head + want) % len(q.buf)
	q.n -= want
	if q.n == 0 {
		q.head = 0
	}
	return want
}

// IndexByte returns the offset of the first c in the queue, or -1.
func (q *Queue) IndexByte(c byte) int {
	end := q.head + q.n
	if end <= len(q.buf) {
		return bytes.IndexByte(q.buf[q.head:end], c)
	}
	if i := bytes.IndexByte(q.buf[q.head:], c); i >= 0 {
		return i
	}
	if i := bytes.IndexByte(q.buf[:end-len(q.buf)], c); i >= 0 {
		return len(q.buf) - q.head + i
	}
	return -1
}

// Len returns the number of queued bytes.
func (q *Queue) Len() int { return q.n }

// Cap returns the fixed capacity.
func (q *Queue) Cap() int { return len(q.buf) }

// Reset empties the queue.
func (q *Queue) Reset() {
	q.head = 0
	q.n = 0
}
