// Package ldisc turns a serial byte stream into input reports.
//
// A Session is opened with a sink, fed every chunk the transport reads, and
// closed when the transport goes away. Each Receive is synchronous: the
// Framer joins the chunk with bytes queued by earlier calls, at most one
// complete record is parsed, and a valid sample is dispatched to the sink
// with a single sync. Malformed, oversized or overflowing input is dropped
// and reported; the session is always ready for the next chunk.
//
// Memory is fixed at construction. Receive does not allocate unless it has an
// error to report.
package ldisc
