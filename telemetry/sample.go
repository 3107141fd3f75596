// Package telemetry parses the textual sensor records emitted by the
// micro:bit firmware.
//
// A record is one line of comma separated key:value fields:
//
//	X:-312,Y:88,Z:-1004,A:1,B:0
//
// X and Y are the tilt axes, Z is reported for diagnostics only, and A and B
// carry the button states as integers.
package telemetry

import (
	"bytes"
	"strconv"
)

var comma = []byte{','}

// Sample is one fully parsed record.
type Sample struct {
	X int32
	Y int32
	Z int32
	A int32
	B int32
}

// Parse decodes a record with its line terminator already removed.
//
// Fields are validated in order and the first failure aborts the record, so
// a Sample is only returned when every field parsed. Keys may appear in any
// order; a repeated key overwrites the earlier value and absent keys stay 0.
// Parse does not allocate on success.
func Parse(rec []byte) (Sample, error) {
	var s Sample
	for {
		field, rest, more := bytes.Cut(rec, comma)
		rec = rest
		sep := bytes.IndexByte(field, ':')
		if sep < 0 {
			return Sample{}, fieldError(ErrMissingValue, field, nil)
		}
		key, raw := field[:sep], field[sep+1:]
		v, ok := parseInt32(raw)
		if !ok {
			return Sample{}, fieldError(ErrInvalidValue, key, raw)
		}
		if len(key) != 1 {
			return Sample{}, fieldError(ErrUnknownKey, key, raw)
		}
		switch key[0] {
		case 'X':
			s.X = v
		case 'Y':
			s.Y = v
		case 'Z':
			s.Z = v
		case 'A':
			s.A = v
		case 'B':
			s.B = v
		default:
			return Sample{}, fieldError(ErrUnknownKey, key, raw)
		}
		if !more {
			return s, nil
		}
	}
}

// ParseText is Parse for callers holding a string.
func ParseText(rec string) (Sample, error) {
	return Parse([]byte(rec))
}

// AppendRecord appends the wire form of s, including the trailing newline.
func (s Sample) AppendRecord(dst []byte) []byte {
	dst = append(dst, "X:"...)
	dst = strconv.AppendInt(dst, int64(s.X), 10)
	dst = append(dst, ",Y:"...)
	dst = strconv.AppendInt(dst, int64(s.Y), 10)
	dst = append(dst, ",Z:"...)
	dst = strconv.AppendInt(dst, int64(s.Z), 10)
	dst = append(dst, ",A:"...)
	dst = strconv.AppendInt(dst, int64(s.A), 10)
	dst = append(dst, ",B:"...)
	dst = strconv.AppendInt(dst, int64(s.B), 10)
	return append(dst, '\n')
}

// String returns the wire form of s without the newline.
func (s Sample) String() string {
	b := s.AppendRecord(make([]byte, 0, 64))
	return string(b[:len(b)-1])
}

// parseInt32 accepts an optional sign followed by decimal digits.
func parseInt32(b []byte) (int32, bool) {
	if len(b) == 0 {
		return 0, false
	}
	neg := false
	switch b[0] {
	case '-':
		neg = true
		b = b[1:]
	case '+':
		b = b[1:]
	}
	if len(b) == 0 {
		return 0, false
	}
	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
		if n > 1<<31 {
			return 0, false
		}
	}
	if neg {
		n = -n
	}
	if n > 1<<31-1 || n < -1<<31 {
		return 0, false
	}
	return int32(n), true
}
