// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/stream.go
// Summary: Bounds-checked cursor over a received 5250 data-stream message.
// Usage: Created per received network message and discarded after full
// consumption; every other decode primitive builds on it.

package protocol

import "errors"

var (
	// ErrBufferExhausted reports a sequential read past the end of the
	// physical buffer (including reads on a nil or empty buffer).
	ErrBufferExhausted = errors.New("protocol: buffer exhausted")

	// ErrOutOfRange reports an offset peek that lands outside the buffer.
	ErrOutOfRange = errors.New("protocol: offset out of range")
)

// Stream wraps an immutable byte sequence with a read position. The logical
// stream size may be smaller than the physical buffer when the transport
// delivered trailing bytes that are not part of this record.
type Stream struct {
	buffer     []byte
	pos        int
	streamSize int
}

// NewStream wraps a full message; the logical size equals the buffer length.
func NewStream(data []byte) *Stream {
	return &Stream{buffer: data, streamSize: len(data)}
}

// NewStreamWithSize wraps a message whose logical size differs from the
// physical buffer length. The size is clamped into [0, len(data)].
func NewStreamWithSize(data []byte, size int) *Stream {
	if size < 0 {
		size = 0
	}
	if size > len(data) {
		size = len(data)
	}
	return &Stream{buffer: data, streamSize: size}
}

// NextByte returns the byte at the read position and advances it by one.
func (s *Stream) NextByte() (byte, error) {
	if s.pos >= len(s.buffer) {
		return 0, ErrBufferExhausted
	}
	b := s.buffer[s.pos]
	s.pos++
	return b, nil
}

// PeekOffset returns the byte at pos+offset without moving the read
// position. The offset may be negative, zero or positive; an index of
// exactly the buffer length is out of range, not valid.
func (s *Stream) PeekOffset(offset int) (byte, error) {
	index := s.pos + offset
	if index < 0 || index >= len(s.buffer) {
		return 0, ErrOutOfRange
	}
	return s.buffer[index], nil
}

// HasNext reports whether the read position is inside the logical stream.
func (s *Stream) HasNext() bool {
	return s.pos < s.streamSize
}

// Pos returns the current read position.
func (s *Stream) Pos() int {
	return s.pos
}

// Remaining returns the number of logical bytes left to read.
func (s *Stream) Remaining() int {
	if s.pos >= s.streamSize {
		return 0
	}
	return s.streamSize - s.pos
}

// Segment reads exactly n sequential bytes, failing before any byte is
// consumed when fewer than n remain. The returned slice aliases the
// underlying buffer; callers must not mutate it.
func (s *Stream) Segment(n int) ([]byte, error) {
	if n < 0 || s.pos+n > len(s.buffer) {
		return nil, ErrBufferExhausted
	}
	seg := s.buffer[s.pos : s.pos+n]
	s.pos += n
	return seg, nil
}
