// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/stream_test.go
// Summary: Exercises the data-stream cursor boundary behaviour.

package protocol

import (
	"errors"
	"testing"
)

func TestNextByteSequence(t *testing.T) {
	s := NewStream([]byte{0x11, 0x22, 0x33, 0x44, 0x55})
	want := []byte{0x11, 0x22, 0x33, 0x44, 0x55}
	for i, w := range want {
		b, err := s.NextByte()
		if err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		if b != w {
			t.Fatalf("read %d: got 0x%02X want 0x%02X", i, b, w)
		}
		if s.Pos() != i+1 {
			t.Fatalf("pos after read %d: got %d want %d", i, s.Pos(), i+1)
		}
	}

	if _, err := s.NextByte(); !errors.Is(err, ErrBufferExhausted) {
		t.Fatalf("sixth read: got %v want ErrBufferExhausted", err)
	}
	if s.Pos() != 5 {
		t.Fatalf("pos after exhausted read: got %d want 5", s.Pos())
	}
}

func TestNextByteEmptyBuffer(t *testing.T) {
	for _, buf := range [][]byte{nil, {}} {
		s := NewStream(buf)
		if _, err := s.NextByte(); !errors.Is(err, ErrBufferExhausted) {
			t.Errorf("buffer %v: got %v want ErrBufferExhausted", buf, err)
		}
	}
}

func TestPeekOffsetBoundaries(t *testing.T) {
	buf := make([]byte, 100)
	for i := range buf {
		buf[i] = byte(i)
	}
	s := NewStream(buf)
	for i := 0; i < 90; i++ {
		if _, err := s.NextByte(); err != nil {
			t.Fatalf("advance failed at %d: %v", i, err)
		}
	}

	if _, err := s.PeekOffset(10); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("peek index 100: got %v want ErrOutOfRange", err)
	}
	b, err := s.PeekOffset(9)
	if err != nil {
		t.Fatalf("peek index 99 failed: %v", err)
	}
	if b != 99 {
		t.Fatalf("peek index 99: got %d want 99", b)
	}
	if s.Pos() != 90 {
		t.Fatalf("peek mutated pos: got %d want 90", s.Pos())
	}
}

func TestPeekOffsetNegative(t *testing.T) {
	s := NewStream([]byte{1, 2, 3})
	if _, err := s.NextByte(); err != nil {
		t.Fatal(err)
	}
	b, err := s.PeekOffset(-1)
	if err != nil {
		t.Fatalf("peek -1 failed: %v", err)
	}
	if b != 1 {
		t.Fatalf("peek -1: got %d want 1", b)
	}
	if _, err := s.PeekOffset(-2); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("peek -2: got %v want ErrOutOfRange", err)
	}
}

func TestHasNextUsesLogicalSize(t *testing.T) {
	// Physical buffer longer than the logical stream: HasNext is bounded
	// by the logical size, reads by the physical one.
	s := NewStreamWithSize([]byte{1, 2, 3, 4}, 2)
	if !s.HasNext() {
		t.Fatal("expected HasNext at pos 0")
	}
	if _, err := s.NextByte(); err != nil {
		t.Fatal(err)
	}
	if !s.HasNext() {
		t.Fatal("expected HasNext at pos 1")
	}
	if _, err := s.NextByte(); err != nil {
		t.Fatal(err)
	}
	if s.HasNext() {
		t.Fatal("HasNext at logical end should be false")
	}
	// Boundary is exclusive; the physical bytes remain readable.
	if b, err := s.NextByte(); err != nil || b != 3 {
		t.Fatalf("physical read past logical end: got %d, %v", b, err)
	}
}

func TestSegment(t *testing.T) {
	s := NewStream([]byte{1, 2, 3, 4})
	seg, err := s.Segment(3)
	if err != nil {
		t.Fatalf("segment failed: %v", err)
	}
	if len(seg) != 3 || seg[0] != 1 || seg[2] != 3 {
		t.Fatalf("segment content wrong: %v", seg)
	}
	if s.Pos() != 3 {
		t.Fatalf("pos after segment: got %d want 3", s.Pos())
	}
	if _, err := s.Segment(2); !errors.Is(err, ErrBufferExhausted) {
		t.Fatalf("oversized segment: got %v want ErrBufferExhausted", err)
	}
	if s.Pos() != 3 {
		t.Fatalf("failed segment moved pos: got %d want 3", s.Pos())
	}
}
