// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: session/session_test.go
// Summary: End-to-end Apply behaviour: commit, error isolation, lifecycle.

package session

import (
	"errors"
	"testing"

	"github.com/framegrace/texel5250/protocol"
	"github.com/framegrace/texel5250/screen"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(screen.DefaultRows, screen.DefaultCols)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestApplyCommitsAndUnlocks(t *testing.T) {
	s := newTestSession(t)
	if !s.OIA().IsKeyboardLocked() {
		t.Fatal("new session should start locked")
	}

	// WTD painting attribute 33 then "AB" (EBCDIC 0xC1 0xC2).
	msg := []byte{protocol.CmdWriteToDisplay, 0x00, 0x03, 33, 0xC1, 0xC2}
	res, err := s.Apply(msg)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if res.Orders != 1 {
		t.Fatalf("orders: got %d want 1", res.Orders)
	}
	ch, _ := s.Planes().Char(1)
	if ch != 'A' {
		t.Fatalf("cell 1: got %q want A", ch)
	}
	if s.OIA().IsKeyboardLocked() {
		t.Fatal("keyboard still locked after the message committed")
	}
}

func TestApplyErrorKeepsEarlierOrders(t *testing.T) {
	s := newTestSession(t)

	good := []byte{protocol.CmdWriteToDisplay, 0x00, 0x01, 0xC1}
	// Declares 50 bytes it does not have.
	bad := []byte{protocol.CmdWriteToDisplay, 0x00, 0x32, 0xC2}
	msg := append(good, bad...)

	res, err := s.Apply(msg)
	if !errors.Is(err, protocol.ErrLengthMismatch) {
		t.Fatalf("got %v want ErrLengthMismatch", err)
	}
	if res.Orders != 1 {
		t.Fatalf("orders before failure: got %d want 1", res.Orders)
	}
	// The first order committed its scope before the second began.
	ch, _ := s.Planes().Char(0)
	if ch != 'A' {
		t.Fatalf("committed order lost: got %q", ch)
	}
	if s.OIA().IsKeyboardLocked() {
		t.Fatal("keyboard left locked after the message aborted")
	}
}

func TestApplySkipsBadStructuredFieldClass(t *testing.T) {
	s := newTestSession(t)
	msg := []byte{
		protocol.CmdStructuredField, 0x00, 0x00, 0x02, 0xAA, 0x51,
		protocol.CmdWriteToDisplay, 0x00, 0x01, 0xC1,
	}
	res, err := s.Apply(msg)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != protocol.SkipInvalidClass {
		t.Fatalf("skips: %+v", res.Skipped)
	}
	ch, _ := s.Planes().Char(0)
	if ch != 'A' {
		t.Fatalf("order after the skipped field lost: got %q", ch)
	}
}

func TestTimeoutWhileIdleIsHarmless(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.Apply([]byte{protocol.CmdWriteToDisplay, 0x00, 0x01, 0xC1}); err != nil {
		t.Fatal(err)
	}
	s.Timeout()
	s.Cancel()
	ch, _ := s.Planes().Char(0)
	if ch != 'A' {
		t.Fatalf("idle rollback mutated state: got %q", ch)
	}
}

func TestDisconnectedAbortsAndInhibits(t *testing.T) {
	s := newTestSession(t)
	s.Transactions().Begin(MarkerWTD)
	s.Planes().SetChar(0, 'Z')

	s.Disconnected()
	ch, _ := s.Planes().Char(0)
	if ch != screen.Blank {
		t.Fatalf("disconnect did not abort: got %q", ch)
	}
	if s.OIA().IsKeyboardLocked() {
		t.Fatal("keyboard locked after disconnect")
	}
	if s.OIA().InputInhibited() != screen.InhibitCommCheck {
		t.Fatalf("inhibit: got %v want comm check", s.OIA().InputInhibited())
	}
}

func TestCloseRejectsFurtherMessages(t *testing.T) {
	s := newTestSession(t)
	s.Close()
	if _, err := s.Apply([]byte{protocol.CmdClearUnit}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("got %v want ErrSessionClosed", err)
	}
}

func TestSessionIDsAreDistinct(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)
	if a.ID() == b.ID() {
		t.Fatal("two sessions share an identifier")
	}
}

type captureTracer struct {
	commands []byte
	lengths  []int
}

func (c *captureTracer) Record(direction string, command byte, data []byte) error {
	c.commands = append(c.commands, command)
	c.lengths = append(c.lengths, len(data))
	return nil
}

func TestTracerSeesEveryMessage(t *testing.T) {
	s := newTestSession(t)
	tr := &captureTracer{}
	s.SetTracer(tr)

	if _, err := s.Apply([]byte{protocol.CmdClearUnit}); err != nil {
		t.Fatal(err)
	}
	msg := []byte{protocol.CmdWriteToDisplay, 0x00, 0x01, 0xC1}
	if _, err := s.Apply(msg); err != nil {
		t.Fatal(err)
	}

	if len(tr.commands) != 2 {
		t.Fatalf("traced messages: got %d want 2", len(tr.commands))
	}
	if tr.commands[0] != protocol.CmdClearUnit || tr.commands[1] != protocol.CmdWriteToDisplay {
		t.Fatalf("traced commands: %v", tr.commands)
	}
	if tr.lengths[1] != len(msg) {
		t.Fatalf("traced length: got %d want %d", tr.lengths[1], len(msg))
	}
}
