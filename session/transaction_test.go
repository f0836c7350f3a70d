// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: session/transaction_test.go
// Summary: Scope stack semantics: nesting, single-level rollback, abort.

package session

import (
	"testing"

	"github.com/framegrace/texel5250/screen"
)

func newTestManager(t *testing.T) (*Manager, *screen.Planes, *screen.OIA) {
	t.Helper()
	planes, err := screen.NewPlanes(screen.DefaultRows, screen.DefaultCols)
	if err != nil {
		t.Fatal(err)
	}
	oia := screen.NewOIA()
	oia.SetKeyboardLocked(false)
	return NewManager(planes, oia), planes, oia
}

func mustChar(t *testing.T, p *screen.Planes, pos int) rune {
	t.Helper()
	ch, err := p.Char(pos)
	if err != nil {
		t.Fatal(err)
	}
	return ch
}

func TestNestedRollbackRestoresOneLevel(t *testing.T) {
	m, planes, oia := newTestManager(t)

	m.Begin(MarkerWTD)
	if !oia.IsKeyboardLocked() {
		t.Fatal("first scope did not lock the keyboard")
	}
	planes.SetChar(0, 'A') // outer-scope write

	m.Begin(MarkerWTD)
	planes.SetChar(0, 'B') // nested write
	planes.SetChar(1, 'C')

	m.Rollback(TriggerError)
	if got := mustChar(t, planes, 0); got != 'A' {
		t.Fatalf("nested rollback: cell 0 got %q want A", got)
	}
	if got := mustChar(t, planes, 1); got != screen.Blank {
		t.Fatalf("nested rollback: cell 1 got %q want blank", got)
	}
	if m.Depth() != 1 {
		t.Fatalf("depth after nested rollback: got %d want 1", m.Depth())
	}
	if !oia.IsKeyboardLocked() {
		t.Fatal("keyboard unlocked with a scope still open")
	}

	m.Rollback(TriggerError)
	if got := mustChar(t, planes, 0); got != screen.Blank {
		t.Fatalf("outer rollback: cell 0 got %q want blank", got)
	}
	if m.Depth() != 0 {
		t.Fatalf("depth after outer rollback: got %d want 0", m.Depth())
	}
	if oia.IsKeyboardLocked() {
		t.Fatal("keyboard still locked after last scope closed")
	}
}

func TestCommitKeepsWrites(t *testing.T) {
	m, planes, oia := newTestManager(t)

	m.Begin(MarkerClearFormat)
	m.Begin(MarkerWTD)
	planes.SetChar(5, 'X')
	m.Commit()

	if got := mustChar(t, planes, 5); got != 'X' {
		t.Fatalf("commit lost a write: got %q", got)
	}

	// The nested write survives even when the outer scope rolls back to a
	// snapshot taken before it: the outer snapshot predates the write.
	m.Rollback(TriggerUserCancel)
	if got := mustChar(t, planes, 5); got != screen.Blank {
		t.Fatalf("outer rollback kept a pre-snapshot write: got %q", got)
	}
	if oia.IsKeyboardLocked() {
		t.Fatal("keyboard locked while idle")
	}
}

func TestEachTriggerRollsBackOneLevel(t *testing.T) {
	for _, trigger := range []Trigger{TriggerError, TriggerTimeout, TriggerUserCancel} {
		m, planes, _ := newTestManager(t)
		m.Begin(MarkerWTD)
		m.Begin(MarkerWTD)
		planes.SetChar(0, 'Z')
		m.Rollback(trigger)
		if m.Depth() != 1 {
			t.Fatalf("%s: depth got %d want 1", trigger, m.Depth())
		}
		if got := mustChar(t, planes, 0); got != screen.Blank {
			t.Fatalf("%s: write survived rollback", trigger)
		}
	}
}

func TestAbortUnwindsEverything(t *testing.T) {
	m, planes, oia := newTestManager(t)

	planes.SetChar(0, 'P') // pre-transaction state
	m.Begin(MarkerWTD)
	planes.SetChar(0, 'Q')
	m.Begin(MarkerWTD)
	planes.SetChar(0, 'R')
	m.Begin(MarkerWTD)
	planes.SetChar(0, 'S')

	m.Abort()
	if got := mustChar(t, planes, 0); got != 'P' {
		t.Fatalf("abort: got %q want P", got)
	}
	if m.Depth() != 0 {
		t.Fatalf("abort left %d scopes open", m.Depth())
	}
	if oia.IsKeyboardLocked() {
		t.Fatal("keyboard still locked after abort")
	}
}

func TestIdleOperationsAreNoOps(t *testing.T) {
	m, planes, oia := newTestManager(t)
	planes.SetChar(0, 'K')

	m.Commit()
	m.Rollback(TriggerTimeout)
	m.Abort()

	if got := mustChar(t, planes, 0); got != 'K' {
		t.Fatalf("idle operation mutated state: got %q", got)
	}
	if oia.IsKeyboardLocked() {
		t.Fatal("idle operation locked the keyboard")
	}
	if m.Active() {
		t.Fatal("manager reports active while idle")
	}
}

func TestMarkerAndTriggerNames(t *testing.T) {
	if MarkerWTD.String() != "wtd" || MarkerClearFormat.String() != "clear-format" ||
		MarkerUnlockKeyboard.String() != "unlock-keyboard" {
		t.Fatal("marker names changed")
	}
	if TriggerError.String() != "error" || TriggerTimeout.String() != "timeout" ||
		TriggerUserCancel.String() != "user-cancel" {
		t.Fatal("trigger names changed")
	}
}
