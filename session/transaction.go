// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: session/transaction.go
// Summary: Nested transaction scopes demarcating atomic screen updates.
//
// Architecture:
//
//	The manager keeps a stack of scopes. Each Begin pushes a deep snapshot
//	of the planes; Commit pops one level keeping the writes; Rollback pops
//	one level restoring its snapshot. Scope lifetime is coupled to the OIA
//	keyboard lock: the keyboard locks when the first scope opens and
//	unlocks when the last one closes.

package session

import (
	"log"

	"github.com/framegrace/texel5250/screen"
)

// Marker identifies the protocol event that opened a transaction scope.
type Marker int

const (
	MarkerWTD Marker = iota
	MarkerClearFormat
	MarkerUnlockKeyboard
)

// String returns the marker name.
func (m Marker) String() string {
	switch m {
	case MarkerClearFormat:
		return "clear-format"
	case MarkerUnlockKeyboard:
		return "unlock-keyboard"
	}
	return "wtd"
}

// Trigger identifies why a scope is being rolled back. Every trigger rolls
// back exactly one level; only a full abort unwinds the stack.
type Trigger int

const (
	TriggerError Trigger = iota
	TriggerTimeout
	TriggerUserCancel
)

// String returns the trigger name.
func (t Trigger) String() string {
	switch t {
	case TriggerTimeout:
		return "timeout"
	case TriggerUserCancel:
		return "user-cancel"
	}
	return "error"
}

type scope struct {
	marker   Marker
	snapshot *screen.Snapshot
}

// Manager demarcates atomic screen updates for one session. It is not
// self-locking: the owning Session serialises all calls behind its own
// mutation path.
type Manager struct {
	planes *screen.Planes
	oia    *screen.OIA
	scopes []scope
}

// NewManager wires a transaction manager to its session state.
func NewManager(planes *screen.Planes, oia *screen.OIA) *Manager {
	return &Manager{planes: planes, oia: oia}
}

// Depth returns the number of open scopes; zero means idle.
func (m *Manager) Depth() int {
	return len(m.scopes)
}

// Active reports whether any scope is open.
func (m *Manager) Active() bool {
	return len(m.scopes) > 0
}

// Begin opens a scope for the given boundary marker, snapshotting the
// current plane state. Opening the first scope locks the keyboard.
func (m *Manager) Begin(marker Marker) {
	m.scopes = append(m.scopes, scope{
		marker:   marker,
		snapshot: m.planes.TakeSnapshot(),
	})
	if len(m.scopes) == 1 {
		m.oia.SetKeyboardLocked(true)
	}
}

// Commit closes the innermost scope keeping its writes. Committing the last
// scope unlocks the keyboard. Committing while idle is a no-op.
func (m *Manager) Commit() {
	if len(m.scopes) == 0 {
		return
	}
	m.scopes = m.scopes[:len(m.scopes)-1]
	if len(m.scopes) == 0 {
		m.oia.SetKeyboardLocked(false)
	}
}

// Rollback restores the innermost scope's snapshot and closes it. Outer
// scopes and their dirty state are untouched. Rolling back the last scope
// returns to idle and unlocks the keyboard. Rolling back while idle is a
// no-op, not an error.
func (m *Manager) Rollback(trigger Trigger) {
	if len(m.scopes) == 0 {
		return
	}
	top := m.scopes[len(m.scopes)-1]
	m.planes.RestoreSnapshot(top.snapshot)
	m.scopes = m.scopes[:len(m.scopes)-1]
	log.Printf("Session: rolled back %s scope on %s, depth now %d",
		top.marker, trigger, len(m.scopes))
	if len(m.scopes) == 0 {
		m.oia.SetKeyboardLocked(false)
	}
}

// Abort unwinds the whole stack, restoring the state captured before the
// outermost scope, and unlocks the keyboard. Used on terminal disconnect.
func (m *Manager) Abort() {
	if len(m.scopes) == 0 {
		return
	}
	m.planes.RestoreSnapshot(m.scopes[0].snapshot)
	m.scopes = nil
	m.oia.SetKeyboardLocked(false)
}
