// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: session/session.go
// Summary: Per-session orchestration of decode, apply and commit.
//
// Architecture:
//
//	Session owns one terminal's planes, OIA, order processor and
//	transaction manager. Apply is the single mutation path: one message is
//	fully decoded and applied before the next is accepted, and concurrent
//	readers (input checks, rendering) observe consistent state through the
//	planes' own lock. Each message opens an outer scope; each order inside
//	it runs in a nested scope so a malformed order rolls back alone.

package session

import (
	"crypto/rand"
	"errors"
	"log"
	"sync"

	"github.com/framegrace/texel5250/ebcdic"
	"github.com/framegrace/texel5250/protocol"
	"github.com/framegrace/texel5250/screen"
)

var ErrSessionClosed = errors.New("session: closed")

// Tracer receives a copy of every message applied to the session. The trace
// store implements it; a nil tracer disables tracing.
type Tracer interface {
	Record(direction string, command byte, data []byte) error
}

// Session binds the decode pipeline to one terminal's state.
type Session struct {
	mu     sync.Mutex
	id     [16]byte
	planes *screen.Planes
	oia    *screen.OIA
	txn    *Manager
	proc   *protocol.Processor
	tracer Tracer
	closed bool
}

// New creates a session with cleared planes of the given geometry and the
// default code page. The keyboard starts locked until the first host screen
// arrives.
func New(rows, cols int) (*Session, error) {
	return NewWithDecoder(rows, cols, nil)
}

// NewWithDecoder creates a session decoding text through the given EBCDIC
// decoder; nil selects the default CCSID.
func NewWithDecoder(rows, cols int, dec *ebcdic.Decoder) (*Session, error) {
	planes, err := screen.NewPlanes(rows, cols)
	if err != nil {
		return nil, err
	}
	s := &Session{
		planes: planes,
		oia:    screen.NewOIA(),
	}
	if _, err := rand.Read(s.id[:]); err != nil {
		return nil, err
	}
	s.txn = NewManager(s.planes, s.oia)
	s.proc = protocol.NewProcessor(s.planes, s.oia, dec)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() [16]byte {
	return s.id
}

// Planes exposes the read-only view consumed by the rendering collaborator.
func (s *Session) Planes() *screen.Planes {
	return s.planes
}

// OIA exposes the lock state consumed by the input collaborator.
func (s *Session) OIA() *screen.OIA {
	return s.oia
}

// Processor exposes the order processor, mainly for GUI construct reads.
func (s *Session) Processor() *protocol.Processor {
	return s.proc
}

// SetTracer installs a message tracer. Pass nil to disable.
func (s *Session) SetTracer(t Tracer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracer = t
}

// markerFor maps a command byte to the transaction boundary it opens.
func markerFor(cmd byte) Marker {
	if cmd == protocol.CmdClearUnit {
		return MarkerClearFormat
	}
	return MarkerWTD
}

// Apply decodes one received message inside transaction scopes. Decode
// errors roll back the offending order's scope, stop the message and
// surface as a typed error; earlier orders in the message stay committed.
func (s *Session) Apply(msg []byte) (protocol.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res protocol.Result
	if s.closed {
		return res, ErrSessionClosed
	}

	st := protocol.NewStream(msg)
	first, err := protocol.PeekCommand(st)
	if err != nil {
		return res, err
	}
	if s.tracer != nil {
		if terr := s.tracer.Record("host", first, msg); terr != nil {
			log.Printf("Session: trace record failed: %v", terr)
		}
	}

	s.txn.Begin(markerFor(first))
	for st.HasNext() {
		cmd, err := protocol.PeekCommand(st)
		if err != nil {
			s.txn.Commit()
			return res, err
		}
		s.txn.Begin(markerFor(cmd))
		or, err := s.proc.ProcessOrder(st)
		if err != nil {
			// The offending order simply does not apply; what
			// committed before it stays.
			s.txn.Rollback(TriggerError)
			s.txn.Commit()
			return res, err
		}
		s.txn.Commit()
		res.Orders++
		res.UnlockKeyboard = res.UnlockKeyboard || or.UnlockKeyboard
		res.Skipped = append(res.Skipped, or.Skipped...)
	}
	s.txn.Commit()
	return res, nil
}

// Timeout rolls back the innermost open scope. A timeout at nested depth
// must not disturb outer-scope state.
func (s *Session) Timeout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txn.Rollback(TriggerTimeout)
}

// Cancel rolls back the innermost open scope on user request.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txn.Rollback(TriggerUserCancel)
}

// Disconnected handles the connection collaborator's signal: full
// transaction abort and keyboard unlock.
func (s *Session) Disconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txn.Abort()
	s.oia.SetKeyboardLocked(false)
	s.oia.SetInputInhibited(screen.InhibitCommCheck, 0, "disconnected")
}

// Transactions exposes the manager for the session owner. External callers
// use Timeout, Cancel and Disconnected instead.
func (s *Session) Transactions() *Manager {
	return s.txn
}

// Close marks the session unusable for further messages.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txn.Abort()
	s.closed = true
}
