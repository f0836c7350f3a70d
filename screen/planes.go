// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/planes.go
// Summary: Multi-plane screen buffer for a 5250 session.
//
// Architecture:
//
//	Planes is the single source of truth for screen content. It owns three
//	parallel slices indexed by linear position row*cols+col: the text plane
//	(runes), the colour plane (raw attribute codes, round-trip exact) and
//	the extended plane (dispersed flag bits). The three planes are resized
//	and cleared in lockstep; readers never observe them at different sizes.
//
//	The order processor writes here; the rendering collaborator reads here.
//	All access goes through the internal mutex so concurrent readers see a
//	consistent cross-plane state.

package screen

import (
	"errors"
	"sync"
)

// DefaultRows and DefaultCols are the standard 5250 model 2 geometry.
const (
	DefaultRows = 24
	DefaultCols = 80
)

// Blank is the text-plane value of a cleared cell.
const Blank rune = ' '

// Plane selects which plane CopyRange extracts from.
type Plane int

const (
	PlaneText Plane = iota
	PlaneAttribute
)

var (
	ErrPositionOutOfRange = errors.New("screen: position out of range")
	ErrRowOutOfRange      = errors.New("screen: row out of range")
	ErrBadGeometry        = errors.New("screen: invalid geometry")
	ErrBadRange           = errors.New("screen: invalid range")
	ErrUnknownPlane       = errors.New("screen: unknown plane")
)

// Planes owns the text, colour and extended attribute planes of one session.
type Planes struct {
	mu   sync.RWMutex
	rows int
	cols int

	text     []rune
	color    []byte
	extended []byte

	dirty *DirtyTracker

	// Saved line for SaveLine/RestoreLine. savedRow is -1 when nothing
	// has been saved.
	savedRow      int
	savedText     []rune
	savedColor    []byte
	savedExtended []byte
}

// Snapshot is a deep copy of all three planes plus the dirty set, used by
// the transaction manager to restore state on rollback.
type Snapshot struct {
	rows     int
	cols     int
	text     []rune
	color    []byte
	extended []byte
	dirty    map[int]bool
}

// NewPlanes allocates cleared planes with the given geometry.
func NewPlanes(rows, cols int) (*Planes, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrBadGeometry
	}
	p := &Planes{
		rows:     rows,
		cols:     cols,
		text:     make([]rune, rows*cols),
		color:    make([]byte, rows*cols),
		extended: make([]byte, rows*cols),
		dirty:    NewDirtyTracker(),
		savedRow: -1,
	}
	p.clearLocked()
	return p, nil
}

// Size returns the current geometry.
func (p *Planes) Size() (rows, cols int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rows, p.cols
}

// Len returns the shared length of the three planes.
func (p *Planes) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.text)
}

// SetChar writes a rune to the text plane. The attribute planes are not
// touched.
func (p *Planes) SetChar(pos int, ch rune) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos < 0 || pos >= len(p.text) {
		return ErrPositionOutOfRange
	}
	p.text[pos] = ch
	p.dirty.Mark(pos)
	return nil
}

// Char reads a rune from the text plane.
func (p *Planes) Char(pos int) (rune, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if pos < 0 || pos >= len(p.text) {
		return 0, ErrPositionOutOfRange
	}
	return p.text[pos], nil
}

// SetScreenAttr writes the raw attribute code to the colour plane and the
// dispersed flag byte to the extended plane. The text plane is not touched.
func (p *Planes) SetScreenAttr(pos int, code byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos < 0 || pos >= len(p.color) {
		return ErrPositionOutOfRange
	}
	p.color[pos] = code
	p.extended[pos] = Disperse(code).ExtendedByte()
	p.dirty.Mark(pos)
	return nil
}

// CharAttr returns the exact attribute code previously written at pos.
func (p *Planes) CharAttr(pos int) (byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if pos < 0 || pos >= len(p.color) {
		return 0, ErrPositionOutOfRange
	}
	return p.color[pos], nil
}

// ExtendedAttr returns the dispersed flag byte at pos.
func (p *Planes) ExtendedAttr(pos int) (byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if pos < 0 || pos >= len(p.extended) {
		return 0, ErrPositionOutOfRange
	}
	return p.extended[pos], nil
}

// Resize reallocates all three planes to the new geometry, preserving cell
// content at identical linear indices up to the smaller of the old and new
// lengths. The planes never resize independently.
func (p *Planes) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return ErrBadGeometry
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	size := rows * cols
	text := make([]rune, size)
	color := make([]byte, size)
	extended := make([]byte, size)
	for i := range text {
		text[i] = Blank
		color[i] = DefaultAttr
	}

	n := min(size, len(p.text))
	copy(text, p.text[:n])
	copy(color, p.color[:n])
	copy(extended, p.extended[:n])

	p.rows, p.cols = rows, cols
	p.text, p.color, p.extended = text, color, extended
	p.savedRow = -1
	return nil
}

// ClearAll resets every cell to the blank character and the initial
// attribute across all planes atomically.
func (p *Planes) ClearAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked()
}

func (p *Planes) clearLocked() {
	for i := range p.text {
		p.text[i] = Blank
		p.color[i] = DefaultAttr
		p.extended[i] = 0
		p.dirty.Mark(i)
	}
}

// SaveLine captures the full row across all planes. Only one row is held at
// a time; a second save replaces the first.
func (p *Planes) SaveLine(row int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if row < 0 || row >= p.rows {
		return ErrRowOutOfRange
	}
	start := row * p.cols
	p.savedRow = row
	p.savedText = append(p.savedText[:0], p.text[start:start+p.cols]...)
	p.savedColor = append(p.savedColor[:0], p.color[start:start+p.cols]...)
	p.savedExtended = append(p.savedExtended[:0], p.extended[start:start+p.cols]...)
	return nil
}

// RestoreLine puts the saved row back across all planes. Restoring without
// a prior save, or for a different row than was saved, is a no-op. No row
// other than the saved one is touched.
func (p *Planes) RestoreLine(row int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if row < 0 || row >= p.rows {
		return ErrRowOutOfRange
	}
	if p.savedRow != row || len(p.savedText) != p.cols {
		return nil
	}
	start := row * p.cols
	copy(p.text[start:start+p.cols], p.savedText)
	copy(p.color[start:start+p.cols], p.savedColor)
	copy(p.extended[start:start+p.cols], p.savedExtended)
	for i := start; i < start+p.cols; i++ {
		p.dirty.Mark(i)
	}
	return nil
}

// CopyRange extracts a half-open range from one plane without mutating
// state. Attribute codes are widened to runes so both planes share a return
// shape.
func (p *Planes) CopyRange(start, length int, plane Plane) ([]rune, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if length < 0 || start < 0 || start+length > len(p.text) {
		return nil, ErrBadRange
	}
	out := make([]rune, length)
	switch plane {
	case PlaneText:
		copy(out, p.text[start:start+length])
	case PlaneAttribute:
		for i := 0; i < length; i++ {
			out[i] = rune(p.color[start+i])
		}
	default:
		return nil, ErrUnknownPlane
	}
	return out, nil
}

// DirtyPositions returns the positions changed since the dirty set was last
// reset, in ascending order.
func (p *Planes) DirtyPositions() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dirty.Positions()
}

// ClearDirty resets the dirty set, typically after the renderer has drawn.
func (p *Planes) ClearDirty() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty.ClearAll()
}

// TakeSnapshot deep-copies all planes and the dirty set under the lock.
func (p *Planes) TakeSnapshot() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := &Snapshot{
		rows:     p.rows,
		cols:     p.cols,
		text:     append([]rune(nil), p.text...),
		color:    append([]byte(nil), p.color...),
		extended: append([]byte(nil), p.extended...),
		dirty:    p.dirty.snapshot(),
	}
	return s
}

// RestoreSnapshot replaces all planes and the dirty set with the captured
// state in one atomic step.
func (p *Planes) RestoreSnapshot(s *Snapshot) {
	if s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows, p.cols = s.rows, s.cols
	p.text = append(p.text[:0:0], s.text...)
	p.color = append(p.color[:0:0], s.color...)
	p.extended = append(p.extended[:0:0], s.extended...)
	p.dirty.restore(s.dirty)
	p.savedRow = -1
}
