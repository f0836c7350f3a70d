// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/dirty.go
// Summary: Per-cell dirty tracking for transaction snapshots and rendering.

package screen

import "slices"

// DirtyTracker records which linear screen positions changed since the last
// clear. Extracted as a separate component for clean separation and
// testability. Thread-safety is managed by the containing Planes.
type DirtyTracker struct {
	dirty map[int]bool
}

// NewDirtyTracker creates an empty tracker.
func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{dirty: make(map[int]bool)}
}

// Mark marks a position as dirty.
func (dt *DirtyTracker) Mark(pos int) {
	dt.dirty[pos] = true
}

// Clear removes the dirty flag for a position.
func (dt *DirtyTracker) Clear(pos int) {
	delete(dt.dirty, pos)
}

// ClearAll removes every dirty flag.
func (dt *DirtyTracker) ClearAll() {
	dt.dirty = make(map[int]bool)
}

// IsDirty reports whether a position is marked.
func (dt *DirtyTracker) IsDirty(pos int) bool {
	return dt.dirty[pos]
}

// Count returns the number of dirty positions.
func (dt *DirtyTracker) Count() int {
	return len(dt.dirty)
}

// Positions returns all dirty positions in ascending order. Sorted order is
// deterministic and helps with testing.
func (dt *DirtyTracker) Positions() []int {
	out := make([]int, 0, len(dt.dirty))
	for pos := range dt.dirty {
		out = append(out, pos)
	}
	slices.Sort(out)
	return out
}

// snapshot returns a copy of the dirty set for transaction bookkeeping.
func (dt *DirtyTracker) snapshot() map[int]bool {
	out := make(map[int]bool, len(dt.dirty))
	for pos := range dt.dirty {
		out[pos] = true
	}
	return out
}

// restore replaces the dirty set with a previously captured copy.
func (dt *DirtyTracker) restore(saved map[int]bool) {
	out := make(map[int]bool, len(saved))
	for pos := range saved {
		out[pos] = true
	}
	dt.dirty = out
}
