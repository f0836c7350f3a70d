// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/structured_field.go
// Summary: Structured-field parsing for 5250 GUI constructs.
// Usage: The order processor hands a validated payload to the parsers here;
// only the parse is in scope, never the visual presentation.

package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// SFClass is the single class byte accepted on 5250 GUI structured fields.
const SFClass = 0xD9

// Structured-field subcommands consumed by this core.
const (
	SFCreateWindow         = 0x51
	SFDefineSelectionField = 0x50
	SFAddScrollbar         = 0x53
	SFRemoveScrollbar      = 0x5B
	SFRemoveAllGUI         = 0x5F
)

var (
	// ErrShortStructuredField reports a declared length below the two
	// bytes needed for class and subcommand.
	ErrShortStructuredField = errors.New("protocol: structured field shorter than class+subcommand")

	// ErrShortPayload reports a payload below the subcommand's fixed
	// minimum size.
	ErrShortPayload = errors.New("protocol: structured field payload below minimum")

	// ErrBorderTooShort reports a border presentation descriptor under
	// five bytes.
	ErrBorderTooShort = errors.New("protocol: border presentation descriptor too short")
)

// minPayload is the fixed minimum payload size per subcommand, checked
// before any field is read.
var minPayload = map[byte]int{
	SFCreateWindow:         4,
	SFDefineSelectionField: 3,
	SFAddScrollbar:         5,
	SFRemoveScrollbar:      2,
	SFRemoveAllGUI:         0,
}

// StructuredField is the validated header of one structured field.
type StructuredField struct {
	Length     int
	Class      byte
	Subcommand byte
	Payload    []byte
}

// BorderPresentation is the optional border minor structure of a window
// definition. Glyph bytes are kept raw; translation belongs to the
// rendering collaborator.
type BorderPresentation struct {
	Flag   byte
	Glyphs []byte
}

// Window is a parsed create-window definition anchored at the cursor
// position current when the field arrived.
type Window struct {
	Pos    int
	Flags  [2]byte
	Depth  int
	Width  int
	Border *BorderPresentation
}

// SelectionField is a parsed define-selection-field definition.
type SelectionField struct {
	Pos  int
	Kind byte
	Rows int
	Cols int
}

// Scrollbar is a parsed add-scrollbar definition.
type Scrollbar struct {
	Row      int
	Col      int
	Flags    byte
	Total    int
	Position int
}

func parseWindow(pos int, payload []byte) (Window, error) {
	if len(payload) < minPayload[SFCreateWindow] {
		return Window{}, fmt.Errorf("%w: create window needs %d bytes, got %d",
			ErrShortPayload, minPayload[SFCreateWindow], len(payload))
	}
	w := Window{
		Pos:   pos,
		Flags: [2]byte{payload[0], payload[1]},
		Depth: int(payload[2]),
		Width: int(payload[3]),
	}
	rest := payload[4:]
	if len(rest) > 0 {
		// A border presentation descriptor requires at least five
		// bytes: length, type, flag and two glyphs. A declared
		// descriptor below that is an error, not a truncated read.
		if len(rest) < 5 {
			return Window{}, ErrBorderTooShort
		}
		descLen := int(rest[0])
		if descLen < 5 || descLen > len(rest) {
			return Window{}, ErrBorderTooShort
		}
		w.Border = &BorderPresentation{
			Flag:   rest[2],
			Glyphs: append([]byte(nil), rest[3:descLen]...),
		}
	}
	return w, nil
}

func parseSelectionField(pos int, payload []byte) (SelectionField, error) {
	if len(payload) < minPayload[SFDefineSelectionField] {
		return SelectionField{}, fmt.Errorf("%w: selection field needs %d bytes, got %d",
			ErrShortPayload, minPayload[SFDefineSelectionField], len(payload))
	}
	return SelectionField{
		Pos:  pos,
		Kind: payload[0],
		Rows: int(payload[1]),
		Cols: int(payload[2]),
	}, nil
}

func parseScrollbar(payload []byte) (Scrollbar, error) {
	if len(payload) < minPayload[SFAddScrollbar] {
		return Scrollbar{}, fmt.Errorf("%w: scrollbar needs %d bytes, got %d",
			ErrShortPayload, minPayload[SFAddScrollbar], len(payload))
	}
	return Scrollbar{
		Flags:    payload[0],
		Total:    int(binary.BigEndian.Uint16(payload[1:3])),
		Position: int(binary.BigEndian.Uint16(payload[3:5])),
	}, nil
}

func parseRemoveScrollbar(payload []byte) (row, col int, err error) {
	if len(payload) < minPayload[SFRemoveScrollbar] {
		return 0, 0, fmt.Errorf("%w: remove scrollbar needs %d bytes, got %d",
			ErrShortPayload, minPayload[SFRemoveScrollbar], len(payload))
	}
	return int(payload[0]), int(payload[1]), nil
}
