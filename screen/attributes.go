// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/attributes.go
// Summary: 5250 screen attribute table mapping 6-bit codes to display flags.
// Usage: Consulted by the order processor and the planes when an attribute
// byte is written; the raw code stays in the colour plane, the dispersed
// flags go to the extended plane.

package screen

// Color identifies the colour class of a screen attribute.
type Color uint8

const (
	ColorNone Color = iota
	ColorGreen
	ColorWhite
	ColorRed
	ColorBlue
	ColorCyan
	ColorYellow
	ColorPink
	ColorMagenta
)

// String returns a human-readable name for the colour class.
func (c Color) String() string {
	switch c {
	case ColorGreen:
		return "green"
	case ColorWhite:
		return "white"
	case ColorRed:
		return "red"
	case ColorBlue:
		return "blue"
	case ColorCyan:
		return "cyan"
	case ColorYellow:
		return "yellow"
	case ColorPink:
		return "pink"
	case ColorMagenta:
		return "magenta"
	}
	return "none"
}

// Extended-plane flag bits derived from an attribute code.
const (
	ExtNonDisplay byte = 0x01
	ExtColumnSep  byte = 0x02
	ExtBlink      byte = 0x04
	ExtUnderline  byte = 0x08
)

// AttrNoChange is the attribute code that leaves the prior cell attribute
// untouched. Callers must test for it before calling Disperse; Disperse
// itself treats it like any other undefined code.
const AttrNoChange byte = 0x00

// DefaultAttr is the initial attribute written by ClearAll (green normal).
const DefaultAttr byte = 32

// CellAttributes is the dispersed form of a screen attribute code.
type CellAttributes struct {
	Color      Color
	Reverse    bool
	Underline  bool
	NonDisplay bool
	ColumnSep  bool
}

// ExtendedByte packs the dispersed flags into the extended-plane bit form.
func (a CellAttributes) ExtendedByte() byte {
	var b byte
	if a.NonDisplay {
		b |= ExtNonDisplay
	}
	if a.ColumnSep {
		b |= ExtColumnSep
	}
	if a.Underline {
		b |= ExtUnderline
	}
	return b
}

// Disperse maps an attribute code to its display flags. It is total over all
// 256 byte values: codes outside the protocol-defined 32-63 range resolve to
// the plain default instead of failing. Codes 42, 43 and 46 are duplicate
// wire encodings of 40, 41 and 44 and map to identical flags.
func Disperse(code byte) CellAttributes {
	switch code {
	case 32:
		return CellAttributes{Color: ColorGreen}
	case 33:
		return CellAttributes{Color: ColorGreen, Reverse: true}
	case 34:
		return CellAttributes{Color: ColorWhite}
	case 35:
		return CellAttributes{Color: ColorWhite, Reverse: true}
	case 36:
		return CellAttributes{Color: ColorGreen, Underline: true}
	case 37:
		return CellAttributes{Color: ColorGreen, Reverse: true, Underline: true}
	case 38:
		return CellAttributes{Color: ColorWhite, Underline: true}
	case 39:
		return CellAttributes{Color: ColorWhite, NonDisplay: true}
	case 40, 42:
		return CellAttributes{Color: ColorRed}
	case 41, 43:
		return CellAttributes{Color: ColorRed, Reverse: true}
	case 44, 46:
		return CellAttributes{Color: ColorRed, Underline: true}
	case 45:
		return CellAttributes{Color: ColorRed, Reverse: true, Underline: true}
	case 47:
		return CellAttributes{Color: ColorRed, NonDisplay: true}
	case 48:
		return CellAttributes{Color: ColorCyan, ColumnSep: true}
	case 49:
		return CellAttributes{Color: ColorCyan, Reverse: true, ColumnSep: true}
	case 50:
		return CellAttributes{Color: ColorYellow, ColumnSep: true}
	case 51:
		return CellAttributes{Color: ColorYellow, Reverse: true, ColumnSep: true}
	case 52:
		return CellAttributes{Color: ColorCyan, Underline: true}
	case 53:
		return CellAttributes{Color: ColorCyan, Reverse: true, Underline: true}
	case 54:
		return CellAttributes{Color: ColorYellow, Underline: true}
	case 55:
		return CellAttributes{NonDisplay: true, ColumnSep: true}
	case 56:
		return CellAttributes{Color: ColorPink}
	case 57:
		return CellAttributes{Color: ColorPink, Reverse: true}
	case 58:
		return CellAttributes{Color: ColorMagenta}
	case 59:
		return CellAttributes{Color: ColorBlue}
	case 60:
		return CellAttributes{Color: ColorBlue, Reverse: true}
	case 61:
		return CellAttributes{Color: ColorMagenta, Reverse: true}
	case 63:
		return CellAttributes{NonDisplay: true, ColumnSep: true}
	}
	// 0-31, 62 and anything above 63 are not protocol-defined; treat as
	// plain with no flags rather than erroring.
	return CellAttributes{}
}
