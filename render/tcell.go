// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/tcell.go
// Summary: Read-only tcell renderer for the screen planes.
// Usage: The rendering collaborator; reads Char/CharAttr/CopyRange and
// never mutates session state. GUI construct chrome is out of scope.

package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texel5250/screen"
)

// Renderer paints a session's planes onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer wraps the provided screen.
func NewRenderer(s tcell.Screen) *Renderer {
	return &Renderer{screen: s}
}

// colorFor maps a 5250 colour class to a terminal colour.
func colorFor(c screen.Color) tcell.Color {
	switch c {
	case screen.ColorGreen:
		return tcell.ColorGreen
	case screen.ColorWhite:
		return tcell.ColorWhite
	case screen.ColorRed:
		return tcell.ColorRed
	case screen.ColorBlue:
		return tcell.ColorBlue
	case screen.ColorCyan:
		return tcell.ColorAqua
	case screen.ColorYellow:
		return tcell.ColorYellow
	case screen.ColorPink:
		return tcell.ColorPink
	case screen.ColorMagenta:
		return tcell.ColorFuchsia
	}
	return tcell.ColorDefault
}

// styleFor derives a tcell style from a raw attribute code.
func styleFor(code byte) tcell.Style {
	attrs := screen.Disperse(code)
	style := tcell.StyleDefault.Foreground(colorFor(attrs.Color))
	if attrs.Reverse {
		style = style.Reverse(true)
	}
	if attrs.Underline {
		style = style.Underline(true)
	}
	return style
}

// Draw paints every cell of the planes. Non-display cells render blank;
// wide runes occupy two columns with a zero-width filler cell, matching
// terminal conventions.
func (r *Renderer) Draw(p *screen.Planes) {
	rows, cols := p.Size()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			pos := row*cols + col
			ch, err := p.Char(pos)
			if err != nil {
				return
			}
			code, err := p.CharAttr(pos)
			if err != nil {
				return
			}
			if screen.Disperse(code).NonDisplay {
				ch = screen.Blank
			}
			r.screen.SetContent(col, row, ch, nil, styleFor(code))
			if runewidth.RuneWidth(ch) == 2 {
				col++
			}
		}
	}
	r.screen.Show()
}

// DrawDirty repaints only the positions the planes marked dirty since the
// last render, then clears the dirty set.
func (r *Renderer) DrawDirty(p *screen.Planes) {
	_, cols := p.Size()
	if cols == 0 {
		return
	}
	for _, pos := range p.DirtyPositions() {
		ch, err := p.Char(pos)
		if err != nil {
			continue
		}
		code, err := p.CharAttr(pos)
		if err != nil {
			continue
		}
		if screen.Disperse(code).NonDisplay {
			ch = screen.Blank
		}
		r.screen.SetContent(pos%cols, pos/cols, ch, nil, styleFor(code))
	}
	p.ClearDirty()
	r.screen.Show()
}
