// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/orders.go
// Summary: Order dispatcher applying a 5250 data stream to the screen planes.
//
// Architecture:
//
//	Processor consumes bytes through a Stream, dispatches on the command
//	byte and mutates the session's Planes. Decode failures split two ways:
//	length or bounds violations abort the current message with a typed
//	error; an unrecognised structured-field class or subcommand is skipped
//	over its declared length and decoding continues.

package protocol

import (
	"errors"
	"fmt"
	"log"

	"github.com/framegrace/texel5250/ebcdic"
	"github.com/framegrace/texel5250/screen"
)

// Command bytes dispatched by ProcessOrder.
const (
	CmdWriteToDisplay          = 0x11
	CmdImmediateWriteToDisplay = 0x01
	CmdStructuredField         = 0xF1
	CmdClearUnit               = 0x40
)

// Control-byte flags on write-to-display orders. Control values above 0x3F
// are non-standard on the wire; the two bits below are the ones this core
// assigns meaning to, everything else is carried but ignored.
const (
	CtrlUnlockKeyboard byte = 0x01
	CtrlTwoByteLength  byte = 0x80
)

// Attribute orders inside WTD data occupy the byte range below the first
// EBCDIC printable.
const attributeCeiling byte = 0x40

var (
	// ErrLengthMismatch reports a declared length that claims more bytes
	// than remain in the stream.
	ErrLengthMismatch = errors.New("protocol: declared length exceeds available bytes")

	// ErrUnknownCommand reports a command byte outside the dispatch set;
	// fatal to the current message.
	ErrUnknownCommand = errors.New("protocol: unknown command byte")
)

// SkipReason classifies a recoverable structured-field rejection.
type SkipReason int

const (
	SkipInvalidClass SkipReason = iota
	SkipInvalidSubcommand
)

func (r SkipReason) String() string {
	if r == SkipInvalidClass {
		return "invalid-class"
	}
	return "invalid-subcommand"
}

// SkippedField records a structured field that was rejected and skipped
// without aborting the message.
type SkippedField struct {
	Reason     SkipReason
	Class      byte
	Subcommand byte
}

// OrderResult describes the effect of one decoded order.
type OrderResult struct {
	Command        byte
	UnlockKeyboard bool
	Skipped        []SkippedField
}

// Result accumulates the effects of a full message.
type Result struct {
	Orders         int
	UnlockKeyboard bool
	Skipped        []SkippedField
}

// Processor applies decoded orders to one session's planes and OIA.
type Processor struct {
	planes *screen.Planes
	oia    *screen.OIA
	dec    *ebcdic.Decoder

	cursor int

	windows    []Window
	selections []SelectionField
	scrollbars []Scrollbar
}

// NewProcessor wires a processor to its session state. A nil decoder falls
// back to the default CCSID.
func NewProcessor(planes *screen.Planes, oia *screen.OIA, dec *ebcdic.Decoder) *Processor {
	if dec == nil {
		dec = ebcdic.MustDecoder(ebcdic.DefaultCCSID)
	}
	return &Processor{planes: planes, oia: oia, dec: dec}
}

// Cursor returns the current linear write position.
func (p *Processor) Cursor() int {
	return p.cursor
}

// SetCursor moves the write position, wrapping into the plane range.
func (p *Processor) SetCursor(pos int) {
	p.cursor = p.wrap(pos)
}

func (p *Processor) wrap(pos int) int {
	size := p.planes.Len()
	if size == 0 {
		return 0
	}
	pos %= size
	if pos < 0 {
		pos += size
	}
	return pos
}

func (p *Processor) advance() {
	p.cursor = p.wrap(p.cursor + 1)
}

// PeekCommand returns the next command byte without consuming it, so the
// caller can open the right transaction scope before the order decodes.
func PeekCommand(s *Stream) (byte, error) {
	return s.PeekOffset(0)
}

// ProcessStream decodes every order remaining in the stream.
func (p *Processor) ProcessStream(s *Stream) (Result, error) {
	var res Result
	for s.HasNext() {
		or, err := p.ProcessOrder(s)
		if err != nil {
			return res, err
		}
		res.Orders++
		res.UnlockKeyboard = res.UnlockKeyboard || or.UnlockKeyboard
		res.Skipped = append(res.Skipped, or.Skipped...)
	}
	return res, nil
}

// ProcessOrder reads one command byte and applies the order it introduces.
func (p *Processor) ProcessOrder(s *Stream) (OrderResult, error) {
	cmd, err := s.NextByte()
	if err != nil {
		return OrderResult{}, err
	}
	res := OrderResult{Command: cmd}
	switch cmd {
	case CmdWriteToDisplay, CmdImmediateWriteToDisplay:
		unlock, err := p.processWTD(s)
		if err != nil {
			return res, err
		}
		res.UnlockKeyboard = unlock
	case CmdStructuredField:
		skipped, err := p.processStructuredField(s)
		if err != nil {
			return res, err
		}
		res.Skipped = skipped
	case CmdClearUnit:
		p.planes.ClearAll()
		p.cursor = 0
		p.removeAllGUI()
	default:
		return res, fmt.Errorf("%w: 0x%02X", ErrUnknownCommand, cmd)
	}
	return res, nil
}

// processWTD reads the control byte and length, validates the payload
// against the bytes actually remaining, then paints characters and
// attributes from the current cursor position.
func (p *Processor) processWTD(s *Stream) (unlock bool, err error) {
	ctrl, err := s.NextByte()
	if err != nil {
		return false, err
	}

	var dataLen int
	if ctrl&CtrlTwoByteLength != 0 {
		hi, err := s.NextByte()
		if err != nil {
			return false, err
		}
		lo, err := s.NextByte()
		if err != nil {
			return false, err
		}
		dataLen = int(hi)<<8 | int(lo)
	} else {
		b, err := s.NextByte()
		if err != nil {
			return false, err
		}
		dataLen = int(b)
	}

	if dataLen > s.Remaining() {
		return false, fmt.Errorf("%w: order wants %d, have %d",
			ErrLengthMismatch, dataLen, s.Remaining())
	}
	payload, err := s.Segment(dataLen)
	if err != nil {
		return false, err
	}

	for _, b := range payload {
		if b < attributeCeiling {
			// Attribute order. Code zero leaves the prior cell
			// attribute in place but still occupies the position.
			if b != screen.AttrNoChange {
				if err := p.planes.SetScreenAttr(p.cursor, b); err != nil {
					return false, err
				}
			}
			p.advance()
			continue
		}
		if err := p.planes.SetChar(p.cursor, p.dec.DecodeByte(b)); err != nil {
			return false, err
		}
		p.advance()
	}

	return ctrl&CtrlUnlockKeyboard != 0, nil
}

// processStructuredField validates the field header and dispatches the
// subcommand. Invalid class or subcommand bytes skip the declared length
// and are reported, not fatal.
func (p *Processor) processStructuredField(s *Stream) ([]SkippedField, error) {
	if _, err := s.NextByte(); err != nil { // control byte, carried but unused
		return nil, err
	}
	hi, err := s.NextByte()
	if err != nil {
		return nil, err
	}
	lo, err := s.NextByte()
	if err != nil {
		return nil, err
	}
	length := int(hi)<<8 | int(lo)

	if length < 2 {
		return nil, fmt.Errorf("%w: declared length %d", ErrShortStructuredField, length)
	}
	if length > s.Remaining() {
		return nil, fmt.Errorf("%w: structured field wants %d, have %d",
			ErrLengthMismatch, length, s.Remaining())
	}

	body, err := s.Segment(length)
	if err != nil {
		return nil, err
	}
	field := StructuredField{
		Length:     length,
		Class:      body[0],
		Subcommand: body[1],
		Payload:    body[2:],
	}

	if field.Class != SFClass {
		log.Printf("Protocol: skipping structured field with class 0x%02X", field.Class)
		return []SkippedField{{Reason: SkipInvalidClass, Class: field.Class, Subcommand: field.Subcommand}}, nil
	}

	switch field.Subcommand {
	case SFCreateWindow:
		w, err := parseWindow(p.cursor, field.Payload)
		if err != nil {
			return nil, err
		}
		p.windows = append(p.windows, w)
	case SFDefineSelectionField:
		sel, err := parseSelectionField(p.cursor, field.Payload)
		if err != nil {
			return nil, err
		}
		p.selections = append(p.selections, sel)
	case SFAddScrollbar:
		sb, err := parseScrollbar(field.Payload)
		if err != nil {
			return nil, err
		}
		_, cols := p.planes.Size()
		if cols > 0 {
			sb.Row = p.cursor / cols
			sb.Col = p.cursor % cols
		}
		p.scrollbars = append(p.scrollbars, sb)
	case SFRemoveScrollbar:
		row, col, err := parseRemoveScrollbar(field.Payload)
		if err != nil {
			return nil, err
		}
		p.removeScrollbar(row, col)
	case SFRemoveAllGUI:
		p.removeAllGUI()
	default:
		log.Printf("Protocol: skipping structured field with subcommand 0x%02X", field.Subcommand)
		return []SkippedField{{Reason: SkipInvalidSubcommand, Class: field.Class, Subcommand: field.Subcommand}}, nil
	}
	return nil, nil
}

func (p *Processor) removeScrollbar(row, col int) {
	for i, sb := range p.scrollbars {
		if sb.Row == row && sb.Col == col {
			p.scrollbars = append(p.scrollbars[:i], p.scrollbars[i+1:]...)
			return
		}
	}
}

func (p *Processor) removeAllGUI() {
	p.windows = nil
	p.selections = nil
	p.scrollbars = nil
}

// Windows returns a copy of the parsed window definitions.
func (p *Processor) Windows() []Window {
	return append([]Window(nil), p.windows...)
}

// SelectionFields returns a copy of the parsed selection fields.
func (p *Processor) SelectionFields() []SelectionField {
	return append([]SelectionField(nil), p.selections...)
}

// Scrollbars returns a copy of the parsed scrollbars.
func (p *Processor) Scrollbars() []Scrollbar {
	return append([]Scrollbar(nil), p.scrollbars...)
}
