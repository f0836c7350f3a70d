// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: ebcdic/ebcdic.go
// Summary: EBCDIC code-page translation for 5250 data-stream text.
// Usage: The order processor translates WTD literal bytes through a Decoder
// before they reach the text plane.

package ebcdic

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// DefaultCCSID is the code page assumed when a session does not negotiate
// one (US/Canada EBCDIC).
const DefaultCCSID = 37

var codePages = map[int]*charmap.Charmap{
	37:   charmap.CodePage037,
	1047: charmap.CodePage1047,
	1140: charmap.CodePage1140,
}

// Decoder translates single EBCDIC bytes to runes for one code page.
type Decoder struct {
	ccsid int
	cm    *charmap.Charmap
}

// NewDecoder returns a decoder for the given CCSID. Unknown CCSIDs are an
// error so a misconfigured session fails loudly instead of painting
// garbage.
func NewDecoder(ccsid int) (*Decoder, error) {
	cm, ok := codePages[ccsid]
	if !ok {
		return nil, fmt.Errorf("ebcdic: unsupported CCSID %d", ccsid)
	}
	return &Decoder{ccsid: ccsid, cm: cm}, nil
}

// MustDecoder is NewDecoder for known-good CCSIDs, used for defaults.
func MustDecoder(ccsid int) *Decoder {
	d, err := NewDecoder(ccsid)
	if err != nil {
		panic(err)
	}
	return d
}

// CCSID returns the configured code page number.
func (d *Decoder) CCSID() int {
	return d.ccsid
}

// DecodeByte translates one EBCDIC byte. Unassigned bytes come back as the
// charmap replacement rune; the caller never sees an error for any input
// byte.
func (d *Decoder) DecodeByte(b byte) rune {
	return d.cm.DecodeByte(b)
}

// Decode translates a byte slice into a rune slice.
func (d *Decoder) Decode(data []byte) []rune {
	out := make([]rune, len(data))
	for i, b := range data {
		out[i] = d.cm.DecodeByte(b)
	}
	return out
}

// Supported reports whether a CCSID has a translation table.
func Supported(ccsid int) bool {
	_, ok := codePages[ccsid]
	return ok
}
