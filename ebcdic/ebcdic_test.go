// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: ebcdic/ebcdic_test.go
// Summary: Code-page translation checks against known CCSID 37 mappings.

package ebcdic

import "testing"

func TestCodePage37KnownBytes(t *testing.T) {
	d := MustDecoder(37)
	cases := []struct {
		in   byte
		want rune
	}{
		{0x40, ' '},
		{0x4B, '.'},
		{0x5B, '$'},
		{0x81, 'a'},
		{0x89, 'i'},
		{0xC1, 'A'},
		{0xC9, 'I'},
		{0xD1, 'J'},
		{0xE2, 'S'},
		{0xF0, '0'},
		{0xF9, '9'},
	}
	for _, c := range cases {
		if got := d.DecodeByte(c.in); got != c.want {
			t.Errorf("0x%02X: got %q want %q", c.in, got, c.want)
		}
	}
}

func TestDecodeSlice(t *testing.T) {
	d := MustDecoder(37)
	got := string(d.Decode([]byte{0xC8, 0x85, 0x93, 0x93, 0x96}))
	if got != "Hello" {
		t.Fatalf("got %q want Hello", got)
	}
}

func TestUnsupportedCCSID(t *testing.T) {
	if _, err := NewDecoder(500); err == nil {
		t.Fatal("CCSID 500 should not decode")
	}
	if Supported(500) {
		t.Fatal("Supported(500) should be false")
	}
	if !Supported(1047) {
		t.Fatal("Supported(1047) should be true")
	}
}

func TestEuroCodePage(t *testing.T) {
	// CCSID 1140 replaces the international currency sign at 0x9F with
	// the euro sign.
	d := MustDecoder(1140)
	if got := d.DecodeByte(0x9F); got != '€' {
		t.Fatalf("0x9F under 1140: got %q want €", got)
	}
	if d.CCSID() != 1140 {
		t.Fatalf("CCSID: got %d", d.CCSID())
	}
}
