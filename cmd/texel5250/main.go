// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texel5250/main.go
// Summary: Replay a captured 5250 data-stream dump through a session.
// Usage: `texel5250 -dump capture.bin` decodes each record and shows the
// resulting screen; `-headless` prints a text dump instead.

package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/framegrace/texel5250/config"
	"github.com/framegrace/texel5250/ebcdic"
	"github.com/framegrace/texel5250/render"
	"github.com/framegrace/texel5250/screen"
	"github.com/framegrace/texel5250/session"
	"github.com/framegrace/texel5250/trace"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("texel5250", flag.ContinueOnError)

	dumpPath := fs.String("dump", "", "Captured data-stream dump to replay (length-prefixed records)")
	rows := fs.Int("rows", 0, "Screen rows (default from config)")
	cols := fs.Int("cols", 0, "Screen columns (default from config)")
	ccsid := fs.Int("ccsid", 0, "EBCDIC code page (default from config)")
	tracePath := fs.String("trace", "", "Record replayed messages to this SQLite trace database")
	headless := fs.Bool("headless", false, "Print a text dump instead of rendering")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if *dumpPath == "" {
		fs.Usage()
		return fmt.Errorf("a -dump file is required")
	}

	cfg := config.System()
	if *rows > 0 {
		cfg.Rows = *rows
	}
	if *cols > 0 {
		cfg.Cols = *cols
	}
	if *ccsid > 0 {
		cfg.CCSID = *ccsid
	}
	if *tracePath != "" {
		cfg.TraceEnabled = true
		cfg.TracePath = *tracePath
	}

	dec, err := ebcdic.NewDecoder(cfg.CCSID)
	if err != nil {
		return err
	}
	sess, err := session.NewWithDecoder(cfg.Rows, cfg.Cols, dec)
	if err != nil {
		return err
	}

	if cfg.TraceEnabled {
		store, err := trace.Open(cfg.TracePath)
		if err != nil {
			return err
		}
		defer store.Close()
		sess.SetTracer(store)
	}

	records, err := readDump(*dumpPath)
	if err != nil {
		return err
	}
	for i, rec := range records {
		if _, err := sess.Apply(rec); err != nil {
			fmt.Fprintf(os.Stderr, "record %d: %v\n%s", i, err, trace.Dump(rec))
		}
	}

	if *headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		printPlanes(sess.Planes())
		fmt.Printf("keyboard locked: %v  inhibit: %s\n",
			sess.OIA().IsKeyboardLocked(), sess.OIA().InputInhibited())
		return nil
	}
	return show(sess)
}

// readDump splits a capture file into records, each prefixed with a
// two-byte big-endian length.
func readDump(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records [][]byte
	for len(data) > 0 {
		if len(data) < 2 {
			return nil, fmt.Errorf("truncated record header in %s", path)
		}
		n := int(binary.BigEndian.Uint16(data))
		if n > len(data)-2 {
			return nil, fmt.Errorf("record claims %d bytes, %d remain in %s", n, len(data)-2, path)
		}
		records = append(records, data[2:2+n])
		data = data[2+n:]
	}
	return records, nil
}

func printPlanes(p *screen.Planes) {
	rows, cols := p.Size()
	for r := 0; r < rows; r++ {
		line, err := p.CopyRange(r*cols, cols, screen.PlaneText)
		if err != nil {
			return
		}
		fmt.Println(string(line))
	}
}

// show renders the final screen with tcell and waits for a key.
func show(sess *session.Session) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	render.NewRenderer(s).Draw(sess.Planes())
	for {
		switch s.PollEvent().(type) {
		case *tcell.EventKey:
			return nil
		case *tcell.EventResize:
			s.Sync()
			render.NewRenderer(s).Draw(sess.Planes())
		}
	}
}
