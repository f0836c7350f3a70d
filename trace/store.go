// Copyright © 2026 Texel5250 contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: trace/store.go
// Summary: SQLite-backed data-stream trace for diagnosing host sessions.
//
// Every applied message can be recorded with its direction, command byte
// and raw bytes. The store is synchronous and mutex-guarded; tracing sits
// outside the decode hot path and favours simplicity over throughput.

package trace

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Current schema version - increment when schema changes require a rebuild.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS stream_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp INTEGER NOT NULL,      -- UnixNano
    direction TEXT NOT NULL,         -- "host" or "terminal"
    command INTEGER NOT NULL,        -- leading command byte
    length INTEGER NOT NULL,
    payload TEXT NOT NULL            -- hex encoded
);

CREATE INDEX IF NOT EXISTS idx_events_timestamp ON stream_events(timestamp);
`

// Event is one recorded data-stream message.
type Event struct {
	ID        int64
	Timestamp time.Time
	Direction string
	Command   byte
	Length    int
	Payload   []byte
}

// Store persists stream events to a SQLite database.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the trace database, creating parent directories as
// needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("trace: create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("trace: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: create schema: %w", err)
	}
	if err := ensureVersion(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureVersion(db *sql.DB) error {
	var have int
	err := db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&have)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion)
		return err
	case err != nil:
		return fmt.Errorf("trace: read schema version: %w", err)
	}
	if have != schemaVersion {
		log.Printf("Trace: rebuilding event table (schema %d -> %d)", have, schemaVersion)
		if _, err := db.Exec(`DELETE FROM stream_events`); err != nil {
			return err
		}
		_, err = db.Exec(`UPDATE schema_version SET version = ?`, schemaVersion)
		return err
	}
	return nil
}

// Record stores one message. It satisfies session.Tracer.
func (s *Store) Record(direction string, command byte, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("trace: store closed")
	}
	_, err := s.db.Exec(
		`INSERT INTO stream_events (timestamp, direction, command, length, payload) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UnixNano(), direction, int(command), len(data), hex.EncodeToString(data),
	)
	return err
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("trace: store closed")
	}
	rows, err := s.db.Query(
		`SELECT id, timestamp, direction, command, length, payload
		 FROM stream_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev      Event
			ts      int64
			cmd     int
			payload string
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.Direction, &cmd, &ev.Length, &payload); err != nil {
			return nil, err
		}
		ev.Timestamp = time.Unix(0, ts)
		ev.Command = byte(cmd)
		ev.Payload, err = hex.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("trace: corrupt payload for event %d: %w", ev.ID, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Dump formats an event payload in the classic offset/hex/ascii layout used
// for data-stream dumps.
func Dump(data []byte) string {
	const width = 16
	var b []byte
	for off := 0; off < len(data); off += width {
		end := min(off+width, len(data))
		b = append(b, fmt.Sprintf("%04x  ", off)...)
		for i := off; i < off+width; i++ {
			if i < end {
				b = append(b, fmt.Sprintf("%02x ", data[i])...)
			} else {
				b = append(b, "   "...)
			}
		}
		b = append(b, ' ')
		for i := off; i < end; i++ {
			c := data[i]
			if c < 0x20 || c > 0x7e {
				c = '.'
			}
			b = append(b, c)
		}
		b = append(b, '\n')
	}
	return string(b)
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
