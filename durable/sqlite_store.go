// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package durable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // cgo-free SQLite driver, registered as "sqlite"
)

// SQLiteStore is the default durable conversation-log backend, wired
// from the corpus's `modernc.org/sqlite` dependency (a pure-Go,
// cgo-free SQLite driver two independent example repos depend on — the
// strongest signal of an idiomatic default for this domain). It stores
// one row per (agentName, sessionKey), the whole [SessionState]
// serialized as a JSON blob via [encodeState]/[decodeState].
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if necessary) a SQLite database at
// dsn and ensures its schema exists. dsn is passed straight to
// `modernc.org/sqlite`'s driver — e.g. "file:agentflow.db" or
// ":memory:".
func OpenSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("durable: open sqlite store: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS durable_sessions (
	agent_name  TEXT NOT NULL,
	session_key TEXT NOT NULL,
	state       BLOB NOT NULL,
	PRIMARY KEY (agent_name, session_key)
)`)
	if err != nil {
		return fmt.Errorf("durable: create sqlite schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Load implements [Store].
func (s *SQLiteStore) Load(ctx context.Context, agentName, sessionKey string) (*SessionState, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM durable_sessions WHERE agent_name = ? AND session_key = ?`,
		agentName, sessionKey,
	).Scan(&blob)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("durable: sqlite load: %w", err)
	}
	return decodeState(blob)
}

// Save implements [Store].
func (s *SQLiteStore) Save(ctx context.Context, state *SessionState) error {
	blob, err := encodeState(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO durable_sessions (agent_name, session_key, state) VALUES (?, ?, ?)
ON CONFLICT (agent_name, session_key) DO UPDATE SET state = excluded.state`,
		state.AgentName, state.SessionKey, blob,
	)
	if err != nil {
		return fmt.Errorf("durable: sqlite save: %w", err)
	}
	return nil
}

// Delete implements [Store].
func (s *SQLiteStore) Delete(ctx context.Context, agentName, sessionKey string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM durable_sessions WHERE agent_name = ? AND session_key = ?`,
		agentName, sessionKey,
	)
	if err != nil {
		return fmt.Errorf("durable: sqlite delete: %w", err)
	}
	return nil
}
