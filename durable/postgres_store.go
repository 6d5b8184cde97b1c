// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package durable

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is an alternate durable conversation-log backend for
// deployments that already run a shared Postgres durable-task host,
// wired from the corpus's `github.com/jackc/pgx/v5` dependency.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgresStore connects to connString and ensures its schema
// exists.
func OpenPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("durable: open postgres store: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS durable_sessions (
	agent_name  TEXT NOT NULL,
	session_key TEXT NOT NULL,
	state       JSONB NOT NULL,
	PRIMARY KEY (agent_name, session_key)
)`)
	if err != nil {
		return fmt.Errorf("durable: create postgres schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() { s.pool.Close() }

// Load implements [Store].
func (s *PostgresStore) Load(ctx context.Context, agentName, sessionKey string) (*SessionState, error) {
	var blob []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM durable_sessions WHERE agent_name = $1 AND session_key = $2`,
		agentName, sessionKey,
	).Scan(&blob)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("durable: postgres load: %w", err)
	}
	return decodeState(blob)
}

// Save implements [Store].
func (s *PostgresStore) Save(ctx context.Context, state *SessionState) error {
	blob, err := encodeState(state)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO durable_sessions (agent_name, session_key, state) VALUES ($1, $2, $3)
ON CONFLICT (agent_name, session_key) DO UPDATE SET state = excluded.state`,
		state.AgentName, state.SessionKey, blob,
	)
	if err != nil {
		return fmt.Errorf("durable: postgres save: %w", err)
	}
	return nil
}

// Delete implements [Store].
func (s *PostgresStore) Delete(ctx context.Context, agentName, sessionKey string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM durable_sessions WHERE agent_name = $1 AND session_key = $2`,
		agentName, sessionKey,
	)
	if err != nil {
		return fmt.Errorf("durable: postgres delete: %w", err)
	}
	return nil
}
