// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package config assembles the runtime's host/TTL/parallel-dispatch
// knobs (spec.md §5 Ambient Stack), grounded on the teacher's
// functional-option construction idiom (types.Option/agent.WithXxx)
// applied to a data struct instead of an agent, plus a defaults ->
// TOML-file -> env-var load order borrowed directly from the
// `nevindra-oasis` example's internal/config/config.go (Default/Load
// split, env vars winning over the file).
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/go-a2a/agentflow/durable"
)

// Runtime holds every tunable spec.md §4.3/§4.8 leaves to the host:
// whether superstep dispatch runs in parallel, the durable entity's
// TTL/minSignalDelay bounds, and where its conversation log is stored.
type Runtime struct {
	Parallel       bool
	MinSignalDelay time.Duration
	DefaultTTL     *time.Duration
	TTLOverrides   map[string]*time.Duration

	SQLitePath string
}

// Option configures a [Runtime] at construction time.
type Option func(*Runtime)

// WithParallelDispatch toggles per-superstep parallel handler dispatch
// (spec.md §5).
func WithParallelDispatch(parallel bool) Option {
	return func(r *Runtime) { r.Parallel = parallel }
}

// WithMinSignalDelay sets the durable entity's minimum self-signal
// delay, validated against [durable.MaxMinSignalDelay] at [New].
func WithMinSignalDelay(d time.Duration) Option {
	return func(r *Runtime) { r.MinSignalDelay = d }
}

// WithDefaultTTL sets the durable entity's default time-to-live. Pass
// nil to disable TTL by default.
func WithDefaultTTL(d *time.Duration) Option {
	return func(r *Runtime) { r.DefaultTTL = d }
}

// WithTTLOverride sets agentName's TTL override, taking precedence over
// the default. Pass a nil ttl to disable TTL for that agent
// specifically.
func WithTTLOverride(agentName string, ttl *time.Duration) Option {
	return func(r *Runtime) {
		if r.TTLOverrides == nil {
			r.TTLOverrides = make(map[string]*time.Duration)
		}
		r.TTLOverrides[agentName] = ttl
	}
}

// WithSQLitePath sets the DSN [durable.OpenSQLiteStore] opens for the
// default durable conversation-log backend.
func WithSQLitePath(path string) Option {
	return func(r *Runtime) { r.SQLitePath = path }
}

// defaults returns a Runtime with the teacher-grounded baseline values:
// no parallel dispatch, no self-signal delay floor, and spec.md §4.8's
// 14-day default TTL.
func defaults() Runtime {
	ttl := durable.DefaultTTL
	return Runtime{
		SQLitePath: "agentflow.db",
		DefaultTTL: &ttl,
	}
}

// New builds a Runtime from opts over the baseline defaults, validating
// spec.md §4.8's configuration bounds.
func New(opts ...Option) (Runtime, error) {
	rt := defaults()
	for _, opt := range opts {
		opt(&rt)
	}
	if _, err := rt.DurableConfig(); err != nil {
		return Runtime{}, err
	}
	return rt, nil
}

// DurableConfig translates rt into a [durable.Config], reusing
// [durable.NewConfig]'s bound validation rather than duplicating it.
func (rt Runtime) DurableConfig() (durable.Config, error) {
	return durable.NewConfig(durable.Config{
		MinSignalDelay: rt.MinSignalDelay,
		DefaultTTL:     rt.DefaultTTL,
		TTLOverrides:   rt.TTLOverrides,
	})
}

// fileRuntime is the TOML shape [LoadFile] reads, grounded on the
// `nevindra-oasis` example's flat per-section toml-tagged struct style.
type fileRuntime struct {
	Parallel          bool   `toml:"parallel"`
	MinSignalDelaySec int    `toml:"min_signal_delay_seconds"`
	DefaultTTLSec     int    `toml:"default_ttl_seconds"`
	SQLitePath        string `toml:"sqlite_path"`
}

// LoadFile reads a TOML runtime-configuration file at path (defaults ->
// file -> env, env wins, same order as `nevindra-oasis`'s config.Load).
// A missing file is not an error; LoadFile falls back to defaults.
func LoadFile(path string) (Runtime, error) {
	rt := defaults()

	if data, err := os.ReadFile(path); err == nil {
		var fr fileRuntime
		if err := toml.Unmarshal(data, &fr); err != nil {
			return Runtime{}, err
		}
		rt.Parallel = fr.Parallel
		if fr.MinSignalDelaySec > 0 {
			rt.MinSignalDelay = time.Duration(fr.MinSignalDelaySec) * time.Second
		}
		if fr.DefaultTTLSec > 0 {
			ttl := time.Duration(fr.DefaultTTLSec) * time.Second
			rt.DefaultTTL = &ttl
		}
		if fr.SQLitePath != "" {
			rt.SQLitePath = fr.SQLitePath
		}
	}

	if v := os.Getenv("AGENTFLOW_SQLITE_PATH"); v != "" {
		rt.SQLitePath = v
	}
	if v := os.Getenv("AGENTFLOW_PARALLEL"); v == "true" || v == "1" {
		rt.Parallel = true
	}

	if _, err := rt.DurableConfig(); err != nil {
		return Runtime{}, err
	}
	return rt, nil
}
