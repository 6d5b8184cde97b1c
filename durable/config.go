// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package durable

import (
	"time"

	"github.com/go-a2a/agentflow/agflowerr"
)

// DefaultTTL is spec.md §4.8's default time-to-live: 14 days.
const DefaultTTL = 14 * 24 * time.Hour

// MaxMinSignalDelay is spec.md §4.8's configuration bound: minSignalDelay
// must not exceed 5 minutes.
const MaxMinSignalDelay = 5 * time.Minute

// Config holds the durable entity layer's tunables (spec.md §4.8
// "Configuration bounds").
type Config struct {
	// MinSignalDelay is the minimum delay before a self-signal may fire.
	// [NewConfig] rejects values outside [0, MaxMinSignalDelay].
	MinSignalDelay time.Duration

	// DefaultTTL is the time-to-live applied when an agent has no
	// override. Nil disables TTL by default.
	DefaultTTL *time.Duration

	// TTLOverrides maps an agent name to its own TTL, taking precedence
	// over DefaultTTL. A nil value in this map disables TTL for that
	// agent specifically.
	TTLOverrides map[string]*time.Duration
}

// NewConfig validates cfg per spec.md §4.8's configuration bounds,
// returning an [agflowerr.ConfigurationError] if MinSignalDelay is
// negative or exceeds [MaxMinSignalDelay]. A nil DefaultTTL stays nil
// (TTL disabled by default); the 14-day default is obtained by passing a
// pointer to [DefaultTTL], as the config package's defaults do.
func NewConfig(cfg Config) (Config, error) {
	if cfg.MinSignalDelay < 0 || cfg.MinSignalDelay > MaxMinSignalDelay {
		return Config{}, agflowerr.NewConfigurationError("durable: minSignalDelay %s exceeds bound [0, %s]", cfg.MinSignalDelay, MaxMinSignalDelay)
	}
	if cfg.TTLOverrides == nil {
		cfg.TTLOverrides = make(map[string]*time.Duration)
	}
	return cfg, nil
}

// ttlFor resolves the effective TTL for agentName: its override if one
// is registered (including an explicit nil override disabling TTL for
// that agent), else the configured default.
func (c Config) ttlFor(agentName string) *time.Duration {
	if ttl, ok := c.TTLOverrides[agentName]; ok {
		return ttl
	}
	return c.DefaultTTL
}
