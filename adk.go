// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package adk is a durable, graph-based runtime for composing and running
// multi-agent chat workflows against pluggable LLM backends.
package adk

import (
	// blank import only: keeps the dependency in the module graph; no package here calls it
	_ "github.com/MakeNowJust/heredoc/v2"
	// blank import only: keeps the dependency in the module graph; no package here calls it
	_ "github.com/google/dotprompt/go/dotprompt"
)

// Version is the version of the runtime.
var Version = "v0.0.0"
