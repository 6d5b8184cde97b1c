// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

// AgentOptions carries the per-run/per-agent-default knobs the pipeline
// merges at step 1 (spec.md §4.4): scalar fields where the per-run
// value wins, instructions concatenated, and tools/stop-sequences/
// additional-properties unioned.
type AgentOptions struct {
	Instructions         string
	StopSequences        []string
	Tools                []Tool
	AdditionalProperties map[string]any

	// RawRepresentationFactory produces a provider-specific raw request
	// shape (e.g. a concrete genai.GenerateContentConfig), chained so a
	// per-run factory can fall back to the agent's default.
	RawRepresentationFactory func() any
}

// MergeOptions combines perRun over agentDefault per spec.md §4.4 step
// 1: scalar fields take the per-run value if set, else the agent
// default; Instructions concatenates default then per-run with a
// newline; Tools/StopSequences/AdditionalProperties union (agent
// values followed by per-run values); RawRepresentationFactory chains,
// falling back to the agent default when the per-run factory returns
// nil.
func MergeOptions(agentDefault, perRun AgentOptions) AgentOptions {
	merged := AgentOptions{
		Instructions:  joinInstructions(agentDefault.Instructions, perRun.Instructions),
		StopSequences: unionStrings(agentDefault.StopSequences, perRun.StopSequences),
		Tools:         unionTools(agentDefault.Tools, perRun.Tools),
	}

	merged.AdditionalProperties = make(map[string]any, len(agentDefault.AdditionalProperties)+len(perRun.AdditionalProperties))
	for k, v := range agentDefault.AdditionalProperties {
		merged.AdditionalProperties[k] = v
	}
	for k, v := range perRun.AdditionalProperties {
		merged.AdditionalProperties[k] = v
	}

	def, run := agentDefault.RawRepresentationFactory, perRun.RawRepresentationFactory
	merged.RawRepresentationFactory = func() any {
		if run != nil {
			if v := run(); v != nil {
				return v
			}
		}
		if def != nil {
			return def()
		}
		return nil
	}

	return merged
}

func joinInstructions(agentDefault, perRun string) string {
	switch {
	case agentDefault == "":
		return perRun
	case perRun == "":
		return agentDefault
	default:
		return agentDefault + "\n" + perRun
	}
}

func unionStrings(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func unionTools(a, b []Tool) []Tool {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]Tool, 0, len(a)+len(b))
	for _, t := range append(append([]Tool(nil), a...), b...) {
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		out = append(out, t)
	}
	return out
}
