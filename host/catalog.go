// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"strings"
	"sync"

	"github.com/go-a2a/agentflow/agflowerr"
	"github.com/go-a2a/agentflow/session"
	"github.com/go-a2a/agentflow/workflow"
)

// Runtime is the explicit capability struct passed into agent and
// workflow factories, replacing service-locator access to a DI
// container (§9 redesign flags): a factory receives exactly the
// capabilities it declares a need for instead of reaching into a
// global service provider.
type Runtime struct {
	Client session.ChatClient
	Extra  map[string]any
}

// AgentFactory builds a [session.Agent] from a [Runtime].
type AgentFactory func(rt Runtime) (*session.Agent, error)

// AgentCatalog is a name-keyed, case-insensitive registry of agents,
// grounded on the teacher's model.LLMRegistry mutex + map shape
// (generalized from regex patterns to exact case-folded names).
type AgentCatalog struct {
	mu     sync.RWMutex
	agents map[string]*session.Agent
}

// NewAgentCatalog creates an empty AgentCatalog.
func NewAgentCatalog() *AgentCatalog {
	return &AgentCatalog{agents: make(map[string]*session.Agent)}
}

// Register builds an agent via factory and registers it under name.
// Registration fails with an [agflowerr.ConfigurationError] if the
// produced agent's Name does not equal name (spec.md §4.9).
func (c *AgentCatalog) Register(name string, rt Runtime, factory AgentFactory) error {
	agent, err := factory(rt)
	if err != nil {
		return err
	}
	if agent.Name != name {
		return agflowerr.NewConfigurationError("host: agent factory for %q produced an agent named %q", name, agent.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.agents[strings.ToLower(name)] = agent
	return nil
}

// Resolve implements [durable.AgentResolver]: it returns the registered
// agent for name (case-insensitive), if any.
func (c *AgentCatalog) Resolve(name string) (*session.Agent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.agents[strings.ToLower(name)]
	return a, ok
}

// Names lists every registered agent name, original case as registered.
func (c *AgentCatalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.agents))
	for _, a := range c.agents {
		names = append(names, a.Name)
	}
	return names
}

// WorkflowFactory builds a [workflow.Graph] from a [Runtime].
type WorkflowFactory func(rt Runtime) (*workflow.Graph, error)

// WorkflowCatalog is a name-keyed, case-insensitive registry of
// compiled workflows, the same registry shape as [AgentCatalog].
type WorkflowCatalog struct {
	mu        sync.RWMutex
	workflows map[string]*workflow.Graph
}

// NewWorkflowCatalog creates an empty WorkflowCatalog.
func NewWorkflowCatalog() *WorkflowCatalog {
	return &WorkflowCatalog{workflows: make(map[string]*workflow.Graph)}
}

// Register builds a workflow via factory and registers it under name.
// Registration fails with an [agflowerr.ConfigurationError] if the
// produced graph's Name does not equal name.
func (c *WorkflowCatalog) Register(name string, rt Runtime, factory WorkflowFactory) error {
	g, err := factory(rt)
	if err != nil {
		return err
	}
	if g.Name() != name {
		return agflowerr.NewConfigurationError("host: workflow factory for %q produced a graph named %q", name, g.Name())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.workflows[strings.ToLower(name)] = g
	return nil
}

// Resolve returns the registered workflow for name (case-insensitive),
// if any.
func (c *WorkflowCatalog) Resolve(name string) (*workflow.Graph, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.workflows[strings.ToLower(name)]
	return g, ok
}
