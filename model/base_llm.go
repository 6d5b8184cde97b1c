// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// BaseLLM represents a base implementation of a Large Language Model.
// It's an equivalent of the Python ADK BaseLlm class.
type BaseLLM struct {
	// modelName is the specific LLM model name.
	modelName string

	// Config carries the functional-option-configurable generation settings.
	Config
}

var _ Model = (*BaseLLM)(nil)

// NewBaseLLM creates a new [BaseLLM] instance.
func NewBaseLLM(modelName string, opts ...Option) *BaseLLM {
	base := &BaseLLM{
		modelName: modelName,
		Config:    newConfig(),
	}
	for _, opt := range opts {
		base.Config = opt.apply(base.Config)
	}

	return base
}

// Name returns the name of the model.
func (m *BaseLLM) Name() string {
	return m.modelName
}

// SupportedModels returns a list of supported models.
func (m *BaseLLM) SupportedModels() []string {
	return []string{}
}

// Connect creates a live connection to the LLM.
func (m *BaseLLM) Connect(ctx context.Context, request *LLMRequest) (BaseConnection, error) {
	return nil, fmt.Errorf("Connect not implemented for BaseLLM")
}

// GenerateContent generates content from the model.
func (m *BaseLLM) GenerateContent(ctx context.Context, request *LLMRequest) (*LLMResponse, error) {
	return nil, fmt.Errorf("GenerateContent not implemented for BaseLLM")
}

// StreamGenerateContent streams generated content from the model.
func (m *BaseLLM) StreamGenerateContent(ctx context.Context, request *LLMRequest) iter.Seq2[*LLMResponse, error] {
	return func(yield func(*LLMResponse, error) bool) {
		if !yield(nil, errors.New("BaseLLM: StreamGenerateContent not implemented")) {
			return
		}
	}
}
