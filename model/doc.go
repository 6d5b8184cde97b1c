// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package model provides multi-provider LLM integration with unified interfaces and automatic model resolution.
//
// The model package implements the [Model] interface for various Large Language Model providers,
// using google.golang.org/genai as the primary content format. It provides consistent request/response
// shapes, streaming patterns, and provider-specific conversions while supporting both synchronous and
// streaming generation. It has no knowledge of sessions, executors, or workflows — those concerns
// live in the chatclient package, which adapts a [Model] into the runtime's ChatClient interface.
//
// # Supported Providers
//
//   - Google Gemini: direct integration with streaming and live-connection support
//   - Anthropic Claude: direct API, Vertex AI, and AWS Bedrock deployments
//   - Registry-based extensibility for additional providers, see [LLMRegistry]
//
// # Model Registry
//
// Models are resolved from a name using regex pattern matching registered against [LLMRegistry]:
//
//	// Gemini models
//	gemini-1.5-pro
//	gemini-2.0-flash-exp
//	projects/my-project/locations/us-central1/publishers/google/models/gemini-pro
//
//	// Claude models
//	claude-3-5-sonnet-20241022
//	claude-3-haiku-20240307
//
// # Basic Usage
//
// Direct model creation:
//
//	gemini, err := model.NewGemini(ctx, apiKey, "gemini-1.5-pro")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	claude, err := model.NewClaude(ctx, "claude-3-5-sonnet-20241022", model.ClaudeModeAnthropic)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Content Generation
//
//	request := model.NewLLMRequest(contents).WithModelName("gemini-1.5-pro")
//	response, err := gemini.GenerateContent(ctx, request)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(response.GetText())
//
// Streaming generation:
//
//	for resp, err := range gemini.StreamGenerateContent(ctx, request) {
//		if err != nil {
//			log.Printf("stream error: %v", err)
//			continue
//		}
//		if resp.Partial {
//			fmt.Print(resp.GetText())
//		}
//	}
//
// # Live Connections
//
// Gemini supports a stateful live connection for bidirectional streaming:
//
//	conn, err := gemini.Connect(ctx, request)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
//
//	for resp, err := range conn.Receive(ctx) {
//		// handle real-time responses
//	}
//
// # Claude Deployment Modes
//
//	// Direct Anthropic API
//	claude, err := model.NewClaude(ctx, "claude-3-5-sonnet-20241022", model.ClaudeModeAnthropic)
//
//	// Vertex AI deployment
//	claude, err := model.NewClaude(ctx, "claude-3-5-sonnet@20241022", model.ClaudeModeVertexAI)
//
//	// AWS Bedrock deployment
//	claude, err := model.NewClaude(ctx, "anthropic.claude-3-5-sonnet-20241022-v2:0", model.ClaudeModeBedrock)
//
// # Custom Model Registration
//
//	model.RegisterLLMType(
//		[]string{`my-custom-model-.*`},
//		func(ctx context.Context, apiKey, modelName string) (model.Model, error) {
//			return NewCustomModel(ctx, apiKey, modelName)
//		},
//	)
//
// # Thread Safety
//
// All model implementations are safe for concurrent use across multiple goroutines. Each
// request is handled independently with proper context propagation.
package model
