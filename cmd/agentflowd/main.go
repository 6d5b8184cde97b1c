// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command agentflowd is a thin demonstration host for the agentflow
// runtime: it loads a [config.Runtime], wires a single chat model
// behind a [host.AgentCatalog] and a [durable.Manager], and serves one
// agent over stdin/stdout, persisting every turn to the durable
// conversation log. Grounded on the `nevindra-oasis` example's
// cmd/oasis/main.go (env-var wiring, no flag parsing, one functional
// construction chain, signal.NotifyContext shutdown).
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"go.opentelemetry.io/otel"

	"github.com/go-a2a/agentflow/cache"
	"github.com/go-a2a/agentflow/chatclient"
	"github.com/go-a2a/agentflow/config"
	"github.com/go-a2a/agentflow/durable"
	"github.com/go-a2a/agentflow/host"
	"github.com/go-a2a/agentflow/internal/telemetry"
	"github.com/go-a2a/agentflow/model"
	"github.com/go-a2a/agentflow/pkg/logging"
	"github.com/go-a2a/agentflow/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "agentflowd:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx = logging.NewContext(ctx, logger)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(ctx) }()
	otel.SetTracerProvider(tp)

	mp := sdkmetric.NewMeterProvider()
	defer func() { _ = mp.Shutdown(ctx) }()
	otel.SetMeterProvider(mp)

	inst, err := telemetry.New()
	if err != nil {
		return fmt.Errorf("building telemetry instruments: %w", err)
	}

	cfgPath := os.Getenv("AGENTFLOW_CONFIG")
	if cfgPath == "" {
		cfgPath = "agentflow.toml"
	}
	rt, err := config.LoadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config %q: %w", cfgPath, err)
	}
	durableCfg, err := rt.DurableConfig()
	if err != nil {
		return fmt.Errorf("resolving durable config: %w", err)
	}

	agentName := "assistant"
	client, err := newChatClient(ctx)
	if err != nil {
		return err
	}

	catalog := host.NewAgentCatalog()
	if err := catalog.Register(agentName, host.Runtime{Client: client}, func(hrt host.Runtime) (*session.Agent, error) {
		return session.NewAgent(agentName, hrt.Client, session.WithDefaultOptions(session.AgentOptions{
			Instructions: "You are a helpful assistant. Respond concisely.",
		}))
	}); err != nil {
		return fmt.Errorf("registering agent: %w", err)
	}

	store, err := durable.OpenSQLiteStore(rt.SQLitePath)
	if err != nil {
		return fmt.Errorf("opening durable store %q: %w", rt.SQLitePath, err)
	}
	defer store.Close()

	convCache := cache.New(0)

	mgr := durable.NewManager(store, durableCfg, catalog,
		durable.WithTelemetry(inst),
		durable.WithStreamSink(func(_ context.Context, update session.ResponseUpdate) {
			logger.Info("stream update", slog.String("text", update.Delta.Text()))
		}),
	)

	logger.Info("agentflowd ready", slog.String("agent", agentName), slog.String("sqlitePath", rt.SQLitePath))
	return serve(ctx, mgr, convCache, agentName)
}

// newChatClient picks a backing model from whichever API key is set in
// the environment, grounded on the teacher's model.NewClaude/NewGemini
// constructors.
func newChatClient(ctx context.Context) (*chatclient.Client, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		modelName := os.Getenv("AGENTFLOW_MODEL")
		if modelName == "" {
			modelName = "claude-3-5-sonnet-20241022"
		}
		c, err := chatclient.NewAnthropic(ctx, modelName, model.ClaudeModeAnthropic)
		if err != nil {
			return nil, fmt.Errorf("building Anthropic client: %w", err)
		}
		return c, nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		modelName := os.Getenv("AGENTFLOW_MODEL")
		if modelName == "" {
			modelName = "gemini-2.0-flash"
		}
		c, err := chatclient.NewGemini(ctx, key, modelName)
		if err != nil {
			return nil, fmt.Errorf("building Gemini client: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("set ANTHROPIC_API_KEY or GEMINI_API_KEY to run agentflowd")
}

// serve reads one user turn per line from stdin, running it through the
// durable entity keyed by a fixed session so the conversation log
// persists across process restarts, and records every turn's request
// and response into convCache for pagination.
func serve(ctx context.Context, mgr *durable.Manager, convCache *cache.ConversationCache, agentName string) error {
	const sessionKey = "cli"
	scanner := bufio.NewScanner(os.Stdin)
	turn := 0

	fmt.Println("agentflowd> type a message and press enter (Ctrl-D to quit)")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		turn++
		correlationID := fmt.Sprintf("cli-%d", turn)
		req := durable.RunRequest{
			CorrelationID: correlationID,
			Messages:      []session.ChatMessage{session.NewTextMessage(session.RoleUser, line)},
		}

		resp, err := mgr.Run(ctx, agentName, sessionKey, req)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}

		if err := convCache.Add(sessionKey, cache.Item{ID: correlationID, Payload: line}); err != nil {
			fmt.Fprintln(os.Stderr, "cache: warning:", err)
		}

		for _, m := range resp.Messages {
			fmt.Println(m.Text())
			if err := convCache.Add(sessionKey, cache.Item{ID: correlationID + "-reply", Payload: m.Text()}); err != nil {
				fmt.Fprintln(os.Stderr, "cache: warning:", err)
			}
		}
	}
	return scanner.Err()
}
