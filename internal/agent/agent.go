// Package agent implements the core agent loop: it sends the
// conversation to the model, executes the tools the model asks for and
// keeps going until the model produces a final answer.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dvila/faro/internal/config"
	"github.com/dvila/faro/internal/llm"
	"github.com/dvila/faro/internal/memory"
	"github.com/dvila/faro/internal/prompts"
	"github.com/dvila/faro/internal/rag"
	"github.com/dvila/faro/internal/retry"
	"github.com/dvila/faro/internal/session"
	"github.com/dvila/faro/internal/tools"
)

// Request is one user turn.
type Request struct {
	// SessionKey identifies the conversation. Ignored when Ephemeral.
	SessionKey string

	// Text is the user's message.
	Text string

	// Ephemeral runs the turn on a throwaway conversation that is
	// never stored. Scheduled briefings use this so they don't pollute
	// the chat history.
	Ephemeral bool
}

// Response is the agent's final answer for one turn.
type Response struct {
	Text       string
	StopReason string
	Iterations int
	ToolCalls  int
}

// Config wires an Agent. Memory and Retriever are optional.
type Config struct {
	Logger    *slog.Logger
	Client    llm.Client
	Tools     *tools.Registry
	Sessions  *session.Store
	Memory    *memory.Store
	Retriever *rag.Retriever
	Branches  []config.BranchConfig

	Model         string
	MaxIterations int
	Retry         retry.Policy
	Now           func() time.Time
}

// Agent orchestrates model calls and tool execution.
type Agent struct {
	logger    *slog.Logger
	client    llm.Client
	tools     *tools.Registry
	sessions  *session.Store
	memory    *memory.Store
	retriever *rag.Retriever
	branches  []config.BranchConfig

	model         string
	maxIterations int
	retry         retry.Policy
	now           func() time.Time
}

// New creates an Agent.
func New(cfg Config) *Agent {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewStore()
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = 15
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Agent{
		logger:        cfg.Logger,
		client:        cfg.Client,
		tools:         cfg.Tools,
		sessions:      cfg.Sessions,
		memory:        cfg.Memory,
		retriever:     cfg.Retriever,
		branches:      cfg.Branches,
		model:         cfg.Model,
		maxIterations: cfg.MaxIterations,
		retry:         cfg.Retry,
		now:           cfg.Now,
	}
}

// ProcessTurn runs one full user turn to completion. Turns on the same
// session are serialized; concurrent messages wait their turn instead
// of interleaving tool results.
func (a *Agent) ProcessTurn(ctx context.Context, req Request) (*Response, error) {
	logger := a.logger.With(
		"request_id", uuid.NewString(),
		"conversation", req.SessionKey,
	)

	var history []llm.Message
	appendMsg := func(m llm.Message) { history = append(history, m) }
	messages := func() []llm.Message { return history }

	if !req.Ephemeral {
		unlock := a.sessions.LockTurn(req.SessionKey)
		defer unlock()
		appendMsg = func(m llm.Message) { a.sessions.Append(req.SessionKey, m) }
		messages = func() []llm.Message { return a.sessions.Messages(req.SessionKey) }
	}

	appendMsg(llm.Message{Role: "user", Content: req.Text})

	system := a.buildSystemPrompt(ctx, req.Text, logger)
	schemas := a.tools.Schemas()

	start := a.now()
	toolCalls := 0
	for iter := 1; iter <= a.maxIterations; iter++ {
		var resp *llm.ChatResponse
		err := a.retry.Do(ctx, func(ctx context.Context) error {
			r, err := a.client.Chat(ctx, a.model, system, messages(), schemas)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("model call: %w", err)
		}

		appendMsg(resp.Message)

		switch resp.StopReason {
		case llm.StopToolUse:
			results := make([]llm.ToolResult, 0, len(resp.Message.ToolCalls))
			for _, call := range resp.Message.ToolCalls {
				logger.Info("executing tool", "tool", call.Name, "iteration", iter)
				results = append(results, llm.ToolResult{
					ID:      call.ID,
					Content: a.tools.Execute(ctx, call.Name, call.Arguments),
				})
			}
			toolCalls += len(results)
			appendMsg(llm.Message{Role: "tool", ToolResults: results})

		case llm.StopEndTurn:
			logger.Info("turn completed",
				"iterations", iter,
				"tool_calls", toolCalls,
				"duration", a.now().Sub(start),
			)
			return &Response{
				Text:       resp.Message.Content,
				StopReason: resp.StopReason,
				Iterations: iter,
				ToolCalls:  toolCalls,
			}, nil

		default:
			// max_tokens, refusal and anything else the provider may
			// add: surface whatever text came back rather than loop.
			logger.Warn("anomalous stop reason", "stop_reason", resp.StopReason)
			return &Response{
				Text:       resp.Message.Content,
				StopReason: resp.StopReason,
				Iterations: iter,
				ToolCalls:  toolCalls,
			}, nil
		}
	}

	return nil, fmt.Errorf("tool loop did not settle after %d iterations", a.maxIterations)
}

// buildSystemPrompt assembles the persona with current memory and any
// retrieved document context. Both lookups are best effort.
func (a *Agent) buildSystemPrompt(ctx context.Context, userText string, logger *slog.Logger) string {
	var memoryDoc string
	if a.memory != nil {
		doc, err := a.memory.Get()
		if err != nil {
			logger.Warn("memory read failed", "error", err)
		} else {
			memoryDoc = doc
		}
	}

	var extraContext string
	if a.retriever != nil {
		extraContext = a.retriever.RelevantContext(ctx, userText)
	}

	return prompts.System(prompts.SystemInput{
		Now:          a.now(),
		Branches:     a.branches,
		Memory:       memoryDoc,
		ExtraContext: extraContext,
	})
}

// ClearSession drops a conversation's history.
func (a *Agent) ClearSession(key string) {
	a.sessions.Clear(key)
}

// SessionStats reports conversation counts for diagnostics.
func (a *Agent) SessionStats() map[string]any {
	return a.sessions.Stats()
}
