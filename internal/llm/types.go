// Package llm provides the LLM client used by the agent loop.
package llm

import (
	"log/slog"
	"time"
)

// LevelTrace is below Debug, used for wire-level payload logging.
const LevelTrace = slog.Level(-8)

// Message represents a chat message.
//
// A message is one of three shapes:
//   - role "user" with plain Content,
//   - role "assistant" with Content and/or ToolCalls,
//   - role "tool" carrying the ToolResults for the assistant message
//     immediately preceding it.
//
// Wire-format conversion happens at the provider boundary (anthropic.go);
// the rest of the codebase only sees this type.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	// ID is the provider-assigned invocation id. Anthropic requires it
	// to correlate the eventual tool_result.
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolResult carries the textual outcome of one tool invocation.
type ToolResult struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Stop conditions reported by the provider.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

// ChatResponse is the response to one model call.
type ChatResponse struct {
	Model      string
	CreatedAt  time.Time
	Message    Message
	StopReason string

	// Token usage
	InputTokens  int
	OutputTokens int
}
