package llm

import "context"

// Client is the interface the orchestrator uses to talk to a model
// provider. Implementations must be safe for concurrent use.
type Client interface {
	// Chat sends a chat completion request and returns the response.
	Chat(ctx context.Context, model string, system string, messages []Message, tools []map[string]any) (*ChatResponse, error)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}
