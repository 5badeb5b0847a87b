// Package search provides web search for the agent.
//
// The backend is an answer engine rather than a results list: the
// provider synthesizes a single cited answer for the query, which is
// what the agent relays to the user.
package search

import "context"

// Provider is the interface that search backends implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "perplexity").
	Name() string

	// Search executes a query and returns a synthesized answer with
	// source citations appended.
	Search(ctx context.Context, query string) (string, error)
}
