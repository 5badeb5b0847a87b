// Package tools defines the tools available to the agent and
// dispatches tool calls.
//
// Execution is total: whatever goes wrong inside a handler comes back
// as a text result for the model to read, never as an error that
// would abort the turn. Tool results are user-facing and written in
// Spanish, matching the agent's working language.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dvila/faro/internal/caldav"
	"github.com/dvila/faro/internal/config"
	"github.com/dvila/faro/internal/email"
	"github.com/dvila/faro/internal/fetch"
	"github.com/dvila/faro/internal/memory"
	"github.com/dvila/faro/internal/notion"
	"github.com/dvila/faro/internal/search"
	"github.com/dvila/faro/internal/sheets"
)

// Tool represents a callable tool.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     func(ctx context.Context, args map[string]any) (string, error)
}

// Deps holds the backends the built-in tools operate on. Nil fields
// are allowed; tools whose backend is missing report that in their
// result instead of being registered at all, so the model never sees
// a tool it cannot call.
type Deps struct {
	Notion    *notion.Client
	Email     *email.Client
	Calendar  *caldav.Client
	Editorial *sheets.Queue
	Memory    *memory.Store
	Search    search.Provider
	Fetcher   *fetch.Fetcher

	Branches []config.BranchConfig
	Location *time.Location
	Logger   *slog.Logger
	Now      func() time.Time
}

// Registry holds the available tools in registration order.
type Registry struct {
	deps  Deps
	order []string
	tools map[string]*Tool
}

// NewRegistry creates a registry with the built-in tools for every
// configured backend.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	r := &Registry{
		deps:  deps,
		tools: make(map[string]*Tool),
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) registerBuiltins() {
	if r.deps.Notion != nil {
		r.registerNotionTools()
	}
	if r.deps.Calendar != nil {
		r.registerCalendarTools()
	}
	if r.deps.Email != nil {
		r.registerEmailTools()
	}
	if r.deps.Editorial != nil {
		r.registerEditorialTools()
	}
	if r.deps.Memory != nil {
		r.registerMemoryTools()
	}
	if r.deps.Search != nil || r.deps.Fetcher != nil {
		r.registerWebTools()
	}
	if r.deps.Notion != nil && r.deps.Calendar != nil {
		r.registerAgendaTool()
	}
}

// Register adds a tool. Re-registering a name replaces the tool but
// keeps its original position.
func (r *Registry) Register(t *Tool) {
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
}

// Get retrieves a tool by name, or nil.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Schemas returns the tool definitions in the {name, description,
// input_schema} form the model API expects, in registration order.
func (r *Registry) Schemas() []map[string]any {
	result := make([]map[string]any, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		result = append(result, map[string]any{
			"name":         t.Name,
			"description":  t.Description,
			"input_schema": t.InputSchema,
		})
	}
	return result
}

// Validate checks every registered tool for a usable definition.
// Called once at startup so a malformed tool fails fast instead of
// surfacing as a confusing API error mid-conversation.
func (r *Registry) Validate() error {
	for _, name := range r.order {
		t := r.tools[name]
		if t.Name == "" || t.Description == "" {
			return fmt.Errorf("tool %q: missing name or description", name)
		}
		if t.Handler == nil {
			return fmt.Errorf("tool %q: nil handler", name)
		}
		if typ, _ := t.InputSchema["type"].(string); typ != "object" {
			return fmt.Errorf("tool %q: input schema must be an object", name)
		}
	}
	return nil
}

// Execute runs a tool by name. It never fails: unknown tools and
// handler errors come back as Spanish text results for the model.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) string {
	tool := r.tools[name]
	if tool == nil {
		r.deps.Logger.Warn("unknown tool requested", "tool", name)
		return fmt.Sprintf("Error: herramienta '%s' no reconocida.", name)
	}

	result, err := tool.Handler(ctx, args)
	if err != nil {
		r.deps.Logger.Warn("tool failed", "tool", name, "error", err)
		return fmt.Sprintf("Error ejecutando %s: %v", name, err)
	}
	return result
}

// toJSON renders a tool result as indented JSON.
func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

// Argument helpers. The model sends JSON, so numbers arrive as
// float64 and anything can be missing.

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func floatArg(args map[string]any, key string) float64 {
	f, _ := args[key].(float64)
	return f
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func boolArg(args map[string]any, key string, def bool) bool {
	b, ok := args[key].(bool)
	if !ok {
		return def
	}
	return b
}

func stringsArg(args map[string]any, key string) []string {
	raw, _ := args[key].([]any)
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
