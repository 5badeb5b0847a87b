package tools

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/dvila/faro/internal/memory"
	"github.com/dvila/faro/internal/search"
	_ "modernc.org/sqlite"
)

func newTestRegistry(t *testing.T, deps Deps) *Registry {
	t.Helper()
	return NewRegistry(deps)
}

func TestExecuteUnknownTool(t *testing.T) {
	r := newTestRegistry(t, Deps{})

	got := r.Execute(context.Background(), "teleport", nil)
	want := "Error: herramienta 'teleport' no reconocida."
	if got != want {
		t.Errorf("Execute() = %q, want %q", got, want)
	}
}

func TestExecuteHandlerError(t *testing.T) {
	r := newTestRegistry(t, Deps{})
	r.Register(&Tool{
		Name:        "broken",
		Description: "always fails",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(context.Context, map[string]any) (string, error) {
			return "", errors.New("sin conexión")
		},
	})

	got := r.Execute(context.Background(), "broken", nil)
	want := "Error ejecutando broken: sin conexión"
	if got != want {
		t.Errorf("Execute() = %q, want %q", got, want)
	}
}

func TestSchemasOrderAndShape(t *testing.T) {
	r := newTestRegistry(t, Deps{})
	r.Register(&Tool{
		Name:        "first",
		Description: "el primero",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		Handler:     func(context.Context, map[string]any) (string, error) { return "", nil },
	})
	r.Register(&Tool{
		Name:        "second",
		Description: "el segundo",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		Handler:     func(context.Context, map[string]any) (string, error) { return "", nil },
	})

	schemas := r.Schemas()
	if len(schemas) != 2 {
		t.Fatalf("Schemas() returned %d entries, want 2", len(schemas))
	}
	if schemas[0]["name"] != "first" || schemas[1]["name"] != "second" {
		t.Errorf("Schemas() order = %v, %v", schemas[0]["name"], schemas[1]["name"])
	}
	for _, s := range schemas {
		for _, key := range []string{"name", "description", "input_schema"} {
			if _, ok := s[key]; !ok {
				t.Errorf("schema %v missing key %q", s["name"], key)
			}
		}
	}
}

func TestRegisterReplacesKeepingPosition(t *testing.T) {
	r := newTestRegistry(t, Deps{})
	mk := func(name, desc string) *Tool {
		return &Tool{
			Name:        name,
			Description: desc,
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
			Handler:     func(context.Context, map[string]any) (string, error) { return "", nil },
		}
	}
	r.Register(mk("a", "one"))
	r.Register(mk("b", "two"))
	r.Register(mk("a", "replaced"))

	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("Names() = %v, want [a b]", names)
	}
	if r.Get("a").Description != "replaced" {
		t.Errorf("Get(a).Description = %q, want replaced", r.Get("a").Description)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		tool *Tool
	}{
		{
			name: "missing description",
			tool: &Tool{
				Name:        "x",
				InputSchema: map[string]any{"type": "object"},
				Handler:     func(context.Context, map[string]any) (string, error) { return "", nil },
			},
		},
		{
			name: "nil handler",
			tool: &Tool{
				Name:        "x",
				Description: "algo",
				InputSchema: map[string]any{"type": "object"},
			},
		},
		{
			name: "non-object schema",
			tool: &Tool{
				Name:        "x",
				Description: "algo",
				InputSchema: map[string]any{"type": "string"},
				Handler:     func(context.Context, map[string]any) (string, error) { return "", nil },
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRegistry(t, Deps{})
			r.Register(tc.tool)
			if err := r.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}

	t.Run("builtins are valid", func(t *testing.T) {
		if err := newTestRegistry(t, Deps{}).Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"s":    "hola",
		"f":    2.5,
		"i":    float64(7),
		"b":    true,
		"list": []any{"a", "b", 3},
	}

	if got := stringArg(args, "s"); got != "hola" {
		t.Errorf("stringArg = %q", got)
	}
	if got := stringArg(args, "missing"); got != "" {
		t.Errorf("stringArg(missing) = %q", got)
	}
	if got := floatArg(args, "f"); got != 2.5 {
		t.Errorf("floatArg = %v", got)
	}
	if got := intArg(args, "i"); got != 7 {
		t.Errorf("intArg = %v", got)
	}
	if got := boolArg(args, "b", false); !got {
		t.Error("boolArg(b) = false")
	}
	if got := boolArg(args, "missing", true); !got {
		t.Error("boolArg default not applied")
	}
	got := stringsArg(args, "list")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("stringsArg = %v, want [a b]", got)
	}
}

func newTestMemory(t *testing.T) *memory.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := memory.NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestMemoryTools(t *testing.T) {
	r := newTestRegistry(t, Deps{Memory: newTestMemory(t)})
	ctx := context.Background()

	got := r.Execute(ctx, "get_memory", nil)
	if got != "La memoria está vacía todavía." {
		t.Errorf("empty memory = %q", got)
	}

	got = r.Execute(ctx, "update_memory", map[string]any{
		"content": "## Proyectos Activos\n- Faro",
	})
	if got != "✅ Memoria actualizada." {
		t.Errorf("update_memory = %q", got)
	}

	got = r.Execute(ctx, "get_memory", nil)
	if !strings.Contains(got, "Faro") {
		t.Errorf("get_memory after update = %q", got)
	}
}

type fakeSearch struct {
	lastQuery string
	result    string
	err       error
}

func (f *fakeSearch) Name() string { return "fake" }

func (f *fakeSearch) Search(_ context.Context, query string) (string, error) {
	f.lastQuery = query
	return f.result, f.err
}

var _ search.Provider = (*fakeSearch)(nil)

func TestWebSearchTool(t *testing.T) {
	fake := &fakeSearch{result: "respuesta\n\nFuentes:\n[1] https://example.com"}
	r := newTestRegistry(t, Deps{Search: fake})

	got := r.Execute(context.Background(), "web_search", map[string]any{
		"query": "noticias de hoy",
	})
	if got != fake.result {
		t.Errorf("web_search = %q", got)
	}
	if fake.lastQuery != "noticias de hoy" {
		t.Errorf("query passed = %q", fake.lastQuery)
	}
}

func TestWebSearchToolMissingQuery(t *testing.T) {
	r := newTestRegistry(t, Deps{Search: &fakeSearch{}})

	got := r.Execute(context.Background(), "web_search", map[string]any{})
	if !strings.Contains(got, "falta la consulta") {
		t.Errorf("web_search without query = %q", got)
	}
}

func TestWebSearchToolError(t *testing.T) {
	r := newTestRegistry(t, Deps{Search: &fakeSearch{err: errors.New("HTTP 401")}})

	got := r.Execute(context.Background(), "web_search", map[string]any{"query": "x"})
	if !strings.HasPrefix(got, "Error ejecutando web_search:") {
		t.Errorf("web_search error = %q", got)
	}
}

func TestBuiltinRegistrationByDeps(t *testing.T) {
	r := newTestRegistry(t, Deps{Memory: newTestMemory(t), Search: &fakeSearch{}})

	names := r.Names()
	want := map[string]bool{
		"get_memory":    true,
		"update_memory": true,
		"web_search":    true,
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected tool registered: %s", n)
		}
		delete(want, n)
	}
	for n := range want {
		t.Errorf("tool not registered: %s", n)
	}
}
