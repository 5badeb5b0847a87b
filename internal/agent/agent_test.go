package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dvila/faro/internal/llm"
	"github.com/dvila/faro/internal/retry"
	"github.com/dvila/faro/internal/session"
	"github.com/dvila/faro/internal/tools"
)

// scriptedClient returns canned responses in order, recording what it
// was asked.
type scriptedClient struct {
	t         *testing.T
	responses []*llm.ChatResponse
	errs      []error

	calls    int
	requests [][]llm.Message
}

func (c *scriptedClient) Chat(_ context.Context, _ string, _ string, messages []llm.Message, _ []map[string]any) (*llm.ChatResponse, error) {
	snapshot := make([]llm.Message, len(messages))
	copy(snapshot, messages)
	c.requests = append(c.requests, snapshot)

	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	if i >= len(c.responses) {
		c.t.Fatalf("unexpected Chat call #%d", i+1)
	}
	return c.responses[i], nil
}

func (c *scriptedClient) Ping(context.Context) error { return nil }

func endTurn(text string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Message:    llm.Message{Role: "assistant", Content: text},
		StopReason: llm.StopEndTurn,
	}
}

func toolUse(calls ...llm.ToolCall) *llm.ChatResponse {
	return &llm.ChatResponse{
		Message:    llm.Message{Role: "assistant", ToolCalls: calls},
		StopReason: llm.StopToolUse,
	}
}

func newTestAgent(t *testing.T, client llm.Client) (*Agent, *tools.Registry) {
	t.Helper()
	reg := tools.NewRegistry(tools.Deps{})
	reg.Register(&tools.Tool{
		Name:        "echo",
		Description: "repite el argumento",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(_ context.Context, args map[string]any) (string, error) {
			s, _ := args["text"].(string)
			return "eco: " + s, nil
		},
	})

	return New(Config{
		Client:        client,
		Tools:         reg,
		Sessions:      session.NewStore(),
		Model:         "test-model",
		MaxIterations: 5,
		Retry: retry.Policy{
			MaxAttempts: 3,
			Retryable:   llm.IsTransient,
			Sleep:       func(context.Context, time.Duration) error { return nil },
		},
		Now: func() time.Time { return time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC) },
	}), reg
}

func TestProcessTurnSimpleAnswer(t *testing.T) {
	client := &scriptedClient{t: t, responses: []*llm.ChatResponse{endTurn("hola")}}
	a, _ := newTestAgent(t, client)

	resp, err := a.ProcessTurn(context.Background(), Request{SessionKey: "chat1", Text: "buenos días"})
	if err != nil {
		t.Fatalf("ProcessTurn() error: %v", err)
	}
	if resp.Text != "hola" {
		t.Errorf("Text = %q, want hola", resp.Text)
	}
	if resp.Iterations != 1 || resp.ToolCalls != 0 {
		t.Errorf("Iterations = %d, ToolCalls = %d", resp.Iterations, resp.ToolCalls)
	}

	got := client.requests[0]
	if len(got) != 1 || got[0].Role != "user" || got[0].Content != "buenos días" {
		t.Errorf("first request messages = %+v", got)
	}
}

func TestProcessTurnToolRound(t *testing.T) {
	client := &scriptedClient{t: t, responses: []*llm.ChatResponse{
		toolUse(
			llm.ToolCall{ID: "tc_1", Name: "echo", Arguments: map[string]any{"text": "uno"}},
			llm.ToolCall{ID: "tc_2", Name: "echo", Arguments: map[string]any{"text": "dos"}},
		),
		endTurn("listo"),
	}}
	a, _ := newTestAgent(t, client)

	resp, err := a.ProcessTurn(context.Background(), Request{SessionKey: "chat1", Text: "haz eco"})
	if err != nil {
		t.Fatalf("ProcessTurn() error: %v", err)
	}
	if resp.Text != "listo" || resp.Iterations != 2 || resp.ToolCalls != 2 {
		t.Errorf("resp = %+v", resp)
	}

	// Second model call sees user, assistant tool request, and all
	// results coalesced into one tool message.
	second := client.requests[1]
	if len(second) != 3 {
		t.Fatalf("second request has %d messages, want 3", len(second))
	}
	wantRoles := []string{"user", "assistant", "tool"}
	for i, role := range wantRoles {
		if second[i].Role != role {
			t.Errorf("message %d role = %q, want %q", i, second[i].Role, role)
		}
	}
	results := second[2].ToolResults
	if len(results) != 2 {
		t.Fatalf("tool message has %d results, want 2", len(results))
	}
	if results[0].ID != "tc_1" || results[0].Content != "eco: uno" {
		t.Errorf("result 0 = %+v", results[0])
	}
	if results[1].ID != "tc_2" || results[1].Content != "eco: dos" {
		t.Errorf("result 1 = %+v", results[1])
	}
}

func TestProcessTurnUnknownToolKeepsGoing(t *testing.T) {
	client := &scriptedClient{t: t, responses: []*llm.ChatResponse{
		toolUse(llm.ToolCall{ID: "tc_1", Name: "inexistente"}),
		endTurn("ok"),
	}}
	a, _ := newTestAgent(t, client)

	resp, err := a.ProcessTurn(context.Background(), Request{SessionKey: "chat1", Text: "x"})
	if err != nil {
		t.Fatalf("ProcessTurn() error: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Text = %q", resp.Text)
	}

	result := client.requests[1][2].ToolResults[0]
	if !strings.Contains(result.Content, "no reconocida") {
		t.Errorf("unknown tool result = %q", result.Content)
	}
}

func TestProcessTurnIterationCeiling(t *testing.T) {
	var responses []*llm.ChatResponse
	for i := 0; i < 5; i++ {
		responses = append(responses, toolUse(llm.ToolCall{ID: "tc", Name: "echo"}))
	}
	client := &scriptedClient{t: t, responses: responses}
	a, _ := newTestAgent(t, client)

	_, err := a.ProcessTurn(context.Background(), Request{SessionKey: "chat1", Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "5 iterations") {
		t.Errorf("ProcessTurn() error = %v, want iteration ceiling", err)
	}
}

func TestProcessTurnRetriesTransientErrors(t *testing.T) {
	client := &scriptedClient{
		t: t,
		errs: []error{
			&llm.APIError{StatusCode: 429, Body: "rate limited"},
			&llm.APIError{StatusCode: 529, Body: "overloaded"},
		},
		responses: []*llm.ChatResponse{nil, nil, endTurn("por fin")},
	}
	a, _ := newTestAgent(t, client)

	resp, err := a.ProcessTurn(context.Background(), Request{SessionKey: "chat1", Text: "x"})
	if err != nil {
		t.Fatalf("ProcessTurn() error: %v", err)
	}
	if resp.Text != "por fin" {
		t.Errorf("Text = %q", resp.Text)
	}
	if client.calls != 3 {
		t.Errorf("Chat called %d times, want 3", client.calls)
	}
}

func TestProcessTurnRetryExhausted(t *testing.T) {
	client := &scriptedClient{
		t: t,
		errs: []error{
			&llm.APIError{StatusCode: 429, Body: "rate limited"},
			&llm.APIError{StatusCode: 429, Body: "rate limited"},
			&llm.APIError{StatusCode: 429, Body: "rate limited"},
		},
	}
	a, _ := newTestAgent(t, client)

	_, err := a.ProcessTurn(context.Background(), Request{SessionKey: "chat1", Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "giving up after 3 attempts") {
		t.Errorf("ProcessTurn() error = %v, want retries exhausted", err)
	}
}

func TestProcessTurnNonTransientErrorNotRetried(t *testing.T) {
	client := &scriptedClient{
		t:    t,
		errs: []error{&llm.APIError{StatusCode: 401, Body: "bad key"}},
	}
	a, _ := newTestAgent(t, client)

	_, err := a.ProcessTurn(context.Background(), Request{SessionKey: "chat1", Text: "x"})
	if err == nil {
		t.Fatal("ProcessTurn() = nil, want error")
	}
	if client.calls != 1 {
		t.Errorf("Chat called %d times, want 1", client.calls)
	}
}

func TestProcessTurnAnomalousStopReason(t *testing.T) {
	client := &scriptedClient{t: t, responses: []*llm.ChatResponse{{
		Message:    llm.Message{Role: "assistant", Content: "me quedé sin tokens"},
		StopReason: "max_tokens",
	}}}
	a, _ := newTestAgent(t, client)

	resp, err := a.ProcessTurn(context.Background(), Request{SessionKey: "chat1", Text: "x"})
	if err != nil {
		t.Fatalf("ProcessTurn() error: %v", err)
	}
	if resp.StopReason != "max_tokens" || resp.Text != "me quedé sin tokens" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestProcessTurnSessionHistoryGrows(t *testing.T) {
	client := &scriptedClient{t: t, responses: []*llm.ChatResponse{
		endTurn("uno"),
		endTurn("dos"),
	}}
	a, _ := newTestAgent(t, client)
	ctx := context.Background()

	if _, err := a.ProcessTurn(ctx, Request{SessionKey: "chat1", Text: "primero"}); err != nil {
		t.Fatal(err)
	}
	if _, err := a.ProcessTurn(ctx, Request{SessionKey: "chat1", Text: "segundo"}); err != nil {
		t.Fatal(err)
	}

	second := client.requests[1]
	if len(second) != 3 {
		t.Fatalf("second turn sent %d messages, want 3", len(second))
	}
	if second[0].Content != "primero" || second[1].Content != "uno" || second[2].Content != "segundo" {
		t.Errorf("history = %+v", second)
	}
}

func TestProcessTurnEphemeral(t *testing.T) {
	client := &scriptedClient{t: t, responses: []*llm.ChatResponse{endTurn("hecho")}}
	a, _ := newTestAgent(t, client)

	resp, err := a.ProcessTurn(context.Background(), Request{Text: "briefing", Ephemeral: true})
	if err != nil {
		t.Fatalf("ProcessTurn() error: %v", err)
	}
	if resp.Text != "hecho" {
		t.Errorf("Text = %q", resp.Text)
	}

	stats := a.SessionStats()
	if n, _ := stats["conversations"].(int); n != 0 {
		t.Errorf("ephemeral turn stored a conversation: %v", stats)
	}
}
