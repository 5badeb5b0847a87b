package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPerplexity_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer pplx-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req perplexityRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "sonar" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "noticias de IA" {
			t.Errorf("messages = %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Resumen de noticias."}},
			},
			"citations": []string{
				"https://a.example", "https://b.example", "https://c.example",
				"https://d.example", "https://e.example", "https://f.example",
			},
		})
	}))
	t.Cleanup(srv.Close)

	p := NewPerplexity("pplx-key", "", WithBaseURL(srv.URL))
	answer, err := p.Search(context.Background(), "noticias de IA")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.HasPrefix(answer, "Resumen de noticias.") {
		t.Errorf("answer = %q", answer)
	}
	if !strings.Contains(answer, "Fuentes:\n[1] https://a.example") {
		t.Errorf("citations missing: %q", answer)
	}
	if strings.Contains(answer, "f.example") {
		t.Error("citations should be capped at five")
	}
}

func TestPerplexity_NoCitations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Sin fuentes."}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	p := NewPerplexity("pplx-key", "sonar", WithBaseURL(srv.URL))
	answer, err := p.Search(context.Background(), "algo")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if answer != "Sin fuentes." {
		t.Errorf("answer = %q", answer)
	}
}

func TestPerplexity_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	t.Cleanup(srv.Close)

	p := NewPerplexity("bad-key", "sonar", WithBaseURL(srv.URL))
	if _, err := p.Search(context.Background(), "algo"); err == nil {
		t.Fatal("expected error on 401")
	}
}
