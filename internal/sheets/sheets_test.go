package sheets

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "modernc.org/sqlite"
)

const sampleCSV = "Título,URL,Tema\n" +
	"IA en 2026,https://example.com/ia,Inteligencia Artificial\n" +
	",,\n" +
	"Go para agentes,https://example.com/go,Programación\n" +
	"Fila corta,https://example.com/corta\n"

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(sampleCSV))
	}))
	t.Cleanup(srv.Close)

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	reviews, err := NewReviewStore(db)
	if err != nil {
		t.Fatalf("new review store: %v", err)
	}
	return NewQueue(NewClient(srv.URL, nil), reviews)
}

func TestArticles_ParsesHeadersAndSkipsBlanks(t *testing.T) {
	q := newTestQueue(t)

	articles, err := q.client.Articles(context.Background(), 0)
	if err != nil {
		t.Fatalf("articles: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("got %d articles, want 3 (blank row skipped)", len(articles))
	}
	first := articles[0]
	if first.Row != 1 {
		t.Errorf("first row = %d, want 1", first.Row)
	}
	if first.Fields["Título"] != "IA en 2026" || first.Fields["Tema"] != "Inteligencia Artificial" {
		t.Errorf("fields = %v", first.Fields)
	}
	if first.Title() != "IA en 2026" {
		t.Errorf("Title() = %q", first.Title())
	}
	// Short rows get empty strings for missing columns.
	if got, ok := articles[2].Fields["Tema"]; !ok || got != "" {
		t.Errorf("short row Tema = %q (present=%v)", got, ok)
	}
}

func TestArticles_MaxRows(t *testing.T) {
	q := newTestQueue(t)

	articles, err := q.client.Articles(context.Background(), 1)
	if err != nil {
		t.Fatalf("articles: %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("got %d articles, want 1", len(articles))
	}
}

func TestQueue_PendingFiltersReviewed(t *testing.T) {
	q := newTestQueue(t)

	if err := q.Mark(1, DecisionApprove, "buen artículo"); err != nil {
		t.Fatalf("mark: %v", err)
	}

	pending, err := q.Pending(context.Background(), 0)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}
	for _, a := range pending {
		if a.Row == 1 {
			t.Error("reviewed row still pending")
		}
	}
}

func TestQueue_MarkReplacesDecision(t *testing.T) {
	q := newTestQueue(t)

	if err := q.Mark(2, DecisionReject, ""); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := q.Mark(2, DecisionModify, "cambiar titular"); err != nil {
		t.Fatalf("mark again: %v", err)
	}

	reviewed, err := q.reviews.Reviewed()
	if err != nil {
		t.Fatalf("reviewed: %v", err)
	}
	r, ok := reviewed[2]
	if !ok {
		t.Fatal("row 2 not recorded")
	}
	if r.Decision != DecisionModify || r.Comment != "cambiar titular" {
		t.Errorf("review = %+v", r)
	}
}

func TestMark_InvalidDecision(t *testing.T) {
	q := newTestQueue(t)

	if err := q.Mark(1, "publicar", ""); err == nil {
		t.Error("expected error for unknown decision")
	}
}
