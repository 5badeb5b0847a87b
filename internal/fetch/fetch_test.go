package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Artículo de prueba</title><style>body { color: red }</style></head>
<body>
<nav>Inicio | Contacto</nav>
<article>
<h1>El titular</h1>
<p>Primer   párrafo con    espacios raros.</p>
<script>console.log("fuera")</script>
<ul><li>Uno</li><li>Dos</li></ul>
</article>
<footer>© 2026</footer>
</body>
</html>`

func TestExtractHTML(t *testing.T) {
	title, text := extractHTML(samplePage)

	if title != "Artículo de prueba" {
		t.Errorf("title = %q", title)
	}
	for _, want := range []string{"El titular", "Primer párrafo con espacios raros.", "Uno", "Dos"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
	for _, unwanted := range []string{"console.log", "color: red", "Inicio | Contacto", "© 2026"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("text should not contain %q:\n%s", unwanted, text)
		}
	}
}

func TestFetch_HTMLPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	t.Cleanup(srv.Close)

	page, err := New().Fetch(context.Background(), srv.URL, 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.Title != "Artículo de prueba" {
		t.Errorf("title = %q", page.Title)
	}
	if !strings.Contains(page.Content, "El titular") {
		t.Errorf("content = %q", page.Content)
	}
	if page.Truncated {
		t.Error("short page should not be truncated")
	}
}

func TestFetch_Truncation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("palabra ", 100)))
	}))
	t.Cleanup(srv.Close)

	page, err := New().Fetch(context.Background(), srv.URL, 50)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !page.Truncated {
		t.Error("expected truncation")
	}
	if got := len([]rune(page.Content)); got != 50 {
		t.Errorf("content length = %d runes, want 50", got)
	}
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	if _, err := New().Fetch(context.Background(), srv.URL, 0); err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestFetch_EmptyURL(t *testing.T) {
	if _, err := New().Fetch(context.Background(), "", 0); err == nil {
		t.Fatal("expected error for empty url")
	}
}
