// Package fetch downloads a web page and reduces it to readable text
// for the agent: boilerplate elements are stripped and the result is
// bounded so a single page cannot flood the model context.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dvila/faro/internal/httpkit"
)

// maxBodyBytes is the maximum response body size read from the wire.
const maxBodyBytes int64 = 5 * 1024 * 1024

// DefaultMaxChars is the default limit for extracted text.
const DefaultMaxChars = 20000

// Page holds the extracted content of a fetched URL.
type Page struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Fetcher downloads and extracts readable content from web pages.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with default settings.
func New() *Fetcher {
	return &Fetcher{
		client: httpkit.NewClient(httpkit.WithTimeout(30 * time.Second)),
	}
}

// Fetch downloads the URL and extracts its readable text. A URL
// without a scheme gets https. maxChars limits the output; zero uses
// DefaultMaxChars.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, maxChars int) (*Page, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("fetch: url is required")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: invalid url: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.7")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: request failed: %w", err)
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: read response: %w", err)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	var title, content string
	switch {
	case strings.Contains(contentType, "text/html"), strings.Contains(contentType, "application/xhtml"):
		title, content = extractHTML(string(body))
	case utf8.Valid(body):
		content = string(body)
	default:
		return nil, fmt.Errorf("fetch: %s is not text (%s)", rawURL, contentType)
	}

	truncated := false
	if runes := []rune(content); len(runes) > maxChars {
		content = string(runes[:maxChars])
		truncated = true
	}

	return &Page{
		URL:       rawURL,
		Title:     title,
		Content:   content,
		Truncated: truncated,
	}, nil
}
