package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dvila/faro/internal/httpkit"
)

const defaultPerplexityURL = "https://api.perplexity.ai/chat/completions"

// maxCitations caps how many source URLs are appended to the answer.
const maxCitations = 5

// Perplexity implements the Provider interface for the Perplexity
// Sonar API.
type Perplexity struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// PerplexityOption configures the provider.
type PerplexityOption func(*Perplexity)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) PerplexityOption {
	return func(p *Perplexity) { p.baseURL = url }
}

// NewPerplexity creates a Perplexity search provider. An empty model
// defaults to "sonar".
func NewPerplexity(apiKey, model string, opts ...PerplexityOption) *Perplexity {
	if model == "" {
		model = "sonar"
	}
	p := &Perplexity{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultPerplexityURL,
		httpClient: httpkit.NewClient(httpkit.WithTimeout(30 * time.Second)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Perplexity) Name() string { return "perplexity" }

type perplexityRequest struct {
	Model    string              `json:"model"`
	Messages []perplexityMessage `json:"messages"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityResponse struct {
	Choices []struct {
		Message perplexityMessage `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// Search asks the answer engine and returns its synthesized answer
// with up to five source URLs appended.
func (p *Perplexity) Search(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(perplexityRequest{
		Model:    p.model,
		Messages: []perplexityMessage{{Role: "user", Content: query}},
	})
	if err != nil {
		return "", fmt.Errorf("perplexity: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("perplexity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("perplexity: request failed: %w", err)
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		errBody := httpkit.ReadErrorBody(resp.Body, 512)
		return "", fmt.Errorf("perplexity: HTTP %d: %s", resp.StatusCode, errBody)
	}

	var pr perplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", fmt.Errorf("perplexity: decode response: %w", err)
	}
	if len(pr.Choices) == 0 {
		return "", fmt.Errorf("perplexity: empty response")
	}

	answer := pr.Choices[0].Message.Content
	if len(pr.Citations) > 0 {
		citations := pr.Citations
		if len(citations) > maxCitations {
			citations = citations[:maxCitations]
		}
		answer += "\n\nFuentes:"
		for i, url := range citations {
			answer += fmt.Sprintf("\n[%d] %s", i+1, url)
		}
	}
	return answer, nil
}
