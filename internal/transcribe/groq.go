// Package transcribe turns voice notes into text using the Groq
// Whisper API.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dvila/faro/internal/httpkit"
)

const defaultGroqURL = "https://api.groq.com/openai/v1/audio/transcriptions"

// Config holds the Groq account settings, embedded in the top-level
// config under the "groq" YAML key.
type Config struct {
	APIKey string `yaml:"api_key"`
	// Model defaults to whisper-large-v3.
	Model string `yaml:"model"`
	// Language is the expected speech language, ISO 639-1.
	Language string `yaml:"language"`
}

// Configured reports whether an API key is set.
func (c Config) Configured() bool {
	return c.APIKey != ""
}

// Client transcribes audio via the Groq Whisper endpoint.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// NewClient creates a transcription client.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Model == "" {
		cfg.Model = "whisper-large-v3"
	}
	if cfg.Language == "" {
		cfg.Language = "es"
	}
	c := &Client{
		cfg:        cfg,
		baseURL:    defaultGroqURL,
		httpClient: httpkit.NewClient(httpkit.WithTimeout(60 * time.Second)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends the audio bytes and returns the recognized text,
// trimmed. filename hints the container format to the API ("voice.ogg"
// for Telegram voice notes).
func (c *Client) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("transcribe: build form: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return "", fmt.Errorf("transcribe: write audio: %w", err)
	}
	if err := mw.WriteField("model", c.cfg.Model); err != nil {
		return "", fmt.Errorf("transcribe: write field: %w", err)
	}
	if err := mw.WriteField("language", c.cfg.Language); err != nil {
		return "", fmt.Errorf("transcribe: write field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("transcribe: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return "", fmt.Errorf("transcribe: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe: request failed: %w", err)
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		errBody := httpkit.ReadErrorBody(resp.Body, 512)
		return "", fmt.Errorf("transcribe: HTTP %d: %s", resp.StatusCode, errBody)
	}

	var tr transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("transcribe: decode response: %w", err)
	}
	return strings.TrimSpace(tr.Text), nil
}
