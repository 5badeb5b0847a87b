// Package notion provides a client for the Notion REST API and typed
// accessors for the workspace databases the agent works against:
// tasks, meeting notes, time log, documents and contacts.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dvila/faro/internal/httpkit"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
)

// Databases holds the IDs of the workspace databases.
type Databases struct {
	Tasks    string
	Notes    string
	TimeLog  string
	Docs     string
	Contacts string
}

// Client is a Notion REST API client.
type Client struct {
	token      string
	baseURL    string
	dbs        Databases
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithClock overrides the client's clock. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Notion client for the given workspace databases.
func NewClient(token string, dbs Databases, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		dbs:        dbs,
		httpClient: httpkit.NewClient(httpkit.WithTimeout(30 * time.Second)),
		logger:     logger.With("component", "notion"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// page is a Notion page as returned by query endpoints. Properties are
// kept loosely typed because every database has its own schema.
type page struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

type property struct {
	Title       []richText     `json:"title"`
	RichText    []richText     `json:"rich_text"`
	Select      *selectOption  `json:"select"`
	MultiSelect []selectOption `json:"multi_select"`
	Number      *float64       `json:"number"`
	Date        *dateValue     `json:"date"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type selectOption struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

// text joins the plain text of a title or rich_text property.
func (p property) text() string {
	items := p.Title
	if len(items) == 0 {
		items = p.RichText
	}
	var out string
	for _, it := range items {
		out += it.PlainText
	}
	return out
}

func (p property) selectName() string {
	if p.Select == nil {
		return ""
	}
	return p.Select.Name
}

func (p property) number() float64 {
	if p.Number == nil {
		return 0
	}
	return *p.Number
}

func (p property) dateStart() string {
	if p.Date == nil {
		return ""
	}
	return p.Date.Start
}

type queryResponse struct {
	Results []page `json:"results"`
}

type blocksResponse struct {
	Results []block `json:"results"`
}

type block struct {
	Type             string        `json:"type"`
	Paragraph        *blockContent `json:"paragraph"`
	Heading1         *blockContent `json:"heading_1"`
	Heading2         *blockContent `json:"heading_2"`
	Heading3         *blockContent `json:"heading_3"`
	BulletedListItem *blockContent `json:"bulleted_list_item"`
	NumberedListItem *blockContent `json:"numbered_list_item"`
}

type blockContent struct {
	RichText []richText `json:"rich_text"`
}

// content returns the block's rich text for the supported text block
// types, or nil for anything else (images, tables, embeds).
func (b block) content() *blockContent {
	switch b.Type {
	case "paragraph":
		return b.Paragraph
	case "heading_1":
		return b.Heading1
	case "heading_2":
		return b.Heading2
	case "heading_3":
		return b.Heading3
	case "bulleted_list_item":
		return b.BulletedListItem
	case "numbered_list_item":
		return b.NumberedListItem
	}
	return nil
}

// Property builders for page create/update payloads.

func titleProp(s string) map[string]any {
	return map[string]any{"title": []any{map[string]any{"text": map[string]any{"content": s}}}}
}

func richTextProp(s string) map[string]any {
	return map[string]any{"rich_text": []any{map[string]any{"text": map[string]any{"content": s}}}}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func multiSelectProp(names []string) map[string]any {
	opts := make([]any, 0, len(names))
	for _, n := range names {
		opts = append(opts, map[string]any{"name": n})
	}
	return map[string]any{"multi_select": opts}
}

func numberProp(n float64) map[string]any {
	return map[string]any{"number": n}
}

func dateProp(start string) map[string]any {
	return map[string]any{"date": map[string]any{"start": start}}
}

func paragraphBlock(text string) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   "paragraph",
		"paragraph": map[string]any{
			"rich_text": []any{map[string]any{"type": "text", "text": map[string]any{"content": text}}},
		},
	}
}

// andFilter combines filters the way the query endpoint expects: a
// single filter goes bare, two or more are wrapped in "and".
func andFilter(filters []map[string]any) map[string]any {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	default:
		return map[string]any{"and": filters}
	}
}

func (c *Client) queryDatabase(ctx context.Context, dbID string, body map[string]any) (*queryResponse, error) {
	var out queryResponse
	if err := c.post(ctx, "/databases/"+dbID+"/query", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) createPage(ctx context.Context, dbID string, properties map[string]any, children []map[string]any) error {
	body := map[string]any{
		"parent":     map[string]any{"database_id": dbID},
		"properties": properties,
	}
	if len(children) > 0 {
		body["children"] = children
	}
	return c.post(ctx, "/pages", body, nil)
}

func (c *Client) updatePage(ctx context.Context, pageID string, properties map[string]any) error {
	return c.patch(ctx, "/pages/"+pageID, map[string]any{"properties": properties}, nil)
}

func (c *Client) listBlocks(ctx context.Context, blockID string) (*blocksResponse, error) {
	var out blocksResponse
	if err := c.get(ctx, "/blocks/"+blockID+"/children", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) patch(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		errBody := httpkit.ReadErrorBody(resp.Body, 512)
		return fmt.Errorf("notion API error %d: %s", resp.StatusCode, errBody)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) today() string {
	return c.now().Format("2006-01-02")
}
