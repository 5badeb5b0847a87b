// Package sheets reads the weekly editorial queue from a published
// Google Sheet CSV export and tracks review decisions locally. The
// sheet itself is read-only from here; decisions live in SQLite so the
// agent can filter out already-reviewed articles.
package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dvila/faro/internal/httpkit"
)

// Article is one row of the editorial sheet, keyed by header name.
type Article struct {
	// Row is the 1-based data row number in the sheet, stable as long
	// as rows are only appended. It is what MarkArticle expects.
	Row    int               `json:"row"`
	Fields map[string]string `json:"fields"`
}

// Title returns the article's title column, trying the usual header
// spellings.
func (a Article) Title() string {
	for _, key := range []string{"Título", "Titulo", "Title"} {
		if v := a.Fields[key]; v != "" {
			return v
		}
	}
	return ""
}

// Client fetches the published CSV.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for a published-to-web CSV URL.
func NewClient(url string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:        url,
		httpClient: httpkit.NewClient(httpkit.WithTimeout(30 * time.Second)),
		logger:     logger.With("component", "sheets"),
	}
}

// Articles fetches and parses the sheet. The first row is taken as
// headers; blank rows are skipped. Rows are capped at maxRows when
// positive.
func (c *Client) Articles(ctx context.Context, maxRows int) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		body := httpkit.ReadErrorBody(resp.Body, 512)
		return nil, fmt.Errorf("sheet fetch error %d: %s", resp.StatusCode, body)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse sheet CSV: %w", err)
	}
	return parseRows(rows, maxRows), nil
}

func parseRows(rows [][]string, maxRows int) []Article {
	if len(rows) < 2 {
		return nil
	}
	headers := rows[0]

	var articles []Article
	for i, row := range rows[1:] {
		if maxRows > 0 && len(articles) >= maxRows {
			break
		}
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		fields := make(map[string]string, len(headers))
		for j, header := range headers {
			if j < len(row) {
				fields[header] = row[j]
			} else {
				fields[header] = ""
			}
		}
		articles = append(articles, Article{Row: i + 1, Fields: fields})
	}
	return articles
}
