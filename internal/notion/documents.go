package notion

import (
	"context"
	"fmt"
	"strings"
)

// Document is a search hit from the documents database. Content is
// stored in the page body, fetched separately via DocumentContent.
type Document struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Date   string   `json:"date"`
	Source string   `json:"source"`
	Tags   []string `json:"tags"`
}

const (
	// Notion caps rich text at 2000 characters per block and 100
	// blocks per create request.
	maxBlockChars  = 2000
	maxPageBlocks  = 100
	searchPageSize = 20
)

// SaveDocument writes a document page dated today, splitting the
// content into paragraph blocks to fit Notion's limits. Content past
// the block cap is silently dropped.
func (c *Client) SaveDocument(ctx context.Context, title, content string, tags []string, source string) error {
	if source == "" {
		source = "Manual"
	}
	props := map[string]any{
		"Título": titleProp(title),
		"Fuente": selectProp(source),
		"Fecha":  dateProp(c.today()),
	}
	if len(tags) > 0 {
		props["Etiquetas"] = multiSelectProp(tags)
	}

	var children []map[string]any
	runes := []rune(content)
	for i := 0; i < len(runes) && len(children) < maxPageBlocks; i += maxBlockChars {
		end := i + maxBlockChars
		if end > len(runes) {
			end = len(runes)
		}
		children = append(children, paragraphBlock(string(runes[i:end])))
	}

	if err := c.createPage(ctx, c.dbs.Docs, props, children); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// SearchDocuments queries the documents database by title substring
// and tags, newest first.
func (c *Client) SearchDocuments(ctx context.Context, query string, tags []string) ([]Document, error) {
	var filters []map[string]any
	if query != "" {
		filters = append(filters, map[string]any{
			"property": "Título", "title": map[string]any{"contains": query},
		})
	}
	for _, tag := range tags {
		filters = append(filters, map[string]any{
			"property": "Etiquetas", "multi_select": map[string]any{"contains": tag},
		})
	}

	body := map[string]any{
		"page_size": searchPageSize,
		"sorts": []any{
			map[string]any{"property": "Fecha", "direction": "descending"},
		},
	}
	if f := andFilter(filters); f != nil {
		body["filter"] = f
	}

	resp, err := c.queryDatabase(ctx, c.dbs.Docs, body)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	docs := make([]Document, 0, len(resp.Results))
	for _, p := range resp.Results {
		var docTags []string
		for _, opt := range p.Properties["Etiquetas"].MultiSelect {
			docTags = append(docTags, opt.Name)
		}
		docs = append(docs, Document{
			ID:     p.ID,
			Title:  p.Properties["Título"].text(),
			Date:   p.Properties["Fecha"].dateStart(),
			Source: p.Properties["Fuente"].selectName(),
			Tags:   docTags,
		})
	}
	return docs, nil
}

// DocumentContent returns the full text of a document page, one line
// per text block. Non-text blocks are skipped.
func (c *Client) DocumentContent(ctx context.Context, docID string) (string, error) {
	resp, err := c.listBlocks(ctx, docID)
	if err != nil {
		return "", fmt.Errorf("document content: %w", err)
	}

	var lines []string
	for _, b := range resp.Results {
		content := b.content()
		if content == nil {
			continue
		}
		var text string
		for _, rt := range content.RichText {
			text += rt.PlainText
		}
		if strings.TrimSpace(text) != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		return "[Documento vacío]", nil
	}
	return strings.Join(lines, "\n"), nil
}
