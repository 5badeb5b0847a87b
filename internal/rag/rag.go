// Package rag retrieves documents relevant to a user message and
// renders them as a context block for the system prompt.
//
// Retrieval is plain lexical matching on purpose: keywords from the
// message are run against the document store's title/tag search, no
// embeddings involved. It misses synonyms but costs nothing, needs no
// external services and is good enough for a personal document base.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const (
	// MaxKeywords bounds the search fan-out per message.
	MaxKeywords = 5
	// MaxDocs bounds how many documents are injected per turn.
	MaxDocs = 2
	// MaxCharsPerDoc bounds the excerpt taken from each document.
	MaxCharsPerDoc = 3000
)

// Document is a search hit from the document store.
type Document struct {
	ID    string
	Title string
	Date  string
	Tags  []string
}

// DocumentStore is the slice of the document backend the retriever
// needs. The Notion client is adapted to it at wiring time.
type DocumentStore interface {
	SearchDocuments(ctx context.Context, query string) ([]Document, error)
	DocumentContent(ctx context.Context, id string) (string, error)
}

// Retriever extracts keywords from free text and pulls matching
// documents from the store.
type Retriever struct {
	store  DocumentStore
	logger *slog.Logger
}

// NewRetriever creates a retriever over the given document store.
func NewRetriever(store DocumentStore, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: store, logger: logger.With("component", "rag")}
}

var wordRe = regexp.MustCompile(`[a-záéíóúüñA-ZÁÉÍÓÚÜÑ]{4,}`)

// Spanish stop words ignored during keyword extraction.
var stopWords = map[string]struct{}{
	"a": {}, "al": {}, "algo": {}, "ante": {}, "antes": {}, "como": {},
	"con": {}, "cual": {}, "cuando": {}, "de": {}, "del": {}, "desde": {},
	"donde": {}, "durante": {}, "el": {}, "ella": {}, "ellas": {},
	"ellos": {}, "en": {}, "entre": {}, "era": {}, "es": {}, "esta": {},
	"este": {}, "esto": {}, "estos": {}, "estas": {}, "fue": {}, "han": {},
	"has": {}, "hay": {}, "he": {}, "hola": {}, "la": {}, "las": {},
	"le": {}, "les": {}, "lo": {}, "los": {}, "me": {}, "mi": {},
	"mis": {}, "muy": {}, "no": {}, "nos": {}, "o": {}, "para": {},
	"pero": {}, "por": {}, "que": {}, "se": {}, "si": {}, "sin": {},
	"sobre": {}, "su": {}, "sus": {}, "también": {}, "te": {}, "tengo": {},
	"ti": {}, "toda": {}, "todo": {}, "todos": {}, "tu": {}, "tus": {},
	"un": {}, "una": {}, "uno": {}, "unos": {}, "unas": {}, "y": {},
	"ya": {}, "yo": {}, "qué": {}, "cómo": {}, "cuál": {}, "quién": {},
	"cuándo": {}, "dónde": {}, "puedo": {}, "puede": {}, "quiero": {},
	"quiere": {}, "necesito": {}, "hacer": {}, "haz": {}, "dame": {},
	"dime": {}, "diles": {}, "tiene": {}, "ver": {}, "mira": {},
	"míralo": {},
}

// ExtractKeywords returns up to MaxKeywords distinct lowercase words of
// at least four letters, in order of first appearance, with stop words
// removed.
func ExtractKeywords(text string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, w := range wordRe.FindAllString(text, -1) {
		w = strings.ToLower(w)
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return keywords
}

// RelevantContext searches the document store for documents matching
// the message's keywords and renders them as a context block. Returns
// the empty string when nothing relevant is found. Search failures for
// individual keywords are logged and skipped; retrieval never fails a
// turn.
func (r *Retriever) RelevantContext(ctx context.Context, userMessage string) string {
	keywords := ExtractKeywords(userMessage)
	if len(keywords) == 0 {
		return ""
	}

	seenIDs := make(map[string]struct{})
	var docs []Document
	for _, kw := range keywords {
		results, err := r.store.SearchDocuments(ctx, kw)
		if err != nil {
			r.logger.Warn("document search failed", "keyword", kw, "error", err)
			continue
		}
		for _, doc := range results {
			if _, dup := seenIDs[doc.ID]; dup {
				continue
			}
			seenIDs[doc.ID] = struct{}{}
			docs = append(docs, doc)
		}
	}

	if len(docs) > MaxDocs {
		docs = docs[:MaxDocs]
	}
	var parts []string
	for _, doc := range docs {
		content, err := r.store.DocumentContent(ctx, doc.ID)
		if err != nil {
			r.logger.Warn("document fetch failed", "id", doc.ID, "error", err)
			continue
		}
		snippet := content
		if runes := []rune(content); len(runes) > MaxCharsPerDoc {
			snippet = string(runes[:MaxCharsPerDoc]) + "..."
		}
		tags := ""
		if len(doc.Tags) > 0 {
			tags = " [" + strings.Join(doc.Tags, ", ") + "]"
		}
		parts = append(parts, fmt.Sprintf("📄 %s%s (%s):\n%s", doc.Title, tags, doc.Date, snippet))
	}

	if len(parts) == 0 {
		return ""
	}
	return "DOCUMENTOS RELEVANTES RECUPERADOS AUTOMÁTICAMENTE:\n" + strings.Join(parts, "\n\n")
}
