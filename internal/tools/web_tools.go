package tools

import (
	"context"
	"fmt"
	"strings"
)

func (r *Registry) registerWebTools() {
	if r.deps.Search != nil {
		r.Register(&Tool{
			Name: "web_search",
			Description: "Busca información actual en la web y devuelve una respuesta " +
				"sintetizada con fuentes. Úsalo para noticias, datos recientes o " +
				"cualquier cosa que no esté en Notion ni en la memoria.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Consulta de búsqueda",
					},
				},
				"required": []string{"query"},
			},
			Handler: r.handleWebSearch,
		})
	}

	if r.deps.Fetcher != nil {
		r.Register(&Tool{
			Name: "fetch_page",
			Description: "Descarga una página web y devuelve su texto principal, " +
				"sin navegación ni scripts. Úsalo para leer el contenido completo " +
				"de un enlace concreto.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{
						"type":        "string",
						"description": "URL de la página a leer",
					},
					"max_chars": map[string]any{
						"type":        "integer",
						"description": "Máximo de caracteres a devolver (por defecto 20000)",
					},
				},
				"required": []string{"url"},
			},
			Handler: r.handleFetchPage,
		})
	}
}

func (r *Registry) handleWebSearch(ctx context.Context, args map[string]any) (string, error) {
	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		return "Error: falta la consulta de búsqueda.", nil
	}
	return r.deps.Search.Search(ctx, query)
}

func (r *Registry) handleFetchPage(ctx context.Context, args map[string]any) (string, error) {
	rawURL := strings.TrimSpace(stringArg(args, "url"))
	if rawURL == "" {
		return "Error: falta la URL de la página.", nil
	}

	page, err := r.deps.Fetcher.Fetch(ctx, rawURL, intArg(args, "max_chars"))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if page.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", page.Title)
	}
	b.WriteString(page.Content)
	if page.Truncated {
		b.WriteString("\n\n[... contenido truncado ...]")
	}
	return b.String(), nil
}
