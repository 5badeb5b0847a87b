package tools

import (
	"context"

	"github.com/dvila/faro/internal/sheets"
)

func (r *Registry) registerEditorialTools() {
	r.Register(&Tool{
		Name: "get_editorial_articles",
		Description: "Lee las propuestas de contenido del Sheet Editorial. Devuelve los " +
			"artículos pendientes de revisión (o todos si only_pending=false).",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"only_pending": map[string]any{
					"type": "boolean", "description": "Si true (por defecto), devuelve solo los pendientes de revisar.",
				},
			},
			"required": []string{},
		},
		Handler: r.handleGetEditorialArticles,
	})

	r.Register(&Tool{
		Name:        "mark_article",
		Description: "Marca una fila del Sheet Editorial como aprobada, rechazada o aprobada con modificaciones.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"row": map[string]any{
					"type": "integer", "description": "Número de fila en el Sheet (obtenido de get_editorial_articles).",
				},
				"action": map[string]any{
					"type": "string",
					"enum": []string{sheets.DecisionApprove, sheets.DecisionReject, sheets.DecisionModify},
					"description": "Decisión editorial sobre el artículo.",
				},
				"comment": map[string]any{
					"type": "string", "description": "Comentario sobre la decisión (opcional)",
				},
			},
			"required": []string{"row", "action"},
		},
		Handler: r.handleMarkArticle,
	})
}

const editorialMaxRows = 50

// editorialArticle is the JSON shape handed to the model.
type editorialArticle struct {
	Row      int               `json:"row"`
	Fields   map[string]string `json:"fields"`
	Decision string            `json:"decision,omitempty"`
}

func (r *Registry) handleGetEditorialArticles(ctx context.Context, args map[string]any) (string, error) {
	onlyPending := boolArg(args, "only_pending", true)

	if onlyPending {
		pending, err := r.deps.Editorial.Pending(ctx, editorialMaxRows)
		if err != nil {
			return "", err
		}
		if len(pending) == 0 {
			return "No hay artículos pendientes de revisar.", nil
		}
		out := make([]editorialArticle, 0, len(pending))
		for _, a := range pending {
			out = append(out, editorialArticle{Row: a.Row, Fields: a.Fields})
		}
		return toJSON(out)
	}

	articles, reviews, err := r.deps.Editorial.All(ctx, editorialMaxRows)
	if err != nil {
		return "", err
	}
	if len(articles) == 0 {
		return "No hay artículos pendientes de revisar.", nil
	}
	out := make([]editorialArticle, 0, len(articles))
	for _, a := range articles {
		art := editorialArticle{Row: a.Row, Fields: a.Fields}
		if rev, ok := reviews[a.Row]; ok {
			art.Decision = rev.Decision
		}
		out = append(out, art)
	}
	return toJSON(out)
}

func (r *Registry) handleMarkArticle(ctx context.Context, args map[string]any) (string, error) {
	row := intArg(args, "row")
	action := stringArg(args, "action")
	if err := r.deps.Editorial.Mark(row, action, stringArg(args, "comment")); err != nil {
		return "", err
	}
	switch action {
	case sheets.DecisionApprove:
		return "✅ Artículo aprobado.", nil
	case sheets.DecisionReject:
		return "✅ Artículo rechazado.", nil
	default:
		return "✅ Artículo marcado para modificar.", nil
	}
}
