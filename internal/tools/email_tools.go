package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dvila/faro/internal/email"
)

func (r *Registry) registerEmailTools() {
	r.Register(&Tool{
		Name:        "read_emails",
		Description: "Lee correos del buzón. Por defecto devuelve los no leídos.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"max_emails": map[string]any{
					"type": "integer", "description": "Número máximo de correos (por defecto 10)",
				},
				"unread_only": map[string]any{
					"type": "boolean", "description": "Solo correos no leídos (por defecto true)",
				},
			},
			"required": []string{},
		},
		Handler: r.handleReadEmails,
	})

	r.Register(&Tool{
		Name:        "get_email_body",
		Description: "Obtiene el cuerpo completo de un correo por su ID.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"email_id": map[string]any{
					"type": "string", "description": "ID del correo obtenido con read_emails",
				},
			},
			"required": []string{"email_id"},
		},
		Handler: r.handleGetEmailBody,
	})
}

// emailSummary is the JSON shape handed to the model for a listed
// message.
type emailSummary struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
}

func (r *Registry) handleReadEmails(ctx context.Context, args map[string]any) (string, error) {
	envelopes, err := r.deps.Email.ListMessages(ctx, email.ListOptions{
		Limit:  intArg(args, "max_emails"),
		Unseen: boolArg(args, "unread_only", true),
	})
	if err != nil {
		return "", err
	}
	if len(envelopes) == 0 {
		return "No hay correos nuevos.", nil
	}

	out := make([]emailSummary, 0, len(envelopes))
	for _, env := range envelopes {
		subject := env.Subject
		if subject == "" {
			subject = "(Sin asunto)"
		}
		out = append(out, emailSummary{
			ID:      strconv.FormatUint(uint64(env.UID), 10),
			From:    env.From,
			Subject: subject,
			Date:    env.Date.In(r.deps.Location).Format("2006-01-02 15:04"),
		})
	}
	return toJSON(out)
}

func (r *Registry) handleGetEmailBody(ctx context.Context, args map[string]any) (string, error) {
	id := stringArg(args, "email_id")
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return "", fmt.Errorf("email_id inválido %q", id)
	}
	body, err := r.deps.Email.MessageBody(ctx, uint32(uid))
	if err != nil {
		return "", err
	}
	if body == "" {
		return "[No se pudo extraer el cuerpo del correo]", nil
	}
	return body, nil
}
