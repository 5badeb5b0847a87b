package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/dvila/faro/internal/caldav"
)

func (r *Registry) registerCalendarTools() {
	r.Register(&Tool{
		Name:        "get_calendar_events",
		Description: "Obtiene los eventos del calendario para una fecha específica.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"date": map[string]any{
					"type": "string", "description": "Fecha en formato YYYY-MM-DD. Omitir para usar hoy.",
				},
			},
			"required": []string{},
		},
		Handler: r.handleGetCalendarEvents,
	})

	r.Register(&Tool{
		Name:        "block_calendar_time",
		Description: "Crea un bloque de trabajo enfocado en el calendario.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string", "description": "Descripción del bloque"},
				"start_time": map[string]any{
					"type": "string", "description": "Inicio en ISO 8601, ej: 2024-01-15T09:00:00",
				},
				"end_time": map[string]any{
					"type": "string", "description": "Fin en ISO 8601, ej: 2024-01-15T11:00:00",
				},
				"branch": map[string]any{
					"type": "string", "enum": r.branchEnum(),
					"description": "Rama de trabajo para este bloque",
				},
				"notes": map[string]any{"type": "string", "description": "Notas adicionales (opcional)"},
			},
			"required": []string{"title", "start_time", "end_time", "branch"},
		},
		Handler: r.handleBlockCalendarTime,
	})

	r.Register(&Tool{
		Name: "delete_calendar_event",
		Description: "Elimina un evento del calendario por su ID. " +
			"Usa primero get_calendar_events para obtener el ID del evento a borrar.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"event_id": map[string]any{
					"type": "string", "description": "ID del evento obtenido con get_calendar_events",
				},
			},
			"required": []string{"event_id"},
		},
		Handler: r.handleDeleteCalendarEvent,
	})
}

// calendarEvent is the JSON shape handed to the model, with times
// rendered in the user's timezone.
type calendarEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description,omitempty"`
}

func (r *Registry) handleGetCalendarEvents(ctx context.Context, args map[string]any) (string, error) {
	date := r.deps.Now().In(r.deps.Location)
	if s := stringArg(args, "date"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, r.deps.Location)
		if err != nil {
			return "", fmt.Errorf("fecha inválida %q, usa YYYY-MM-DD", s)
		}
		date = parsed
	}

	events, err := r.deps.Calendar.EventsForDate(ctx, date)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "No hay eventos en el calendario para esa fecha.", nil
	}

	out := make([]calendarEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, calendarEvent{
			ID:          ev.ID,
			Title:       ev.Title,
			Start:       ev.Start.In(r.deps.Location).Format(time.RFC3339),
			End:         ev.End.In(r.deps.Location).Format(time.RFC3339),
			Description: ev.Description,
		})
	}
	return toJSON(out)
}

func (r *Registry) handleBlockCalendarTime(ctx context.Context, args map[string]any) (string, error) {
	start, err := r.parseLocalTime(stringArg(args, "start_time"))
	if err != nil {
		return "", fmt.Errorf("start_time: %w", err)
	}
	end, err := r.parseLocalTime(stringArg(args, "end_time"))
	if err != nil {
		return "", fmt.Errorf("end_time: %w", err)
	}
	if !end.After(start) {
		return "", fmt.Errorf("el fin del bloque debe ser posterior al inicio")
	}

	in := caldav.BlockInput{
		Title:  stringArg(args, "title"),
		Branch: stringArg(args, "branch"),
		Start:  start,
		End:    end,
		Notes:  stringArg(args, "notes"),
	}
	if err := r.deps.Calendar.CreateBlock(ctx, in); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Bloque '%s' creado en el calendario\n   %s → %s | Rama: %s",
		in.Title, start.Format("2006-01-02 15:04"), end.Format("15:04"), in.Branch), nil
}

func (r *Registry) handleDeleteCalendarEvent(ctx context.Context, args map[string]any) (string, error) {
	if err := r.deps.Calendar.DeleteEvent(ctx, stringArg(args, "event_id")); err != nil {
		return "", err
	}
	return "✅ Evento eliminado del calendario.", nil
}

// parseLocalTime accepts ISO 8601 with or without zone; zoneless
// times are interpreted in the user's timezone.
func (r *Registry) parseLocalTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, r.deps.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("hora inválida %q, usa ISO 8601", s)
	}
	return t, nil
}
