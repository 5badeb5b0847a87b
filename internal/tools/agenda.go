package tools

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dvila/faro/internal/notion"
)

func (r *Registry) registerAgendaTool() {
	r.Register(&Tool{
		Name: "generate_agenda_data",
		Description: "Recopila todos los datos para generar la agenda del día: tareas pendientes, " +
			"eventos del calendario, horas trabajadas esta semana y déficit por rama. " +
			"Úsalo SIEMPRE antes de proponer una agenda diaria.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"date": map[string]any{
					"type":        "string",
					"description": "Fecha para la agenda en YYYY-MM-DD. Omitir para hoy.",
				},
			},
			"required": []string{},
		},
		Handler: r.handleGenerateAgendaData,
	})
}

var spanishWeekdays = map[time.Weekday]string{
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
	time.Sunday:    "domingo",
}

// agendaData aggregates everything the model needs to lay out a day.
type agendaData struct {
	Date              string             `json:"date"`
	Weekday           string             `json:"weekday"`
	PendingTasks      []notion.Task      `json:"pending_tasks"`
	CalendarEvents    []calendarEvent    `json:"calendar_events"`
	WeeklyHoursLogged map[string]float64 `json:"weekly_hours_logged"`
	BranchDeficits    map[string]float64 `json:"branch_deficits"`
	BranchTargets     map[string]float64 `json:"branch_targets"`
}

func (r *Registry) handleGenerateAgendaData(ctx context.Context, args map[string]any) (string, error) {
	date := r.deps.Now().In(r.deps.Location)
	if s := stringArg(args, "date"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, r.deps.Location)
		if err != nil {
			return "", fmt.Errorf("fecha inválida %q, usa YYYY-MM-DD", s)
		}
		date = parsed
	}

	tasks, err := r.deps.Notion.Tasks(ctx, "", "Pending")
	if err != nil {
		return "", fmt.Errorf("tareas pendientes: %w", err)
	}

	events, err := r.deps.Calendar.EventsForDate(ctx, date)
	if err != nil {
		return "", fmt.Errorf("eventos del calendario: %w", err)
	}

	hours, err := r.deps.Notion.WeeklyHoursByBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("horas semanales: %w", err)
	}

	targets := make(map[string]float64, len(r.deps.Branches))
	deficits := make(map[string]float64, len(r.deps.Branches))
	for _, b := range r.deps.Branches {
		targets[b.Name] = b.WeeklyHours
		deficits[b.Name] = math.Round((b.WeeklyHours-hours[b.Name])*10) / 10
	}

	evs := make([]calendarEvent, 0, len(events))
	for _, ev := range events {
		evs = append(evs, calendarEvent{
			ID:          ev.ID,
			Title:       ev.Title,
			Start:       ev.Start.In(r.deps.Location).Format(time.RFC3339),
			End:         ev.End.In(r.deps.Location).Format(time.RFC3339),
			Description: ev.Description,
		})
	}

	return toJSON(agendaData{
		Date:              date.Format("2006-01-02"),
		Weekday:           spanishWeekdays[date.Weekday()],
		PendingTasks:      tasks,
		CalendarEvents:    evs,
		WeeklyHoursLogged: hours,
		BranchDeficits:    deficits,
		BranchTargets:     targets,
	})
}
