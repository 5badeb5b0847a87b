package notion

import (
	"context"
	"fmt"
)

// Task is a row of the tasks database.
type Task struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Branch         string  `json:"branch"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	EstimatedHours float64 `json:"estimated_hours"`
	DueDate        string  `json:"due_date,omitempty"`
}

// CreateTaskInput holds the fields for a new task. DueDate and Notes
// are optional.
type CreateTaskInput struct {
	Title          string
	Branch         string
	Priority       string
	EstimatedHours float64
	DueDate        string
	Notes          string
}

// CreateTask creates a task in Pending status.
func (c *Client) CreateTask(ctx context.Context, in CreateTaskInput) error {
	props := map[string]any{
		"Name":            titleProp(in.Title),
		"Branch":          selectProp(in.Branch),
		"Status":          selectProp("Pending"),
		"Priority":        selectProp(in.Priority),
		"Estimated Hours": numberProp(in.EstimatedHours),
	}
	if in.DueDate != "" {
		props["Due Date"] = dateProp(in.DueDate)
	}
	if in.Notes != "" {
		props["Notes"] = richTextProp(in.Notes)
	}
	if err := c.createPage(ctx, c.dbs.Tasks, props, nil); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Tasks queries the tasks database, optionally filtered by branch and
// status. Results come back highest priority first, then by due date.
func (c *Client) Tasks(ctx context.Context, branch, status string) ([]Task, error) {
	var filters []map[string]any
	if branch != "" {
		filters = append(filters, map[string]any{
			"property": "Branch", "select": map[string]any{"equals": branch},
		})
	}
	if status != "" {
		filters = append(filters, map[string]any{
			"property": "Status", "select": map[string]any{"equals": status},
		})
	}

	body := map[string]any{
		"page_size": 100,
		"sorts": []any{
			map[string]any{"property": "Priority", "direction": "descending"},
			map[string]any{"property": "Due Date", "direction": "ascending"},
		},
	}
	if f := andFilter(filters); f != nil {
		body["filter"] = f
	}

	resp, err := c.queryDatabase(ctx, c.dbs.Tasks, body)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	tasks := make([]Task, 0, len(resp.Results))
	for _, p := range resp.Results {
		tasks = append(tasks, Task{
			ID:             p.ID,
			Title:          p.Properties["Name"].text(),
			Branch:         p.Properties["Branch"].selectName(),
			Status:         p.Properties["Status"].selectName(),
			Priority:       p.Properties["Priority"].selectName(),
			EstimatedHours: p.Properties["Estimated Hours"].number(),
			DueDate:        p.Properties["Due Date"].dateStart(),
		})
	}
	return tasks, nil
}

// MeetingNotesInput holds the fields for a meeting notes page.
// ActionItems is optional. Notes longer than 2000 characters are
// truncated to fit Notion's rich text limit.
type MeetingNotesInput struct {
	Title       string
	Attendees   string
	Notes       string
	ActionItems string
}

// SaveMeetingNotes writes a meeting notes page dated today.
func (c *Client) SaveMeetingNotes(ctx context.Context, in MeetingNotesInput) error {
	notes := in.Notes
	if runes := []rune(notes); len(runes) > 2000 {
		notes = string(runes[:2000])
	}
	props := map[string]any{
		"Title":     titleProp(in.Title),
		"Date":      dateProp(c.today()),
		"Attendees": richTextProp(in.Attendees),
		"Notes":     richTextProp(notes),
	}
	if in.ActionItems != "" {
		props["Action Items"] = richTextProp(in.ActionItems)
	}
	if err := c.createPage(ctx, c.dbs.Notes, props, nil); err != nil {
		return fmt.Errorf("save meeting notes: %w", err)
	}
	return nil
}

// LogTime records hours worked on a branch, dated today. An empty
// description defaults to a generic one.
func (c *Client) LogTime(ctx context.Context, branch string, hours float64, description string) error {
	if description == "" {
		description = "Trabajo en " + branch
	}
	props := map[string]any{
		"Task":   titleProp(description),
		"Branch": selectProp(branch),
		"Date":   dateProp(c.today()),
		"Hours":  numberProp(hours),
	}
	if err := c.createPage(ctx, c.dbs.TimeLog, props, nil); err != nil {
		return fmt.Errorf("log time: %w", err)
	}
	return nil
}

// WeeklyHoursByBranch sums the hours logged per branch since Monday of
// the current week.
func (c *Client) WeeklyHoursByBranch(ctx context.Context) (map[string]float64, error) {
	now := c.now()
	// time.Weekday counts Sunday as 0; shift so Monday is the week start.
	offset := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -offset).Format("2006-01-02")

	resp, err := c.queryDatabase(ctx, c.dbs.TimeLog, map[string]any{
		"page_size": 100,
		"filter": map[string]any{
			"property": "Date",
			"date":     map[string]any{"on_or_after": monday},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query time log: %w", err)
	}

	hours := make(map[string]float64)
	for _, p := range resp.Results {
		branch := p.Properties["Branch"].selectName()
		if branch == "" {
			continue
		}
		hours[branch] += p.Properties["Hours"].number()
	}
	return hours, nil
}
