// Package caldav manages the user's calendar over CalDAV: listing a
// day's events and creating or removing focused-work time blocks.
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"github.com/dvila/faro/internal/httpkit"
)

// Config holds the CalDAV account settings, embedded in the top-level
// config under the "caldav" YAML key.
type Config struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Calendar selects a calendar by display name. Empty picks the
	// first calendar advertised by the server.
	Calendar string `yaml:"calendar"`
}

// Configured reports whether the account has the minimum required
// settings to connect.
func (c Config) Configured() bool {
	return c.URL != ""
}

// Event is a calendar event in the user's timezone.
type Event struct {
	// ID is the object path on the server, opaque to callers. It is
	// what DeleteEvent expects.
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description,omitempty"`
}

// BlockInput holds the fields for a new time block.
type BlockInput struct {
	Title  string
	Branch string
	Start  time.Time
	End    time.Time
	Notes  string
}

// Client wraps a CalDAV client with lazy calendar discovery. All
// public methods are goroutine-safe.
type Client struct {
	cfg      Config
	location *time.Location
	logger   *slog.Logger

	mu           sync.Mutex
	client       *caldav.Client
	calendarPath string
}

// NewClient creates a CalDAV client. Server discovery happens lazily
// on first use.
func NewClient(cfg Config, location *time.Location, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.Local
	}
	return &Client{
		cfg:      cfg,
		location: location,
		logger:   logger.With("component", "caldav"),
	}
}

// ensureCalendar discovers the calendar collection to operate on.
// Caller must hold c.mu.
func (c *Client) ensureCalendar(ctx context.Context) error {
	if c.calendarPath != "" {
		return nil
	}

	httpClient := webdav.HTTPClientWithBasicAuth(
		httpkit.NewClient(httpkit.WithTimeout(30*time.Second)),
		c.cfg.Username, c.cfg.Password,
	)
	client, err := caldav.NewClient(httpClient, c.cfg.URL)
	if err != nil {
		return fmt.Errorf("caldav client: %w", err)
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return fmt.Errorf("find calendar home set: %w", err)
	}
	calendars, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return fmt.Errorf("find calendars: %w", err)
	}
	if len(calendars) == 0 {
		return fmt.Errorf("no calendars found at %s", c.cfg.URL)
	}

	path := calendars[0].Path
	if c.cfg.Calendar != "" {
		found := false
		for _, cal := range calendars {
			if cal.Name == c.cfg.Calendar {
				path = cal.Path
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("calendar %q not found at %s", c.cfg.Calendar, c.cfg.URL)
		}
	}

	c.client = client
	c.calendarPath = path
	c.logger.Info("caldav calendar resolved", "path", path)
	return nil
}

// EventsForDate returns the events overlapping the given day, ordered
// by start time. The date is interpreted in the user's timezone.
func (c *Client) EventsForDate(ctx context.Context, date time.Time) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureCalendar(ctx); err != nil {
		return nil, err
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, c.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{{
				Name:  "VEVENT",
				Props: []string{"UID", "SUMMARY", "DTSTART", "DTEND", "DESCRIPTION"},
			}},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{{
				Name:  "VEVENT",
				Start: dayStart,
				End:   dayEnd,
			}},
		},
	}

	objects, err := c.client.QueryCalendar(ctx, c.calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}

	var events []Event
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, ev := range obj.Data.Events() {
			event, err := c.parseEvent(obj.Path, ev)
			if err != nil {
				c.logger.Debug("skipping event", "path", obj.Path, "error", err)
				continue
			}
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events, nil
}

func (c *Client) parseEvent(path string, ev ical.Event) (Event, error) {
	start, err := ev.DateTimeStart(c.location)
	if err != nil {
		return Event{}, fmt.Errorf("dtstart: %w", err)
	}
	end, err := ev.DateTimeEnd(c.location)
	if err != nil {
		return Event{}, fmt.Errorf("dtend: %w", err)
	}

	title := "Sin título"
	if summary, err := ev.Props.Text(ical.PropSummary); err == nil && summary != "" {
		title = summary
	}
	description, _ := ev.Props.Text(ical.PropDescription)

	return Event{
		ID:          path,
		Title:       title,
		Start:       start,
		End:         end,
		Description: description,
	}, nil
}

// CreateBlock writes a focused-work time block to the calendar. The
// event summary carries the branch tag so blocks are recognizable at
// a glance.
func (c *Client) CreateBlock(ctx context.Context, in BlockInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureCalendar(ctx); err != nil {
		return err
	}

	uid := uuid.NewString()

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uid)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetText(ical.PropSummary, fmt.Sprintf("[%s] %s", in.Branch, in.Title))
	event.Props.SetDateTime(ical.PropDateTimeStart, in.Start.In(c.location))
	event.Props.SetDateTime(ical.PropDateTimeEnd, in.End.In(c.location))
	description := strings.TrimSpace("Rama: " + in.Branch + "\n" + in.Notes)
	event.Props.SetText(ical.PropDescription, description)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//faro//caldav//ES")
	cal.Children = append(cal.Children, event.Component)

	path := strings.TrimSuffix(c.calendarPath, "/") + "/" + uid + ".ics"
	if _, err := c.client.PutCalendarObject(ctx, path, cal); err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}

// DeleteEvent removes an event by the object path returned in
// Event.ID.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureCalendar(ctx); err != nil {
		return err
	}
	if err := c.client.RemoveAll(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
