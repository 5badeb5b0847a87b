package caldav

import (
	"testing"
	"time"

	"github.com/emersion/go-ical"
)

func TestParseEvent(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	c := NewClient(Config{URL: "https://dav.example.com"}, madrid, nil)

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, "abc-123")
	ev.Props.SetText(ical.PropSummary, "[MIT] Estudiar examen")
	ev.Props.SetText(ical.PropDescription, "Rama: MIT")
	ev.Props.SetDateTime(ical.PropDateTimeStart, time.Date(2026, 8, 26, 9, 0, 0, 0, madrid))
	ev.Props.SetDateTime(ical.PropDateTimeEnd, time.Date(2026, 8, 26, 11, 0, 0, 0, madrid))

	event, err := c.parseEvent("/cal/abc-123.ics", *ev)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.ID != "/cal/abc-123.ics" {
		t.Errorf("ID = %q", event.ID)
	}
	if event.Title != "[MIT] Estudiar examen" {
		t.Errorf("Title = %q", event.Title)
	}
	if !event.Start.Equal(time.Date(2026, 8, 26, 9, 0, 0, 0, madrid)) {
		t.Errorf("Start = %v", event.Start)
	}
	if event.End.Sub(event.Start) != 2*time.Hour {
		t.Errorf("duration = %v", event.End.Sub(event.Start))
	}
}

func TestParseEvent_MissingSummary(t *testing.T) {
	c := NewClient(Config{}, time.UTC, nil)

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, "abc-456")
	ev.Props.SetDateTime(ical.PropDateTimeStart, time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC))
	ev.Props.SetDateTime(ical.PropDateTimeEnd, time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC))

	event, err := c.parseEvent("/cal/abc-456.ics", *ev)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.Title != "Sin título" {
		t.Errorf("Title = %q", event.Title)
	}
}

func TestConfig_Configured(t *testing.T) {
	if (Config{}).Configured() {
		t.Error("empty config should not be configured")
	}
	if !(Config{URL: "https://dav.example.com"}).Configured() {
		t.Error("config with URL should be configured")
	}
}
