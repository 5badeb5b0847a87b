package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/dvila/faro/internal/prompts"
)

// Scheduler fires the automatic briefings: the daily one every morning
// and the weekly summary on Friday evening, both in the user's
// timezone.
type Scheduler struct {
	bridge   *Bridge
	chatID   int64
	location *time.Location
	logger   *slog.Logger

	briefingHour int
	summaryHour  int

	now func() time.Time
}

// SchedulerConfig wires a Scheduler.
type SchedulerConfig struct {
	Bridge       *Bridge
	ChatID       int64
	Location     *time.Location
	BriefingHour int
	SummaryHour  int
	Logger       *slog.Logger
	Now          func() time.Time
}

// NewScheduler creates the briefing scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		bridge:       cfg.Bridge,
		chatID:       cfg.ChatID,
		location:     loc,
		logger:       logger.With("component", "scheduler"),
		briefingHour: cfg.BriefingHour,
		summaryHour:  cfg.SummaryHour,
		now:          now,
	}
}

// Start runs the scheduler until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("briefing scheduler started",
		"daily_hour", s.briefingHour,
		"weekly_hour", s.summaryHour,
		"timezone", s.location.String(),
	)

	for {
		now := s.now().In(s.location)
		nextDaily := s.nextDaily(now)
		nextWeekly := s.nextWeekly(now)

		next := nextDaily
		weekly := false
		if nextWeekly.Before(nextDaily) {
			next = nextWeekly
			weekly = true
		}

		s.logger.Debug("next scheduled briefing", "at", next, "weekly", weekly)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("briefing scheduler shutting down")
			return
		case <-timer.C:
		}

		if weekly {
			s.bridge.RunBriefing(ctx, s.chatID, prompts.WeeklySummary, prompts.WeeklySummaryHeader)
		} else {
			s.bridge.RunBriefing(ctx, s.chatID, prompts.DailyBriefing, prompts.DailyBriefingHeader)
		}
	}
}

// nextDaily returns the next occurrence of the daily briefing hour.
func (s *Scheduler) nextDaily(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.briefingHour, 0, 0, 0, s.location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// nextWeekly returns the next Friday at the summary hour.
func (s *Scheduler) nextWeekly(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.summaryHour, 0, 0, 0, s.location)
	days := (int(time.Friday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
