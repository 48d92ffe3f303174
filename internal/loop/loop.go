// Package loop decides what happens on each periodic tick: assigning
// outstanding chores during working hours, and a nightly reminder outside them.
package loop

import (
	"fmt"
	"time"

	"github.com/dukerupert/chorebot/internal/action"
	"github.com/dukerupert/chorebot/internal/chore"
	"github.com/dukerupert/chorebot/internal/markup"
	"github.com/dukerupert/chorebot/internal/model"
	"github.com/dukerupert/chorebot/internal/recurrence"
)

// LastReminderKey is the config key holding the calendar date
// (YYYY-MM-DD) of the most recent nightly reminder.
const LastReminderKey = "last_reminder_date"

const dateLayout = "2006-01-02"

// Store is the data a tick reads, plus the reminder marker it writes.
type Store interface {
	// OutstandingChores returns overdue, unassigned chores, most overdue first.
	OutstandingChores(now time.Time) ([]model.Chore, error)
	// AssignableUsers returns members without a chore, least recent
	// completion first.
	AssignableUsers() ([]model.User, error)
	AssignedChores() ([]model.Chore, error)
	Config(key string) (string, bool, error)
	SetConfig(key, value string) error
}

// Window is the working-hours range [Morning, Night) during which chores are
// handed out. A window whose night is before its morning spans midnight.
type Window struct {
	Morning recurrence.Clock
	Night   recurrence.Clock
}

// Contains reports whether t's time of day falls inside the window.
func (w Window) Contains(t time.Time) bool {
	m := recurrence.ClockOf(t).Minutes()
	start, end := w.Morning.Minutes(), w.Night.Minutes()
	if start <= end {
		return m >= start && m < end
	}
	return m >= start || m < end
}

// Tick computes the actions for one tick at now. Errors reading chores or
// users are returned; a tick without its data cannot proceed.
func Tick(now time.Time, w Window, st Store) ([]action.Action, error) {
	if w.Contains(now) {
		return assign(now, st)
	}
	return remind(now, w, st)
}

func assign(now time.Time, st Store) ([]action.Action, error) {
	outstanding, err := st.OutstandingChores(now)
	if err != nil {
		return nil, fmt.Errorf("outstanding chores: %w", err)
	}
	if len(outstanding) == 0 {
		return nil, nil
	}

	users, err := st.AssignableUsers()
	if err != nil {
		return nil, fmt.Errorf("assignable users: %w", err)
	}

	return chore.Actions(chore.Assign(outstanding, users)), nil
}

// remind sends at most one reminder per calendar day, on the first tick at
// or after night.
func remind(now time.Time, w Window, st Store) ([]action.Action, error) {
	if recurrence.ClockOf(now).Before(w.Night) {
		return nil, nil
	}

	last, ok, err := st.Config(LastReminderKey)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", LastReminderKey, err)
	}
	today := now.Format(dateLayout)
	if ok && !after(today, last, now.Location()) {
		return nil, nil
	}

	assigned, err := st.AssignedChores()
	if err != nil {
		return nil, fmt.Errorf("assigned chores: %w", err)
	}
	if err := st.SetConfig(LastReminderKey, today); err != nil {
		return nil, fmt.Errorf("set %s: %w", LastReminderKey, err)
	}

	lines := chore.AssignmentLines(assigned)
	if len(lines) == 0 {
		return nil, nil
	}
	return action.Send("Reminder! These chores still need doing:\n" + markup.Bullets(lines)), nil
}

// after reports whether calendar date today is later than last. Only the
// date part of last is read; a marker that does not parse counts as never
// sent.
func after(today, last string, loc *time.Location) bool {
	if len(last) > len(dateLayout) {
		last = last[:len(dateLayout)]
	}
	lastDate, err := time.ParseInLocation(dateLayout, last, loc)
	if err != nil {
		return true
	}
	todayDate, _ := time.ParseInLocation(dateLayout, today, loc)
	return todayDate.After(lastDate)
}
