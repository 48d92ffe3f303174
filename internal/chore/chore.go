package chore

import (
	"fmt"
	"sort"
	"time"

	"github.com/dukerupert/chorebot/internal/action"
	"github.com/dukerupert/chorebot/internal/markup"
	"github.com/dukerupert/chorebot/internal/model"
	"github.com/dukerupert/chorebot/internal/recurrence"
)

type Status string

const (
	StatusAssigned Status = "assigned"
	StatusOverdue  Status = "overdue"
	StatusPending  Status = "pending"
	StatusDone     Status = "done"
)

// DueDate returns when c is next due given its most recent completion, or
// nil if it will never be due again.
func DueDate(c model.Chore, lastCompletion *time.Time) *time.Time {
	return recurrence.DueDate(c.Recurrence, lastCompletion)
}

// IsOverdue reports whether c is past due at now.
func IsOverdue(c model.Chore, lastCompletion *time.Time, now time.Time) bool {
	return recurrence.IsOverdue(c.Recurrence, lastCompletion, now)
}

// ComputeStatus determines the status and due date of a chore.
func ComputeStatus(c model.Chore, lastCompletion *time.Time, now time.Time) (Status, *time.Time) {
	due := DueDate(c, lastCompletion)
	switch {
	case c.Assigned != nil:
		return StatusAssigned, due
	case due == nil:
		return StatusDone, nil
	case now.After(*due):
		return StatusOverdue, due
	}
	return StatusPending, due
}

// Skipped returns c unassigned and with u added to its skips.
func Skipped(c model.Chore, u model.User) model.Chore {
	c.Assigned = nil
	if c.SkippedByUser(u) {
		return c
	}
	skipped := make([]model.User, 0, len(c.SkippedBy)+1)
	skipped = append(skipped, c.SkippedBy...)
	c.SkippedBy = append(skipped, u)
	return c
}

// AssignedTo returns c assigned to u. Assignment and pending skips are
// mutually exclusive, so skips are dropped.
func AssignedTo(c model.Chore, u model.User) model.Chore {
	c.Assigned = &u
	c.SkippedBy = nil
	return c
}

// Describe renders a chore for chat replies.
func Describe(c model.Chore) string {
	s := fmt.Sprintf("%s (%s)", markup.Bold(c.Name), c.Recurrence.Describe())
	if c.Assigned != nil {
		s += " assigned to " + markup.Mention(*c.Assigned)
	}
	return s
}

// AssignmentMessage is the announcement sent when u receives c.
func AssignmentMessage(c model.Chore, u model.User) string {
	return fmt.Sprintf("%s, please do the chore %s (%s). Reply !complete when you're done or !skip to pass it on.",
		markup.Mention(u), markup.Bold(c.Name), c.Recurrence.Describe())
}

// assignActions persists the assignment before announcing it.
func assignActions(c model.Chore, u model.User) []action.Action {
	return []action.Action{
		action.ModifyChore{Chore: AssignedTo(c, u)},
		action.SendMessage{Message: AssignmentMessage(c, u)},
	}
}

// AssignmentLines renders "@member: *chore*" for each assigned chore, sorted
// by member name.
func AssignmentLines(chores []model.Chore) []string {
	assigned := make([]model.Chore, 0, len(chores))
	for _, c := range chores {
		if c.Assigned != nil {
			assigned = append(assigned, c)
		}
	}
	sort.SliceStable(assigned, func(i, j int) bool {
		return assigned[i].Assigned.Name < assigned[j].Assigned.Name
	})

	lines := make([]string, len(assigned))
	for i, c := range assigned {
		lines[i] = fmt.Sprintf("%s: %s", markup.Mention(*c.Assigned), markup.Bold(c.Name))
	}
	return lines
}
