package model

import (
	"time"

	"github.com/dukerupert/chorebot/internal/recurrence"
)

// Chore is a named recurring or one-time task. Name is its identity.
type Chore struct {
	Name       string
	Assigned   *User
	Recurrence recurrence.Recurrence
	// SkippedBy holds members who declined the chore since it was last
	// completed. A chore with skips is unassigned.
	SkippedBy []User
}

// SkippedByUser reports whether u declined the chore.
func (c Chore) SkippedByUser(u User) bool {
	for _, s := range c.SkippedBy {
		if s.Is(u) {
			return true
		}
	}
	return false
}

type ChoreCompletion struct {
	ChoreName string    `json:"chore_name"`
	By        User      `json:"by"`
	At        time.Time `json:"at"`
}
