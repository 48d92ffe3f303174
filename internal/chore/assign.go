package chore

import (
	"github.com/dukerupert/chorebot/internal/action"
	"github.com/dukerupert/chorebot/internal/model"
)

// Assignment pairs a chore with the member receiving it.
type Assignment struct {
	Chore model.Chore
	User  model.User
}

// Assign greedily hands outstanding chores to eligible users. Chores are
// taken in the given priority order (most overdue first) and each one goes to
// the first remaining user, in the given fairness order, who has not skipped
// it. A user receives at most one chore per call; chores nobody can take are
// left for the next tick.
func Assign(outstanding []model.Chore, eligible []model.User) []Assignment {
	pool := make([]model.User, len(eligible))
	copy(pool, eligible)

	var assignments []Assignment
	for _, c := range outstanding {
		for i, u := range pool {
			if c.SkippedByUser(u) {
				continue
			}
			assignments = append(assignments, Assignment{Chore: c, User: u})
			pool = append(pool[:i], pool[i+1:]...)
			break
		}
	}
	return assignments
}

// Actions renders each assignment as a ModifyChore followed by its
// announcement.
func Actions(assignments []Assignment) []action.Action {
	var actions []action.Action
	for _, a := range assignments {
		actions = append(actions, assignActions(a.Chore, a.User)...)
	}
	return actions
}
