package store

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/dukerupert/chorebot/internal/chore"
	"github.com/dukerupert/chorebot/internal/model"
)

// Store combines the entity stores into the read and write access the bot
// engine uses.
type Store struct {
	users    *UserStore
	chores   *ChoreStore
	settings *SettingsStore
}

// New builds a Store over db. Completion times are reported in loc so that
// due dates are computed on the household's wall clock.
func New(db *sql.DB, loc *time.Location) *Store {
	return &Store{
		users:    NewUserStore(db),
		chores:   NewChoreStore(db, loc),
		settings: NewSettingsStore(db),
	}
}

// --- Reads ---

func (s *Store) Chores() ([]model.Chore, error) {
	return s.chores.List()
}

func (s *Store) ChoreNames() ([]string, error) {
	return s.chores.Names()
}

func (s *Store) GetChore(name string) (*model.Chore, error) {
	return s.chores.GetByName(name)
}

func (s *Store) ChoresAssignedTo(u model.User) ([]model.Chore, error) {
	return s.chores.ListByAssignee(u.ID)
}

func (s *Store) AssignedChores() ([]model.Chore, error) {
	return s.chores.ListAssigned()
}

func (s *Store) Completions(choreName string) ([]model.ChoreCompletion, error) {
	return s.chores.ListCompletions(choreName)
}

func (s *Store) LastCompletion(choreName string) (*time.Time, error) {
	return s.chores.LastCompletion(choreName)
}

func (s *Store) GetUser(id string) (*model.User, error) {
	return s.users.GetByID(id)
}

func (s *Store) Users() ([]model.User, error) {
	return s.users.List()
}

func (s *Store) AssignableUsers() ([]model.User, error) {
	return s.users.ListAssignable()
}

func (s *Store) Config(key string) (string, bool, error) {
	return s.settings.Lookup(key)
}

func (s *Store) SetConfig(key, value string) error {
	return s.settings.Set(key, value)
}

// OutstandingChores returns unassigned chores that are overdue at now, most
// overdue first.
func (s *Store) OutstandingChores(now time.Time) ([]model.Chore, error) {
	return s.unassignedByDue(func(due time.Time) bool {
		return now.After(due)
	})
}

// UpcomingChores returns unassigned chores that are not yet overdue but are
// due at or before cutoff, soonest first.
func (s *Store) UpcomingChores(now, cutoff time.Time) ([]model.Chore, error) {
	return s.unassignedByDue(func(due time.Time) bool {
		return !now.After(due) && !due.After(cutoff)
	})
}

func (s *Store) unassignedByDue(keep func(due time.Time) bool) ([]model.Chore, error) {
	chores, err := s.chores.ListUnassigned()
	if err != nil {
		return nil, fmt.Errorf("list unassigned chores: %w", err)
	}

	type dueChore struct {
		chore model.Chore
		due   time.Time
	}
	var matched []dueChore
	for _, c := range chores {
		last, err := s.chores.LastCompletion(c.Name)
		if err != nil {
			return nil, err
		}
		due := chore.DueDate(c, last)
		if due == nil || !keep(*due) {
			continue
		}
		matched = append(matched, dueChore{chore: c, due: *due})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].due.Before(matched[j].due)
	})
	out := make([]model.Chore, len(matched))
	for i, m := range matched {
		out[i] = m.chore
	}
	return out, nil
}

// --- Writes ---

func (s *Store) AddChore(c model.Chore) error {
	return s.chores.Create(c)
}

func (s *Store) ModifyChore(c model.Chore) error {
	return s.chores.Update(c)
}

func (s *Store) DeleteChore(name string) error {
	return s.chores.Delete(name)
}

func (s *Store) CompleteChore(name string, u model.User, at time.Time) error {
	return s.chores.Complete(name, u.ID, at)
}

func (s *Store) AddUser(u model.User) error {
	return s.users.Create(u)
}

func (s *Store) DeleteUser(u model.User) error {
	return s.users.Delete(u.ID)
}
