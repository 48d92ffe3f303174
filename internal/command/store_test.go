package command

import (
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/chorebot/internal/chore"
	"github.com/dukerupert/chorebot/internal/model"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	users       map[string]model.User
	chores      []model.Chore
	completions map[string][]model.ChoreCompletion // most recent first
	err         error
}

func newMemStore(users ...model.User) *memStore {
	s := &memStore{
		users:       make(map[string]model.User),
		completions: make(map[string][]model.ChoreCompletion),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memStore) addChore(c model.Chore) *memStore {
	s.chores = append(s.chores, c)
	return s
}

func (s *memStore) Chores() ([]model.Chore, error) {
	return s.chores, s.err
}

func (s *memStore) ChoreNames() ([]string, error) {
	var names []string
	for _, c := range s.chores {
		names = append(names, c.Name)
	}
	return names, s.err
}

func (s *memStore) GetChore(name string) (*model.Chore, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.chores {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memStore) ChoresAssignedTo(u model.User) ([]model.Chore, error) {
	var out []model.Chore
	for _, c := range s.chores {
		if c.Assigned != nil && c.Assigned.Is(u) {
			out = append(out, c)
		}
	}
	return out, s.err
}

func (s *memStore) AssignedChores() ([]model.Chore, error) {
	var out []model.Chore
	for _, c := range s.chores {
		if c.Assigned != nil {
			out = append(out, c)
		}
	}
	return out, s.err
}

func (s *memStore) last(name string) *time.Time {
	if cs := s.completions[name]; len(cs) > 0 {
		return &cs[0].At
	}
	return nil
}

func (s *memStore) byDue(keep func(c model.Chore, due time.Time) bool) []model.Chore {
	type entry struct {
		c   model.Chore
		due time.Time
	}
	var entries []entry
	for _, c := range s.chores {
		if c.Assigned != nil {
			continue
		}
		due := chore.DueDate(c, s.last(c.Name))
		if due == nil || !keep(c, *due) {
			continue
		}
		entries = append(entries, entry{c, *due})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].due.Before(entries[j].due) })
	out := make([]model.Chore, len(entries))
	for i, e := range entries {
		out[i] = e.c
	}
	return out
}

func (s *memStore) OutstandingChores(now time.Time) ([]model.Chore, error) {
	return s.byDue(func(_ model.Chore, due time.Time) bool { return now.After(due) }), s.err
}

func (s *memStore) UpcomingChores(now, cutoff time.Time) ([]model.Chore, error) {
	return s.byDue(func(_ model.Chore, due time.Time) bool {
		return !now.After(due) && !due.After(cutoff)
	}), s.err
}

func (s *memStore) Completions(name string) ([]model.ChoreCompletion, error) {
	return s.completions[name], s.err
}

func (s *memStore) GetUser(id string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}
