package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/chorebot/internal/action"
	"github.com/dukerupert/chorebot/internal/chore"
	"github.com/dukerupert/chorebot/internal/markup"
	"github.com/dukerupert/chorebot/internal/model"
	"github.com/dukerupert/chorebot/internal/recurrence"
)

const historyLimit = 5

// Registry builds the fixed set of chat commands. upcoming is how far ahead
// !request and !upcoming look for chores that are not yet overdue.
func Registry(upcoming time.Duration) []Command {
	r := &registry{upcoming: upcoming}
	r.commands = []Command{
		{
			Callsigns: []string{"!help", "!commands"},
			Summary:   "list commands, or explain one",
			Help:      "!help [command] shows every command, or the details of one.",
			Handler:   r.help,
		},
		{
			Callsigns: []string{"!join"},
			Summary:   "join the chore rotation",
			Handler:   r.join,
		},
		{
			Callsigns: []string{"!leave"},
			Summary:   "leave the chore rotation",
			Handler:   r.leave,
		},
		{
			Callsigns: []string{"!add"},
			MinArgs:   2,
			Summary:   "add a chore",
			Help:      "!add <chore>, <frequency>\nFrequencies: daily @ 9:00 AM, weekly on monday, monthly on the 5th @ 6pm, yearly on march 3, once on 2026-10-20 @ 9am",
			Handler:   r.add,
		},
		{
			Callsigns: []string{"!delete", "!remove"},
			MinArgs:   1,
			Summary:   "delete a chore",
			Help:      "!delete <chore>",
			Handler:   r.delete,
		},
		{
			Callsigns: []string{"!complete", "!completed", "!done"},
			Summary:   "mark your chore (or a named chore) as done",
			Help:      "!complete [chore] completes the chore assigned to you, or the chore you name.",
			Handler:   r.complete,
		},
		{
			Callsigns: []string{"!skip"},
			Summary:   "pass your chore on to someone else",
			Handler:   r.skip,
		},
		{
			Callsigns: []string{"!request"},
			Summary:   "ask for a chore now",
			Handler:   r.request,
		},
		{
			Callsigns: []string{"!chores", "!list"},
			Summary:   "list every chore",
			Handler:   r.list,
		},
		{
			Callsigns: []string{"!info"},
			MinArgs:   1,
			Summary:   "show a chore's details",
			Help:      "!info <chore>",
			Handler:   r.info,
		},
		{
			Callsigns: []string{"!frequency"},
			MinArgs:   2,
			Summary:   "change how often a chore repeats",
			Help:      "!frequency <chore>, <frequency>",
			Handler:   r.frequency,
		},
		{
			Callsigns: []string{"!assigned"},
			Summary:   "show who is doing what",
			Handler:   r.assigned,
		},
		{
			Callsigns: []string{"!upcoming"},
			Summary:   "show overdue and soon-due chores",
			Handler:   r.upcomingChores,
		},
		{
			Callsigns: []string{"!history"},
			MinArgs:   1,
			Summary:   "show recent completions of a chore",
			Help:      "!history <chore>",
			Handler:   r.history,
		},
	}
	return r.commands
}

type registry struct {
	upcoming time.Duration
	commands []Command
}

func notMember() []action.Action {
	return action.Send("You aren't in the chore rotation yet. Send !join first.")
}

func member(st Store, u model.User) (bool, error) {
	existing, err := st.GetUser(u.ID)
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	return existing != nil, nil
}

// lookup fetches a chore by name and, on a miss, builds a "did you mean"
// reply.
func lookup(st Store, name string) (*model.Chore, []action.Action, error) {
	c, err := st.GetChore(name)
	if err != nil {
		return nil, nil, fmt.Errorf("get chore: %w", err)
	}
	if c != nil {
		return c, nil, nil
	}

	names, err := st.ChoreNames()
	if err != nil {
		return nil, nil, fmt.Errorf("chore names: %w", err)
	}
	reply := fmt.Sprintf("I couldn't find a chore called %s.", markup.Bold(name))
	if suggestion, ok := Closest(name, names); ok {
		reply += fmt.Sprintf(" Did you mean %s?", markup.Bold(suggestion))
	}
	return nil, action.Send(reply), nil
}

// splitPair splits "name, value" arguments.
func splitPair(args string) (string, string, bool) {
	name, value, ok := strings.Cut(args, ",")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return "", "", false
	}
	return name, value, true
}

func formatWhen(t time.Time) string {
	return t.Format("Mon Jan 2 @ 3:04 PM")
}

func describeDue(c model.Chore, last *time.Time, now time.Time) string {
	due := chore.DueDate(c, last)
	switch {
	case due == nil:
		return "not due again"
	case due.Equal(recurrence.Epoch):
		return "due now"
	case now.After(*due):
		return "overdue since " + formatWhen(*due)
	}
	return "due " + formatWhen(*due)
}

func lastCompletion(st Store, name string) (*model.ChoreCompletion, error) {
	completions, err := st.Completions(name)
	if err != nil {
		return nil, fmt.Errorf("completions: %w", err)
	}
	if len(completions) == 0 {
		return nil, nil
	}
	return &completions[0], nil
}

func (r *registry) help(msg model.Message, args string, st Store) ([]action.Action, error) {
	if args == "" {
		lines := make([]string, 0, len(r.commands))
		for _, c := range r.commands {
			lines = append(lines, fmt.Sprintf("%s: %s", c.Name(), c.Summary))
		}
		return action.Send("Commands:\n" + markup.Bullets(lines)), nil
	}

	want := args
	if !strings.HasPrefix(want, "!") {
		want = "!" + want
	}
	var callsigns []string
	for _, c := range r.commands {
		for _, cs := range c.Callsigns {
			if cs == want {
				reply := fmt.Sprintf("%s: %s", markup.Bold(c.Name()), c.Summary)
				if c.Help != "" {
					reply += "\n" + c.Help
				}
				if len(c.Callsigns) > 1 {
					reply += "\nAlso: " + strings.Join(c.Callsigns[1:], ", ")
				}
				return action.Send(reply), nil
			}
			callsigns = append(callsigns, cs)
		}
	}

	reply := fmt.Sprintf("There is no %s command.", want)
	if suggestion, ok := Closest(want, callsigns); ok {
		reply += fmt.Sprintf(" Did you mean %s?", suggestion)
	}
	return action.Send(reply), nil
}

func (r *registry) join(msg model.Message, args string, st Store) ([]action.Action, error) {
	ok, err := member(st, msg.Author)
	if err != nil {
		return nil, err
	}
	if ok {
		return action.Send(fmt.Sprintf("%s, you're already in the chore rotation.", markup.Mention(msg.Author))), nil
	}
	return []action.Action{
		action.AddUser{User: msg.Author},
		action.SendMessage{Message: fmt.Sprintf("Welcome %s! You'll be assigned chores from now on.", markup.Mention(msg.Author))},
	}, nil
}

func (r *registry) leave(msg model.Message, args string, st Store) ([]action.Action, error) {
	ok, err := member(st, msg.Author)
	if err != nil {
		return nil, err
	}
	if !ok {
		return notMember(), nil
	}
	return []action.Action{
		action.DeleteUser{User: msg.Author},
		action.SendMessage{Message: fmt.Sprintf("Goodbye %s. Your chores have been unassigned.", markup.Mention(msg.Author))},
	}, nil
}

func (r *registry) add(msg model.Message, args string, st Store) ([]action.Action, error) {
	ok, err := member(st, msg.Author)
	if err != nil {
		return nil, err
	}
	if !ok {
		return notMember(), nil
	}

	name, freq, ok := splitPair(args)
	if !ok {
		return action.Send("!add <chore>, <frequency>"), nil
	}

	existing, err := st.GetChore(name)
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	if existing != nil {
		return action.Send(fmt.Sprintf("A chore called %s already exists.", markup.Bold(name))), nil
	}

	rule, err := recurrence.ParseText(freq, msg.SentAt)
	if err != nil {
		return action.Send(fmt.Sprintf("I couldn't understand the frequency %q. Try something like \"daily @ 9:00 AM\" or \"weekly on monday\".", freq)), nil
	}

	c := model.Chore{Name: name, Recurrence: rule}
	return []action.Action{
		action.AddChore{Chore: c},
		action.SendMessage{Message: "Added " + chore.Describe(c) + "."},
	}, nil
}

func (r *registry) delete(msg model.Message, args string, st Store) ([]action.Action, error) {
	c, miss, err := lookup(st, args)
	if err != nil || miss != nil {
		return miss, err
	}
	return []action.Action{
		action.DeleteChore{ChoreName: c.Name},
		action.SendMessage{Message: fmt.Sprintf("Deleted %s.", markup.Bold(c.Name))},
	}, nil
}

func (r *registry) complete(msg model.Message, args string, st Store) ([]action.Action, error) {
	ok, err := member(st, msg.Author)
	if err != nil {
		return nil, err
	}
	if !ok {
		return notMember(), nil
	}

	var c *model.Chore
	if args == "" {
		assigned, err := st.ChoresAssignedTo(msg.Author)
		if err != nil {
			return nil, fmt.Errorf("chores assigned to %s: %w", msg.Author.ID, err)
		}
		if len(assigned) == 0 {
			return action.Send("You don't have a chore assigned. To complete a specific chore send !complete <chore>."), nil
		}
		c = &assigned[0]
	} else {
		found, miss, err := lookup(st, args)
		if err != nil || miss != nil {
			return miss, err
		}
		c = found
	}

	reply := fmt.Sprintf("%s completed %s. Thanks!", markup.Mention(msg.Author), markup.Bold(c.Name))
	if due := chore.DueDate(*c, &msg.SentAt); due != nil {
		reply += " It's next due " + formatWhen(*due) + "."
	}
	return []action.Action{
		action.CompleteChore{ChoreName: c.Name, User: msg.Author},
		action.SendMessage{Message: reply},
	}, nil
}

func (r *registry) skip(msg model.Message, args string, st Store) ([]action.Action, error) {
	assigned, err := st.ChoresAssignedTo(msg.Author)
	if err != nil {
		return nil, fmt.Errorf("chores assigned to %s: %w", msg.Author.ID, err)
	}
	if len(assigned) == 0 {
		return action.Send("You don't have a chore to skip. Send !request if you'd like one."), nil
	}

	c := assigned[0]
	return []action.Action{
		action.ModifyChore{Chore: chore.Skipped(c, msg.Author)},
		action.SendMessage{Message: fmt.Sprintf("%s skipped %s. It will go to someone else.", markup.Mention(msg.Author), markup.Bold(c.Name))},
	}, nil
}

func (r *registry) request(msg model.Message, args string, st Store) ([]action.Action, error) {
	ok, err := member(st, msg.Author)
	if err != nil {
		return nil, err
	}
	if !ok {
		return notMember(), nil
	}

	assigned, err := st.ChoresAssignedTo(msg.Author)
	if err != nil {
		return nil, fmt.Errorf("chores assigned to %s: %w", msg.Author.ID, err)
	}
	if len(assigned) > 0 {
		return action.Send(fmt.Sprintf("You already have %s. Send !complete when it's done.", markup.Bold(assigned[0].Name))), nil
	}

	outstanding, err := st.OutstandingChores(msg.SentAt)
	if err != nil {
		return nil, fmt.Errorf("outstanding chores: %w", err)
	}
	upcoming, err := st.UpcomingChores(msg.SentAt, msg.SentAt.Add(r.upcoming))
	if err != nil {
		return nil, fmt.Errorf("upcoming chores: %w", err)
	}

	assignments := chore.Assign(append(outstanding, upcoming...), []model.User{msg.Author})
	if len(assignments) == 0 {
		return action.Send("There are no chores available for you right now."), nil
	}
	return chore.Actions(assignments), nil
}

func (r *registry) list(msg model.Message, args string, st Store) ([]action.Action, error) {
	chores, err := st.Chores()
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	if len(chores) == 0 {
		return action.Send("There are no chores yet. Add one with !add <chore>, <frequency>."), nil
	}

	lines := make([]string, 0, len(chores))
	for _, c := range chores {
		lines = append(lines, chore.Describe(c))
	}
	return action.Send("Chores:\n" + markup.Bullets(lines)), nil
}

func (r *registry) info(msg model.Message, args string, st Store) ([]action.Action, error) {
	c, miss, err := lookup(st, args)
	if err != nil || miss != nil {
		return miss, err
	}

	last, err := lastCompletion(st, c.Name)
	if err != nil {
		return nil, err
	}

	lines := []string{"Repeats " + c.Recurrence.Describe()}
	if c.Assigned != nil {
		lines = append(lines, "Assigned to "+markup.Mention(*c.Assigned))
	} else {
		lines = append(lines, "Unassigned")
	}
	if len(c.SkippedBy) > 0 {
		names := make([]string, len(c.SkippedBy))
		for i, u := range c.SkippedBy {
			names[i] = markup.Mention(u)
		}
		lines = append(lines, "Skipped by "+strings.Join(names, ", "))
	}

	var lastAt *time.Time
	if last != nil {
		lastAt = &last.At
		lines = append(lines, fmt.Sprintf("Last done by %s on %s", markup.Mention(last.By), formatWhen(last.At)))
	} else {
		lines = append(lines, "Never done")
	}
	lines = append(lines, describeDue(*c, lastAt, msg.SentAt))

	return action.Send(markup.Bold(c.Name) + "\n" + markup.Bullets(lines)), nil
}

func (r *registry) frequency(msg model.Message, args string, st Store) ([]action.Action, error) {
	name, freq, ok := splitPair(args)
	if !ok {
		return action.Send("!frequency <chore>, <frequency>"), nil
	}

	c, miss, err := lookup(st, name)
	if err != nil || miss != nil {
		return miss, err
	}

	rule, err := recurrence.ParseText(freq, msg.SentAt)
	if err != nil {
		return action.Send(fmt.Sprintf("I couldn't understand the frequency %q.", freq)), nil
	}

	updated := *c
	updated.Recurrence = rule
	return []action.Action{
		action.ModifyChore{Chore: updated},
		action.SendMessage{Message: fmt.Sprintf("%s now repeats %s.", markup.Bold(c.Name), rule.Describe())},
	}, nil
}

func (r *registry) assigned(msg model.Message, args string, st Store) ([]action.Action, error) {
	chores, err := st.AssignedChores()
	if err != nil {
		return nil, fmt.Errorf("assigned chores: %w", err)
	}
	if len(chores) == 0 {
		return action.Send("Nobody has a chore right now."), nil
	}
	return action.Send("Assigned chores:\n" + markup.Bullets(chore.AssignmentLines(chores))), nil
}

func (r *registry) upcomingChores(msg model.Message, args string, st Store) ([]action.Action, error) {
	outstanding, err := st.OutstandingChores(msg.SentAt)
	if err != nil {
		return nil, fmt.Errorf("outstanding chores: %w", err)
	}
	upcoming, err := st.UpcomingChores(msg.SentAt, msg.SentAt.Add(r.upcoming))
	if err != nil {
		return nil, fmt.Errorf("upcoming chores: %w", err)
	}
	if len(outstanding)+len(upcoming) == 0 {
		return action.Send("Nothing is due soon."), nil
	}

	var lines []string
	for _, c := range append(outstanding, upcoming...) {
		last, err := lastCompletion(st, c.Name)
		if err != nil {
			return nil, err
		}
		var lastAt *time.Time
		if last != nil {
			lastAt = &last.At
		}
		lines = append(lines, fmt.Sprintf("%s: %s", markup.Bold(c.Name), describeDue(c, lastAt, msg.SentAt)))
	}
	return action.Send("Up next:\n" + markup.Bullets(lines)), nil
}

func (r *registry) history(msg model.Message, args string, st Store) ([]action.Action, error) {
	c, miss, err := lookup(st, args)
	if err != nil || miss != nil {
		return miss, err
	}

	completions, err := st.Completions(c.Name)
	if err != nil {
		return nil, fmt.Errorf("completions: %w", err)
	}
	if len(completions) == 0 {
		return action.Send(fmt.Sprintf("%s has never been done.", markup.Bold(c.Name))), nil
	}
	if len(completions) > historyLimit {
		completions = completions[:historyLimit]
	}

	lines := make([]string, len(completions))
	for i, cc := range completions {
		lines[i] = fmt.Sprintf("%s on %s", markup.Mention(cc.By), formatWhen(cc.At))
	}
	return action.Send(markup.Bold(c.Name) + " history:\n" + markup.Bullets(lines)), nil
}
