// Package command turns inbound chat messages into actions.
package command

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/chorebot/internal/action"
	"github.com/dukerupert/chorebot/internal/model"
)

// Store is the read access command handlers need. Lookups that miss return
// nil without an error.
type Store interface {
	Chores() ([]model.Chore, error)
	ChoreNames() ([]string, error)
	GetChore(name string) (*model.Chore, error)
	ChoresAssignedTo(u model.User) ([]model.Chore, error)
	AssignedChores() ([]model.Chore, error)
	OutstandingChores(now time.Time) ([]model.Chore, error)
	UpcomingChores(now, cutoff time.Time) ([]model.Chore, error)
	Completions(choreName string) ([]model.ChoreCompletion, error)
	GetUser(id string) (*model.User, error)
}

// Handler computes the actions for one invocation of a command. args is the
// lower-cased text after the callsign with surrounding space trimmed.
type Handler func(msg model.Message, args string, st Store) ([]action.Action, error)

// Command is one entry of the registry.
type Command struct {
	// Callsigns are the prefixes that invoke the command; the first is
	// canonical.
	Callsigns []string
	// MinArgs is the minimum number of whitespace-separated arguments, or 0.
	MinArgs int
	Summary string
	Help    string
	Handler Handler
}

// Name returns the canonical callsign.
func (c Command) Name() string {
	return c.Callsigns[0]
}

func (c Command) usage() string {
	if c.Help != "" {
		return c.Help
	}
	return fmt.Sprintf("Not enough arguments for %s. Try !help %s", c.Name(), c.Name())
}

// Dispatcher matches messages against a fixed set of commands.
type Dispatcher struct {
	commands []Command
	logger   *slog.Logger
}

func NewDispatcher(commands []Command, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{commands: commands, logger: logger}
}

// Match finds the command invoked by text. When several callsigns prefix the
// text, the one leaving the shortest argument string wins, so "!completed"
// selects !completed over !complete.
func (d *Dispatcher) Match(text string) (*Command, string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))

	var (
		best     *Command
		bestArgs string
	)
	for i := range d.commands {
		for _, callsign := range d.commands[i].Callsigns {
			if !strings.HasPrefix(lower, callsign) {
				continue
			}
			args := lower[len(callsign):]
			if best == nil || len(args) < len(bestArgs) {
				best = &d.commands[i]
				bestArgs = args
			}
		}
	}
	if best == nil {
		return nil, "", false
	}
	return best, strings.TrimSpace(bestArgs), true
}

// Dispatch runs the command msg invokes and returns its actions. Unknown
// commands yield no actions. A failing or panicking handler is reported to
// the author instead of propagating.
func (d *Dispatcher) Dispatch(msg model.Message, st Store) []action.Action {
	cmd, args, ok := d.Match(msg.Text)
	if !ok {
		return nil
	}

	if cmd.MinArgs > 0 && len(strings.Fields(args)) < cmd.MinArgs {
		return action.Send(cmd.usage())
	}

	return d.execute(cmd, msg, args, st)
}

func (d *Dispatcher) execute(cmd *Command, msg model.Message, args string, st Store) (actions []action.Action) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command panicked", "command", cmd.Name(), "author", msg.Author.ID, "panic", r)
			actions = failure(cmd)
		}
	}()

	actions, err := cmd.Handler(msg, args, st)
	if err != nil {
		d.logger.Error("command failed", "command", cmd.Name(), "author", msg.Author.ID, "error", err)
		return failure(cmd)
	}
	return actions
}

func failure(cmd *Command) []action.Action {
	return action.Send(fmt.Sprintf("Sorry, there was an error running %s.", cmd.Name()))
}
