// Package bot runs the chore engine: it feeds chat messages and clock ticks
// through the command dispatcher and tick orchestrator and applies the
// resulting actions.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/chorebot/internal/action"
	"github.com/dukerupert/chorebot/internal/command"
	"github.com/dukerupert/chorebot/internal/loop"
	"github.com/dukerupert/chorebot/internal/model"
)

// Sender delivers bot output to the chat.
type Sender interface {
	Send(text string) error
}

// Store is everything the bot reads and writes.
type Store interface {
	command.Store
	loop.Store

	AddChore(c model.Chore) error
	ModifyChore(c model.Chore) error
	DeleteChore(name string) error
	CompleteChore(name string, u model.User, at time.Time) error
	AddUser(u model.User) error
	DeleteUser(u model.User) error
}

// Options configures a Bot.
type Options struct {
	Store      Store
	Sender     Sender
	Dispatcher *command.Dispatcher
	// Messages is the inbound chat queue.
	Messages <-chan model.Message
	Window   loop.Window
	Interval time.Duration
	Location *time.Location
	Logger   *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Bot serializes every engine event on one goroutine, so a tick never
// interleaves with a command.
type Bot struct {
	mu         sync.RWMutex
	store      Store
	sender     Sender
	dispatcher *command.Dispatcher
	messages   <-chan model.Message
	windows    chan loop.Window
	window     loop.Window
	interval   time.Duration
	loc        *time.Location
	logger     *slog.Logger
	now        func() time.Time
	cancel     context.CancelFunc
	done       chan struct{}
}

func New(opts Options) *Bot {
	b := &Bot{
		store:      opts.Store,
		sender:     opts.Sender,
		dispatcher: opts.Dispatcher,
		messages:   opts.Messages,
		windows:    make(chan loop.Window, 1),
		window:     opts.Window,
		interval:   opts.Interval,
		loc:        opts.Location,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if b.interval <= 0 {
		b.interval = time.Minute
	}
	if b.loc == nil {
		b.loc = time.Local
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Start begins the event loop. The first tick runs immediately.
func (b *Bot) Start(ctx context.Context) {
	b.mu.Lock()
	ctx, b.cancel = context.WithCancel(ctx)
	b.done = make(chan struct{})
	b.mu.Unlock()

	go func() {
		defer close(b.done)
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		b.Tick()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-b.messages:
				if !ok {
					return
				}
				b.HandleMessage(msg)
			case w := <-b.windows:
				b.window = w
				b.logger.Info("working hours updated", "morning", w.Morning.String(), "night", w.Night.String())
			case <-ticker.C:
				b.Tick()
			}
		}
	}()
}

// Stop gracefully stops the event loop.
func (b *Bot) Stop() {
	b.mu.RLock()
	cancel := b.cancel
	done := b.done
	b.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Run starts the bot and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.Start(ctx)
	<-ctx.Done()
	b.Stop()
	return nil
}

// SetWindow replaces the working hours. The loop picks it up before its
// next event; an update that has not been picked up yet is superseded.
func (b *Bot) SetWindow(w loop.Window) {
	for {
		select {
		case b.windows <- w:
			return
		default:
		}
		select {
		case <-b.windows:
		default:
		}
	}
}

// HandleMessage dispatches one chat message and applies its actions.
func (b *Bot) HandleMessage(msg model.Message) {
	if msg.SentAt.IsZero() {
		msg.SentAt = b.now()
	}
	msg.SentAt = msg.SentAt.In(b.loc)

	actions := b.dispatcher.Dispatch(msg, b.store)
	if err := b.apply(actions); err != nil {
		b.logger.Error("apply command actions", "author", msg.Author.ID, "text", msg.Text, "error", err)
	}
}

// Tick runs the tick orchestrator at the current time and applies its
// actions.
func (b *Bot) Tick() {
	now := b.now().In(b.loc)
	actions, err := loop.Tick(now, b.window, b.store)
	if err != nil {
		b.logger.Error("tick", "error", err)
		return
	}
	if err := b.apply(actions); err != nil {
		b.logger.Error("apply tick actions", "error", err)
	}
}

// apply performs actions in order and stops at the first failure.
func (b *Bot) apply(actions []action.Action) error {
	for i, a := range actions {
		if err := b.perform(a); err != nil {
			return fmt.Errorf("action %d of %d (%T): %w", i+1, len(actions), a, err)
		}
	}
	return nil
}

func (b *Bot) perform(a action.Action) error {
	switch a := a.(type) {
	case action.SendMessage:
		return b.sender.Send(a.Message)
	case action.AddChore:
		return b.store.AddChore(a.Chore)
	case action.ModifyChore:
		return b.store.ModifyChore(a.Chore)
	case action.DeleteChore:
		return b.store.DeleteChore(a.ChoreName)
	case action.CompleteChore:
		return b.store.CompleteChore(a.ChoreName, a.User, b.now().In(b.loc))
	case action.AddUser:
		return b.store.AddUser(a.User)
	case action.DeleteUser:
		return b.store.DeleteUser(a.User)
	default:
		return fmt.Errorf("unknown action %T", a)
	}
}
