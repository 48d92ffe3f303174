package command

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/chorebot/internal/action"
	"github.com/dukerupert/chorebot/internal/model"
	"github.com/dukerupert/chorebot/internal/recurrence"
)

func dispatcher() *Dispatcher {
	return NewDispatcher(Registry(72*time.Hour), discardLogger())
}

func daily(name string) model.Chore {
	return model.Chore{Name: name, Recurrence: recurrence.Daily{At: recurrence.Clock{Hour: 9}}}
}

func TestRegistryCallsignsAreLowerCase(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Registry(time.Hour) {
		require.NotEmpty(t, c.Callsigns)
		require.NotNil(t, c.Handler, c.Name())
		for _, cs := range c.Callsigns {
			assert.Regexp(t, `^![a-z]+$`, cs)
			assert.False(t, seen[cs], "duplicate callsign %s", cs)
			seen[cs] = true
		}
	}
}

func TestSkipWithoutChore(t *testing.T) {
	st := newMemStore(alice)

	got := dispatcher().Dispatch(msg("!skip", alice), st)

	assert.Contains(t, sendText(t, got), "!request")
}

func TestSkipAssignedChore(t *testing.T) {
	c := daily("dishes")
	c.Assigned = &alice
	st := newMemStore(alice).addChore(c)

	got := dispatcher().Dispatch(msg("!skip", alice), st)

	require.Len(t, got, 2)
	modify, ok := got[0].(action.ModifyChore)
	require.True(t, ok, "first action is %T", got[0])
	assert.Nil(t, modify.Chore.Assigned)
	assert.True(t, modify.Chore.SkippedByUser(alice))
	assert.IsType(t, action.SendMessage{}, got[1])
}

func TestCompleteAssignedChore(t *testing.T) {
	c := daily("dishes")
	c.Assigned = &alice
	st := newMemStore(alice).addChore(c)

	got := dispatcher().Dispatch(msg("!completed", alice), st)

	require.Len(t, got, 2)
	assert.Equal(t, action.CompleteChore{ChoreName: "dishes", User: alice}, got[0])
	send := got[1].(action.SendMessage)
	assert.Contains(t, send.Message, "completed *dishes*")
	assert.Contains(t, send.Message, "Tue Oct 20 @ 9:00 AM")
}

func TestCompleteWithoutChore(t *testing.T) {
	st := newMemStore(alice).addChore(daily("dishes"))

	got := dispatcher().Dispatch(msg("!complete", alice), st)
	assert.Contains(t, sendText(t, got), "don't have a chore")

	got = dispatcher().Dispatch(msg("!done dishes", alice), st)
	require.Len(t, got, 2)
	assert.Equal(t, action.CompleteChore{ChoreName: "dishes", User: alice}, got[0])
}

func TestCompleteUnknownChoreSuggests(t *testing.T) {
	st := newMemStore(alice).addChore(daily("do the dishes")).addChore(daily("vacuum"))

	got := dispatcher().Dispatch(msg("!complete dishes", alice), st)

	assert.Equal(t, "I couldn't find a chore called *dishes*. Did you mean *do the dishes*?", sendText(t, got))
}

func TestNonMemberIsToldToJoin(t *testing.T) {
	st := newMemStore()

	for _, text := range []string{"!complete", "!request", "!add dishes, daily", "!leave"} {
		got := dispatcher().Dispatch(msg(text, alice), st)
		assert.Contains(t, sendText(t, got), "!join", text)
	}
}

func TestJoinAndLeave(t *testing.T) {
	got := dispatcher().Dispatch(msg("!join", alice), newMemStore())
	require.Len(t, got, 2)
	assert.Equal(t, action.AddUser{User: alice}, got[0])

	got = dispatcher().Dispatch(msg("!join", alice), newMemStore(alice))
	assert.Contains(t, sendText(t, got), "already")

	got = dispatcher().Dispatch(msg("!leave", alice), newMemStore(alice))
	require.Len(t, got, 2)
	assert.Equal(t, action.DeleteUser{User: alice}, got[0])
}

func TestAdd(t *testing.T) {
	got := dispatcher().Dispatch(msg("!add Clean the Dirt, daily @ 9:00 AM", alice), newMemStore(alice))

	require.Len(t, got, 2)
	add, ok := got[0].(action.AddChore)
	require.True(t, ok, "first action is %T", got[0])
	assert.Equal(t, "clean the dirt", add.Chore.Name)
	assert.Equal(t, recurrence.Daily{At: recurrence.Clock{Hour: 9}}, add.Chore.Recurrence)
	assert.Nil(t, add.Chore.Assigned)
}

func TestAddRejectsDuplicatesAndBadFrequency(t *testing.T) {
	st := newMemStore(alice).addChore(daily("dishes"))

	got := dispatcher().Dispatch(msg("!add dishes, weekly on monday", alice), st)
	assert.Contains(t, sendText(t, got), "already exists")

	got = dispatcher().Dispatch(msg("!add laundry, whenever i feel like it", alice), st)
	assert.Contains(t, sendText(t, got), "couldn't understand")

	got = dispatcher().Dispatch(msg("!add laundry daily", alice), st)
	assert.Equal(t, "!add <chore>, <frequency>", sendText(t, got))
}

func TestDelete(t *testing.T) {
	st := newMemStore(alice).addChore(daily("dishes"))

	got := dispatcher().Dispatch(msg("!remove dishes", alice), st)
	require.Len(t, got, 2)
	assert.Equal(t, action.DeleteChore{ChoreName: "dishes"}, got[0])
}

func TestFrequency(t *testing.T) {
	c := daily("dishes")
	c.Assigned = &bob
	st := newMemStore(alice, bob).addChore(c)

	got := dispatcher().Dispatch(msg("!frequency dishes, weekly on sunday", alice), st)

	require.Len(t, got, 2)
	modify := got[0].(action.ModifyChore)
	assert.Equal(t, recurrence.Weekly{Day: time.Sunday}, modify.Chore.Recurrence)
	require.NotNil(t, modify.Chore.Assigned)
	assert.Equal(t, bob, *modify.Chore.Assigned)
}

func TestRequestPicksMostOverdueUnskipped(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	lastWeek := now.AddDate(0, 0, -7)

	oldest := model.Chore{Name: "gutters", Recurrence: recurrence.Once{At: lastWeek}, SkippedBy: []model.User{alice}}
	next := model.Chore{Name: "mop", Recurrence: recurrence.Once{At: yesterday}}
	st := newMemStore(alice, bob).addChore(next).addChore(oldest)

	got := dispatcher().Dispatch(msg("!request", alice), st)

	require.Len(t, got, 2)
	modify := got[0].(action.ModifyChore)
	assert.Equal(t, "mop", modify.Chore.Name)
	require.NotNil(t, modify.Chore.Assigned)
	assert.Equal(t, alice, *modify.Chore.Assigned)
}

func TestRequestWhenAlreadyAssigned(t *testing.T) {
	c := daily("dishes")
	c.Assigned = &alice
	st := newMemStore(alice).addChore(c)

	got := dispatcher().Dispatch(msg("!request", alice), st)
	assert.Contains(t, sendText(t, got), "already have *dishes*")
}

func TestRequestNothingAvailable(t *testing.T) {
	st := newMemStore(alice).addChore(model.Chore{Name: "taxes", Recurrence: recurrence.Once{At: now.AddDate(1, 0, 0)}})

	got := dispatcher().Dispatch(msg("!request", alice), st)
	assert.Contains(t, sendText(t, got), "no chores available")
}

func TestInfoAndHistory(t *testing.T) {
	st := newMemStore(alice).addChore(daily("dishes"))
	st.completions["dishes"] = []model.ChoreCompletion{
		{ChoreName: "dishes", By: alice, At: now.Add(-2 * time.Hour)},
	}

	info := sendText(t, dispatcher().Dispatch(msg("!info dishes", alice), st))
	assert.Contains(t, info, "Repeats daily @ 9:00 AM")
	assert.Contains(t, info, "Last done by @alice")
	assert.Contains(t, info, "due Tue Oct 20 @ 9:00 AM")

	history := sendText(t, dispatcher().Dispatch(msg("!history dishes", alice), st))
	assert.Contains(t, history, "@alice on Mon Oct 19 @ 10:00 AM")
}

func TestListAndAssigned(t *testing.T) {
	c := daily("dishes")
	c.Assigned = &bob
	st := newMemStore(alice, bob).addChore(c).addChore(daily("trash"))

	list := sendText(t, dispatcher().Dispatch(msg("!chores", alice), st))
	assert.Contains(t, list, "*dishes* (daily @ 9:00 AM) assigned to @bob")
	assert.Contains(t, list, "*trash*")

	assigned := sendText(t, dispatcher().Dispatch(msg("!assigned", alice), st))
	assert.Contains(t, assigned, "@bob: *dishes*")
	assert.NotContains(t, assigned, "trash")
}

func TestHelp(t *testing.T) {
	all := sendText(t, dispatcher().Dispatch(msg("!help", alice), newMemStore()))
	assert.Contains(t, all, "!skip")
	assert.Contains(t, all, "!request")

	one := sendText(t, dispatcher().Dispatch(msg("!help add", alice), newMemStore()))
	assert.Contains(t, one, "!add <chore>, <frequency>")

	miss := sendText(t, dispatcher().Dispatch(msg("!help skp", alice), newMemStore()))
	assert.Contains(t, miss, "Did you mean !skip?")
}

func TestStoreErrorBecomesFailureReply(t *testing.T) {
	st := newMemStore(alice)
	st.err = errors.New("disk full")

	got := dispatcher().Dispatch(msg("!assigned", alice), st)
	assert.Equal(t, "Sorry, there was an error running !assigned.", sendText(t, got))
}
