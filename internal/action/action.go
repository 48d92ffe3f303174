// Package action defines the side effects the engine asks its caller to
// perform. Actions are plain data; a list of them is applied in order and
// application stops at the first failure.
package action

import "github.com/dukerupert/chorebot/internal/model"

// Action is one of SendMessage, AddChore, ModifyChore, DeleteChore,
// CompleteChore, AddUser or DeleteUser.
type Action interface {
	isAction()
}

type SendMessage struct {
	Message string
}

type AddChore struct {
	Chore model.Chore
}

// ModifyChore replaces the stored chore's recurrence, assignee and skips.
type ModifyChore struct {
	Chore model.Chore
}

type DeleteChore struct {
	ChoreName string
}

type CompleteChore struct {
	ChoreName string
	User      model.User
}

type AddUser struct {
	User model.User
}

type DeleteUser struct {
	User model.User
}

func (SendMessage) isAction()   {}
func (AddChore) isAction()      {}
func (ModifyChore) isAction()   {}
func (DeleteChore) isAction()   {}
func (CompleteChore) isAction() {}
func (AddUser) isAction()       {}
func (DeleteUser) isAction()    {}

// Send is shorthand for a list holding a single SendMessage.
func Send(message string) []Action {
	return []Action{SendMessage{Message: message}}
}
