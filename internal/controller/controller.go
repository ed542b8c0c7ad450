// Package controller holds the client-side view model: a locally rendered
// list of todos that applies user intents before the server confirms them.
//
// Each in-flight intent is tracked explicitly with its pre-intent snapshot,
// so rollback on failure and reconciliation on success run through a single
// mutation path. The server response is always authoritative: a successful
// mutation overwrites the local guess with the canonical record rather than
// merely confirming it.
package controller

import (
	"errors"

	"todo-tracker/internal/models"

	"github.com/gofrs/uuid"
)

var ErrEmptyTitle = errors.New("title cannot be empty")

type intentKind int

const (
	intentAdd intentKind = iota
	intentToggle
	intentDelete
)

// intent is the pending half of the per-intent state machine. It exists
// from Begin* until the matching Resolve*/Fail* fires; the snapshot is
// what rollback restores.
type intent struct {
	kind     intentKind
	todoID   string
	snapshot models.Todo
}

// Controller owns the local list. It is not safe for concurrent use; the
// intended caller is a single-threaded UI event loop where both user
// intents and response callbacks run on the same goroutine.
type Controller struct {
	todos   []models.Todo
	pending map[string]intent
}

func New() *Controller {
	return &Controller{pending: make(map[string]intent)}
}

// SetTodos replaces the whole local list with the server's collection.
func (c *Controller) SetTodos(todos []models.Todo) {
	c.todos = append([]models.Todo(nil), todos...)
}

// Todos returns a copy of the local list for rendering.
func (c *Controller) Todos() []models.Todo {
	return append([]models.Todo(nil), c.todos...)
}

// Counts reports completed and still-open items.
func (c *Controller) Counts() (completed, open int) {
	for _, todo := range c.todos {
		if todo.Completed {
			completed++
		} else {
			open++
		}
	}
	return completed, open
}

// PendingCount reports in-flight intents, mostly for display.
func (c *Controller) PendingCount() int {
	return len(c.pending)
}

func (c *Controller) find(id string) (int, bool) {
	for i, todo := range c.todos {
		if todo.ID == id {
			return i, true
		}
	}
	return -1, false
}

// BeginAdd inserts a provisional record with a locally generated ID and
// returns it; the returned record's ID doubles as the intent token. The
// canonical server record may carry a different ID.
func (c *Controller) BeginAdd(title string) (models.Todo, error) {
	if title == "" {
		return models.Todo{}, ErrEmptyTitle
	}

	provisional, err := models.NewTodo(title, false)
	if err != nil {
		return models.Todo{}, err
	}

	c.todos = append(c.todos, provisional)
	c.pending[provisional.ID] = intent{
		kind:     intentAdd,
		todoID:   provisional.ID,
		snapshot: provisional,
	}

	return provisional, nil
}

// ResolveAdd swaps the provisional record for the canonical one.
func (c *Controller) ResolveAdd(provisionalID string, canonical models.Todo) {
	pending, ok := c.pending[provisionalID]
	if !ok || pending.kind != intentAdd {
		return
	}
	delete(c.pending, provisionalID)

	if i, found := c.find(provisionalID); found {
		c.todos[i] = canonical
	}
}

// FailAdd removes the provisional record and hands back the attempted
// title so the input field can be restored for retry.
func (c *Controller) FailAdd(provisionalID string) string {
	pending, ok := c.pending[provisionalID]
	if !ok || pending.kind != intentAdd {
		return ""
	}
	delete(c.pending, provisionalID)

	if i, found := c.find(provisionalID); found {
		c.todos = append(c.todos[:i], c.todos[i+1:]...)
	}

	return pending.snapshot.Title
}

// BeginToggle flips the completed flag locally and returns the intent
// token plus the value the server should be asked to set.
func (c *Controller) BeginToggle(id string) (token string, newCompleted bool, ok bool) {
	i, found := c.find(id)
	if !found {
		return "", false, false
	}

	tok, err := uuid.NewV4()
	if err != nil {
		return "", false, false
	}

	snapshot := c.todos[i]
	c.todos[i].Completed = !snapshot.Completed
	c.pending[tok.String()] = intent{
		kind:     intentToggle,
		todoID:   id,
		snapshot: snapshot,
	}

	return tok.String(), !snapshot.Completed, true
}

// ResolveToggle reconciles the toggled record with the canonical response.
func (c *Controller) ResolveToggle(token string, canonical models.Todo) {
	pending, ok := c.pending[token]
	if !ok || pending.kind != intentToggle {
		return
	}
	delete(c.pending, token)

	if i, found := c.find(pending.todoID); found {
		c.todos[i] = canonical
	}
}

// FailToggle reverts the completed flag to its pre-toggle value.
func (c *Controller) FailToggle(token string) {
	pending, ok := c.pending[token]
	if !ok || pending.kind != intentToggle {
		return
	}
	delete(c.pending, token)

	if i, found := c.find(pending.todoID); found {
		c.todos[i].Completed = pending.snapshot.Completed
	}
}

// BeginDelete removes the record locally while retaining a copy for
// rollback, and returns the intent token.
func (c *Controller) BeginDelete(id string) (token string, ok bool) {
	i, found := c.find(id)
	if !found {
		return "", false
	}

	tok, err := uuid.NewV4()
	if err != nil {
		return "", false
	}

	snapshot := c.todos[i]
	c.todos = append(c.todos[:i], c.todos[i+1:]...)
	c.pending[tok.String()] = intent{
		kind:     intentDelete,
		todoID:   id,
		snapshot: snapshot,
	}

	return tok.String(), true
}

// ResolveDelete retires the intent; the record is already gone locally.
func (c *Controller) ResolveDelete(token string) {
	if pending, ok := c.pending[token]; ok && pending.kind == intentDelete {
		delete(c.pending, token)
	}
}

// FailDelete puts the retained copy back into the list.
func (c *Controller) FailDelete(token string) {
	pending, ok := c.pending[token]
	if !ok || pending.kind != intentDelete {
		return
	}
	delete(c.pending, token)

	if _, found := c.find(pending.todoID); !found {
		c.todos = append(c.todos, pending.snapshot)
	}
}
