package controller

import (
	"testing"

	"todo-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func todoWithTitle(t *testing.T, title string, completed bool) models.Todo {
	t.Helper()
	todo, err := models.NewTodo(title, completed)
	require.NoError(t, err)
	return todo
}

func titles(todos []models.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, todo := range todos {
		out = append(out, todo.Title)
	}
	return out
}

func TestSetTodosReplacesList(t *testing.T) {
	c := New()
	c.SetTodos([]models.Todo{todoWithTitle(t, "old", false)})
	c.SetTodos([]models.Todo{todoWithTitle(t, "a", false), todoWithTitle(t, "b", true)})

	assert.Equal(t, []string{"a", "b"}, titles(c.Todos()))

	completed, open := c.Counts()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, open)
}

func TestBeginAdd_AppearsImmediately(t *testing.T) {
	c := New()

	provisional, err := c.BeginAdd("X")
	require.NoError(t, err)

	assert.NotEmpty(t, provisional.ID)
	assert.Equal(t, []string{"X"}, titles(c.Todos()))
	assert.Equal(t, 1, c.PendingCount())
}

func TestBeginAdd_EmptyTitle(t *testing.T) {
	c := New()

	_, err := c.BeginAdd("")
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Empty(t, c.Todos())
}

func TestResolveAdd_ReplacesProvisionalWithCanonical(t *testing.T) {
	c := New()

	provisional, err := c.BeginAdd("X")
	require.NoError(t, err)

	// server assigns its own id and timestamps
	canonical := todoWithTitle(t, "X", false)
	require.NotEqual(t, provisional.ID, canonical.ID)

	c.ResolveAdd(provisional.ID, canonical)

	todos := c.Todos()
	require.Len(t, todos, 1)
	assert.Equal(t, canonical, todos[0])
	assert.Equal(t, 0, c.PendingCount())
}

func TestFailAdd_RollsBackAndRestoresTitle(t *testing.T) {
	c := New()
	c.SetTodos([]models.Todo{todoWithTitle(t, "existing", false)})

	provisional, err := c.BeginAdd("X")
	require.NoError(t, err)
	require.Len(t, c.Todos(), 2)

	restored := c.FailAdd(provisional.ID)

	assert.Equal(t, "X", restored)
	assert.Equal(t, []string{"existing"}, titles(c.Todos()))
	assert.Equal(t, 0, c.PendingCount())
}

func TestBeginToggle_FlipsImmediately(t *testing.T) {
	c := New()
	todo := todoWithTitle(t, "task", false)
	c.SetTodos([]models.Todo{todo})

	token, newCompleted, ok := c.BeginToggle(todo.ID)
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.True(t, newCompleted)
	assert.True(t, c.Todos()[0].Completed)
}

func TestBeginToggle_UnknownID(t *testing.T) {
	c := New()

	_, _, ok := c.BeginToggle("missing")
	assert.False(t, ok)
}

func TestResolveToggle_ServerResponseWins(t *testing.T) {
	c := New()
	todo := todoWithTitle(t, "task", false)
	c.SetTodos([]models.Todo{todo})

	token, _, ok := c.BeginToggle(todo.ID)
	require.True(t, ok)

	// canonical response carries a server-side UpdatedAt the client
	// could not have guessed
	canonical := todo
	canonical.Completed = true
	canonical.UpdatedAt = models.Timestamp()

	c.ResolveToggle(token, canonical)

	todos := c.Todos()
	require.Len(t, todos, 1)
	assert.Equal(t, canonical, todos[0])
	assert.Equal(t, 0, c.PendingCount())
}

func TestFailToggle_RevertsFlag(t *testing.T) {
	c := New()
	todo := todoWithTitle(t, "task", true)
	c.SetTodos([]models.Todo{todo})

	token, newCompleted, ok := c.BeginToggle(todo.ID)
	require.True(t, ok)
	assert.False(t, newCompleted)
	assert.False(t, c.Todos()[0].Completed)

	c.FailToggle(token)

	assert.True(t, c.Todos()[0].Completed)
	assert.Equal(t, 0, c.PendingCount())
}

func TestBeginDelete_RemovesImmediately(t *testing.T) {
	c := New()
	keep := todoWithTitle(t, "keep", false)
	doomed := todoWithTitle(t, "doomed", false)
	c.SetTodos([]models.Todo{keep, doomed})

	token, ok := c.BeginDelete(doomed.ID)
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.Equal(t, []string{"keep"}, titles(c.Todos()))

	c.ResolveDelete(token)
	assert.Equal(t, 0, c.PendingCount())
}

func TestFailDelete_RestoresMembership(t *testing.T) {
	c := New()
	keep := todoWithTitle(t, "keep", false)
	doomed := todoWithTitle(t, "doomed", true)
	c.SetTodos([]models.Todo{keep, doomed})

	token, ok := c.BeginDelete(doomed.ID)
	require.True(t, ok)
	require.Len(t, c.Todos(), 1)

	c.FailDelete(token)

	todos := c.Todos()
	require.Len(t, todos, 2)
	assert.Contains(t, todos, doomed)
	assert.Contains(t, todos, keep)
}

func TestConcurrentTogglesOnSameRecord_LastReplyWins(t *testing.T) {
	c := New()
	todo := todoWithTitle(t, "task", false)
	c.SetTodos([]models.Todo{todo})

	tokenA, _, ok := c.BeginToggle(todo.ID)
	require.True(t, ok)
	tokenB, _, ok := c.BeginToggle(todo.ID)
	require.True(t, ok)

	first := todo
	first.Completed = true
	first.UpdatedAt = models.Timestamp()

	second := todo
	second.Completed = false
	second.UpdatedAt = models.Timestamp()

	// responses arrive out of issue order; the later reply wins
	c.ResolveToggle(tokenB, second)
	c.ResolveToggle(tokenA, first)

	assert.Equal(t, first, c.Todos()[0])
	assert.Equal(t, 0, c.PendingCount())
}

func TestResolveUnknownTokenIsNoOp(t *testing.T) {
	c := New()
	c.SetTodos([]models.Todo{todoWithTitle(t, "task", false)})

	c.ResolveToggle("missing-token", todoWithTitle(t, "other", false))
	c.FailToggle("missing-token")
	c.FailDelete("missing-token")
	assert.Equal(t, "", c.FailAdd("missing-token"))

	assert.Len(t, c.Todos(), 1)
}
