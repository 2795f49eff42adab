package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/todovault/internal/client/api"
	"github.com/avoronov/todovault/internal/common"
)

func TestResolveTodo(t *testing.T) {
	a := &App{lastList: []api.Todo{
		{ID: "t1", Title: "first"},
		{ID: "t2", Title: "second"},
	}}

	got, err := a.resolveTodo("2")
	require.NoError(t, err)
	assert.Equal(t, "t2", got.ID)

	_, err = a.resolveTodo("3")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = a.resolveTodo("abc")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = a.resolveTodo("0")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestResolveTodoWithoutList(t *testing.T) {
	a := &App{}

	_, err := a.resolveTodo("1")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestResolveSubtask(t *testing.T) {
	todo := &api.Todo{Subtasks: []api.Subtask{
		{ID: "s1", Title: "one"},
		{ID: "s2", Title: "two"},
	}}

	got, err := resolveSubtask(todo, "1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	_, err = resolveSubtask(todo, "5")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = resolveSubtask(todo, "x")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestCheckbox(t *testing.T) {
	assert.Equal(t, "[x]", checkbox(true))
	assert.Equal(t, "[ ]", checkbox(false))
}
