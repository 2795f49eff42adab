package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/avoronov/todovault/internal/client/api"
	"github.com/avoronov/todovault/internal/common"
)

const subtaskUsage = "Usage: subtask add <n> <title> | subtask done <n> <m> | subtask ren <n> <m> <title> | subtask del <n> <m> | subtask bulk <n> <complete|incomplete|delete> <m>..."

// resolveSubtask maps a 1-based ordinal onto a subtask of the given todo.
func resolveSubtask(t *api.Todo, arg string) (*api.Subtask, error) {
	m, err := strconv.Atoi(arg)
	if err != nil || m < 1 {
		return nil, fmt.Errorf("%w: expected a subtask number, got %q", common.ErrorValidation, arg)
	}
	if m > len(t.Subtasks) {
		return nil, fmt.Errorf("%w: no subtask numbered %d", common.ErrorNotFound, m)
	}
	return &t.Subtasks[m-1], nil
}

// Subtask dispatches the subtask subcommands. Every variant starts from a
// todo ordinal, refetches the todo so subtask ordinals are current, then
// applies the action.
func (a *App) Subtask(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printlnFn(subtaskUsage)
		return nil
	}
	verb := args[0]

	ref, err := a.resolveTodo(args[1])
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	t, err := a.api.GetTodo(ctx, ref.ID)
	if err != nil {
		a.checkSession(ctx, err)
		printlnFn("Error:", err.Error())
		return err
	}

	var updated *api.Todo
	switch verb {
	case "add":
		if len(args) < 3 {
			printlnFn(subtaskUsage)
			return nil
		}
		title := strings.Join(args[2:], " ")
		updated, err = a.api.AddSubtask(ctx, t.ID, title)

	case "done":
		if len(args) != 3 {
			printlnFn(subtaskUsage)
			return nil
		}
		var st *api.Subtask
		st, err = resolveSubtask(t, args[2])
		if err == nil {
			updated, err = a.api.ToggleSubtask(ctx, t.ID, st.ID)
		}

	case "ren":
		if len(args) < 4 {
			printlnFn(subtaskUsage)
			return nil
		}
		var st *api.Subtask
		st, err = resolveSubtask(t, args[2])
		if err == nil {
			updated, err = a.api.RenameSubtask(ctx, t.ID, st.ID, strings.Join(args[3:], " "))
		}

	case "del":
		if len(args) != 3 {
			printlnFn(subtaskUsage)
			return nil
		}
		var st *api.Subtask
		st, err = resolveSubtask(t, args[2])
		if err == nil {
			updated, err = a.api.RemoveSubtask(ctx, t.ID, st.ID)
		}

	case "bulk":
		if len(args) < 4 {
			printlnFn(subtaskUsage)
			return nil
		}
		action := args[2]
		var ids []string
		for _, ord := range args[3:] {
			st, rerr := resolveSubtask(t, ord)
			if rerr != nil {
				printlnFn("Error:", rerr.Error())
				return rerr
			}
			ids = append(ids, st.ID)
		}
		updated, err = a.api.BulkSubtasks(ctx, t.ID, action, ids)

	default:
		printlnFn(subtaskUsage)
		return nil
	}

	if err != nil {
		a.checkSession(ctx, err)
		printlnFn("Error:", err.Error())
		return err
	}

	p := updated.SubtaskProgress
	printlnFn(fmt.Sprintf("Subtasks: %d/%d done (%d%%)", p.Completed, p.Total, p.Percentage))
	return nil
}
