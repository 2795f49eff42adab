package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avoronov/todovault/internal/client/api"
	"github.com/avoronov/todovault/internal/common"
)

// resolveTodo turns a 1-based ordinal from the last "list" output into a
// todo. The list must have been printed first so the ordinals mean
// something.
func (a *App) resolveTodo(arg string) (*api.Todo, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%w: expected a todo number, got %q", common.ErrorValidation, arg)
	}
	if a.lastList == nil {
		return nil, fmt.Errorf("%w: run 'list' first", common.ErrorValidation)
	}
	if n > len(a.lastList) {
		return nil, fmt.Errorf("%w: no todo numbered %d", common.ErrorNotFound, n)
	}
	return &a.lastList[n-1], nil
}

// List fetches and prints the user's todos, newest first, and remembers
// the ordering so other commands can address todos by number.
func (a *App) List(ctx context.Context) error {
	list, err := a.api.ListTodos(ctx)
	if err != nil {
		a.checkSession(ctx, err)
		printlnFn("Error:", err.Error())
		return err
	}

	a.lastList = list
	if len(list) == 0 {
		printlnFn("No todos yet, try 'add'")
		return nil
	}

	for i, t := range list {
		printlnFn(a.renderTodoLine(ctx, i+1, &t))
	}
	return nil
}

// Add interactively creates a todo. Priority, category, due date and
// initial subtasks are optional; empty answers take server defaults.
func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		return err
	}
	priority, err := getSimpleText(a.reader, "Priority [low|medium|high] (optional)", os.Stdout)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Category (optional)", os.Stdout)
	if err != nil {
		return err
	}
	dueRaw, err := getSimpleText(a.reader, "Due date YYYY-MM-DD (optional)", os.Stdout)
	if err != nil {
		return err
	}

	req := api.CreateTodoRequest{
		Title:       title,
		Description: description,
		Priority:    priority,
		Category:    category,
	}
	if dueRaw != "" {
		due, err := time.ParseInLocation("2006-01-02", dueRaw, time.Local)
		if err != nil {
			printlnFn("Invalid date:", dueRaw)
			return err
		}
		req.DueDate = &due
	}

	t, err := a.api.CreateTodo(ctx, req)
	if err != nil {
		a.checkSession(ctx, err)
		printlnFn("Error:", err.Error())
		return err
	}

	printlnFn("Created:", t.Title)
	a.lastList = nil
	return nil
}

// Show prints a single todo with its subtasks and progress.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: show <n>")
		return nil
	}
	ref, err := a.resolveTodo(args[0])
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

	printlnFn(t.Title)
	if t.Description != "" {
		printlnFn(t.Description)
	}
	printlnFn(fmt.Sprintf("Status: %s  Priority: %s  Category: %s",
		checkbox(t.Completed), t.Priority, t.Category))
	if t.DueDate != nil {
		printlnFn("Due:", t.DueDate.Local().Format("2006-01-02"))
	}
	if len(t.Subtasks) > 0 {
		p := t.SubtaskProgress
		printlnFn(fmt.Sprintf("Subtasks (%d/%d, %d%%):", p.Completed, p.Total, p.Percentage))
		for i, st := range t.Subtasks {
			printlnFn(fmt.Sprintf("  %d. %s %s", i+1, checkbox(st.Completed), st.Title))
		}
	}
	return nil
}

// Done toggles a todo's completion flag.
func (a *App) Done(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: done <n>")
		return nil
	}
	ref, err := a.resolveTodo(args[0])
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	t, err := a.api.ToggleTodo(ctx, ref.ID)
	if err != nil {
		a.checkSession(ctx, err)
		printlnFn("Error:", err.Error())
		return err
	}

	ref.Completed = t.Completed
	printlnFn(checkbox(t.Completed), t.Title)
	return nil
}

// Del deletes a todo after a confirmation prompt.
func (a *App) Del(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: del <n>")
		return nil
	}
	ref, err := a.resolveTodo(args[0])
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete %q? [y/N]", ref.Title), os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		printlnFn("Cancelled")
		return nil
	}

	if err := a.api.DeleteTodo(ctx, ref.ID); err != nil {
		a.checkSession(ctx, err)
		printlnFn("Error:", err.Error())
		return err
	}

	printlnFn("Deleted:", ref.Title)
	a.lastList = nil
	return nil
}

// Theme shows or changes the output theme. The value persists in the
// local cache across runs.
func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Theme:", a.theme(ctx))
		return nil
	}
	switch args[0] {
	case themeColor, themeMono:
		if err := a.cache.Set(ctx, cacheKeyTheme, args[0], 0); err != nil {
			printlnFn("Error:", err.Error())
			return err
		}
		printlnFn("Theme set to", args[0])
		return nil
	default:
		printlnFn("Usage: theme [color|mono]")
		return errors.New("unknown theme")
	}
}
