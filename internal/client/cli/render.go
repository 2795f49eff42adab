package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/avoronov/todovault/internal/client/api"
)

const (
	themeColor = "color"
	themeMono  = "mono"
)

// ANSI colors used by the color theme, keyed by priority.
var priorityColors = map[string]string{
	"low":    "\033[32m",
	"medium": "\033[33m",
	"high":   "\033[31m",
}

const colorReset = "\033[0m"

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func (a *App) theme(ctx context.Context) string {
	v, ok, err := a.cache.Get(ctx, cacheKeyTheme)
	if err != nil || !ok {
		return themeColor
	}
	return v
}

// renderTodoLine formats one list row: ordinal, checkbox, title, priority
// tag, progress summary and due date when present.
func (a *App) renderTodoLine(ctx context.Context, ordinal int, t *api.Todo) string {
	line := fmt.Sprintf("%2d. %s %s", ordinal, checkbox(t.Completed), t.Title)

	tag := fmt.Sprintf("[%s/%s]", t.Priority, t.Category)
	if a.theme(ctx) == themeColor {
		if c, ok := priorityColors[t.Priority]; ok {
			tag = c + tag + colorReset
		}
	}
	line += " " + tag

	if p := t.SubtaskProgress; p.Total > 0 {
		line += fmt.Sprintf(" (%d/%d, %d%%)", p.Completed, p.Total, p.Percentage)
	}
	if t.DueDate != nil {
		due := t.DueDate.Local().Format("2006-01-02")
		if !t.Completed && t.DueDate.Before(time.Now()) {
			due += " overdue"
		}
		line += " due " + due
	}
	return line
}
