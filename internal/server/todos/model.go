package todos

import (
	"math"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Category string

const (
	CategoryWork      Category = "work"
	CategoryPersonal  Category = "personal"
	CategoryShopping  Category = "shopping"
	CategoryHealth    Category = "health"
	CategoryFinance   Category = "finance"
	CategoryEducation Category = "education"
	CategoryTravel    Category = "travel"
	CategoryFamily    Category = "family"
	CategoryHobbies   Category = "hobbies"
	CategoryOther     Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth,
		CategoryFinance, CategoryEducation, CategoryTravel, CategoryFamily,
		CategoryHobbies, CategoryOther:
		return true
	}
	return false
}

// Subtask lives inside its parent todo; it has no independent persistence.
// The JSON tags double as the JSONB storage format.
type Subtask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Todo is the task-store record. UserID is set at creation and never
// changes; every read and write is scoped to it.
type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	Category    Category
	DueDate     *time.Time
	Subtasks    []Subtask
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Progress summarizes subtask completion for a todo.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// SubtaskProgress derives the completion summary. Percentage is 0 for a
// todo without subtasks.
func (t *Todo) SubtaskProgress() Progress {
	total := len(t.Subtasks)
	if total == 0 {
		return Progress{}
	}

	completed := 0
	for _, st := range t.Subtasks {
		if st.Completed {
			completed++
		}
	}

	return Progress{
		Completed:  completed,
		Total:      total,
		Percentage: int(math.Round(float64(completed) / float64(total) * 100)),
	}
}

// findSubtask returns a pointer into t.Subtasks, or nil when the id is
// not present.
func (t *Todo) findSubtask(id string) *Subtask {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return &t.Subtasks[i]
		}
	}
	return nil
}
