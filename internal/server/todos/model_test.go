package todos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubtaskProgress(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      Progress
	}{
		{name: "no subtasks", completed: 0, total: 0, want: Progress{}},
		{name: "none done", completed: 0, total: 1, want: Progress{Completed: 0, Total: 1, Percentage: 0}},
		{name: "all done", completed: 1, total: 1, want: Progress{Completed: 1, Total: 1, Percentage: 100}},
		{name: "one of three rounds to 33", completed: 1, total: 3, want: Progress{Completed: 1, Total: 3, Percentage: 33}},
		{name: "two of three rounds to 67", completed: 2, total: 3, want: Progress{Completed: 2, Total: 3, Percentage: 67}},
		{name: "half", completed: 3, total: 6, want: Progress{Completed: 3, Total: 6, Percentage: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todo := &Todo{}
			for i := 0; i < tt.total; i++ {
				todo.Subtasks = append(todo.Subtasks, Subtask{Completed: i < tt.completed})
			}
			assert.Equal(t, tt.want, todo.SubtaskProgress())
		})
	}
}

func TestPriorityAndCategoryValidation(t *testing.T) {
	assert.True(t, Priority("low").Valid())
	assert.True(t, Priority("medium").Valid())
	assert.True(t, Priority("high").Valid())
	assert.False(t, Priority("urgent").Valid())

	for _, c := range []Category{CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth,
		CategoryFinance, CategoryEducation, CategoryTravel, CategoryFamily, CategoryHobbies, CategoryOther} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, Category("chores").Valid())
}
