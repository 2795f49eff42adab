package api

import "time"

// User is the server's public projection of an account.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// Session pairs a bearer token with the account it belongs to.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Subtask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type Todo struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Completed       bool       `json:"completed"`
	Priority        string     `json:"priority"`
	Category        string     `json:"category"`
	DueDate         *time.Time `json:"dueDate"`
	Subtasks        []Subtask  `json:"subtasks"`
	SubtaskProgress Progress   `json:"subtaskProgress"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CreateTodoRequest carries the fields accepted at creation; zero values
// are omitted so the server applies its defaults.
type CreateTodoRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Category    string     `json:"category,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Subtasks    []string   `json:"subtasks,omitempty"`
}

// UpdateTodoRequest is a partial update; nil fields are left out of the
// request body and therefore untouched on the server.
type UpdateTodoRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Category    *string    `json:"category,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Subtasks    []Subtask  `json:"subtasks,omitempty"`
}
