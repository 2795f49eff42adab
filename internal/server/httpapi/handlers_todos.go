package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avoronov/todovault/internal/common"
	"github.com/avoronov/todovault/internal/server/todos"
)

// todoResponse is the wire shape of a todo, including the derived
// subtask progress summary.
type todoResponse struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Completed       bool            `json:"completed"`
	Priority        string          `json:"priority"`
	Category        string          `json:"category"`
	DueDate         *time.Time      `json:"dueDate"`
	Subtasks        []todos.Subtask `json:"subtasks"`
	SubtaskProgress todos.Progress  `json:"subtaskProgress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func toTodoResponse(t *todos.Todo) todoResponse {
	subtasks := t.Subtasks
	if subtasks == nil {
		subtasks = []todos.Subtask{}
	}
	return todoResponse{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Completed:       t.Completed,
		Priority:        string(t.Priority),
		Category:        string(t.Category),
		DueDate:         t.DueDate,
		Subtasks:        subtasks,
		SubtaskProgress: t.SubtaskProgress(),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)

	list, err := s.todos.List(r.Context(), u.ID)
	if err != nil {
		s.replyError(w, r, err)
		return
	}

	out := make([]todoResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTodoResponse(t))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)

	var input struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		Category    string     `json:"category"`
		DueDate     *time.Time `json:"dueDate"`
		Subtasks    []string   `json:"subtasks"`
	}
	if err := s.readJSON(w, r, &input); err != nil {
		s.replyError(w, r, err)
		return
	}

	t, err := s.todos.Create(r.Context(), u.ID, todos.CreateInput{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Category:    input.Category,
		DueDate:     input.DueDate,
		Subtasks:    input.Subtasks,
	})
	if err != nil {
		s.replyError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toTodoResponse(t))
}

func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)

	t, err := s.todos.Get(r.Context(), u.ID, r.PathValue("id"))
	if err != nil {
		s.replyError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTodoResponse(t))
}

var jsonNull = []byte("null")

// updateTodoHandler applies a partial update. Field presence matters:
// dueDate set to null clears the date, while an absent dueDate leaves it
// untouched, so the raw message is inspected before decoding.
func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)

	var input struct {
		Title       *string         `json:"title"`
		Description *string         `json:"description"`
		Completed   *bool           `json:"completed"`
		Priority    *string         `json:"priority"`
		Category    *string         `json:"category"`
		DueDate     json.RawMessage `json:"dueDate"`
		Subtasks    []todos.Subtask `json:"subtasks"`
	}
	if err := s.readJSON(w, r, &input); err != nil {
		s.replyError(w, r, err)
		return
	}

	upd := todos.UpdateInput{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		Priority:    input.Priority,
		Category:    input.Category,
	}
	if input.DueDate != nil {
		upd.DueDateSet = true
		if !bytes.Equal(input.DueDate, jsonNull) {
			var due time.Time
			if err := json.Unmarshal(input.DueDate, &due); err != nil {
				s.replyError(w, r, fmt.Errorf("%w: invalid dueDate", common.ErrorValidation))
				return
			}
			upd.DueDate = &due
		}
	}
	if input.Subtasks != nil {
		upd.SubtasksSet = true
		upd.Subtasks = input.Subtasks
	}

	t, err := s.todos.Update(r.Context(), u.ID, r.PathValue("id"), upd)
	if err != nil {
		s.replyError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTodoResponse(t))
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)

	if err := s.todos.Delete(r.Context(), u.ID, r.PathValue("id")); err != nil {
		s.replyError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"message": "Todo deleted successfully"})
}

func (s *Server) toggleTodoHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)

	t, err := s.todos.ToggleComplete(r.Context(), u.ID, r.PathValue("id"))
	if err != nil {
		s.replyError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTodoResponse(t))
}

func (s *Server) addSubtaskHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)

	var input struct {
		Title string `json:"title"`
	}
	if err := s.readJSON(w, r, &input); err != nil {
		s.replyError(w, r, err)
		return
	}

	t, err := s.todos.AddSubtask(r.Context(), u.ID, r.PathValue("id"), input.Title)
	if err != nil {
		s.replyError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTodoResponse(t))
}

func (s *Server) toggleSubtaskHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)

	t, err := s.todos.ToggleSubtask(r.Context(), u.ID, r.PathValue("id"), r.PathValue("sid"))
	if err != nil {
		s.replyError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTodoResponse(t))
}

func (s *Server) renameSubtaskHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)

	var input struct {
		Title string `json:"title"`
	}
	if err := s.readJSON(w, r, &input); err != nil {
		s.replyError(w, r, err)
		return
	}

	t, err := s.todos.RenameSubtask(r.Context(), u.ID, r.PathValue("id"), r.PathValue("sid"), input.Title)
	if err != nil {
		s.replyError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTodoResponse(t))
}

func (s *Server) removeSubtaskHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)

	t, err := s.todos.RemoveSubtask(r.Context(), u.ID, r.PathValue("id"), r.PathValue("sid"))
	if err != nil {
		s.replyError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTodoResponse(t))
}

func (s *Server) bulkSubtasksHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromRequest(r)

	var input struct {
		Action     string   `json:"action"`
		SubtaskIDs []string `json:"subtaskIds"`
	}
	if err := s.readJSON(w, r, &input); err != nil {
		s.replyError(w, r, err)
		return
	}

	t, err := s.todos.BulkSubtaskAction(r.Context(), u.ID, r.PathValue("id"), todos.BulkAction(input.Action), input.SubtaskIDs)
	if err != nil {
		s.replyError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTodoResponse(t))
}
