package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/todovault/internal/common"
)

// BulkAction is the verb applied by BulkSubtaskAction.
type BulkAction string

const (
	BulkComplete   BulkAction = "complete"
	BulkIncomplete BulkAction = "incomplete"
	BulkDelete     BulkAction = "delete"
)

// CreateInput carries the fields accepted at todo creation. Omitted
// optional fields take their documented defaults; Subtasks seeds the
// initial subtask list from titles.
type CreateInput struct {
	Title       string
	Description string
	Priority    string
	Category    string
	DueDate     *time.Time
	Subtasks    []string
}

// UpdateInput is a partial update: nil pointers mean "leave unchanged".
// DueDate and Subtasks carry an explicit presence flag so that a caller can
// distinguish "absent" from "set to null/empty".
type UpdateInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *string
	Category    *string
	DueDate     *time.Time
	DueDateSet  bool
	Subtasks    []Subtask
	SubtasksSet bool
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, ownerID string) ([]*Todo, error) {
	list, err := s.repo.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing todos: %w", err)
	}
	return list, nil
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}

	priority := PriorityMedium
	if in.Priority != "" {
		priority = Priority(in.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("%w: invalid priority %q", common.ErrorValidation, in.Priority)
		}
	}

	category := CategoryPersonal
	if in.Category != "" {
		category = Category(in.Category)
		if !category.Valid() {
			return nil, fmt.Errorf("%w: invalid category %q", common.ErrorValidation, in.Category)
		}
	}

	now := time.Now()
	subtasks := make([]Subtask, 0, len(in.Subtasks))
	for _, st := range in.Subtasks {
		t := strings.TrimSpace(st)
		if t == "" {
			return nil, fmt.Errorf("%w: subtask title is required", common.ErrorValidation)
		}
		subtasks = append(subtasks, Subtask{ID: uuid.NewString(), Title: t, CreatedAt: now})
	}

	todo := &Todo{
		UserID:      ownerID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		Category:    category,
		DueDate:     in.DueDate,
		Subtasks:    subtasks,
	}

	todo, err := s.repo.Create(ctx, todo)
	if err != nil {
		return nil, fmt.Errorf("error creating todo: %w", err)
	}

	return todo, nil
}

func (s *Service) Get(ctx context.Context, ownerID, todoID string) (*Todo, error) {
	return s.repo.GetByID(ctx, ownerID, todoID)
}

// Update applies only the fields present in the input; everything else
// retains its prior value.
func (s *Service) Update(ctx context.Context, ownerID, todoID string, in UpdateInput) (*Todo, error) {
	todo, err := s.repo.GetByID(ctx, ownerID, todoID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
		}
		todo.Title = title
	}
	if in.Description != nil {
		todo.Description = strings.TrimSpace(*in.Description)
	}
	if in.Completed != nil {
		todo.Completed = *in.Completed
	}
	if in.Priority != nil {
		p := Priority(*in.Priority)
		if !p.Valid() {
			return nil, fmt.Errorf("%w: invalid priority %q", common.ErrorValidation, *in.Priority)
		}
		todo.Priority = p
	}
	if in.Category != nil {
		c := Category(*in.Category)
		if !c.Valid() {
			return nil, fmt.Errorf("%w: invalid category %q", common.ErrorValidation, *in.Category)
		}
		todo.Category = c
	}
	if in.DueDateSet {
		todo.DueDate = in.DueDate
	}
	if in.SubtasksSet {
		now := time.Now()
		subtasks := make([]Subtask, 0, len(in.Subtasks))
		for _, st := range in.Subtasks {
			title := strings.TrimSpace(st.Title)
			if title == "" {
				return nil, fmt.Errorf("%w: subtask title is required", common.ErrorValidation)
			}
			if st.ID == "" {
				st.ID = uuid.NewString()
			}
			if st.CreatedAt.IsZero() {
				st.CreatedAt = now
			}
			st.Title = title
			subtasks = append(subtasks, st)
		}
		todo.Subtasks = subtasks
	}

	return s.save(ctx, todo)
}

func (s *Service) Delete(ctx context.Context, ownerID, todoID string) error {
	return s.repo.Delete(ctx, ownerID, todoID)
}

// ToggleComplete flips the todo's own completed flag; subtask flags are
// untouched.
func (s *Service) ToggleComplete(ctx context.Context, ownerID, todoID string) (*Todo, error) {
	todo, err := s.repo.GetByID(ctx, ownerID, todoID)
	if err != nil {
		return nil, err
	}

	todo.Completed = !todo.Completed
	return s.save(ctx, todo)
}

func (s *Service) AddSubtask(ctx context.Context, ownerID, todoID, title string) (*Todo, error) {
	todo, err := s.repo.GetByID(ctx, ownerID, todoID)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: subtask title is required", common.ErrorValidation)
	}

	todo.Subtasks = append(todo.Subtasks, Subtask{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now(),
	})

	return s.save(ctx, todo)
}

func (s *Service) ToggleSubtask(ctx context.Context, ownerID, todoID, subtaskID string) (*Todo, error) {
	todo, err := s.repo.GetByID(ctx, ownerID, todoID)
	if err != nil {
		return nil, err
	}

	st := todo.findSubtask(subtaskID)
	if st == nil {
		return nil, fmt.Errorf("%w: subtask", common.ErrorNotFound)
	}
	st.Completed = !st.Completed

	return s.save(ctx, todo)
}

func (s *Service) RenameSubtask(ctx context.Context, ownerID, todoID, subtaskID, title string) (*Todo, error) {
	todo, err := s.repo.GetByID(ctx, ownerID, todoID)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: subtask title is required", common.ErrorValidation)
	}

	st := todo.findSubtask(subtaskID)
	if st == nil {
		return nil, fmt.Errorf("%w: subtask", common.ErrorNotFound)
	}
	st.Title = title

	return s.save(ctx, todo)
}

// RemoveSubtask deletes the subtask when present; an unknown id is not an
// error, mirroring a pull from the embedded collection.
func (s *Service) RemoveSubtask(ctx context.Context, ownerID, todoID, subtaskID string) (*Todo, error) {
	todo, err := s.repo.GetByID(ctx, ownerID, todoID)
	if err != nil {
		return nil, err
	}

	kept := todo.Subtasks[:0]
	for _, st := range todo.Subtasks {
		if st.ID != subtaskID {
			kept = append(kept, st)
		}
	}
	todo.Subtasks = kept

	return s.save(ctx, todo)
}

// BulkSubtaskAction applies the action to every listed subtask id that
// resolves, silently skipping the rest. The batch is best-effort, not
// atomic.
func (s *Service) BulkSubtaskAction(ctx context.Context, ownerID, todoID string, action BulkAction, subtaskIDs []string) (*Todo, error) {
	todo, err := s.repo.GetByID(ctx, ownerID, todoID)
	if err != nil {
		return nil, err
	}

	switch action {
	case BulkComplete, BulkIncomplete:
		completed := action == BulkComplete
		for _, id := range subtaskIDs {
			if st := todo.findSubtask(id); st != nil {
				st.Completed = completed
			}
		}
	case BulkDelete:
		remove := make(map[string]struct{}, len(subtaskIDs))
		for _, id := range subtaskIDs {
			remove[id] = struct{}{}
		}
		kept := todo.Subtasks[:0]
		for _, st := range todo.Subtasks {
			if _, ok := remove[st.ID]; !ok {
				kept = append(kept, st)
			}
		}
		todo.Subtasks = kept
	default:
		return nil, fmt.Errorf("%w: invalid bulk action %q", common.ErrorValidation, action)
	}

	return s.save(ctx, todo)
}

func (s *Service) save(ctx context.Context, todo *Todo) (*Todo, error) {
	todo.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, todo); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error saving todo: %w", err)
	}

	return todo, nil
}
