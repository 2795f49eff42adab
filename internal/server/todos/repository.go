package todos

import (
	"context"
)

type Repository interface {
	// ListByUser returns all todos owned by userID, newest-created first.
	ListByUser(ctx context.Context, userID string) ([]*Todo, error)

	// Create inserts the todo and fills in ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, todo *Todo) (*Todo, error)

	// GetByID returns the todo only when it is owned by userID; anything
	// else is common.ErrorNotFound.
	GetByID(ctx context.Context, userID, id string) (*Todo, error)

	// Save persists the whole todo, subtask collection included, as one
	// unit. The row must still be owned by todo.UserID.
	Save(ctx context.Context, todo *Todo) error

	// Delete removes an owned todo; common.ErrorNotFound otherwise.
	Delete(ctx context.Context, userID, id string) error
}
