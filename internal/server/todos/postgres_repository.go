package todos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avoronov/todovault/internal/common"
	"github.com/avoronov/todovault/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Todo, error) {
	query :=
		`SELECT id, user_id, title, description, completed, priority, category, due_date, subtasks, created_at, updated_at
		 FROM todos
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	list := make([]*Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) Create(ctx context.Context, todo *Todo) (*Todo, error) {
	subtasks, err := marshalSubtasks(todo.Subtasks)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO todos (user_id, title, description, completed, priority, category, due_date, subtasks)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		todo.UserID, todo.Title, todo.Description, todo.Completed,
		todo.Priority, todo.Category, todo.DueDate, subtasks).
		Scan(&todo.ID, &todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return todo, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*Todo, error) {
	query :=
		`SELECT id, user_id, title, description, completed, priority, category, due_date, subtasks, created_at, updated_at
		 FROM todos
		 WHERE id = $1 AND user_id = $2
		 `

	row := r.db.QueryRowContext(ctx, query, id, userID)
	todo, err := scanTodo(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return todo, nil
}

// Save writes every mutable column in one UPDATE; the row is the atomicity
// unit, so concurrent saves resolve last-write-wins.
func (r *PostgresRepository) Save(ctx context.Context, todo *Todo) error {
	subtasks, err := marshalSubtasks(todo.Subtasks)
	if err != nil {
		return err
	}

	query :=
		`UPDATE todos
		 SET title = $1, description = $2, completed = $3, priority = $4,
		     category = $5, due_date = $6, subtasks = $7, updated_at = $8
		 WHERE id = $9 AND user_id = $10`

	res, err := r.db.ExecContext(ctx, query,
		todo.Title, todo.Description, todo.Completed, todo.Priority,
		todo.Category, todo.DueDate, subtasks, todo.UpdatedAt,
		todo.ID, todo.UserID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading result: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM todos WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading result: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func marshalSubtasks(subtasks []Subtask) ([]byte, error) {
	if subtasks == nil {
		subtasks = []Subtask{}
	}
	data, err := json.Marshal(subtasks)
	if err != nil {
		return nil, fmt.Errorf("error encoding subtasks: %w", err)
	}
	return data, nil
}

func scanTodo(scan func(dest ...any) error) (*Todo, error) {
	todo := &Todo{}
	var subtasks []byte

	err := scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description,
		&todo.Completed, &todo.Priority, &todo.Category, &todo.DueDate,
		&subtasks, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(subtasks, &todo.Subtasks); err != nil {
		return nil, fmt.Errorf("error decoding subtasks: %w", err)
	}

	return todo, nil
}
