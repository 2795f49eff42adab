package todos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avoronov/todovault/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func todoColumns() []string {
	return []string{"id", "user_id", "title", "description", "completed", "priority", "category", "due_date", "subtasks", "created_at", "updated_at"}
}

func TestGetByID_ScopedByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	subtasks, _ := json.Marshal([]Subtask{{ID: "st-1", Title: "milk"}})
	rows := sqlmock.NewRows(todoColumns()).
		AddRow("t-1", "u-1", "Buy milk", "", false, "medium", "personal", nil, subtasks, time.Now(), time.Now())

	mock.ExpectQuery(`(?s)SELECT.*FROM\s+todos\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).
		WithArgs("t-1", "u-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u-1", "t-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Title != "Buy milk" || len(got.Subtasks) != 1 || got.Subtasks[0].ID != "st-1" {
		t.Fatalf("unexpected todo: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT.*FROM\s+todos`).
		WithArgs("t-1", "u-2").
		WillReturnRows(sqlmock.NewRows(todoColumns()))

	_, err := repo.GetByID(context.Background(), "u-2", "t-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestSave_WholeRowIncludingSubtasks(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	todo := &Todo{
		ID: "t-1", UserID: "u-1", Title: "Buy milk", Priority: PriorityMedium,
		Category: CategoryPersonal, UpdatedAt: time.Now(),
		Subtasks: []Subtask{{ID: "st-1", Title: "2%", Completed: true}},
	}
	subtasks, _ := json.Marshal(todo.Subtasks)

	mock.ExpectExec(`(?s)UPDATE\s+todos\s+SET.*WHERE\s+id\s*=\s*\$9\s+AND\s+user_id\s*=\s*\$10`).
		WithArgs(todo.Title, todo.Description, todo.Completed, todo.Priority,
			todo.Category, nil, subtasks, todo.UpdatedAt, todo.ID, todo.UserID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), todo); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSave_ZeroRowsIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE\s+todos\s+SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), &Todo{ID: "t-gone", UserID: "u-1"})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestDelete_ZeroRowsIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)DELETE\s+FROM\s+todos\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).
		WithArgs("t-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u-2", "t-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestListByUser_OrderedNewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	empty, _ := json.Marshal([]Subtask{})
	now := time.Now()
	rows := sqlmock.NewRows(todoColumns()).
		AddRow("t-2", "u-1", "second", "", false, "medium", "personal", nil, empty, now, now).
		AddRow("t-1", "u-1", "first", "", false, "medium", "personal", nil, empty, now.Add(-time.Hour), now.Add(-time.Hour))

	mock.ExpectQuery(`(?s)SELECT.*FROM\s+todos\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("u-1").
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "t-2" {
		t.Fatalf("unexpected list: %+v", list)
	}
}
