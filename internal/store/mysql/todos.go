package mysql

import (
	"context"
	"fmt"

	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/google/uuid"
)

func (s *Store) ListTodos(ctx context.Context, username string) ([]models.Todo, error) {
	const op = "mysql.ListTodos"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, username, body, created_at
		FROM todos
		WHERE username = ?
		ORDER BY created_at DESC, id`, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Username, &t.Body, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return todos, nil
}

func (s *Store) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	const op = "mysql.GetTodo"

	var t models.Todo
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, username, body, created_at
		FROM todos
		WHERE id = ?`, id,
	).Scan(&t.ID, &t.Title, &t.Username, &t.Body, &t.CreatedAt)
	if err != nil {
		return nil, translate(op, err)
	}
	return &t, nil
}

func (s *Store) CreateTodo(ctx context.Context, todo *models.Todo) error {
	const op = "mysql.CreateTodo"

	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (id, username, title, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		todo.ID, todo.Username, todo.Title, todo.Body, todo.CreatedAt)
	if err != nil {
		return translate(op, err)
	}
	return nil
}

func (s *Store) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) error {
	const op = "mysql.UpdateTodo"

	var set setClause
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Body != nil {
		set.add("body", *patch.Body)
	}
	if set.empty() {
		return s.exists(ctx, op, "todos", "id", id)
	}

	res, err := s.db.ExecContext(ctx, "UPDATE todos SET "+set.String()+" WHERE id = ?", append(set.args, id)...)
	if err != nil {
		return translate(op, err)
	}
	return expectRow(op, res)
}

func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	const op = "mysql.DeleteTodo"

	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return translate(op, err)
	}
	return expectRow(op, res)
}
