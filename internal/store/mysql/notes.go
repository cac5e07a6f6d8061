package mysql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/google/uuid"
)

func (s *Store) ListNotes(ctx context.Context, username string) ([]models.Note, error) {
	const op = "mysql.ListNotes"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, username, body, created_at, folders
		FROM notes
		WHERE username = ?
		ORDER BY created_at DESC, id`, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		var (
			n       models.Note
			folders []byte
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Username, &n.Body, &n.CreatedAt, &folders); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		if err := json.Unmarshal(folders, &n.Folders); err != nil {
			return nil, fmt.Errorf("%s: decode folders of %s: %w", op, n.ID, err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return notes, nil
}

func (s *Store) GetNote(ctx context.Context, id string) (*models.Note, error) {
	const op = "mysql.GetNote"

	var (
		n       models.Note
		folders []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, username, body, created_at, folders
		FROM notes
		WHERE id = ?`, id,
	).Scan(&n.ID, &n.Title, &n.Username, &n.Body, &n.CreatedAt, &folders)
	if err != nil {
		return nil, translate(op, err)
	}
	if err := json.Unmarshal(folders, &n.Folders); err != nil {
		return nil, fmt.Errorf("%s: decode folders: %w", op, err)
	}
	return &n, nil
}

func (s *Store) CreateNote(ctx context.Context, note *models.Note) error {
	const op = "mysql.CreateNote"

	folders, err := json.Marshal(note.Folders)
	if err != nil {
		return fmt.Errorf("%s: encode folders: %w", op, err)
	}
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notes (id, username, title, body, folders, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		note.ID, note.Username, note.Title, note.Body, string(folders), note.CreatedAt)
	if err != nil {
		return translate(op, err)
	}
	return nil
}

func (s *Store) UpdateNote(ctx context.Context, id string, patch models.NotePatch) error {
	const op = "mysql.UpdateNote"

	var set setClause
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Body != nil {
		set.add("body", *patch.Body)
	}
	if patch.Folders != nil {
		folders, err := json.Marshal(patch.Folders)
		if err != nil {
			return fmt.Errorf("%s: encode folders: %w", op, err)
		}
		set.add("folders", string(folders))
	}
	if set.empty() {
		return s.exists(ctx, op, "notes", "id", id)
	}

	res, err := s.db.ExecContext(ctx, "UPDATE notes SET "+set.String()+" WHERE id = ?", append(set.args, id)...)
	if err != nil {
		return translate(op, err)
	}
	return expectRow(op, res)
}

func (s *Store) DeleteNote(ctx context.Context, id string) error {
	const op = "mysql.DeleteNote"

	res, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return translate(op, err)
	}
	return expectRow(op, res)
}
