package client

import (
	"context"
	"net/http"

	"github.com/ahsanfayaz52/noteservice/internal/models"
)

type draft struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (c *Client) Todos(ctx context.Context) ([]models.Todo, error) {
	var todos []models.Todo
	if err := c.do(ctx, http.MethodGet, "/todos", true, nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *Client) Todo(ctx context.Context, id string) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(ctx, http.MethodGet, "/todo/"+escape(id), true, nil, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *Client) CreateTodo(ctx context.Context, title, body string) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(ctx, http.MethodPost, "/todo", true, draft{Title: title, Body: body}, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *Client) UpdateTodo(ctx context.Context, id string, fields map[string]any) error {
	return c.do(ctx, http.MethodPut, "/todo/"+escape(id), true, fields, nil)
}

func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todo/"+escape(id), true, nil, nil)
}

func (c *Client) Notes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, "/notes", true, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) Note(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodGet, "/note/"+escape(id), true, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) CreateNote(ctx context.Context, title, body string) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPost, "/notes", true, draft{Title: title, Body: body}, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, fields map[string]any) error {
	return c.do(ctx, http.MethodPut, "/note/"+escape(id), true, fields, nil)
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/note/"+escape(id), true, nil, nil)
}

// Star, Unstar, Trash and Restore read the note's current folders and
// write back the transitioned set.

func (c *Client) Star(ctx context.Context, id string) error {
	return c.moveNote(ctx, id, models.Star)
}

func (c *Client) Unstar(ctx context.Context, id string) error {
	return c.moveNote(ctx, id, models.Unstar)
}

func (c *Client) Trash(ctx context.Context, id string) error {
	return c.moveNote(ctx, id, models.Trash)
}

func (c *Client) Restore(ctx context.Context, id string) error {
	return c.moveNote(ctx, id, models.Restore)
}

func (c *Client) moveNote(ctx context.Context, id string, transition func([]string) []string) error {
	note, err := c.Note(ctx, id)
	if err != nil {
		return err
	}
	return c.UpdateNote(ctx, id, map[string]any{"folders": transition(note.Folders)})
}
