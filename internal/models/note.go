package models

import "time"

type Todo struct {
	ID        string    `json:"todoId"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// TodoPatch holds the fields a todo update may change. Nil means untouched.
type TodoPatch struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Body != nil {
		t.Body = *p.Body
	}
}

type Note struct {
	ID        string    `json:"noteId"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	Folders   []string  `json:"folders"`
}

type NotePatch struct {
	Title   *string  `json:"title"`
	Body    *string  `json:"body"`
	Folders []string `json:"folders"`
}

func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Body != nil {
		n.Body = *p.Body
	}
	if p.Folders != nil {
		n.Folders = append([]string(nil), p.Folders...)
	}
}
