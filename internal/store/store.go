// Package store defines the persistence contracts shared by the MySQL and
// in-memory backends.
package store

import (
	"context"
	"errors"

	"github.com/ahsanfayaz52/noteservice/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type TodoStore interface {
	ListTodos(ctx context.Context, username string) ([]models.Todo, error)
	GetTodo(ctx context.Context, id string) (*models.Todo, error)
	CreateTodo(ctx context.Context, todo *models.Todo) error
	UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) error
	DeleteTodo(ctx context.Context, id string) error
}

type NoteStore interface {
	ListNotes(ctx context.Context, username string) ([]models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	CreateNote(ctx context.Context, note *models.Note) error
	UpdateNote(ctx context.Context, id string, patch models.NotePatch) error
	DeleteNote(ctx context.Context, id string) error
}

type UserStore interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, username string, patch models.UserPatch) error
}

type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdatePasswordHash(ctx context.Context, email, hash string) error
	DeleteAccount(ctx context.Context, email string) error
}

// Store bundles every repository a backend provides.
type Store interface {
	TodoStore
	NoteStore
	UserStore
	AccountStore
}
