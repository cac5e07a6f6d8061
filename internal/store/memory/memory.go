// Package memory is an in-process store used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/store"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	todos    map[string]models.Todo
	notes    map[string]models.Note
	users    map[string]models.User
	accounts map[string]models.Account
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		todos:    map[string]models.Todo{},
		notes:    map[string]models.Note{},
		users:    map[string]models.User{},
		accounts: map[string]models.Account{},
	}
}

func (s *Store) ListTodos(_ context.Context, username string) ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Todo, 0)
	for _, t := range s.todos {
		if t.Username == username {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.Todo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) GetTodo(_ context.Context, id string) (*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.todos[id]
	if !ok {
		return nil, fmt.Errorf("memory.GetTodo: %w", store.ErrNotFound)
	}
	return &t, nil
}

func (s *Store) CreateTodo(_ context.Context, todo *models.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	if _, ok := s.todos[todo.ID]; ok {
		return fmt.Errorf("memory.CreateTodo: %w", store.ErrDuplicate)
	}
	s.todos[todo.ID] = *todo
	return nil
}

func (s *Store) UpdateTodo(_ context.Context, id string, patch models.TodoPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return fmt.Errorf("memory.UpdateTodo: %w", store.ErrNotFound)
	}
	patch.Apply(&t)
	s.todos[id] = t
	return nil
}

func (s *Store) DeleteTodo(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.todos[id]; !ok {
		return fmt.Errorf("memory.DeleteTodo: %w", store.ErrNotFound)
	}
	delete(s.todos, id)
	return nil
}

func (s *Store) ListNotes(_ context.Context, username string) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Note, 0)
	for _, n := range s.notes {
		if n.Username == username {
			out = append(out, cloneNote(n))
		}
	}
	slices.SortFunc(out, func(a, b models.Note) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) GetNote(_ context.Context, id string) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, fmt.Errorf("memory.GetNote: %w", store.ErrNotFound)
	}
	n = cloneNote(n)
	return &n, nil
}

func (s *Store) CreateNote(_ context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if _, ok := s.notes[note.ID]; ok {
		return fmt.Errorf("memory.CreateNote: %w", store.ErrDuplicate)
	}
	s.notes[note.ID] = cloneNote(*note)
	return nil
}

func (s *Store) UpdateNote(_ context.Context, id string, patch models.NotePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return fmt.Errorf("memory.UpdateNote: %w", store.ErrNotFound)
	}
	patch.Apply(&n)
	s.notes[id] = n
	return nil
}

func (s *Store) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return fmt.Errorf("memory.DeleteNote: %w", store.ErrNotFound)
	}
	delete(s.notes, id)
	return nil
}

func (s *Store) GetUser(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("memory.GetUser: %w", store.ErrNotFound)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("memory.GetUserByEmail: %w", store.ErrNotFound)
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return fmt.Errorf("memory.CreateUser: %w", store.ErrDuplicate)
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("memory.CreateUser: %w", store.ErrDuplicate)
		}
	}
	s.users[user.Username] = *user
	return nil
}

func (s *Store) UpdateUser(_ context.Context, username string, patch models.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return fmt.Errorf("memory.UpdateUser: %w", store.ErrNotFound)
	}
	patch.Apply(&u)
	s.users[username] = u
	return nil
}

func (s *Store) CreateAccount(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.Email]; ok {
		return fmt.Errorf("memory.CreateAccount: %w", store.ErrDuplicate)
	}
	s.accounts[account.Email] = *account
	return nil
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[email]
	if !ok {
		return nil, fmt.Errorf("memory.GetAccountByEmail: %w", store.ErrNotFound)
	}
	return &a, nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[email]
	if !ok {
		return fmt.Errorf("memory.UpdatePasswordHash: %w", store.ErrNotFound)
	}
	a.PasswordHash = hash
	s.accounts[email] = a
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.accounts, email)
	return nil
}

func cloneNote(n models.Note) models.Note {
	n.Folders = slices.Clone(n.Folders)
	return n
}
