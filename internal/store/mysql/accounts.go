package mysql

import (
	"context"
	"fmt"

	"github.com/ahsanfayaz52/noteservice/internal/models"
)

func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	const op = "mysql.CreateAccount"

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (email, username, password_hash, created_at) VALUES (?, ?, ?, ?)",
		account.Email, account.Username, account.PasswordHash, account.CreatedAt)
	if err != nil {
		return translate(op, err)
	}
	return nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "mysql.GetAccountByEmail"

	var a models.Account
	err := s.db.QueryRowContext(ctx,
		"SELECT email, username, password_hash, created_at FROM accounts WHERE email = ?", email,
	).Scan(&a.Email, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, translate(op, err)
	}
	return &a, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	const op = "mysql.UpdatePasswordHash"

	res, err := s.db.ExecContext(ctx, "UPDATE accounts SET password_hash = ? WHERE email = ?", hash, email)
	if err != nil {
		return translate(op, err)
	}
	return expectRow(op, res)
}

func (s *Store) DeleteAccount(ctx context.Context, email string) error {
	const op = "mysql.DeleteAccount"

	if _, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE email = ?", email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
