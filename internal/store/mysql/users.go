package mysql

import (
	"context"
	"database/sql"

	"github.com/ahsanfayaz52/noteservice/internal/models"
)

const userColumns = "username, first_name, last_name, email, phone_number, country, image_url, created_at"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u        models.User
		imageURL sql.NullString
	)
	err := row.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber, &u.Country, &imageURL, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.ImageURL = imageURL.String
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, username string) (*models.User, error) {
	const op = "mysql.GetUser"

	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if err != nil {
		return nil, translate(op, err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "mysql.GetUserByEmail"

	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if err != nil {
		return nil, translate(op, err)
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	const op = "mysql.CreateUser"

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		user.Username, user.FirstName, user.LastName, user.Email, user.PhoneNumber, user.Country,
		sql.NullString{String: user.ImageURL, Valid: user.ImageURL != ""}, user.CreatedAt)
	if err != nil {
		return translate(op, err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, username string, patch models.UserPatch) error {
	const op = "mysql.UpdateUser"

	var set setClause
	if patch.FirstName != nil {
		set.add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set.add("last_name", *patch.LastName)
	}
	if patch.PhoneNumber != nil {
		set.add("phone_number", *patch.PhoneNumber)
	}
	if patch.Country != nil {
		set.add("country", *patch.Country)
	}
	if patch.ImageURL != nil {
		set.add("image_url", *patch.ImageURL)
	}
	if set.empty() {
		return s.exists(ctx, op, "users", "username", username)
	}

	res, err := s.db.ExecContext(ctx, "UPDATE users SET "+set.String()+" WHERE username = ?", append(set.args, username)...)
	if err != nil {
		return translate(op, err)
	}
	return expectRow(op, res)
}
