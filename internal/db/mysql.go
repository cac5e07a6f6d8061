// db/mysql.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// InitDB opens the MySQL pool, verifies it and creates missing tables.
func InitDB(ctx context.Context, user, password, host, dbName string) (*sql.DB, error) {
	const op = "db.InitDB"

	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host
	cfg.DBName = dbName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// RowsAffected counts matched rows, not changed ones.
	cfg.ClientFoundRows = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", op, err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Ping to verify connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return db, nil
}

var schema = []struct {
	table string
	ddl   string
}{
	{"users", `CREATE TABLE IF NOT EXISTS users (
		username VARCHAR(64) PRIMARY KEY,
		first_name VARCHAR(255) NOT NULL,
		last_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		phone_number VARCHAR(64) NOT NULL,
		country VARCHAR(128) NOT NULL,
		image_url TEXT,
		created_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB;`},
	{"accounts", `CREATE TABLE IF NOT EXISTS accounts (
		email VARCHAR(255) PRIMARY KEY,
		username VARCHAR(64) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB;`},
	{"todos", `CREATE TABLE IF NOT EXISTS todos (
		id CHAR(36) PRIMARY KEY,
		username VARCHAR(64) NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_todos_owner_created (username, created_at)
	) ENGINE=InnoDB;`},
	{"notes", `CREATE TABLE IF NOT EXISTS notes (
		id CHAR(36) PRIMARY KEY,
		username VARCHAR(64) NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		folders JSON NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_notes_owner_created (username, created_at)
	) ENGINE=InnoDB;`},
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, s := range schema {
		if _, err := db.ExecContext(ctx, s.ddl); err != nil {
			return fmt.Errorf("creating %s table: %w", s.table, err)
		}
	}
	return nil
}
