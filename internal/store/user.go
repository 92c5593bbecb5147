package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/madrasa-panel/madrasa/internal/model"
)

const userColumns = `id, username, display_name, password_hash, role, active, created_at`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertUser(ex execer, u model.User) (int64, error) {
	res, err := ex.Exec(
		`INSERT INTO users (username, display_name, password_hash, role, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.DisplayName, u.PasswordHash, u.Role, u.Active, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("username %q: %w", u.Username, ErrConflict)
		}
		return 0, err
	}
	return res.LastInsertId()
}

func scanUser(sc rowScanner) (*model.User, error) {
	var u model.User
	err := sc.Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new login. Duplicate usernames yield ErrConflict.
func (s *Store) CreateUser(u model.User) (int64, error) {
	id, err := insertUser(s.db, u)
	if err != nil {
		slog.Error("failed to create user", "username", u.Username, "error", err)
		return 0, err
	}
	slog.Info("created user", "id", id, "username", u.Username, "role", u.Role)
	return id, nil
}

// GetUserByUsername returns a user by username, or nil.
func (s *Store) GetUserByUsername(username string) (*model.User, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// GetUserByID returns a user by ID, or nil.
func (s *Store) GetUserByID(id int64) (*model.User, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// ListUsers returns all logins.
func (s *Store) ListUsers() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ToggleUserActive flips the active flag on a user. Deactivating a login
// also drops its sessions.
func (s *Store) ToggleUserActive(id int64) error {
	res, err := s.db.Exec(`UPDATE users SET active = NOT active WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM auth_sessions WHERE user_id = ? AND
		(SELECT active FROM users WHERE id = ?) = 0`, id, id)
	return err
}

// UserCount returns the total number of users.
func (s *Store) UserCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
