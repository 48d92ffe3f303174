package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/chorebot/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Name)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) scanAll(rows *sql.Rows) ([]model.User, error) {
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Create adds a user, or reactivates one who left, refreshing the name.
func (s *UserStore) Create(u model.User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, deleted_at = NULL`,
		u.ID, u.Name,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT id, name FROM users WHERE id = ? AND deleted_at IS NULL`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) List() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT id, name FROM users WHERE deleted_at IS NULL ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return s.scanAll(rows)
}

// ListAssignable returns active users without an assigned chore, least
// recent completion first. Users who never completed anything come first.
func (s *UserStore) ListAssignable() ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT u.id, u.name FROM users u
		 WHERE u.deleted_at IS NULL
		   AND NOT EXISTS (SELECT 1 FROM chores c WHERE c.assigned_to = u.id AND c.deleted_at IS NULL)
		 ORDER BY (SELECT MAX(cc.completed_at) FROM chore_completions cc WHERE cc.user_id = u.id) ASC, u.name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignable users: %w", err)
	}
	return s.scanAll(rows)
}

// Delete soft-deletes a user, unassigning their chores and dropping their skips.
func (s *UserStore) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE users SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := expectRow(result, ErrUserNotFound, id); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE chores SET assigned_to = NULL WHERE assigned_to = ?`, id); err != nil {
		return fmt.Errorf("unassign chores: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM chore_skips WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("delete skips: %w", err)
	}
	return tx.Commit()
}
