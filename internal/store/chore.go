package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/chorebot/internal/model"
	"github.com/dukerupert/chorebot/internal/recurrence"
)

var (
	ErrChoreNotFound = errors.New("chore not found")
	ErrChoreExists   = errors.New("chore already exists")
)

type ChoreStore struct {
	db  *sql.DB
	loc *time.Location
}

// NewChoreStore returns a ChoreStore that reports completion times in loc.
func NewChoreStore(db *sql.DB, loc *time.Location) *ChoreStore {
	if loc == nil {
		loc = time.UTC
	}
	return &ChoreStore{db: db, loc: loc}
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var rule string
	var assignedID, assignedName sql.NullString

	if err := scanner.Scan(&c.Name, &rule, &assignedID, &assignedName); err != nil {
		return nil, err
	}

	r, err := recurrence.Parse(rule)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence of %q: %w", c.Name, err)
	}
	c.Recurrence = r

	if assignedID.Valid {
		c.Assigned = &model.User{ID: assignedID.String, Name: assignedName.String}
	}
	return &c, nil
}

const choreSelect = `SELECT c.name, c.recurrence, u.id, u.name
	FROM chores c LEFT JOIN users u ON u.id = c.assigned_to
	WHERE c.deleted_at IS NULL`

// query runs a chore query and attaches skips to each result.
func (s *ChoreStore) query(where string, args ...any) ([]model.Chore, error) {
	rows, err := s.db.Query(choreSelect+where+` ORDER BY c.name ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(chores) == 0 {
		return chores, nil
	}
	skips, err := s.skips()
	if err != nil {
		return nil, err
	}
	for i := range chores {
		chores[i].SkippedBy = skips[chores[i].Name]
	}
	return chores, nil
}

func (s *ChoreStore) skips() (map[string][]model.User, error) {
	rows, err := s.db.Query(
		`SELECT k.chore_name, u.id, u.name FROM chore_skips k JOIN users u ON u.id = k.user_id ORDER BY k.created_at ASC, u.name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list skips: %w", err)
	}
	defer rows.Close()

	skips := make(map[string][]model.User)
	for rows.Next() {
		var name string
		var u model.User
		if err := rows.Scan(&name, &u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("scan skip: %w", err)
		}
		skips[name] = append(skips[name], u)
	}
	return skips, rows.Err()
}

// Create adds a chore. Re-adding a deleted chore reactivates it with a new
// generation, so earlier completions no longer count.
func (s *ChoreStore) Create(c model.Chore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.Exec(
		`INSERT INTO chores (name, recurrence, assigned_to, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			recurrence = excluded.recurrence,
			assigned_to = excluded.assigned_to,
			generation = chores.generation + 1,
			updated_at = excluded.updated_at,
			deleted_at = NULL
		 WHERE chores.deleted_at IS NOT NULL`,
		c.Name, c.Recurrence.String(), assignee(c.Assigned), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert chore: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrChoreExists, c.Name)
	}

	if err := replaceSkips(tx, c); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *ChoreStore) GetByName(name string) (*model.Chore, error) {
	chores, err := s.query(` AND c.name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	if len(chores) == 0 {
		return nil, nil
	}
	return &chores[0], nil
}

func (s *ChoreStore) List() ([]model.Chore, error) {
	return s.query(``)
}

func (s *ChoreStore) Names() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM chores WHERE deleted_at IS NULL ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list chore names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan chore name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *ChoreStore) ListByAssignee(userID string) ([]model.Chore, error) {
	return s.query(` AND c.assigned_to = ?`, userID)
}

func (s *ChoreStore) ListAssigned() ([]model.Chore, error) {
	return s.query(` AND c.assigned_to IS NOT NULL`)
}

func (s *ChoreStore) ListUnassigned() ([]model.Chore, error) {
	return s.query(` AND c.assigned_to IS NULL`)
}

// Update replaces a chore's recurrence, assignee and skips.
func (s *ChoreStore) Update(c model.Chore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE chores SET recurrence = ?, assigned_to = ?, updated_at = ? WHERE name = ? AND deleted_at IS NULL`,
		c.Recurrence.String(), assignee(c.Assigned), time.Now().UTC(), c.Name,
	)
	if err != nil {
		return fmt.Errorf("update chore: %w", err)
	}
	if err := expectRow(result, ErrChoreNotFound, c.Name); err != nil {
		return err
	}

	if err := replaceSkips(tx, c); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete soft-deletes a chore. Its completion history is kept.
func (s *ChoreStore) Delete(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE chores SET deleted_at = ?, assigned_to = NULL WHERE name = ? AND deleted_at IS NULL`,
		time.Now().UTC(), name,
	)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	if err := expectRow(result, ErrChoreNotFound, name); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM chore_skips WHERE chore_name = ?`, name); err != nil {
		return fmt.Errorf("delete skips: %w", err)
	}
	return tx.Commit()
}

// --- Completion methods ---

// Complete records a completion and leaves the chore unassigned with no skips.
func (s *ChoreStore) Complete(name, userID string, at time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var generation int64
	err = tx.QueryRow(`SELECT generation FROM chores WHERE name = ? AND deleted_at IS NULL`, name).Scan(&generation)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %q", ErrChoreNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("get generation: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO chore_completions (chore_name, generation, user_id, completed_at) VALUES (?, ?, ?, ?)`,
		name, generation, userID, at.UTC(),
	); err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	if _, err := tx.Exec(`UPDATE chores SET assigned_to = NULL, updated_at = ? WHERE name = ?`, at.UTC(), name); err != nil {
		return fmt.Errorf("unassign chore: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM chore_skips WHERE chore_name = ?`, name); err != nil {
		return fmt.Errorf("clear skips: %w", err)
	}
	return tx.Commit()
}

const completionSelect = `SELECT cc.chore_name, u.id, u.name, cc.completed_at
	FROM chore_completions cc
	JOIN chores c ON c.name = cc.chore_name AND c.generation = cc.generation
	JOIN users u ON u.id = cc.user_id
	WHERE cc.chore_name = ?
	ORDER BY cc.completed_at DESC, cc.id DESC`

// ListCompletions returns the completions of the chore's current generation,
// most recent first.
func (s *ChoreStore) ListCompletions(name string) ([]model.ChoreCompletion, error) {
	rows, err := s.db.Query(completionSelect, name)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.ChoreCompletion
	for rows.Next() {
		var cc model.ChoreCompletion
		if err := rows.Scan(&cc.ChoreName, &cc.By.ID, &cc.By.Name, &cc.At); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		cc.At = cc.At.In(s.loc)
		completions = append(completions, cc)
	}
	return completions, rows.Err()
}

// LastCompletion returns when the chore's current generation was last
// completed, or nil if never.
func (s *ChoreStore) LastCompletion(name string) (*time.Time, error) {
	var at time.Time
	err := s.db.QueryRow(
		`SELECT cc.completed_at FROM chore_completions cc
		 JOIN chores c ON c.name = cc.chore_name AND c.generation = cc.generation
		 WHERE cc.chore_name = ? ORDER BY cc.completed_at DESC, cc.id DESC LIMIT 1`,
		name,
	).Scan(&at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last completion: %w", err)
	}
	at = at.In(s.loc)
	return &at, nil
}

func replaceSkips(tx *sql.Tx, c model.Chore) error {
	if _, err := tx.Exec(`DELETE FROM chore_skips WHERE chore_name = ?`, c.Name); err != nil {
		return fmt.Errorf("clear skips: %w", err)
	}
	for _, u := range c.SkippedBy {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO chore_skips (chore_name, user_id) VALUES (?, ?)`,
			c.Name, u.ID,
		); err != nil {
			return fmt.Errorf("insert skip: %w", err)
		}
	}
	return nil
}

func assignee(u *model.User) sql.NullString {
	if u == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: u.ID, Valid: true}
}

func expectRow(result sql.Result, notFound error, key string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", notFound, key)
	}
	return nil
}
