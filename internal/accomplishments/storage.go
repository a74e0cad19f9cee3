package accomplishments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mppise/eaappreciate/pkg/models"
)

// ErrNotFound is returned when no accomplishment exists for the given id.
var ErrNotFound = errors.New("accomplishments: not found")

// PersistenceError wraps a database failure. Unlike AI failures these are
// surfaced to the caller as retryable errors.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("accomplishments: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Storage provides methods to store and retrieve accomplishment records.
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new storage instance
func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Migrate creates the accomplishments table if it does not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	const q = `
	CREATE TABLE IF NOT EXISTS accomplishments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_name TEXT NOT NULL,
		original_statement TEXT NOT NULL,
		impact_type TEXT NOT NULL,
		email_appreciation TEXT NOT NULL DEFAULT '',
		additional_details TEXT NOT NULL DEFAULT '',
		ai_generated_statement TEXT NOT NULL,
		shared_post TEXT NOT NULL DEFAULT '',
		congratulations_count INT NOT NULL DEFAULT 0,
		votes_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return &PersistenceError{Op: "migrate", Err: err}
	}
	return nil
}

// Create inserts a new accomplishment record with zeroed counters.
func (s *Storage) Create(ctx context.Context, acc *models.Accomplishment) error {
	const q = `
	INSERT INTO accomplishments (
		id, user_id, user_name, original_statement, impact_type,
		email_appreciation, additional_details, ai_generated_statement,
		congratulations_count, votes_count, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9)`

	log.Debug().
		Str("id", acc.ID).
		Str("user_id", acc.UserID).
		Str("impact_type", string(acc.ImpactType)).
		Msg("Inserting accomplishment")

	_, err := s.db.ExecContext(ctx, q,
		acc.ID, acc.UserID, acc.UserName, acc.OriginalStatement, acc.ImpactType,
		acc.EmailAppreciation, acc.AdditionalDetails, acc.AIGeneratedStatement,
		acc.CreatedAt)
	if err != nil {
		return &PersistenceError{Op: "create", Err: err}
	}
	return nil
}

const selectColumns = `
	id, user_id, user_name, original_statement, impact_type,
	email_appreciation, additional_details, ai_generated_statement,
	shared_post, congratulations_count, votes_count, created_at`

// Get returns a single accomplishment by id.
func (s *Storage) Get(ctx context.Context, id string) (*models.Accomplishment, error) {
	q := `SELECT` + selectColumns + ` FROM accomplishments WHERE id = $1`

	var acc models.Accomplishment
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&acc.ID, &acc.UserID, &acc.UserName, &acc.OriginalStatement, &acc.ImpactType,
		&acc.EmailAppreciation, &acc.AdditionalDetails, &acc.AIGeneratedStatement,
		&acc.SharedPost, &acc.CongratulationsCount, &acc.VotesCount, &acc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get", Err: err}
	}
	return &acc, nil
}

// List returns accomplishments newest first, optionally filtered by impact type.
func (s *Storage) List(ctx context.Context, impactType models.ImpactType) ([]models.Accomplishment, error) {
	q := `SELECT` + selectColumns + ` FROM accomplishments`
	args := []any{}
	if impactType != "" {
		q += ` WHERE impact_type = $1`
		args = append(args, impactType)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	var out []models.Accomplishment
	for rows.Next() {
		var acc models.Accomplishment
		if err := rows.Scan(
			&acc.ID, &acc.UserID, &acc.UserName, &acc.OriginalStatement, &acc.ImpactType,
			&acc.EmailAppreciation, &acc.AdditionalDetails, &acc.AIGeneratedStatement,
			&acc.SharedPost, &acc.CongratulationsCount, &acc.VotesCount, &acc.CreatedAt); err != nil {
			return nil, &PersistenceError{Op: "list", Err: err}
		}
		out = append(out, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return out, nil
}

// IncrementCongratulations bumps the congratulations counter by one.
//
// This is a read-then-write update with no compare-and-swap guard: two
// concurrent congratulations on the same record can lose one increment.
// That matches the source system's behavior and is acceptable for social
// counters; switch to `SET ... = ... + 1` if the guarantee ever needs
// hardening.
func (s *Storage) IncrementCongratulations(ctx context.Context, id string) (int, error) {
	return s.incrementCounter(ctx, id, "congratulations_count")
}

// IncrementVotes bumps the votes counter by one. Same lost-update caveat as
// IncrementCongratulations.
func (s *Storage) IncrementVotes(ctx context.Context, id string) (int, error) {
	return s.incrementCounter(ctx, id, "votes_count")
}

func (s *Storage) incrementCounter(ctx context.Context, id, column string) (int, error) {
	var current int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM accomplishments WHERE id = $1`, column), id).
		Scan(&current)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, &PersistenceError{Op: "increment " + column, Err: err}
	}

	next := current + 1
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE accomplishments SET %s = $1 WHERE id = $2`, column),
		next, id)
	if err != nil {
		return 0, &PersistenceError{Op: "increment " + column, Err: err}
	}
	return next, nil
}

// SetSharedPost stores the generated shareable post for a record.
func (s *Storage) SetSharedPost(ctx context.Context, id, post string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accomplishments SET shared_post = $1 WHERE id = $2`, post, id)
	if err != nil {
		return &PersistenceError{Op: "set shared post", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
