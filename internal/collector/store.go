// internal/collector/store.go
//
// MySQL persistence for the bundled echo collector.
//
// Context
//   When a DSN is configured, every accepted sign-up is written to the
//   volunteer_signup table through sqlx.  The schema is returned by
//   Migrations so the component registry can apply it at start-up, the way
//   other components ship their own DDL.
//
//------------------------------------------------------------------------------

package collector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/volunteer/internal/form"
)

// Schema is the DDL for the sign-up table.
const Schema = `CREATE TABLE IF NOT EXISTS volunteer_signup (
  id          CHAR(36)     NOT NULL PRIMARY KEY,
  name        VARCHAR(255) NOT NULL,
  email       VARCHAR(255) NOT NULL,
  motivation  TEXT         NOT NULL,
  positions   VARCHAR(64)  NOT NULL,
  terms       BOOLEAN      NOT NULL,
  created_at  DATETIME(6)  NOT NULL
)`

// Signup is one accepted submission as stored and echoed.
type Signup struct {
	ID         string    `db:"id"         json:"id"`
	Name       string    `db:"name"       json:"name"`
	Email      string    `db:"email"      json:"email"`
	Motivation string    `db:"motivation" json:"motivation"`
	Positions  string    `db:"positions"  json:"positions"`
	Terms      bool      `db:"terms"      json:"terms"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// ErrNotFound is returned by Get for an unknown ID.
var ErrNotFound = errors.New("collector: signup not found")

// Store writes and reads sign-ups.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// Insert persists s.
func (st *Store) Insert(ctx context.Context, s Signup) error {
	_, err := st.db.NamedExecContext(ctx, `
		INSERT INTO volunteer_signup (id, name, email, motivation, positions, terms, created_at)
		VALUES (:id, :name, :email, :motivation, :positions, :terms, :created_at)`, s)
	if err != nil {
		return fmt.Errorf("insert signup %s: %w", s.ID, err)
	}
	return nil
}

// Get loads one sign-up by ID.
func (st *Store) Get(ctx context.Context, id string) (Signup, error) {
	var s Signup
	err := st.db.GetContext(ctx, &s,
		`SELECT id, name, email, motivation, positions, terms, created_at FROM volunteer_signup WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Signup{}, ErrNotFound
	}
	if err != nil {
		return Signup{}, fmt.Errorf("get signup %s: %w", id, err)
	}
	return s, nil
}

// FromRecord copies form values into a Signup.  ID and CreatedAt are left
// for the caller.
func FromRecord(rec form.Record) Signup {
	return Signup{
		Name:       rec.String("name"),
		Email:      rec.String("email"),
		Motivation: rec.String("motivation"),
		Positions:  rec.String("positions"),
		Terms:      rec.Bool("terms"),
	}
}
