package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Event is one row of the account audit trail.
type Event struct {
	ID     int64     `json:"id"`
	Event  string    `json:"event"`
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

// AuditStore records account lifecycle events in PostgreSQL.
type AuditStore struct {
	pool *pgxpool.Pool
}

func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// Migrate creates the events table if it doesn't exist.
func (s *AuditStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS account_events (
			id      BIGSERIAL PRIMARY KEY,
			event   VARCHAR(32)  NOT NULL,
			user_id VARCHAR(64)  NOT NULL,
			email   VARCHAR(255) NOT NULL,
			at      TIMESTAMPTZ  DEFAULT NOW()
		)
	`)
	return err
}

func (s *AuditStore) Record(ctx context.Context, event, userID, email string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO account_events (event, user_id, email) VALUES ($1, $2, $3)`,
		event, userID, email,
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Recent returns the newest events, most recent first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, event, user_id, email, at
		 FROM account_events ORDER BY at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Event, &e.UserID, &e.Email, &e.At); err != nil {
			return nil, fmt.Errorf("recent events: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
