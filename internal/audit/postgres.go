package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryLimit = 100

// PostgresStore keeps audit events in the drink_audit_events table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Insert(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO drink_audit_events (
			id, action, drink_id, subject, ip_address, user_agent, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		event.ID,
		event.Action,
		event.DrinkID,
		event.Subject,
		event.IPAddress,
		event.UserAgent,
		event.RequestID,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// Recent returns the latest events for a drink, newest first. A drinkID of
// zero returns events for every drink.
func (s *PostgresStore) Recent(ctx context.Context, drinkID int64, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	query := `
		SELECT id, action, drink_id, subject, ip_address, user_agent, request_id, created_at
		FROM drink_audit_events
		WHERE ($1::BIGINT = 0 OR drink_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, drinkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		event := &Event{}
		if err := rows.Scan(
			&event.ID,
			&event.Action,
			&event.DrinkID,
			&event.Subject,
			&event.IPAddress,
			&event.UserAgent,
			&event.RequestID,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
