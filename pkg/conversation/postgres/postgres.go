// Package postgres provides a PostgreSQL implementation of
// conversation.Store. It uses pgx/v5 for connection pooling; schema
// migrations are embedded and applied at startup when enabled.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/relaykit/relay/pkg/conversation"
)

// Store is a PostgreSQL-backed conversation log.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements conversation.Store at compile time.
var _ conversation.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Append records an entry.
func (s *Store) Append(ctx context.Context, e *conversation.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversation_entries (
			id, recorded_at, from_side, to_side, message,
			ai_generated, model, tokens, cost
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		e.ID, e.Timestamp, e.From, e.To, e.Message,
		e.AIGenerated, e.Model, e.Tokens, e.Cost,
	)
	if err != nil {
		return fmt.Errorf("inserting conversation entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*conversation.Entry, error) {
	query := `
		SELECT id, recorded_at, from_side, to_side, message,
		       ai_generated, model, tokens, cost
		FROM conversation_entries
		ORDER BY recorded_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying conversation entries: %w", err)
	}
	defer rows.Close()

	var entries []*conversation.Entry
	for rows.Next() {
		var e conversation.Entry
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.From, &e.To, &e.Message,
			&e.AIGenerated, &e.Model, &e.Tokens, &e.Cost,
		); err != nil {
			return nil, fmt.Errorf("scanning conversation entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading conversation entries: %w", err)
	}
	return entries, nil
}

// Count returns the total number of recorded entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM conversation_entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting conversation entries: %w", err)
	}
	return count, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
