package store

import (
	"context"
	"database/sql"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListAliases returns pattern -> merchant. Later rows win on duplicate patterns.
func (s *Store) ListAliases(ctx context.Context) (map[string]string, error) {
	query := `
		SELECT raw_pattern, merchant
		FROM merchant_aliases
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing aliases: %w", err)
	}
	defer rows.Close()

	aliases := make(map[string]string)

	for rows.Next() {
		var pattern, merchant string
		if err := rows.Scan(&pattern, &merchant); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}

		aliases[pattern] = merchant
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating aliases: %w", err)
	}

	return aliases, nil
}

func (s *Store) CreateAlias(ctx context.Context, rawPattern, merchant string) error {
	query := `
		INSERT INTO merchant_aliases (raw_pattern, merchant, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (raw_pattern) DO UPDATE SET merchant = EXCLUDED.merchant, created_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query, rawPattern, merchant)
	if err != nil {
		return fmt.Errorf("creating alias: %w", err)
	}

	return nil
}
