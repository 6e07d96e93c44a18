package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receipts/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry reads a ledger row from the scanner.
// Expected column order: id, amount, type, description, raw_description, date, reconciled, receipt_ref, created_at, updated_at
func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var typeStr string

	var rawDesc, receiptRef sql.NullString

	if err := s.Scan(
		&e.ID, &e.Amount, &typeStr, &e.Description, &rawDesc, &e.Date,
		&e.Reconciled, &receiptRef,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Type = ledger.Type(typeStr)
	e.RawDescription = rawDesc.String

	if receiptRef.Valid {
		e.ReceiptRef = &receiptRef.String
	}

	return &e, nil
}

const selectEntryColumns = `
	t.id, t.amount, t.type, t.description, t.raw_description, t.date,
	t.reconciled, t.receipt_ref, t.created_at, t.updated_at
`

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM transactions t
		WHERE t.id = $1 AND t.deleted_at IS NULL`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting entry: %w", err)
	}

	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM transactions t
		WHERE t.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	if filter.Unlinked {
		query += " AND t.receipt_ref IS NULL"
	}

	query += " ORDER BY t.date ASC, t.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	return entries, nil
}

// UpdateEntry writes only the fields set on the patch.
func (s *Store) UpdateEntry(ctx context.Context, id uuid.UUID, patch ledger.Patch) error {
	var (
		sets []string
		args []any
	)

	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}

	if patch.Amount != nil {
		args = append(args, *patch.Amount)
		sets = append(sets, fmt.Sprintf("amount = $%d", len(args)))
	}

	if patch.Date != nil {
		args = append(args, *patch.Date)
		sets = append(sets, fmt.Sprintf("date = $%d", len(args)))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE transactions
		SET %s, updated_at = NOW()
		WHERE id = $%d AND deleted_at IS NULL
	`, strings.Join(sets, ", "), len(args))

	return s.execOne(ctx, "updating entry", query, args...)
}

func (s *Store) AttachReceiptReference(ctx context.Context, id uuid.UUID, receiptRef string) error {
	query := `
		UPDATE transactions
		SET receipt_ref = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	return s.execOne(ctx, "attaching receipt", query, receiptRef, id)
}

// execOne runs a single-row update and reports ledger.ErrNotFound when no row matched.
func (s *Store) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, ledger.ErrNotFound)
	}

	return nil
}
