package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	UpdateEntry(ctx context.Context, id uuid.UUID, patch Patch) error
	AttachReceiptReference(ctx context.Context, id uuid.UUID, receiptRef string) error
}

type ListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	// Unlinked restricts the result to entries without a receipt reference.
	Unlinked bool
}

// Service is the engine's view of the external ledger: it reads candidate
// entries and patches specific fields on confirmed matches. It never creates
// entries.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}

// Candidates lists unlinked entries dated within maxDaysApart calendar days of date.
func (s *Service) Candidates(ctx context.Context, date time.Time, maxDaysApart int) ([]*Entry, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start := day.AddDate(0, 0, -maxDaysApart)
	end := day.AddDate(0, 0, maxDaysApart+1).Add(-time.Nanosecond)

	entries, err := s.repo.ListEntries(ctx, ListFilter{
		StartDate: &start,
		EndDate:   &end,
		Unlinked:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("listing candidate entries: %w", err)
	}

	return entries, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) UpdateEntry(ctx context.Context, id uuid.UUID, patch Patch) error {
	if patch.IsEmpty() {
		return nil
	}

	return s.repo.UpdateEntry(ctx, id, patch)
}

func (s *Service) AttachReceiptReference(ctx context.Context, id uuid.UUID, receiptRef string) error {
	if receiptRef == "" {
		return fmt.Errorf("attaching receipt to %s: empty receipt reference", id)
	}

	return s.repo.AttachReceiptReference(ctx, id, receiptRef)
}
