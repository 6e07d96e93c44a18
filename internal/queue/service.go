package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

//go:generate mockgen -source=service.go -destination=store_mock.go -package=queue
type Store interface {
	Add(ctx context.Context, item *Item) error
	// List returns items oldest first.
	List(ctx context.Context) ([]*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	// ResetSubmitting moves items left in Submitting back to Queued.
	ResetSubmitting(ctx context.Context) (int, error)
}

type Submitter interface {
	Submit(ctx context.Context, file receipt.Upload) (*receipt.ScannedReceipt, error)
}

// Service buffers scan uploads made while offline and replays them in order.
type Service struct {
	store     Store
	submitter Submitter
	logger    *slog.Logger
	now       func() time.Time

	draining atomic.Bool
}

func NewService(store Store, submitter Submitter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:     store,
		submitter: submitter,
		logger:    logger,
		now:       time.Now,
	}
}

// Enqueue stores a file for later submission.
func (s *Service) Enqueue(ctx context.Context, file receipt.Upload) (*Item, error) {
	if err := file.Validate(); err != nil {
		return nil, err
	}

	item := &Item{
		ID:         uuid.New(),
		File:       file,
		EnqueuedAt: s.now().UTC(),
		State:      StateQueued,
	}

	if err := s.store.Add(ctx, item); err != nil {
		return nil, fmt.Errorf("enqueueing %s: %w", file.Name, err)
	}

	s.logger.Info("upload queued", "item", item.ID, "file", file.Name)

	return item, nil
}

func (s *Service) PendingCount(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting queue: %w", err)
	}

	return n, nil
}

func (s *Service) Items(ctx context.Context) ([]*Item, error) {
	return s.store.List(ctx)
}

// ResetStale requeues items a previous process left mid-submission.
func (s *Service) ResetStale(ctx context.Context) (int, error) {
	n, err := s.store.ResetSubmitting(ctx)
	if err != nil {
		return 0, fmt.Errorf("resetting stale items: %w", err)
	}

	if n > 0 {
		s.logger.Info("requeued stale uploads", "count", n)
	}

	return n, nil
}

// Drain submits every queued item once, oldest first. Failures stay queued
// with the attempt recorded; there is no retry cap. A drain requested while
// one is running returns immediately with Skipped set. Items enqueued during
// a drain wait for the next one.
func (s *Service) Drain(ctx context.Context) (DrainResult, error) {
	if !s.draining.CompareAndSwap(false, true) {
		return DrainResult{Skipped: true}, nil
	}
	defer s.draining.Store(false)

	items, err := s.store.List(ctx)
	if err != nil {
		return DrainResult{}, fmt.Errorf("listing queue: %w", err)
	}

	var res DrainResult

	for i, item := range items {
		if ctx.Err() != nil {
			res.Remaining += len(items) - i
			break
		}

		ok, err := s.submit(ctx, item, &res)
		if err != nil {
			return res, err
		}

		if !ok {
			res.Failed++
			res.Remaining++
		}
	}

	if len(items) > 0 {
		s.logger.Info("queue drained",
			"submitted", len(res.Submitted), "failed", res.Failed, "remaining", res.Remaining)
	}

	return res, nil
}

func (s *Service) submit(ctx context.Context, item *Item, res *DrainResult) (bool, error) {
	item.State = StateSubmitting
	if err := s.store.Update(ctx, item); err != nil {
		return false, fmt.Errorf("marking %s submitting: %w", item.ID, err)
	}

	item.Attempts++

	scanned, err := s.submitter.Submit(ctx, item.File)
	if err != nil {
		msg := err.Error()
		item.LastError = &msg
		item.State = StateQueued

		s.logger.Warn("resubmitting upload failed",
			"item", item.ID, "file", item.File.Name, "attempts", item.Attempts, "error", err)

		if err := s.store.Update(ctx, item); err != nil {
			return false, fmt.Errorf("recording failure for %s: %w", item.ID, err)
		}

		return false, nil
	}

	if err := s.store.Delete(ctx, item.ID); err != nil {
		return false, fmt.Errorf("removing %s: %w", item.ID, err)
	}

	if scanned != nil {
		res.Submitted = append(res.Submitted, receipt.FromScanned(*scanned))
	}

	return true, nil
}
