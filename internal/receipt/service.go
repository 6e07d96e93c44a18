package receipt

import (
	"context"
	"log/slog"
	"sync"
)

//go:generate mockgen -source=service.go -destination=source_mock.go -package=receipt
type DigitalFeed interface {
	ListDigitalReceipts(ctx context.Context) ([]DigitalReceipt, error)
}

type ScanPipeline interface {
	ListScannedReceipts(ctx context.Context) ([]ScannedReceipt, error)
}

// Service keeps the latest snapshot of both sources and the inbox built
// from them. Refreshes are driven from outside; there is no internal timer.
type Service struct {
	digital DigitalFeed
	scanned ScanPipeline
	logger  *slog.Logger

	mu        sync.RWMutex
	snapshots map[Source]Snapshot
	inbox     *Inbox
}

func NewService(digital DigitalFeed, scanned ScanPipeline, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		digital:   digital,
		scanned:   scanned,
		logger:    logger,
		snapshots: make(map[Source]Snapshot, 2),
	}
	s.inbox = Aggregate(Snapshot{}, Snapshot{})

	return s
}

// Inbox returns the current inbox. It is safe to hold on to; later
// refreshes publish a new value instead of changing this one.
func (s *Service) Inbox() *Inbox {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.inbox
}

// Refresh refetches both sources concurrently and returns the resulting inbox.
// A failing source keeps its previous receipts and reports its error.
func (s *Service) Refresh(ctx context.Context) *Inbox {
	var wg sync.WaitGroup

	wg.Go(func() { s.refresh(ctx, SourceDigital) })
	wg.Go(func() { s.refresh(ctx, SourceScanned) })
	wg.Wait()

	return s.Inbox()
}

// RefreshSource refetches a single source.
func (s *Service) RefreshSource(ctx context.Context, src Source) *Inbox {
	s.refresh(ctx, src)
	return s.Inbox()
}

func (s *Service) refresh(ctx context.Context, src Source) {
	s.update(src, func(snap *Snapshot) { snap.Loading = true })

	receipts, err := s.fetch(ctx, src)
	if err != nil {
		s.logger.Warn("refreshing receipts failed", "source", src, "error", err)

		s.update(src, func(snap *Snapshot) {
			snap.Loading = false
			snap.Err = err
		})

		return
	}

	s.logger.Debug("refreshed receipts", "source", src, "count", len(receipts))

	s.update(src, func(snap *Snapshot) {
		snap.Receipts = receipts
		snap.Loading = false
		snap.Err = nil
	})
}

func (s *Service) fetch(ctx context.Context, src Source) ([]UnifiedReceipt, error) {
	switch src {
	case SourceDigital:
		records, err := s.digital.ListDigitalReceipts(ctx)
		if err != nil {
			return nil, err
		}

		out := make([]UnifiedReceipt, 0, len(records))
		for _, d := range records {
			out = append(out, FromDigital(d))
		}

		return out, nil
	default:
		records, err := s.scanned.ListScannedReceipts(ctx)
		if err != nil {
			return nil, err
		}

		out := make([]UnifiedReceipt, 0, len(records))
		for _, sc := range records {
			out = append(out, FromScanned(sc))
		}

		return out, nil
	}
}

func (s *Service) update(src Source, fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshots[src]
	fn(&snap)
	s.snapshots[src] = snap

	s.inbox = Aggregate(s.snapshots[SourceDigital], s.snapshots[SourceScanned])
}
