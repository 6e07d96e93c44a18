// Package app wires the engine from configuration for the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/receipts/internal/config"
	"github.com/MrJamesThe3rd/receipts/internal/database"
	"github.com/MrJamesThe3rd/receipts/internal/engine"
	"github.com/MrJamesThe3rd/receipts/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/receipts/internal/ledger/store"
	"github.com/MrJamesThe3rd/receipts/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/receipts/internal/matching/store"
	"github.com/MrJamesThe3rd/receipts/internal/queue"
	queueStore "github.com/MrJamesThe3rd/receipts/internal/queue/store"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
	"github.com/MrJamesThe3rd/receipts/internal/source/digital"
	"github.com/MrJamesThe3rd/receipts/internal/source/scan"
)

// digitalSource is what the engine needs from the digital feed: listing
// receipts and recording confirmed matches.
type digitalSource interface {
	receipt.DigitalFeed
	engine.Linker
}

// Build connects every collaborator and returns a started engine plus a
// cleanup func releasing the databases.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*engine.Engine, func(), error) {
	matchCfg, err := cfg.ToMatching()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to ledger: %w", err)
	}

	qStore, closeQueue, err := openQueue(ctx, cfg.Queue.Path)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := closeQueue(); err != nil {
			logger.Warn("closing queue store failed", "error", err)
		}

		if err := db.Close(); err != nil {
			logger.Warn("closing ledger database failed", "error", err)
		}
	}

	var feed digitalSource
	if cfg.Digital.URL != "" {
		feed = digital.NewClient(cfg.Digital.URL, cfg.Digital.UserID, cfg.Digital.SigningKey, cfg.Digital.Timeout)
	} else {
		feed = digital.NewFileFeed(cfg.Digital.CSVPath)
	}

	scanner := scan.NewClient(cfg.Scan.URL, cfg.Scan.Token, cfg.Scan.Timeout)

	e := engine.New(engine.Deps{
		Receipts:  receipt.NewService(feed, scanner, logger),
		Ledger:    ledger.NewService(ledgerStore.New(db)),
		Matching:  matching.NewService(matchingStore.New(db), matchCfg, logger),
		Queue:     queue.NewService(qStore, scanner, logger),
		Submitter: scanner,
		Linkers: map[receipt.Source]engine.Linker{
			receipt.SourceDigital: feed,
			receipt.SourceScanned: scanner,
		},
		Logger: logger,
	})

	if err := e.Start(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("starting engine: %w", err)
	}

	return e, cleanup, nil
}

func openQueue(ctx context.Context, path string) (queue.Store, func() error, error) {
	if path == "" {
		return queue.NewMemoryStore(), func() error { return nil }, nil
	}

	s, err := queueStore.Open(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening queue store: %w", err)
	}

	return s, s.Close, nil
}

