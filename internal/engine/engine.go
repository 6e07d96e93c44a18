package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receipts/internal/confirm"
	"github.com/MrJamesThe3rd/receipts/internal/ledger"
	"github.com/MrJamesThe3rd/receipts/internal/matching"
	"github.com/MrJamesThe3rd/receipts/internal/queue"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

//go:generate mockgen -source=engine.go -destination=linker_mock.go -package=engine
type Linker interface {
	MarkMatched(ctx context.Context, id string, entryID uuid.UUID) error
}

type Deps struct {
	Receipts  *receipt.Service
	Ledger    *ledger.Service
	Matching  *matching.Service
	Queue     *queue.Service
	Submitter queue.Submitter
	// Linkers record confirmed matches back on each receipt source.
	Linkers map[receipt.Source]Linker
	Logger  *slog.Logger
}

// Engine is the single entry point for the presentation layers. It ties the
// receipt inbox, matching, the confirmation workflow and the offline queue
// together for one user session.
type Engine struct {
	receipts  *receipt.Service
	ledger    *ledger.Service
	matching  *matching.Service
	queue     *queue.Service
	submitter queue.Submitter
	linkers   map[receipt.Source]Linker
	logger    *slog.Logger

	confirm *confirm.Machine
	online  atomic.Bool

	mu      sync.RWMutex
	matcher *matching.Matcher
}

func New(d Deps) *Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	e := &Engine{
		receipts:  d.Receipts,
		ledger:    d.Ledger,
		matching:  d.Matching,
		queue:     d.Queue,
		submitter: d.Submitter,
		linkers:   d.Linkers,
		logger:    d.Logger,
		matcher:   matching.NewMatcher(d.Matching.Config(), nil),
	}

	e.confirm = confirm.NewMachine(d.Ledger, sourceLinker{e}, differ{e}, confirm.NewInflight(), d.Logger)
	e.online.Store(true)

	return e
}

// Start prepares the engine: learned aliases are loaded, uploads stuck from a
// previous run are requeued and both receipt sources are fetched.
func (e *Engine) Start(ctx context.Context) error {
	e.reloadMatcher(ctx)

	if _, err := e.queue.ResetStale(ctx); err != nil {
		return err
	}

	e.Refresh(ctx)

	return nil
}

func (e *Engine) currentMatcher() *matching.Matcher {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.matcher
}

func (e *Engine) reloadMatcher(ctx context.Context) {
	m := e.matching.Matcher(ctx)

	e.mu.Lock()
	e.matcher = m
	e.mu.Unlock()
}

// Inbox returns the current merged view of both sources.
func (e *Engine) Inbox() *receipt.Inbox {
	return e.receipts.Inbox()
}

func (e *Engine) AllReceipts() []receipt.UnifiedReceipt {
	return e.receipts.Inbox().All()
}

func (e *Engine) PendingReceipts() []receipt.UnifiedReceipt {
	return e.receipts.Inbox().Pending()
}

func (e *Engine) ReceiptsBySource(src receipt.Source) []receipt.UnifiedReceipt {
	return e.receipts.Inbox().BySource(src)
}

func (e *Engine) Receipt(key receipt.Key) (receipt.UnifiedReceipt, error) {
	r, ok := e.receipts.Inbox().Find(key)
	if !ok {
		return receipt.UnifiedReceipt{}, fmt.Errorf("%w: %s", receipt.ErrNotFound, key)
	}

	return r, nil
}

// Refresh refetches both sources. Any open confirmation is discarded since it
// may refer to a receipt that changed.
func (e *Engine) Refresh(ctx context.Context) *receipt.Inbox {
	in := e.receipts.Refresh(ctx)
	e.discardSelection()

	return in
}

func (e *Engine) refreshSource(ctx context.Context, src receipt.Source) {
	e.receipts.RefreshSource(ctx, src)
	e.discardSelection()
}

func (e *Engine) discardSelection() {
	if err := e.confirm.Close(); err != nil && !errors.Is(err, confirm.ErrCommitInProgress) {
		e.logger.Warn("discarding selection failed", "error", err)
	}
}

// SuggestionsForReceipt ranks unlinked ledger entries near the receipt date.
func (e *Engine) SuggestionsForReceipt(ctx context.Context, r receipt.UnifiedReceipt) ([]matching.Suggestion, error) {
	entries, err := e.candidates(ctx, r)
	if err != nil {
		return nil, err
	}

	m := e.currentMatcher()
	cfg := m.Config()

	return m.FindMatches(r, entries, cfg.MinConfidence, cfg.MaxResults), nil
}

// BestMatch returns the top suggestion when it is at least medium confidence.
func (e *Engine) BestMatch(ctx context.Context, r receipt.UnifiedReceipt) (matching.Suggestion, bool, error) {
	entries, err := e.candidates(ctx, r)
	if err != nil {
		return matching.Suggestion{}, false, err
	}

	s, ok := e.currentMatcher().BestMatch(r, entries)

	return s, ok, nil
}

func (e *Engine) candidates(ctx context.Context, r receipt.UnifiedReceipt) ([]*ledger.Entry, error) {
	if r.Date == nil {
		return e.ledger.ListEntries(ctx, ledger.ListFilter{Unlinked: true})
	}

	return e.ledger.Candidates(ctx, *r.Date, e.currentMatcher().Config().MaxDaysApart)
}

func (e *Engine) OpenConfirmation(r receipt.UnifiedReceipt, s matching.Suggestion) (confirm.SelectedMatch, error) {
	return e.confirm.Open(r, s)
}

// OpenConfirmationFor resolves a receipt key and ledger entry id, scores the
// pair and opens it for confirmation.
func (e *Engine) OpenConfirmationFor(ctx context.Context, key receipt.Key, entryID uuid.UUID) (confirm.SelectedMatch, error) {
	r, err := e.Receipt(key)
	if err != nil {
		return confirm.SelectedMatch{}, err
	}

	entry, err := e.ledger.Get(ctx, entryID)
	if err != nil {
		return confirm.SelectedMatch{}, fmt.Errorf("loading ledger entry %s: %w", entryID, err)
	}

	m := e.currentMatcher()
	s := m.Score(r, *entry)
	s.Tier = matching.TierFor(s.Confidence, m.Config().MinConfidence)

	return e.confirm.Open(r, s)
}

func (e *Engine) CloseConfirmation() error {
	return e.confirm.Close()
}

func (e *Engine) SelectedMatch() (confirm.SelectedMatch, bool) {
	return e.confirm.Selected()
}

func (e *Engine) ConfirmationState() confirm.State {
	return e.confirm.State()
}

func (e *Engine) ConfirmLinkOnly(ctx context.Context) (*confirm.Result, error) {
	res, err := e.confirm.ConfirmLinkOnly(ctx)
	if err != nil {
		return nil, err
	}

	e.afterCommit(ctx, res)

	return res, nil
}

func (e *Engine) ConfirmLinkAndUpdate(ctx context.Context, fields []matching.Field) (*confirm.Result, error) {
	res, err := e.confirm.ConfirmLinkAndUpdate(ctx, fields)
	if err != nil {
		return nil, err
	}

	e.afterCommit(ctx, res)

	return res, nil
}

// afterCommit learns the merchant alias when the user overwrote the ledger
// description, then rereads the receipt's source so its status catches up.
func (e *Engine) afterCommit(ctx context.Context, res *confirm.Result) {
	if slices.Contains(res.Merged, matching.FieldMerchant) {
		raw := res.Previous.RawDescription
		if raw == "" {
			raw = res.Previous.Description
		}

		if err := e.matching.Learn(ctx, raw, res.Receipt.Merchant); err != nil {
			e.logger.Warn("learning merchant alias failed", "error", err)
		} else {
			e.reloadMatcher(ctx)
		}
	}

	e.refreshSource(ctx, res.Receipt.Source)
}

func (e *Engine) markMatched(ctx context.Context, key receipt.Key, entryID uuid.UUID) error {
	l, ok := e.linkers[key.Source]
	if !ok || l == nil {
		return nil
	}

	return l.MarkMatched(ctx, key.ID, entryID)
}

type sourceLinker struct{ e *Engine }

func (s sourceLinker) MarkMatched(ctx context.Context, key receipt.Key, entryID uuid.UUID) error {
	return s.e.markMatched(ctx, key, entryID)
}

type differ struct{ e *Engine }

func (d differ) Diff(r receipt.UnifiedReceipt, en ledger.Entry) []matching.FieldDifference {
	return d.e.currentMatcher().Diff(r, en)
}
