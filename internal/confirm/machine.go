package confirm

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receipts/internal/ledger"
	"github.com/MrJamesThe3rd/receipts/internal/matching"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

//go:generate mockgen -source=machine.go -destination=collaborators_mock.go -package=confirm
type Ledger interface {
	UpdateEntry(ctx context.Context, id uuid.UUID, patch ledger.Patch) error
	AttachReceiptReference(ctx context.Context, id uuid.UUID, receiptRef string) error
}

// ReceiptLinker records the match on the receipt's own source.
type ReceiptLinker interface {
	MarkMatched(ctx context.Context, key receipt.Key, entryID uuid.UUID) error
}

type Differ interface {
	Diff(r receipt.UnifiedReceipt, e ledger.Entry) []matching.FieldDifference
}

// State of the confirmation workflow.
type State string

const (
	StateIdle       State = "idle"
	StateInspecting State = "inspecting"
	StateCommitting State = "committing"
)

// SelectedMatch is the receipt and suggestion being inspected.
type SelectedMatch struct {
	Receipt     receipt.UnifiedReceipt
	Suggestion  matching.Suggestion
	Differences []matching.FieldDifference
}

// Result describes a successful commit.
type Result struct {
	Receipt  receipt.UnifiedReceipt // as matched
	Previous ledger.Entry           // entry before the commit
	Entry    ledger.Entry           // entry after the commit
	Merged   []matching.Field
}

// Machine drives the confirm workflow for one session. It exclusively owns
// the selected match; callers only ever get copies.
type Machine struct {
	ledger   Ledger
	linker   ReceiptLinker
	differ   Differ
	inflight *Inflight
	logger   *slog.Logger

	mu       sync.Mutex
	selected *SelectedMatch
}

// NewMachine builds a machine. linker may be nil when the receipt sources
// don't need to be told about matches. A nil inflight gets a private registry.
func NewMachine(l Ledger, linker ReceiptLinker, differ Differ, inflight *Inflight, logger *slog.Logger) *Machine {
	if inflight == nil {
		inflight = NewInflight()
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Machine{
		ledger:   l,
		linker:   linker,
		differ:   differ,
		inflight: inflight,
		logger:   logger,
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stateLocked()
}

func (m *Machine) stateLocked() State {
	switch {
	case m.selected == nil:
		return StateIdle
	case m.inflight.Busy(m.selected.Receipt.Key()):
		return StateCommitting
	default:
		return StateInspecting
	}
}

// Selected returns a copy of the current selection.
func (m *Machine) Selected() (SelectedMatch, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == nil {
		return SelectedMatch{}, false
	}

	sel := *m.selected
	sel.Differences = slices.Clone(sel.Differences)

	return sel, true
}

// Open selects a receipt/suggestion pair, replacing any earlier selection.
func (m *Machine) Open(r receipt.UnifiedReceipt, s matching.Suggestion) (SelectedMatch, error) {
	if s.LedgerEntryID == uuid.Nil {
		return SelectedMatch{}, ErrSuggestionInvalid
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stateLocked() == StateCommitting {
		return SelectedMatch{}, ErrCommitInProgress
	}

	m.selected = &SelectedMatch{
		Receipt:     r,
		Suggestion:  s,
		Differences: m.differ.Diff(r, s.Entry),
	}

	sel := *m.selected
	sel.Differences = slices.Clone(sel.Differences)

	return sel, nil
}

// Close drops the selection without touching the ledger.
func (m *Machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stateLocked() == StateCommitting {
		return ErrCommitInProgress
	}

	m.selected = nil

	return nil
}

// ConfirmLinkOnly links the selected receipt and entry without changing any
// other ledger field.
func (m *Machine) ConfirmLinkOnly(ctx context.Context) (*Result, error) {
	return m.commit(ctx, nil)
}

// ConfirmLinkAndUpdate links like ConfirmLinkOnly and overwrites exactly the
// given ledger fields with the receipt's values.
func (m *Machine) ConfirmLinkAndUpdate(ctx context.Context, fields []matching.Field) (*Result, error) {
	return m.commit(ctx, fields)
}

func (m *Machine) commit(ctx context.Context, fields []matching.Field) (*Result, error) {
	m.mu.Lock()

	if m.selected == nil {
		m.mu.Unlock()
		return nil, ErrNoSelection
	}

	sel := *m.selected
	key := sel.Receipt.Key()

	patch, merged, err := buildPatch(sel.Receipt, fields)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	if !m.inflight.acquire(key) {
		m.mu.Unlock()
		return nil, ErrCommitInProgress
	}

	m.mu.Unlock()
	defer m.inflight.release(key)

	entryID := sel.Suggestion.LedgerEntryID
	log := m.logger.With("receipt", key.String(), "entry", entryID)

	if !patch.IsEmpty() {
		if err := m.ledger.UpdateEntry(ctx, entryID, patch); err != nil {
			log.Warn("updating ledger entry failed", "error", err)
			return nil, &CommitError{Stage: StageUpdateEntry, Receipt: key, Err: err}
		}
	}

	if err := m.ledger.AttachReceiptReference(ctx, entryID, key.String()); err != nil {
		log.Warn("attaching receipt reference failed", "error", err)
		return nil, &CommitError{Stage: StageAttachReference, Receipt: key, Err: err}
	}

	if m.linker != nil {
		if err := m.linker.MarkMatched(ctx, key, entryID); err != nil {
			log.Warn("marking receipt matched failed", "error", err)
			return nil, &CommitError{Stage: StageMarkMatched, Receipt: key, Err: err}
		}
	}

	m.mu.Lock()
	if m.selected != nil && m.selected.Receipt.Key() == key {
		m.selected = nil
	}
	m.mu.Unlock()

	log.Info("receipt matched", "merged", merged)

	updated := patch.Apply(sel.Suggestion.Entry)
	updated.ReceiptRef = new(key.String())

	return &Result{
		Receipt:  sel.Receipt.WithMatch(entryID, sel.Suggestion.Confidence),
		Previous: sel.Suggestion.Entry,
		Entry:    updated,
		Merged:   merged,
	}, nil
}

func buildPatch(r receipt.UnifiedReceipt, fields []matching.Field) (ledger.Patch, []matching.Field, error) {
	var (
		patch  ledger.Patch
		merged []matching.Field
	)

	for _, f := range fields {
		if slices.Contains(merged, f) {
			continue
		}

		switch f {
		case matching.FieldMerchant:
			if r.Merchant == "" {
				return ledger.Patch{}, nil, fmt.Errorf("%w: %s", ErrFieldUnavailable, f)
			}

			patch.Description = new(r.Merchant)
		case matching.FieldAmount:
			if r.Amount == nil || r.Amount.IsZero() {
				return ledger.Patch{}, nil, fmt.Errorf("%w: %s", ErrFieldUnavailable, f)
			}

			patch.Amount = new(r.Amount.Abs())
		case matching.FieldDate:
			if r.Date == nil {
				return ledger.Patch{}, nil, fmt.Errorf("%w: %s", ErrFieldUnavailable, f)
			}

			patch.Date = new(*r.Date)
		default:
			return ledger.Patch{}, nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
		}

		merged = append(merged, f)
	}

	return patch, merged, nil
}
