package confirm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/receipts/internal/confirm"
	"github.com/MrJamesThe3rd/receipts/internal/ledger"
	"github.com/MrJamesThe3rd/receipts/internal/matching"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

var (
	receiptDate = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	entryDate   = time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
)

func fixture(id string) (receipt.UnifiedReceipt, matching.Suggestion) {
	r := receipt.UnifiedReceipt{
		ID:       id,
		Source:   receipt.SourceScanned,
		Merchant: "Coffee Hut",
		Amount:   new(decimal.RequireFromString("4.50")),
		Date:     new(receiptDate),
		Status:   receipt.StatusPending,
	}

	e := ledger.Entry{
		ID:          uuid.New(),
		Description: "POS 1234 CAFE",
		Amount:      decimal.RequireFromString("4.75"),
		Type:        ledger.TypeExpense,
		Date:        entryDate,
	}

	return r, matching.Suggestion{
		LedgerEntryID: e.ID,
		Confidence:    0.72,
		Tier:          matching.TierMedium,
		Entry:         e,
	}
}

type deps struct {
	ledger *confirm.MockLedger
	linker *confirm.MockReceiptLinker
}

func newMachine(t *testing.T, inflight *confirm.Inflight) (*confirm.Machine, deps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := deps{
		ledger: confirm.NewMockLedger(ctrl),
		linker: confirm.NewMockReceiptLinker(ctrl),
	}

	differ := matching.NewMatcher(matching.DefaultConfig(), nil)

	return confirm.NewMachine(d.ledger, d.linker, differ, inflight, nil), d
}

func TestMachine_OpenReplacesSelection(t *testing.T) {
	m, _ := newMachine(t, nil)
	assert.Equal(t, confirm.StateIdle, m.State())

	r1, s1 := fixture("scan-1")
	r2, s2 := fixture("scan-2")

	_, err := m.Open(r1, s1)
	require.NoError(t, err)

	sel, err := m.Open(r2, s2)
	require.NoError(t, err)
	assert.Equal(t, confirm.StateInspecting, m.State())

	got, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "scan-2", got.Receipt.ID)
	assert.Equal(t, s2.LedgerEntryID, got.Suggestion.LedgerEntryID)
	assert.Equal(t, sel, got)
	assert.Len(t, got.Differences, 3)
}

func TestMachine_OpenRejectsEmptySuggestion(t *testing.T) {
	m, _ := newMachine(t, nil)
	r, _ := fixture("scan-1")

	_, err := m.Open(r, matching.Suggestion{})
	assert.ErrorIs(t, err, confirm.ErrSuggestionInvalid)
	assert.Equal(t, confirm.StateIdle, m.State())
}

func TestMachine_CloseDiscardsWithoutLedgerCalls(t *testing.T) {
	m, _ := newMachine(t, nil)
	r, s := fixture("scan-1")

	_, err := m.Open(r, s)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	assert.Equal(t, confirm.StateIdle, m.State())

	_, ok := m.Selected()
	assert.False(t, ok)

	require.NoError(t, m.Close())
}

func TestMachine_ConfirmWithoutSelection(t *testing.T) {
	m, _ := newMachine(t, nil)

	_, err := m.ConfirmLinkOnly(context.Background())
	assert.ErrorIs(t, err, confirm.ErrNoSelection)

	_, err = m.ConfirmLinkAndUpdate(context.Background(), []matching.Field{matching.FieldAmount})
	assert.ErrorIs(t, err, confirm.ErrNoSelection)
}

func TestMachine_ConfirmLinkOnly(t *testing.T) {
	m, d := newMachine(t, nil)
	r, s := fixture("scan-1")

	gomock.InOrder(
		d.ledger.EXPECT().AttachReceiptReference(gomock.Any(), s.LedgerEntryID, "scanned:scan-1").Return(nil),
		d.linker.EXPECT().MarkMatched(gomock.Any(), r.Key(), s.LedgerEntryID).Return(nil),
	)

	_, err := m.Open(r, s)
	require.NoError(t, err)

	res, err := m.ConfirmLinkOnly(context.Background())
	require.NoError(t, err)

	assert.Equal(t, confirm.StateIdle, m.State())
	assert.Equal(t, receipt.StatusMatched, res.Receipt.Status)
	assert.Equal(t, &s.LedgerEntryID, res.Receipt.SuggestedLedgerEntryID)
	require.NotNil(t, res.Receipt.MatchConfidence)
	assert.InDelta(t, 0.72, *res.Receipt.MatchConfidence, 1e-9)
	assert.Empty(t, res.Merged)

	assert.Equal(t, s.Entry.Description, res.Entry.Description)
	assert.True(t, s.Entry.Amount.Equal(res.Entry.Amount))
	assert.Equal(t, s.Entry.Date, res.Entry.Date)
	require.NotNil(t, res.Entry.ReceiptRef)
	assert.Equal(t, "scanned:scan-1", *res.Entry.ReceiptRef)

	// the source record handed in is untouched
	assert.Equal(t, receipt.StatusPending, r.Status)
}

func TestMachine_ConfirmLinkAndUpdate(t *testing.T) {
	amount := decimal.RequireFromString("4.50")

	tests := []struct {
		name      string
		fields    []matching.Field
		wantPatch ledger.Patch
	}{
		{
			name:      "AmountOnly",
			fields:    []matching.Field{matching.FieldAmount},
			wantPatch: ledger.Patch{Amount: &amount},
		},
		{
			name:      "MerchantAndDate",
			fields:    []matching.Field{matching.FieldMerchant, matching.FieldDate, matching.FieldMerchant},
			wantPatch: ledger.Patch{Description: new("Coffee Hut"), Date: &receiptDate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, d := newMachine(t, nil)
			r, s := fixture("scan-1")

			gomock.InOrder(
				d.ledger.EXPECT().UpdateEntry(gomock.Any(), s.LedgerEntryID, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ uuid.UUID, p ledger.Patch) error {
						assert.Equal(t, tt.wantPatch.Description, p.Description)
						assert.Equal(t, tt.wantPatch.Date, p.Date)

						if tt.wantPatch.Amount == nil {
							assert.Nil(t, p.Amount)
						} else {
							require.NotNil(t, p.Amount)
							assert.True(t, tt.wantPatch.Amount.Equal(*p.Amount))
						}

						return nil
					}),
				d.ledger.EXPECT().AttachReceiptReference(gomock.Any(), s.LedgerEntryID, "scanned:scan-1").Return(nil),
				d.linker.EXPECT().MarkMatched(gomock.Any(), r.Key(), s.LedgerEntryID).Return(nil),
			)

			_, err := m.Open(r, s)
			require.NoError(t, err)

			res, err := m.ConfirmLinkAndUpdate(context.Background(), tt.fields)
			require.NoError(t, err)
			assert.Equal(t, confirm.StateIdle, m.State())
			assert.Equal(t, s.Entry, res.Previous)
		})
	}
}

func TestMachine_SelectiveMergeLeavesOtherFields(t *testing.T) {
	m, d := newMachine(t, nil)
	r, s := fixture("scan-1")

	d.ledger.EXPECT().UpdateEntry(gomock.Any(), s.LedgerEntryID, gomock.Any()).Return(nil)
	d.ledger.EXPECT().AttachReceiptReference(gomock.Any(), s.LedgerEntryID, gomock.Any()).Return(nil)
	d.linker.EXPECT().MarkMatched(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := m.Open(r, s)
	require.NoError(t, err)

	res, err := m.ConfirmLinkAndUpdate(context.Background(), []matching.Field{matching.FieldAmount})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("4.50").Equal(res.Entry.Amount))
	assert.Equal(t, "POS 1234 CAFE", res.Entry.Description)
	assert.Equal(t, entryDate, res.Entry.Date)
	assert.Equal(t, []matching.Field{matching.FieldAmount}, res.Merged)
}

func TestMachine_EmptyFieldSetIsLinkOnly(t *testing.T) {
	m, d := newMachine(t, nil)
	r, s := fixture("scan-1")

	d.ledger.EXPECT().AttachReceiptReference(gomock.Any(), s.LedgerEntryID, "scanned:scan-1").Return(nil)
	d.linker.EXPECT().MarkMatched(gomock.Any(), r.Key(), s.LedgerEntryID).Return(nil)

	_, err := m.Open(r, s)
	require.NoError(t, err)

	_, err = m.ConfirmLinkAndUpdate(context.Background(), nil)
	require.NoError(t, err)
}

func TestMachine_InvalidFieldsKeepSelection(t *testing.T) {
	m, _ := newMachine(t, nil)
	r, s := fixture("scan-1")
	r.Amount = nil
	r.Date = nil

	_, err := m.Open(r, s)
	require.NoError(t, err)

	_, err = m.ConfirmLinkAndUpdate(context.Background(), []matching.Field{"category"})
	assert.ErrorIs(t, err, confirm.ErrUnknownField)

	_, err = m.ConfirmLinkAndUpdate(context.Background(), []matching.Field{matching.FieldAmount})
	assert.ErrorIs(t, err, confirm.ErrFieldUnavailable)

	_, err = m.ConfirmLinkAndUpdate(context.Background(), []matching.Field{matching.FieldDate})
	assert.ErrorIs(t, err, confirm.ErrFieldUnavailable)

	assert.Equal(t, confirm.StateInspecting, m.State())
}

func TestMachine_CommitFailureReturnsToInspecting(t *testing.T) {
	ledgerErr := errors.New("ledger offline")

	tests := []struct {
		name      string
		fields    []matching.Field
		setupMock func(d deps)
		wantStage confirm.Stage
	}{
		{
			name: "AttachFails",
			setupMock: func(d deps) {
				d.ledger.EXPECT().AttachReceiptReference(gomock.Any(), gomock.Any(), gomock.Any()).Return(ledgerErr)
			},
			wantStage: confirm.StageAttachReference,
		},
		{
			name:   "UpdateFails",
			fields: []matching.Field{matching.FieldDate},
			setupMock: func(d deps) {
				d.ledger.EXPECT().UpdateEntry(gomock.Any(), gomock.Any(), gomock.Any()).Return(ledgerErr)
			},
			wantStage: confirm.StageUpdateEntry,
		},
		{
			name: "MarkMatchedFails",
			setupMock: func(d deps) {
				d.ledger.EXPECT().AttachReceiptReference(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				d.linker.EXPECT().MarkMatched(gomock.Any(), gomock.Any(), gomock.Any()).Return(ledgerErr)
			},
			wantStage: confirm.StageMarkMatched,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, d := newMachine(t, nil)
			r, s := fixture("scan-1")
			tt.setupMock(d)

			opened, err := m.Open(r, s)
			require.NoError(t, err)

			_, err = m.ConfirmLinkAndUpdate(context.Background(), tt.fields)
			require.Error(t, err)
			assert.ErrorIs(t, err, ledgerErr)

			var commitErr *confirm.CommitError
			require.ErrorAs(t, err, &commitErr)
			assert.Equal(t, tt.wantStage, commitErr.Stage)
			assert.Equal(t, r.Key(), commitErr.Receipt)

			assert.Equal(t, confirm.StateInspecting, m.State())

			got, ok := m.Selected()
			require.True(t, ok)
			assert.Equal(t, opened, got)
		})
	}
}

func TestMachine_RetryAfterFailure(t *testing.T) {
	m, d := newMachine(t, nil)
	r, s := fixture("scan-1")

	gomock.InOrder(
		d.ledger.EXPECT().AttachReceiptReference(gomock.Any(), s.LedgerEntryID, gomock.Any()).Return(errors.New("timeout")),
		d.ledger.EXPECT().AttachReceiptReference(gomock.Any(), s.LedgerEntryID, gomock.Any()).Return(nil),
		d.linker.EXPECT().MarkMatched(gomock.Any(), r.Key(), s.LedgerEntryID).Return(nil),
	)

	_, err := m.Open(r, s)
	require.NoError(t, err)

	_, err = m.ConfirmLinkOnly(context.Background())
	require.Error(t, err)

	_, err = m.ConfirmLinkOnly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, confirm.StateIdle, m.State())
}

func TestMachine_RejectsConcurrentCommit(t *testing.T) {
	inflight := confirm.NewInflight()
	m, d := newMachine(t, inflight)
	other, _ := newMachine(t, inflight)

	r, s := fixture("scan-1")

	entered := make(chan struct{})
	release := make(chan struct{})

	d.ledger.EXPECT().AttachReceiptReference(gomock.Any(), s.LedgerEntryID, gomock.Any()).
		DoAndReturn(func(context.Context, uuid.UUID, string) error {
			close(entered)
			<-release

			return nil
		})
	d.linker.EXPECT().MarkMatched(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := m.Open(r, s)
	require.NoError(t, err)

	_, err = other.Open(r, s)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := m.ConfirmLinkOnly(context.Background())
		done <- err
	}()

	<-entered

	assert.Equal(t, confirm.StateCommitting, m.State())

	_, err = m.ConfirmLinkOnly(context.Background())
	assert.ErrorIs(t, err, confirm.ErrCommitInProgress)

	_, err = other.ConfirmLinkOnly(context.Background())
	assert.ErrorIs(t, err, confirm.ErrCommitInProgress)

	assert.ErrorIs(t, m.Close(), confirm.ErrCommitInProgress)

	_, err = m.Open(fixture("scan-2"))
	assert.ErrorIs(t, err, confirm.ErrCommitInProgress)

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, confirm.StateIdle, m.State())
	assert.Equal(t, confirm.StateInspecting, other.State())
}
