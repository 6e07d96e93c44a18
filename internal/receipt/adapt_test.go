package receipt_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

func ptr[T any](v T) *T { return &v }

func TestFromDigital(t *testing.T) {
	entryID := uuid.New()
	created := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	type testCase struct {
		name       string
		in         receipt.DigitalReceipt
		wantStatus receipt.Status
		wantEntry  *uuid.UUID
		wantDate   *time.Time
	}

	tests := []testCase{
		{
			name: "Pending",
			in: receipt.DigitalReceipt{
				ID: "receipt-1", Merchant: " Test Merchant 1 ", Amount: decimal.RequireFromString("50.00"),
				Date: created, Status: "pending", CreatedAt: created,
			},
			wantStatus: receipt.StatusPending,
			wantDate:   &created,
		},
		{
			name: "MatchedCarriesLedgerEntry",
			in: receipt.DigitalReceipt{
				ID: "receipt-2", Merchant: "Test Merchant 2", Amount: decimal.RequireFromString("100"),
				Date: created, Status: "matched", MatchedTransactionID: new(entryID.String()),
			},
			wantStatus: receipt.StatusMatched,
			wantEntry:  &entryID,
			wantDate:   &created,
		},
		{
			name: "MalformedMatchIsAbsent",
			in: receipt.DigitalReceipt{
				ID: "receipt-3", Status: "ignored", Date: created, MatchedTransactionID: new("transaction-123"),
			},
			wantStatus: receipt.StatusIgnored,
			wantDate:   &created,
		},
		{
			name: "UnknownStatusReadsPendingAndMissingDateStaysAbsent",
			in: receipt.DigitalReceipt{
				ID: "receipt-4", Status: "processing", CreatedAt: created,
			},
			wantStatus: receipt.StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := receipt.FromDigital(tt.in)

			require.NoError(t, got.Validate())
			assert.Equal(t, tt.in.ID, got.ID)
			assert.Equal(t, receipt.SourceDigital, got.Source)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantEntry, got.SuggestedLedgerEntryID)
			assert.Equal(t, tt.wantDate, got.Date)
			assert.Nil(t, got.Extraction)
			assert.Nil(t, got.MatchConfidence)
			assert.NotNil(t, got.Raw)
		})
	}
}

func TestFromDigital_DoesNotAliasSource(t *testing.T) {
	in := receipt.DigitalReceipt{ID: "r1", Merchant: "Amazon"}
	got := receipt.FromDigital(in)

	in.Merchant = "Changed"

	raw, ok := got.Raw.(*receipt.DigitalReceipt)
	require.True(t, ok)
	assert.Equal(t, "Amazon", raw.Merchant)
}

func TestFromScanned_ExtractionBuckets(t *testing.T) {
	in := receipt.ScannedReceipt{
		ID:        "scan-1",
		JobStatus: "completed",
		Merchant:  new("Starbucks"),
		Total:     new("$12.34"),
		Date:      new("2026-01-20"),
		OCR: &receipt.OCRResult{
			Confidence: new(0.85),
			Fields: receipt.FieldScores{
				Merchant: new(0.39),
				Total:    new(0.4),
				Date:     new(0.6),
			},
		},
	}

	got := receipt.FromScanned(in)
	require.NoError(t, got.Validate())

	assert.Equal(t, receipt.SourceScanned, got.Source)
	assert.Equal(t, receipt.StatusPending, got.Status)
	assert.Equal(t, "Starbucks", got.Merchant)
	require.NotNil(t, got.Amount)
	assert.True(t, decimal.RequireFromString("12.34").Equal(*got.Amount))
	require.NotNil(t, got.Date)
	assert.Equal(t, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), *got.Date)

	require.NotNil(t, got.Extraction)
	assert.Equal(t, receipt.LevelNone, got.Extraction.Merchant)
	assert.Equal(t, receipt.LevelLow, got.Extraction.Total)
	assert.Equal(t, receipt.LevelMedium, got.Extraction.Date)
	require.NotNil(t, got.Extraction.Overall)
	assert.InDelta(t, 0.85, *got.Extraction.Overall, 1e-9)

	require.NotNil(t, got.MatchConfidence)
	assert.InDelta(t, 0.85, *got.MatchConfidence, 1e-9)
}

func TestFromScanned_AbsentStaysAbsent(t *testing.T) {
	created := time.Date(2026, 1, 21, 9, 0, 0, 0, time.UTC)
	in := receipt.ScannedReceipt{
		ID:        "scan-2",
		JobStatus: "completed",
		Total:     new("n/a"),
		Date:      new("someday"),
		CreatedAt: created,
		OCR:       &receipt.OCRResult{},
	}

	got := receipt.FromScanned(in)
	require.NoError(t, got.Validate())

	assert.Nil(t, got.Amount)
	// the upload time is not a purchase date
	assert.Nil(t, got.Date)
	require.NotNil(t, got.Extraction)
	assert.Nil(t, got.Extraction.Overall)
	assert.Nil(t, got.MatchConfidence)
}

func TestFromScanned_ProcessingNeverCarriesMatchConfidence(t *testing.T) {
	for _, job := range []string{"processing", "queued", "failed"} {
		t.Run(job, func(t *testing.T) {
			got := receipt.FromScanned(receipt.ScannedReceipt{
				ID:        "scan-3",
				JobStatus: job,
				OCR:       &receipt.OCRResult{Confidence: new(0.9)},
			})

			require.NoError(t, got.Validate())
			assert.Nil(t, got.MatchConfidence)
			assert.Contains(t, []receipt.Status{receipt.StatusProcessing, receipt.StatusFailed}, got.Status)
		})
	}
}

func TestFromScanned_PercentScaleAndPriorMatch(t *testing.T) {
	entryID := uuid.New()
	got := receipt.FromScanned(receipt.ScannedReceipt{
		ID:            "scan-4",
		JobStatus:     "completed",
		Status:        "matched",
		TransactionID: new(entryID.String()),
		OCR:           &receipt.OCRResult{Confidence: new(72.0), Fields: receipt.FieldScores{Total: new(95.0)}},
	})

	assert.Equal(t, receipt.StatusMatched, got.Status)
	assert.Equal(t, &entryID, got.SuggestedLedgerEntryID)
	assert.Equal(t, receipt.LevelHigh, got.Extraction.Total)
	require.NotNil(t, got.MatchConfidence)
	assert.InDelta(t, 0.72, *got.MatchConfidence, 1e-9)
}

func TestFromScanned_Amounts(t *testing.T) {
	tests := map[string]string{
		"12,34 €":   "12.34",
		"1,234.56":  "1234.56",
		"1.234,56":  "1234.56",
		"TOTAL 7.5": "7.5",
		"1,234":     "1234",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got := receipt.FromScanned(receipt.ScannedReceipt{ID: "s", Total: new(in)})
			require.NotNil(t, got.Amount)
			assert.True(t, decimal.RequireFromString(want).Equal(*got.Amount), "got %s", got.Amount)
		})
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, receipt.LevelNone, receipt.LevelFor(0))
	assert.Equal(t, receipt.LevelNone, receipt.LevelFor(0.399))
	assert.Equal(t, receipt.LevelLow, receipt.LevelFor(0.4))
	assert.Equal(t, receipt.LevelLow, receipt.LevelFor(0.59))
	assert.Equal(t, receipt.LevelMedium, receipt.LevelFor(0.6))
	assert.Equal(t, receipt.LevelMedium, receipt.LevelFor(0.79))
	assert.Equal(t, receipt.LevelHigh, receipt.LevelFor(0.8))
}

func TestParseKey(t *testing.T) {
	k, err := receipt.ParseKey("scanned:abc:1")
	require.NoError(t, err)
	assert.Equal(t, receipt.Key{Source: receipt.SourceScanned, ID: "abc:1"}, k)
	assert.Equal(t, "scanned:abc:1", k.String())

	_, err = receipt.ParseKey("paper:abc")
	assert.Error(t, err)

	_, err = receipt.ParseKey("digital:")
	assert.Error(t, err)
}
