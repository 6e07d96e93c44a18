package receipt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

func day(d int) time.Time {
	return time.Date(2026, 1, d, 12, 0, 0, 0, time.UTC)
}

func digitalAt(id string, date time.Time, status receipt.Status) receipt.UnifiedReceipt {
	return receipt.UnifiedReceipt{ID: id, Source: receipt.SourceDigital, Date: &date, Status: status}
}

func scannedAt(id string, date time.Time, status receipt.Status) receipt.UnifiedReceipt {
	return receipt.UnifiedReceipt{ID: id, Source: receipt.SourceScanned, Date: &date, Status: status}
}

func ids(rs []receipt.UnifiedReceipt) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}

	return out
}

func TestAggregate_SortsNewestFirst(t *testing.T) {
	in := receipt.Aggregate(
		receipt.Snapshot{Receipts: []receipt.UnifiedReceipt{
			digitalAt("d1", day(10), receipt.StatusPending),
			digitalAt("d2", day(20), receipt.StatusMatched),
		}},
		receipt.Snapshot{Receipts: []receipt.UnifiedReceipt{
			scannedAt("s1", day(15), receipt.StatusProcessing),
		}},
	)

	assert.Equal(t, []string{"d2", "s1", "d1"}, ids(in.All()))
	assert.Equal(t, 3, in.Len())
}

func TestAggregate_UndatedSortsByIngestion(t *testing.T) {
	undated := receipt.FromScanned(receipt.ScannedReceipt{
		ID:        "s-undated",
		JobStatus: "completed",
		Date:      new("unreadable"),
		CreatedAt: day(12),
	})
	require.Nil(t, undated.Date)

	in := receipt.Aggregate(
		receipt.Snapshot{Receipts: []receipt.UnifiedReceipt{
			digitalAt("d1", day(10), receipt.StatusPending),
			digitalAt("d2", day(20), receipt.StatusPending),
		}},
		receipt.Snapshot{Receipts: []receipt.UnifiedReceipt{undated}},
	)

	assert.Equal(t, []string{"d2", "s-undated", "d1"}, ids(in.All()))

	got, ok := in.Find(undated.Key())
	require.True(t, ok)
	assert.Nil(t, got.Date)
}

func TestAggregate_TiesKeepDigitalFirst(t *testing.T) {
	in := receipt.Aggregate(
		receipt.Snapshot{Receipts: []receipt.UnifiedReceipt{
			digitalAt("d1", day(5), receipt.StatusPending),
			digitalAt("d2", day(5), receipt.StatusPending),
		}},
		receipt.Snapshot{Receipts: []receipt.UnifiedReceipt{
			scannedAt("s1", day(5), receipt.StatusPending),
		}},
	)

	assert.Equal(t, []string{"d1", "d2", "s1"}, ids(in.All()))
}

func TestAggregate_SameIDAcrossSourcesKeptApart(t *testing.T) {
	in := receipt.Aggregate(
		receipt.Snapshot{Receipts: []receipt.UnifiedReceipt{digitalAt("42", day(1), receipt.StatusPending)}},
		receipt.Snapshot{Receipts: []receipt.UnifiedReceipt{scannedAt("42", day(2), receipt.StatusPending)}},
	)

	require.Equal(t, 2, in.Len())

	got, ok := in.Find(receipt.Key{Source: receipt.SourceDigital, ID: "42"})
	require.True(t, ok)
	require.NotNil(t, got.Date)
	assert.Equal(t, day(1), *got.Date)

	_, ok = in.Find(receipt.Key{Source: receipt.SourceScanned, ID: "nope"})
	assert.False(t, ok)
}

func TestAggregate_PendingAndBySource(t *testing.T) {
	in := receipt.Aggregate(
		receipt.Snapshot{Receipts: []receipt.UnifiedReceipt{
			digitalAt("d1", day(1), receipt.StatusPending),
			digitalAt("d2", day(2), receipt.StatusIgnored),
		}},
		receipt.Snapshot{Receipts: []receipt.UnifiedReceipt{
			scannedAt("s1", day(3), receipt.StatusProcessing),
			scannedAt("s2", day(4), receipt.StatusFailed),
			scannedAt("s3", day(5), receipt.StatusMatched),
		}},
	)

	assert.Equal(t, []string{"s1", "d1"}, ids(in.Pending()))
	assert.Equal(t, []string{"s3", "s2", "s1"}, ids(in.BySource(receipt.SourceScanned)))
	assert.Equal(t, []string{"d2", "d1"}, ids(in.BySource(receipt.SourceDigital)))
}

func TestAggregate_LoadingAndErrors(t *testing.T) {
	digitalErr := errors.New("digital down")
	scanErr := errors.New("scan down")

	type testCase struct {
		name        string
		digital     receipt.Snapshot
		scanned     receipt.Snapshot
		wantLoading bool
		wantErr     error
	}

	tests := []testCase{
		{
			name: "Idle",
		},
		{
			name:        "EitherLoading",
			scanned:     receipt.Snapshot{Loading: true},
			wantLoading: true,
		},
		{
			name:    "DigitalErrorWins",
			digital: receipt.Snapshot{Err: digitalErr},
			scanned: receipt.Snapshot{Err: scanErr},
			wantErr: digitalErr,
		},
		{
			name:    "ScanErrorAlone",
			scanned: receipt.Snapshot{Err: scanErr},
			wantErr: scanErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := receipt.Aggregate(tt.digital, tt.scanned)

			assert.Equal(t, tt.wantLoading, in.IsLoading())
			assert.Equal(t, tt.wantErr, in.Err())
			assert.Equal(t, tt.digital.Err, in.SourceErr(receipt.SourceDigital))
			assert.Equal(t, tt.scanned.Err, in.SourceErr(receipt.SourceScanned))
		})
	}
}

func TestInbox_AllReturnsCopy(t *testing.T) {
	in := receipt.Aggregate(
		receipt.Snapshot{Receipts: []receipt.UnifiedReceipt{digitalAt("d1", day(1), receipt.StatusPending)}},
		receipt.Snapshot{},
	)

	all := in.All()
	all[0].ID = "mutated"

	assert.Equal(t, []string{"d1"}, ids(in.All()))
}
