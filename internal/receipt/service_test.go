package receipt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

func TestService_Refresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	digital := receipt.NewMockDigitalFeed(ctrl)
	scanned := receipt.NewMockScanPipeline(ctrl)

	digital.EXPECT().ListDigitalReceipts(gomock.Any()).Return([]receipt.DigitalReceipt{
		{ID: "d1", Merchant: "Coffee Hut", Amount: decimal.RequireFromString("4.50"), Date: day(3), Status: "pending"},
	}, nil)
	scanned.EXPECT().ListScannedReceipts(gomock.Any()).Return([]receipt.ScannedReceipt{
		{ID: "s1", JobStatus: "processing", CreatedAt: day(4)},
	}, nil)

	svc := receipt.NewService(digital, scanned, nil)
	assert.Equal(t, 0, svc.Inbox().Len())

	in := svc.Refresh(context.Background())

	require.NoError(t, in.Err())
	assert.False(t, in.IsLoading())
	assert.Equal(t, []string{"s1", "d1"}, ids(in.All()))
	assert.Same(t, in, svc.Inbox())
}

func TestService_PartialFailureKeepsStaleData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	digital := receipt.NewMockDigitalFeed(ctrl)
	scanned := receipt.NewMockScanPipeline(ctrl)

	scanErr := errors.New("connection refused")

	gomock.InOrder(
		scanned.EXPECT().ListScannedReceipts(gomock.Any()).Return([]receipt.ScannedReceipt{
			{ID: "s1", JobStatus: "completed", CreatedAt: day(2)},
		}, nil),
		scanned.EXPECT().ListScannedReceipts(gomock.Any()).Return(nil, scanErr),
		scanned.EXPECT().ListScannedReceipts(gomock.Any()).Return([]receipt.ScannedReceipt{}, nil),
	)
	digital.EXPECT().ListDigitalReceipts(gomock.Any()).Return([]receipt.DigitalReceipt{
		{ID: "d1", Date: day(1), Status: "pending"},
	}, nil).Times(2)

	svc := receipt.NewService(digital, scanned, nil)
	ctx := context.Background()

	first := svc.Refresh(ctx)
	require.NoError(t, first.Err())
	assert.Equal(t, []string{"s1", "d1"}, ids(first.All()))

	second := svc.Refresh(ctx)
	assert.ErrorIs(t, second.Err(), scanErr)
	assert.NoError(t, second.SourceErr(receipt.SourceDigital))
	assert.Equal(t, []string{"s1", "d1"}, ids(second.All()))

	// an earlier inbox value is never changed by later refreshes
	assert.NoError(t, first.Err())

	third := svc.RefreshSource(ctx, receipt.SourceScanned)
	assert.NoError(t, third.Err())
	assert.Equal(t, []string{"d1"}, ids(third.All()))
}
