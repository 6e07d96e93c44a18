package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/receipts/internal/queue"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

func upload(name string) receipt.Upload {
	return receipt.Upload{Name: name, ContentType: "image/jpeg", Data: []byte("jpeg:" + name)}
}

func TestService_DrainEmptyQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sub := queue.NewMockSubmitter(ctrl)
	svc := queue.NewService(queue.NewMemoryStore(), sub, nil)

	res, err := svc.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, queue.DrainResult{}, res)

	n, err := svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_AlwaysFailingItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	sub := queue.NewMockSubmitter(ctrl)
	svc := queue.NewService(queue.NewMemoryStore(), sub, nil)

	sub.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, errors.New("network unreachable")).Times(3)

	_, err := svc.Enqueue(ctx, upload("a.jpg"))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		res, err := svc.Drain(ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Submitted)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, 1, res.Remaining)

		items, err := svc.Items(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, i, items[0].Attempts)
		assert.Equal(t, queue.StateQueued, items[0].State)
		require.NotNil(t, items[0].LastError)
		assert.Equal(t, "network unreachable", *items[0].LastError)
	}
}

func TestService_DrainFIFO(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	sub := queue.NewMockSubmitter(ctrl)
	svc := queue.NewService(queue.NewMemoryStore(), sub, nil)

	for _, name := range []string{"1.jpg", "2.jpg", "3.jpg"} {
		_, err := svc.Enqueue(ctx, upload(name))
		require.NoError(t, err)
	}

	gomock.InOrder(
		sub.EXPECT().Submit(gomock.Any(), upload("1.jpg")).
			Return(&receipt.ScannedReceipt{ID: "s1", JobStatus: "processing"}, nil),
		sub.EXPECT().Submit(gomock.Any(), upload("2.jpg")).
			Return(nil, errors.New("503 service unavailable")),
		sub.EXPECT().Submit(gomock.Any(), upload("3.jpg")).
			Return(&receipt.ScannedReceipt{ID: "s3", JobStatus: "queued"}, nil),
	)

	res, err := svc.Drain(ctx)
	require.NoError(t, err)

	require.Len(t, res.Submitted, 2)
	assert.Equal(t, "s1", res.Submitted[0].ID)
	assert.Equal(t, "s3", res.Submitted[1].ID)
	assert.Equal(t, receipt.SourceScanned, res.Submitted[0].Source)
	assert.Equal(t, receipt.StatusProcessing, res.Submitted[0].Status)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Remaining)

	items, err := svc.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2.jpg", items[0].File.Name)
	assert.Equal(t, 1, items[0].Attempts)
}

func TestService_ConcurrentDrainIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	sub := queue.NewMockSubmitter(ctrl)
	svc := queue.NewService(queue.NewMemoryStore(), sub, nil)

	_, err := svc.Enqueue(ctx, upload("a.jpg"))
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})

	sub.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, receipt.Upload) (*receipt.ScannedReceipt, error) {
			close(entered)
			<-release

			return &receipt.ScannedReceipt{ID: "s1"}, nil
		})

	var (
		wg    sync.WaitGroup
		first queue.DrainResult
	)

	wg.Go(func() {
		first, _ = svc.Drain(ctx)
	})

	<-entered

	// new uploads are accepted while the drain runs
	_, err = svc.Enqueue(ctx, upload("b.jpg"))
	require.NoError(t, err)

	second, err := svc.Drain(ctx)
	require.NoError(t, err)
	assert.True(t, second.Skipped)

	close(release)
	wg.Wait()

	assert.False(t, first.Skipped)
	assert.Len(t, first.Submitted, 1)

	n, err := svc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_DrainStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	sub := queue.NewMockSubmitter(ctrl)
	svc := queue.NewService(queue.NewMemoryStore(), sub, nil)

	for _, name := range []string{"1.jpg", "2.jpg"} {
		_, err := svc.Enqueue(ctx, upload(name))
		require.NoError(t, err)
	}

	sub.EXPECT().Submit(gomock.Any(), upload("1.jpg")).
		DoAndReturn(func(context.Context, receipt.Upload) (*receipt.ScannedReceipt, error) {
			cancel()
			return &receipt.ScannedReceipt{ID: "s1"}, nil
		})

	res, err := svc.Drain(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Submitted, 1)
	assert.Equal(t, 1, res.Remaining)
}

func TestService_Enqueue(t *testing.T) {
	tests := []struct {
		name      string
		file      receipt.Upload
		setupMock func(m *queue.MockStore)
		wantErr   bool
	}{
		{
			name: "Stores",
			file: upload("a.jpg"),
			setupMock: func(m *queue.MockStore) {
				m.EXPECT().Add(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, it *queue.Item) error {
					assert.Equal(t, queue.StateQueued, it.State)
					assert.Zero(t, it.Attempts)
					assert.Nil(t, it.LastError)
					assert.False(t, it.EnqueuedAt.IsZero())

					return nil
				})
			},
		},
		{
			name:      "RejectsEmptyFile",
			file:      receipt.Upload{Name: "a.jpg"},
			setupMock: func(m *queue.MockStore) {},
			wantErr:   true,
		},
		{
			name: "StoreError",
			file: upload("a.jpg"),
			setupMock: func(m *queue.MockStore) {
				m.EXPECT().Add(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := queue.NewMockStore(ctrl)
			tt.setupMock(store)

			svc := queue.NewService(store, queue.NewMockSubmitter(ctrl), nil)

			_, err := svc.Enqueue(context.Background(), tt.file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_ResetStale(t *testing.T) {
	ctx := context.Background()
	store := queue.NewMemoryStore()

	it := &queue.Item{ID: uuid.New(), File: upload("a.jpg"), State: queue.StateSubmitting}
	require.NoError(t, store.Add(ctx, it))

	svc := queue.NewService(store, nil, nil)

	n, err := svc.ResetStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := svc.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, queue.StateQueued, items[0].State)
}
