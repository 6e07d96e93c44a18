package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/receipts/internal/queue"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

// UploadResult holds either the submitted scan or the queued item.
type UploadResult struct {
	Receipt *receipt.UnifiedReceipt
	Queued  *queue.Item
}

// Upload submits a receipt image to the scan pipeline. While offline, or
// when the pipeline can't be reached, the file is queued instead.
func (e *Engine) Upload(ctx context.Context, file receipt.Upload) (UploadResult, error) {
	if err := file.Validate(); err != nil {
		return UploadResult{}, err
	}

	if !e.online.Load() {
		return e.enqueue(ctx, file)
	}

	scanned, err := e.submitter.Submit(ctx, file)
	if err != nil {
		if errors.Is(err, receipt.ErrSourceUnavailable) {
			e.logger.Warn("scan pipeline unreachable, queueing upload", "file", file.Name, "error", err)
			return e.enqueue(ctx, file)
		}

		return UploadResult{}, fmt.Errorf("uploading %s: %w", file.Name, err)
	}

	e.refreshSource(ctx, receipt.SourceScanned)

	r := receipt.FromScanned(*scanned)

	return UploadResult{Receipt: &r}, nil
}

func (e *Engine) enqueue(ctx context.Context, file receipt.Upload) (UploadResult, error) {
	item, err := e.EnqueueOfflineUpload(ctx, file)
	if err != nil {
		return UploadResult{}, err
	}

	return UploadResult{Queued: item}, nil
}

// EnqueueOfflineUpload stores the file for a later drain without trying the
// scan pipeline, regardless of connectivity.
func (e *Engine) EnqueueOfflineUpload(ctx context.Context, file receipt.Upload) (*queue.Item, error) {
	return e.queue.Enqueue(ctx, file)
}

// DrainQueue resubmits queued uploads and refreshes scans if any went through.
func (e *Engine) DrainQueue(ctx context.Context) (queue.DrainResult, error) {
	res, err := e.queue.Drain(ctx)
	if len(res.Submitted) > 0 {
		e.refreshSource(ctx, receipt.SourceScanned)
	}

	return res, err
}

func (e *Engine) PendingQueueCount(ctx context.Context) (int, error) {
	return e.queue.PendingCount(ctx)
}

func (e *Engine) QueuedItems(ctx context.Context) ([]*queue.Item, error) {
	return e.queue.Items(ctx)
}

func (e *Engine) Online() bool {
	return e.online.Load()
}

// SetOnline records a connectivity change. Coming back online drains the
// queue and returns the drain result; other transitions return nil.
func (e *Engine) SetOnline(ctx context.Context, online bool) (*queue.DrainResult, error) {
	was := e.online.Swap(online)
	if !online || was {
		return nil, nil
	}

	e.logger.Info("connectivity restored, draining queue")

	res, err := e.DrainQueue(ctx)

	return &res, err
}
