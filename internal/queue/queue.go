package queue

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

var ErrItemNotFound = errors.New("queue item not found")

// State of a queued upload. Succeeded items are removed, so they have no state.
type State string

const (
	StateQueued     State = "queued"
	StateSubmitting State = "submitting"
)

// Item is an upload waiting for connectivity.
type Item struct {
	ID         uuid.UUID
	File       receipt.Upload
	EnqueuedAt time.Time
	Attempts   int
	LastError  *string
	State      State
}

// DrainResult summarizes one pass over the queue.
type DrainResult struct {
	Submitted []receipt.UnifiedReceipt
	Failed    int
	Remaining int
	// Skipped is set when another drain was already running.
	Skipped bool
}
