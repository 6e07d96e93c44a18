package confirm

import (
	"sync"

	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

// Inflight tracks receipts with a commit running. Share one between machines
// to keep commits for the same receipt exclusive across sessions.
type Inflight struct {
	mu   sync.Mutex
	keys map[receipt.Key]struct{}
}

func NewInflight() *Inflight {
	return &Inflight{keys: make(map[receipt.Key]struct{})}
}

func (f *Inflight) acquire(k receipt.Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.keys[k]; ok {
		return false
	}

	f.keys[k] = struct{}{}

	return true
}

func (f *Inflight) release(k receipt.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.keys, k)
}

// Busy reports whether a commit for k is running.
func (f *Inflight) Busy(k receipt.Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.keys[k]

	return ok
}
