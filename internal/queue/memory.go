package queue

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps the queue in process memory. It is lost on exit.
type MemoryStore struct {
	mu    sync.Mutex
	items []*Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Add(_ context.Context, item *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = append(m.items, clone(item))

	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, clone(it))
	}

	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, item *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(item.ID)
	if i < 0 {
		return ErrItemNotFound
	}

	m.items[i] = clone(item)

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return ErrItemNotFound
	}

	m.items = slices.Delete(m.items, i, i+1)

	return nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.items), nil
}

func (m *MemoryStore) ResetSubmitting(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0

	for _, it := range m.items {
		if it.State == StateSubmitting {
			it.State = StateQueued
			n++
		}
	}

	return n, nil
}

func (m *MemoryStore) index(id uuid.UUID) int {
	return slices.IndexFunc(m.items, func(it *Item) bool { return it.ID == id })
}

func clone(it *Item) *Item {
	c := *it
	c.File.Data = slices.Clone(it.File.Data)

	if it.LastError != nil {
		c.LastError = new(*it.LastError)
	}

	return &c
}
