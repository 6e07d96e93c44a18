package receipt

import (
	"slices"
	"time"
)

// Snapshot is the latest full view of one source.
type Snapshot struct {
	Receipts []UnifiedReceipt
	Loading  bool
	Err      error
}

// Inbox merges both sources into one date-sorted collection. It is a pure
// projection and is rebuilt, never patched, whenever a snapshot changes.
type Inbox struct {
	all       []UnifiedReceipt
	loading   bool
	err       error
	sourceErr map[Source]error
}

// Aggregate builds the inbox from the digital and scanned snapshots.
func Aggregate(digital, scanned Snapshot) *Inbox {
	all := make([]UnifiedReceipt, 0, len(digital.Receipts)+len(scanned.Receipts))
	all = append(all, digital.Receipts...)
	all = append(all, scanned.Receipts...)

	slices.SortStableFunc(all, func(a, b UnifiedReceipt) int {
		return sortTime(b).Compare(sortTime(a))
	})

	in := &Inbox{
		all:       all,
		loading:   digital.Loading || scanned.Loading,
		sourceErr: make(map[Source]error, 2),
	}

	// First error wins, digital before scanned.
	switch {
	case digital.Err != nil:
		in.err = digital.Err
	case scanned.Err != nil:
		in.err = scanned.Err
	}

	if digital.Err != nil {
		in.sourceErr[SourceDigital] = digital.Err
	}

	if scanned.Err != nil {
		in.sourceErr[SourceScanned] = scanned.Err
	}

	return in
}

// All returns every receipt, newest first.
func (in *Inbox) All() []UnifiedReceipt {
	return slices.Clone(in.all)
}

// Pending returns the receipts still awaiting a decision.
func (in *Inbox) Pending() []UnifiedReceipt {
	return in.filter(func(r UnifiedReceipt) bool { return r.Status.IsOpen() })
}

func (in *Inbox) BySource(src Source) []UnifiedReceipt {
	return in.filter(func(r UnifiedReceipt) bool { return r.Source == src })
}

func (in *Inbox) Find(key Key) (UnifiedReceipt, bool) {
	for _, r := range in.all {
		if r.Key() == key {
			return r, true
		}
	}

	return UnifiedReceipt{}, false
}

func (in *Inbox) IsLoading() bool { return in.loading }

// Err is the banner-level error: the first failing source, digital first.
func (in *Inbox) Err() error { return in.err }

func (in *Inbox) SourceErr(src Source) error { return in.sourceErr[src] }

func (in *Inbox) Len() int { return len(in.all) }

func (in *Inbox) filter(keep func(UnifiedReceipt) bool) []UnifiedReceipt {
	out := make([]UnifiedReceipt, 0, len(in.all))

	for _, r := range in.all {
		if keep(r) {
			out = append(out, r)
		}
	}

	return out
}

// sortTime orders the inbox. Receipts without a purchase date sort by when
// their source recorded them; that time never leaves this package.
func sortTime(r UnifiedReceipt) time.Time {
	if r.Date != nil {
		return *r.Date
	}

	switch raw := r.Raw.(type) {
	case *DigitalReceipt:
		return raw.CreatedAt
	case *ScannedReceipt:
		return raw.CreatedAt
	}

	return time.Time{}
}
